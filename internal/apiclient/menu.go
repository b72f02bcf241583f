package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"saborconquista/internal/model"
)

// ListMenuItems fetches the whole catalog.
func (c *Client) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := c.getJSON(ctx, "/menu-items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListMenuItemsByCategory fetches the items of one category.
func (c *Client) ListMenuItemsByCategory(ctx context.Context, category string) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := c.getJSON(ctx, "/menu-items/category/"+url.PathEscape(category), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchMenuItems does a partial name search.
func (c *Client) SearchMenuItems(ctx context.Context, query string) ([]model.MenuItem, error) {
	var items []model.MenuItem
	path := "/menu-items/search?" + url.Values{"query": {query}}.Encode()
	if err := c.getJSON(ctx, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateMenuItem posts a new item as multipart form data.
func (c *Client) CreateMenuItem(ctx context.Context, in model.MenuItemInput) (*model.MenuItem, error) {
	return c.sendMenuItem(ctx, http.MethodPost, "/menu-items", in)
}

// UpdateMenuItem replaces an item as multipart form data.
func (c *Client) UpdateMenuItem(ctx context.Context, id string, in model.MenuItemInput) (*model.MenuItem, error) {
	return c.sendMenuItem(ctx, http.MethodPut, "/menu-items/"+url.PathEscape(id), in)
}

// DeleteMenuItem removes an item.
func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/menu-items/" + url.PathEscape(id)}, nil)
}

// SetMenuItemAvailability patches the availability flag.
func (c *Client) SetMenuItemAvailability(ctx context.Context, id string, disponivel bool) (*model.MenuItem, error) {
	var item model.MenuItem
	body := map[string]bool{"disponibilidade": disponivel}
	if err := c.sendJSON(ctx, http.MethodPatch, "/menu-items/"+url.PathEscape(id)+"/disponibilidade", nil, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) sendMenuItem(ctx context.Context, method, path string, in model.MenuItemInput) (*model.MenuItem, error) {
	body, contentType, err := encodeMenuItem(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestSetup, err)
	}
	var item model.MenuItem
	if err := c.do(ctx, request{method: method, path: path, body: body, contentType: contentType}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// encodeMenuItem builds the multipart body: nome, descricao, preco (centavos), categoria,
// disponibilidade and one "fotos" part per photo.
func encodeMenuItem(in model.MenuItemInput) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"nome", in.Nome},
		{"descricao", in.Descricao},
		{"preco", strconv.FormatInt(in.Preco, 10)},
		{"categoria", in.Categoria},
		{"disponibilidade", strconv.FormatBool(in.Disponibilidade)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, photo := range in.Fotos {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="fotos"; filename=%q`, photo.Filename))
		ct := photo.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(photo.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
