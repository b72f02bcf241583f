package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saborconquista/internal/model"
	"saborconquista/internal/storage"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *storage.TokenStore, *int) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tokens := storage.NewTokenStore(storage.NewMemoryStore(), "client-1")
	expired := 0
	c := New(srv.URL, 5*time.Second, nil).WithSession(tokens, func(context.Context) { expired++ })
	return c, tokens, &expired
}

func TestClient_AttachesBearerWhenTokenPresent(t *testing.T) {
	var gotAuth string
	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	require.NoError(t, tokens.SetToken(context.Background(), "T"))
	_, err := c.ListMenuItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer T", gotAuth)
}

func TestClient_NoBearerWithoutToken(t *testing.T) {
	var gotAuth string
	var sawHeader bool
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`[]`))
	})

	_, err := c.ListMenuItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.False(t, sawHeader)
}

func TestClient_TokenReadAtRequestTime(t *testing.T) {
	var seen []string
	c, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	_, _ = c.ListMenuItems(ctx)
	require.NoError(t, tokens.SetToken(ctx, "A"))
	_, _ = c.ListMenuItems(ctx)
	require.NoError(t, tokens.SetToken(ctx, "B"))
	_, _ = c.ListMenuItems(ctx)

	assert.Equal(t, []string{"", "Bearer A", "Bearer B"}, seen)
}

func TestClient_UnauthorizedClearsTokenAndSignals(t *testing.T) {
	c, tokens, expired := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid or expired token"}`))
	})
	ctx := context.Background()
	require.NoError(t, tokens.SetToken(ctx, "T"))

	_, err := c.ListKitchenOrders(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, *expired)

	tok, _ := tokens.Token(ctx)
	assert.Empty(t, tok)
}

func TestClient_ForbiddenDoesNotExpire(t *testing.T) {
	c, tokens, expired := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	ctx := context.Background()
	require.NoError(t, tokens.SetToken(ctx, "T"))

	_, err := c.ListKitchenOrders(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 0, *expired)
	tok, _ := tokens.Token(ctx)
	assert.Equal(t, "T", tok)
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Email já cadastrado"}`, "Email já cadastrado"},
		{"error field", http.StatusConflict, `{"error":"conflito"}`, "conflito"},
		{"status text", http.StatusInternalServerError, `not json`, "Internal Server Error"},
		{"unknown status", 599, ``, fallbackMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.ListMenuItems(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, Message(err, "fallback"))
		})
	}
}

func TestClient_NoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, nil)
	_, err := c.ListMenuItems(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoResponse))
	assert.Equal(t, ErrNoResponse.Error(), Message(err, "fallback"))
}

func TestClient_InvalidJSON(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})
	_, err := c.ListMenuItems(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidResponse))
}

func TestClient_LoginBody(t *testing.T) {
	var got model.LoginRequest
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"user":{"id":"1","nome":"A","email":"a@b.com","telefone":"","role":"customer"},"token":"T"}`))
	})

	resp, err := c.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, model.LoginRequest{Email: "a@b.com", Senha: "x"}, got)
	require.NotNil(t, resp.User)
	assert.Equal(t, model.ID("1"), resp.User.ID)
	assert.Equal(t, "customer", resp.User.Role)
	assert.Equal(t, "T", resp.Token)
}

func TestClient_RegisterSendsAtivo(t *testing.T) {
	var got map[string]any
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"user":{"id":7,"nome":"B","email":"b@b.com","role":"KITCHEN"},"token":"T"}`))
	})

	resp, err := c.Register(context.Background(), model.RegisterRequest{
		Nome: "B", Email: "b@b.com", Senha: "secret", Telefone: "11999999999", Role: model.RoleKitchen,
	})
	require.NoError(t, err)
	assert.Equal(t, true, got["ativo"])
	assert.Equal(t, "KITCHEN", got["role"])
	_, hasEndereco := got["endereco"]
	assert.False(t, hasEndereco)
	assert.Equal(t, model.ID("7"), resp.User.ID)
}

func TestClient_CreateMenuItemMultipart(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "Margherita", r.FormValue("nome"))
		assert.Equal(t, "2050", r.FormValue("preco"))
		assert.Equal(t, "pizzas", r.FormValue("categoria"))
		assert.Equal(t, "true", r.FormValue("disponibilidade"))

		files := r.MultipartForm.File["fotos"]
		if assert.Len(t, files, 2) {
			assert.Equal(t, "a.png", files[0].Filename)
			assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))
			f, err := files[0].Open()
			if assert.NoError(t, err) {
				data, _ := io.ReadAll(f)
				f.Close()
				assert.Equal(t, []byte("png-bytes"), data)
			}
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"9","nome":"Margherita","preco":2050,"categoria":"pizzas","disponibilidade":true}`))
	})

	item, err := c.CreateMenuItem(context.Background(), model.MenuItemInput{
		Nome: "Margherita", Descricao: "clássica", Preco: 2050, Categoria: "pizzas", Disponibilidade: true,
		Fotos: []model.Photo{
			{Filename: "a.png", ContentType: "image/png", Data: []byte("png-bytes")},
			{Filename: "b.jpg", ContentType: "image/jpeg", Data: []byte("jpg-bytes")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ID("9"), item.ID)
}

func TestClient_AddressesSendCustomerHeader(t *testing.T) {
	var ids []string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Customer-Id"))
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`[{"id":"a1","rua":"Rua A","zipcode":"01001-000","isDefalt":true}]`))
		case r.Method == http.MethodPatch:
			assert.Equal(t, "/api/addresses/a1/default", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	addrs, err := c.ListAddresses(ctx, "42")
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].IsDefault)

	require.NoError(t, c.SetDefaultAddress(ctx, "42", "a1"))
	assert.Equal(t, []string{"42", "42"}, ids)
}

func TestClient_UpdateOrderStatus(t *testing.T) {
	var got map[string]string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pedidos/p1/status", r.URL.Path)
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.UpdateOrderStatus(context.Background(), "p1", model.OrderPreparing))
	assert.Equal(t, "EM_PREPARO", got["status"])
}

func TestClient_SearchEscapesQuery(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/menu-items/search", r.URL.Path)
		assert.Equal(t, "pão de queijo", r.URL.Query().Get("query"))
		w.Write([]byte(`[]`))
	})
	_, err := c.SearchMenuItems(context.Background(), "pão de queijo")
	require.NoError(t, err)
}
