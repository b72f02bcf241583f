package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"saborconquista/internal/model"
)

// customerHeader identifies the caller to the address endpoints.
func customerHeader(customerID string) http.Header {
	h := make(http.Header)
	h.Set("X-Customer-Id", customerID)
	return h
}

// ListAddresses fetches the addresses of a customer.
func (c *Client) ListAddresses(ctx context.Context, customerID string) ([]model.Address, error) {
	var addrs []model.Address
	if err := c.getJSON(ctx, "/api/addresses", customerHeader(customerID), &addrs); err != nil {
		return nil, err
	}
	return addrs, nil
}

// CreateAddress adds an address for a customer.
func (c *Client) CreateAddress(ctx context.Context, customerID string, draft model.AddressDraft) (*model.Address, error) {
	var addr model.Address
	if err := c.sendJSON(ctx, http.MethodPost, "/api/addresses", customerHeader(customerID), draft, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// SetDefaultAddress marks an address as the customer's default.
func (c *Client) SetDefaultAddress(ctx context.Context, customerID, addressID string) error {
	path := "/api/addresses/" + url.PathEscape(addressID) + "/default"
	return c.sendJSON(ctx, http.MethodPatch, path, customerHeader(customerID), struct{}{}, nil)
}
