package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"saborconquista/internal/model"
)

// ListKitchenOrders fetches the orders the kitchen works on.
func (c *Client) ListKitchenOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.getJSON(ctx, "/api/pedidos/cozinha", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to a new status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	body := map[string]model.OrderStatus{"status": status}
	return c.sendJSON(ctx, http.MethodPatch, "/api/pedidos/"+url.PathEscape(orderID)+"/status", nil, body, nil)
}
