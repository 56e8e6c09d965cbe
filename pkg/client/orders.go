package client

import (
	"context"
	"net/http"
)

func (c *Client) ListOrders(ctx context.Context, oq OrderQuery) ([]Order, error) {
	q := window(oq.Skip, oq.Limit)
	if oq.Status != "" {
		q.Set("status", oq.Status)
	}
	var out []Order
	_, err := c.send(ctx, request{method: http.MethodGet, path: "/orders", query: q}, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id uint) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodGet, idPath("/orders", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder places the order. Prices are computed by the server.
func (c *Client) CreateOrder(ctx context.Context, in NewOrder) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPost, "/orders", in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status string) (*Order, error) {
	var o Order
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, idPath("/orders", id)+"/status", body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, id uint) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodDelete, idPath("/orders", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
