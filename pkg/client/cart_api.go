package client

import (
	"context"
	"net/http"
)

const headerCartToken = "X-Cart-Token"

type cartLineBody struct {
	ProductID uint `json:"product_id,omitempty"`
	Quantity  int  `json:"quantity"`
}

func (c *Client) Cart(ctx context.Context) ([]CartItem, error) {
	var out []CartItem
	err := c.do(ctx, http.MethodGet, "/cart", nil, &out)
	return out, err
}

// AddToCart increments the line for productID or creates it.
func (c *Client) AddToCart(ctx context.Context, productID uint, qty int) (*CartItem, error) {
	var item CartItem
	if err := c.do(ctx, http.MethodPost, "/cart", cartLineBody{ProductID: productID, Quantity: qty}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItem sets the quantity; a nil item means the line was removed.
func (c *Client) UpdateCartItem(ctx context.Context, itemID uint, qty int) (*CartItem, error) {
	r, err := jsonRequest(http.MethodPut, idPath("/cart", itemID), cartLineBody{Quantity: qty})
	if err != nil {
		return nil, err
	}
	var item CartItem
	resp, err := c.send(ctx, r, &item)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return &item, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/cart", itemID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil)
}

// MergeGuestCart folds the server-side guest cart behind token into the
// signed-in user's cart.
func (c *Client) MergeGuestCart(ctx context.Context, token string) (*MergeResult, error) {
	r := request{method: http.MethodPost, path: "/cart/merge", headers: http.Header{headerCartToken: {token}}}
	var out MergeResult
	if _, err := c.send(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
