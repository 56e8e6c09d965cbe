package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
)

const HeaderCartToken = "X-Cart-Token"

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) List(c echo.Context) error {
	l := handlerLogger(c, "cart.list")
	p, err := principal(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.List(c.Request().Context(), p.UserID)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartItemResponses(items))
}

// Add returns 201 for a new line and 200 when an existing line was incremented.
func (h *CartHTTP) Add(c echo.Context) error {
	l := handlerLogger(c, "cart.add")
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.CartItemRequest
	if err := bind(c, l, "add_to_cart", &req); err != nil {
		return err
	}

	item, created, err := h.Svc.Add(c.Request().Context(), p.UserID, req)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	l.Info().Uint("product_id", req.ProductID).Int("quantity", item.Quantity).Msg("add_to_cart_success")
	return c.JSON(status, transport.NewCartItemResponse(item))
}

func (h *CartHTTP) Update(c echo.Context) error {
	l := handlerLogger(c, "cart.update")
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, l, "update_cart_item", &req); err != nil {
		return err
	}

	item, removed, err := h.Svc.UpdateQuantity(c.Request().Context(), p.UserID, id, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item", err)
	}
	if removed {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, transport.NewCartItemResponse(item))
}

func (h *CartHTTP) Remove(c echo.Context) error {
	l := handlerLogger(c, "cart.remove")
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(c.Request().Context(), p.UserID, id); err != nil {
		return fail(l, "remove_cart_item", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	l := handlerLogger(c, "cart.clear")
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(c.Request().Context(), p.UserID); err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Merge(c echo.Context) error {
	l := handlerLogger(c, "cart.merge")
	p, err := principal(c)
	if err != nil {
		return err
	}
	merged, items, err := h.Svc.MergeGuest(c.Request().Context(), p.UserID, c.Request().Header.Get(HeaderCartToken))
	if err != nil {
		return fail(l, "merge_cart", err)
	}
	l.Info().Int("merged", merged).Msg("merge_cart_success")
	return c.JSON(http.StatusOK, transport.MergeCartResponse{
		Merged: merged,
		Items:  transport.NewCartItemResponses(items),
	})
}
