package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
)

type GuestCartHTTP struct {
	Svc *service.GuestCartService
}

// token reads X-Cart-Token; when issue is set and the header is missing a new
// token is minted. The token in use is always echoed back in the response.
func (h *GuestCartHTTP) token(c echo.Context, issue bool) string {
	t := strings.TrimSpace(c.Request().Header.Get(HeaderCartToken))
	if t == "" && issue {
		t = service.NewCartToken()
	}
	if t != "" {
		c.Response().Header().Set(HeaderCartToken, t)
	}
	return t
}

func guestCartResponse(v *service.GuestCartView) transport.GuestCartResponse {
	out := transport.GuestCartResponse{
		Token:     v.Token,
		Items:     make([]transport.GuestCartLine, 0, len(v.Lines)),
		ItemCount: v.ItemCount,
		Total:     v.Total,
	}
	for _, line := range v.Lines {
		p := transport.NewProductResponse(line.Product)
		out.Items = append(out.Items, transport.GuestCartLine{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Product:   &p,
		})
	}
	return out
}

func (h *GuestCartHTTP) Get(c echo.Context) error {
	l := handlerLogger(c, "guest_cart.get")
	v, err := h.Svc.View(c.Request().Context(), h.token(c, true))
	if err != nil {
		return fail(l, "get_guest_cart", err)
	}
	return c.JSON(http.StatusOK, guestCartResponse(v))
}

func (h *GuestCartHTTP) Add(c echo.Context) error {
	l := handlerLogger(c, "guest_cart.add")
	var req transport.CartItemRequest
	if err := bind(c, l, "add_guest_cart_item", &req); err != nil {
		return err
	}
	v, err := h.Svc.Add(c.Request().Context(), h.token(c, true), req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_guest_cart_item", err)
	}
	return c.JSON(http.StatusOK, guestCartResponse(v))
}

func (h *GuestCartHTTP) Update(c echo.Context) error {
	l := handlerLogger(c, "guest_cart.update")
	productID, err := paramID(c, "product_id")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, l, "update_guest_cart_item", &req); err != nil {
		return err
	}
	v, err := h.Svc.Set(c.Request().Context(), h.token(c, false), productID, req.Quantity)
	if err != nil {
		return fail(l, "update_guest_cart_item", err)
	}
	return c.JSON(http.StatusOK, guestCartResponse(v))
}

func (h *GuestCartHTTP) Remove(c echo.Context) error {
	l := handlerLogger(c, "guest_cart.remove")
	productID, err := paramID(c, "product_id")
	if err != nil {
		return err
	}
	v, err := h.Svc.Remove(c.Request().Context(), h.token(c, false), productID)
	if err != nil {
		return fail(l, "remove_guest_cart_item", err)
	}
	return c.JSON(http.StatusOK, guestCartResponse(v))
}

func (h *GuestCartHTTP) Clear(c echo.Context) error {
	l := handlerLogger(c, "guest_cart.clear")
	if err := h.Svc.Clear(c.Request().Context(), h.token(c, false)); err != nil {
		return fail(l, "clear_guest_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}
