package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) List(c echo.Context) error {
	l := handlerLogger(c, "orders.list")
	p, err := principal(c)
	if err != nil {
		return err
	}

	offset, limit := util.Window(
		util.ParseIntDefault(c.QueryParam("skip"), 0),
		util.ParseIntDefault(c.QueryParam("limit"), util.DefaultListLimit),
		util.DefaultListLimit, util.MaxListLimit,
	)
	orders, total, err := h.Svc.List(c.Request().Context(), p, service.OrderListFilter{
		Status: c.QueryParam("status"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return fail(l, "list_orders", err)
	}
	c.Response().Header().Set(HeaderTotalCount, itoa64(total))
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	l := handlerLogger(c, "orders.get")
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Create(c echo.Context) error {
	l := handlerLogger(c, "orders.create")
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := bind(c, l, "create_order", &req); err != nil {
		return err
	}
	o, err := h.Svc.Create(c.Request().Context(), p, req)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info().Uint("order_id", o.ID).Str("order_number", o.OrderNumber).Msg("create_order_success")
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	l := handlerLogger(c, "orders.update_status")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := bind(c, l, "update_order_status", &req); err != nil {
		return err
	}
	o, err := h.Svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return fail(l, "update_order_status", err)
	}
	l.Info().Uint("order_id", id).Str("status", string(o.Status)).Msg("update_order_status_success")
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	l := handlerLogger(c, "orders.cancel")
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.Cancel(c.Request().Context(), p, id)
	if err != nil {
		return fail(l, "cancel_order", err)
	}
	l.Info().Uint("order_id", id).Msg("cancel_order_success")
	return c.JSON(http.StatusOK, o)
}
