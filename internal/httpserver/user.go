package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/internal/util"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Me(c echo.Context) error {
	l := handlerLogger(c, "users.me")
	p, err := principal(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(c.Request().Context(), p.UserID)
	if err != nil {
		return fail(l, "get_me", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := handlerLogger(c, "users.update_me")
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.UpdateProfileRequest
	if err := bind(c, l, "update_me", &req); err != nil {
		return err
	}
	u, err := h.Svc.UpdateProfile(ctx, p.UserID, req)
	if err != nil {
		return fail(l, "update_me", err)
	}

	l.Info().Msg("update_me_success")
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) List(c echo.Context) error {
	l := handlerLogger(c, "users.list")
	offset, limit := util.Window(
		util.ParseIntDefault(c.QueryParam("skip"), 0),
		util.ParseIntDefault(c.QueryParam("limit"), util.DefaultListLimit),
		util.DefaultListLimit, util.MaxListLimit,
	)
	users, total, err := h.Svc.List(c.Request().Context(), offset, limit)
	if err != nil {
		return fail(l, "list_users", err)
	}
	c.Response().Header().Set(HeaderTotalCount, itoa64(total))
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) Get(c echo.Context) error {
	l := handlerLogger(c, "users.get")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(l, "get_user", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) AdminUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	l := handlerLogger(c, "users.admin_update")
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req transport.AdminUpdateUserRequest
	if err := bind(c, l, "admin_update_user", &req); err != nil {
		return err
	}
	u, err := h.Svc.AdminUpdate(ctx, p.UserID, id, req)
	if err != nil {
		return fail(l, "admin_update_user", err)
	}

	l.Info().Uint("target_id", id).Msg("admin_update_user_success")
	return c.JSON(http.StatusOK, u)
}
