package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	l := handlerLogger(c, "categories.list")
	items, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return fail(l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	l := handlerLogger(c, "categories.get")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(l, "get_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	l := handlerLogger(c, "categories.create")
	var req transport.CreateCategoryRequest
	if err := bind(c, l, "create_category", &req); err != nil {
		return err
	}
	cat, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return fail(l, "create_category", err)
	}
	l.Info().Uint("category_id", cat.ID).Msg("create_category_success")
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	l := handlerLogger(c, "categories.update")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateCategoryRequest
	if err := bind(c, l, "update_category", &req); err != nil {
		return err
	}
	cat, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(l, "update_category", err)
	}
	l.Info().Uint("category_id", id).Msg("update_category_success")
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	l := handlerLogger(c, "categories.delete")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return fail(l, "delete_category", err)
	}
	l.Info().Uint("category_id", id).Msg("delete_category_success")
	return deleted(c, "Category deleted")
}
