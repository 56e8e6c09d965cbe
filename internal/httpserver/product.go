package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/internal/util"
)

type ProductHTTP struct {
	Svc     *service.ProductService
	Uploads *service.UploadService
}

func (h *ProductHTTP) List(c echo.Context) error {
	l := handlerLogger(c, "products.list")

	offset, limit := util.Window(
		util.ParseIntDefault(c.QueryParam("skip"), 0),
		util.ParseIntDefault(c.QueryParam("limit"), util.DefaultListLimit),
		util.DefaultListLimit, util.MaxListLimit,
	)
	f := repo.ProductFilter{
		Offset:     offset,
		Limit:      limit,
		CategoryID: util.ParseUintPtr(c.QueryParam("category_id")),
		Search:     strings.TrimSpace(c.QueryParam("search")),
	}
	var err error
	if f.MinPrice, err = decimalParam(c, "min_price"); err != nil {
		return err
	}
	if f.MaxPrice, err = decimalParam(c, "max_price"); err != nil {
		return err
	}

	items, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return fail(l, "list_products", err)
	}
	c.Response().Header().Set(HeaderTotalCount, itoa64(total))
	return c.JSON(http.StatusOK, transport.NewProductResponses(items))
}

func (h *ProductHTTP) Search(c echo.Context) error {
	l := handlerLogger(c, "products.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	res, err := h.Svc.Search(c.Request().Context(), c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_products", err)
	}

	l.Info().Str("source", res.Source).Int64("total", res.Total).Msg("search_products_success")
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Data: transport.NewProductResponses(res.Items),
		Meta: transport.SearchMeta{
			Page:   page,
			Size:   limit,
			Total:  res.Total,
			Pages:  (res.Total + int64(limit) - 1) / int64(limit),
			Source: res.Source,
		},
	})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	l := handlerLogger(c, "products.get")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, transport.NewProductResponse(p))
}

func (h *ProductHTTP) Create(c echo.Context) error {
	l := handlerLogger(c, "products.create")
	var req transport.CreateProductRequest
	if err := bind(c, l, "create_product", &req); err != nil {
		return err
	}
	p, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return fail(l, "create_product", err)
	}
	l.Info().Uint("product_id", p.ID).Msg("create_product_success")
	return c.JSON(http.StatusCreated, transport.NewProductResponse(p))
}

func (h *ProductHTTP) Update(c echo.Context) error {
	l := handlerLogger(c, "products.update")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateProductRequest
	if err := bind(c, l, "update_product", &req); err != nil {
		return err
	}
	p, err := h.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return fail(l, "update_product", err)
	}
	l.Info().Uint("product_id", id).Msg("update_product_success")
	return c.JSON(http.StatusOK, transport.NewProductResponse(p))
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	l := handlerLogger(c, "products.delete")
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return fail(l, "delete_product", err)
	}
	l.Info().Uint("product_id", id).Msg("delete_product_success")
	return deleted(c, "Product deleted")
}

func (h *ProductHTTP) UploadImage(c echo.Context) error {
	l := handlerLogger(c, "products.upload_image")

	fh, err := c.FormFile("file")
	if err != nil {
		l.Warn().Int("status", http.StatusUnprocessableEntity).Err(err).Msg("upload_image_failed")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "file required")
	}
	src, err := fh.Open()
	if err != nil {
		return fail(l, "upload_image", err)
	}
	defer src.Close()

	name, err := h.Uploads.SaveImage(c.Request().Context(), fh.Filename, fh.Size, src)
	if err != nil {
		return fail(l, "upload_image", err)
	}

	l.Info().Str("filename", name).Msg("upload_image_success")
	return c.JSON(http.StatusOK, transport.UploadResponse{
		Filename: name,
		ImageURL: transport.ImageURL(name),
	})
}

func decimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be a number")
	}
	return &d, nil
}
