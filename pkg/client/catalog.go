package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

func window(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// ListProducts returns one page of active products and the X-Total-Count value.
func (c *Client) ListProducts(ctx context.Context, pq ProductQuery) (*ProductPage, error) {
	q := window(pq.Skip, pq.Limit)
	if pq.CategoryID != 0 {
		q.Set("category_id", strconv.FormatUint(uint64(pq.CategoryID), 10))
	}
	if pq.Search != "" {
		q.Set("search", pq.Search)
	}
	if pq.MinPrice != nil {
		q.Set("min_price", pq.MinPrice.String())
	}
	if pq.MaxPrice != nil {
		q.Set("max_price", pq.MaxPrice.String())
	}

	page := &ProductPage{}
	resp, err := c.send(ctx, request{method: http.MethodGet, path: "/products", query: q}, &page.Items)
	if err != nil {
		return nil, err
	}
	if n, err := strconv.ParseInt(resp.Header.Get("X-Total-Count"), 10, 64); err == nil {
		page.Total = n
	} else {
		page.Total = int64(len(page.Items))
	}
	return page, nil
}

func (c *Client) SearchProducts(ctx context.Context, query string, page, size int) (*SearchResult, error) {
	q := url.Values{"q": {query}}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var out SearchResult
	if _, err := c.send(ctx, request{method: http.MethodGet, path: "/products/search", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, idPath("/products", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPost, "/products", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodPut, idPath("/products", id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/products", id), nil, nil)
}

// UploadImage sends content as the multipart "file" field.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var out Upload
	r := request{method: http.MethodPost, path: "/products/upload-image", body: &buf, ctype: w.FormDataContentType()}
	if _, err := c.send(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, http.MethodGet, "/categories", nil, &out)
	return out, err
}

func (c *Client) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var cat Category
	if err := c.do(ctx, http.MethodGet, idPath("/categories", id), nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	var cat Category
	if err := c.do(ctx, http.MethodPost, "/categories", in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*Category, error) {
	var cat Category
	if err := c.do(ctx, http.MethodPut, idPath("/categories", id), in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, idPath("/categories", id), nil, nil)
}
