package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/petstore/internal/httpserver"
	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/internal/testutil"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/metrics"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
	"github.com/Skotchmaster/petstore/pkg/tokens"
)

type guestStore struct {
	mu    sync.Mutex
	carts map[string]map[uint]int
}

func (g *guestStore) GuestCart(_ context.Context, token string) (map[uint]int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := map[uint]int{}
	for k, v := range g.carts[token] {
		out[k] = v
	}
	return out, nil
}

func (g *guestStore) line(token string) map[uint]int {
	if g.carts[token] == nil {
		g.carts[token] = map[uint]int{}
	}
	return g.carts[token]
}

func (g *guestStore) AddGuestCartItem(_ context.Context, token string, productID uint, qty int, _ time.Duration) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.line(token)
	c[productID] += qty
	return c[productID], nil
}

func (g *guestStore) SetGuestCartItem(_ context.Context, token string, productID uint, qty int, _ time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.line(token)[productID] = qty
	return nil
}

func (g *guestStore) RemoveGuestCartItem(_ context.Context, token string, productID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.line(token), productID)
	return nil
}

func (g *guestStore) ClearGuestCart(_ context.Context, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.carts, token)
	return nil
}

type denyLimiter struct{}

func (denyLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return false, 11, nil
}

type server struct {
	t        *testing.T
	e        *echo.Echo
	db       *gorm.DB
	tokens   *tokens.Issuer
	registry *prometheus.Registry
}

type option func(*httpserver.Deps)

func newServer(t *testing.T, opts ...option) *server {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	issuer := tokens.NewIssuer([]byte("test-secret"), time.Hour)
	reg := prometheus.NewRegistry()

	authSvc := &service.AuthService{Repo: r, Tokens: issuer}
	guest := &guestStore{carts: map[string]map[uint]int{}}

	d := &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:     &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: r}},
		ProductHandler: &httpserver.ProductHTTP{
			Svc:     &service.ProductService{Repo: r},
			Uploads: &service.UploadService{Dir: t.TempDir(), MaxSize: 1024},
		},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:    r,
			Pricing: service.DefaultPricing(),
			Metrics: metrics.NewOrderMetrics(reg),
		}},
		CartHandler:      &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Guest: guest}},
		GuestCartHandler: &httpserver.GuestCartHTTP{Svc: &service.GuestCartService{Repo: r, Store: guest}},
		HealthHandler:    &httpserver.HealthHTTP{Checks: map[string]httpserver.ReadyCheck{"database": r.Ping}},
		Guard:            auth.NewGuard(issuer, authSvc),
		Logger:           zerolog.Nop(),
		Metrics:          metrics.NewHTTPMetrics(reg),
		Gatherer:         reg,
	}
	for _, o := range opts {
		o(d)
	}
	return &server{t: t, e: httpserver.New(d), db: gdb, tokens: issuer, registry: reg}
}

func (s *server) do(method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) user(email string, admin bool) (*models.User, string) {
	s.t.Helper()
	u := testutil.CreateUser(s.t, s.db, email, "secret", admin)
	tok, _, err := s.tokens.Issue(u.ID, u.Email)
	require.NoError(s.t, err)
	return u, tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[transport.DetailResponse](t, rec).Detail
}

func orderBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"items":             items,
		"payment_method":    "credit_card",
		"shipping_address":  "1 Pet Street",
		"shipping_city":     "Sydney",
		"shipping_state":    "NSW",
		"shipping_postcode": "2000",
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newServer(t)
	body := map[string]any{"email": "Dup@Example.com", "password": "pw", "full_name": "Dup"}

	rec := s.do(http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tok := decode[transport.TokenResponse](t, rec)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "dup@example.com", tok.User.Email)

	rec = s.do(http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "already registered")

	var n int64
	require.NoError(t, s.db.Model(&models.User{}).Where("email = ?", "dup@example.com").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRegister_ValidationFailure(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/api/v1/auth/register", map[string]any{"email": "not-an-email", "password": "pw"}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, detail(t, rec), "email email")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	out := httptest.NewRecorder()
	s.e.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
	assert.Equal(t, "Invalid request body", detail(t, out))
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	s.user("shopper@example.com", false)

	t.Run("json ok", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/auth/login", map[string]any{"username": "shopper@example.com", "password": "secret"}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		tok := decode[transport.TokenResponse](t, rec)

		me := s.do(http.MethodGet, "/api/v1/users/me", nil, tok.AccessToken)
		require.Equal(t, http.StatusOK, me.Code)
		assert.Equal(t, "shopper@example.com", decode[models.User](t, me).Email)
	})

	t.Run("form ok", func(t *testing.T) {
		form := url.Values{"username": {"SHOPPER@example.com"}, "password": {"secret"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	for name, body := range map[string]map[string]any{
		"wrong password": {"username": "shopper@example.com", "password": "nope"},
		"unknown email":  {"username": "ghost@example.com", "password": "secret"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/v1/auth/login", body, "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Incorrect email or password", detail(t, rec))
			assert.NotContains(t, rec.Body.String(), "access_token")
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	s := newServer(t, func(d *httpserver.Deps) {
		d.Limiter = denyLimiter{}
		d.LoginLimit = 10
		d.LoginWindow = time.Minute
	})
	rec := s.do(http.MethodPost, "/api/v1/auth/login", map[string]any{"username": "a@example.com", "password": "x"}, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many login attempts", detail(t, rec))
	assert.Equal(t, "60", rec.Header().Get(echo.HeaderRetryAfter))
}

func TestInactiveUserToken(t *testing.T) {
	s := newServer(t)
	u, tok := s.user("gone@example.com", false)
	require.NoError(t, s.db.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	rec := s.do(http.MethodGet, "/api/v1/users/me", nil, tok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Inactive user", detail(t, rec))
}

func TestGuardResponses(t *testing.T) {
	s := newServer(t)
	_, userTok := s.user("plain@example.com", false)

	rec := s.do(http.MethodGet, "/api/v1/users/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", detail(t, rec))
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = s.do(http.MethodGet, "/api/v1/users/me", nil, "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", detail(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/users", nil, userTok)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not enough permissions", detail(t, rec))
}

func TestProductRoundTrip(t *testing.T) {
	s := newServer(t)
	_, adminTok := s.user("admin@example.com", true)
	_, userTok := s.user("user@example.com", false)
	cat := testutil.CreateCategory(t, s.db, "Dog Supplies", "dog-supplies")

	body := map[string]any{
		"name":        "Premium Dog Food",
		"price":       29.99,
		"stock":       100,
		"category_id": cat.ID,
		"image":       "dog-food.jpg",
	}
	rec := s.do(http.MethodPost, "/api/v1/products", body, userTok)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/products", body, adminTok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[transport.ProductResponse](t, rec)

	rec = s.do(http.MethodGet, "/api/v1/products/"+itoa(created.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[transport.ProductResponse](t, rec)
	assert.Equal(t, "Premium Dog Food", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("29.99")), got.Price.String())
	assert.Equal(t, 100, got.Stock)
	assert.Equal(t, "/static/images/products/dog-food.jpg", got.ImageURL)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Dog Supplies", got.Category.Name)

	rec = s.do(http.MethodGet, "/api/v1/products?category_id="+itoa(cat.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(httpserver.HeaderTotalCount))

	rec = s.do(http.MethodDelete, "/api/v1/products/"+itoa(created.ID), nil, adminTok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted", detail(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/products/"+itoa(created.ID), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", detail(t, rec))
}

func TestProductSearch_DatabaseFallback(t *testing.T) {
	s := newServer(t)
	testutil.CreateProduct(t, s.db, "Hamster Cage", "49.99", 30, nil)
	testutil.CreateProduct(t, s.db, "Cat Litter", "19.99", 150, nil)

	rec := s.do(http.MethodGet, "/api/v1/products/search?q=hamster", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[transport.SearchResponse](t, rec)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Hamster Cage", res.Data[0].Name)
	assert.Equal(t, service.SearchSourceDatabase, res.Meta.Source)
	assert.EqualValues(t, 1, res.Meta.Pages)
}

func TestCategoryDeleteWithProducts(t *testing.T) {
	s := newServer(t)
	_, adminTok := s.user("admin@example.com", true)
	cat := testutil.CreateCategory(t, s.db, "Cat Supplies", "cat-supplies")
	testutil.CreateProduct(t, s.db, "Scratching Post", "39.99", 5, &cat.ID)

	rec := s.do(http.MethodDelete, "/api/v1/categories/"+itoa(cat.ID), nil, adminTok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete category with existing products", detail(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Other", "slug": "cat-supplies"}, adminTok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category slug already exists", detail(t, rec))
}

func TestOrderLifecycle(t *testing.T) {
	s := newServer(t)
	_, adminTok := s.user("admin@example.com", true)
	_, userTok := s.user("buyer@example.com", false)
	_, otherTok := s.user("other@example.com", false)
	p := testutil.CreateProduct(t, s.db, "Dog Chew Toy", "12.99", 10, nil)

	rec := s.do(http.MethodPost, "/api/v1/orders", orderBody(map[string]any{
		"product_id": p.ID, "quantity": 2, "unit_price": 0.01, "total_price": 0.02,
	}), userTok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.99")))
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("38.58")), order.TotalAmount.String())

	path := "/api/v1/orders/" + itoa(order.ID)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, nil, otherTok).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, path+"/status", map[string]any{"status": "paid"}, userTok).Code)

	rec = s.do(http.MethodPut, path+"/status", map[string]any{"status": "bogus"}, adminTok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid order status", detail(t, rec))

	for i := 0; i < 2; i++ {
		rec = s.do(http.MethodDelete, path, nil, userTok)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, models.OrderStatusCancelled, decode[models.Order](t, rec).Status)
	}

	var stock int
	require.NoError(t, s.db.Model(&models.Product{}).Select("stock").Where("id = ?", p.ID).Scan(&stock).Error)
	assert.Equal(t, 10, stock)

	rec = s.do(http.MethodPut, path+"/status", map[string]any{"status": "shipped"}, adminTok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Cannot change order status from cancelled to shipped", detail(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/orders", nil, otherTok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Order](t, rec))
}

func TestOrderRejectsInsufficientStock(t *testing.T) {
	s := newServer(t)
	_, userTok := s.user("buyer@example.com", false)
	p := testutil.CreateProduct(t, s.db, "Cat Litter", "19.99", 1, nil)

	rec := s.do(http.MethodPost, "/api/v1/orders", orderBody(map[string]any{"product_id": p.ID, "quantity": 2}), userTok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient stock for product Cat Litter", detail(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/orders", orderBody(), userTok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order must contain at least one item", detail(t, rec))
}

func TestCartIncrementsAndCounts(t *testing.T) {
	s := newServer(t)
	_, tok := s.user("cart@example.com", false)
	a := testutil.CreateProduct(t, s.db, "A", "1.00", 50, nil)
	b := testutil.CreateProduct(t, s.db, "B", "2.00", 50, nil)

	rec := s.do(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": a.ID, "quantity": 1}, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	line := decode[transport.CartItemResponse](t, rec)

	rec = s.do(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": a.ID, "quantity": 2}, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[transport.CartItemResponse](t, rec).Quantity)

	rec = s.do(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": b.ID, "quantity": 4}, tok)
	require.Equal(t, http.StatusCreated, rec.Code)
	other := decode[transport.CartItemResponse](t, rec)

	count := func() int {
		rec := s.do(http.MethodGet, "/api/v1/cart", nil, tok)
		require.Equal(t, http.StatusOK, rec.Code)
		n := 0
		for _, it := range decode[[]transport.CartItemResponse](t, rec) {
			n += it.Quantity
		}
		return n
	}
	assert.Equal(t, 7, count())

	rec = s.do(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": a.ID, "quantity": 10001}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "quantity lte=10000", detail(t, rec))
	rec = s.do(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": a.ID, "quantity": int64(math.MaxInt64)}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 7, count())

	rec = s.do(http.MethodPut, "/api/v1/cart/"+itoa(line.ID), map[string]any{"quantity": 5}, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, count())

	rec = s.do(http.MethodPut, "/api/v1/cart/"+itoa(other.ID), map[string]any{"quantity": 0}, tok)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 5, count())

	rec = s.do(http.MethodPost, "/api/v1/cart", map[string]any{"product_id": 9999, "quantity": 1}, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/cart", nil, tok).Code)
	assert.Equal(t, 0, count())
}

func TestGuestCartAndMerge(t *testing.T) {
	s := newServer(t)
	_, tok := s.user("guest@example.com", false)
	p := testutil.CreateProduct(t, s.db, "Hamster Cage", "49.99", 30, nil)

	rec := s.do(http.MethodGet, "/api/v1/guest-cart", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cartToken := rec.Header().Get(httpserver.HeaderCartToken)
	require.NotEmpty(t, cartToken)

	for i := 0; i < 2; i++ {
		rec = s.do(http.MethodPost, "/api/v1/guest-cart/items", map[string]any{"product_id": p.ID, "quantity": 1}, "",
			httpserver.HeaderCartToken, cartToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	view := decode[transport.GuestCartResponse](t, rec)
	assert.Equal(t, 2, view.ItemCount)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)

	rec = s.do(http.MethodPost, "/api/v1/cart/merge", nil, tok, httpserver.HeaderCartToken, cartToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	merged := decode[transport.MergeCartResponse](t, rec)
	assert.Equal(t, 1, merged.Merged)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, 2, merged.Items[0].Quantity)

	rec = s.do(http.MethodGet, "/api/v1/guest-cart", nil, "", httpserver.HeaderCartToken, cartToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[transport.GuestCartResponse](t, rec).ItemCount)
}

func TestUploadImage(t *testing.T) {
	s := newServer(t)
	_, adminTok := s.user("admin@example.com", true)

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		fw, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/upload-image", &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminTok)
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("bone.png", []byte("png"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[transport.UploadResponse](t, rec)
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.Equal(t, "/static/images/products/"+res.Filename, res.ImageURL)

	rec = upload("bone.exe", []byte("x"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "Unsupported file type")

	rec = upload("huge.jpg", make([]byte, 4096))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "File too large")
}

func TestHealthAndErrors(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health/ready", nil, "").Code)

	rec := s.do(http.MethodGet, "/api/v1/nowhere", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", detail(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/products/abc", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	failing := newServer(t, func(d *httpserver.Deps) {
		d.HealthHandler = &httpserver.HealthHTTP{Checks: map[string]httpserver.ReadyCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		}}
	})
	rec = failing.do(http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
