package httpserver

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Skotchmaster/petstore/pkg/metrics"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/petstore/pkg/middleware/logging"
	"github.com/Skotchmaster/petstore/pkg/middleware/ratelimit"
)

const APIPrefix = "/api/v1"

type Deps struct {
	AuthHandler      *AuthHTTP
	UserHandler      *UserHTTP
	CategoryHandler  *CategoryHTTP
	ProductHandler   *ProductHTTP
	OrderHandler     *OrderHTTP
	CartHandler      *CartHTTP
	GuestCartHandler *GuestCartHTTP // nil when guest carts are disabled
	HealthHandler    *HealthHTTP

	Guard *auth.Guard

	Limiter     ratelimit.Limiter
	LoginLimit  int64
	LoginWindow time.Duration

	Logger      zerolog.Logger
	Metrics     *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	BodyLimit   string
	StaticDir   string
}

// New builds the echo instance with the shared middleware chain and all routes.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	if len(d.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders: []string{
				echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
				echo.HeaderAuthorization, HeaderCartToken,
			},
			ExposeHeaders: []string{HeaderTotalCount, HeaderCartToken, echo.HeaderXRequestID},
		}))
	}
	if d.BodyLimit != "" {
		e.Use(middleware.BodyLimit(d.BodyLimit))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	health := d.HealthHandler
	if health == nil {
		health = &HealthHTTP{}
	}
	e.GET("/health/live", health.Live)
	e.GET("/health/ready", health.Ready)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.StaticDir != "" {
		e.Static("/static", d.StaticDir)
	}

	api := e.Group(APIPrefix)
	requireAuth := d.Guard.RequireAuth
	requireAdmin := d.Guard.RequireAdmin

	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login, ratelimit.Login(d.Limiter, d.LoginLimit, d.LoginWindow))

	users := api.Group("/users")
	users.GET("/me", d.UserHandler.Me, requireAuth)
	users.PUT("/me", d.UserHandler.UpdateMe, requireAuth)
	users.GET("", d.UserHandler.List, requireAdmin)
	users.GET("/:id", d.UserHandler.Get, requireAdmin)
	users.PUT("/:id", d.UserHandler.AdminUpdate, requireAdmin)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.List)
	categories.GET("/:id", d.CategoryHandler.Get)
	categories.POST("", d.CategoryHandler.Create, requireAdmin)
	categories.PUT("/:id", d.CategoryHandler.Update, requireAdmin)
	categories.DELETE("/:id", d.CategoryHandler.Delete, requireAdmin)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.List)
	products.GET("/search", d.ProductHandler.Search)
	products.GET("/:id", d.ProductHandler.Get)
	products.POST("", d.ProductHandler.Create, requireAdmin)
	products.POST("/upload-image", d.ProductHandler.UploadImage, requireAdmin)
	products.PUT("/:id", d.ProductHandler.Update, requireAdmin)
	products.DELETE("/:id", d.ProductHandler.Delete, requireAdmin)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", d.OrderHandler.List)
	orders.POST("", d.OrderHandler.Create)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, auth.AdminOnly)
	orders.DELETE("/:id", d.OrderHandler.Cancel)

	cart := api.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.List)
	cart.POST("", d.CartHandler.Add)
	cart.POST("/merge", d.CartHandler.Merge)
	cart.PUT("/:id", d.CartHandler.Update)
	cart.DELETE("/:id", d.CartHandler.Remove)
	cart.DELETE("", d.CartHandler.Clear)

	if d.GuestCartHandler != nil {
		guest := api.Group("/guest-cart", d.Guard.Optional)
		guest.GET("", d.GuestCartHandler.Get)
		guest.DELETE("", d.GuestCartHandler.Clear)
		guest.POST("/items", d.GuestCartHandler.Add)
		guest.PUT("/items/:product_id", d.GuestCartHandler.Update)
		guest.DELETE("/items/:product_id", d.GuestCartHandler.Remove)
	}
}
