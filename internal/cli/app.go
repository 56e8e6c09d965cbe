package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/Skotchmaster/petstore/internal/config"
	"github.com/Skotchmaster/petstore/internal/httpserver"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/search"
	"github.com/Skotchmaster/petstore/internal/service"
	"github.com/Skotchmaster/petstore/pkg/db"
	"github.com/Skotchmaster/petstore/pkg/events"
	"github.com/Skotchmaster/petstore/pkg/metrics"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
	"github.com/Skotchmaster/petstore/pkg/middleware/ratelimit"
	redisclient "github.com/Skotchmaster/petstore/pkg/redis"
	"github.com/Skotchmaster/petstore/pkg/tokens"
)

type publisher interface {
	service.EventPublisher
	Close() error
}

// app holds the process-wide connections. Optional backends stay nil when
// their configuration is empty.
type app struct {
	cfg     *config.Config
	db      *gorm.DB
	dialect db.Dialect
	redis   *redisclient.Client
	events  publisher
	index   *search.Client
}

type openOpts struct {
	redis  bool
	events bool
	index  bool
}

func openApp(ctx context.Context, c *config.Config, o openOpts) (*app, error) {
	gdb, dialect, err := db.Open(ctx, c.DB.URL)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: c, db: gdb, dialect: dialect, events: events.Nop{}}

	if o.redis && c.Redis.Enabled() {
		a.redis, err = redisclient.New(ctx, redisclient.Options{
			URL:          c.Redis.URL,
			PoolSize:     c.Redis.PoolSize,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, multierr.Append(err, a.Close())
		}
	}

	if o.events && c.Kafka.Enabled() {
		a.events = events.NewProducer(c.Kafka.Brokers)
	}

	if o.index && c.Search.Enabled() {
		a.index, err = search.NewClient(search.Config{
			URL:      c.Search.URL,
			Username: c.Search.Username,
			Password: c.Search.Password,
			Index:    c.Search.Index,
		})
		if err != nil {
			return nil, multierr.Append(err, a.Close())
		}
	}
	return a, nil
}

func (a *app) Close() error {
	var err error
	if a.events != nil {
		err = multierr.Append(err, a.events.Close())
	}
	if a.redis != nil {
		err = multierr.Append(err, a.redis.Close())
	}
	if a.db != nil {
		err = multierr.Append(err, db.Close(a.db))
	}
	return err
}

// productIndex keeps a nil *search.Client from turning into a non-nil interface.
func (a *app) productIndex() service.ProductIndex {
	if a.index == nil {
		return nil
	}
	return a.index
}

func (a *app) guestStore() service.GuestCartStore {
	if a.redis == nil {
		return nil
	}
	return a.redis
}

func (a *app) limiter() ratelimit.Limiter {
	if a.redis == nil {
		return nil
	}
	return a.redis
}

func (a *app) pricing() service.Pricing {
	p := a.cfg.Pricing
	return service.Pricing{
		FreeShippingThreshold: p.FreeShippingThreshold,
		ShippingFee:           p.ShippingFee,
		TaxRate:               p.TaxRate,
	}
}

func (a *app) productService() *service.ProductService {
	return &service.ProductService{Repo: repo.New(a.db), Index: a.productIndex(), Events: a.events}
}

// httpDeps wires services and handlers for the API server.
func (a *app) httpDeps(reg *prometheus.Registry) *httpserver.Deps {
	c := a.cfg
	r := repo.New(a.db)
	issuer := tokens.NewIssuer([]byte(c.JWT.Secret), c.JWT.TTL)
	authSvc := &service.AuthService{Repo: r, Tokens: issuer, Events: a.events}

	checks := map[string]httpserver.ReadyCheck{"database": r.Ping}
	if a.redis != nil {
		checks["redis"] = a.redis.Ping
	}

	d := &httpserver.Deps{
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:     &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: &service.CategoryService{Repo: r}},
		ProductHandler: &httpserver.ProductHTTP{
			Svc:     a.productService(),
			Uploads: &service.UploadService{Dir: c.Media.UploadDir, MaxSize: c.Media.MaxFileSize},
		},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:    r,
			Pricing: a.pricing(),
			Events:  a.events,
			Metrics: metrics.NewOrderMetrics(reg),
		}},
		CartHandler:   &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Guest: a.guestStore(), Events: a.events}},
		HealthHandler: &httpserver.HealthHTTP{Checks: checks},
		Guard:         auth.NewGuard(issuer, authSvc),
		Limiter:       a.limiter(),
		LoginLimit:    c.Redis.LoginRateLimit,
		LoginWindow:   c.Redis.LoginRateWindow,
		Logger:        logger,
		Metrics:       metrics.NewHTTPMetrics(reg),
		Gatherer:      reg,
		CORSOrigins:   c.HTTP.CORSOrigins,
		BodyLimit:     fmt.Sprintf("%dK", c.Media.MaxFileSize/1024+1024),
		StaticDir:     c.Media.StaticDir,
	}
	if a.redis != nil {
		d.GuestCartHandler = &httpserver.GuestCartHTTP{Svc: &service.GuestCartService{
			Repo:  r,
			Store: a.redis,
			TTL:   c.Redis.GuestCartTTL,
		}}
	}
	return d
}
