package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/petstore/pkg/tokens"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	devJWTSecret = "dev-secret-change-me"
)

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	DB      DBConfig
	JWT     JWTConfig
	Admin   AdminConfig
	Media   MediaConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Search  SearchConfig
	Pricing PricingConfig
}

type AppConfig struct {
	Env       string `envconfig:"APP_ENV" default:"dev"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type HTTPConfig struct {
	Port            int           `envconfig:"PORT" default:"8000"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGIN" default:"http://localhost:3001"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (h HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

type DBConfig struct {
	URL         string `envconfig:"DATABASE_URL" default:"sqlite:./petstore.db"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

type JWTConfig struct {
	Secret    string `envconfig:"JWT_SECRET"`
	ExpiresIn string `envconfig:"JWT_EXPIRES_IN" default:"8d"`

	TTL time.Duration `ignored:"true"`
}

type AdminConfig struct {
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	Password string `envconfig:"ADMIN_PASSWORD" default:"admin"`
	Name     string `envconfig:"ADMIN_NAME" default:"Admin User"`
}

type MediaConfig struct {
	StaticDir   string `envconfig:"STATIC_DIR" default:"static"`
	UploadDir   string `envconfig:"UPLOAD_DIR" default:"static/images/products"`
	MaxFileSize int64  `envconfig:"MAX_FILE_SIZE" default:"5242880"`
}

type RedisConfig struct {
	URL             string        `envconfig:"REDIS_URL"`
	PoolSize        int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout     time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout     time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout    time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	LoginRateLimit  int64         `envconfig:"LOGIN_RATE_LIMIT" default:"10"`
	LoginRateWindow time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"1m"`
	GuestCartTTL    time.Duration `envconfig:"GUEST_CART_TTL" default:"168h"`
}

func (r RedisConfig) Enabled() bool { return r.URL != "" }

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type SearchConfig struct {
	URL      string `envconfig:"ES_URL"`
	Username string `envconfig:"ES_USER"`
	Password string `envconfig:"ES_PASSWORD"`
	Index    string `envconfig:"ES_INDEX" default:"products"`
}

func (s SearchConfig) Enabled() bool { return s.URL != "" }

type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal `envconfig:"FREE_SHIPPING_THRESHOLD" default:"100"`
	ShippingFee           decimal.Decimal `envconfig:"SHIPPING_FEE" default:"10"`
	TaxRate               decimal.Decimal `envconfig:"TAX_RATE" default:"0.10"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if !c.App.IsDev() {
			return errors.New("JWT_SECRET is required outside APP_ENV=dev")
		}
		c.JWT.Secret = devJWTSecret
	}
	ttl, err := tokens.ParseTTL(c.JWT.ExpiresIn)
	if err != nil {
		return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	c.JWT.TTL = ttl

	if c.Media.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	if c.Pricing.TaxRate.IsNegative() || c.Pricing.ShippingFee.IsNegative() {
		return errors.New("pricing values must not be negative")
	}
	return nil
}
