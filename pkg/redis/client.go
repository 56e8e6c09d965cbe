package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace    = "petstore"
	rateLimitPrefix = "rate_limit"
	guestCartPrefix = "guest_cart"
)

var errNotInitialized = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	TTL(context.Context, string) *redis.DurationCmd
	Del(context.Context, ...string) *redis.IntCmd
	HGetAll(context.Context, string) *redis.MapStringStringCmd
	HIncrBy(context.Context, string, string, int64) *redis.IntCmd
	HSet(context.Context, string, ...any) *redis.IntCmd
	HDel(context.Context, string, ...string) *redis.IntCmd
}

// Client wraps the redis commands used for rate limits and guest carts.
type Client struct {
	store cmdable
	raw   *redis.Client
}

type Options struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New connects using a redis:// URL and verifies connectivity.
func New(ctx context.Context, o Options) (*Client, error) {
	if o.URL == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if o.PoolSize > 0 {
		opts.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		opts.DialTimeout = o.DialTimeout
	}
	if o.ReadTimeout > 0 {
		opts.ReadTimeout = o.ReadTimeout
	}
	if o.WriteTimeout > 0 {
		opts.WriteTimeout = o.WriteTimeout
	}

	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// IncrWithTTL increments key and makes sure it carries ttl. A key left
// without an expiry by an earlier failed EXPIRE gets one on the next hit.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if c.store == nil {
		return 0, errNotInitialized
	}
	count, err := c.store.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return count, nil
	}
	if count > 1 {
		left, err := c.store.TTL(ctx, key).Result()
		if err != nil {
			return count, err
		}
		// -1 means no expiry; -2 means the key vanished and there is nothing to fix.
		if left != -1 {
			return count, nil
		}
	}
	if _, err := c.store.Expire(ctx, key, ttl).Result(); err != nil {
		return count, err
	}
	return count, nil
}

// FixedWindowAllow counts a hit for scope and reports whether it is within limit.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	count, err := c.IncrWithTTL(ctx, c.RateLimitKey(scope), window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey(rateLimitPrefix, scope)
}

func (c *Client) GuestCartKey(token string) string {
	return buildKey(guestCartPrefix, token)
}

// GuestCart returns product id -> quantity for the cart token. A missing cart is empty.
func (c *Client) GuestCart(ctx context.Context, token string) (map[uint]int, error) {
	if c.store == nil {
		return nil, errNotInitialized
	}
	raw, err := c.store.HGetAll(ctx, c.GuestCartKey(token)).Result()
	if err != nil {
		return nil, err
	}

	lines := make(map[uint]int, len(raw))
	for field, value := range raw {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(value)
		if err != nil || qty <= 0 {
			continue
		}
		lines[uint(id)] = qty
	}
	return lines, nil
}

// AddGuestCartItem increments a line and returns the new quantity.
func (c *Client) AddGuestCartItem(ctx context.Context, token string, productID uint, qty int, ttl time.Duration) (int, error) {
	if c.store == nil {
		return 0, errNotInitialized
	}
	key := c.GuestCartKey(token)
	n, err := c.store.HIncrBy(ctx, key, productField(productID), int64(qty)).Result()
	if err != nil {
		return 0, err
	}
	if err := c.touch(ctx, key, ttl); err != nil {
		return int(n), err
	}
	return int(n), nil
}

func (c *Client) SetGuestCartItem(ctx context.Context, token string, productID uint, qty int, ttl time.Duration) error {
	if c.store == nil {
		return errNotInitialized
	}
	key := c.GuestCartKey(token)
	if err := c.store.HSet(ctx, key, productField(productID), qty).Err(); err != nil {
		return err
	}
	return c.touch(ctx, key, ttl)
}

func (c *Client) RemoveGuestCartItem(ctx context.Context, token string, productID uint) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.HDel(ctx, c.GuestCartKey(token), productField(productID)).Err()
}

func (c *Client) ClearGuestCart(ctx context.Context, token string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Del(ctx, c.GuestCartKey(token)).Err()
}

func (c *Client) touch(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.store.Expire(ctx, key, ttl).Err()
}

func productField(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
