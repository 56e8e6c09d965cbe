package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	counters    map[string]int64
	hashes      map[string]map[string]string
	expireCalls map[string]time.Duration
	expireErr   error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		counters:    map[string]int64{},
		hashes:      map[string]map[string]string{},
		expireCalls: map[string]time.Duration{},
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.counters[key]++
	return redis.NewIntResult(m.counters[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if m.expireErr != nil {
		return redis.NewBoolResult(false, m.expireErr)
	}
	m.expireCalls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) TTL(_ context.Context, key string) *redis.DurationCmd {
	if ttl, ok := m.expireCalls[key]; ok {
		return redis.NewDurationResult(ttl, nil)
	}
	if _, ok := m.counters[key]; ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(-2, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.hashes[k]; ok {
			delete(m.hashes, k)
			n++
		}
		if _, ok := m.counters[k]; ok {
			delete(m.counters, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *mockCmdable) HIncrBy(_ context.Context, key, field string, incr int64) *redis.IntCmd {
	h := m.hash(key)
	cur, _ := strconv.ParseInt(h[field], 10, 64)
	cur += incr
	h[field] = strconv.FormatInt(cur, 10)
	return redis.NewIntResult(cur, nil)
}

func (m *mockCmdable) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	h := m.hash(key)
	for i := 0; i+1 < len(values); i += 2 {
		h[fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (m *mockCmdable) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	h := m.hash(key)
	for _, f := range fields {
		delete(h, f)
	}
	return redis.NewIntResult(int64(len(fields)), nil)
}

func (m *mockCmdable) hash(key string) map[string]string {
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	return h
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)
	assert.Len(t, mock.expireCalls, 1)

	allowed, count, err = client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(2), count)

	allowed, _, err = client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, mock.expireCalls["petstore:rate_limit:login:1.2.3.4"])
}

func TestFixedWindowAllow_RestoresLostExpiry(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.RateLimitKey("login:5.6.7.8")

	mock.expireErr = errors.New("i/o timeout")
	_, _, err := client.FixedWindowAllow(ctx, "login:5.6.7.8", 1, time.Minute)
	require.Error(t, err)
	assert.NotContains(t, mock.expireCalls, key)

	mock.expireErr = nil
	allowed, count, err := client.FixedWindowAllow(ctx, "login:5.6.7.8", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, time.Minute, mock.expireCalls[key])

	delete(mock.expireCalls, key)
	mock.expireCalls[key] = 30 * time.Second
	_, _, err = client.FixedWindowAllow(ctx, "login:5.6.7.8", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mock.expireCalls[key], "a live window keeps its expiry")
}

func TestGuestCartLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	ttl := 24 * time.Hour

	qty, err := client.AddGuestCartItem(ctx, "tok", 5, 2, ttl)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	qty, err = client.AddGuestCartItem(ctx, "tok", 5, 1, ttl)
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	require.NoError(t, client.SetGuestCartItem(ctx, "tok", 9, 4, ttl))
	assert.Equal(t, ttl, mock.expireCalls["petstore:guest_cart:tok"])

	lines, err := client.GuestCart(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{5: 3, 9: 4}, lines)

	require.NoError(t, client.RemoveGuestCartItem(ctx, "tok", 5))
	lines, err = client.GuestCart(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{9: 4}, lines)

	require.NoError(t, client.ClearGuestCart(ctx, "tok"))
	lines, err = client.GuestCart(ctx, "tok")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGuestCart_SkipsCorruptFields(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.hashes["petstore:guest_cart:tok"] = map[string]string{"7": "2", "x": "1", "8": "zero", "9": "-1"}
	client := &Client{store: mock}

	lines, err := client.GuestCart(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{7: 2}, lines)
}

func TestUninitializedClient(t *testing.T) {
	ctx := context.Background()
	client := &Client{}

	assert.Error(t, client.Ping(ctx))
	_, err := client.GuestCart(ctx, "tok")
	assert.Error(t, err)
	_, _, err = client.FixedWindowAllow(ctx, "s", 1, time.Second)
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "petstore:rate_limit:login", client.RateLimitKey("login"))
	assert.Equal(t, "petstore:guest_cart:abc", client.GuestCartKey(" abc "))
}
