package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/testutil"
	"github.com/Skotchmaster/petstore/pkg/events"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
)

type recordedEvent struct {
	Topic string
	Key   string
	Type  string
	Data  any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	ev := event.(events.Event)
	f.events = append(f.events, recordedEvent{Topic: topic, Key: key, Type: ev.Type, Data: ev.Data})
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeIndex struct {
	indexed map[uint]string
	deleted []uint
	hits    []uint
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[uint]string{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	if f.err != nil {
		return f.err
	}
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) ([]uint, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.hits, int64(len(f.hits)), nil
}

type memGuestStore struct {
	carts map[string]map[uint]int
	err   error
}

func newMemGuestStore() *memGuestStore {
	return &memGuestStore{carts: map[string]map[uint]int{}}
}

func (m *memGuestStore) GuestCart(_ context.Context, token string) (map[uint]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[uint]int{}
	for k, v := range m.carts[token] {
		out[k] = v
	}
	return out, nil
}

func (m *memGuestStore) cart(token string) map[uint]int {
	c, ok := m.carts[token]
	if !ok {
		c = map[uint]int{}
		m.carts[token] = c
	}
	return c
}

func (m *memGuestStore) AddGuestCartItem(_ context.Context, token string, productID uint, qty int, _ time.Duration) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	c := m.cart(token)
	c[productID] += qty
	return c[productID], nil
}

func (m *memGuestStore) SetGuestCartItem(_ context.Context, token string, productID uint, qty int, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.cart(token)[productID] = qty
	return nil
}

func (m *memGuestStore) RemoveGuestCartItem(_ context.Context, token string, productID uint) error {
	if m.err != nil {
		return m.err
	}
	delete(m.cart(token), productID)
	return nil
}

func (m *memGuestStore) ClearGuestCart(_ context.Context, token string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.carts, token)
	return nil
}

var errBoom = errors.New("boom")

type env struct {
	t    *testing.T
	repo *repo.GormRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{t: t, repo: repo.New(testutil.NewDB(t))}
}

func (e *env) user(email string, admin bool) auth.Principal {
	u := testutil.CreateUser(e.t, e.repo.DB, email, "secret", admin)
	return auth.Principal{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin, IsActive: true}
}

func (e *env) product(name, price string, stock int) *models.Product {
	return testutil.CreateProduct(e.t, e.repo.DB, name, price, stock, nil)
}

func (e *env) stock(id uint) int {
	e.t.Helper()
	p, err := e.repo.GetProduct(context.Background(), id)
	require.NoError(e.t, err)
	return p.Stock
}
