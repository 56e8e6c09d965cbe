package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartAPI is the server side of the cart. *Client implements it.
type CartAPI interface {
	Cart(ctx context.Context) ([]CartItem, error)
	AddToCart(ctx context.Context, productID uint, qty int) (*CartItem, error)
	UpdateCartItem(ctx context.Context, itemID uint, qty int) (*CartItem, error)
	RemoveCartItem(ctx context.Context, itemID uint) error
	ClearCart(ctx context.Context) error
}

// CartStore persists the local copy of the cart.
type CartStore interface {
	Load() ([]Line, error)
	Save(lines []Line) error
}

type Line struct {
	ItemID    uint            `json:"item_id,omitempty"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

type Snapshot struct {
	Lines     []Line
	ItemCount int
	Total     decimal.Decimal
	Diverged  bool
}

// CartReconciler keeps one view of the cart. Signed-in mutations go to the
// server first; anonymous ones only touch the local store. A failed server
// call is applied locally and marks the cart diverged until Reload.
type CartReconciler struct {
	api     CartAPI
	store   CartStore
	authed  func() bool
	log     zerolog.Logger
	mu      sync.Mutex
	lines   []Line
	count   int
	total   decimal.Decimal
	diverge bool
}

func NewCartReconciler(api CartAPI, store CartStore, session *Session, log zerolog.Logger) *CartReconciler {
	if store == nil {
		store = &MemoryStore{}
	}
	authed := func() bool { return false }
	if session != nil {
		authed = session.Authenticated
	}
	return &CartReconciler{api: api, store: store, authed: authed, log: log, total: decimal.Zero}
}

// Load fills the cart from the server when signed in, otherwise from the store.
func (r *CartReconciler) Load(ctx context.Context) (Snapshot, error) {
	if r.authed() {
		return r.Reload(ctx)
	}
	lines, err := r.store.Load()
	if err != nil {
		return Snapshot{}, fmt.Errorf("load cart: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = lines
	r.recount()
	return r.snapshot(), nil
}

// Reload replaces the local cart with the server copy and clears divergence.
func (r *CartReconciler) Reload(ctx context.Context) (Snapshot, error) {
	items, err := r.api.Cart(ctx)
	if err != nil {
		return r.Snapshot(), fmt.Errorf("fetch cart: %w", err)
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, lineFromItem(it))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = lines
	r.diverge = false
	r.recount()
	r.persist()
	return r.snapshot(), nil
}

func (r *CartReconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Add increments the line for p by qty.
func (r *CartReconciler) Add(ctx context.Context, p Product, qty int) (Snapshot, error) {
	if qty <= 0 {
		return r.Snapshot(), errors.New("quantity must be positive")
	}
	var item *CartItem
	var remoteErr error
	if r.authed() {
		item, remoteErr = r.api.AddToCart(ctx, p.ID, qty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if item != nil {
		r.upsert(lineFromItem(*item))
	} else {
		i := r.find(p.ID)
		if i < 0 {
			r.lines = append(r.lines, Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Image: p.ImageURL, Quantity: qty})
		} else {
			r.lines[i].Quantity += qty
		}
	}
	return r.finish("add", remoteErr)
}

// Update sets the quantity of productID; zero or less removes the line.
func (r *CartReconciler) Update(ctx context.Context, productID uint, qty int) (Snapshot, error) {
	if qty <= 0 {
		return r.Remove(ctx, productID)
	}
	var item *CartItem
	var remoteErr error
	if r.authed() {
		if id := r.itemID(productID); id != 0 {
			item, remoteErr = r.api.UpdateCartItem(ctx, id, qty)
		} else {
			remoteErr = fmt.Errorf("product %d has no server cart line", productID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if item != nil {
		r.upsert(lineFromItem(*item))
	} else if i := r.find(productID); i >= 0 {
		r.lines[i].Quantity = qty
	}
	return r.finish("update", remoteErr)
}

func (r *CartReconciler) Remove(ctx context.Context, productID uint) (Snapshot, error) {
	var remoteErr error
	if r.authed() {
		if id := r.itemID(productID); id != 0 {
			remoteErr = r.api.RemoveCartItem(ctx, id)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(productID); i >= 0 {
		r.lines = append(r.lines[:i], r.lines[i+1:]...)
	}
	return r.finish("remove", remoteErr)
}

func (r *CartReconciler) Clear(ctx context.Context) (Snapshot, error) {
	var remoteErr error
	if r.authed() {
		remoteErr = r.api.ClearCart(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
	return r.finish("clear", remoteErr)
}

func (r *CartReconciler) itemID(productID uint) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(productID); i >= 0 {
		return r.lines[i].ItemID
	}
	return 0
}

func (r *CartReconciler) find(productID uint) int {
	for i := range r.lines {
		if r.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (r *CartReconciler) upsert(l Line) {
	if i := r.find(l.ProductID); i >= 0 {
		r.lines[i] = l
		return
	}
	r.lines = append(r.lines, l)
}

// finish must be called with mu held.
func (r *CartReconciler) finish(op string, remoteErr error) (Snapshot, error) {
	if remoteErr != nil {
		r.diverge = true
		r.log.Warn().Err(remoteErr).Str("op", op).Msg("cart_sync_failed")
	}
	r.recount()
	r.persist()
	return r.snapshot(), nil
}

func (r *CartReconciler) recount() {
	count := 0
	total := decimal.Zero
	for _, l := range r.lines {
		count += l.Quantity
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	r.count = count
	r.total = total
}

func (r *CartReconciler) persist() {
	if err := r.store.Save(r.lines); err != nil {
		r.log.Warn().Err(err).Msg("cart_store_save_failed")
	}
}

func (r *CartReconciler) snapshot() Snapshot {
	lines := make([]Line, len(r.lines))
	copy(lines, r.lines)
	return Snapshot{Lines: lines, ItemCount: r.count, Total: r.total, Diverged: r.diverge}
}

func lineFromItem(it CartItem) Line {
	l := Line{ItemID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity}
	if it.Product != nil {
		l.Name = it.Product.Name
		l.Price = it.Product.Price
		l.Image = it.Product.ImageURL
	}
	return l
}

type MemoryStore struct {
	mu    sync.Mutex
	lines []Line
}

func (s *MemoryStore) Load() ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *MemoryStore) Save(lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]Line, len(lines))
	copy(s.lines, lines)
	return nil
}

// FileStore keeps the cart as JSON at Path. A missing file is an empty cart.
type FileStore struct {
	Path string
}

func (s FileStore) Load() ([]Line, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return lines, nil
}

func (s FileStore) Save(lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".cart-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}
