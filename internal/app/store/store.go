package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ikkim/storefront-cart/internal/app/model"
	"github.com/ikkim/storefront-cart/internal/app/storage"
	"github.com/ikkim/storefront-cart/pkg/logger"
)

// cartKey is the fixed storage key the cart is persisted under.
const cartKey = "cart"

// Store holds the cart state for one storefront session. It hydrates
// once from the backend, persists best-effort after every change, and
// notifies subscribers on every successful state change. The backend
// may be nil, in which case the cart lives in memory only.
type Store struct {
	mu        sync.Mutex
	backend   storage.KeyValueStore
	items     model.Cart
	cartOpen  bool
	hydrated  bool
	listeners []func()
}

func New(backend storage.KeyValueStore) *Store {
	return &Store{
		backend: backend,
		items:   model.Cart{},
	}
}

// Subscribe registers a listener invoked after every successful state
// change. Listeners run outside the store lock and must not block.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

// Hydrate loads the persisted cart. It runs at most once per store;
// later calls are no-ops. Until it has run, no change is persisted, so
// a not-yet-read cart cannot be overwritten with an empty one.
// Hydration never fails: corrupt or unreadable state leaves an empty
// cart and, where possible, erases the stored value.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return
	}
	s.hydrated = true

	if s.backend == nil {
		logger.Debug("No storage backend, skipping cart hydration")
		return
	}

	raw, err := s.backend.Get(ctx, cartKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return
	}
	if err != nil {
		logger.Error("Failed to read persisted cart", err)
		return
	}

	var items model.Cart
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Error("Persisted cart is corrupt, resetting", err)
		s.items = model.Cart{}
		if err := s.backend.Remove(ctx, cartKey); err != nil {
			logger.Error("Failed to erase corrupt cart", err)
		}
		return
	}

	s.items = sanitize(items)

	logger.Info("Cart hydrated", map[string]interface{}{
		"items": len(s.items),
	})
}

// sanitize drops decoded entries that could never have been produced
// by the store itself: missing ids and non-positive quantities.
func sanitize(items model.Cart) model.Cart {
	clean := make(model.Cart, 0, len(items))
	dropped := 0
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			dropped++
			continue
		}
		clean = append(clean, item)
	}
	if dropped > 0 {
		logger.Warn("Dropped invalid persisted cart entries", map[string]interface{}{
			"dropped": dropped,
			"kept":    len(clean),
		})
	}
	return clean
}

// AddToCart adds one unit of the product. Adding a product already in
// the cart increments the existing line's quantity and leaves its
// other fields untouched. A successful add opens the cart panel.
func (s *Store) AddToCart(ctx context.Context, product model.Product) {
	if product.ID == "" {
		logger.Warn("Cannot add to cart: missing product id", map[string]interface{}{
			"name": product.Name,
		})
		return
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, model.CartItem{
			ID:          product.ID,
			Name:        product.Name,
			Price:       product.Price,
			Description: product.Description,
			Image:       product.Image,
			Quantity:    1,
		})
	}
	s.cartOpen = true
	s.persist(ctx)
	s.mu.Unlock()

	logger.Info("Cart item added", map[string]interface{}{
		"product_id": product.ID,
		"existing":   found,
	})
	s.notify()
}

// RemoveFromCart removes the line with the given id. An empty or
// unknown id leaves the cart unchanged.
func (s *Store) RemoveFromCart(ctx context.Context, id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persist(ctx)
	}
	s.mu.Unlock()

	if !removed {
		return
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"product_id": id,
	})
	s.notify()
}

// UpdateQuantity sets the quantity of the line with the given id. A
// quantity of zero or less removes the line instead; an unknown id
// changes nothing.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if id == "" {
		return
	}
	if quantity <= 0 {
		s.RemoveFromCart(ctx, id)
		return
	}

	s.mu.Lock()
	updated := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			updated = true
			break
		}
	}
	if updated {
		s.persist(ctx)
	}
	s.mu.Unlock()

	if !updated {
		return
	}

	logger.Info("Cart item quantity updated", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})
	s.notify()
}

// ClearCart empties the cart and erases the persisted copy. Failure to
// erase is logged and otherwise ignored.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.items = model.Cart{}
	if s.backend != nil {
		if err := s.backend.Remove(ctx, cartKey); err != nil {
			logger.Error("Failed to erase persisted cart", err)
		}
	}
	s.persist(ctx)
	s.mu.Unlock()

	logger.Info("Cart cleared")
	s.notify()
}

// Items returns a copy of the current cart lines in insertion order.
func (s *Store) Items() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(model.Cart, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItems returns the sum of all line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items.TotalItems()
}

// TotalPrice returns the sum of price times quantity over all lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items.TotalPrice()
}

// IsCartOpen reports whether the cart panel is open.
func (s *Store) IsCartOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cartOpen
}

// SetIsCartOpen toggles the cart panel with no other side effects.
func (s *Store) SetIsCartOpen(open bool) {
	s.mu.Lock()
	s.cartOpen = open
	s.mu.Unlock()

	s.notify()
}

// persist writes the cart to the backend. Callers hold the lock.
// Persistence is best-effort: failures are logged and the in-memory
// cart stays authoritative. Nothing is written before hydration.
func (s *Store) persist(ctx context.Context) {
	if !s.hydrated || s.backend == nil {
		return
	}

	data, err := json.Marshal(s.items)
	if err != nil {
		logger.Error("Failed to encode cart", err)
		return
	}

	if err := s.backend.Set(ctx, cartKey, string(data)); err != nil {
		logger.Error("Failed to persist cart", err, map[string]interface{}{
			"items": len(s.items),
		})
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
