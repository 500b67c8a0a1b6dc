package cart

import (
	"context"
	"encoding/json"
	"sync"

	"cresshoe/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store is the authoritative list of line items for one cart. Every mutation
// re-persists the full item list before returning.
type Store struct {
	mu        sync.Mutex
	key       string
	items     []model.CartLineItem
	open      bool
	persister Persister
	logger    zerolog.Logger

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewStore creates a store persisted under key and hydrates it from the
// persister. Missing or unreadable records yield an empty cart.
func NewStore(ctx context.Context, key string, persister Persister, logger zerolog.Logger) *Store {
	s := &Store{
		key:         key,
		persister:   persister,
		logger:      logger.With().Str("component", "cart-store").Str("cart_key", key).Logger(),
		subscribers: make(map[int]func(Snapshot)),
	}
	s.items = s.hydrate(ctx)
	return s
}

// Key returns the persistence key of the store.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) hydrate(ctx context.Context) []model.CartLineItem {
	data, err := s.persister.Load(ctx, s.key)
	if err != nil {
		s.logger.Warn().Err(&PersistenceReadError{Key: s.key, Err: err}).Msg("starting with empty cart")
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var stored []model.CartLineItem
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn().Err(&PersistenceReadError{Key: s.key, Err: err}).Msg("starting with empty cart")
		return nil
	}

	items := make([]model.CartLineItem, 0, len(stored))
	for _, item := range stored {
		if item.Product.ID == "" || item.Quantity <= 0 {
			s.logger.Warn().
				Str("product_id", item.Product.ID).
				Int("quantity", item.Quantity).
				Msg("dropping invalid persisted line item")
			continue
		}
		items = append(items, item)
	}

	s.logger.Debug().Int("line_items", len(items)).Msg("cart hydrated")
	return items
}

// Add puts quantity units of product in the given size into the cart, merging
// with an existing line for the same product and size. A quantity below one
// adds a single unit. The cart is opened.
func (s *Store) Add(ctx context.Context, product model.Product, size, quantity int) {
	s.AddWithin(ctx, product, size, quantity, 0)
}

// AddWithin is Add with a cap on the resulting line quantity. When the line
// would exceed limit nothing changes and false is returned. A limit of zero
// or less means no cap.
func (s *Store) AddWithin(ctx context.Context, product model.Product, size, quantity, limit int) bool {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	i := s.indexOf(product.ID, size)
	current := 0
	if i >= 0 {
		current = s.items[i].Quantity
	}
	if limit > 0 && current+quantity > limit {
		s.mu.Unlock()
		return false
	}

	if i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, model.CartLineItem{Product: product, Size: size, Quantity: quantity})
	}
	s.open = true
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug().
		Str("product_id", product.ID).
		Int("size", size).
		Int("quantity", quantity).
		Msg("added to cart")
	s.notify(snap)
	return true
}

// Remove deletes the line for productID and size. Absent lines are ignored.
func (s *Store) Remove(ctx context.Context, productID string, size int) {
	s.mu.Lock()
	i := s.indexOf(productID, size)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SetQuantity replaces the quantity of the line for productID and size. A
// quantity of zero or less removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID string, size, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID, size)
		return
	}

	s.mu.Lock()
	i := s.indexOf(productID, size)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items[i].Quantity = quantity
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Clear empties the cart without changing its visibility.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// RemoveLines takes the given lines out of the cart, typically the lines of a
// submitted order. Each matching line loses the given quantity and is removed
// once nothing is left; units or lines added since are kept.
func (s *Store) RemoveLines(ctx context.Context, lines []model.CartLineItem) {
	s.mu.Lock()
	changed := false
	for _, line := range lines {
		i := s.indexOf(line.Product.ID, line.Size)
		if i < 0 {
			continue
		}
		changed = true
		if s.items[i].Quantity > line.Quantity {
			s.items[i].Quantity -= line.Quantity
			continue
		}
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItemsLocked()
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total returns the sum of price times quantity over all line items.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount returns the number of units in the cart.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// IsOpen reports whether the cart drawer is visible.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Open makes the cart visible.
func (s *Store) Open() { s.SetOpen(true) }

// Close hides the cart.
func (s *Store) Close() { s.SetOpen(false) }

// SetOpen sets cart visibility. Line items are not touched.
func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	if s.open == open {
		s.mu.Unlock()
		return
	}
	s.open = open
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Snapshot returns the current items and visibility.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called with a snapshot after every change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) indexOf(productID string, size int) int {
	for i, item := range s.items {
		if item.Matches(productID, size) {
			return i
		}
	}
	return -1
}

func (s *Store) copyItemsLocked() []model.CartLineItem {
	out := make([]model.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Items: s.copyItemsLocked(), IsOpen: s.open}
}

// persistLocked writes the full item list. Failures are logged; the in-memory
// cart stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []model.CartLineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode cart")
		return
	}

	if err := s.persister.Save(ctx, s.key, data); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist cart")
	}
}
