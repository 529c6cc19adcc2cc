// Package cart owns the line items a shopper intends to purchase. Every
// mutation persists the full cart to durable storage before returning and
// publishes a cart-changed event so other views can refresh without polling.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spicetrail/go-storefront-checkout/internal/bus"
	"github.com/spicetrail/go-storefront-checkout/internal/pricing"
	"github.com/spicetrail/go-storefront-checkout/internal/storage"
)

// LineItem is one product+size row. Name, Price and Image are display
// snapshots taken at add-to-cart time and are not re-fetched live.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// Key identifies a cart row. The same product in two sizes is two rows.
func (li LineItem) Key() string {
	return li.ProductID + "_" + li.Size
}

var ErrBadQuantity = errors.New("cart: quantity must be at least 1")

// Store holds the in-memory cart and mirrors it to a KV store. A persistence
// failure is returned to the caller but the in-memory state is kept, so the
// shopper keeps their last-known-good cart even if the save lags.
type Store struct {
	kv        storage.KV
	events    *bus.CartEvents
	sessionID string

	mu      sync.Mutex
	items   []LineItem
	nowFunc func() time.Time
}

// NewStore loads (and migrates, if needed) any persisted cart for the
// session. A corrupt persisted cart is dropped rather than blocking the
// shopper.
func NewStore(ctx context.Context, kv storage.KV, events *bus.CartEvents, sessionID string) (*Store, error) {
	s := &Store{
		kv:        kv,
		events:    events,
		sessionID: sessionID,
		nowFunc:   time.Now,
	}
	raw, err := kv.Get(ctx, cartKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items, err := decodeSnapshot(raw)
	if err != nil {
		// unreadable snapshot: start empty, the old value will be
		// overwritten on the next mutation
		return s, nil
	}
	s.items = items
	return s, nil
}

// Add merges the item into an existing row with the same (productId, size)
// key, or appends a new row.
func (s *Store) Add(ctx context.Context, item LineItem) error {
	if item.Quantity < 1 {
		return ErrBadQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].Key() == item.Key() {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	return s.persistAndNotify(ctx)
}

// UpdateQuantity overwrites a row's quantity. A quantity of zero or less
// removes the row instead of persisting a zero-quantity line.
func (s *Store) UpdateQuantity(ctx context.Context, key string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity = quantity
			return s.persistAndNotify(ctx)
		}
	}
	// absent key: nothing to update, nothing to persist
	return nil
}

// Remove deletes the row. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persistAndNotify(ctx)
		}
	}
	return nil
}

// Clear empties the cart and removes the persisted representation.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	err := s.kv.Delete(ctx, cartKey)
	s.publish()
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Items returns a copy of the cart rows in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count sums quantities across rows, not the number of rows.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.items)
}

// Subtotal delegates to the pricing calculator.
func (s *Store) Subtotal() decimal.Decimal {
	return pricing.Subtotal(s.lines())
}

// Shipping delegates to the pricing calculator.
func (s *Store) Shipping() decimal.Decimal {
	return pricing.Shipping(s.lines())
}

// Total delegates to the pricing calculator.
func (s *Store) Total() decimal.Decimal {
	return pricing.Total(s.lines())
}

func (s *Store) lines() []pricing.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]pricing.Line, 0, len(s.items))
	for _, it := range s.items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	return lines
}

// persistAndNotify writes the snapshot and publishes the cart-changed event.
// The event goes out even when the write fails: observers render from the
// in-memory state, which has already moved on. Callers hold s.mu.
func (s *Store) persistAndNotify(ctx context.Context) error {
	raw, err := encodeSnapshot(s.items, s.nowFunc())
	if err == nil {
		err = s.kv.Set(ctx, cartKey, raw)
	}
	s.publish()
	if err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *Store) publish() {
	if s.events == nil {
		return
	}
	lines := make([]pricing.Line, 0, len(s.items))
	for _, it := range s.items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	s.events.Publish(bus.CartEvent{
		SessionID: s.sessionID,
		Count:     countOf(s.items),
		Total:     pricing.Total(lines),
	})
}

func countOf(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
