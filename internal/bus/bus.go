// Package bus provides the in-process cart-changed notification channel.
// Consumers subscribe instead of polling the cart; publishers never block on
// a slow subscriber.
package bus

import (
	"sync"

	"github.com/shopspring/decimal"
)

// CartEvent describes the cart after a mutation.
type CartEvent struct {
	SessionID string
	Count     int
	Total     decimal.Decimal
}

// CartEvents is a typed publish/subscribe hub. The zero value is not usable;
// use New.
type CartEvents struct {
	mu   sync.Mutex
	subs map[int]chan CartEvent
	next int
}

func New() *CartEvents {
	return &CartEvents{subs: map[int]chan CartEvent{}}
}

// Subscribe returns a channel of cart events and a cancel function. The
// channel is buffered; events arriving while the buffer is full are dropped
// for that subscriber.
func (b *CartEvents) Subscribe() (<-chan CartEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan CartEvent, 8)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every current subscriber without blocking.
func (b *CartEvents) Publish(ev CartEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
