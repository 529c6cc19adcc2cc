// Package draft opportunistically snapshots an in-progress checkout to the
// order service so abandoned carts are recoverable. The channel is fire and
// forget: failures are logged and swallowed, the shopper is never
// interrupted by it.
package draft

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spicetrail/go-storefront-checkout/internal/cart"
	"github.com/spicetrail/go-storefront-checkout/internal/checkout"
	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
	"github.com/spicetrail/go-storefront-checkout/internal/pricing"
)

// Saver is the draft-upsert collaborator.
type Saver interface {
	CreateDraft(ctx context.Context, draft orderclient.DraftPayload) error
}

// DefaultDebounce is the quiet period required on the trigger fields before
// a draft is sent.
const DefaultDebounce = 5 * time.Second

const sendTimeout = 10 * time.Second

// Recorder debounces checkout changes and sends at most one draft save per
// quiet window. A timer firing while a save is still pending is skipped, not
// queued.
type Recorder struct {
	saver    Saver
	debounce time.Duration
	draftID  string

	mu       sync.Mutex
	timer    *time.Timer
	pending  orderclient.DraftPayload
	lastSig  string
	inFlight bool
	closed   bool
}

// NewRecorder returns a Recorder with its own draft id for the checkout
// session. debounce <= 0 selects the default window.
func NewRecorder(saver Saver, debounce time.Duration) *Recorder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Recorder{
		saver:    saver,
		debounce: debounce,
		draftID:  uuid.NewString(),
	}
}

// Observe feeds the latest checkout snapshot into the recorder. Recording is
// gated on a non-empty phone and a non-empty cart; the debounce timer
// re-arms only when a trigger field (phone, item count, payment tag)
// changes. Non-trigger edits refresh the pending snapshot without resetting
// the window.
func (r *Recorder) Observe(items []cart.LineItem, st checkout.State) {
	phone := st.ShippingAddress.Phone

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if phone == "" || len(items) == 0 {
		r.disarmLocked()
		return
	}

	r.pending = buildPayload(r.draftID, items, st)

	sig := fmt.Sprintf("%s|%d|%s", phone, countOf(items), st.Payment.Tag())
	if sig == r.lastSig && r.timer != nil {
		return
	}
	r.lastSig = sig

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

// Cancel drops any pending draft and stops the timer, e.g. after a
// successful order submission.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmLocked()
}

// Close cancels and permanently disables the recorder.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmLocked()
	r.closed = true
}

func (r *Recorder) disarmLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.lastSig = ""
	r.pending = orderclient.DraftPayload{}
}

func (r *Recorder) fire() {
	r.mu.Lock()
	if r.closed || r.inFlight {
		// skip-if-busy: the newer snapshot is dropped, not queued
		r.mu.Unlock()
		return
	}
	payload := r.pending
	payload.Items = orderclient.FilterValidItems(payload.Items)
	if len(payload.Items) == 0 {
		// nothing real to record
		r.timer = nil
		r.mu.Unlock()
		return
	}
	r.inFlight = true
	r.timer = nil
	r.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := r.saver.CreateDraft(ctx, payload); err != nil {
			// best effort: log and move on
			log.Printf("[draft] save skipped: %v", err)
		}
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()
}

func buildPayload(draftID string, items []cart.LineItem, st checkout.State) orderclient.DraftPayload {
	wire := make([]orderclient.LineItem, 0, len(items))
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		wire = append(wire, orderclient.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	return orderclient.DraftPayload{
		DraftID:         draftID,
		Items:           wire,
		ShippingAddress: st.ShippingAddress,
		PaymentMethod:   st.Payment.Tag(),
		OrderNote:       st.OrderNote,
		Subtotal:        pricing.Subtotal(lines),
		Shipping:        pricing.Shipping(lines),
		Total:           pricing.Total(lines),
	}
}

func countOf(items []cart.LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
