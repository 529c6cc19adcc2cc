package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spicetrail/go-storefront-checkout/internal/cart"
	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
	"github.com/spicetrail/go-storefront-checkout/internal/pricing"
)

// Submission phases.
const (
	PhaseIdle       = "IDLE"
	PhaseValidating = "VALIDATING"
	PhaseSubmitting = "SUBMITTING"
	PhaseSucceeded  = "SUCCEEDED"
	PhaseFailed     = "FAILED"
)

var (
	// ErrSubmitInFlight is returned when a submission is already running;
	// the duplicate attempt is ignored, no second order is created.
	ErrSubmitInFlight = errors.New("checkout: submission already in progress")

	// ErrMissingPrecondition is returned when no address or no payment
	// selection is present. The submitter stays Idle.
	ErrMissingPrecondition = errors.New("checkout: shipping address and payment method are required")

	// ErrNoValidItems is returned when the cart holds no line item with a
	// well-formed product id.
	ErrNoValidItems = errors.New("checkout: no valid items in cart")
)

// OrderCreator is the order-creation collaborator.
type OrderCreator interface {
	Create(ctx context.Context, payload orderclient.OrderPayload) (*orderclient.CreatedOrder, error)
}

// DraftCanceler cancels any pending draft save after a successful order.
type DraftCanceler interface {
	Cancel()
}

// DefaultSubmitTimeout bounds the order-creation call. A request that never
// resolves transitions the submitter to Failed instead of pinning it in
// Submitting forever.
const DefaultSubmitTimeout = 30 * time.Second

// Submitter drives Idle -> Validating -> Submitting -> Succeeded/Failed. At
// most one submission runs at a time.
type Submitter struct {
	cart    *cart.Store
	state   *StateCache
	history *HistoryStore
	orders  OrderCreator
	draft   DraftCanceler // may be nil
	timeout time.Duration

	mu    sync.Mutex
	phase string
}

func NewSubmitter(c *cart.Store, state *StateCache, history *HistoryStore, orders OrderCreator, draft DraftCanceler, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Submitter{
		cart:    c,
		state:   state,
		history: history,
		orders:  orders,
		draft:   draft,
		timeout: timeout,
		phase:   PhaseIdle,
	}
}

// Phase returns the current submission phase.
func (s *Submitter) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Submit validates the checkout and places the order. On success the cart,
// the cached checkout state, and any pending draft are cleared and the
// created order is recorded in local history. On failure everything is left
// intact so the shopper can retry without re-entering data.
func (s *Submitter) Submit(ctx context.Context) (*orderclient.CreatedOrder, error) {
	s.mu.Lock()
	if s.phase == PhaseSubmitting || s.phase == PhaseValidating {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.phase = PhaseValidating
	s.mu.Unlock()

	payload, err := s.validate(ctx)
	if err != nil {
		// a missing precondition keeps the submitter Idle; a failed
		// validation is a Failed run
		if errors.Is(err, ErrMissingPrecondition) {
			s.setPhase(PhaseIdle)
		} else {
			s.setPhase(PhaseFailed)
		}
		return nil, err
	}

	s.setPhase(PhaseSubmitting)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.orders.Create(callCtx, *payload)
	if err != nil {
		s.setPhase(PhaseFailed)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("order submission timed out, please try again: %w", err)
		}
		return nil, err
	}

	// the order is placed; local cleanup failures must not report the
	// submission as failed
	if err := s.history.Append(ctx, *order); err != nil {
		log.Printf("[checkout] failed to record order %s locally: %v", order.OrderNumber, err)
	}
	if err := s.cart.Clear(ctx); err != nil {
		log.Printf("[checkout] failed to clear cart after order %s: %v", order.OrderNumber, err)
	}
	if err := s.state.Clear(ctx); err != nil {
		log.Printf("[checkout] failed to clear checkout state after order %s: %v", order.OrderNumber, err)
	}
	if s.draft != nil {
		s.draft.Cancel()
	}

	s.setPhase(PhaseSucceeded)
	return order, nil
}

// Reset returns a Succeeded or Failed submitter to Idle, re-arming the
// place-order action.
func (s *Submitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseSucceeded || s.phase == PhaseFailed {
		s.phase = PhaseIdle
	}
}

func (s *Submitter) validate(ctx context.Context) (*orderclient.OrderPayload, error) {
	st, err := s.state.Load(ctx)
	if err != nil {
		return nil, err
	}

	hasAddress := st.ShippingAddress != (orderclient.ShippingAddress{})
	if !hasAddress || !st.Payment.Selected() {
		return nil, ErrMissingPrecondition
	}

	items := FilterCartItems(s.cart.Items())
	if len(items) == 0 {
		return nil, ErrNoValidItems
	}

	addr, verr := validateAddress(st.ShippingAddress, st.FirstName, st.LastName)
	if verr != nil {
		return nil, verr
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}

	return &orderclient.OrderPayload{
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   st.Payment.Tag(),
		PaymentDetails:  st.Payment.Details,
		OrderNote:       st.OrderNote,
		Subtotal:        pricing.Subtotal(lines),
		Shipping:        pricing.Shipping(lines),
		Total:           pricing.Total(lines),
	}, nil
}

func (s *Submitter) setPhase(p string) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// FilterCartItems maps cart rows to wire line items, dropping rows whose
// product id is not well-formed.
func FilterCartItems(items []cart.LineItem) []orderclient.LineItem {
	out := make([]orderclient.LineItem, 0, len(items))
	for _, it := range items {
		if !orderclient.ValidProductID(it.ProductID) {
			continue
		}
		out = append(out, orderclient.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return out
}
