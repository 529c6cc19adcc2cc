package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spicetrail/go-storefront-checkout/internal/bus"
	"github.com/spicetrail/go-storefront-checkout/internal/cart"
	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
	"github.com/spicetrail/go-storefront-checkout/internal/storage"
)

const validID = "6655443322110099aabbccdd"

// fakeCreator records calls and returns a canned result.
type fakeCreator struct {
	calls   int
	err     error
	blockOn chan struct{} // when set, Create waits for it or ctx
}

func (f *fakeCreator) Create(ctx context.Context, p orderclient.OrderPayload) (*orderclient.CreatedOrder, error) {
	f.calls++
	if f.blockOn != nil {
		select {
		case <-f.blockOn:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &orderclient.CreatedOrder{
		OrderNumber:     "ORD-1A2B3C",
		Status:          "pending",
		Items:           p.Items,
		ShippingAddress: p.ShippingAddress,
		PaymentMethod:   p.PaymentMethod,
		Subtotal:        p.Subtotal,
		Shipping:        p.Shipping,
		Total:           p.Total,
	}, nil
}

type fakeCanceler struct{ canceled bool }

func (f *fakeCanceler) Cancel() { f.canceled = true }

type fixture struct {
	kv        *storage.Memory
	cart      *cart.Store
	state     *StateCache
	history   *HistoryStore
	creator   *fakeCreator
	canceler  *fakeCanceler
	submitter *Submitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemory()
	c, err := cart.NewStore(ctx, kv, bus.New(), "s1")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	f := &fixture{
		kv:       kv,
		cart:     c,
		state:    NewStateCache(kv),
		history:  NewHistoryStore(kv),
		creator:  &fakeCreator{},
		canceler: &fakeCanceler{},
	}
	f.submitter = NewSubmitter(f.cart, f.state, f.history, f.creator, f.canceler, time.Second)
	return f
}

func (f *fixture) addItem(t *testing.T, id string) {
	t.Helper()
	err := f.cart.Add(context.Background(), cart.LineItem{
		ProductID: id, Name: "Assam Gold", Size: "250g",
		Price: decimal.NewFromInt(100), Quantity: 2,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
}

func (f *fixture) saveState(t *testing.T, st State) {
	t.Helper()
	if err := f.state.Save(context.Background(), st); err != nil {
		t.Fatalf("save state: %v", err)
	}
}

func readyState() State {
	return State{
		ShippingAddress: fullAddress(),
		Payment:         PaymentMethod{Kind: PaymentCOD},
		OrderNote:       "ring the bell",
	}
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, validID)
	f.saveState(t, readyState())

	order, err := f.submitter.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.OrderNumber != "ORD-1A2B3C" {
		t.Fatalf("order number = %q", order.OrderNumber)
	}
	if !order.Total.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total = %s, want 200", order.Total)
	}
	if f.submitter.Phase() != PhaseSucceeded {
		t.Fatalf("phase = %s", f.submitter.Phase())
	}

	// side effects: cart cleared, state cleared, draft canceled, history written
	if f.cart.Count() != 0 {
		t.Fatalf("cart not cleared, count = %d", f.cart.Count())
	}
	st, _ := f.state.Load(context.Background())
	if st.ShippingAddress.Phone != "" || st.Payment.Selected() {
		t.Fatalf("checkout state not cleared: %+v", st)
	}
	if !f.canceler.canceled {
		t.Fatal("pending draft not canceled")
	}
	orders, err := f.history.List(context.Background())
	if err != nil || len(orders) != 1 {
		t.Fatalf("history = %+v, err %v", orders, err)
	}
}

func TestSubmit_PreconditionMissingPayment(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, validID)
	st := readyState()
	st.Payment = PaymentMethod{Kind: PaymentPending}
	f.saveState(t, st)

	_, err := f.submitter.Submit(context.Background())
	if !errors.Is(err, ErrMissingPrecondition) {
		t.Fatalf("expected ErrMissingPrecondition, got %v", err)
	}
	if f.submitter.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want IDLE", f.submitter.Phase())
	}
	if f.creator.calls != 0 {
		t.Fatal("collaborator must not be called")
	}
}

func TestSubmit_NoValidItems(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "stale-local-id")
	f.saveState(t, readyState())

	_, err := f.submitter.Submit(context.Background())
	if !errors.Is(err, ErrNoValidItems) {
		t.Fatalf("expected ErrNoValidItems, got %v", err)
	}
	if f.submitter.Phase() != PhaseFailed {
		t.Fatalf("phase = %s, want FAILED", f.submitter.Phase())
	}
}

func TestSubmit_ValidationReportsAllMissingFields(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, validID)
	st := readyState()
	st.ShippingAddress.City = ""
	st.ShippingAddress.Pincode = ""
	f.saveState(t, st)

	_, err := f.submitter.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Missing) != 2 {
		t.Fatalf("missing = %v, want both city and pincode", verr.Missing)
	}
}

func TestSubmit_NameSynthesisScenario(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, validID)
	st := State{
		ShippingAddress: orderclient.ShippingAddress{
			Address: "X", City: "Y", State: "Z", Pincode: "111111",
		},
		FirstName: "A",
		LastName:  "B",
		Payment:   PaymentMethod{Kind: PaymentCOD},
	}
	f.saveState(t, st)

	order, err := f.submitter.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.ShippingAddress.Name != "A B" {
		t.Fatalf("name = %q, want %q", order.ShippingAddress.Name, "A B")
	}
}

func TestSubmit_FailureKeepsCartAndState(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, validID)
	f.saveState(t, readyState())
	f.creator.err = &orderclient.APIError{StatusCode: 500, Message: "backend down"}

	_, err := f.submitter.Submit(context.Background())
	if err == nil {
		t.Fatal("expected failure")
	}
	if f.submitter.Phase() != PhaseFailed {
		t.Fatalf("phase = %s", f.submitter.Phase())
	}
	if f.cart.Count() != 2 {
		t.Fatalf("cart cleared on failure, count = %d", f.cart.Count())
	}
	st, _ := f.state.Load(context.Background())
	if st.ShippingAddress.Phone == "" {
		t.Fatal("checkout state cleared on failure")
	}
	if f.canceler.canceled {
		t.Fatal("draft canceled on failure")
	}
}

func TestSubmit_DuplicateWhileInFlightIgnored(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, validID)
	f.saveState(t, readyState())

	release := make(chan struct{})
	f.creator.blockOn = release

	done := make(chan error, 1)
	go func() {
		_, err := f.submitter.Submit(context.Background())
		done <- err
	}()

	// wait until the first submission is in flight
	for f.submitter.Phase() != PhaseSubmitting {
		time.Sleep(time.Millisecond)
	}

	_, err := f.submitter.Submit(context.Background())
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if f.creator.calls != 1 {
		t.Fatalf("collaborator called %d times, want 1", f.creator.calls)
	}
}

func TestSubmit_TimeoutTransitionsToFailed(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, validID)
	f.saveState(t, readyState())

	f.creator.blockOn = make(chan struct{}) // never released
	f.submitter = NewSubmitter(f.cart, f.state, f.history, f.creator, f.canceler, 20*time.Millisecond)

	_, err := f.submitter.Submit(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if f.submitter.Phase() != PhaseFailed {
		t.Fatalf("phase = %s, want FAILED", f.submitter.Phase())
	}
	// retry path is unblocked
	f.submitter.Reset()
	if f.submitter.Phase() != PhaseIdle {
		t.Fatalf("phase after reset = %s", f.submitter.Phase())
	}
}
