package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/spicetrail/go-storefront-checkout/internal/cart"
	"github.com/spicetrail/go-storefront-checkout/internal/checkout"
	"github.com/spicetrail/go-storefront-checkout/internal/draft"
	"github.com/spicetrail/go-storefront-checkout/internal/storage"
)

// session bundles the per-shopper runtime: cart, cached checkout state,
// order history, the draft recorder, and the submitter. The recorder and
// submitter must outlive a single request so the debounce window and the
// in-flight guard work across page interactions.
type session struct {
	cart      *cart.Store
	state     *checkout.StateCache
	history   *checkout.HistoryStore
	recorder  *draft.Recorder
	submitter *checkout.Submitter
}

type sessions struct {
	cfg Config

	mu     sync.Mutex
	active map[string]*session
}

func newSessions(cfg Config) *sessions {
	return &sessions{cfg: cfg, active: map[string]*session{}}
}

func (s *sessions) get(ctx context.Context, sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.active[sessionID]; ok {
		return sess, nil
	}

	kv := storage.Namespaced(s.cfg.KV, "session:"+sessionID+":")
	c, err := cart.NewStore(ctx, kv, s.cfg.Events, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open cart for session %s: %w", sessionID, err)
	}
	state := checkout.NewStateCache(kv)
	history := checkout.NewHistoryStore(kv)
	recorder := draft.NewRecorder(s.cfg.Orders, s.cfg.DraftDebounce)

	sess := &session{
		cart:      c,
		state:     state,
		history:   history,
		recorder:  recorder,
		submitter: checkout.NewSubmitter(c, state, history, s.cfg.Orders, recorder, s.cfg.SubmitTimeout),
	}
	s.active[sessionID] = sess
	return sess, nil
}

// observeDraft feeds the recorder the current cart and checkout state; every
// cart or checkout mutation routes through here so trigger-field changes
// re-arm the debounce window.
func (sess *session) observeDraft(ctx context.Context) {
	st, err := sess.state.Load(ctx)
	if err != nil {
		// the draft channel is best effort; a state read failure is not
		// worth surfacing
		return
	}
	sess.recorder.Observe(sess.cart.Items(), st)
}
