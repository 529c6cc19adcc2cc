package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
	"github.com/spicetrail/go-storefront-checkout/internal/storage"
)

const stateKey = "checkout"

// State is the cached in-progress checkout: address, payment selection and
// note. It survives reloads and is cleared on successful submission.
type State struct {
	ShippingAddress orderclient.ShippingAddress `json:"shippingAddress"`
	FirstName       string                      `json:"firstName,omitempty"`
	LastName        string                      `json:"lastName,omitempty"`
	Payment         PaymentMethod               `json:"paymentMethod"`
	OrderNote       string                      `json:"orderNote,omitempty"`
}

// StateCache persists checkout State in the session KV store.
type StateCache struct {
	kv storage.KV
}

func NewStateCache(kv storage.KV) *StateCache {
	return &StateCache{kv: kv}
}

// Load returns the cached state, or a zero state when nothing is cached.
func (c *StateCache) Load(ctx context.Context) (State, error) {
	raw, err := c.kv.Get(ctx, stateKey)
	if errors.Is(err, storage.ErrNotFound) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load checkout state: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("decode checkout state: %w", err)
	}
	return st, nil
}

func (c *StateCache) Save(ctx context.Context, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode checkout state: %w", err)
	}
	if err := c.kv.Set(ctx, stateKey, raw); err != nil {
		return fmt.Errorf("save checkout state: %w", err)
	}
	return nil
}

func (c *StateCache) Clear(ctx context.Context) error {
	if err := c.kv.Delete(ctx, stateKey); err != nil {
		return fmt.Errorf("clear checkout state: %w", err)
	}
	return nil
}
