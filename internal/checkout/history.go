package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
	"github.com/spicetrail/go-storefront-checkout/internal/storage"
)

const historyKey = "orders"

// HistoryStore keeps the shopper's read-only copies of submitted orders for
// confirmation and history display. The order service owns the orders
// themselves.
type HistoryStore struct {
	kv storage.KV
}

func NewHistoryStore(kv storage.KV) *HistoryStore {
	return &HistoryStore{kv: kv}
}

// Append prepends the order so the newest submission lists first.
func (h *HistoryStore) Append(ctx context.Context, order orderclient.CreatedOrder) error {
	orders, err := h.List(ctx)
	if err != nil {
		return err
	}
	orders = append([]orderclient.CreatedOrder{order}, orders...)
	raw, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode order history: %w", err)
	}
	if err := h.kv.Set(ctx, historyKey, raw); err != nil {
		return fmt.Errorf("save order history: %w", err)
	}
	return nil
}

func (h *HistoryStore) List(ctx context.Context) ([]orderclient.CreatedOrder, error) {
	raw, err := h.kv.Get(ctx, historyKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load order history: %w", err)
	}
	var orders []orderclient.CreatedOrder
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("decode order history: %w", err)
	}
	return orders, nil
}
