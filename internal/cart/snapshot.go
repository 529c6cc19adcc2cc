package cart

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	cartKey = "cart"

	// snapshotVersion is bumped whenever the persisted shape changes;
	// decodeSnapshot must keep reading every older version.
	snapshotVersion = 1
)

// snapshot is the persisted representation of a cart. The original storefront
// stored a bare JSON array of items with no version field; that legacy shape
// is still accepted on read and rewritten in this form on the next mutation.
type snapshot struct {
	Version int        `json:"schemaVersion"`
	Items   []LineItem `json:"items"`
	SavedAt time.Time  `json:"savedAt"`
}

func encodeSnapshot(items []LineItem, now time.Time) ([]byte, error) {
	return json.Marshal(snapshot{
		Version: snapshotVersion,
		Items:   items,
		SavedAt: now.UTC(),
	})
}

// decodeSnapshot reads a persisted cart of any known version and migrates it
// to the current in-memory shape. Rows that would violate the quantity floor
// are dropped during migration.
func decodeSnapshot(raw []byte) ([]LineItem, error) {
	var items []LineItem

	// legacy unversioned shape: a bare array
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode legacy cart: %w", err)
		}
		return dropInvalidRows(items), nil
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if snap.Version > snapshotVersion {
		return nil, fmt.Errorf("cart snapshot version %d is newer than supported %d", snap.Version, snapshotVersion)
	}
	return dropInvalidRows(snap.Items), nil
}

func dropInvalidRows(items []LineItem) []LineItem {
	kept := items[:0]
	for _, it := range items {
		if it.Quantity >= 1 && it.ProductID != "" {
			kept = append(kept, it)
		}
	}
	return kept
}
