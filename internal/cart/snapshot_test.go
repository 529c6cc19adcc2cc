package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", Name: "Assam Gold", Size: "250g", Price: decimal.NewFromInt(100), Quantity: 2},
	}
	raw, err := encodeSnapshot(items, time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeSnapshot(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Key() != "p1_250g" || got[0].Quantity != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSnapshot_LegacyArrayMigrates(t *testing.T) {
	legacy := []byte(`[{"productId":"p1","name":"Assam Gold","size":"250g","price":100,"quantity":2}]`)
	got, err := decodeSnapshot(legacy)
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if len(got) != 1 || got[0].ProductID != "p1" {
		t.Fatalf("legacy migration mismatch: %+v", got)
	}
	if !got[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("price = %s, want 100", got[0].Price)
	}
}

func TestSnapshot_DropsZeroQuantityRows(t *testing.T) {
	legacy := []byte(`[{"productId":"p1","size":"250g","price":100,"quantity":0},{"productId":"p2","size":"1kg","price":50,"quantity":1}]`)
	got, err := decodeSnapshot(legacy)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ProductID != "p2" {
		t.Fatalf("expected zero-quantity row dropped, got %+v", got)
	}
}

func TestSnapshot_NewerVersionRejected(t *testing.T) {
	raw := []byte(`{"schemaVersion":99,"items":[]}`)
	if _, err := decodeSnapshot(raw); err == nil {
		t.Fatal("expected error for newer snapshot version")
	}
}
