package checkout

import (
	"encoding/json"
	"testing"
)

func TestPaymentMethod_UnmarshalStringTag(t *testing.T) {
	var p PaymentMethod
	if err := json.Unmarshal([]byte(`"cod"`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Kind != PaymentCOD || p.Details != nil {
		t.Fatalf("unexpected: %+v", p)
	}
	if !p.Selected() {
		t.Fatal("cod should count as selected")
	}
}

func TestPaymentMethod_UnmarshalLegacyObject(t *testing.T) {
	var p PaymentMethod
	raw := []byte(`{"type":"upi","upiId":"shop@bank"}`)
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if p.Kind != PaymentUPI {
		t.Fatalf("kind = %s, want upi", p.Kind)
	}
	if p.Details["upiId"] != "shop@bank" {
		t.Fatalf("details = %+v", p.Details)
	}
}

func TestPaymentMethod_UnmarshalOwnForm(t *testing.T) {
	var p PaymentMethod
	if err := json.Unmarshal([]byte(`{"kind":"card"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Kind != PaymentCard {
		t.Fatalf("kind = %s, want card", p.Kind)
	}
}

func TestPaymentMethod_PendingNotSelected(t *testing.T) {
	var p PaymentMethod
	if err := json.Unmarshal([]byte(`"pending"`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Selected() {
		t.Fatal("pending must not count as selected")
	}
	if p.Tag() != "pending" {
		t.Fatalf("tag = %q", p.Tag())
	}
}

func TestPaymentMethod_UnknownTagRejected(t *testing.T) {
	var p PaymentMethod
	if err := json.Unmarshal([]byte(`"cheque"`), &p); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestPaymentMethod_ZeroValueTag(t *testing.T) {
	var p PaymentMethod
	if p.Tag() != "pending" {
		t.Fatalf("zero value tag = %q, want pending", p.Tag())
	}
}
