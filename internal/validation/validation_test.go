package validation

import "testing"

const validID = "6655443322110099aabbccdd"

func TestAddItemRequest_Valid(t *testing.T) {
	v := New()
	req := AddItemRequest{
		ProductID: validID,
		Size:      "250g",
		Quantity:  2,
	}
	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got: %v", err)
	}
}

func TestAddItemRequest_MalformedProductID(t *testing.T) {
	v := New()
	req := AddItemRequest{
		ProductID: "p1",
		Size:      "250g",
		Quantity:  1,
	}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected objectid validation to fail")
	}
}

func TestAddItemRequest_ZeroQuantity(t *testing.T) {
	v := New()
	req := AddItemRequest{
		ProductID: validID,
		Size:      "250g",
		Quantity:  0,
	}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected quantity validation to fail")
	}
}

func TestUpdateQuantityRequest_ZeroAllowed(t *testing.T) {
	v := New()
	if err := v.Struct(UpdateQuantityRequest{Quantity: 0}); err != nil {
		t.Fatalf("zero quantity must be allowed (it removes the row): %v", err)
	}
	if err := v.Struct(UpdateQuantityRequest{Quantity: -1}); err == nil {
		t.Fatal("negative quantity must fail")
	}
}
