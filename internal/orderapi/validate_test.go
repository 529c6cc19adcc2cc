package orderapi

import (
	"testing"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

const validID = "6655443322110099aabbccdd"

func validPayload() orderclient.OrderPayload {
	return orderclient.OrderPayload{
		Items: []orderclient.LineItem{{ProductID: validID, Quantity: 1}},
		ShippingAddress: orderclient.ShippingAddress{
			Name: "A Shopper", Phone: "9999999999", Address: "12 Hill Road",
			City: "Guwahati", State: "Assam", Pincode: "781001",
		},
		PaymentMethod: "cod",
	}
}

func TestValidateOrder_Valid(t *testing.T) {
	if errs := validateOrder(validPayload()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidateOrder_AllProblemsReported(t *testing.T) {
	p := validPayload()
	p.ShippingAddress.City = ""
	p.ShippingAddress.Pincode = " "
	p.PaymentMethod = "pending"

	errs := validateOrder(p)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %+v", errs)
	}
	params := map[string]bool{}
	for _, e := range errs {
		params[e.Param] = true
	}
	for _, want := range []string{"city", "pincode", "paymentMethod"} {
		if !params[want] {
			t.Errorf("missing error for %s: %+v", want, errs)
		}
	}
}

func TestValidateOrder_InvalidItemsOnly(t *testing.T) {
	p := validPayload()
	p.Items = []orderclient.LineItem{{ProductID: "stale", Quantity: 1}}

	errs := validateOrder(p)
	if len(errs) != 1 || errs[0].Param != "items" {
		t.Fatalf("expected items error, got %+v", errs)
	}
}

func TestOrderDoc_WireMapping(t *testing.T) {
	p := validPayload()
	doc := orderDoc{
		OrderNumber: "ORD-ABC123",
		Status:      StatusPending,
		Items:       toItemDocs(p.Items),
		Subtotal:    "100",
		Shipping:    "0",
		Total:       "100",
	}
	wire := doc.toWire()
	if wire.OrderNumber != "ORD-ABC123" || wire.Status != StatusPending {
		t.Fatalf("wire = %+v", wire)
	}
	if !wire.Total.Equal(wire.Subtotal) {
		t.Fatalf("total %s != subtotal %s with free shipping", wire.Total, wire.Subtotal)
	}
	if len(wire.Items) != 1 || wire.Items[0].ProductID != validID {
		t.Fatalf("items = %+v", wire.Items)
	}
}

func TestNewOrderNumber_Format(t *testing.T) {
	n := newOrderNumber()
	if len(n) != len("ORD-")+10 {
		t.Fatalf("order number %q has wrong length", n)
	}
	if n[:4] != "ORD-" {
		t.Fatalf("order number %q missing prefix", n)
	}
	if n == newOrderNumber() {
		t.Fatal("order numbers must be unique")
	}
}
