package orderapi

import (
	"strings"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

// validateOrder checks a creation payload and returns every problem in one
// pass in the conventional field-error shape the storefront expects.
func validateOrder(p orderclient.OrderPayload) []orderclient.FieldError {
	var errs []orderclient.FieldError

	if len(orderclient.FilterValidItems(p.Items)) == 0 {
		errs = append(errs, orderclient.FieldError{Msg: "Order must contain at least one valid item", Param: "items"})
	}

	required := []struct {
		param, label, value string
	}{
		{"name", "Name", p.ShippingAddress.Name},
		{"phone", "Phone", p.ShippingAddress.Phone},
		{"address", "Address", p.ShippingAddress.Address},
		{"city", "City", p.ShippingAddress.City},
		{"state", "State", p.ShippingAddress.State},
		{"pincode", "Pincode", p.ShippingAddress.Pincode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, orderclient.FieldError{Msg: f.label + " is required", Param: f.param})
		}
	}

	if p.PaymentMethod == "" || p.PaymentMethod == "pending" {
		errs = append(errs, orderclient.FieldError{Msg: "Payment method is required", Param: "paymentMethod"})
	}

	return errs
}
