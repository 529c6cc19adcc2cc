package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

// New returns a configured validator with the custom tags registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// productId must be a well-formed catalog identifier; the same check
	// the draft recorder and submitter run before sending items out.
	_ = v.RegisterValidation("objectid", func(fl validatorv10.FieldLevel) bool {
		return orderclient.ValidProductID(fl.Field().String())
	})

	return v
}
