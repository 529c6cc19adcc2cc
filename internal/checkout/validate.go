package checkout

import (
	"fmt"
	"strings"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

// ValidationError reports every missing required field in one pass so the
// shopper can fix the whole form at once.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// requiredAddressFields are checked, in this order, before submission.
var requiredAddressFields = []string{"name", "address", "city", "state", "pincode"}

// validateAddress trims and checks the required fields. When name is the
// only failing field and firstName/lastName are available, the name is
// synthesized from them instead of failing outright. The (possibly repaired)
// address is returned with all fields trimmed.
func validateAddress(a orderclient.ShippingAddress, firstName, lastName string) (orderclient.ShippingAddress, *ValidationError) {
	a.Name = strings.TrimSpace(a.Name)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Email = strings.TrimSpace(a.Email)
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Country = strings.TrimSpace(a.Country)

	missing := missingFields(a)
	if len(missing) == 1 && missing[0] == "name" {
		if synthesized := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName)); synthesized != "" {
			a.Name = synthesized
			missing = missingFields(a)
		}
	}
	if len(missing) > 0 {
		return a, &ValidationError{Missing: missing}
	}
	return a, nil
}

func missingFields(a orderclient.ShippingAddress) []string {
	values := map[string]string{
		"name":    a.Name,
		"address": a.Address,
		"city":    a.City,
		"state":   a.State,
		"pincode": a.Pincode,
	}
	var missing []string
	for _, f := range requiredAddressFields {
		if values[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
