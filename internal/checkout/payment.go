package checkout

import (
	"encoding/json"
	"fmt"
)

// PaymentKind tags the payment method variants the storefront supports.
type PaymentKind string

const (
	PaymentPending PaymentKind = "pending" // no selection made yet
	PaymentCOD     PaymentKind = "cod"
	PaymentUPI     PaymentKind = "upi"
	PaymentCard    PaymentKind = "card"
)

// PaymentMethod is a tagged union over the supported variants. Legacy stored
// checkouts carried a structured object instead of a plain tag; UnmarshalJSON
// normalizes both shapes at the boundary.
type PaymentMethod struct {
	Kind    PaymentKind       `json:"kind"`
	Details map[string]string `json:"details,omitempty"`
}

// Selected reports whether the shopper has made a concrete choice.
func (p PaymentMethod) Selected() bool {
	return p.Kind != "" && p.Kind != PaymentPending
}

// Tag returns the string tag sent to collaborators; an empty method reads as
// pending.
func (p PaymentMethod) Tag() string {
	if p.Kind == "" {
		return string(PaymentPending)
	}
	return string(p.Kind)
}

func (p *PaymentMethod) UnmarshalJSON(raw []byte) error {
	// new flow: a bare string tag
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		kind, err := parseKind(tag)
		if err != nil {
			return err
		}
		p.Kind = kind
		p.Details = nil
		return nil
	}

	// object shape: either our own serialized form or the legacy
	// {"type"/"method": ..., <details>} duck-typed object
	var obj map[string]string
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("payment method: unrecognized shape: %w", err)
	}
	tag = obj["kind"]
	if tag == "" {
		tag = obj["type"]
	}
	if tag == "" {
		tag = obj["method"]
	}
	kind, err := parseKind(tag)
	if err != nil {
		return err
	}
	delete(obj, "kind")
	delete(obj, "type")
	delete(obj, "method")
	p.Kind = kind
	if len(obj) > 0 {
		p.Details = obj
	} else {
		p.Details = nil
	}
	return nil
}

func parseKind(tag string) (PaymentKind, error) {
	switch PaymentKind(tag) {
	case PaymentPending, PaymentCOD, PaymentUPI, PaymentCard:
		return PaymentKind(tag), nil
	case "":
		return PaymentPending, nil
	default:
		return "", fmt.Errorf("payment method: unknown tag %q", tag)
	}
}
