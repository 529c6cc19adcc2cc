package validation

import (
	"github.com/shopspring/decimal"

	"github.com/spicetrail/go-storefront-checkout/internal/checkout"
	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

// AddItemRequest is the payload for POST /cart/items. Name, price and image
// are optional display snapshots; when absent they are filled from the
// catalog at add time.
type AddItemRequest struct {
	ProductID string          `json:"productId" validate:"required,objectid"`
	Size      string          `json:"size" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	Image     string          `json:"image,omitempty"`
}

// UpdateQuantityRequest is the payload for PUT /cart/items/:key. Zero is
// allowed: it removes the row.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// CheckoutUpdateRequest carries partial checkout edits; nil fields leave the
// cached state unchanged.
type CheckoutUpdateRequest struct {
	ShippingAddress *orderclient.ShippingAddress `json:"shippingAddress,omitempty"`
	FirstName       *string                      `json:"firstName,omitempty"`
	LastName        *string                      `json:"lastName,omitempty"`
	PaymentMethod   *checkout.PaymentMethod      `json:"paymentMethod,omitempty"`
	OrderNote       *string                      `json:"orderNote,omitempty"`
}
