// Package orderclient holds the HTTP clients for the catalog and order
// service collaborators, plus the wire shapes they exchange.
package orderclient

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is a cart row as sent to the order service.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// ShippingAddress is the delivery address. All fields are required at
// submission time but may be partially filled in a draft.
type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// DraftPayload is the abandoned-cart snapshot recorded for follow-up. It is
// never shown to the shopper.
type DraftPayload struct {
	DraftID         string          `json:"draftId"`
	Items           []LineItem      `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	OrderNote       string          `json:"orderNote,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
}

// OrderPayload is a finalized checkout submitted for order creation.
type OrderPayload struct {
	Items           []LineItem        `json:"items"`
	ShippingAddress ShippingAddress   `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	PaymentDetails  map[string]string `json:"paymentDetails,omitempty"`
	OrderNote       string            `json:"orderNote,omitempty"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Shipping        decimal.Decimal   `json:"shipping"`
	Total           decimal.Decimal   `json:"total"`
}

// CreatedOrder is the read-only copy of a submitted order the shopper keeps
// for confirmation and history display. Ownership of the order itself passes
// to the order service on creation.
type CreatedOrder struct {
	OrderNumber     string          `json:"orderNumber"`
	Status          string          `json:"status"`
	Items           []LineItem      `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	OrderNote       string          `json:"orderNote,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       string          `json:"createdAt,omitempty"`
}

// Product is a catalog entry used to snapshot display fields at
// add-to-cart time.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Image       string        `json:"image,omitempty"`
	Sizes       []ProductSize `json:"sizes"`
}

// ProductSize is one purchasable variant of a product.
type ProductSize struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// ValidProductID reports whether id is a well-formed catalog identifier.
// The catalog keys products by document object ids (24 hex characters);
// anything else is a stale or hand-edited row and is filtered out before a
// draft save or an order submission.
func ValidProductID(id string) bool {
	return primitive.IsValidObjectID(strings.TrimSpace(id))
}

// FilterValidItems returns only items whose productId is well-formed.
func FilterValidItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if ValidProductID(it.ProductID) {
			out = append(out, it)
		}
	}
	return out
}
