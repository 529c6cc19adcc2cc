// Package orderapi is the document-database order and catalog backend the
// checkout gateway talks to. It owns orders once they are created.
package orderapi

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

// Order statuses. Orders enter as pending and move forward through the
// fulfillment flow; transitions are guarded (see Store.UpdateStatus).
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

type sizeDoc struct {
	Label string `bson:"label" json:"label"`
	Price string `bson:"price" json:"price"`
}

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Sizes       []sizeDoc          `bson:"sizes" json:"sizes"`
}

type itemDoc struct {
	ProductID string `bson:"productId"`
	Name      string `bson:"name"`
	Size      string `bson:"size"`
	Price     string `bson:"price"`
	Quantity  int    `bson:"quantity"`
	Image     string `bson:"image,omitempty"`
}

type orderDoc struct {
	ID              primitive.ObjectID          `bson:"_id,omitempty"`
	OrderNumber     string                      `bson:"orderNumber"`
	Status          string                      `bson:"status"`
	Items           []itemDoc                   `bson:"items"`
	ShippingAddress orderclient.ShippingAddress `bson:"shippingAddress"`
	PaymentMethod   string                      `bson:"paymentMethod"`
	PaymentDetails  map[string]string           `bson:"paymentDetails,omitempty"`
	OrderNote       string                      `bson:"orderNote,omitempty"`
	Subtotal        string                      `bson:"subtotal"`
	Shipping        string                      `bson:"shipping"`
	Total           string                      `bson:"total"`
	CreatedAt       time.Time                   `bson:"createdAt"`
	UpdatedAt       time.Time                   `bson:"updatedAt"`
}

// draftDoc is the recovery snapshot of an abandoned checkout, upserted by
// phone so repeated saves from the same shopper collapse into one document.
type draftDoc struct {
	ID              primitive.ObjectID          `bson:"_id,omitempty"`
	DraftID         string                      `bson:"draftId"`
	Phone           string                      `bson:"phone"`
	Items           []itemDoc                   `bson:"items"`
	ShippingAddress orderclient.ShippingAddress `bson:"shippingAddress"`
	PaymentMethod   string                      `bson:"paymentMethod"`
	OrderNote       string                      `bson:"orderNote,omitempty"`
	Subtotal        string                      `bson:"subtotal"`
	Shipping        string                      `bson:"shipping"`
	Total           string                      `bson:"total"`
	UpdatedAt       time.Time                   `bson:"updatedAt"`
}

func toItemDocs(items []orderclient.LineItem) []itemDoc {
	out := make([]itemDoc, 0, len(items))
	for _, it := range items {
		out = append(out, itemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Price:     it.Price.String(),
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return out
}

func toWireItems(items []itemDoc) []orderclient.LineItem {
	out := make([]orderclient.LineItem, 0, len(items))
	for _, it := range items {
		price, _ := decimal.NewFromString(it.Price)
		out = append(out, orderclient.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Price:     price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return out
}

func (d orderDoc) toWire() orderclient.CreatedOrder {
	subtotal, _ := decimal.NewFromString(d.Subtotal)
	shipping, _ := decimal.NewFromString(d.Shipping)
	total, _ := decimal.NewFromString(d.Total)
	return orderclient.CreatedOrder{
		OrderNumber:     d.OrderNumber,
		Status:          d.Status,
		Items:           toWireItems(d.Items),
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		OrderNote:       d.OrderNote,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           total,
		CreatedAt:       d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (p productDoc) toWire() orderclient.Product {
	sizes := make([]orderclient.ProductSize, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		price, _ := decimal.NewFromString(s.Price)
		sizes = append(sizes, orderclient.ProductSize{Label: s.Label, Price: price})
	}
	return orderclient.Product{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		Sizes:       sizes,
	}
}
