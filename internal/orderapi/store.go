package orderapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

var (
	// ErrNotFound is returned when a product or order does not exist.
	ErrNotFound = errors.New("orderapi: not found")

	// ErrStatusMismatch is returned when a guarded status transition finds
	// the order in a different state than expected.
	ErrStatusMismatch = errors.New("orderapi: order status mismatch")
)

// Store wraps the backing database collections.
type Store struct {
	db      *mongo.Database
	nowFunc func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db, nowFunc: time.Now}
}

func (s *Store) products() *mongo.Collection { return s.db.Collection("products") }
func (s *Store) orders() *mongo.Collection   { return s.db.Collection("orders") }
func (s *Store) drafts() *mongo.Collection   { return s.db.Collection("draft_orders") }

// ListProducts returns catalog products, optionally filtered by category.
func (s *Store) ListProducts(ctx context.Context, category string) ([]orderclient.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := s.products().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]orderclient.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toWire())
	}
	return out, nil
}

// GetProduct fetches one product by its hex id.
func (s *Store) GetProduct(ctx context.Context, idHex string) (*orderclient.Product, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc productDoc
	err = s.products().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	p := doc.toWire()
	return &p, nil
}

// UpsertDraft records (or refreshes) the abandoned-checkout snapshot for the
// draft's phone number.
func (s *Store) UpsertDraft(ctx context.Context, draft orderclient.DraftPayload) error {
	phone := strings.TrimSpace(draft.ShippingAddress.Phone)
	if phone == "" {
		return fmt.Errorf("draft has no phone")
	}
	doc := draftDoc{
		DraftID:         draft.DraftID,
		Phone:           phone,
		Items:           toItemDocs(draft.Items),
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
		OrderNote:       draft.OrderNote,
		Subtotal:        draft.Subtotal.String(),
		Shipping:        draft.Shipping.String(),
		Total:           draft.Total.String(),
		UpdatedAt:       s.nowFunc().UTC(),
	}
	_, err := s.drafts().UpdateOne(ctx,
		bson.M{"phone": phone},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

// DeleteDraft removes the recovery snapshot once the checkout completed.
func (s *Store) DeleteDraft(ctx context.Context, phone string) error {
	_, err := s.drafts().DeleteOne(ctx, bson.M{"phone": phone})
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// CreateOrder persists a new order with a server-assigned order number and
// pending status, and drops any draft for the same phone.
func (s *Store) CreateOrder(ctx context.Context, payload orderclient.OrderPayload) (*orderclient.CreatedOrder, error) {
	now := s.nowFunc().UTC()
	doc := orderDoc{
		OrderNumber:     newOrderNumber(),
		Status:          StatusPending,
		Items:           toItemDocs(payload.Items),
		ShippingAddress: payload.ShippingAddress,
		PaymentMethod:   payload.PaymentMethod,
		PaymentDetails:  payload.PaymentDetails,
		OrderNote:       payload.OrderNote,
		Subtotal:        payload.Subtotal.String(),
		Shipping:        payload.Shipping.String(),
		Total:           payload.Total.String(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.orders().InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	// best effort: the recovery draft has served its purpose
	if phone := payload.ShippingAddress.Phone; phone != "" {
		_, _ = s.drafts().DeleteOne(ctx, bson.M{"phone": phone})
	}

	wire := doc.toWire()
	return &wire, nil
}

// GetOrder fetches an order by its order number.
func (s *Store) GetOrder(ctx context.Context, orderNumber string) (*orderclient.CreatedOrder, error) {
	var doc orderDoc
	err := s.orders().FindOne(ctx, bson.M{"orderNumber": orderNumber}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	wire := doc.toWire()
	return &wire, nil
}

// UpdateStatus moves an order from expected to next, guarded so a stale
// back-office screen cannot skip or rewind the fulfillment flow.
func (s *Store) UpdateStatus(ctx context.Context, orderNumber, expected, next string) error {
	res, err := s.orders().UpdateOne(ctx,
		bson.M{"orderNumber": orderNumber, "status": expected},
		bson.M{"$set": bson.M{"status": next, "updatedAt": s.nowFunc().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if res.MatchedCount == 0 {
		// either the order is missing or its status moved on
		n, err := s.orders().CountDocuments(ctx, bson.M{"orderNumber": orderNumber})
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrStatusMismatch
	}
	return nil
}

func newOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:10])
}
