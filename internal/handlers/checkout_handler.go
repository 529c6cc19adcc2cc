// Package handlers exposes the checkout core over HTTP, one session per
// shopper selected by the X-Session-Id header.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spicetrail/go-storefront-checkout/internal/bus"
	"github.com/spicetrail/go-storefront-checkout/internal/cart"
	"github.com/spicetrail/go-storefront-checkout/internal/checkout"
	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
	"github.com/spicetrail/go-storefront-checkout/internal/storage"
	"github.com/spicetrail/go-storefront-checkout/internal/validation"
)

// OrderService is the order-creation collaborator surface the handlers need.
type OrderService interface {
	Create(ctx context.Context, payload orderclient.OrderPayload) (*orderclient.CreatedOrder, error)
	CreateDraft(ctx context.Context, draft orderclient.DraftPayload) error
}

// CatalogService resolves product display snapshots at add-to-cart time.
type CatalogService interface {
	Get(ctx context.Context, id string) (*orderclient.Product, error)
}

// Config groups dependencies for the checkout routes.
type Config struct {
	KV            storage.KV
	Events        *bus.CartEvents
	Orders        OrderService
	Catalog       CatalogService
	DraftDebounce time.Duration
	SubmitTimeout time.Duration
}

// RegisterRoutes registers the cart and checkout API.
func RegisterRoutes(r *gin.Engine, cfg Config) {
	v := validation.New()
	reg := newSessions(cfg)

	withSession := func(fn func(c *gin.Context, sess *session)) gin.HandlerFunc {
		return func(c *gin.Context) {
			id := c.GetHeader("X-Session-Id")
			if id == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing_session_id"})
				return
			}
			sess, err := reg.get(c.Request.Context(), id)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "session_init_failed", "detail": err.Error()})
				return
			}
			fn(c, sess)
		}
	}

	r.GET("/cart", withSession(func(c *gin.Context, sess *session) {
		c.JSON(http.StatusOK, cartView(sess.cart))
	}))

	r.POST("/cart/items", withSession(func(c *gin.Context, sess *session) {
		var req validation.AddItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		item := cart.LineItem{
			ProductID: req.ProductID,
			Name:      req.Name,
			Size:      req.Size,
			Price:     req.Price,
			Quantity:  req.Quantity,
			Image:     req.Image,
		}
		// missing display fields are snapshotted from the catalog now,
		// not re-fetched later
		if item.Name == "" || item.Price.IsZero() {
			product, err := cfg.Catalog.Get(c.Request.Context(), req.ProductID)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": "catalog_unavailable", "detail": err.Error()})
				return
			}
			size, ok := findSize(product, req.Size)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_size", "msg": "product has no size " + req.Size})
				return
			}
			item.Name = product.Name
			item.Price = size.Price
			if item.Image == "" {
				item.Image = product.Image
			}
		}

		if err := sess.cart.Add(c.Request.Context(), item); err != nil {
			writeCartError(c, err)
			return
		}
		sess.observeDraft(c.Request.Context())
		c.JSON(http.StatusCreated, cartView(sess.cart))
	}))

	r.PUT("/cart/items/:key", withSession(func(c *gin.Context, sess *session) {
		var req validation.UpdateQuantityRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		if err := sess.cart.UpdateQuantity(c.Request.Context(), c.Param("key"), req.Quantity); err != nil {
			writeCartError(c, err)
			return
		}
		sess.observeDraft(c.Request.Context())
		c.JSON(http.StatusOK, cartView(sess.cart))
	}))

	r.DELETE("/cart/items/:key", withSession(func(c *gin.Context, sess *session) {
		if err := sess.cart.Remove(c.Request.Context(), c.Param("key")); err != nil {
			writeCartError(c, err)
			return
		}
		sess.observeDraft(c.Request.Context())
		c.JSON(http.StatusOK, cartView(sess.cart))
	}))

	r.POST("/cart/clear", withSession(func(c *gin.Context, sess *session) {
		if err := sess.cart.Clear(c.Request.Context()); err != nil {
			writeCartError(c, err)
			return
		}
		sess.observeDraft(c.Request.Context())
		c.JSON(http.StatusOK, cartView(sess.cart))
	}))

	r.GET("/checkout", withSession(func(c *gin.Context, sess *session) {
		st, err := sess.state.Load(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state_load_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, st)
	}))

	r.PUT("/checkout", withSession(func(c *gin.Context, sess *session) {
		var req validation.CheckoutUpdateRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		ctx := c.Request.Context()
		st, err := sess.state.Load(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state_load_failed", "detail": err.Error()})
			return
		}
		if req.ShippingAddress != nil {
			st.ShippingAddress = *req.ShippingAddress
		}
		if req.FirstName != nil {
			st.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			st.LastName = *req.LastName
		}
		if req.PaymentMethod != nil {
			st.Payment = *req.PaymentMethod
		}
		if req.OrderNote != nil {
			st.OrderNote = *req.OrderNote
		}
		if err := sess.state.Save(ctx, st); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "state_save_failed", "detail": err.Error()})
			return
		}
		sess.observeDraft(ctx)
		c.JSON(http.StatusOK, st)
	}))

	r.POST("/checkout/submit", withSession(func(c *gin.Context, sess *session) {
		order, err := sess.submitter.Submit(c.Request.Context())
		if err != nil {
			writeSubmitError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
	}))

	r.GET("/orders", withSession(func(c *gin.Context, sess *session) {
		orders, err := sess.history.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "history_load_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}))
}

func cartView(c *cart.Store) gin.H {
	return gin.H{
		"items":    c.Items(),
		"count":    c.Count(),
		"subtotal": c.Subtotal(),
		"shipping": c.Shipping(),
		"total":    c.Total(),
	}
}

func findSize(p *orderclient.Product, label string) (orderclient.ProductSize, bool) {
	for _, s := range p.Sizes {
		if s.Label == label {
			return s, true
		}
	}
	return orderclient.ProductSize{}, false
}

// writeCartError maps cart mutation failures. A persistence failure is
// recoverable: the in-memory cart kept the change, only the save lagged.
func writeCartError(c *gin.Context, err error) {
	if errors.Is(err, cart.ErrBadQuantity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_quantity", "msg": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_persist_failed", "msg": err.Error()})
}

func writeSubmitError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	var apiErr *orderclient.APIError
	switch {
	case errors.Is(err, checkout.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "submission_in_progress"})
	case errors.Is(err, checkout.ErrMissingPrecondition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_checkout_details", "msg": err.Error()})
	case errors.Is(err, checkout.ErrNoValidItems):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_valid_items", "msg": err.Error()})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "missing": verr.Missing, "msg": verr.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "order_service_error", "msg": apiErr.UserMessage()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "submission_timeout", "msg": "order submission timed out, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission_failed", "msg": err.Error()})
	}
}
