package orderapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
)

// RegisterRoutes registers the catalog and order API on r.
func RegisterRoutes(r *gin.Engine, store *Store) {
	r.GET("/api/products", func(c *gin.Context) {
		products, err := store.ListProducts(c.Request.Context(), c.Query("category"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, products)
	})

	r.GET("/api/products/:id", func(c *gin.Context) {
		product, err := store.GetProduct(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, product)
	})

	r.POST("/api/orders/draft", func(c *gin.Context) {
		var draft orderclient.DraftPayload
		if err := c.ShouldBindJSON(&draft); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft payload"})
			return
		}
		if err := store.UpsertDraft(c.Request.Context(), draft); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.POST("/api/orders", func(c *gin.Context) {
		var req orderclient.OrderPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order payload"})
			return
		}
		if errs := validateOrder(req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
			return
		}
		order, err := store.CreateOrder(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
	})

	r.GET("/api/orders/:orderNumber", func(c *gin.Context) {
		order, err := store.GetOrder(c.Request.Context(), c.Param("orderNumber"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	})

	r.PATCH("/api/orders/:orderNumber/status", func(c *gin.Context) {
		var req struct {
			From string `json:"from" binding:"required"`
			To   string `json:"to" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to statuses are required"})
			return
		}
		err := store.UpdateStatus(c.Request.Context(), c.Param("orderNumber"), req.From, req.To)
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, ErrStatusMismatch):
			c.JSON(http.StatusConflict, gin.H{"error": "order is no longer in status " + req.From})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"success": true})
		}
	})
}
