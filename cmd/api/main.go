package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spicetrail/go-storefront-checkout/internal/bus"
	"github.com/spicetrail/go-storefront-checkout/internal/handlers"
	"github.com/spicetrail/go-storefront-checkout/internal/orderclient"
	"github.com/spicetrail/go-storefront-checkout/internal/storage"
)

func setupRouter(cfg handlers.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	orderServiceURL := os.Getenv("ORDER_SERVICE_URL")
	if orderServiceURL == "" {
		orderServiceURL = "http://localhost:8081"
	}
	catalogURL := os.Getenv("CATALOG_URL")
	if catalogURL == "" {
		catalogURL = orderServiceURL
	}

	var kv storage.KV
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rkv, err := storage.NewRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer rkv.Close()
		kv = rkv
	} else {
		log.Printf("REDIS_ADDR not set, carts will not survive a restart")
		kv = storage.NewMemory()
	}

	cfg := handlers.Config{
		KV:            kv,
		Events:        bus.New(),
		Orders:        orderclient.NewClient(orderServiceURL),
		Catalog:       orderclient.NewCatalog(catalogURL),
		DraftDebounce: 5 * time.Second,
		SubmitTimeout: 30 * time.Second,
	}

	r := setupRouter(cfg)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	log.Printf("checkout gateway listening on %s (orders at %s)", addr, orderServiceURL)
	if err := r.Run(addr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
