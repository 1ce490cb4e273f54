package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	webAdapter "wholesale-portal/internal/adapters/web"
	"wholesale-portal/internal/app"
	"wholesale-portal/internal/carrier"
	"wholesale-portal/internal/core"
	"wholesale-portal/internal/db"
	"wholesale-portal/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	var (
		orders   core.OrderStore
		invoices core.InvoiceStore
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pool, err := db.NewPool(ctx, dsn)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema: %v", err)
		}
		orders, invoices = pg, pg
	} else {
		log.Println("Warning: DATABASE_URL is not set, running with in-memory store")
		mem := store.NewMemory()
		orders, invoices = mem, mem
	}

	loc := time.Local
	if tz := os.Getenv("WAREHOUSE_TZ"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid WAREHOUSE_TZ %q: %v", tz, err)
		}
		loc = l
	}
	resolver := core.NewStatusResolver(loc)

	carrierURL := os.Getenv("CARRIER_API_URL")
	if carrierURL == "" {
		log.Println("Warning: CARRIER_API_URL is not set, tracking refresh will fail until configured")
	}
	var provider core.TrackingProvider = carrier.NewClient(carrierURL, os.Getenv("CARRIER_API_KEY"))

	cacheTTL := 60 * time.Second
	if raw := os.Getenv("CARRIER_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid CARRIER_CACHE_TTL %q: %v", raw, err)
		}
		cacheTTL = d
	}
	provider = carrier.NewCached(provider, cacheTTL)

	merger := core.NewTrackingMerger(orders, provider)
	svc := app.NewService(orders, invoices, resolver, merger)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"))

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
