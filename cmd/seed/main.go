package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"wholesale-portal/internal/app"
	"wholesale-portal/internal/core"
	"wholesale-portal/internal/db"
	"wholesale-portal/internal/store"
)

// Seeds a demo order with packed and unpacked lines so the invoice
// splitter and resolver can be exercised against a local database.
func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL must be set to seed")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	pg := store.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	resolver := core.NewStatusResolver(nil)
	svc := app.NewService(pg, pg, resolver, core.NewTrackingMerger(pg, nil))

	view, err := svc.CreateOrder(ctx, app.CreateOrderRequest{
		OrderNumber:  "SO-1001",
		CustomerCode: "C001",
		CustomerName: "Acme Wholesale",
		Lines: []app.CreateOrderLine{
			{ItemID: "itm-1", SKU: "WID-A", Name: "Widget A", Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(500)},
			{ItemID: "itm-2", SKU: "WID-B", Name: "Widget B", Quantity: decimal.NewFromInt(4), Rate: decimal.NewFromInt(1200)},
		},
	})
	if err != nil {
		log.Fatalf("seed order: %v", err)
	}

	// Mark the first line as packed and give its package a ship date so
	// the resolver has something to chew on.
	o := view.Order
	o.LineItems[0].QuantityPacked = o.LineItems[0].Quantity
	o.Packages = map[string]core.Package{
		"pkg-1": {
			PackageKey: "pkg-1",
			ShipmentOrder: &core.ShipmentOrder{
				Carrier:        "dpd",
				ShipmentNumber: "SHP-9001",
				TrackingNumber: "DPD123456789",
				ShipmentDate:   "2026-09-02",
			},
		},
	}
	if err := pg.UpdateOrder(ctx, o); err != nil {
		log.Fatalf("seed packages: %v", err)
	}

	log.Printf("seeded order %s (%s)", o.OrderNumber, o.ID)
}
