package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage is the single coarse fulfillment state shown to users. It is
// produced only by StatusResolver; adapters must never re-derive it
// from raw order fields.
type Stage string

const (
	StageConfirmed       Stage = "confirmed"
	StageSentToWarehouse Stage = "sent_to_warehouse"
	StagePacked          Stage = "packed"
	StageShipped         Stage = "shipped"
	StageDelivered       Stage = "delivered"
)

// Ordinal returns the position of the stage in the fulfillment
// progression, for progress-bar style display.
func (s Stage) Ordinal() int {
	switch s {
	case StageConfirmed:
		return 0
	case StageSentToWarehouse:
		return 1
	case StagePacked:
		return 2
	case StageShipped:
		return 3
	case StageDelivered:
		return 4
	}
	return -1
}

// LineItemStatus is the per-line fulfillment label, derived purely from
// quantityShipped vs quantity. It is independent of the order stage: a
// line may show "awaiting" while the order overall shows "shipped".
type LineItemStatus string

const (
	LineItemAwaiting LineItemStatus = "awaiting"
	LineItemPartial  LineItemStatus = "partial"
	LineItemShipped  LineItemStatus = "shipped"
)

// Order is a sales order document: header, line items, warehouse
// packages, denormalized invoice summaries, and optional live carrier
// tracking. Revision supports optimistic concurrency on writes.
type Order struct {
	ID               string             `json:"id"`
	OrderNumber      string             `json:"order_number"`
	CustomerCode     string             `json:"customer_code"`
	CustomerName     string             `json:"customer_name"`
	Status           string             `json:"status"`
	CurrentSubStatus string             `json:"current_sub_status,omitempty"`
	LineItems        []LineItem         `json:"line_items"`
	Packages         map[string]Package `json:"packages,omitempty"`
	Invoices         []InvoiceRef       `json:"invoices,omitempty"`
	InvoiceSplit     bool               `json:"invoice_split"`
	LiveTracking     *TrackingState     `json:"live_tracking,omitempty"`
	Revision         int64              `json:"revision"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// FindLineItem returns a pointer into LineItems for the given line item ID.
func (o *Order) FindLineItem(lineItemID string) (*LineItem, bool) {
	for i := range o.LineItems {
		if o.LineItems[i].ID == lineItemID {
			return &o.LineItems[i], true
		}
	}
	return nil, false
}

// LineItem is one SKU/quantity/rate entry within an order. Quantity is
// fixed at order placement. QuantityPacked and QuantityShipped are
// reported by the warehouse and are not required to reconcile with
// QuantityInvoiced, which is mutated only through the ledger.
type LineItem struct {
	ID               string          `json:"id"`
	ItemID           string          `json:"item_id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Quantity         decimal.Decimal `json:"quantity"`
	QuantityPacked   decimal.Decimal `json:"quantity_packed"`
	QuantityShipped  decimal.Decimal `json:"quantity_shipped"`
	QuantityInvoiced decimal.Decimal `json:"quantity_invoiced"`
	Rate             decimal.Decimal `json:"rate"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// Package is one warehouse package. A package without a ShipmentOrder
// is packed but not yet handed to a carrier.
type Package struct {
	PackageKey    string         `json:"package_key"`
	ShipmentOrder *ShipmentOrder `json:"shipment_order,omitempty"`
}

// ShipmentOrder is the carrier handoff record for a package.
// ShipmentDate is a warehouse-local calendar date in YYYY-MM-DD form;
// empty means no ship date has been assigned yet.
type ShipmentOrder struct {
	Carrier        string `json:"carrier"`
	ShipmentNumber string `json:"shipment_number"`
	TrackingNumber string `json:"tracking_number"`
	ShipmentDate   string `json:"shipment_date,omitempty"`
}

// TrackingState is the merged live carrier tracking for an order.
// TrackingUpdates is kept sorted newest first.
type TrackingState struct {
	CurrentStatus     string          `json:"current_status"`
	TrackingUpdates   []TrackingEvent `json:"tracking_updates"`
	EstimatedDelivery string          `json:"estimated_delivery,omitempty"`
}

// TrackingEvent is one carrier-reported status update. The pair
// (Timestamp, Status) is the merge dedup key.
type TrackingEvent struct {
	Timestamp         time.Time `json:"timestamp"`
	Status            string    `json:"status"`
	Description       string    `json:"description"`
	Location          string    `json:"location,omitempty"`
	EstimatedDelivery string    `json:"estimated_delivery,omitempty"`
}

// InvoiceRef is the denormalized invoice summary stored on the order.
// Authoritative invoice content lives in Invoice.
type InvoiceRef struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Invoice is one billing pass over a subset of an order's line items.
// Balance starts equal to Total.
type Invoice struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	SalesOrderID  string            `json:"sales_order_id"`
	LineItems     []InvoiceLineItem `json:"line_items"`
	SubTotal      decimal.Decimal   `json:"sub_total"`
	Discount      decimal.Decimal   `json:"discount"`
	Total         decimal.Decimal   `json:"total"`
	Balance       decimal.Decimal   `json:"balance"`
	CreatedAt     time.Time         `json:"created_at"`
}

// InvoiceLineItem carries the quantity actually invoiced on this pass,
// which may be less than the ordered quantity of the source line.
type InvoiceLineItem struct {
	LineItemID string          `json:"line_item_id"`
	ItemID     string          `json:"item_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Rate       decimal.Decimal `json:"rate"`
	LineTotal  decimal.Decimal `json:"line_total"`
}
