package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wholesale-portal/internal/core"
)

// ErrInvalidRequest marks request-shape problems the caller can fix,
// as opposed to the core reconciliation taxonomy.
var ErrInvalidRequest = errors.New("invalid request")

// Service is the single interface UI adapters call. It decouples
// presentation from the reconciliation core; implementations contain no
// display logic of any kind.
type Service interface {
	// GetOrderView returns the order together with its resolved
	// fulfillment stage and per-line-item statuses. Adapters consume
	// only these derived fields, never re-deriving them from raw data.
	GetOrderView(ctx context.Context, orderID string) (*OrderView, error)

	// CreateOrder places a new order from the customer portal.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error)

	// GenerateInvoice bills the selected line items in one pass.
	GenerateInvoice(ctx context.Context, orderID string, req GenerateInvoiceRequest) (*core.Invoice, error)

	// ListInvoices returns all invoices generated for the order.
	ListInvoices(ctx context.Context, orderID string) ([]core.Invoice, error)

	// RefreshTracking pulls carrier events on demand and merges them.
	RefreshTracking(ctx context.Context, orderID string) (*core.TrackingState, error)

	// IngestTrackingEvents merges a webhook-delivered event batch.
	IngestTrackingEvents(ctx context.Context, orderID string, events []core.TrackingEvent) (*core.TrackingState, error)
}

// OrderView is the read model for an order screen.
type OrderView struct {
	Order *core.Order `json:"order"`
	Stage core.Stage  `json:"stage"`
	Lines []LineView  `json:"lines"`
}

// LineView pairs a line item with its derived fulfillment label.
type LineView struct {
	LineItem core.LineItem       `json:"line_item"`
	Status   core.LineItemStatus `json:"status"`
}

// CreateOrderRequest carries a new order from the customer portal.
type CreateOrderRequest struct {
	OrderNumber  string
	CustomerCode string
	CustomerName string
	Lines        []CreateOrderLine
}

type CreateOrderLine struct {
	ItemID   string
	SKU      string
	Name     string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

// GenerateInvoiceRequest selects line items for one billing pass.
type GenerateInvoiceRequest struct {
	LineItemIDs     []string
	Discount        decimal.Decimal
	IncludeUnpacked bool
}

type service struct {
	orders   core.OrderStore
	invoices core.InvoiceStore
	splitter *core.InvoiceSplitter
	resolver *core.StatusResolver
	merger   *core.TrackingMerger
}

func NewService(orders core.OrderStore, invoices core.InvoiceStore, resolver *core.StatusResolver, merger *core.TrackingMerger) Service {
	return &service{
		orders:   orders,
		invoices: invoices,
		splitter: core.NewInvoiceSplitter(orders, invoices),
		resolver: resolver,
		merger:   merger,
	}
}

func (s *service) GetOrderView(ctx context.Context, orderID string) (*OrderView, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildView(o), nil
}

func (s *service) buildView(o *core.Order) *OrderView {
	view := &OrderView{
		Order: o,
		Stage: s.resolver.Resolve(o),
		Lines: make([]LineView, 0, len(o.LineItems)),
	}
	for _, li := range o.LineItems {
		view.Lines = append(view.Lines, LineView{
			LineItem: li,
			Status:   core.ResolveLineItemStatus(li),
		})
	}
	return view
}

func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderView, error) {
	if strings.TrimSpace(req.OrderNumber) == "" {
		return nil, fmt.Errorf("order number is required: %w", ErrInvalidRequest)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("order must have at least one line: %w", ErrInvalidRequest)
	}

	o := &core.Order{
		ID:           uuid.NewString(),
		OrderNumber:  strings.TrimSpace(req.OrderNumber),
		CustomerCode: strings.TrimSpace(req.CustomerCode),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Status:       "confirmed",
	}
	for i, l := range req.Lines {
		if l.Quantity.Sign() <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive: %w", i+1, ErrInvalidRequest)
		}
		if l.Rate.Sign() < 0 {
			return nil, fmt.Errorf("line %d: rate must not be negative: %w", i+1, ErrInvalidRequest)
		}
		o.LineItems = append(o.LineItems, core.LineItem{
			ID:        uuid.NewString(),
			ItemID:    l.ItemID,
			SKU:       l.SKU,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Rate:      l.Rate,
			LineTotal: l.Quantity.Mul(l.Rate),
		})
	}

	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create order %s: %w", o.OrderNumber, err)
	}
	return s.buildView(o), nil
}

func (s *service) GenerateInvoice(ctx context.Context, orderID string, req GenerateInvoiceRequest) (*core.Invoice, error) {
	return s.splitter.Generate(ctx, orderID, req.LineItemIDs, core.GenerateOptions{
		Discount:        req.Discount,
		IncludeUnpacked: req.IncludeUnpacked,
	})
}

func (s *service) ListInvoices(ctx context.Context, orderID string) ([]core.Invoice, error) {
	// Resolve first so unknown orders 404 instead of listing empty.
	if _, err := s.orders.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.invoices.ListInvoices(ctx, orderID)
}

func (s *service) RefreshTracking(ctx context.Context, orderID string) (*core.TrackingState, error) {
	return s.merger.Refresh(ctx, orderID)
}

func (s *service) IngestTrackingEvents(ctx context.Context, orderID string, events []core.TrackingEvent) (*core.TrackingState, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("event batch is empty: %w", ErrInvalidRequest)
	}
	for i, e := range events {
		if e.Timestamp.IsZero() || e.Status == "" {
			return nil, fmt.Errorf("event %d: timestamp and status are required: %w", i, ErrInvalidRequest)
		}
	}
	return s.merger.Ingest(ctx, orderID, events)
}
