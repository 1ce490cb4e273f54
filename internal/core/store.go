package core

import "context"

// OrderStore is the order persistence collaborator.
//
// UpdateOrder compares the revision on the passed order against the
// stored revision: on match it persists the new state and bumps the
// revision (also on the passed order); on mismatch it returns
// ErrConcurrentModification and writes nothing.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*Order, error)
	CreateOrder(ctx context.Context, o *Order) error
	UpdateOrder(ctx context.Context, o *Order) error
}

// InvoiceStore is the invoice persistence collaborator.
//
// CreateInvoice persists the invoice and the updated order as one
// atomic unit under the same revision check as OrderStore.UpdateOrder.
// Either both are written or neither is.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *Invoice, o *Order) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, salesOrderID string) ([]Invoice, error)
}

// TrackingProvider fetches carrier tracking events for an order's
// shipment. Implementations fail with a transport error on
// unreachable/non-2xx responses.
type TrackingProvider interface {
	FetchTrackingEvents(ctx context.Context, orderID string) ([]TrackingEvent, error)
}
