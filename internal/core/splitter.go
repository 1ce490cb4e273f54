package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateOptions tunes one invoice generation pass.
//
// By default only line items with a non-zero packed quantity are
// considered. IncludeUnpacked force-includes unpacked items, used for
// deposit/advance invoicing; such items still have to satisfy the
// ledger invariant.
type GenerateOptions struct {
	Discount        decimal.Decimal
	IncludeUnpacked bool
}

// InvoiceSplitter turns a user-chosen subset of an order's line items
// into a new Invoice while preserving the ledger invariant, and flags
// the order as split when un-invoiced quantity remains afterwards.
type InvoiceSplitter struct {
	orders   OrderStore
	invoices InvoiceStore
	now      func() time.Time
}

func NewInvoiceSplitter(orders OrderStore, invoices InvoiceStore) *InvoiceSplitter {
	return &InvoiceSplitter{orders: orders, invoices: invoices, now: time.Now}
}

// Generate creates exactly one invoice per successful call.
//
// Line items already fully invoiced are silently skipped rather than
// erroring, so repeated generation attempts never double-bill. If no
// selected line nets a positive invoiceable quantity the call fails
// with ErrEmptySelection and nothing is persisted. The invoice, the
// ledger increments, and the invoiceSplit flag are committed as one
// atomic unit through the invoice store.
func (s *InvoiceSplitter) Generate(ctx context.Context, orderID string, lineItemIDs []string, opts GenerateOptions) (*Invoice, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool, len(lineItemIDs))
	for _, id := range lineItemIDs {
		selected[id] = true
	}

	type draftLine struct {
		item     LineItem
		quantity decimal.Decimal
	}
	var drafts []draftLine
	subTotal := decimal.Zero

	for _, li := range o.LineItems {
		if !selected[li.ID] {
			continue
		}
		if !opts.IncludeUnpacked && li.QuantityPacked.Sign() == 0 {
			continue
		}
		quantity := UnInvoicedQuantity(li)
		if quantity.GreaterThan(li.Quantity) {
			quantity = li.Quantity
		}
		if quantity.Sign() <= 0 {
			continue
		}
		drafts = append(drafts, draftLine{item: li, quantity: quantity})
		subTotal = subTotal.Add(quantity.Mul(li.Rate))
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("order %s: %w", o.OrderNumber, ErrEmptySelection)
	}
	if opts.Discount.Sign() < 0 || opts.Discount.GreaterThan(subTotal) {
		return nil, fmt.Errorf("discount %s on subtotal %s: %w", opts.Discount, subTotal, ErrInvalidDiscount)
	}

	total := subTotal.Sub(opts.Discount)
	inv := &Invoice{
		ID:            uuid.NewString(),
		InvoiceNumber: fmt.Sprintf("INV-%s-%d", o.OrderNumber, len(o.Invoices)+1),
		SalesOrderID:  o.ID,
		SubTotal:      subTotal,
		Discount:      opts.Discount,
		Total:         total,
		Balance:       total,
		CreatedAt:     s.now().UTC(),
	}

	for _, d := range drafts {
		if _, err := applyInvoiced(o, d.item.ID, d.quantity); err != nil {
			return nil, err
		}
		inv.LineItems = append(inv.LineItems, InvoiceLineItem{
			LineItemID: d.item.ID,
			ItemID:     d.item.ItemID,
			SKU:        d.item.SKU,
			Name:       d.item.Name,
			Quantity:   d.quantity,
			Rate:       d.item.Rate,
			LineTotal:  d.quantity.Mul(d.item.Rate),
		})
	}

	// The flag only ever flips on: an order invoiced in multiple passes
	// stays marked as split even once fully billed.
	if HasRemainingQuantity(o) {
		o.InvoiceSplit = true
	}
	o.Invoices = append(o.Invoices, InvoiceRef{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Total:         inv.Total,
		CreatedAt:     inv.CreatedAt,
	})

	if err := s.invoices.CreateInvoice(ctx, inv, o); err != nil {
		return nil, fmt.Errorf("failed to persist invoice %s: %w", inv.InvoiceNumber, err)
	}
	return inv, nil
}
