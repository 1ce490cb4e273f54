package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger is the single source of truth for how much of each order line
// item has been billed. It enforces 0 <= quantityInvoiced <= quantity
// per line item and touches nothing beyond the invoiced quantities.
type Ledger struct {
	orders OrderStore
}

func NewLedger(orders OrderStore) *Ledger {
	return &Ledger{orders: orders}
}

// MarkInvoiced atomically increments the invoiced quantity of one line
// item and returns the updated line. It fails with ErrOverInvoice if
// the increment would exceed the ordered quantity, and with
// ErrConcurrentModification if the order changed between read and write.
func (l *Ledger) MarkInvoiced(ctx context.Context, orderID, lineItemID string, quantity decimal.Decimal) (*LineItem, error) {
	o, err := l.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	li, err := applyInvoiced(o, lineItemID, quantity)
	if err != nil {
		return nil, err
	}

	if err := l.orders.UpdateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to persist invoiced quantity for line %s: %w", lineItemID, err)
	}

	updated := *li
	return &updated, nil
}

// applyInvoiced mutates the in-memory order, enforcing the ledger
// invariant. Shared by MarkInvoiced and the invoice splitter so that
// multi-line invoice generation can be persisted as one write.
func applyInvoiced(o *Order, lineItemID string, quantity decimal.Decimal) (*LineItem, error) {
	li, ok := o.FindLineItem(lineItemID)
	if !ok {
		return nil, fmt.Errorf("line item %s not found on order %s", lineItemID, o.ID)
	}
	if quantity.Sign() <= 0 {
		return nil, fmt.Errorf("invoiced quantity for line %s must be positive, got %s", lineItemID, quantity)
	}
	if li.QuantityInvoiced.Add(quantity).GreaterThan(li.Quantity) {
		return nil, fmt.Errorf("line %s: %s invoiced + %s requested > %s ordered: %w",
			lineItemID, li.QuantityInvoiced, quantity, li.Quantity, ErrOverInvoice)
	}
	li.QuantityInvoiced = li.QuantityInvoiced.Add(quantity)
	return li, nil
}

// UnInvoicedQuantity returns how much of the line item has not been
// billed yet.
func UnInvoicedQuantity(li LineItem) decimal.Decimal {
	return li.Quantity.Sub(li.QuantityInvoiced)
}

// HasRemainingQuantity reports whether any line item of the order still
// has un-invoiced quantity.
func HasRemainingQuantity(o *Order) bool {
	for _, li := range o.LineItems {
		if UnInvoicedQuantity(li).Sign() > 0 {
			return true
		}
	}
	return false
}
