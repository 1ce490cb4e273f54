package core

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestInvoiceSplitter_InvoicesRemainingQuantity(t *testing.T) {
	ctx := context.Background()
	o := testOrder()
	o.LineItems = o.LineItems[:1] // one line: 10 × 500
	o.LineItems[0].QuantityInvoiced = decimal.NewFromInt(6)
	store := newFakeStore(o)
	splitter := NewInvoiceSplitter(store, store)

	inv, err := splitter.Generate(ctx, "ord-1", []string{"li-1"}, GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(inv.LineItems) != 1 || !inv.LineItems[0].Quantity.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected one line with quantity 4, got %+v", inv.LineItems)
	}
	if !inv.Total.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected total 2000, got %s", inv.Total)
	}

	after := mustGetOrder(t, store, "ord-1")
	got, _ := after.FindLineItem("li-1")
	if !got.QuantityInvoiced.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected invoiced 10, got %s", got.QuantityInvoiced)
	}

	// Second call on the same selection nets zero and persists nothing.
	_, err = splitter.Generate(ctx, "ord-1", []string{"li-1"}, GenerateOptions{})
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if len(store.invoices) != 1 {
		t.Errorf("expected exactly one invoice, got %d", len(store.invoices))
	}
}

func TestInvoiceSplitter_SplitAcrossThreeCalls(t *testing.T) {
	// 4 packed units billed first, 6 unpacked billed later, third call
	// finds nothing left.
	ctx := context.Background()
	o := &Order{
		ID:          "ord-1",
		OrderNumber: "SO-1001",
		LineItems: []LineItem{
			{
				ID:             "li-1",
				Quantity:       decimal.NewFromInt(4),
				QuantityPacked: decimal.NewFromInt(4),
				Rate:           decimal.NewFromInt(500),
			},
			{
				ID:       "li-2",
				Quantity: decimal.NewFromInt(6),
				Rate:     decimal.NewFromInt(500),
			},
		},
	}
	store := newFakeStore(o)
	splitter := NewInvoiceSplitter(store, store)

	inv1, err := splitter.Generate(ctx, "ord-1", []string{"li-1", "li-2"}, GenerateOptions{})
	if err != nil {
		t.Fatalf("call 1 failed: %v", err)
	}
	if !inv1.Total.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("call 1: expected total 4*500=2000, got %s", inv1.Total)
	}
	if inv1.InvoiceNumber != "INV-SO-1001-1" {
		t.Errorf("call 1: unexpected invoice number %s", inv1.InvoiceNumber)
	}

	after := mustGetOrder(t, store, "ord-1")
	if !after.InvoiceSplit {
		t.Error("call 1: expected invoiceSplit=true while quantity remains")
	}
	if len(after.Invoices) != 1 {
		t.Fatalf("call 1: expected one invoice ref, got %d", len(after.Invoices))
	}

	inv2, err := splitter.Generate(ctx, "ord-1", []string{"li-2"}, GenerateOptions{IncludeUnpacked: true})
	if err != nil {
		t.Fatalf("call 2 failed: %v", err)
	}
	if !inv2.Total.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("call 2: expected total 6*500=3000, got %s", inv2.Total)
	}
	if inv2.InvoiceNumber != "INV-SO-1001-2" {
		t.Errorf("call 2: unexpected invoice number %s", inv2.InvoiceNumber)
	}

	after = mustGetOrder(t, store, "ord-1")
	if HasRemainingQuantity(after) {
		t.Error("call 2: expected no remaining un-invoiced quantity")
	}
	if !after.InvoiceSplit {
		t.Error("call 2: split flag must survive full billing")
	}

	if _, err := splitter.Generate(ctx, "ord-1", []string{"li-1", "li-2"}, GenerateOptions{IncludeUnpacked: true}); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("call 3: expected ErrEmptySelection, got %v", err)
	}
}

func TestInvoiceSplitter_PackedOnlyDefault(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(testOrder()) // li-1 packed, li-2 unpacked
	splitter := NewInvoiceSplitter(store, store)

	inv, err := splitter.Generate(ctx, "ord-1", []string{"li-1", "li-2"}, GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(inv.LineItems) != 1 || inv.LineItems[0].LineItemID != "li-1" {
		t.Fatalf("expected only the packed line, got %+v", inv.LineItems)
	}

	after := mustGetOrder(t, store, "ord-1")
	if !after.InvoiceSplit {
		t.Error("expected invoiceSplit=true, un-invoiced quantity remains on li-2")
	}
}

func TestInvoiceSplitter_ForceIncludeUnpacked(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(testOrder())
	splitter := NewInvoiceSplitter(store, store)

	inv, err := splitter.Generate(ctx, "ord-1", []string{"li-2"}, GenerateOptions{IncludeUnpacked: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(inv.LineItems) != 1 || !inv.LineItems[0].Quantity.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected unpacked line with quantity 4, got %+v", inv.LineItems)
	}
	if !inv.Total.Equal(decimal.NewFromInt(4800)) {
		t.Errorf("expected total 4800, got %s", inv.Total)
	}
}

func TestInvoiceSplitter_DiscountBounds(t *testing.T) {
	tests := []struct {
		name      string
		discount  decimal.Decimal
		wantErr   error
		wantTotal decimal.Decimal
	}{
		{"negative discount", decimal.NewFromInt(-1), ErrInvalidDiscount, decimal.Decimal{}},
		{"discount above subtotal", decimal.NewFromInt(5001), ErrInvalidDiscount, decimal.Decimal{}},
		{"discount equal to subtotal", decimal.NewFromInt(5000), nil, decimal.Zero},
		{"partial discount", decimal.NewFromInt(500), nil, decimal.NewFromInt(4500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOrder()
			o.LineItems = o.LineItems[:1] // subtotal 10 × 500 = 5000
			store := newFakeStore(o)
			splitter := NewInvoiceSplitter(store, store)

			inv, err := splitter.Generate(context.Background(), "ord-1", []string{"li-1"}, GenerateOptions{Discount: tt.discount})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(store.invoices) != 0 {
					t.Error("rejected generation must not persist an invoice")
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if !inv.Total.Equal(tt.wantTotal) {
				t.Errorf("expected total %s, got %s", tt.wantTotal, inv.Total)
			}
			if !inv.Balance.Equal(inv.Total) {
				t.Errorf("balance should start at total, got %s vs %s", inv.Balance, inv.Total)
			}
		})
	}
}

func TestInvoiceSplitter_NoOverInvoicingEver(t *testing.T) {
	// Invariant: whatever sequence of generate calls runs, invoiced
	// quantity never exceeds ordered quantity on any line.
	ctx := context.Background()
	store := newFakeStore(testOrder())
	splitter := NewInvoiceSplitter(store, store)

	selections := [][]string{
		{"li-1"},
		{"li-1", "li-2"},
		{"li-2"},
		{"li-1", "li-2"},
	}
	for _, sel := range selections {
		_, err := splitter.Generate(ctx, "ord-1", sel, GenerateOptions{IncludeUnpacked: true})
		if err != nil && !errors.Is(err, ErrEmptySelection) {
			t.Fatalf("Generate(%v) failed: %v", sel, err)
		}
		o := mustGetOrder(t, store, "ord-1")
		for _, li := range o.LineItems {
			if li.QuantityInvoiced.GreaterThan(li.Quantity) {
				t.Fatalf("line %s over-invoiced: %s > %s", li.ID, li.QuantityInvoiced, li.Quantity)
			}
		}
	}
}

func TestInvoiceSplitter_RevisionConflict(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(testOrder())
	store.conflicts = 1
	splitter := NewInvoiceSplitter(store, store)

	_, err := splitter.Generate(ctx, "ord-1", []string{"li-1"}, GenerateOptions{})
	if !errors.Is(err, ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	if len(store.invoices) != 0 {
		t.Error("conflicted generation must not persist an invoice")
	}
}
