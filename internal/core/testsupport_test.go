package core

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

// fakeStore is a minimal in-memory OrderStore/InvoiceStore with the
// same revision contract as the real stores. Setting conflicts to n
// simulates a concurrent writer: the next n UpdateOrder calls bump the
// stored revision and fail with ErrConcurrentModification.
type fakeStore struct {
	orders      map[string]*Order
	invoices    map[string]*Invoice
	conflicts   int
	updateCalls int
}

func newFakeStore(orders ...*Order) *fakeStore {
	f := &fakeStore{
		orders:   make(map[string]*Order),
		invoices: make(map[string]*Invoice),
	}
	for _, o := range orders {
		f.orders[o.ID] = cloneForTest(o)
	}
	return f
}

func (f *fakeStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
	}
	return cloneForTest(o), nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, o *Order) error {
	f.orders[o.ID] = cloneForTest(o)
	return nil
}

func (f *fakeStore) UpdateOrder(ctx context.Context, o *Order) error {
	f.updateCalls++
	stored, ok := f.orders[o.ID]
	if !ok {
		return fmt.Errorf("order %s: %w", o.ID, ErrOrderNotFound)
	}
	if f.conflicts > 0 {
		f.conflicts--
		stored.Revision++
		return fmt.Errorf("order %s: %w", o.ID, ErrConcurrentModification)
	}
	if stored.Revision != o.Revision {
		return fmt.Errorf("order %s: %w", o.ID, ErrConcurrentModification)
	}
	o.Revision++
	f.orders[o.ID] = cloneForTest(o)
	return nil
}

func (f *fakeStore) CreateInvoice(ctx context.Context, inv *Invoice, o *Order) error {
	if err := f.UpdateOrder(ctx, o); err != nil {
		return err
	}
	f.invoices[inv.ID] = inv
	return nil
}

func (f *fakeStore) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, ErrInvoiceNotFound)
	}
	return inv, nil
}

func (f *fakeStore) ListInvoices(ctx context.Context, salesOrderID string) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range f.invoices {
		if inv.SalesOrderID == salesOrderID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func cloneForTest(o *Order) *Order {
	raw, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}
	var c Order
	if err := json.Unmarshal(raw, &c); err != nil {
		panic(err)
	}
	return &c
}

func mustGetOrder(t *testing.T, f *fakeStore, id string) *Order {
	t.Helper()
	o, err := f.GetOrder(context.Background(), id)
	if err != nil {
		t.Fatalf("GetOrder(%s) failed: %v", id, err)
	}
	return o
}
