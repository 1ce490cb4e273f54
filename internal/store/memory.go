package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wholesale-portal/internal/core"
)

// Memory is an in-memory implementation of the order and invoice
// stores. It backs tests and the no-database fallback mode of the
// server. The revision contract matches Postgres: writes compare the
// caller's revision against the stored one and fail with
// core.ErrConcurrentModification on mismatch.
type Memory struct {
	mu       sync.RWMutex
	orders   map[string]*core.Order
	invoices map[string]*core.Invoice
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		orders:   make(map[string]*core.Order),
		invoices: make(map[string]*core.Invoice),
		now:      time.Now,
	}
}

func (m *Memory) GetOrder(ctx context.Context, id string) (*core.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, core.ErrOrderNotFound)
	}
	return cloneOrder(o), nil
}

func (m *Memory) CreateOrder(ctx context.Context, o *core.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	now := m.now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m *Memory) UpdateOrder(ctx context.Context, o *core.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateOrderLocked(o)
}

func (m *Memory) updateOrderLocked(o *core.Order) error {
	stored, ok := m.orders[o.ID]
	if !ok {
		return fmt.Errorf("order %s: %w", o.ID, core.ErrOrderNotFound)
	}
	if stored.Revision != o.Revision {
		return fmt.Errorf("order %s revision %d, expected %d: %w",
			o.ID, stored.Revision, o.Revision, core.ErrConcurrentModification)
	}
	o.Revision++
	o.UpdatedAt = m.now().UTC()
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m *Memory) CreateInvoice(ctx context.Context, inv *core.Invoice, o *core.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updateOrderLocked(o); err != nil {
		return err
	}
	m.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (m *Memory) GetInvoice(ctx context.Context, id string) (*core.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, core.ErrInvoiceNotFound)
	}
	return cloneInvoice(inv), nil
}

func (m *Memory) ListInvoices(ctx context.Context, salesOrderID string) ([]core.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.Invoice
	for _, inv := range m.invoices {
		if inv.SalesOrderID == salesOrderID {
			out = append(out, *cloneInvoice(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].InvoiceNumber < out[j].InvoiceNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// cloneOrder deep-copies an order so callers never share mutable state
// with the store.
func cloneOrder(o *core.Order) *core.Order {
	c := *o
	c.LineItems = make([]core.LineItem, len(o.LineItems))
	copy(c.LineItems, o.LineItems)
	if o.Packages != nil {
		c.Packages = make(map[string]core.Package, len(o.Packages))
		for k, p := range o.Packages {
			if p.ShipmentOrder != nil {
				so := *p.ShipmentOrder
				p.ShipmentOrder = &so
			}
			c.Packages[k] = p
		}
	}
	if o.Invoices != nil {
		c.Invoices = make([]core.InvoiceRef, len(o.Invoices))
		copy(c.Invoices, o.Invoices)
	}
	if o.LiveTracking != nil {
		lt := *o.LiveTracking
		lt.TrackingUpdates = make([]core.TrackingEvent, len(o.LiveTracking.TrackingUpdates))
		copy(lt.TrackingUpdates, o.LiveTracking.TrackingUpdates)
		c.LiveTracking = &lt
	}
	return &c
}

func cloneInvoice(inv *core.Invoice) *core.Invoice {
	c := *inv
	c.LineItems = make([]core.InvoiceLineItem, len(inv.LineItems))
	copy(c.LineItems, inv.LineItems)
	return &c
}
