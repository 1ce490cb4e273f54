package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wholesale-portal/internal/core"
)

// Postgres persists orders and invoices. Orders are stored
// document-style: header columns plus JSONB for line items, packages,
// invoice refs, and live tracking, mirroring the document shape the
// rest of the portal reads. A revision column provides optimistic
// concurrency.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the portal tables if they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS portal_orders (
			id TEXT PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			customer_code TEXT NOT NULL DEFAULT '',
			customer_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			current_sub_status TEXT NOT NULL DEFAULT '',
			invoice_split BOOLEAN NOT NULL DEFAULT FALSE,
			line_items JSONB NOT NULL DEFAULT '[]',
			packages JSONB,
			invoices JSONB,
			live_tracking JSONB,
			revision BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portal_orders_number ON portal_orders (order_number)`,
		`CREATE TABLE IF NOT EXISTS portal_invoices (
			id TEXT PRIMARY KEY,
			invoice_number TEXT NOT NULL UNIQUE,
			sales_order_id TEXT NOT NULL REFERENCES portal_orders (id),
			line_items JSONB NOT NULL DEFAULT '[]',
			sub_total NUMERIC(14,2) NOT NULL,
			discount NUMERIC(14,2) NOT NULL DEFAULT 0,
			total NUMERIC(14,2) NOT NULL,
			balance NUMERIC(14,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portal_invoices_order ON portal_invoices (sales_order_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) GetOrder(ctx context.Context, id string) (*core.Order, error) {
	var (
		o                                              core.Order
		lineItems, packages, invoiceRefs, liveTracking []byte
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, order_number, customer_code, customer_name, status, current_sub_status,
		       invoice_split, line_items, packages, invoices, live_tracking,
		       revision, created_at, updated_at
		FROM portal_orders WHERE id = $1
	`, id).Scan(
		&o.ID, &o.OrderNumber, &o.CustomerCode, &o.CustomerName, &o.Status, &o.CurrentSubStatus,
		&o.InvoiceSplit, &lineItems, &packages, &invoiceRefs, &liveTracking,
		&o.Revision, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, core.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}

	if err := json.Unmarshal(lineItems, &o.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode line items for order %s: %w", id, err)
	}
	if len(packages) > 0 {
		if err := json.Unmarshal(packages, &o.Packages); err != nil {
			return nil, fmt.Errorf("failed to decode packages for order %s: %w", id, err)
		}
	}
	if len(invoiceRefs) > 0 {
		if err := json.Unmarshal(invoiceRefs, &o.Invoices); err != nil {
			return nil, fmt.Errorf("failed to decode invoice refs for order %s: %w", id, err)
		}
	}
	if len(liveTracking) > 0 {
		if err := json.Unmarshal(liveTracking, &o.LiveTracking); err != nil {
			return nil, fmt.Errorf("failed to decode live tracking for order %s: %w", id, err)
		}
	}
	return &o, nil
}

func (p *Postgres) CreateOrder(ctx context.Context, o *core.Order) error {
	lineItems, packages, invoiceRefs, liveTracking, err := encodeOrderDocs(o)
	if err != nil {
		return err
	}
	err = p.pool.QueryRow(ctx, `
		INSERT INTO portal_orders (id, order_number, customer_code, customer_name, status,
		                           current_sub_status, invoice_split, line_items, packages,
		                           invoices, live_tracking, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0)
		RETURNING revision, created_at, updated_at
	`, o.ID, o.OrderNumber, o.CustomerCode, o.CustomerName, o.Status,
		o.CurrentSubStatus, o.InvoiceSplit, lineItems, packages,
		invoiceRefs, liveTracking,
	).Scan(&o.Revision, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order %s: %w", o.ID, err)
	}
	return nil
}

func (p *Postgres) UpdateOrder(ctx context.Context, o *core.Order) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := p.updateOrderTx(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order update: %w", err)
	}
	return nil
}

func (p *Postgres) updateOrderTx(ctx context.Context, tx pgx.Tx, o *core.Order) error {
	lineItems, packages, invoiceRefs, liveTracking, err := encodeOrderDocs(o)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE portal_orders
		SET status = $2, current_sub_status = $3, invoice_split = $4,
		    line_items = $5, packages = $6, invoices = $7, live_tracking = $8,
		    revision = revision + 1, updated_at = NOW()
		WHERE id = $1 AND revision = $9
	`, o.ID, o.Status, o.CurrentSubStatus, o.InvoiceSplit,
		lineItems, packages, invoiceRefs, liveTracking, o.Revision)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM portal_orders WHERE id = $1)", o.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order %s: %w", o.ID, err)
		}
		if !exists {
			return fmt.Errorf("order %s: %w", o.ID, core.ErrOrderNotFound)
		}
		return fmt.Errorf("order %s revision %d is stale: %w", o.ID, o.Revision, core.ErrConcurrentModification)
	}
	o.Revision++
	return nil
}

// CreateInvoice persists the invoice and the updated order in one
// transaction so a failed ledger write can never leave a dangling
// invoice, or vice versa.
func (p *Postgres) CreateInvoice(ctx context.Context, inv *core.Invoice, o *core.Order) error {
	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode invoice lines: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO portal_invoices (id, invoice_number, sales_order_id, line_items,
		                             sub_total, discount, total, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, inv.ID, inv.InvoiceNumber, inv.SalesOrderID, lineItems,
		inv.SubTotal, inv.Discount, inv.Total, inv.Balance, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice %s: %w", inv.InvoiceNumber, err)
	}

	if err := p.updateOrderTx(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit invoice %s: %w", inv.InvoiceNumber, err)
	}
	return nil
}

func (p *Postgres) GetInvoice(ctx context.Context, id string) (*core.Invoice, error) {
	var (
		inv       core.Invoice
		lineItems []byte
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, invoice_number, sales_order_id, line_items, sub_total, discount, total, balance, created_at
		FROM portal_invoices WHERE id = $1
	`, id).Scan(&inv.ID, &inv.InvoiceNumber, &inv.SalesOrderID, &lineItems,
		&inv.SubTotal, &inv.Discount, &inv.Total, &inv.Balance, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, core.ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", id, err)
	}
	if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode invoice lines for %s: %w", id, err)
	}
	return &inv, nil
}

func (p *Postgres) ListInvoices(ctx context.Context, salesOrderID string) ([]core.Invoice, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, invoice_number, sales_order_id, line_items, sub_total, discount, total, balance, created_at
		FROM portal_invoices
		WHERE sales_order_id = $1
		ORDER BY created_at, invoice_number
	`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.Invoice
	for rows.Next() {
		var (
			inv       core.Invoice
			lineItems []byte
		)
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.SalesOrderID, &lineItems,
			&inv.SubTotal, &inv.Discount, &inv.Total, &inv.Balance, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("failed to decode invoice lines for %s: %w", inv.ID, err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func encodeOrderDocs(o *core.Order) (lineItems, packages, invoiceRefs, liveTracking []byte, err error) {
	if lineItems, err = json.Marshal(o.LineItems); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode line items: %w", err)
	}
	if o.Packages != nil {
		if packages, err = json.Marshal(o.Packages); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode packages: %w", err)
		}
	}
	if o.Invoices != nil {
		if invoiceRefs, err = json.Marshal(o.Invoices); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode invoice refs: %w", err)
		}
	}
	if o.LiveTracking != nil {
		if liveTracking, err = json.Marshal(o.LiveTracking); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode live tracking: %w", err)
		}
	}
	return lineItems, packages, invoiceRefs, liveTracking, nil
}
