package core

import "errors"

var (
	// ErrOrderNotFound matches standard 404 behavior.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvoiceNotFound matches standard 404 behavior.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrOverInvoice rejects any attempt to invoice more than the
	// remaining un-invoiced quantity of a line item. Never auto-corrected.
	ErrOverInvoice = errors.New("invoiced quantity exceeds remaining order quantity")

	// ErrEmptySelection means no selected line item nets a positive
	// invoiceable quantity. Recoverable: the caller should re-prompt.
	ErrEmptySelection = errors.New("no line item with invoiceable quantity selected")

	// ErrInvalidDiscount rejects a discount outside [0, subTotal].
	// Clamping is not acceptable; totals must never be silently altered.
	ErrInvalidDiscount = errors.New("discount must be between zero and the invoice subtotal")

	// ErrTrackingRefresh is a transport or parse failure talking to the
	// carrier provider. Stored tracking state is left untouched.
	ErrTrackingRefresh = errors.New("tracking refresh failed")

	// ErrConcurrentModification is an order revision mismatch. The caller
	// must re-fetch and retry the whole operation, never merge blindly.
	ErrConcurrentModification = errors.New("order was modified concurrently")
)
