package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"wholesale-portal/internal/app"
	"wholesale-portal/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeCoreError maps the core error taxonomy to HTTP status and code.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidRequest):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, core.ErrOrderNotFound):
		writeError(w, r, err.Error(), "ORDER_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrInvoiceNotFound):
		writeError(w, r, err.Error(), "INVOICE_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrEmptySelection):
		writeError(w, r, err.Error(), "EMPTY_SELECTION", http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidDiscount):
		writeError(w, r, err.Error(), "INVALID_DISCOUNT", http.StatusBadRequest)
	case errors.Is(err, core.ErrOverInvoice):
		writeError(w, r, err.Error(), "OVER_INVOICE", http.StatusConflict)
	case errors.Is(err, core.ErrConcurrentModification):
		writeError(w, r, err.Error(), "CONCURRENT_MODIFICATION", http.StatusConflict)
	case errors.Is(err, core.ErrTrackingRefresh):
		writeError(w, r, err.Error(), "TRACKING_REFRESH_FAILED", http.StatusBadGateway)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
