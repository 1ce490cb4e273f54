package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"wholesale-portal/internal/app"
)

type createOrderPayload struct {
	OrderNumber  string `json:"order_number"`
	CustomerCode string `json:"customer_code"`
	CustomerName string `json:"customer_name"`
	Lines        []struct {
		ItemID   string          `json:"item_id"`
		SKU      string          `json:"sku"`
		Name     string          `json:"name"`
		Quantity decimal.Decimal `json:"quantity"`
		Rate     decimal.Decimal `json:"rate"`
	} `json:"lines"`
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload createOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, "invalid JSON payload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.CreateOrderRequest{
		OrderNumber:  payload.OrderNumber,
		CustomerCode: payload.CustomerCode,
		CustomerName: payload.CustomerName,
	}
	for _, l := range payload.Lines {
		req.Lines = append(req.Lines, app.CreateOrderLine{
			ItemID:   l.ItemID,
			SKU:      l.SKU,
			Name:     l.Name,
			Quantity: l.Quantity,
			Rate:     l.Rate,
		})
	}

	view, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetOrderView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// getStage handles GET /api/orders/{id}/stage.
func (h *Handler) getStage(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetOrderView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stage":   view.Stage,
		"ordinal": view.Stage.Ordinal(),
	})
}

type generateInvoicePayload struct {
	LineItemIDs     []string         `json:"line_item_ids"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	IncludeUnpacked bool             `json:"include_unpacked,omitempty"`
}

// generateInvoice handles POST /api/orders/{id}/invoices.
func (h *Handler) generateInvoice(w http.ResponseWriter, r *http.Request) {
	var payload generateInvoicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, "invalid JSON payload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.GenerateInvoiceRequest{
		LineItemIDs:     payload.LineItemIDs,
		IncludeUnpacked: payload.IncludeUnpacked,
	}
	if payload.Discount != nil {
		req.Discount = *payload.Discount
	}

	inv, err := h.svc.GenerateInvoice(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// listInvoices handles GET /api/orders/{id}/invoices.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}
