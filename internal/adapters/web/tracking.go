package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wholesale-portal/internal/core"
)

// refreshTracking handles POST /api/orders/{id}/tracking/refresh.
// A carrier failure is soft: the stored state stays untouched and the
// client may retry manually.
func (h *Handler) refreshTracking(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.RefreshTracking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"live_tracking": state})
}

type trackingWebhookPayload struct {
	OrderID string               `json:"order_id"`
	Events  []core.TrackingEvent `json:"events"`
}

// trackingWebhook handles POST /api/webhooks/tracking, the push
// alternative to polling. Redelivered batches are deduplicated on the
// (timestamp, status) key, so the endpoint is idempotent.
func (h *Handler) trackingWebhook(w http.ResponseWriter, r *http.Request) {
	var payload trackingWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, "invalid JSON payload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		writeError(w, r, "order_id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	state, err := h.svc.IngestTrackingEvents(r.Context(), payload.OrderID, payload.Events)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"live_tracking": state})
}
