package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wholesale-portal/internal/app"
)

// Handler wires the application service to the HTTP API consumed by
// the staff and customer portal frontends.
type Handler struct {
	svc    app.Service
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.Service, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Get("/{id}/stage", h.getStage)
		r.Post("/{id}/invoices", h.generateInvoice)
		r.Get("/{id}/invoices", h.listInvoices)
		r.Post("/{id}/tracking/refresh", h.refreshTracking)
	})

	r.Post("/api/webhooks/tracking", h.trackingWebhook)

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
