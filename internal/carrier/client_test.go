package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_FetchTrackingEvents(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"events": []map[string]any{
				{
					"timestamp":          "2026-08-30T14:00:00Z",
					"status":             "in_transit",
					"description":        "Departed hub",
					"location":           "Leipzig",
					"estimated_delivery": "2026-09-02",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret-key")
	events, err := c.FetchTrackingEvents(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("FetchTrackingEvents failed: %v", err)
	}

	if gotPath != "/v1/shipments/ord-1/events" {
		t.Errorf("unexpected request path %s", gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Status != "in_transit" || e.Location != "Leipzig" || e.EstimatedDelivery != "2026-09-02" {
		t.Errorf("unexpected event %+v", e)
	}
	if want := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC); !e.Timestamp.Equal(want) {
		t.Errorf("unexpected timestamp %s", e.Timestamp)
	}
}

func TestClient_FetchTrackingEvents_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "shipment not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.FetchTrackingEvents(context.Background(), "ord-404"); err == nil {
		t.Error("expected error on non-2xx response")
	}

	unconfigured := NewClient("", "")
	if _, err := unconfigured.FetchTrackingEvents(context.Background(), "ord-1"); err == nil {
		t.Error("expected error when base URL is not configured")
	}
}
