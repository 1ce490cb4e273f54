package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wholesale-portal/internal/core"
)

// Client talks to the carrier integration's REST API and implements
// core.TrackingProvider. Failures are plain transport errors; the
// tracking merger wraps them into its own taxonomy.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type trackingEventPayload struct {
	Timestamp         time.Time `json:"timestamp"`
	Status            string    `json:"status"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	EstimatedDelivery string    `json:"estimated_delivery"`
}

type trackingEventsResponse struct {
	Events []trackingEventPayload `json:"events"`
}

// FetchTrackingEvents pulls the full event list for an order's shipment.
func (c *Client) FetchTrackingEvents(ctx context.Context, orderID string) ([]core.TrackingEvent, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("carrier API base URL is not configured")
	}

	url := fmt.Sprintf("%s/v1/shipments/%s/events", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build carrier request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("carrier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("carrier responded %d for order %s", resp.StatusCode, orderID)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read carrier response: %w", err)
	}

	var payload trackingEventsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode carrier response: %w", err)
	}

	events := make([]core.TrackingEvent, 0, len(payload.Events))
	for _, e := range payload.Events {
		events = append(events, core.TrackingEvent{
			Timestamp:         e.Timestamp,
			Status:            e.Status,
			Description:       e.Description,
			Location:          e.Location,
			EstimatedDelivery: e.EstimatedDelivery,
		})
	}
	return events, nil
}
