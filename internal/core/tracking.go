package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// TrackingMerger folds carrier tracking events, pushed by webhook or
// pulled on demand, into an order's live tracking state without
// duplicating events or regressing state.
type TrackingMerger struct {
	orders   OrderStore
	provider TrackingProvider
}

func NewTrackingMerger(orders OrderStore, provider TrackingProvider) *TrackingMerger {
	return &TrackingMerger{orders: orders, provider: provider}
}

// Refresh pulls the current event list from the carrier provider and
// merges it. A provider failure surfaces as ErrTrackingRefresh and
// leaves stored tracking state untouched.
func (m *TrackingMerger) Refresh(ctx context.Context, orderID string) (*TrackingState, error) {
	if m.provider == nil {
		return nil, fmt.Errorf("no carrier provider configured: %w", ErrTrackingRefresh)
	}
	events, err := m.provider.FetchTrackingEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("carrier fetch for order %s: %s: %w", orderID, err, ErrTrackingRefresh)
	}
	return m.Ingest(ctx, orderID, events)
}

// Ingest merges one batch of events into the order's tracking state.
// The merge is computed from a fresh read immediately before writing;
// a conflicting concurrent write triggers exactly one retry of the
// whole read-merge-write cycle. The batch is applied all-or-nothing.
func (m *TrackingMerger) Ingest(ctx context.Context, orderID string, events []TrackingEvent) (*TrackingState, error) {
	for attempt := 0; ; attempt++ {
		o, err := m.orders.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}

		merged, changed := MergeTracking(o.LiveTracking, events)
		if !changed {
			return merged, nil
		}

		o.LiveTracking = merged
		err = m.orders.UpdateOrder(ctx, o)
		if err == nil {
			return merged, nil
		}
		if errors.Is(err, ErrConcurrentModification) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("failed to persist tracking merge for order %s: %w", orderID, err)
	}
}

// MergeTracking unions the stored history with an incoming batch.
//
// Events are deduplicated on the (timestamp, status) pair, the union is
// re-sorted newest first, and the current status is taken from the
// maximum-timestamp event rather than the last event received, since
// batches arrive out of order. The estimated delivery is taken from the
// newest event carrying one and is never cleared by silence. The inputs
// are not mutated; the second return reports whether anything changed.
func MergeTracking(prev *TrackingState, events []TrackingEvent) (*TrackingState, bool) {
	if prev == nil && len(events) == 0 {
		return nil, false
	}

	seen := make(map[string]bool)
	var updates []TrackingEvent
	if prev != nil {
		updates = make([]TrackingEvent, len(prev.TrackingUpdates))
		copy(updates, prev.TrackingUpdates)
		for _, e := range prev.TrackingUpdates {
			seen[trackingKey(e)] = true
		}
	}

	added := 0
	for _, e := range events {
		key := trackingKey(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		updates = append(updates, e)
		added++
	}

	merged := &TrackingState{TrackingUpdates: updates}
	sort.SliceStable(merged.TrackingUpdates, func(i, j int) bool {
		return merged.TrackingUpdates[i].Timestamp.After(merged.TrackingUpdates[j].Timestamp)
	})

	if len(merged.TrackingUpdates) > 0 {
		merged.CurrentStatus = merged.TrackingUpdates[0].Status
	}
	if prev != nil {
		merged.EstimatedDelivery = prev.EstimatedDelivery
	}
	for _, e := range merged.TrackingUpdates {
		if e.EstimatedDelivery != "" {
			merged.EstimatedDelivery = e.EstimatedDelivery
			break
		}
	}

	changed := prev == nil ||
		added > 0 ||
		merged.CurrentStatus != prev.CurrentStatus ||
		merged.EstimatedDelivery != prev.EstimatedDelivery
	return merged, changed
}

func trackingKey(e TrackingEvent) string {
	return fmt.Sprintf("%d|%s", e.Timestamp.UTC().UnixNano(), e.Status)
}
