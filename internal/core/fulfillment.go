package core

import (
	"strings"
	"time"
)

// shipmentDateLayout is the warehouse calendar-date form used on
// package shipment records.
const shipmentDateLayout = "2006-01-02"

// StatusResolver derives the display stage of an order from its
// packages, shipment sub-records, and optional live carrier tracking.
//
// Live carrier data is the most trustworthy source and wins over
// package-derived heuristics. Shipment dates are compared date-only in
// the warehouse-local timezone: packages often get a future ship date
// assigned before actually leaving the warehouse, and treating
// assignment as "shipped" would be misleading.
type StatusResolver struct {
	loc *time.Location
	now func() time.Time
}

// NewStatusResolver builds a resolver for the given warehouse timezone.
// A nil location falls back to the local timezone.
func NewStatusResolver(loc *time.Location) *StatusResolver {
	if loc == nil {
		loc = time.Local
	}
	return &StatusResolver{loc: loc, now: time.Now}
}

// Resolve maps the order's raw shipment data to one of the five ordered
// stages. Rules are evaluated top to bottom; the first match wins.
func (r *StatusResolver) Resolve(o *Order) Stage {
	if lt := o.LiveTracking; lt != nil {
		s := strings.ToLower(lt.CurrentStatus)
		switch {
		case s == "delivered":
			return StageDelivered
		case strings.Contains(s, "transit") || strings.Contains(s, "shipped"):
			return StageShipped
		case strings.Contains(s, "packed") || strings.Contains(s, "ready"):
			return StagePacked
		}
	}

	// No packing info yet: the order is confirmed and handed off.
	if len(o.Packages) == 0 {
		return StageSentToWarehouse
	}

	hasShipmentDate := false
	for _, p := range o.Packages {
		if p.ShipmentOrder != nil && p.ShipmentOrder.ShipmentDate != "" {
			hasShipmentDate = true
			break
		}
	}
	if !hasShipmentDate {
		return StagePacked
	}

	if indicatesDelivered(o.Status) || indicatesDelivered(o.CurrentSubStatus) {
		return StageDelivered
	}
	if o.LiveTracking != nil && indicatesDelivered(o.LiveTracking.CurrentStatus) {
		return StageDelivered
	}

	now := r.now().In(r.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	for _, p := range o.Packages {
		if p.ShipmentOrder == nil || p.ShipmentOrder.ShipmentDate == "" {
			continue
		}
		d, err := time.ParseInLocation(shipmentDateLayout, p.ShipmentOrder.ShipmentDate, r.loc)
		if err != nil {
			continue
		}
		if !d.After(today) {
			return StageShipped
		}
	}

	// Every ship date is in the future: assigned, not yet shipped.
	return StagePacked
}

func indicatesDelivered(status string) bool {
	return strings.Contains(strings.ToLower(status), "delivered")
}

// ResolveLineItemStatus labels one line item from its shipped quantity
// alone. It deliberately does not consult the order-level stage.
func ResolveLineItemStatus(li LineItem) LineItemStatus {
	switch {
	case li.QuantityShipped.Sign() <= 0:
		return LineItemAwaiting
	case li.QuantityShipped.LessThan(li.Quantity):
		return LineItemPartial
	default:
		return LineItemShipped
	}
}
