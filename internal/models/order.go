package models

import "time"

// OrderStatus follows the server's forward progression. The client never
// validates transitions, it trusts the authoritative status and re-renders.
type OrderStatus string

const (
	OrderPlaced           OrderStatus = "PLACED"
	OrderAcceptedByVendor OrderStatus = "ACCEPTED_BY_VENDOR"
	OrderPreparing        OrderStatus = "PREPARING"
	OrderReadyForPickup   OrderStatus = "READY_FOR_PICKUP"
	OrderAcceptedByAgent  OrderStatus = "ACCEPTED_BY_AGENT"
	OrderPickedUp         OrderStatus = "PICKED_UP"
	OrderDelivered        OrderStatus = "DELIVERED"
	OrderCancelled        OrderStatus = "CANCELLED"
	OrderRejected         OrderStatus = "REJECTED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled || s == OrderRejected
}

// OrderSummary is the read projection of a server-side order, scoped to what
// the client displays. Snapshots are immutable once fetched.
type OrderSummary struct {
	ID              string      `json:"id"`
	ShortID         string      `json:"short_id"`
	CounterpartID   string      `json:"counterpart_id"`
	CounterpartName string      `json:"counterpart_name"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"total_amount"`
	PlacedAt        time.Time   `json:"placed_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
