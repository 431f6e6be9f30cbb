package shipment

import (
	"errors"
	"time"
)

// Carrier-level statuses. The list is open-ended; DELIVERED is the one that
// drives the order lifecycle.
const (
	StatusCreated   = "CREATED"
	StatusInTransit = "IN_TRANSIT"
	StatusDelivered = "DELIVERED"
)

var (
	ErrNotFound      = errors.New("shipment not found")
	ErrEmptyStatus   = errors.New("shipment status is required")
	ErrOrderNotFound = errors.New("order not found")
)

type Shipment struct {
	ShipmentID     int       `json:"shipmentId"`
	OrderID        int       `json:"orderId"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"trackingNumber"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Event is one row of the append-only audit trail; the newest event defines
// the shipment's current status.
type Event struct {
	EventID    int       `json:"eventId"`
	ShipmentID int       `json:"shipmentId"`
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
