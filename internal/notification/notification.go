package notification

import "time"

const TypeOrderDelivered = "ORDER_DELIVERED"

type Notification struct {
	NotificationID int       `json:"notificationId"`
	UserID         int       `json:"userId"`
	OrderID        *int      `json:"orderId,omitempty"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}
