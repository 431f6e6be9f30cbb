package order

import (
	"errors"
	"fmt"
	"time"
)

const (
	StatusPending   = "PENDING"
	StatusPaid      = "PAID"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrAddressNotFound  = errors.New("shipping address not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrDuplicateProduct = errors.New("order contains the same product more than once")
	ErrInvalidQuantity  = errors.New("item quantity must be at least 1")
	ErrBadTransition    = errors.New("status transition not allowed")
	ErrUnknownStatus    = errors.New("unknown order status")
)

// InsufficientStockError names the product so the message is actionable.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q", e.ProductName)
}

// AddressSnapshot is the denormalized shipping address frozen onto the order
// at creation. Later address-book edits never change it.
type AddressSnapshot struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Order struct {
	OrderID         int             `json:"orderId"`
	UserID          int             `json:"userId"`
	Status          string          `json:"status"`
	TotalAmount     float64         `json:"totalAmount"`
	DiscountAmount  float64         `json:"discountAmount"`
	Currency        string          `json:"currency"`
	CouponID        *int            `json:"couponId,omitempty"`
	CouponCode      *string         `json:"couponCode,omitempty"`
	ShippingAddress AddressSnapshot `json:"shippingAddress"`
	Items           []Item          `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt,omitempty"`
}

// Item is immutable after creation; UnitPrice is the price captured from the
// locked product row at order time.
type Item struct {
	OrderItemID int     `json:"orderItemId"`
	OrderID     int     `json:"orderId"`
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

// Line is one requested product/quantity pair at checkout.
type Line struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// PlaceRequest is everything checkout needs; the coupon code is optional.
type PlaceRequest struct {
	UserID     int
	AddressID  int
	Lines      []Line
	CouponCode string
}

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusPaid:      true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// allowed forward transitions; DELIVERED and CANCELLED are terminal
var transitions = map[string][]string{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered, StatusCancelled},
}

func IsValidStatus(status string) bool {
	return validStatuses[status]
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateLines rejects empty orders, duplicate product ids and non-positive
// quantities before any storage work starts.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	seen := make(map[int]bool, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if seen[l.ProductID] {
			return ErrDuplicateProduct
		}
		seen[l.ProductID] = true
	}
	return nil
}
