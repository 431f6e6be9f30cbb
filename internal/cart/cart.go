package cart

import "time"

const (
	StatusActive     = "ACTIVE"
	StatusCheckedOut = "CHECKED_OUT"
)

// Cart is a user's pre-checkout collection of lines. Exactly one ACTIVE cart
// exists per user; it is created lazily on the first add.
type Cart struct {
	CartID    int       `json:"cartId"`
	UserID    int       `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Item is one product line. UnitPrice is the snapshot taken when the line was
// first added; checkout prices from the live product row instead.
type Item struct {
	CartItemID int       `json:"cartItemId"`
	CartID     int       `json:"cartId"`
	ProductID  int       `json:"productId"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// PricedItem is a cart line priced against the live product table, including
// any discount active right now.
type PricedItem struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	AddedPrice  float64 `json:"addedPrice"`
	LineTotal   float64 `json:"lineTotal"`
}

// View is what the cart endpoints return.
type View struct {
	Cart     Cart         `json:"cart"`
	Items    []PricedItem `json:"items"`
	Subtotal float64      `json:"subtotal"`
}
