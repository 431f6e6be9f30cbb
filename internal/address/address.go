package address

import "time"

// Address is a row in the user's address book. Checkout copies the fields it
// needs onto the order, so later edits never touch past orders.
type Address struct {
	AddressID  int       `json:"addressId"`
	UserID     int       `json:"userId"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}
