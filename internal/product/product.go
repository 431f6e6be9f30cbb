package product

import (
	"time"

	"github.com/ordercore/shop-backend/internal/pricing"
)

// Product maps to the products table. Stock is only ever decremented inside
// the checkout transaction while the row is locked.
type Product struct {
	ID               int        `json:"productId"`
	Name             string     `json:"productName"`
	Description      string     `json:"productDesc"`
	Price            float64    `json:"price"`
	StockQuantity    int        `json:"stockQuantity"`
	DiscountPercent  *float64   `json:"discountPercent,omitempty"`
	DiscountStartsAt *time.Time `json:"discountStartsAt,omitempty"`
	DiscountEndsAt   *time.Time `json:"discountEndsAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt,omitempty"`
}

// ActiveDiscountPercent returns the product discount percent when now falls
// inside the discount window, otherwise 0.
func (p Product) ActiveDiscountPercent(now time.Time) float64 {
	if p.DiscountPercent == nil || *p.DiscountPercent <= 0 {
		return 0
	}
	if !pricing.InWindow(p.DiscountStartsAt, p.DiscountEndsAt, now) {
		return 0
	}
	return *p.DiscountPercent
}

// EffectivePrice is the unit price after any active discount, rounded to two
// decimals.
func (p Product) EffectivePrice(now time.Time) float64 {
	return pricing.DiscountedPrice(p.Price, p.ActiveDiscountPercent(now))
}
