package pricing

import (
	"math"
	"time"
)

// Round2 rounds a money amount to two decimals.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// InWindow reports whether now falls inside the optional [start, end] range.
// A nil bound is open-ended.
func InWindow(start, end *time.Time, now time.Time) bool {
	if start != nil && now.Before(*start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}

// DiscountedPrice applies a percent discount to a unit price, rounded to two
// decimals. Percent zero returns the price unchanged.
func DiscountedPrice(price, percent float64) float64 {
	if percent <= 0 {
		return Round2(price)
	}
	return Round2(price * (1 - percent/100))
}

// PercentOf computes round(amount × percent / 100, 2), the coupon discount
// amount for a subtotal.
func PercentOf(amount, percent float64) float64 {
	return Round2(amount * percent / 100)
}
