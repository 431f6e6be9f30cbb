package coupon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ordercore/shop-backend/internal/pricing"
)

// Coupon is a percent-discount code with eligibility constraints.
type Coupon struct {
	CouponID        int        `json:"couponId"`
	Code            string     `json:"code"`
	DiscountPercent float64    `json:"discountPercent"`
	MinOrderAmount  float64    `json:"minOrderAmount"`
	StartsAt        *time.Time `json:"startsAt,omitempty"`
	EndsAt          *time.Time `json:"endsAt,omitempty"`
	UsageLimit      *int       `json:"usageLimit,omitempty"`
	UsedCount       int        `json:"usedCount"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"createdAt,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt,omitempty"`
}

var (
	ErrInvalidCode  = errors.New("coupon code is not valid")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotActive    = errors.New("coupon is not active")
	ErrNotStarted   = errors.New("coupon is not active yet")
	ErrExpired      = errors.New("coupon has expired")
	ErrLimitReached = errors.New("coupon usage limit reached")
	ErrAlreadyUsed  = errors.New("coupon has already been used")
	ErrCodeExists   = errors.New("coupon code already exists")
)

// BelowMinimumError keeps the minimum in the message so clients can show it.
type BelowMinimumError struct {
	Minimum float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order subtotal must be at least $%.2f to use this coupon", e.Minimum)
}

// NormalizeCode trims and uppercases a code; lookups and uniqueness both key
// on the normalized form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckRedeemable walks the validation ladder in its fixed order: NotActive,
// NotStarted, Expired, BelowMinimum, LimitReached. AlreadyUsed is checked by
// the caller because it needs the user's order history.
func (c Coupon) CheckRedeemable(subtotal float64, now time.Time) error {
	if !c.Active {
		return ErrNotActive
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return ErrNotStarted
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return ErrExpired
	}
	if subtotal < c.MinOrderAmount {
		return &BelowMinimumError{Minimum: c.MinOrderAmount}
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrLimitReached
	}
	return nil
}

// DiscountFor computes the discount amount and resulting total for a subtotal.
func (c Coupon) DiscountFor(subtotal float64) (discount, total float64) {
	discount = pricing.PercentOf(subtotal, c.DiscountPercent)
	total = pricing.Round2(subtotal - discount)
	if total < 0 {
		total = 0
	}
	return discount, total
}

// Eligibility classification for the coupon listing.
const (
	StatusEligible    = "eligible"
	StatusUsed        = "used"
	StatusNotEligible = "not_eligible"
)

type Eligibility struct {
	Coupon      Coupon  `json:"coupon"`
	Status      string  `json:"status"`
	Reason      string  `json:"reason,omitempty"`
	AmountShort float64 `json:"amountShort,omitempty"`
}

// ValidationResult is returned on a successful validate call.
type ValidationResult struct {
	Coupon         Coupon  `json:"coupon"`
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
}
