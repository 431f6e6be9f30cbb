package loyalty

import (
	"math"
	"time"
)

const (
	TypeEarned   = "earned"
	TypeRedeemed = "redeemed"

	// MinRedeemPoints is the smallest redemption request accepted; points
	// convert in blocks of RedeemBlock for BlockDiscount off.
	MinRedeemPoints = 100
	RedeemBlock     = 100
	BlockDiscount   = 10.0

	earnRate = 0.05
)

// Account is the current balance plus lifetime counters.
type Account struct {
	UserID        int       `json:"userId"`
	Points        int       `json:"points"`
	TotalEarned   int       `json:"totalEarned"`
	TotalRedeemed int       `json:"totalRedeemed"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// Transaction is one append-only ledger entry.
type Transaction struct {
	TransactionID int       `json:"transactionId"`
	UserID        int       `json:"userId"`
	OrderID       *int      `json:"orderId,omitempty"`
	Type          string    `json:"type"`
	Points        int       `json:"points"`
	OrderAmount   float64   `json:"orderAmount"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// PointsFromAmount accrues floor(amount × 5%) points for a paid total.
func PointsFromAmount(amount float64) int {
	if amount <= 0 {
		return 0
	}
	return int(math.Floor(amount * earnRate))
}

// DiscountFromPoints converts whole 100-point blocks into a flat $10 each.
func DiscountFromPoints(points int) float64 {
	if points <= 0 {
		return 0
	}
	return float64(points/RedeemBlock) * BlockDiscount
}

// CanRedeem requires at least the minimum block and a covering balance.
func CanRedeem(balance, requested int) bool {
	return requested >= MinRedeemPoints && balance >= requested
}
