package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordercore/shop-backend/internal/cart"
)

// fakeCarts serves a fixed priced cart for every user.
type fakeCarts struct {
	items    []cart.PricedItem
	subtotal float64
}

func (f *fakeCarts) ActivePriced(userID int, now time.Time) (cart.Cart, []cart.PricedItem, float64, error) {
	return cart.Cart{CartID: 1, UserID: userID, Status: cart.StatusActive}, f.items, f.subtotal, nil
}

func cartWorth(subtotal float64) *fakeCarts {
	return &fakeCarts{
		items:    []cart.PricedItem{{ProductID: 1, Quantity: 1, UnitPrice: subtotal, LineTotal: subtotal}},
		subtotal: subtotal,
	}
}

func TestValidateHappyPath(t *testing.T) {
	repo := NewInMemoryRepository([]Coupon{
		{CouponID: 1, Code: "SAVE10", DiscountPercent: 10, MinOrderAmount: 50, Active: true},
	})
	svc := NewService(repo, cartWorth(80))

	res, err := svc.Validate(42, "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Subtotal)
	assert.Equal(t, 8.0, res.DiscountAmount)
	assert.Equal(t, 72.0, res.Total)
}

func TestValidateLadder(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	limit := 1

	repo := NewInMemoryRepository([]Coupon{
		{CouponID: 1, Code: "INACTIVE", DiscountPercent: 10, Active: false},
		{CouponID: 2, Code: "SOON", DiscountPercent: 10, Active: true, StartsAt: &future},
		{CouponID: 3, Code: "GONE", DiscountPercent: 10, Active: true, EndsAt: &past},
		{CouponID: 4, Code: "BIG", DiscountPercent: 10, MinOrderAmount: 50, Active: true},
		{CouponID: 5, Code: "CAPPED", DiscountPercent: 10, Active: true, UsageLimit: &limit, UsedCount: 1},
		{CouponID: 6, Code: "MINE", DiscountPercent: 10, Active: true},
	})
	repo.MarkUsed(42, 6)
	svc := NewService(repo, cartWorth(30))

	_, err := svc.Validate(42, "NOPE")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.Validate(42, "INACTIVE")
	assert.ErrorIs(t, err, ErrNotActive)

	_, err = svc.Validate(42, "SOON")
	assert.ErrorIs(t, err, ErrNotStarted)

	_, err = svc.Validate(42, "GONE")
	assert.ErrorIs(t, err, ErrExpired)

	_, err = svc.Validate(42, "BIG")
	var minErr *BelowMinimumError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, "order subtotal must be at least $50.00 to use this coupon", minErr.Error())

	_, err = svc.Validate(42, "CAPPED")
	assert.ErrorIs(t, err, ErrLimitReached)

	_, err = svc.Validate(42, "MINE")
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestValidateEmptyCart(t *testing.T) {
	repo := NewInMemoryRepository([]Coupon{
		{CouponID: 1, Code: "SAVE10", DiscountPercent: 10, Active: true},
	})
	svc := NewService(repo, &fakeCarts{})

	_, err := svc.Validate(42, "SAVE10")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestListForUserClassification(t *testing.T) {
	repo := NewInMemoryRepository([]Coupon{
		{CouponID: 1, Code: "OPEN", DiscountPercent: 10, Active: true},
		{CouponID: 2, Code: "BIG", DiscountPercent: 10, MinOrderAmount: 50, Active: true},
		{CouponID: 3, Code: "MINE", DiscountPercent: 10, Active: true},
	})
	repo.MarkUsed(42, 3)
	svc := NewService(repo, cartWorth(30))

	list, err := svc.ListForUser(42)
	require.NoError(t, err)
	require.Len(t, list, 3)

	byCode := map[string]Eligibility{}
	for _, e := range list {
		byCode[e.Coupon.Code] = e
	}

	assert.Equal(t, StatusEligible, byCode["OPEN"].Status)

	big := byCode["BIG"]
	assert.Equal(t, StatusNotEligible, big.Status)
	assert.Equal(t, "requires a minimum order of $50.00", big.Reason)
	assert.Equal(t, 20.0, big.AmountShort)

	assert.Equal(t, StatusUsed, byCode["MINE"].Status)
}

func TestCreateValidation(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	svc := NewService(repo, cartWorth(30))

	_, err := svc.Create(Coupon{Code: "ok", DiscountPercent: 0})
	assert.Error(t, err)

	_, err = svc.Create(Coupon{Code: "ok", DiscountPercent: 101})
	assert.Error(t, err)

	created, err := svc.Create(Coupon{Code: " promo1 ", DiscountPercent: 15, Active: true})
	require.NoError(t, err)
	assert.Equal(t, "PROMO1", created.Code)

	_, err = svc.Create(Coupon{Code: "promo1", DiscountPercent: 15})
	assert.ErrorIs(t, err, ErrCodeExists)
}
