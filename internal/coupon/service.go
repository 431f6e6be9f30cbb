package coupon

import (
	"errors"
	"fmt"
	"time"

	"github.com/ordercore/shop-backend/internal/cart"
	"github.com/ordercore/shop-backend/internal/pricing"
)

// CartReader is the slice of the cart service the engine needs.
type CartReader interface {
	ActivePriced(userID int, now time.Time) (cart.Cart, []cart.PricedItem, float64, error)
}

type Service struct {
	repo  Repository
	carts CartReader
}

func NewService(repo Repository, carts CartReader) *Service {
	return &Service{repo: repo, carts: carts}
}

// Validate normalizes the code and walks the full ladder against the user's
// live cart subtotal. This is the pre-checkout check; order creation re-runs
// the usage check under the coupon row lock.
func (s *Service) Validate(userID int, code string) (ValidationResult, error) {
	now := time.Now()
	_, items, subtotal, err := s.carts.ActivePriced(userID, now)
	if err != nil {
		return ValidationResult{}, err
	}

	cpn, err := s.repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ValidationResult{}, ErrInvalidCode
		}
		return ValidationResult{}, err
	}

	if len(items) == 0 {
		return ValidationResult{}, ErrEmptyCart
	}

	if err := cpn.CheckRedeemable(subtotal, now); err != nil {
		return ValidationResult{}, err
	}

	used, err := s.repo.HasUserUsed(userID, cpn.CouponID, cpn.Code)
	if err != nil {
		return ValidationResult{}, err
	}
	if used {
		return ValidationResult{}, ErrAlreadyUsed
	}

	discount, total := cpn.DiscountFor(subtotal)
	return ValidationResult{
		Coupon:         cpn,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}

// ListForUser classifies every active in-window coupon against the user's
// current cart subtotal.
func (s *Service) ListForUser(userID int) ([]Eligibility, error) {
	now := time.Now()
	_, _, subtotal, err := s.carts.ActivePriced(userID, now)
	if err != nil {
		return nil, err
	}

	coupons, err := s.repo.ListActive()
	if err != nil {
		return nil, err
	}

	out := make([]Eligibility, 0, len(coupons))
	for _, cpn := range coupons {
		if !pricing.InWindow(cpn.StartsAt, cpn.EndsAt, now) {
			continue
		}

		used, err := s.repo.HasUserUsed(userID, cpn.CouponID, cpn.Code)
		if err != nil {
			return nil, err
		}
		switch {
		case used:
			out = append(out, Eligibility{Coupon: cpn, Status: StatusUsed, Reason: "already used"})
		case cpn.UsageLimit != nil && cpn.UsedCount >= *cpn.UsageLimit:
			out = append(out, Eligibility{Coupon: cpn, Status: StatusNotEligible, Reason: "usage limit reached"})
		case subtotal < cpn.MinOrderAmount:
			out = append(out, Eligibility{
				Coupon:      cpn,
				Status:      StatusNotEligible,
				Reason:      fmt.Sprintf("requires a minimum order of $%.2f", cpn.MinOrderAmount),
				AmountShort: pricing.Round2(cpn.MinOrderAmount - subtotal),
			})
		default:
			out = append(out, Eligibility{Coupon: cpn, Status: StatusEligible})
		}
	}
	return out, nil
}

func (s *Service) Create(c Coupon) (Coupon, error) {
	if err := validateCoupon(c); err != nil {
		return Coupon{}, err
	}
	c.Code = NormalizeCode(c.Code)
	return s.repo.Create(c)
}

func (s *Service) Update(c Coupon) (Coupon, error) {
	if c.CouponID <= 0 {
		return Coupon{}, ErrNotFound
	}
	if err := validateCoupon(c); err != nil {
		return Coupon{}, err
	}
	c.Code = NormalizeCode(c.Code)
	return s.repo.Update(c)
}

func validateCoupon(c Coupon) error {
	if NormalizeCode(c.Code) == "" {
		return errors.New("code is required")
	}
	if c.DiscountPercent <= 0 || c.DiscountPercent > 100 {
		return errors.New("discountPercent must be greater than 0 and at most 100")
	}
	if c.MinOrderAmount < 0 {
		return errors.New("minOrderAmount must be non-negative")
	}
	if c.UsageLimit != nil && *c.UsageLimit < 1 {
		return errors.New("usageLimit must be at least 1")
	}
	if c.StartsAt != nil && c.EndsAt != nil && c.EndsAt.Before(*c.StartsAt) {
		return errors.New("endsAt must not be before startsAt")
	}
	return nil
}
