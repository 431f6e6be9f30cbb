package loyalty

import "errors"

var (
	ErrBelowMinimumRedeem = errors.New("redemption requires at least 100 points")
	ErrInsufficientPoints = errors.New("not enough points for this redemption")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Balance(userID int) (Account, error) {
	return s.repo.GetAccount(userID)
}

func (s *Service) History(userID, limit int) ([]Transaction, error) {
	return s.repo.History(userID, limit)
}

// RedemptionPreview is a dry run: it validates the request and reports the
// discount the points would buy. Nothing is written to the ledger.
type RedemptionPreview struct {
	Points         int     `json:"points"`
	DiscountAmount float64 `json:"discountAmount"`
	Balance        int     `json:"balance"`
	Remaining      int     `json:"remaining"`
}

func (s *Service) PreviewRedemption(userID, points int) (RedemptionPreview, error) {
	acc, err := s.repo.GetAccount(userID)
	if err != nil {
		return RedemptionPreview{}, err
	}
	if points < MinRedeemPoints {
		return RedemptionPreview{}, ErrBelowMinimumRedeem
	}
	if acc.Points < points {
		return RedemptionPreview{}, ErrInsufficientPoints
	}
	return RedemptionPreview{
		Points:         points,
		DiscountAmount: DiscountFromPoints(points),
		Balance:        acc.Points,
		Remaining:      acc.Points - points,
	}, nil
}
