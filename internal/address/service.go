package address

import "errors"

type Service struct {
	repo Repository
}

// ServiceInterface is the view other packages (checkout) depend on.
type ServiceInterface interface {
	GetByID(userID, addressID int) (Address, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.List(userID)
}

func (s *Service) GetByID(userID, addressID int) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.GetByID(userID, addressID)
}

func (s *Service) Create(a Address) (Address, error) {
	if a.UserID <= 0 {
		return Address{}, ErrNotFound
	}
	if a.FullName == "" || a.Line1 == "" {
		return Address{}, errors.New("fullName and line1 are required")
	}
	return s.repo.Create(a)
}

func (s *Service) Update(a Address) (Address, error) {
	if a.UserID <= 0 || a.AddressID <= 0 {
		return Address{}, ErrNotFound
	}
	if a.FullName == "" || a.Line1 == "" {
		return Address{}, errors.New("fullName and line1 are required")
	}
	return s.repo.Update(a)
}

func (s *Service) Delete(userID, addressID int) error {
	if userID <= 0 || addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(userID, addressID)
}
