package product

import "errors"

type Service struct {
	repo Repository
}

// ServiceInterface is the read surface other packages depend on.
type ServiceInterface interface {
	GetByID(id int) (Product, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() ([]Product, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

func validateProduct(p Product) error {
	if p.Name == "" {
		return errors.New("productName is required")
	}
	if p.Price < 0 {
		return errors.New("price must be non-negative")
	}
	if p.StockQuantity < 0 {
		return errors.New("stockQuantity must be non-negative")
	}
	if p.DiscountPercent != nil && (*p.DiscountPercent < 0 || *p.DiscountPercent > 100) {
		return errors.New("discountPercent must be between 0 and 100")
	}
	if p.DiscountStartsAt != nil && p.DiscountEndsAt != nil && p.DiscountEndsAt.Before(*p.DiscountStartsAt) {
		return errors.New("discountEndsAt must not be before discountStartsAt")
	}
	return nil
}
