package cart

import (
	"errors"
	"time"

	"github.com/ordercore/shop-backend/internal/pricing"
	"github.com/ordercore/shop-backend/internal/product"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

// View loads the user's active cart priced against the live product table.
func (s *Service) View(userID int) (View, error) {
	if userID <= 0 {
		return View{}, ErrNotFound
	}
	c, err := s.repo.GetOrCreateActive(userID)
	if err != nil {
		return View{}, err
	}
	items, subtotal, err := s.priceItems(c.CartID, time.Now())
	if err != nil {
		return View{}, err
	}
	return View{Cart: c, Items: items, Subtotal: subtotal}, nil
}

// AddItem merges qty into an existing line or starts a new one, snapshotting
// the product's current base price on first insert.
func (s *Service) AddItem(userID, productID, qty int) (View, error) {
	if qty < 1 {
		return View{}, ErrInvalidQuantity
	}
	p, err := s.products.GetByID(productID)
	if err != nil {
		return View{}, product.ErrNotFound
	}
	c, err := s.repo.GetOrCreateActive(userID)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.AddItem(c.CartID, p.ID, qty, p.Price); err != nil {
		return View{}, err
	}
	return s.View(userID)
}

// SetQuantity sets the line quantity; qty <= 0 removes the line.
func (s *Service) SetQuantity(userID, productID, qty int) (View, error) {
	c, err := s.repo.GetOrCreateActive(userID)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.SetItemQuantity(c.CartID, productID, qty); err != nil {
		return View{}, err
	}
	return s.View(userID)
}

func (s *Service) RemoveItem(userID, productID int) (View, error) {
	c, err := s.repo.GetOrCreateActive(userID)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.RemoveItem(c.CartID, productID); err != nil {
		return View{}, err
	}
	return s.View(userID)
}

func (s *Service) Clear(userID int) error {
	c, err := s.repo.GetOrCreateActive(userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(c.CartID)
}

// ActivePriced exposes the live-priced lines and subtotal of the user's
// active cart for coupon evaluation and checkout.
func (s *Service) ActivePriced(userID int, now time.Time) (Cart, []PricedItem, float64, error) {
	c, err := s.repo.GetOrCreateActive(userID)
	if err != nil {
		return Cart{}, nil, 0, err
	}
	items, subtotal, err := s.priceItems(c.CartID, now)
	if err != nil {
		return Cart{}, nil, 0, err
	}
	return c, items, subtotal, nil
}

// MarkCheckedOut transitions the cart after a successful order.
func (s *Service) MarkCheckedOut(cartID int) error {
	return s.repo.MarkCheckedOut(cartID)
}

// CheckoutActive retires the user's active cart once an order has been
// committed; the next add-to-cart lazily creates a fresh one. A buyer who
// ordered without ever touching a cart has nothing to retire.
func (s *Service) CheckoutActive(userID int) error {
	c, err := s.repo.GetActive(userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.MarkCheckedOut(c.CartID)
}

func (s *Service) priceItems(cartID int, now time.Time) ([]PricedItem, float64, error) {
	items, err := s.repo.ListItems(cartID)
	if err != nil {
		return nil, 0, err
	}

	out := make([]PricedItem, 0, len(items))
	subtotal := 0.0
	for _, it := range items {
		p, err := s.products.GetByID(it.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			// product removed from the catalog; drop the stale line so the
			// displayed cart and the subtotal coupons validate against agree
			if err := s.repo.RemoveItem(cartID, it.ProductID); err != nil && !errors.Is(err, ErrItemNotFound) {
				return nil, 0, err
			}
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		unit := p.EffectivePrice(now)
		line := pricing.Round2(unit * float64(it.Quantity))
		out = append(out, PricedItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   unit,
			AddedPrice:  it.UnitPrice,
			LineTotal:   line,
		})
		subtotal += line
	}
	return out, pricing.Round2(subtotal), nil
}
