package cart

import (
	"errors"
	"sync"
)

var (
	ErrNotFound     = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")
)

type Repository interface {
	// GetActive returns the user's ACTIVE cart, ErrNotFound when there is none.
	GetActive(userID int) (Cart, error)
	// GetOrCreateActive returns the user's single ACTIVE cart, creating it
	// when absent.
	GetOrCreateActive(userID int) (Cart, error)
	ListItems(cartID int) ([]Item, error)
	// AddItem merges into an existing line (incrementing quantity) or inserts
	// a new one with the given unit price snapshot.
	AddItem(cartID, productID, qty int, unitPrice float64) error
	// SetItemQuantity sets the line quantity; qty <= 0 deletes the line.
	SetItemQuantity(cartID, productID, qty int) error
	RemoveItem(cartID, productID int) error
	Clear(cartID int) error
	MarkCheckedOut(cartID int) error
}

// InMemoryRepository for tests.
type InMemoryRepository struct {
	mu         sync.Mutex
	carts      map[int]*Cart // keyed by userID, ACTIVE cart only
	items      map[int][]Item
	nextCartID int
	nextItemID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		carts:      map[int]*Cart{},
		items:      map[int][]Item{},
		nextCartID: 1,
		nextItemID: 1,
	}
}

func (r *InMemoryRepository) GetActive(userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[userID]; ok {
		return *c, nil
	}
	return Cart{}, ErrNotFound
}

func (r *InMemoryRepository) GetOrCreateActive(userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[userID]; ok {
		return *c, nil
	}
	c := &Cart{CartID: r.nextCartID, UserID: userID, Status: StatusActive}
	r.nextCartID++
	r.carts[userID] = c
	return *c, nil
}

func (r *InMemoryRepository) ListItems(cartID int) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Item, len(r.items[cartID]))
	copy(out, r.items[cartID])
	return out, nil
}

func (r *InMemoryRepository) AddItem(cartID, productID, qty int, unitPrice float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items[cartID] {
		if it.ProductID == productID {
			r.items[cartID][i].Quantity += qty
			return nil
		}
	}
	r.items[cartID] = append(r.items[cartID], Item{
		CartItemID: r.nextItemID,
		CartID:     cartID,
		ProductID:  productID,
		Quantity:   qty,
		UnitPrice:  unitPrice,
	})
	r.nextItemID++
	return nil
}

func (r *InMemoryRepository) SetItemQuantity(cartID, productID, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(cartID, productID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items[cartID] {
		if it.ProductID == productID {
			r.items[cartID][i].Quantity = qty
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) RemoveItem(cartID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[cartID]
	for i, it := range items {
		if it.ProductID == productID {
			r.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) Clear(cartID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cartID] = nil
	return nil
}

func (r *InMemoryRepository) MarkCheckedOut(cartID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, c := range r.carts {
		if c.CartID == cartID {
			c.Status = StatusCheckedOut
			delete(r.carts, uid)
			return nil
		}
	}
	return ErrNotFound
}
