package coupon

import (
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("coupon not found")

type Repository interface {
	GetByCode(code string) (Coupon, error)
	GetByID(id int) (Coupon, error)
	ListActive() ([]Coupon, error)
	Create(c Coupon) (Coupon, error)
	Update(c Coupon) (Coupon, error)
	// HasUserUsed reports whether the user already has an order referencing
	// the coupon, by id or by normalized code for legacy orders that stored
	// only the code.
	HasUserUsed(userID, couponID int, code string) (bool, error)
}

// InMemoryRepository for tests. Usage is seeded through MarkUsed.
type InMemoryRepository struct {
	mu      sync.RWMutex
	coupons map[int]Coupon
	usage   map[int]map[int]bool // userID -> couponID -> used
	nextID  int
}

func NewInMemoryRepository(seed []Coupon) *InMemoryRepository {
	r := &InMemoryRepository{coupons: map[int]Coupon{}, usage: map[int]map[int]bool{}, nextID: 1}
	for _, c := range seed {
		if c.CouponID >= r.nextID {
			r.nextID = c.CouponID + 1
		}
		r.coupons[c.CouponID] = c
	}
	return r
}

func (r *InMemoryRepository) GetByCode(code string) (Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code = NormalizeCode(code)
	for _, c := range r.coupons {
		if NormalizeCode(c.Code) == code {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) GetByID(id int) (Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.coupons[id]; ok {
		return c, nil
	}
	return Coupon{}, ErrNotFound
}

func (r *InMemoryRepository) ListActive() ([]Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(c Coupon) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code := NormalizeCode(c.Code)
	for _, existing := range r.coupons {
		if NormalizeCode(existing.Code) == code {
			return Coupon{}, ErrCodeExists
		}
	}
	c.CouponID = r.nextID
	c.CreatedAt = time.Now()
	r.nextID++
	r.coupons[c.CouponID] = c
	return c, nil
}

func (r *InMemoryRepository) Update(c Coupon) (Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coupons[c.CouponID]; !ok {
		return Coupon{}, ErrNotFound
	}
	code := NormalizeCode(c.Code)
	for id, existing := range r.coupons {
		if id != c.CouponID && NormalizeCode(existing.Code) == code {
			return Coupon{}, ErrCodeExists
		}
	}
	r.coupons[c.CouponID] = c
	return c, nil
}

func (r *InMemoryRepository) HasUserUsed(userID, couponID int, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usage[userID][couponID], nil
}

// MarkUsed records a consumption, mirroring what order creation does in the
// real store.
func (r *InMemoryRepository) MarkUsed(userID, couponID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usage[userID] == nil {
		r.usage[userID] = map[int]bool{}
	}
	r.usage[userID][couponID] = true
	c := r.coupons[couponID]
	c.UsedCount++
	r.coupons[couponID] = c
}
