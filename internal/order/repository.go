package order

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ordercore/shop-backend/internal/coupon"
	"github.com/ordercore/shop-backend/internal/notification"
	"github.com/ordercore/shop-backend/internal/pricing"
)

type Repository interface {
	// Place runs the whole checkout atomically: stock is verified and
	// decremented, items priced from the live products, the coupon consumed
	// at most once per user, loyalty accrued. Any failure leaves no writes.
	Place(req PlaceRequest) (Order, error)
	GetByID(orderID int) (Order, error)
	GetByIDForUser(orderID, userID int) (Order, error)
	ListByUser(userID int) ([]Order, error)
	UpdateStatus(orderID int, status string) (Order, error)
	// MarkDelivered transitions the order to DELIVERED unless it already is,
	// writing the customer notification atomically with the status change.
	// done reports whether this call performed the transition; concurrent
	// replays see done=false.
	MarkDelivered(orderID int) (Order, bool, error)
}

func deliveredNotification(o Order) notification.Notification {
	orderID := o.OrderID
	return notification.Notification{
		UserID:  o.UserID,
		OrderID: &orderID,
		Type:    notification.TypeOrderDelivered,
		Title:   fmt.Sprintf("Order #%d delivered", orderID),
		Message: fmt.Sprintf("Your order #%d has been delivered.", orderID),
	}
}

// StockItem seeds the in-memory product table.
type StockItem struct {
	Name  string
	Price float64
	Stock int
}

// InMemoryRepository keeps checkout semantics (all-or-nothing, no
// overselling, single coupon use) behind one mutex. Used by handler tests
// and the concurrency property tests.
type InMemoryRepository struct {
	mu        sync.Mutex
	Products  map[int]*StockItem
	Addresses map[int]map[int]AddressSnapshot // userID -> addressID
	Coupons   map[string]*coupon.Coupon       // keyed by normalized code
	couponUse map[int]map[int]bool            // userID -> couponID
	orders    []Order
	nextID    int
	// Notifications, when set, receives the delivery notification the same
	// way the real store writes it inside the delivered transaction.
	Notifications notification.Repository
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		Products:  map[int]*StockItem{},
		Addresses: map[int]map[int]AddressSnapshot{},
		Coupons:   map[string]*coupon.Coupon{},
		couponUse: map[int]map[int]bool{},
		nextID:    1,
	}
}

func (r *InMemoryRepository) SeedAddress(userID, addressID int, snap AddressSnapshot) {
	if r.Addresses[userID] == nil {
		r.Addresses[userID] = map[int]AddressSnapshot{}
	}
	r.Addresses[userID][addressID] = snap
}

func (r *InMemoryRepository) Place(req PlaceRequest) (Order, error) {
	if err := ValidateLines(req.Lines); err != nil {
		return Order{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.Addresses[req.UserID][req.AddressID]
	if !ok {
		return Order{}, ErrAddressNotFound
	}

	// deterministic order, mirroring the lock ordering in the real store
	lines := append([]Line(nil), req.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	// verify everything before mutating anything
	for _, l := range lines {
		p, ok := r.Products[l.ProductID]
		if !ok {
			return Order{}, ErrProductNotFound
		}
		if p.Stock < l.Quantity {
			return Order{}, &InsufficientStockError{ProductName: p.Name}
		}
	}

	var cpn *coupon.Coupon
	total := 0.0
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		p := r.Products[l.ProductID]
		lineTotal := pricing.Round2(p.Price * float64(l.Quantity))
		items = append(items, Item{
			ProductID:   l.ProductID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
			TotalPrice:  lineTotal,
		})
		total += lineTotal
	}
	total = pricing.Round2(total)

	discount := 0.0
	if req.CouponCode != "" {
		code := coupon.NormalizeCode(req.CouponCode)
		c, ok := r.Coupons[code]
		if !ok {
			return Order{}, coupon.ErrInvalidCode
		}
		if err := c.CheckRedeemable(total, time.Now()); err != nil {
			return Order{}, err
		}
		if r.couponUse[req.UserID][c.CouponID] {
			return Order{}, coupon.ErrAlreadyUsed
		}
		discount, total = c.DiscountFor(total)
		cpn = c
	}

	// point of no return: mutate stock, coupon usage, append the order
	for _, l := range lines {
		r.Products[l.ProductID].Stock -= l.Quantity
	}
	ord := Order{
		OrderID:         r.nextID,
		UserID:          req.UserID,
		Status:          StatusPending,
		TotalAmount:     total,
		DiscountAmount:  discount,
		Currency:        "THB",
		ShippingAddress: snap,
		CreatedAt:       time.Now(),
	}
	r.nextID++
	for i := range items {
		items[i].OrderItemID = i + 1
		items[i].OrderID = ord.OrderID
	}
	ord.Items = items
	if cpn != nil {
		id := cpn.CouponID
		code := cpn.Code
		ord.CouponID = &id
		ord.CouponCode = &code
		cpn.UsedCount++
		if r.couponUse[req.UserID] == nil {
			r.couponUse[req.UserID] = map[int]bool{}
		}
		r.couponUse[req.UserID][cpn.CouponID] = true
	}
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) GetByID(orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) GetByIDForUser(orderID, userID int) (Order, error) {
	o, err := r.GetByID(orderID)
	if err != nil || o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(orderID int, status string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].OrderID == orderID {
			r.orders[i].Status = status
			r.orders[i].UpdatedAt = time.Now()
			return r.orders[i], nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) MarkDelivered(orderID int) (Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].OrderID != orderID {
			continue
		}
		if r.orders[i].Status == StatusDelivered {
			return r.orders[i], false, nil
		}
		if r.Notifications != nil {
			if _, err := r.Notifications.Create(deliveredNotification(r.orders[i])); err != nil {
				return Order{}, false, err
			}
		}
		r.orders[i].Status = StatusDelivered
		r.orders[i].UpdatedAt = time.Now()
		return r.orders[i], true, nil
	}
	return Order{}, false, ErrNotFound
}
