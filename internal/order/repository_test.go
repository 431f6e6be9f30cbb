package order

import (
	"errors"
	"sync"
	"testing"

	"github.com/ordercore/shop-backend/internal/coupon"
)

func seededRepo() *InMemoryRepository {
	repo := NewInMemoryRepository()
	repo.SeedAddress(42, 1, AddressSnapshot{
		FullName: "Somsri K", Line1: "1 Main Rd", City: "Bangkok", PostalCode: "10110", Country: "TH",
	})
	return repo
}

func TestPlaceTotals(t *testing.T) {
	repo := seededRepo()
	repo.Products[1] = &StockItem{Name: "Dog food", Price: 10.00, Stock: 3}
	repo.Products[2] = &StockItem{Name: "Cat tower", Price: 25.00, Stock: 1}

	ord, err := repo.Place(PlaceRequest{
		UserID:    42,
		AddressID: 1,
		Lines:     []Line{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if ord.TotalAmount != 55.00 {
		t.Errorf("total = %v, want 55.00", ord.TotalAmount)
	}
	if ord.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", ord.Status)
	}
	if repo.Products[1].Stock != 0 || repo.Products[2].Stock != 0 {
		t.Errorf("stocks = %d, %d, want 0, 0", repo.Products[1].Stock, repo.Products[2].Stock)
	}
	if len(ord.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(ord.Items))
	}
}

func TestPlaceValidation(t *testing.T) {
	repo := seededRepo()
	repo.Products[1] = &StockItem{Name: "Dog food", Price: 10, Stock: 5}

	cases := []struct {
		name  string
		req   PlaceRequest
		want  error
		stock int
	}{
		{"empty", PlaceRequest{UserID: 42, AddressID: 1}, ErrEmptyOrder, 5},
		{"zero qty", PlaceRequest{UserID: 42, AddressID: 1, Lines: []Line{{ProductID: 1, Quantity: 0}}}, ErrInvalidQuantity, 5},
		{"duplicate", PlaceRequest{UserID: 42, AddressID: 1, Lines: []Line{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 1}}}, ErrDuplicateProduct, 5},
		{"bad address", PlaceRequest{UserID: 42, AddressID: 99, Lines: []Line{{ProductID: 1, Quantity: 1}}}, ErrAddressNotFound, 5},
		{"bad product", PlaceRequest{UserID: 42, AddressID: 1, Lines: []Line{{ProductID: 9, Quantity: 1}}}, ErrProductNotFound, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := repo.Place(tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if repo.Products[1].Stock != tc.stock {
				t.Fatalf("stock mutated on failed placement: %d", repo.Products[1].Stock)
			}
		})
	}
}

func TestPlaceInsufficientStockRollsBack(t *testing.T) {
	repo := seededRepo()
	repo.Products[1] = &StockItem{Name: "Dog food", Price: 10, Stock: 5}
	repo.Products[2] = &StockItem{Name: "Cat tower", Price: 25, Stock: 0}

	_, err := repo.Place(PlaceRequest{
		UserID:    42,
		AddressID: 1,
		Lines:     []Line{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
	})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if stockErr.ProductName != "Cat tower" {
		t.Errorf("error names %q, want the out-of-stock product", stockErr.ProductName)
	}
	if repo.Products[1].Stock != 5 {
		t.Errorf("sibling line decremented stock on a failed order: %d", repo.Products[1].Stock)
	}
}

func TestNoOverselling(t *testing.T) {
	repo := seededRepo()
	repo.Products[1] = &StockItem{Name: "Dog food", Price: 10, Stock: 7}

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Place(PlaceRequest{
				UserID:    42,
				AddressID: 1,
				Lines:     []Line{{ProductID: 1, Quantity: 2}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 3 {
		t.Errorf("%d orders of qty 2 succeeded against stock 7, want 3", succeeded)
	}
	if repo.Products[1].Stock < 0 {
		t.Errorf("stock went negative: %d", repo.Products[1].Stock)
	}
	if repo.Products[1].Stock != 1 {
		t.Errorf("remaining stock = %d, want 1", repo.Products[1].Stock)
	}
}

func TestCouponSingleUseUnderConcurrency(t *testing.T) {
	repo := seededRepo()
	repo.Products[1] = &StockItem{Name: "Dog food", Price: 100, Stock: 100}
	repo.Coupons["SAVE10"] = &coupon.Coupon{
		CouponID: 1, Code: "SAVE10", DiscountPercent: 10, Active: true,
	}

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	withCoupon := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ord, err := repo.Place(PlaceRequest{
				UserID:     42,
				AddressID:  1,
				Lines:      []Line{{ProductID: 1, Quantity: 1}},
				CouponCode: "SAVE10",
			})
			if err == nil && ord.CouponID != nil {
				mu.Lock()
				withCoupon++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if withCoupon != 1 {
		t.Errorf("%d orders consumed the coupon, want exactly 1", withCoupon)
	}
	if repo.Coupons["SAVE10"].UsedCount != 1 {
		t.Errorf("used_count = %d, want 1", repo.Coupons["SAVE10"].UsedCount)
	}
}

func TestPlaceAppliesCouponDiscount(t *testing.T) {
	repo := seededRepo()
	repo.Products[1] = &StockItem{Name: "Dog food", Price: 100, Stock: 5}
	repo.Coupons["SAVE10"] = &coupon.Coupon{
		CouponID: 1, Code: "SAVE10", DiscountPercent: 10, MinOrderAmount: 50, Active: true,
	}

	ord, err := repo.Place(PlaceRequest{
		UserID:     42,
		AddressID:  1,
		Lines:      []Line{{ProductID: 1, Quantity: 1}},
		CouponCode: "save10",
	})
	if err != nil {
		t.Fatal(err)
	}
	if ord.DiscountAmount != 10.00 || ord.TotalAmount != 90.00 {
		t.Errorf("discount/total = %v/%v, want 10.00/90.00", ord.DiscountAmount, ord.TotalAmount)
	}
	if ord.CouponCode == nil || *ord.CouponCode != "SAVE10" {
		t.Error("coupon code not recorded on the order")
	}
}
