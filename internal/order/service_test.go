package order

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ordercore/shop-backend/internal/notification"
)

type recordingListener struct {
	calls []int
}

func (l *recordingListener) OrderDelivered(ord Order) error {
	l.calls = append(l.calls, ord.OrderID)
	return nil
}

type fakeCartCheckout struct {
	checkedOut []int
}

func (f *fakeCartCheckout) CheckoutActive(userID int) error {
	f.checkedOut = append(f.checkedOut, userID)
	return nil
}

func placedOrder(t *testing.T, svc *Service, repo *InMemoryRepository) Order {
	t.Helper()
	repo.SeedAddress(42, 1, AddressSnapshot{FullName: "Somsri K", Line1: "1 Main Rd"})
	repo.Products[1] = &StockItem{Name: "Dog food", Price: 10, Stock: 10}
	ord, err := svc.Place(PlaceRequest{
		UserID:    42,
		AddressID: 1,
		Lines:     []Line{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ord
}

func TestPlaceRetiresCart(t *testing.T) {
	repo := NewInMemoryRepository()
	carts := &fakeCartCheckout{}
	svc := NewService(repo, carts)

	placedOrder(t, svc, repo)

	if len(carts.checkedOut) != 1 || carts.checkedOut[0] != 42 {
		t.Errorf("cart checkout calls = %v, want [42]", carts.checkedOut)
	}
}

func TestStatusTransitionGuard(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)
	ord := placedOrder(t, svc, repo)

	// skipping PAID is rejected
	if _, err := svc.UpdateStatus(ord.OrderID, StatusShipped); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("PENDING -> SHIPPED: err = %v, want ErrBadTransition", err)
	}
	// going backwards is rejected
	if _, err := svc.UpdateStatus(ord.OrderID, StatusPending); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("PENDING -> PENDING: err = %v, want ErrBadTransition", err)
	}
	if _, err := svc.UpdateStatus(ord.OrderID, "LOST"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("unknown status: err = %v, want ErrUnknownStatus", err)
	}

	for _, status := range []string{StatusPaid, StatusShipped, StatusDelivered} {
		if _, err := svc.UpdateStatus(ord.OrderID, status); err != nil {
			t.Fatalf("advance to %s: %v", status, err)
		}
	}

	// DELIVERED is terminal
	if _, err := svc.UpdateStatus(ord.OrderID, StatusCancelled); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("DELIVERED -> CANCELLED: err = %v, want ErrBadTransition", err)
	}
}

func TestCancelFromAnyNonTerminal(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)

	for _, from := range []string{StatusPending, StatusPaid, StatusShipped} {
		ord := placedOrder(t, svc, repo)
		if from != StatusPending {
			if _, err := svc.UpdateStatus(ord.OrderID, StatusPaid); err != nil {
				t.Fatal(err)
			}
		}
		if from == StatusShipped {
			if _, err := svc.UpdateStatus(ord.OrderID, StatusShipped); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := svc.UpdateStatus(ord.OrderID, StatusCancelled); err != nil {
			t.Fatalf("%s -> CANCELLED: %v", from, err)
		}
	}
}

func TestMarkDeliveredIdempotent(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)
	listener := &recordingListener{}
	svc.OnDelivered(listener)

	ord := placedOrder(t, svc, repo)

	if _, done, err := svc.MarkDelivered(ord.OrderID); err != nil || !done {
		t.Fatalf("first delivery: done=%v err=%v", done, err)
	}
	if _, done, err := svc.MarkDelivered(ord.OrderID); err != nil || done {
		t.Fatalf("second delivery: done=%v err=%v, want no-op", done, err)
	}

	if len(listener.calls) != 1 {
		t.Errorf("delivered hook fired %d times, want exactly once", len(listener.calls))
	}
}

func TestMarkDeliveredConcurrentReplays(t *testing.T) {
	repo := NewInMemoryRepository()
	notes := notification.NewInMemoryRepository()
	repo.Notifications = notes
	svc := NewService(repo, nil)
	listener := &recordingListener{}
	svc.OnDelivered(listener)

	ord := placedOrder(t, svc, repo)

	var wg sync.WaitGroup
	var delivered int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, done, err := svc.MarkDelivered(ord.OrderID)
			if err != nil {
				t.Error(err)
			}
			if done {
				atomic.AddInt32(&delivered, 1)
			}
		}()
	}
	wg.Wait()

	if delivered != 1 {
		t.Errorf("%d replays reported done, want exactly 1", delivered)
	}
	if len(listener.calls) != 1 {
		t.Errorf("delivered hook fired %d times, want exactly once", len(listener.calls))
	}
	notesForUser, err := notes.ListByUser(42)
	if err != nil {
		t.Fatal(err)
	}
	if len(notesForUser) != 1 {
		t.Errorf("%d notifications created, want exactly 1", len(notesForUser))
	}
}

func TestAdminDeliveredFiresHook(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)
	listener := &recordingListener{}
	svc.OnDelivered(listener)

	ord := placedOrder(t, svc, repo)
	for _, status := range []string{StatusPaid, StatusShipped, StatusDelivered} {
		if _, err := svc.UpdateStatus(ord.OrderID, status); err != nil {
			t.Fatal(err)
		}
	}

	if len(listener.calls) != 1 {
		t.Errorf("delivered hook fired %d times, want exactly once", len(listener.calls))
	}
}
