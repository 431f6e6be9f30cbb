package order

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ordercore/shop-backend/internal/coupon"
)

func expectAddressSnapshot(mock sqlmock.Sqlmock, addressID, userID int) {
	rows := sqlmock.NewRows([]string{"full_name", "phone", "line1", "line2", "city", "state", "postal_code", "country"}).
		AddRow("Somsri K", "0812345678", "1 Main Rd", "", "Bangkok", "", "10110", "TH")
	mock.ExpectQuery("SELECT full_name").WithArgs(addressID, userID).WillReturnRows(rows)
}

func expectOrderInsert(mock sqlmock.Sqlmock, orderID int) {
	rows := sqlmock.NewRows([]string{"order_id", "created_at"}).AddRow(orderID, time.Now())
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(42, "Somsri K", "0812345678", "1 Main Rd", "", "Bangkok", "", "10110", "TH").
		WillReturnRows(rows)
}

func TestPlaceTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	expectAddressSnapshot(mock, 1, 42)
	expectOrderInsert(mock, 7)

	productRows := sqlmock.NewRows([]string{"product_name", "price", "stock_quantity", "discount_percent", "discount_starts_at", "discount_ends_at"}).
		AddRow("Dog food", 100.0, 5, nil, nil, nil)
	mock.ExpectQuery("FROM products").WithArgs(1).WillReturnRows(productRows)

	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(7, 1, "Dog food", 2, 100.0, 200.0).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(1))
	mock.ExpectExec("UPDATE products SET stock_quantity").
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	couponRows := sqlmock.NewRows([]string{"coupon_id", "code", "discount_percent", "min_order_amount", "starts_at", "ends_at", "usage_limit", "used_count", "active"}).
		AddRow(3, "SAVE10", 10.0, 50.0, nil, nil, nil, 0, true)
	mock.ExpectQuery("FROM coupons").WithArgs("SAVE10").WillReturnRows(couponRows)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(42, 3, "SAVE10").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("UPDATE coupons SET used_count").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("UPDATE orders").
		WithArgs(7, 180.0, 20.0, 3, "SAVE10").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// 5% of the discounted total, floored
	mock.ExpectExec("INSERT INTO loyalty_accounts").
		WithArgs(42, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loyalty_transactions").
		WithArgs(42, 7, "earned", 9, 180.0, "earned from order #7").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ord, err := repo.Place(PlaceRequest{
		UserID:     42,
		AddressID:  1,
		Lines:      []Line{{ProductID: 1, Quantity: 2}},
		CouponCode: "save10",
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if ord.TotalAmount != 180.0 || ord.DiscountAmount != 20.0 {
		t.Errorf("total/discount = %v/%v, want 180/20", ord.TotalAmount, ord.DiscountAmount)
	}
	if ord.CouponID == nil || *ord.CouponID != 3 {
		t.Error("coupon reference missing from the order")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaceRollsBackOnInsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	expectAddressSnapshot(mock, 1, 42)
	expectOrderInsert(mock, 7)

	productRows := sqlmock.NewRows([]string{"product_name", "price", "stock_quantity", "discount_percent", "discount_starts_at", "discount_ends_at"}).
		AddRow("Dog food", 100.0, 1, nil, nil, nil)
	mock.ExpectQuery("FROM products").WithArgs(1).WillReturnRows(productRows)
	mock.ExpectRollback()

	_, err = repo.Place(PlaceRequest{
		UserID:    42,
		AddressID: 1,
		Lines:     []Line{{ProductID: 1, Quantity: 2}},
	})
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaceRollsBackOnCouponReuse(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	expectAddressSnapshot(mock, 1, 42)
	expectOrderInsert(mock, 7)

	productRows := sqlmock.NewRows([]string{"product_name", "price", "stock_quantity", "discount_percent", "discount_starts_at", "discount_ends_at"}).
		AddRow("Dog food", 100.0, 5, nil, nil, nil)
	mock.ExpectQuery("FROM products").WithArgs(1).WillReturnRows(productRows)
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(7, 1, "Dog food", 1, 100.0, 100.0).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(1))
	mock.ExpectExec("UPDATE products SET stock_quantity").
		WithArgs(1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	couponRows := sqlmock.NewRows([]string{"coupon_id", "code", "discount_percent", "min_order_amount", "starts_at", "ends_at", "usage_limit", "used_count", "active"}).
		AddRow(3, "SAVE10", 10.0, 0.0, nil, nil, nil, 1, true)
	mock.ExpectQuery("FROM coupons").WithArgs("SAVE10").WillReturnRows(couponRows)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(42, 3, "SAVE10").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err = repo.Place(PlaceRequest{
		UserID:     42,
		AddressID:  1,
		Lines:      []Line{{ProductID: 1, Quantity: 1}},
		CouponCode: "SAVE10",
	})
	if !errors.Is(err, coupon.ErrAlreadyUsed) {
		t.Fatalf("err = %v, want coupon.ErrAlreadyUsed", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkDeliveredPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	cols := []string{"order_id", "user_id", "status", "total_amount", "discount_amount", "currency", "coupon_id", "coupon_code",
		"ship_full_name", "ship_phone", "ship_line1", "ship_line2", "ship_city", "ship_state", "ship_postal_code", "ship_country",
		"created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE orders SET status = 'DELIVERED'").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(7, 42, "DELIVERED", 180.0, 20.0, "THB", nil, nil,
				"Somsri K", "0812345678", "1 Main Rd", "", "Bangkok", "", "10110", "TH",
				time.Now(), time.Now()))
	// the notification lands in the same transaction as the status change
	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(42, 7, "ORDER_DELIVERED", "Order #7 delivered", "Your order #7 has been delivered.").
		WillReturnRows(sqlmock.NewRows([]string{"notification_id", "read", "created_at"}).AddRow(1, false, time.Now()))
	mock.ExpectCommit()

	ord, done, err := repo.MarkDelivered(7)
	if err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if !done || ord.Status != StatusDelivered {
		t.Errorf("done=%v status=%s, want the transition performed", done, ord.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkDeliveredPostgresReplayWritesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	cols := []string{"order_id", "user_id", "status", "total_amount", "discount_amount", "currency", "coupon_id", "coupon_code",
		"ship_full_name", "ship_phone", "ship_line1", "ship_line2", "ship_city", "ship_state", "ship_postal_code", "ship_country",
		"created_at", "updated_at"}

	mock.ExpectBegin()
	// the conditional UPDATE matches no row for an already-DELIVERED order
	mock.ExpectQuery("UPDATE orders SET status = 'DELIVERED'").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery("SELECT order_id, user_id, status").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(7, 42, "DELIVERED", 180.0, 20.0, "THB", nil, nil,
				"Somsri K", "0812345678", "1 Main Rd", "", "Bangkok", "", "10110", "TH",
				time.Now(), time.Now()))
	mock.ExpectRollback()

	ord, done, err := repo.MarkDelivered(7)
	if err != nil {
		t.Fatalf("mark delivered replay: %v", err)
	}
	if done {
		t.Error("replay reported done, want a no-op")
	}
	if ord.Status != StatusDelivered {
		t.Errorf("status = %s, want DELIVERED", ord.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	cols := []string{"order_id", "user_id", "status", "total_amount", "discount_amount", "currency", "coupon_id", "coupon_code",
		"ship_full_name", "ship_phone", "ship_line1", "ship_line2", "ship_city", "ship_state", "ship_postal_code", "ship_country",
		"created_at", "updated_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(7, 42, "PAID", 180.0, 20.0, "THB", nil, nil,
			"Somsri K", "0812345678", "1 Main Rd", "", "Bangkok", "", "10110", "TH",
			time.Now(), time.Now())
	mock.ExpectQuery("UPDATE orders SET status").WithArgs(7, "PAID").WillReturnRows(rows)

	ord, err := repo.UpdateStatus(7, "PAID")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if ord.Status != StatusPaid {
		t.Errorf("status = %s, want PAID", ord.Status)
	}

	mock.ExpectQuery("UPDATE orders SET status").WithArgs(8, "PAID").WillReturnError(sql.ErrNoRows)
	if _, err := repo.UpdateStatus(8, "PAID"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
