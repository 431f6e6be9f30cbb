package order

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/ordercore/shop-backend/internal/coupon"
	"github.com/ordercore/shop-backend/internal/loyalty"
	"github.com/ordercore/shop-backend/internal/notification"
	"github.com/ordercore/shop-backend/internal/pricing"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `order_id, user_id, status, total_amount, discount_amount, currency, coupon_id, coupon_code,
		ship_full_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country,
		created_at, updated_at`

	snapshotAddressQuery = `
		SELECT full_name, phone, line1, line2, city, state, postal_code, country
		FROM addresses
		WHERE address_id = $1 AND user_id = $2
	`
	insertOrderQuery = `
		INSERT INTO orders (user_id, status, total_amount, currency,
			ship_full_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country)
		VALUES ($1, 'PENDING', 0, 'THB', $2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING order_id, created_at
	`
	// exclusive row lock held until commit/rollback; callers must lock in
	// ascending product_id order to avoid deadlocks
	lockProductQuery = `
		SELECT product_name, price, stock_quantity, discount_percent, discount_starts_at, discount_ends_at
		FROM products
		WHERE product_id = $1
		FOR UPDATE
	`
	insertOrderItemQuery = `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING order_item_id
	`
	decrementStockQuery = `
		UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE product_id = $1
	`
	lockCouponQuery = `
		SELECT coupon_id, code, discount_percent, min_order_amount, starts_at, ends_at, usage_limit, used_count, active
		FROM coupons
		WHERE upper(code) = $1
		FOR UPDATE
	`
	couponUsedInTxQuery = `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1 AND (coupon_id = $2 OR upper(coupon_code) = $3)
		)
	`
	consumeCouponQuery = `
		UPDATE coupons SET used_count = used_count + 1, updated_at = now()
		WHERE coupon_id = $1
	`
	finalizeOrderQuery = `
		UPDATE orders
		SET total_amount = $2, discount_amount = $3, coupon_id = $4, coupon_code = $5, updated_at = now()
		WHERE order_id = $1
	`

	getOrderQuery        = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	getOrderForUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1 AND user_id = $2`
	listOrdersQuery      = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_id DESC`
	listItemsQuery       = `
		SELECT order_item_id, order_id, product_id, product_name, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1::int[])
		ORDER BY order_item_id
	`
	updateOrderStatusQuery = `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE order_id = $1
		RETURNING ` + orderColumns
	// conditional write: a replay (or a racing second delivery) matches no
	// row and performs no side effects
	markDeliveredQuery = `
		UPDATE orders SET status = 'DELIVERED', updated_at = now()
		WHERE order_id = $1 AND status <> 'DELIVERED'
		RETURNING ` + orderColumns
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Place executes checkout in a single transaction. Product rows are locked
// FOR UPDATE in ascending product_id order; the coupon row lock serializes
// concurrent redemptions of the same code, so the reuse re-check below races
// with nobody.
func (r *PostgresRepository) Place(req PlaceRequest) (Order, error) {
	if err := ValidateLines(req.Lines); err != nil {
		return Order{}, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	ord, err := placeInTx(tx, req)
	if err != nil {
		return Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func placeInTx(tx *sql.Tx, req PlaceRequest) (Order, error) {
	now := time.Now()

	var snap AddressSnapshot
	err := tx.QueryRow(snapshotAddressQuery, req.AddressID, req.UserID).Scan(
		&snap.FullName, &snap.Phone, &snap.Line1, &snap.Line2,
		&snap.City, &snap.State, &snap.PostalCode, &snap.Country)
	if err == sql.ErrNoRows {
		return Order{}, ErrAddressNotFound
	}
	if err != nil {
		return Order{}, err
	}

	ord := Order{
		UserID:          req.UserID,
		Status:          StatusPending,
		Currency:        "THB",
		ShippingAddress: snap,
	}
	err = tx.QueryRow(insertOrderQuery, req.UserID,
		snap.FullName, snap.Phone, snap.Line1, snap.Line2,
		snap.City, snap.State, snap.PostalCode, snap.Country).
		Scan(&ord.OrderID, &ord.CreatedAt)
	if err != nil {
		return Order{}, err
	}

	lines := append([]Line(nil), req.Lines...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	total := 0.0
	for _, l := range lines {
		var (
			name             string
			price            float64
			stock            int
			discountPercent  sql.NullFloat64
			discountStartsAt sql.NullTime
			discountEndsAt   sql.NullTime
		)
		err := tx.QueryRow(lockProductQuery, l.ProductID).
			Scan(&name, &price, &stock, &discountPercent, &discountStartsAt, &discountEndsAt)
		if err == sql.ErrNoRows {
			return Order{}, ErrProductNotFound
		}
		if err != nil {
			return Order{}, err
		}
		if stock < l.Quantity {
			return Order{}, &InsufficientStockError{ProductName: name}
		}

		unit := price
		if discountPercent.Valid {
			var start, end *time.Time
			if discountStartsAt.Valid {
				start = &discountStartsAt.Time
			}
			if discountEndsAt.Valid {
				end = &discountEndsAt.Time
			}
			if pricing.InWindow(start, end, now) {
				unit = pricing.DiscountedPrice(price, discountPercent.Float64)
			}
		}

		lineTotal := pricing.Round2(unit * float64(l.Quantity))
		item := Item{
			OrderID:     ord.OrderID,
			ProductID:   l.ProductID,
			ProductName: name,
			Quantity:    l.Quantity,
			UnitPrice:   unit,
			TotalPrice:  lineTotal,
		}
		if err := tx.QueryRow(insertOrderItemQuery,
			ord.OrderID, l.ProductID, name, l.Quantity, unit, lineTotal).Scan(&item.OrderItemID); err != nil {
			return Order{}, err
		}
		if _, err := tx.Exec(decrementStockQuery, l.ProductID, l.Quantity); err != nil {
			return Order{}, err
		}
		ord.Items = append(ord.Items, item)
		total += lineTotal
	}
	total = pricing.Round2(total)

	discount := 0.0
	if req.CouponCode != "" {
		cpn, err := lockCoupon(tx, req.CouponCode)
		if err != nil {
			return Order{}, err
		}
		if err := cpn.CheckRedeemable(total, now); err != nil {
			return Order{}, err
		}

		var used bool
		if err := tx.QueryRow(couponUsedInTxQuery, req.UserID, cpn.CouponID, cpn.Code).Scan(&used); err != nil {
			return Order{}, err
		}
		if used {
			return Order{}, coupon.ErrAlreadyUsed
		}

		discount, total = cpn.DiscountFor(total)
		if _, err := tx.Exec(consumeCouponQuery, cpn.CouponID); err != nil {
			return Order{}, err
		}
		id := cpn.CouponID
		code := cpn.Code
		ord.CouponID = &id
		ord.CouponCode = &code
	}

	if _, err := tx.Exec(finalizeOrderQuery, ord.OrderID, total, discount, ord.CouponID, ord.CouponCode); err != nil {
		return Order{}, err
	}
	ord.TotalAmount = total
	ord.DiscountAmount = discount

	if _, err := loyalty.AccrueTx(tx, req.UserID, ord.OrderID, total); err != nil {
		return Order{}, fmt.Errorf("loyalty accrual: %w", err)
	}

	return ord, nil
}

func lockCoupon(tx *sql.Tx, code string) (coupon.Coupon, error) {
	var c coupon.Coupon
	err := tx.QueryRow(lockCouponQuery, coupon.NormalizeCode(code)).Scan(
		&c.CouponID, &c.Code, &c.DiscountPercent, &c.MinOrderAmount,
		&c.StartsAt, &c.EndsAt, &c.UsageLimit, &c.UsedCount, &c.Active)
	if err == sql.ErrNoRows {
		return coupon.Coupon{}, coupon.ErrInvalidCode
	}
	if err != nil {
		return coupon.Coupon{}, err
	}
	return c, nil
}

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.OrderID, &o.UserID, &o.Status, &o.TotalAmount, &o.DiscountAmount, &o.Currency,
		&o.CouponID, &o.CouponCode,
		&o.ShippingAddress.FullName, &o.ShippingAddress.Phone, &o.ShippingAddress.Line1, &o.ShippingAddress.Line2,
		&o.ShippingAddress.City, &o.ShippingAddress.State, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *PostgresRepository) GetByID(orderID int) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(getOrderQuery, orderID))
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return r.attachItems(o)
}

func (r *PostgresRepository) GetByIDForUser(orderID, userID int) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(getOrderForUserQuery, orderID, userID))
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return r.attachItems(o)
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(listOrdersQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int, 0)
	index := map[int]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[o.OrderID] = len(orders)
		ids = append(ids, o.OrderID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.Query(listItemsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.OrderItemID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, itemRows.Err()
}

func (r *PostgresRepository) UpdateStatus(orderID int, status string) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(updateOrderStatusQuery, orderID, status))
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// MarkDelivered performs the DELIVERED transition and the customer
// notification in one transaction. The conditional UPDATE decides whether
// this call delivered the order; losers of the race scan no row and commit
// nothing.
func (r *PostgresRepository) MarkDelivered(orderID int) (Order, bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, false, err
	}
	defer tx.Rollback()

	o, err := scanOrder(tx.QueryRow(markDeliveredQuery, orderID))
	if err == sql.ErrNoRows {
		// already delivered, or no such order
		o, err = scanOrder(tx.QueryRow(getOrderQuery, orderID))
		if err == sql.ErrNoRows {
			return Order{}, false, ErrNotFound
		}
		if err != nil {
			return Order{}, false, err
		}
		return o, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}

	if _, err := notification.CreateTx(tx, deliveredNotification(o)); err != nil {
		return Order{}, false, fmt.Errorf("delivery notification: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Order{}, false, err
	}
	return o, true, nil
}

func (r *PostgresRepository) attachItems(o Order) (Order, error) {
	rows, err := r.db.Query(listItemsQuery, pq.Array([]int{o.OrderID}))
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.OrderItemID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}
