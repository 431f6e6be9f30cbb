package coupon

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	couponColumns = `coupon_id, code, discount_percent, min_order_amount, starts_at, ends_at, usage_limit, used_count, active, created_at, updated_at`

	getCouponByCodeQuery = `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE upper(code) = $1
	`
	getCouponByIDQuery = `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE coupon_id = $1
	`
	listActiveCouponsQuery = `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE active
		ORDER BY coupon_id
	`
	insertCouponQuery = `
		INSERT INTO coupons (code, discount_percent, min_order_amount, starts_at, ends_at, usage_limit, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING coupon_id, used_count, created_at, updated_at
	`
	updateCouponQuery = `
		UPDATE coupons
		SET code = $2,
			discount_percent = $3,
			min_order_amount = $4,
			starts_at = $5,
			ends_at = $6,
			usage_limit = $7,
			active = $8,
			updated_at = now()
		WHERE coupon_id = $1
		RETURNING used_count, created_at, updated_at
	`
	// a coupon counts as used by id, or by stored code for legacy orders
	// created before coupon_id was recorded
	hasUserUsedQuery = `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1
			  AND (coupon_id = $2 OR upper(coupon_code) = $3)
		)
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanCoupon(row interface{ Scan(...interface{}) error }) (Coupon, error) {
	var c Coupon
	err := row.Scan(&c.CouponID, &c.Code, &c.DiscountPercent, &c.MinOrderAmount,
		&c.StartsAt, &c.EndsAt, &c.UsageLimit, &c.UsedCount, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PostgresRepository) GetByCode(code string) (Coupon, error) {
	c, err := scanCoupon(r.db.QueryRow(getCouponByCodeQuery, NormalizeCode(code)))
	if err == sql.ErrNoRows {
		return Coupon{}, ErrNotFound
	}
	if err != nil {
		return Coupon{}, err
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(id int) (Coupon, error) {
	c, err := scanCoupon(r.db.QueryRow(getCouponByIDQuery, id))
	if err == sql.ErrNoRows {
		return Coupon{}, ErrNotFound
	}
	if err != nil {
		return Coupon{}, err
	}
	return c, nil
}

func (r *PostgresRepository) ListActive() ([]Coupon, error) {
	rows, err := r.db.Query(listActiveCouponsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(c Coupon) (Coupon, error) {
	c.Code = NormalizeCode(c.Code)
	err := r.db.QueryRow(insertCouponQuery,
		c.Code, c.DiscountPercent, c.MinOrderAmount, c.StartsAt, c.EndsAt, c.UsageLimit, c.Active).
		Scan(&c.CouponID, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Coupon{}, ErrCodeExists
		}
		return Coupon{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Update(c Coupon) (Coupon, error) {
	c.Code = NormalizeCode(c.Code)
	err := r.db.QueryRow(updateCouponQuery,
		c.CouponID, c.Code, c.DiscountPercent, c.MinOrderAmount, c.StartsAt, c.EndsAt, c.UsageLimit, c.Active).
		Scan(&c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return Coupon{}, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return Coupon{}, ErrCodeExists
		}
		return Coupon{}, err
	}
	return c, nil
}

func (r *PostgresRepository) HasUserUsed(userID, couponID int, code string) (bool, error) {
	var used bool
	err := r.db.QueryRow(hasUserUsedQuery, userID, couponID, NormalizeCode(code)).Scan(&used)
	if err != nil {
		return false, err
	}
	return used, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
