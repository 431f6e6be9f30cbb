package loyalty

import (
	"database/sql"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getAccountQuery = `
		SELECT user_id, points, total_earned, total_redeemed, updated_at
		FROM loyalty_accounts
		WHERE user_id = $1
	`
	historyQuery = `
		SELECT transaction_id, user_id, order_id, type, points, order_amount, description, created_at
		FROM loyalty_transactions
		WHERE user_id = $1
		ORDER BY transaction_id DESC
		LIMIT $2
	`

	upsertAccountEarnQuery = `
		INSERT INTO loyalty_accounts (user_id, points, total_earned)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET points = loyalty_accounts.points + EXCLUDED.points,
			total_earned = loyalty_accounts.total_earned + EXCLUDED.points,
			updated_at = now()
	`
	insertTransactionQuery = `
		INSERT INTO loyalty_transactions (user_id, order_id, type, points, order_amount, description)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetAccount(userID int) (Account, error) {
	var acc Account
	err := r.db.QueryRow(getAccountQuery, userID).
		Scan(&acc.UserID, &acc.Points, &acc.TotalEarned, &acc.TotalRedeemed, &acc.UpdatedAt)
	if err == sql.ErrNoRows {
		return Account{UserID: userID}, nil
	}
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

func (r *PostgresRepository) History(userID, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(historyQuery, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.TransactionID, &t.UserID, &t.OrderID, &t.Type, &t.Points, &t.OrderAmount, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AccrueTx records the earned points for an order inside the caller's
// transaction, so a checkout rollback also rolls the accrual back. Returns
// the points granted.
func AccrueTx(tx *sql.Tx, userID, orderID int, amount float64) (int, error) {
	points := PointsFromAmount(amount)
	if points <= 0 {
		return 0, nil
	}
	if _, err := tx.Exec(upsertAccountEarnQuery, userID, points); err != nil {
		return 0, fmt.Errorf("loyalty account update: %w", err)
	}
	desc := fmt.Sprintf("earned from order #%d", orderID)
	if _, err := tx.Exec(insertTransactionQuery, userID, orderID, TypeEarned, points, amount, desc); err != nil {
		return 0, fmt.Errorf("loyalty transaction insert: %w", err)
	}
	return points, nil
}
