package cart

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	getActiveCartQuery = `
		SELECT cart_id, user_id, status, created_at, updated_at
		FROM carts
		WHERE user_id = $1 AND status = 'ACTIVE'
	`
	// relies on the partial unique index carts_one_active_per_user; a
	// concurrent double-create loses the race and falls back to the select.
	insertCartQuery = `
		INSERT INTO carts (user_id, status)
		VALUES ($1, 'ACTIVE')
		ON CONFLICT (user_id) WHERE status = 'ACTIVE' DO NOTHING
		RETURNING cart_id, user_id, status, created_at, updated_at
	`
	listItemsQuery = `
		SELECT cart_item_id, cart_id, product_id, quantity, unit_price, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY cart_item_id
	`
	upsertItemQuery = `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
	`
	setItemQuantityQuery = `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE cart_id = $1 AND product_id = $2
	`
	removeItemQuery   = `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`
	clearItemsQuery   = `DELETE FROM cart_items WHERE cart_id = $1`
	checkoutCartQuery = `UPDATE carts SET status = 'CHECKED_OUT', updated_at = now() WHERE cart_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetActive(userID int) (Cart, error) {
	var c Cart
	err := r.db.QueryRow(getActiveCartQuery, userID).
		Scan(&c.CartID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) GetOrCreateActive(userID int) (Cart, error) {
	var c Cart
	err := r.db.QueryRow(getActiveCartQuery, userID).
		Scan(&c.CartID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return Cart{}, err
	}

	err = r.db.QueryRow(insertCartQuery, userID).
		Scan(&c.CartID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		// lost the insert race; the active cart exists now
		err = r.db.QueryRow(getActiveCartQuery, userID).
			Scan(&c.CartID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) ListItems(cartID int) ([]Item, error) {
	rows, err := r.db.Query(listItemsQuery, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.CartItemID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) AddItem(cartID, productID, qty int, unitPrice float64) error {
	_, err := r.db.Exec(upsertItemQuery, cartID, productID, qty, unitPrice)
	return err
}

func (r *PostgresRepository) SetItemQuantity(cartID, productID, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(cartID, productID)
	}
	res, err := r.db.Exec(setItemQuantityQuery, cartID, productID, qty)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) RemoveItem(cartID, productID int) error {
	res, err := r.db.Exec(removeItemQuery, cartID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(cartID int) error {
	_, err := r.db.Exec(clearItemsQuery, cartID)
	return err
}

func (r *PostgresRepository) MarkCheckedOut(cartID int) error {
	res, err := r.db.Exec(checkoutCartQuery, cartID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
