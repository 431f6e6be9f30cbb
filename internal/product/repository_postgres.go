package product

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `product_id, product_name, product_desc, price, stock_quantity, discount_percent, discount_starts_at, discount_ends_at, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY product_id
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE product_id = $1
	`
	insertProductQuery = `
		INSERT INTO products (product_name, product_desc, price, stock_quantity, discount_percent, discount_starts_at, discount_ends_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING product_id, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET product_name = $1,
			product_desc = $2,
			price = $3,
			stock_quantity = $4,
			discount_percent = $5,
			discount_starts_at = $6,
			discount_ends_at = $7,
			updated_at = now()
		WHERE product_id = $8
		RETURNING created_at, updated_at
	`
	deleteProductQuery = `DELETE FROM products WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProduct(row interface{ Scan(...interface{}) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.DiscountPercent, &p.DiscountStartsAt, &p.DiscountEndsAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) List() ([]Product, error) {
	rows, err := r.db.Query(listProductsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	err := r.db.QueryRow(insertProductQuery,
		p.Name, p.Description, p.Price, p.StockQuantity, p.DiscountPercent, p.DiscountStartsAt, p.DiscountEndsAt).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	p.ID = id
	err := r.db.QueryRow(updateProductQuery,
		p.Name, p.Description, p.Price, p.StockQuantity, p.DiscountPercent, p.DiscountStartsAt, p.DiscountEndsAt, id).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
