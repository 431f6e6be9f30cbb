package address

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns = `address_id, user_id, full_name, phone, line1, line2, city, state, postal_code, country, created_at, updated_at`

	listAddressesQuery = `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY address_id
	`
	getAddressQuery = `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1 AND address_id = $2
	`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, full_name, phone, line1, line2, city, state, postal_code, country)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING address_id, created_at, updated_at
	`
	updateAddressQuery = `
		UPDATE addresses
		SET full_name=$3, phone=$4, line1=$5, line2=$6, city=$7, state=$8, postal_code=$9, country=$10, updated_at=now()
		WHERE user_id=$1 AND address_id=$2
		RETURNING created_at, updated_at
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id=$1 AND address_id=$2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAddress(row interface{ Scan(...interface{}) error }) (Address, error) {
	var a Address
	err := row.Scan(&a.AddressID, &a.UserID, &a.FullName, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *PostgresRepository) List(userID int) ([]Address, error) {
	rows, err := r.db.Query(listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID, addressID int) (Address, error) {
	a, err := scanAddress(r.db.QueryRow(getAddressQuery, userID, addressID))
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(a Address) (Address, error) {
	err := r.db.QueryRow(insertAddressQuery,
		a.UserID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country).
		Scan(&a.AddressID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(a Address) (Address, error) {
	err := r.db.QueryRow(updateAddressQuery,
		a.UserID, a.AddressID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Delete(userID, addressID int) error {
	res, err := r.db.Exec(deleteAddressQuery, userID, addressID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
