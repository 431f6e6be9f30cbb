package shipment

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertShipmentQuery = `
		INSERT INTO shipments (order_id, carrier, tracking_number, status)
		VALUES ($1, $2, $3, $4)
		RETURNING shipment_id, created_at, updated_at
	`
	getShipmentQuery = `
		SELECT shipment_id, order_id, carrier, tracking_number, status, created_at, updated_at
		FROM shipments
		WHERE shipment_id = $1
	`
	updateShipmentStatusQuery = `
		UPDATE shipments SET status = $2, updated_at = now()
		WHERE shipment_id = $1
		RETURNING shipment_id, order_id, carrier, tracking_number, status, created_at, updated_at
	`
	insertEventQuery = `
		INSERT INTO shipment_events (shipment_id, status, note)
		VALUES ($1, $2, $3)
		RETURNING event_id, created_at
	`
	listEventsQuery = `
		SELECT event_id, shipment_id, status, note, created_at
		FROM shipment_events
		WHERE shipment_id = $1
		ORDER BY event_id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(s Shipment) (Shipment, error) {
	if s.Status == "" {
		s.Status = StatusCreated
	}
	err := r.db.QueryRow(insertShipmentQuery, s.OrderID, s.Carrier, s.TrackingNumber, s.Status).
		Scan(&s.ShipmentID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *PostgresRepository) GetByID(shipmentID int) (Shipment, error) {
	var s Shipment
	err := r.db.QueryRow(getShipmentQuery, shipmentID).
		Scan(&s.ShipmentID, &s.OrderID, &s.Carrier, &s.TrackingNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return Shipment{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepository) UpdateStatus(shipmentID int, status string) (Shipment, error) {
	var s Shipment
	err := r.db.QueryRow(updateShipmentStatusQuery, shipmentID, status).
		Scan(&s.ShipmentID, &s.OrderID, &s.Carrier, &s.TrackingNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return Shipment{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresRepository) AppendEvent(shipmentID int, status, note string) (Event, error) {
	e := Event{ShipmentID: shipmentID, Status: status, Note: note}
	err := r.db.QueryRow(insertEventQuery, shipmentID, status, note).
		Scan(&e.EventID, &e.CreatedAt)
	return e, err
}

func (r *PostgresRepository) ListEvents(shipmentID int) ([]Event, error) {
	rows, err := r.db.Query(listEventsQuery, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.EventID, &e.ShipmentID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
