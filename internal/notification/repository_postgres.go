package notification

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertNotificationQuery = `
		INSERT INTO notifications (user_id, order_id, type, title, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING notification_id, read, created_at
	`
	listNotificationsQuery = `
		SELECT notification_id, user_id, order_id, type, title, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY notification_id DESC
	`
	markReadQuery = `
		UPDATE notifications SET read = TRUE
		WHERE notification_id = $1 AND user_id = $2
		RETURNING notification_id, user_id, order_id, type, title, message, read, created_at
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(n Notification) (Notification, error) {
	err := r.db.QueryRow(insertNotificationQuery, n.UserID, n.OrderID, n.Type, n.Title, n.Message).
		Scan(&n.NotificationID, &n.Read, &n.CreatedAt)
	return n, err
}

// CreateTx inserts a notification on the caller's transaction, for writers
// that must record it atomically with their own state change.
func CreateTx(tx *sql.Tx, n Notification) (Notification, error) {
	err := tx.QueryRow(insertNotificationQuery, n.UserID, n.OrderID, n.Type, n.Title, n.Message).
		Scan(&n.NotificationID, &n.Read, &n.CreatedAt)
	return n, err
}

func (r *PostgresRepository) ListByUser(userID int) ([]Notification, error) {
	rows, err := r.db.Query(listNotificationsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.NotificationID, &n.UserID, &n.OrderID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkRead(notificationID, userID int) (Notification, error) {
	var n Notification
	err := r.db.QueryRow(markReadQuery, notificationID, userID).
		Scan(&n.NotificationID, &n.UserID, &n.OrderID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return Notification{}, ErrNotFound
	}
	return n, err
}
