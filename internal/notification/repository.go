package notification

import (
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	Create(n Notification) (Notification, error)
	ListByUser(userID int) ([]Notification, error)
	MarkRead(notificationID, userID int) (Notification, error)
}

type InMemoryRepository struct {
	mu     sync.Mutex
	rows   []Notification
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(n Notification) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.NotificationID = r.nextID
	r.nextID++
	n.CreatedAt = time.Now()
	r.rows = append(r.rows, n)
	return n, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, 0)
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkRead(notificationID, userID int) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].NotificationID == notificationID && r.rows[i].UserID == userID {
			r.rows[i].Read = true
			return r.rows[i], nil
		}
	}
	return Notification{}, ErrNotFound
}
