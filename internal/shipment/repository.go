package shipment

import (
	"sync"
	"time"
)

type Repository interface {
	Create(s Shipment) (Shipment, error)
	GetByID(shipmentID int) (Shipment, error)
	UpdateStatus(shipmentID int, status string) (Shipment, error)
	AppendEvent(shipmentID int, status, note string) (Event, error)
	ListEvents(shipmentID int) ([]Event, error)
}

type InMemoryRepository struct {
	mu          sync.Mutex
	shipments   []Shipment
	events      []Event
	nextID      int
	nextEventID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, nextEventID: 1}
}

func (r *InMemoryRepository) Create(s Shipment) (Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ShipmentID = r.nextID
	r.nextID++
	if s.Status == "" {
		s.Status = StatusCreated
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.shipments = append(r.shipments, s)
	return s, nil
}

func (r *InMemoryRepository) GetByID(shipmentID int) (Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shipments {
		if s.ShipmentID == shipmentID {
			return s, nil
		}
	}
	return Shipment{}, ErrNotFound
}

func (r *InMemoryRepository) UpdateStatus(shipmentID int, status string) (Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.shipments {
		if r.shipments[i].ShipmentID == shipmentID {
			r.shipments[i].Status = status
			r.shipments[i].UpdatedAt = time.Now()
			return r.shipments[i], nil
		}
	}
	return Shipment{}, ErrNotFound
}

func (r *InMemoryRepository) AppendEvent(shipmentID int, status, note string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := Event{
		EventID:    r.nextEventID,
		ShipmentID: shipmentID,
		Status:     status,
		Note:       note,
		CreatedAt:  time.Now(),
	}
	r.nextEventID++
	r.events = append(r.events, e)
	return e, nil
}

func (r *InMemoryRepository) ListEvents(shipmentID int) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0)
	for _, e := range r.events {
		if e.ShipmentID == shipmentID {
			out = append(out, e)
		}
	}
	return out, nil
}
