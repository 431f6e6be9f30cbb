package shipment

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ordercore/shop-backend/internal/order"
)

type Service struct {
	repo   Repository
	orders order.ServiceInterface
}

func NewService(repo Repository, orders order.ServiceInterface) *Service {
	return &Service{repo: repo, orders: orders}
}

// Create opens a shipment for an existing order and records the CREATED
// event. The tracking number is generated here; carriers that assign their
// own can overwrite it via a later integration.
func (s *Service) Create(orderID int, carrier string) (Shipment, error) {
	if _, err := s.orders.GetByID(orderID); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return Shipment{}, ErrOrderNotFound
		}
		return Shipment{}, err
	}
	sh, err := s.repo.Create(Shipment{
		OrderID:        orderID,
		Carrier:        carrier,
		TrackingNumber: uuid.NewString(),
		Status:         StatusCreated,
	})
	if err != nil {
		return Shipment{}, err
	}
	if _, err := s.repo.AppendEvent(sh.ShipmentID, StatusCreated, ""); err != nil {
		return Shipment{}, err
	}
	return sh, nil
}

func (s *Service) GetByID(shipmentID int) (Shipment, error) {
	return s.repo.GetByID(shipmentID)
}

func (s *Service) Events(shipmentID int) ([]Event, error) {
	if _, err := s.repo.GetByID(shipmentID); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(shipmentID)
}

// UpdateStatus persists the carrier status and appends it to the audit
// trail. A DELIVERED event also moves the order to DELIVERED; that step is
// idempotent, so replayed carrier webhooks cannot notify the customer twice.
func (s *Service) UpdateStatus(shipmentID int, status, note string) (Shipment, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return Shipment{}, ErrEmptyStatus
	}

	sh, err := s.repo.UpdateStatus(shipmentID, status)
	if err != nil {
		return Shipment{}, err
	}
	if _, err := s.repo.AppendEvent(sh.ShipmentID, status, note); err != nil {
		return Shipment{}, err
	}

	if status == StatusDelivered {
		if _, _, err := s.orders.MarkDelivered(sh.OrderID); err != nil {
			return Shipment{}, err
		}
	}
	return sh, nil
}
