package order

import "log"

// CartCheckout retires the buyer's active cart once their order commits.
type CartCheckout interface {
	CheckoutActive(userID int) error
}

// DeliveredListener runs the best-effort delivery side effects (the
// confirmation email). The customer notification is not its concern: the
// repository writes that atomically with the status change. The listener
// fires only when MarkDelivered reports a completed transition, so it runs
// at most once per order.
type DeliveredListener interface {
	OrderDelivered(ord Order) error
}

// ServiceInterface is the surface other packages depend on.
type ServiceInterface interface {
	GetByID(orderID int) (Order, error)
	UpdateStatus(orderID int, status string) (Order, error)
	MarkDelivered(orderID int) (Order, bool, error)
}

type Service struct {
	repo      Repository
	carts     CartCheckout
	delivered DeliveredListener
}

func NewService(repo Repository, carts CartCheckout) *Service {
	return &Service{repo: repo, carts: carts}
}

// OnDelivered registers the delivery side-effect hook.
func (s *Service) OnDelivered(l DeliveredListener) {
	s.delivered = l
}

// Place runs checkout. The cart transition happens after the order commits;
// a failure there does not undo the order.
func (s *Service) Place(req PlaceRequest) (Order, error) {
	if err := ValidateLines(req.Lines); err != nil {
		return Order{}, err
	}
	ord, err := s.repo.Place(req)
	if err != nil {
		return Order{}, err
	}
	if s.carts != nil {
		if err := s.carts.CheckoutActive(req.UserID); err != nil {
			log.Printf("order %d: retire cart for user %d: %v", ord.OrderID, req.UserID, err)
		}
	}
	return ord, nil
}

func (s *Service) GetByID(orderID int) (Order, error) {
	return s.repo.GetByID(orderID)
}

func (s *Service) GetForUser(orderID, userID int) (Order, error) {
	return s.repo.GetByIDForUser(orderID, userID)
}

func (s *Service) ListForUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

// UpdateStatus applies an admin-issued status change, holding the order to
// the forward-only lifecycle: PENDING -> PAID -> SHIPPED -> DELIVERED, with
// CANCELLED reachable from any non-terminal state.
func (s *Service) UpdateStatus(orderID int, status string) (Order, error) {
	if !IsValidStatus(status) {
		return Order{}, ErrUnknownStatus
	}
	cur, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(cur.Status, status) {
		return Order{}, ErrBadTransition
	}
	if status == StatusDelivered {
		ord, done, err := s.repo.MarkDelivered(orderID)
		if err != nil {
			return Order{}, err
		}
		if done {
			s.notifyDelivered(ord)
		}
		return ord, nil
	}
	return s.repo.UpdateStatus(orderID, status)
}

// MarkDelivered is the shipment-driven transition. The repository performs
// it as a single conditional write, so of any number of concurrent carrier
// DELIVERED replays exactly one gets done=true; only that one produces the
// notification and the email.
func (s *Service) MarkDelivered(orderID int) (Order, bool, error) {
	ord, done, err := s.repo.MarkDelivered(orderID)
	if err != nil {
		return Order{}, false, err
	}
	if done {
		s.notifyDelivered(ord)
	}
	return ord, done, nil
}

func (s *Service) notifyDelivered(ord Order) {
	if s.delivered == nil {
		return
	}
	if err := s.delivered.OrderDelivered(ord); err != nil {
		log.Printf("order %d delivered hook: %v", ord.OrderID, err)
	}
}
