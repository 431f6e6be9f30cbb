package shipment

import (
	"fmt"
	"log"

	"github.com/ordercore/shop-backend/internal/mailer"
	"github.com/ordercore/shop-backend/internal/order"
	"github.com/ordercore/shop-backend/internal/user"
)

// DeliveredMailer queues the delivery confirmation email. The customer
// notification row is written by the order store inside the delivered
// transaction itself; only the email rides outside it, best-effort.
// Registered on the order service, which fires it at most once per order.
type DeliveredMailer struct {
	mail  mailer.Queue
	users user.ServiceInterface
}

func NewDeliveredMailer(q mailer.Queue, users user.ServiceInterface) *DeliveredMailer {
	return &DeliveredMailer{mail: q, users: users}
}

func (m *DeliveredMailer) OrderDelivered(ord order.Order) error {
	u, err := m.users.GetByID(ord.UserID)
	if err != nil {
		log.Printf("order %d delivered: lookup user %d: %v", ord.OrderID, ord.UserID, err)
		return nil
	}
	subject := fmt.Sprintf("Order #%d delivered", ord.OrderID)
	body := fmt.Sprintf("Your order #%d has been delivered.", ord.OrderID)
	if _, err := m.mail.Enqueue(u.Email, subject, body); err != nil {
		log.Printf("order %d delivered: enqueue email: %v", ord.OrderID, err)
	}
	return nil
}
