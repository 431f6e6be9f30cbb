package mailer

import (
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// maxAttempts bounds redelivery; a job past it is parked as failed.
const maxAttempts = 5

type Job struct {
	JobID     int        `json:"jobId"`
	Recipient string     `json:"recipient"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	CreatedAt time.Time  `json:"createdAt"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}

// Sender delivers one message. Delivery is best-effort; the queue retries.
type Sender interface {
	Send(recipient, subject, body string) error
}

// LogSender writes outgoing mail to the process log. Stands in for a real
// SMTP relay in development and tests.
type LogSender struct {
	From string
}

func (s *LogSender) Send(recipient, subject, body string) error {
	log.Printf("mail from=%s to=%s subject=%q", s.From, recipient, subject)
	return nil
}

// BreakerSender trips open after repeated delivery failures so a dead mail
// relay does not burn an attempt on every queued job each tick.
type BreakerSender struct {
	inner Sender
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreakerSender(inner Sender) *BreakerSender {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "email-sender",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &BreakerSender{inner: inner, cb: cb}
}

func (s *BreakerSender) Send(recipient, subject, body string) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.Send(recipient, subject, body)
	})
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}
	return nil
}
