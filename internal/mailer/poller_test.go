package mailer

import (
	"errors"
	"testing"
)

type stubSender struct {
	fail  bool
	sent  []string
	tries int
}

func (s *stubSender) Send(recipient, subject, body string) error {
	s.tries++
	if s.fail {
		return errors.New("relay down")
	}
	s.sent = append(s.sent, recipient)
	return nil
}

func TestDrainMarksSent(t *testing.T) {
	queue := NewInMemoryQueue()
	sender := &stubSender{}
	p := NewPoller(queue, sender, 0, 0)

	queue.Enqueue("a@example.com", "hi", "")
	queue.Enqueue("b@example.com", "hi", "")
	p.drain()

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(sender.sent))
	}
	for _, j := range queue.Jobs() {
		if j.Status != StatusSent {
			t.Errorf("job %d status = %s, want sent", j.JobID, j.Status)
		}
		if j.SentAt == nil {
			t.Errorf("job %d missing sent_at", j.JobID)
		}
	}

	// drained jobs are not re-sent
	p.drain()
	if sender.tries != 2 {
		t.Errorf("sender called %d times, want 2", sender.tries)
	}
}

func TestDrainRetriesUntilFailed(t *testing.T) {
	queue := NewInMemoryQueue()
	sender := &stubSender{fail: true}
	p := NewPoller(queue, sender, 0, 0)

	queue.Enqueue("a@example.com", "hi", "")
	for i := 0; i < maxAttempts+2; i++ {
		p.drain()
	}

	jobs := queue.Jobs()
	if jobs[0].Status != StatusFailed {
		t.Fatalf("status = %s, want failed after %d attempts", jobs[0].Status, maxAttempts)
	}
	if jobs[0].Attempts != maxAttempts {
		t.Errorf("attempts = %d, want %d", jobs[0].Attempts, maxAttempts)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &stubSender{fail: true}
	sender := NewBreakerSender(inner)

	for i := 0; i < 5; i++ {
		_ = sender.Send("a@example.com", "hi", "")
	}
	// breaker is open; the inner sender stops being called
	if inner.tries >= 5 {
		t.Errorf("inner sender called %d times, breaker never opened", inner.tries)
	}
}
