package mailer

import (
	"sync"
	"time"
)

// Queue is the durable email outbox. Enqueue happens alongside the business
// write; the poller drains pending jobs in the background.
type Queue interface {
	Enqueue(recipient, subject, body string) (Job, error)
	FetchPending(limit int) ([]Job, error)
	MarkSent(jobID int) error
	MarkFailed(jobID int) error
}

type InMemoryQueue struct {
	mu     sync.Mutex
	jobs   []Job
	nextID int
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{nextID: 1}
}

func (q *InMemoryQueue) Enqueue(recipient, subject, body string) (Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j := Job{
		JobID:     q.nextID,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	q.nextID++
	q.jobs = append(q.jobs, j)
	return j, nil
}

func (q *InMemoryQueue) FetchPending(limit int) ([]Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, 0)
	for _, j := range q.jobs {
		if j.Status == StatusPending {
			out = append(out, j)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (q *InMemoryQueue) MarkSent(jobID int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.jobs {
		if q.jobs[i].JobID == jobID {
			now := time.Now()
			q.jobs[i].Status = StatusSent
			q.jobs[i].Attempts++
			q.jobs[i].SentAt = &now
		}
	}
	return nil
}

func (q *InMemoryQueue) MarkFailed(jobID int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.jobs {
		if q.jobs[i].JobID == jobID {
			q.jobs[i].Attempts++
			if q.jobs[i].Attempts >= maxAttempts {
				q.jobs[i].Status = StatusFailed
			}
		}
	}
	return nil
}

// Jobs returns a copy of every job, for tests.
func (q *InMemoryQueue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Job(nil), q.jobs...)
}
