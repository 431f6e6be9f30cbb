package mailer

import (
	"context"
	"log"
	"time"
)

// Poller drains the email outbox on a fixed tick. Failures are logged and
// retried on later ticks; a slow or dead relay never blocks the caller that
// enqueued the job.
type Poller struct {
	queue    Queue
	sender   Sender
	interval time.Duration
	batch    int
}

func NewPoller(queue Queue, sender Sender, interval time.Duration, batch int) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 20
	}
	return &Poller{queue: queue, sender: sender, interval: interval, batch: batch}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain()
		}
	}
}

func (p *Poller) drain() {
	jobs, err := p.queue.FetchPending(p.batch)
	if err != nil {
		log.Printf("mailer: fetch pending: %v", err)
		return
	}
	for _, j := range jobs {
		if err := p.sender.Send(j.Recipient, j.Subject, j.Body); err != nil {
			log.Printf("mailer: job %d: %v", j.JobID, err)
			if err := p.queue.MarkFailed(j.JobID); err != nil {
				log.Printf("mailer: job %d mark failed: %v", j.JobID, err)
			}
			continue
		}
		if err := p.queue.MarkSent(j.JobID); err != nil {
			log.Printf("mailer: job %d mark sent: %v", j.JobID, err)
		}
	}
}
