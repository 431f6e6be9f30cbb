package mailer

import "database/sql"

type PostgresQueue struct {
	db *sql.DB
}

const (
	enqueueJobQuery = `
		INSERT INTO email_jobs (recipient, subject, body)
		VALUES ($1, $2, $3)
		RETURNING job_id, status, attempts, created_at
	`
	fetchPendingQuery = `
		SELECT job_id, recipient, subject, body, status, attempts, created_at, sent_at
		FROM email_jobs
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`
	markSentQuery = `
		UPDATE email_jobs
		SET status = 'sent', attempts = attempts + 1, sent_at = now()
		WHERE job_id = $1
	`
	markFailedQuery = `
		UPDATE email_jobs
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $2 THEN 'failed' ELSE 'pending' END
		WHERE job_id = $1
	`
)

func NewPostgresQueue(db *sql.DB) *PostgresQueue {
	return &PostgresQueue{db: db}
}

func (q *PostgresQueue) Enqueue(recipient, subject, body string) (Job, error) {
	j := Job{Recipient: recipient, Subject: subject, Body: body}
	err := q.db.QueryRow(enqueueJobQuery, recipient, subject, body).
		Scan(&j.JobID, &j.Status, &j.Attempts, &j.CreatedAt)
	return j, err
}

func (q *PostgresQueue) FetchPending(limit int) ([]Job, error) {
	rows, err := q.db.Query(fetchPendingQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Job, 0)
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.JobID, &j.Recipient, &j.Subject, &j.Body, &j.Status, &j.Attempts, &j.CreatedAt, &j.SentAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (q *PostgresQueue) MarkSent(jobID int) error {
	_, err := q.db.Exec(markSentQuery, jobID)
	return err
}

func (q *PostgresQueue) MarkFailed(jobID int) error {
	_, err := q.db.Exec(markFailedQuery, jobID, maxAttempts)
	return err
}
