package port

import (
	"context"
	"time"
)

// DispatchJob asks the dispatch worker to run a mailing once it becomes
// active. StartAt is the mailing's start date; the worker holds the job
// until then.
type DispatchJob struct {
	MailingID int64     `json:"mailing_id"`
	StartAt   time.Time `json:"start_at"`
}

// DispatchQueue is the broker carrying dispatch jobs from the CRUD
// surface to the worker. It isolates mailings from each other: a crashed
// consumer re-receives its job without touching other mailings.
type DispatchQueue interface {
	Publish(ctx context.Context, job DispatchJob) error
	// Consume delivers jobs to handler until ctx is cancelled. A handler
	// error requeues the job a bounded number of times.
	Consume(ctx context.Context, handler func(ctx context.Context, job DispatchJob) error) error
	Close() error
}
