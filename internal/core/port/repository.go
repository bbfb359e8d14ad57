package port

import (
	"context"
	"time"

	"sms-dispatch/internal/core/domain"
)

// MailingRepository persists mailing records. Implementations return
// (nil, nil) when a mailing does not exist.
type MailingRepository interface {
	Create(ctx context.Context, m *domain.Mailing) error
	Update(ctx context.Context, m *domain.Mailing) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Mailing, error)
	List(ctx context.Context) ([]domain.Mailing, error)
}

// ClientRepository persists client records and resolves a mailing's
// eligible recipients. FindByFilter matches on tag AND operator code when
// both are non-nil, and on whichever single filter is set otherwise.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	FindByFilter(ctx context.Context, tag *string, operatorCode *int) ([]domain.Client, error)
}

// AttemptRepository persists delivery attempts. Attempts are created once
// per (mailing, client) pair and mutated in place across retries; the
// scheduler never deletes them.
type AttemptRepository interface {
	// CreateOrGet returns the pending attempt for the pair, creating it
	// when absent. A dispatch re-run after a crash reuses the existing
	// record instead of duplicating it.
	CreateOrGet(ctx context.Context, mailingID, clientID int64) (*domain.DeliveryAttempt, error)
	Update(ctx context.Context, a *domain.DeliveryAttempt) error
	ListByMailing(ctx context.Context, mailingID int64) ([]domain.DeliveryAttempt, error)
	// Stats aggregates attempt counts per mailing, including mailings
	// without any attempts yet, which report zero counts. Succeeded
	// counts status 200; Failed counts every other status, pending
	// included.
	Stats(ctx context.Context) ([]MailingStats, error)
	// DeliveredBetween counts delivered attempts per mailing whose send
	// date falls in [from, to]. Consumed by the daily report job.
	DeliveredBetween(ctx context.Context, from, to time.Time) (map[int64]int, error)
}

// MailingStats is one row of the per-mailing statistics overview.
type MailingStats struct {
	MailingID int64 `json:"id"`
	Total     int64 `json:"total_messages"`
	Succeeded int64 `json:"successful_messages"`
	Failed    int64 `json:"failed_messages"`
}
