package port

import (
	"context"

	"sms-dispatch/internal/core/domain"
)

// Mailer defines the scheduler operations exposed to the HTTP layer and
// the dispatch worker. This is the primary port into the domain.
type Mailer interface {
	// Dispatch fans the mailing out into one delivery loop per eligible
	// client and blocks until every launched loop reaches a terminal
	// outcome. A client-set resolution failure aborts the whole dispatch;
	// the mailing stays retriable by invoking Dispatch again.
	Dispatch(ctx context.Context, mailingID int64) (domain.BatchOutcome, error)

	// MailingStats returns attempted/succeeded/failed counts per mailing.
	MailingStats(ctx context.Context) ([]MailingStats, error)

	// MailingDetail returns every delivery attempt of one mailing.
	MailingDetail(ctx context.Context, mailingID int64) ([]domain.DeliveryAttempt, error)
}
