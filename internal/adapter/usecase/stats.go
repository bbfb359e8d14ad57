package usecase

import (
	"context"

	"sms-dispatch/internal/core/domain"
	"sms-dispatch/internal/core/port"
)

// MailingStats returns attempted/succeeded/failed counts per mailing;
// mailings without any attempts yet report zero counts. Succeeded counts
// status 200; failed counts every other status, pending attempts
// included. Pure read, idempotent between attempt writes.
func (u *MailerUseCase) MailingStats(ctx context.Context) ([]port.MailingStats, error) {
	return u.attempts.Stats(ctx)
}

// MailingDetail returns every delivery attempt of one mailing.
func (u *MailerUseCase) MailingDetail(ctx context.Context, mailingID int64) ([]domain.DeliveryAttempt, error) {
	return u.attempts.ListByMailing(ctx, mailingID)
}
