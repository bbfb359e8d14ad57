package usecase

import (
	"context"
	"log/slog"
	"time"

	"sms-dispatch/internal/core/domain"
)

// deliver drives one (mailing, client) pair from first attempt to a
// terminal outcome. It creates (or re-adopts) the pair's delivery attempt
// record, then retries the send with a fixed backoff while the mailing's
// validity window is open, deferring each attempt to the next legal
// instant of the client's daily window.
//
// The record is mutated only through whole-row repository updates, so a
// shutdown mid-wait leaves it in its last persisted status.
func (u *MailerUseCase) deliver(ctx context.Context, m *domain.Mailing, c *domain.Client) domain.Outcome {
	attempt, err := u.attempts.CreateOrGet(ctx, m.ID, c.ID)
	if err != nil {
		u.messageLog.Error("create delivery attempt",
			slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID), slog.Any("error", err))
		return domain.OutcomeErrored
	}

	if attempt.Delivered() {
		// A previous dispatch already finished this pair; never re-send.
		return domain.OutcomeDelivered
	}

	loc, err := c.Location()
	if err != nil {
		u.messageLog.Error("resolve client timezone",
			slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID),
			slog.Int64("attempt_id", attempt.ID), slog.Any("error", err))
		return domain.OutcomeErrored
	}
	window := m.Window()

	for now := time.Now(); !m.Expired(now); now = time.Now() {
		if at := NextSendTime(window, loc, now); !at.IsZero() && at.After(now) {
			u.messageLog.Info("send deferred to daily window",
				slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID),
				slog.Int64("attempt_id", attempt.ID), slog.Time("until", at))
			if err = sleep(ctx, time.Until(at)); err != nil {
				u.messageLog.Error("delivery loop interrupted",
					slog.Int64("attempt_id", attempt.ID), slog.Any("error", err))
				return domain.OutcomeErrored
			}
		}

		status, err := u.transport.Send(ctx, attempt.ID, c.PhoneNumber(), m.Text)
		if err != nil {
			u.messageLog.Error("send failed",
				slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID),
				slog.Int64("attempt_id", attempt.ID), slog.Any("error", err))
			return domain.OutcomeErrored
		}

		if status == domain.StatusDelivered {
			sentAt := time.Now()
			attempt.Status = domain.StatusDelivered
			attempt.SendDate = &sentAt
			if err = u.attempts.Update(ctx, attempt); err != nil {
				u.messageLog.Error("persist delivered attempt",
					slog.Int64("attempt_id", attempt.ID), slog.Any("error", err))
				return domain.OutcomeErrored
			}
			u.messageLog.Info("message delivered",
				slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID),
				slog.Int64("attempt_id", attempt.ID))
			u.clientLog.Info("client notified",
				slog.Int64("client_id", c.ID), slog.Int64("attempt_id", attempt.ID))
			return domain.OutcomeDelivered
		}

		attempt.Status = status
		if err = u.attempts.Update(ctx, attempt); err != nil {
			u.messageLog.Error("persist failed attempt",
				slog.Int64("attempt_id", attempt.ID), slog.Any("error", err))
			return domain.OutcomeErrored
		}
		u.messageLog.Warn("gateway rejected message",
			slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID),
			slog.Int64("attempt_id", attempt.ID), slog.Int("status", status))

		if err = sleep(ctx, u.retryBackoff); err != nil {
			u.messageLog.Error("delivery loop interrupted",
				slog.Int64("attempt_id", attempt.ID), slog.Any("error", err))
			return domain.OutcomeErrored
		}
	}

	u.messageLog.Info("mailing expired before delivery",
		slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID),
		slog.Int64("attempt_id", attempt.ID), slog.Int("last_status", attempt.Status))
	return domain.OutcomeExpired
}
