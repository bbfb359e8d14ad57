package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sms-dispatch/internal/core/domain"
)

// Dispatch fans the mailing out into one delivery loop per eligible
// client and waits for the whole batch to settle. No loop is started once
// the mailing's end date has passed. Loops run concurrently and
// independently; a fault in one never aborts its siblings.
func (u *MailerUseCase) Dispatch(ctx context.Context, mailingID int64) (domain.BatchOutcome, error) {
	m, err := u.mailings.Get(ctx, mailingID)
	if err != nil {
		u.mailingLog.Error("load mailing", slog.Int64("mailing_id", mailingID), slog.Any("error", err))
		return domain.BatchPartial, err
	}
	if m == nil {
		return domain.BatchPartial, fmt.Errorf("mailing %d not found", mailingID)
	}

	clients, err := u.clients.FindByFilter(ctx, m.FilterTag, m.FilterOperatorCode)
	if err != nil {
		u.mailingLog.Error("resolve eligible clients",
			slog.Int64("mailing_id", mailingID), slog.Any("error", err))
		return domain.BatchPartial, fmt.Errorf("resolve eligible clients for mailing %d: %w", mailingID, err)
	}

	u.mailingLog.Info("mailing started",
		slog.Int64("mailing_id", m.ID), slog.Int("eligible_clients", len(clients)))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		launched  int
		delivered int
	)
	for i := range clients {
		if m.Expired(time.Now()) {
			u.mailingLog.Info("mailing window closed, no further deliveries started",
				slog.Int64("mailing_id", m.ID), slog.Int("launched", launched))
			break
		}
		c := clients[i]
		launched++
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				// A panicking loop counts as not delivered; siblings keep running.
				if r := recover(); r != nil {
					u.messageLog.Error("delivery loop panicked",
						slog.Int64("mailing_id", m.ID), slog.Int64("client_id", c.ID),
						slog.Any("panic", r))
				}
			}()
			if u.deliver(ctx, m, &c) == domain.OutcomeDelivered {
				mu.Lock()
				delivered++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	outcome := domain.BatchPartial
	if delivered == launched {
		outcome = domain.BatchAllDelivered
		u.mailingLog.Info("all mailing messages delivered", slog.Int64("mailing_id", m.ID))
	} else {
		u.mailingLog.Warn("some mailing messages were not delivered",
			slog.Int64("mailing_id", m.ID),
			slog.Int("launched", launched), slog.Int("delivered", delivered))
	}
	return outcome, nil
}
