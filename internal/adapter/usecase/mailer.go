package usecase

import (
	"context"
	"log/slog"
	"time"

	"sms-dispatch/internal/core/port"
)

// MailerUseCase implements port.Mailer. It owns the dispatch fan-out, the
// per-client delivery loops and the statistics reads, delegating
// persistence and the actual send call to its ports.
//
// Log records are split into three correlatable streams via the "stream"
// attribute: mailing-level, message-level and client-level, each carrying
// the ids downstream tooling joins on.
type MailerUseCase struct {
	mailings  port.MailingRepository
	clients   port.ClientRepository
	attempts  port.AttemptRepository
	transport port.Transport

	mailingLog *slog.Logger
	messageLog *slog.Logger
	clientLog  *slog.Logger

	// retryBackoff is the fixed wait between a rejected send and the next
	// attempt for the same (mailing, client) pair.
	retryBackoff time.Duration
}

// DefaultRetryBackoff matches the source system's fixed 60-unit wait
// between attempts.
const DefaultRetryBackoff = 60 * time.Second

// NewMailerUseCase wires a mailer. A non-positive retryBackoff falls back
// to DefaultRetryBackoff.
func NewMailerUseCase(
	mailings port.MailingRepository,
	clients port.ClientRepository,
	attempts port.AttemptRepository,
	transport port.Transport,
	logger *slog.Logger,
	retryBackoff time.Duration,
) *MailerUseCase {
	if retryBackoff <= 0 {
		retryBackoff = DefaultRetryBackoff
	}
	return &MailerUseCase{
		mailings:     mailings,
		clients:      clients,
		attempts:     attempts,
		transport:    transport,
		mailingLog:   logger.With(slog.String("stream", "mailing")),
		messageLog:   logger.With(slog.String("stream", "message")),
		clientLog:    logger.With(slog.String("stream", "client")),
		retryBackoff: retryBackoff,
	}
}

// sleep waits for d, returning early with the context error when the
// process is shutting down. A non-positive d returns immediately.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
