package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sms-dispatch/internal/core/port"
)

// Worker consumes dispatch jobs and runs them through the mailer. Each
// job gets its own goroutine: the hold until StartAt and the dispatch
// itself happen off the consume loop, so a mailing created far ahead of
// its start date, or one that takes days to settle, never delays the
// mailings queued after it.
type Worker struct {
	queue  port.DispatchQueue
	mailer port.Mailer
	logger *slog.Logger

	wg sync.WaitGroup
}

// NewWorker wires a dispatch worker.
func NewWorker(queue port.DispatchQueue, mailer port.Mailer, logger *slog.Logger) *Worker {
	return &Worker{queue: queue, mailer: mailer, logger: logger}
}

// Run blocks consuming jobs until ctx is cancelled, then waits for the
// in-flight dispatches to settle.
func (w *Worker) Run(ctx context.Context) error {
	err := w.queue.Consume(ctx, w.handle)
	w.wg.Wait()
	return err
}

// handle hands the job off and returns immediately, acknowledging it.
// The pair-level attempt upsert makes a redelivered job safe, so losing
// one on a crash between ack and dispatch only needs a re-publish.
func (w *Worker) handle(ctx context.Context, job port.DispatchJob) error {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.dispatch(ctx, job)
	}()
	return nil
}

func (w *Worker) dispatch(ctx context.Context, job port.DispatchJob) {
	if wait := time.Until(job.StartAt); wait > 0 {
		w.logger.Info("holding dispatch until mailing start",
			slog.Int64("mailing_id", job.MailingID), slog.Time("start_at", job.StartAt))
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}

	outcome, err := w.mailer.Dispatch(ctx, job.MailingID)
	if err != nil {
		w.logger.Error("dispatch failed",
			slog.Int64("mailing_id", job.MailingID), slog.Any("error", err))
		return
	}
	w.logger.Info("dispatch settled",
		slog.Int64("mailing_id", job.MailingID), slog.String("outcome", outcome.String()))
}
