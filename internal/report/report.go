// Package report implements the daily statistics e-mail job: once a day
// it counts the messages each mailing delivered over the trailing 24
// hours and mails a short summary per mailing to a configured recipient
// list.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"sms-dispatch/internal/core/port"
)

// Sender delivers one report e-mail. The SMTP implementation lives in
// smtp.go; tests substitute a fake.
type Sender interface {
	Send(to []string, subject, body string) error
}

// Job runs the report on a cron schedule. Recipients are an explicit
// constructor argument, not process-wide state.
type Job struct {
	attempts   port.AttemptRepository
	sender     Sender
	recipients []string
	schedule   string
	logger     *slog.Logger
	cron       *cron.Cron
}

// NewJob wires a report job. schedule is a standard 5-field cron
// expression.
func NewJob(attempts port.AttemptRepository, sender Sender, recipients []string, schedule string, logger *slog.Logger) *Job {
	return &Job{
		attempts:   attempts,
		sender:     sender,
		recipients: recipients,
		schedule:   schedule,
		logger:     logger,
	}
}

// Start registers the cron entry and begins scheduling. It fails fast on
// a malformed schedule expression.
func (j *Job) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return fmt.Errorf("report schedule %q: %w", j.schedule, err)
	}
	c.Start()
	j.cron = c
	j.logger.Info("report job scheduled", slog.String("schedule", j.schedule))
	return nil
}

// Stop halts scheduling; a run already in flight finishes.
func (j *Job) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

func (j *Job) run(ctx context.Context) {
	now := time.Now()
	counts, err := j.attempts.DeliveredBetween(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		j.logger.Error("collect report statistics", slog.Any("error", err))
		return
	}
	for mailingID, delivered := range counts {
		subject := fmt.Sprintf("Mailing %d statistics", mailingID)
		body := fmt.Sprintf("%d messages delivered in the last 24 hours.", delivered)
		if err = j.sender.Send(j.recipients, subject, body); err != nil {
			j.logger.Error("send report",
				slog.Int64("mailing_id", mailingID), slog.Any("error", err))
			continue
		}
		j.logger.Info("report sent",
			slog.Int64("mailing_id", mailingID), slog.Int("delivered", delivered))
	}
}
