package configs

// Report configures the daily statistics e-mail job. Recipients is an
// explicit value injected into the job at construction; nothing reads it
// from process-wide state.
type Report struct {
	Enabled bool `env:"ENABLED" envDefault:"false"`
	// Schedule is a cron expression; the default fires daily at 20:00.
	Schedule string `env:"SCHEDULE" envDefault:"0 20 * * *"`
	// Recipients receives the per-mailing summaries, comma-separated.
	Recipients []string `env:"RECIPIENTS" envSeparator:","`
	// From is the sender address.
	From string `env:"FROM"`
	// SMTPAddr is the host:port of the SMTP relay.
	SMTPAddr string `env:"SMTP_ADDR" envDefault:"localhost:25"`
}
