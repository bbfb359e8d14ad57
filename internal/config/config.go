package config

import (
	"github.com/caarlos0/env/v11"

	"sms-dispatch/internal/config/configs"
)

// Config aggregates all configuration sections for the service. Fields
// are populated from environment variables using the caarlos0/env
// library; nested structs are tagged with envPrefix so their fields are
// parsed with the given prefix. Use Load to construct a Config.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). Logged at
	// startup, otherwise unused.
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP configures the CRUD/statistics server. Prefix: HTTP_.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Prefix: LOG_.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Prefix: PSQL_.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Amqp configures the dispatch-job broker. Prefix: AMQP_.
	Amqp configs.Amqp `envPrefix:"AMQP_"`

	// Send configures the external send gateway. Prefix: SEND_.
	Send configs.Send `envPrefix:"SEND_"`

	// Dispatch tunes the delivery retry loop. Prefix: DISPATCH_.
	Dispatch configs.Dispatch `envPrefix:"DISPATCH_"`

	// Report configures the daily statistics e-mail job. Prefix: REPORT_.
	Report configs.Report `envPrefix:"REPORT_"`
}

// Load reads configuration from environment variables into a Config. All
// fields fall back to their declared defaults when no variable is set.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
