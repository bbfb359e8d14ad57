package configs

import "time"

// Dispatch tunes the delivery retry loop.
type Dispatch struct {
	// RetryBackoff is the fixed wait between a rejected send and the next
	// attempt for the same recipient.
	RetryBackoff time.Duration `env:"RETRY_BACKOFF" envDefault:"60s"`
}
