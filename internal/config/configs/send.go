package configs

import "time"

// Send holds configuration for the external send gateway.
type Send struct {
	// BaseURL is the gateway root; messages go to {BaseURL}/v1/send/{id}.
	BaseURL string `env:"BASE_URL" envDefault:"https://probe.fbrq.cloud"`
	// Token is the bearer token attached to every request.
	Token string `env:"TOKEN"`
	// Timeout bounds one send request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	// RatePerSec caps outgoing requests per second. Zero disables the cap.
	RatePerSec int `env:"RATE_PER_SEC" envDefault:"0"`
}
