package handler

import "net/http"

// Config holds the process-wide validation switches.
// Load it with config.Load and pass it to Validate with WithConfig.
type Config struct {
	// ErrorStatusCode is the status of respond-mode validation failures.
	ErrorStatusCode int `env:"VALIDATION_ERROR_STATUS_CODE" envDefault:"400"`
	// RaiseOnError delivers a *ValidationError to the ErrorHandler instead of responding.
	RaiseOnError bool `env:"VALIDATION_ERROR_RAISE" envDefault:"false"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{ErrorStatusCode: http.StatusBadRequest}
}

func (c Config) withDefaults() Config {
	if c.ErrorStatusCode == 0 {
		c.ErrorStatusCode = http.StatusBadRequest
	}
	return c
}
