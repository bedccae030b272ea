package internal

import (
	"io"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	format string
	stdout io.Writer
	now    func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFormat sets the report output format ("json" or "table").
func WithFormat(format string) Option {
	return func(a *application) {
		a.format = format
	}
}

// WithStdout redirects report output (used by tests).
func WithStdout(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}

// WithNow injects the clock used for staleness evaluation.
func WithNow(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}
