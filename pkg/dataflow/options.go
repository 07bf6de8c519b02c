package dataflow

import (
	"time"
)

// Option configures a ForEach stage.
type Option func(*config)

type config struct {
	workers    int
	maxRetries int
	backoff    func(int) time.Duration
	// errorHandler returns true when the error is handled and the item may be skipped.
	errorHandler func(error) bool
}

func defaultConfig() *config {
	return &config{
		workers: 1,
	}
}

// WithWorkers sets the number of concurrent workers. Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithRetry retries a failing item up to maxRetries times, sleeping backoff(attempt) in between.
func WithRetry(maxRetries int, backoff func(attempt int) time.Duration) Option {
	return func(c *config) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		c.backoff = backoff
	}
}

// WithErrorHandler sets a handler for errors left after retries.
// If it returns true the item is skipped, otherwise the stage stops.
func WithErrorHandler(h func(error) bool) Option {
	return func(c *config) {
		c.errorHandler = h
	}
}
