package api

import (
	"context"
	"time"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// JobTimeout bounds work a handler triggers on behalf of a background job
const JobTimeout = 5 * time.Minute

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, QueryTimeout)
}

// WithJobTimeout creates a context bounded by JobTimeout
func WithJobTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, JobTimeout)
}

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}
