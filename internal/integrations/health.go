package integrations

import (
	"context"
	"errors"
)

const (
	StatusUnknown = "unknown"
	StatusHealthy = "healthy"
	StatusError   = "error"
)

type Health struct {
	Configured bool   `json:"configured"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Pinger is implemented by every client; constructors that failed hand over
// their error instead.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check reports an integration's state. An ErrNotConfigured construction
// error means "not configured"; any other error, or a failed ping, is "error".
func Check(ctx context.Context, p Pinger, constructErr error) Health {
	if errors.Is(constructErr, ErrNotConfigured) {
		return Health{Configured: false, Status: StatusUnknown}
	}
	if constructErr != nil {
		return Health{Configured: true, Status: StatusError, Error: constructErr.Error()}
	}
	if err := p.Ping(ctx); err != nil {
		return Health{Configured: true, Status: StatusError, Error: err.Error()}
	}
	return Health{Configured: true, Status: StatusHealthy}
}
