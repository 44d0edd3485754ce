package integrations

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when an integration's credentials are unset.
var ErrNotConfigured = errors.New("integration credentials not configured")

// ServiceError is a failed call to a remote service. StatusCode is 0 when no
// HTTP response was received.
type ServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func notConfigured(service string) error {
	return fmt.Errorf("%s: %w", service, ErrNotConfigured)
}
