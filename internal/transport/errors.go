package transport

import (
	"errors"
	"fmt"
)

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// transportError covers retry-eligible failures: non-2xx statuses, network
// errors, and timeouts.
type transportError struct {
	statusCode int
	message    string
}

func (e *transportError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("transport error (status %d): %s", e.statusCode, e.message)
	}
	return "transport error: " + e.message
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// IsTransportError checks if an error is a retry-eligible transport failure.
func IsTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}
