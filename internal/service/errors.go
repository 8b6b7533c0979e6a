package service

import (
	"errors"
	"net/http"
)

// ErrRetrievalUnavailable is returned when candidate retrieval fails because
// the embedding provider is unreachable. It is the only pipeline failure
// that propagates to the caller; everything downstream degrades locally.
var ErrRetrievalUnavailable = errors.New("unable to retrieve candidates")

// transientError marks a provider failure as retry-worthy.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func markTransient(err error) error {
	return &transientError{err: err}
}

// IsTransient reports whether the error was classified as retryable.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// retryableStatus reports whether an HTTP status from a provider should be
// retried. Timeouts, rate limits and server-side failures are transient;
// everything else (bad request, auth) is permanent.
func retryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout:
		return true
	case code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}
