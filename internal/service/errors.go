package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrMissingCredential = errors.New("access token is missing")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTransport         = errors.New("transport failure")
	ErrRejected          = errors.New("rejected by server")
	ErrInvalidResponse   = errors.New("invalid response")
)

// APIError is a non-2xx answer from the remote API. It matches ErrRejected,
// and additionally ErrUnauthorized or ErrNotFound depending on the status.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: status %d", ErrRejected, e.StatusCode)
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRejected:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// OperationError is returned by feed operations whose failure has already
// been reported through the Notifier.
type OperationError struct {
	Op  Operation
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
