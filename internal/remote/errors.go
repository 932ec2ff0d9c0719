package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind separates an unreachable backend from one that answered no.
type FailureKind string

const (
	KindOffline  FailureKind = "offline"
	KindRejected FailureKind = "rejected"
)

// SyncError is returned by every failed backend call.
type SyncError struct {
	Endpoint   string
	Kind       FailureKind
	StatusCode int
	Message    string
	Err        error
}

func (e *SyncError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Endpoint, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Endpoint, e.Kind, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsOffline reports whether err is a transport-level failure.
func IsOffline(err error) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Kind == KindOffline
}

// IsRejected reports whether the backend answered with a failure.
func IsRejected(err error) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Kind == KindRejected
}

// IsPermanent reports whether the backend refused the request itself, so
// sending it again unchanged cannot succeed. Auth, timeout and rate-limit
// statuses are not permanent.
func IsPermanent(err error) bool {
	var se *SyncError
	if !errors.As(err, &se) || se.Kind != KindRejected {
		return false
	}
	switch se.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500
}

// Message extracts the user-facing message from a SyncError.
func Message(err error) string {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
