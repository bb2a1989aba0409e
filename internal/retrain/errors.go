package retrain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RetrainError reports a failed retraining call. StatusCode is zero when the
// request never produced a response; Err then holds the transport error.
// No local state is changed by a failed call, so the caller may retry.
type RetrainError struct {
	StatusCode int
	Status     string
	Message    string
	RequestID  string
	RetryAfter time.Duration
	Err        error
}

func (e *RetrainError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retrain request failed: %v", e.Err)
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	msg := fmt.Sprintf("retrain failed: %s", status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RequestID != "" {
		msg += " (request_id=" + e.RequestID + ")"
	}
	return msg
}

func (e *RetrainError) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same request could succeed:
// transport failures other than cancellation, 429 and 5xx.
func (e *RetrainError) Retryable() bool {
	if e.StatusCode == 0 {
		return e.Err != nil && !errors.Is(e.Err, context.Canceled)
	}
	return e.StatusCode == http.StatusTooManyRequests || (e.StatusCode >= 500 && e.StatusCode <= 599)
}
