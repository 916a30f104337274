package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the unified interface for text-generation providers. The client
// performs no JSON parsing beyond verifying that some text came back; turning
// the raw text into a campaign is the caller's job.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request holds one generation call.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float64
	MaxTokens   int64
	JSONOnly    bool // ask the provider to emit a bare JSON object
}

// FailureKind categorizes adapter failures. Callers treat every kind the same
// way (fall back to synthetic generation); the kind exists for logging and for
// the explanation shown to the user.
type FailureKind string

const (
	FailServiceUnavailable FailureKind = "service_unavailable"
	FailAuth               FailureKind = "authentication_failed"
	FailQuota              FailureKind = "quota_exceeded"
	FailTimeout            FailureKind = "timeout"
	FailMalformedResponse  FailureKind = "malformed_response"
)

// Error is a typed failure from a generation provider.
type Error struct {
	Kind   FailureKind
	Status int
	Msg    string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm %s (status %d): %s", e.Kind, e.Status, e.Msg)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Msg)
}

// IsAuth returns true for authentication/authorization failures.
func (e *Error) IsAuth() bool { return e.Kind == FailAuth }

// IsQuota returns true for rate-limit or quota failures.
func (e *Error) IsQuota() bool { return e.Kind == FailQuota }

// classifyStatus maps an HTTP status from a provider onto a failure kind.
func classifyStatus(status int) FailureKind {
	switch {
	case status == 401 || status == 403:
		return FailAuth
	case status == 429:
		return FailQuota
	case status == 408 || status == 504:
		return FailTimeout
	default:
		return FailServiceUnavailable
	}
}

// classifyTransport maps transport-level errors (timeouts, refused
// connections) onto a failure kind.
func classifyTransport(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailTimeout
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return FailTimeout
	}
	return FailServiceUnavailable
}
