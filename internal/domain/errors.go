package domain

import (
	"errors"
	"fmt"
)

type ErrorCause int

const (
	CauseNetwork ErrorCause = iota
	CauseSchema
	CauseNotFound
	CauseAuthRequired
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetwork:
		return "network"
	case CauseSchema:
		return "schema"
	case CauseNotFound:
		return "not found"
	case CauseAuthRequired:
		return "auth required"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// ProviderError is the single failure type surfaced by resolve and
// page-fetch operations, with a machine-distinguishable cause. The
// caller decides whether a cause is worth retrying.
type ProviderError struct {
	Cause ErrorCause
	Op    string
	Err   error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Cause, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(cause ErrorCause, op string, err error) *ProviderError {
	return &ProviderError{Cause: cause, Op: op, Err: err}
}

// ErrorCauseOf extracts the cause from a provider error chain,
// defaulting to network for untyped transport failures.
func ErrorCauseOf(err error) ErrorCause {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Cause
	}
	return CauseNetwork
}
