package scenario

import (
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
)

// ParameterError reports a missing or empty required action parameter.
// Always a local, immediate failure, never retried.
func ParameterError(name string) error {
	return errors.New(fmt.Sprintf("missing required parameter: %s", name), errors.CategoryValidation).
		WithTextCode("PARAMETER_MISSING")
}

// BackendError wraps a failure reported by the external system while
// performing op. Not retried at this layer.
func BackendError(op string, err error) error {
	return errors.Wrap(err, errors.CategoryExternal, fmt.Sprintf("backend %s failed", op)).
		WithTextCode("BACKEND_FAILED")
}

// CorrelationTimeoutError reports that no confirmation event matching
// pattern arrived within the deadline. Kept distinct from BackendError so
// callers can tell "command rejected" from "command accepted but unconfirmed".
func CorrelationTimeoutError(pattern string, timeout time.Duration) error {
	return errors.New(
		fmt.Sprintf("correlation timeout: no event matching %q within %s", pattern, timeout),
		errors.CategoryExternal,
	).WithTextCode("CORRELATION_TIMEOUT")
}

// UnsupportedActionError reports that no executor covers the given kind.
// The message prefix is a fixed diagnostic the orchestrator and tests rely on.
func UnsupportedActionError(kind Kind) error {
	return errors.New(fmt.Sprintf("Unsupported action type: %s", kind), errors.CategoryBadInput).
		WithTextCode("UNSUPPORTED_ACTION")
}
