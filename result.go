package scenario

import (
	"fmt"

	"github.com/goliatone/go-scenario/state"
)

// ResultKind discriminates the ActionResult union. Exactly one of the
// success forms is populated per result; failure excludes all of them.
type ResultKind int

const (
	// ResultPlain is a plain success carrying only a response string.
	ResultPlain ResultKind = iota
	// ResultStore is a success carrying a (key, value) pair to persist.
	ResultStore
	// ResultExtraction is a success carrying both a raw response and a
	// parsed structured payload.
	ResultExtraction
	// ResultComparison is a success representing a before/after/diff triple.
	ResultComparison
	// ResultFailure is a failure carrying an error message.
	ResultFailure
)

// ActionResult is the uniform outcome value returned by every executor
// invocation. Built through the constructors below and never mutated after
// creation.
type ActionResult struct {
	Kind       ResultKind
	Response   string
	Message    string
	StoreKey   string
	StoreValue any
	Payload    Decoded
	Comparison *state.Comparison
}

// OK builds a plain success carrying a response string.
func OK(response string) ActionResult {
	return ActionResult{Kind: ResultPlain, Response: response}
}

// OKf builds a plain success with a formatted response.
func OKf(format string, args ...any) ActionResult {
	return OK(fmt.Sprintf(format, args...))
}

// OKStore builds a success carrying a (key, value) pair the orchestrator
// persists into the state manager.
func OKStore(response, key string, value any) ActionResult {
	return ActionResult{Kind: ResultStore, Response: response, StoreKey: key, StoreValue: value}
}

// OKExtract builds a success carrying the raw response plus its best-effort
// decoded payload.
func OKExtract(response string, payload Decoded) ActionResult {
	return ActionResult{Kind: ResultExtraction, Response: response, Payload: payload}
}

// OKComparison builds a success representing a before/after/diff triple.
func OKComparison(cmp *state.Comparison) ActionResult {
	return ActionResult{Kind: ResultComparison, Response: cmp.Summary(), Comparison: cmp}
}

// Fail builds a failure carrying a human-readable message.
func Fail(message string) ActionResult {
	return ActionResult{Kind: ResultFailure, Message: message}
}

// Failf builds a failure with a formatted message.
func Failf(format string, args ...any) ActionResult {
	return Fail(fmt.Sprintf(format, args...))
}

// FailErr builds a failure from an error.
func FailErr(err error) ActionResult {
	return Fail(err.Error())
}

// Success reports whether the result is any of the success forms.
func (r ActionResult) Success() bool {
	return r.Kind != ResultFailure
}

// HasChanges reports whether a comparison result observed differences.
func (r ActionResult) HasChanges() bool {
	return r.Kind == ResultComparison && r.Comparison != nil && r.Comparison.HasChanges
}

// Text returns the response for successes and the message for failures.
func (r ActionResult) Text() string {
	if r.Kind == ResultFailure {
		return r.Message
	}
	return r.Response
}
