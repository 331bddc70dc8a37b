// Package executor maps action kinds to the handlers that perform them.
// Each executor family is a small, stateless unit: its only collaborators
// are the backend and state manager injected per call, and it converts every
// expected domain failure into a failure ActionResult instead of an error.
package executor

import (
	"context"
	"runtime"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// Executor handles a closed set of action kinds.
type Executor interface {
	// Name identifies the executor family in diagnostics.
	Name() string
	// SupportedKinds declares the kinds this executor covers.
	SupportedKinds() []scenario.Kind
	// Execute performs the action. Expected domain failures come back as
	// failure results, never as panics; an action of a kind outside
	// SupportedKinds yields the unsupported-kind diagnostic.
	Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, st *state.Manager) scenario.ActionResult
}

// unsupported is the uniform failure for a kind the executor does not cover.
func unsupported(kind scenario.Kind) scenario.ActionResult {
	return scenario.FailErr(scenario.UnsupportedActionError(kind))
}

// backendFail converts a backend rejection into a failure result carrying
// the original message.
func backendFail(op string, err error) scenario.ActionResult {
	return scenario.FailErr(scenario.BackendError(op, err))
}

// safeExecute guards one executor invocation, converting a panic into a
// failure result with a trimmed stack so a buggy handler cannot take down
// the story loop.
func safeExecute(ctx context.Context, e Executor, act scenario.Action, backend scenario.Backend, st *state.Manager) (result scenario.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			result = scenario.Failf("executor %s panicked on %s: %v\n%s", e.Name(), act.Kind, r, stack[:n])
		}
	}()
	return e.Execute(ctx, act, backend, st)
}

// storeOr wraps a produced value as a store-pair result when the action
// carries a storeAs name, or as the given fallback result otherwise.
func storeOr(act scenario.Action, value any, fallback scenario.ActionResult) scenario.ActionResult {
	if act.StoreAs == "" {
		return fallback
	}
	return scenario.OKStore(fallback.Response, act.StoreAs, value)
}

// renderValue renders a structured value for response text.
func renderValue(v any) string {
	return state.FormatValue(v, state.DefaultDisplayLimit)
}
