package executor

import (
	"context"
	"sync"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/correlate"
	"github.com/goliatone/go-scenario/state"
)

// Registry maps each action kind to the executor responsible for it.
// Registration is runtime-open: a later registration for an already-covered
// kind silently overrides the earlier one, which lets callers swap a stock
// family for a specialized handler without rebuilding the registry.
type Registry struct {
	mu        sync.RWMutex
	executors map[scenario.Kind]Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[scenario.Kind]Executor)}
}

// NewDefaultRegistry builds a registry covering the full stock action set.
// The bus feeds the client family's correlation waits and may be nil when no
// event stream is attached.
func NewDefaultRegistry(bus *correlate.Bus) *Registry {
	r := NewRegistry()
	r.Register(&PlayerExecutor{})
	r.Register(&InventoryExecutor{})
	r.Register(&EntityExecutor{})
	r.Register(&WorldExecutor{})
	r.Register(NewClientExecutor(bus))
	r.Register(&ServerExecutor{})
	r.Register(&StateExecutor{})
	r.Register(&AssertExecutor{})
	return r
}

// Register maps every kind the executor supports to it. Last registration
// wins for overlapping kinds.
func (r *Registry) Register(e Executor) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kind := range e.SupportedKinds() {
		r.executors[kind] = e
	}
}

// Executor resolves the handler for kind.
func (r *Registry) Executor(kind scenario.Kind) (Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[kind]
	return e, ok
}

// Has reports whether kind is covered.
func (r *Registry) Has(kind scenario.Kind) bool {
	_, ok := r.Executor(kind)
	return ok
}

// CoveredKindCount reports how many kinds currently resolve to an executor.
func (r *Registry) CoveredKindCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.executors)
}

// Execute resolves and runs the executor for the action's kind. An
// uncovered kind produces the fixed unsupported-kind diagnostic rather than
// an error, so the orchestrator treats it like any other failure.
func (r *Registry) Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, st *state.Manager) scenario.ActionResult {
	e, ok := r.Executor(act.Kind)
	if !ok {
		return unsupported(act.Kind)
	}
	return safeExecute(ctx, e, act, backend, st)
}
