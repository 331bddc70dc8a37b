// Package orchestrator drives one story at a time through the executor
// registry: setup, steps, cleanup, in that order, with the backend acquired
// before setup and released on every code path afterwards.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/executor"
	"github.com/goliatone/go-scenario/state"
)

// Run states. Transitions are strictly sequential; there is no branching or
// retry inside the machine.
const (
	StateIdle                = "idle"
	StateStoryLoaded         = "story_loaded"
	StateBackendInitializing = "backend_initializing"
	StateSetupExecuting      = "setup_executing"
	StateStepsExecuting      = "steps_executing"
	StateCleanupExecuting    = "cleanup_executing"
	StateCompleted           = "completed"
)

// Metrics receives run observations. A nil Metrics disables recording.
type Metrics interface {
	ObserveAction(kind string, success bool)
	ObserveAssertion(passed bool)
	ObserveStory(success bool, elapsed time.Duration)
}

// Orchestrator executes stories against a backend. One orchestrator owns
// one state manager and one backend handle per run; sharing a backend
// across concurrent orchestrators is unsupported.
type Orchestrator struct {
	registry *executor.Registry
	logger   Logger
	metrics  Metrics
	current  string
}

// Option configures an orchestrator.
type Option func(*Orchestrator)

// WithLogger installs a logger; nil falls back to the fmt logger.
func WithLogger(l Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New builds an orchestrator over the given registry.
func New(registry *executor.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		current:  StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.logger = normalizeLogger(o.logger)
	return o
}

// State returns the machine's current state.
func (o *Orchestrator) State() string {
	return o.current
}

func (o *Orchestrator) transition(result *scenario.TestResult, next string) {
	o.logger.Debug("state %s -> %s", o.current, next)
	result.Logf("state: %s", next)
	o.current = next
}

// Run executes the story. A failed action (anything but an assertion)
// aborts the remaining actions of its phase; cleanup always runs, and its
// failures are logged, never escalated. The returned TestResult is
// finalized and safe to hand to a reporter.
func (o *Orchestrator) Run(ctx context.Context, story scenario.Story, backend scenario.Backend) *scenario.TestResult {
	result := scenario.NewTestResult(story)
	st := state.NewManager()
	log := withLoggerFields(o.logger, map[string]any{"story": story.Name, "run_id": result.RunID})

	o.current = StateIdle
	o.transition(result, StateStoryLoaded)
	log.Info("running story %q: %d action(s)", story.Name, story.ActionCount())

	var runErr error

	o.transition(result, StateBackendInitializing)
	if err := backend.Initialize(ctx); err != nil {
		runErr = errors.Wrap(err, errors.CategoryExternal, "backend initialization failed").
			WithTextCode("BACKEND_INIT_FAILED")
		log.Error("backend initialization failed: %v", err)
		result.Logf("backend initialization failed: %v", err)
	} else {
		o.transition(result, StateSetupExecuting)
		runErr = o.runPhase(ctx, "setup", story.Setup, backend, st, result, log)

		if runErr == nil {
			o.transition(result, StateStepsExecuting)
			runErr = o.runPhase(ctx, "steps", story.Steps, backend, st, result, log)
		}
	}

	// Scoped release: the backend handle acquired at init is released here
	// regardless of how the run terminated, and cleanup actions get their
	// chance even after an aborted phase or a failed init.
	o.transition(result, StateCleanupExecuting)
	o.runCleanup(ctx, story.Cleanup, backend, st, result, log)
	if err := backend.Cleanup(ctx); err != nil {
		log.Warn("backend cleanup failed: %v", err)
		result.Logf("backend cleanup failed: %v", err)
	}

	o.transition(result, StateCompleted)
	result.Finalize(runErr)
	if o.metrics != nil {
		o.metrics.ObserveStory(result.Success, result.Elapsed)
	}
	log.Info("story %q completed: success=%t actions=%d assertions=%d/%d",
		story.Name, result.Success, result.ActionsExecuted,
		result.AssertionsPassed, result.AssertionsPassed+result.AssertionsFailed)
	return result
}

// runPhase executes actions in order. The first failed non-assertion action
// is fatal to the phase and to the story; assertion failures are recorded
// and the phase continues.
func (o *Orchestrator) runPhase(ctx context.Context, phase string, actions []scenario.Action, backend scenario.Backend, st *state.Manager, result *scenario.TestResult, log Logger) error {
	for _, act := range actions {
		res := o.executeAction(ctx, phase, act, backend, st, result, log)
		if res.Success() || act.Kind == scenario.KindAssert {
			continue
		}
		err := errors.New(
			fmt.Sprintf("action %s failed in %s: %s", act.Name(), phase, res.Message),
			errors.CategoryHandler,
		).WithTextCode("ACTION_FAILED")
		log.Error("aborting %s: %v", phase, err)
		result.Logf("aborting %s after %s: %s", phase, act.Name(), res.Message)
		return err
	}
	return nil
}

// runCleanup executes every cleanup action best-effort.
func (o *Orchestrator) runCleanup(ctx context.Context, actions []scenario.Action, backend scenario.Backend, st *state.Manager, result *scenario.TestResult, log Logger) {
	for _, act := range actions {
		res := o.executeAction(ctx, "cleanup", act, backend, st, result, log)
		if !res.Success() && act.Kind != scenario.KindAssert {
			log.Warn("cleanup action %s failed: %s", act.Name(), res.Message)
		}
	}
}

func (o *Orchestrator) executeAction(ctx context.Context, phase string, act scenario.Action, backend scenario.Backend, st *state.Manager, result *scenario.TestResult, log Logger) scenario.ActionResult {
	started := time.Now().UTC()
	res := o.registry.Execute(ctx, act, backend, st)
	finished := time.Now().UTC()

	if res.Kind == scenario.ResultStore && res.StoreKey != "" {
		st.Store(res.StoreKey, res.StoreValue)
	}

	rec := scenario.StepRecord{
		Phase:      phase,
		Name:       act.Name(),
		Kind:       act.Kind,
		Actor:      act.Actor(),
		StartedAt:  started,
		FinishedAt: finished,
		Response:   res.Response,
		Passed:     res.Success(),
		Assertion:  act.Kind == scenario.KindAssert,
		Comparison: res.Comparison,
	}
	if !res.Success() {
		rec.Error = res.Message
	}
	result.RecordStep(rec)

	if o.metrics != nil {
		o.metrics.ObserveAction(string(act.Kind), res.Success())
		if rec.Assertion {
			o.metrics.ObserveAssertion(res.Success())
		}
	}

	if res.Success() {
		log.Debug("%s %s ok: %s", phase, act.Name(), res.Response)
	} else {
		log.Warn("%s %s failed: %s", phase, act.Name(), res.Message)
		result.Logf("%s %s failed: %s", phase, act.Name(), res.Message)
	}
	return res
}
