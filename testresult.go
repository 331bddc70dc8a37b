package scenario

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-scenario/state"
)

// StepRecord captures the outcome of one executed action.
type StepRecord struct {
	Phase      string            `json:"phase"`
	Name       string            `json:"name"`
	Kind       Kind              `json:"kind"`
	Actor      string            `json:"actor,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Response   string            `json:"response,omitempty"`
	Error      string            `json:"error,omitempty"`
	Passed     bool              `json:"passed"`
	Assertion  bool              `json:"assertion"`
	Comparison *state.Comparison `json:"comparison,omitempty"`
}

// TestResult accumulates the outcome of one story run. It is created when
// the story is loaded, mutated by the orchestrator while the run advances,
// and finalized once at the end; the reporter consumes it read-only.
type TestResult struct {
	RunID            string        `json:"run_id"`
	Story            string        `json:"story"`
	Description      string        `json:"description,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       time.Time     `json:"finished_at"`
	Elapsed          time.Duration `json:"elapsed"`
	Steps            []StepRecord  `json:"steps"`
	ActionsExecuted  int           `json:"actions_executed"`
	AssertionsPassed int           `json:"assertions_passed"`
	AssertionsFailed int           `json:"assertions_failed"`
	Success          bool          `json:"success"`
	Log              []string      `json:"log"`

	finalized bool
}

// NewTestResult starts tracking a run for the named story.
func NewTestResult(story Story) *TestResult {
	return &TestResult{
		RunID:       uuid.NewString(),
		Story:       story.Name,
		Description: story.Description,
		StartedAt:   time.Now().UTC(),
	}
}

// RecordStep appends one executed action outcome and bumps the aggregate
// counters. Assertions update the assertion tallies; every action, pass or
// fail, counts as executed.
func (t *TestResult) RecordStep(rec StepRecord) {
	if t.finalized {
		return
	}
	t.Steps = append(t.Steps, rec)
	t.ActionsExecuted++
	if rec.Assertion {
		if rec.Passed {
			t.AssertionsPassed++
		} else {
			t.AssertionsFailed++
		}
	}
}

// Logf appends a timestamped line to the structured run log. No failure is
// ever silently swallowed; it lands here even when it does not abort the run.
func (t *TestResult) Logf(format string, args ...any) {
	if t.finalized {
		return
	}
	line := fmt.Sprintf("%s %s", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	t.Log = append(t.Log, line)
}

// Finalize freezes the result. Success requires zero failed assertions and
// no unrecovered run-level error.
func (t *TestResult) Finalize(runErr error) {
	if t.finalized {
		return
	}
	t.FinishedAt = time.Now().UTC()
	t.Elapsed = t.FinishedAt.Sub(t.StartedAt)
	t.Success = runErr == nil && t.AssertionsFailed == 0
	t.finalized = true
}

// Finalized reports whether the run has completed.
func (t *TestResult) Finalized() bool {
	return t.finalized
}
