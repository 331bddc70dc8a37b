package executor

import (
	"context"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// StateExecutor handles snapshot comparisons over the run's variable store.
type StateExecutor struct{}

func (e *StateExecutor) Name() string { return "state" }

func (e *StateExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{scenario.KindCompareState}
}

func (e *StateExecutor) Execute(_ context.Context, act scenario.Action, _ scenario.Backend, st *state.Manager) scenario.ActionResult {
	switch act.Kind {
	case scenario.KindCompareState:
		nameA, err := act.Require("a")
		if err != nil {
			return scenario.FailErr(err)
		}
		nameB, err := act.Require("b")
		if err != nil {
			return scenario.FailErr(err)
		}
		cmp, err := st.Compare(nameA, nameB)
		if err != nil {
			return scenario.FailErr(err)
		}
		return scenario.OKComparison(cmp)

	default:
		return unsupported(act.Kind)
	}
}
