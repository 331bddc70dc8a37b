package executor

import (
	"context"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// PlayerExecutor handles player lifecycle actions.
type PlayerExecutor struct{}

func (e *PlayerExecutor) Name() string { return "player" }

func (e *PlayerExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{scenario.KindSpawnPlayer, scenario.KindDespawnPlayer}
}

func (e *PlayerExecutor) Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, _ *state.Manager) scenario.ActionResult {
	player, err := act.Require("player")
	if err != nil {
		return scenario.FailErr(err)
	}

	switch act.Kind {
	case scenario.KindSpawnPlayer:
		resp, err := backend.SpawnPlayer(ctx, player)
		if err != nil {
			return backendFail("spawn_player", err)
		}
		return scenario.OK(resp)
	case scenario.KindDespawnPlayer:
		resp, err := backend.DespawnPlayer(ctx, player)
		if err != nil {
			return backendFail("despawn_player", err)
		}
		return scenario.OK(resp)
	default:
		return unsupported(act.Kind)
	}
}
