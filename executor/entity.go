package executor

import (
	"context"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// EntityExecutor handles spawning, killing, and querying world entities.
type EntityExecutor struct{}

func (e *EntityExecutor) Name() string { return "entity" }

func (e *EntityExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{
		scenario.KindSpawnEntity,
		scenario.KindKillEntity,
		scenario.KindQueryEntities,
	}
}

func (e *EntityExecutor) Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, _ *state.Manager) scenario.ActionResult {
	switch act.Kind {
	case scenario.KindSpawnEntity:
		kind, err := act.Require("entity")
		if err != nil {
			return scenario.FailErr(err)
		}
		pos := scenario.Position{
			X: act.Float("x", 0),
			Y: act.Float("y", 0),
			Z: act.Float("z", 0),
		}
		id, err := backend.SpawnEntity(ctx, kind, pos)
		if err != nil {
			return backendFail("spawn_entity", err)
		}
		return storeOr(act, id, scenario.OKf("spawned %s as %s", kind, id))

	case scenario.KindKillEntity:
		id, err := act.Require("id")
		if err != nil {
			return scenario.FailErr(err)
		}
		resp, err := backend.KillEntity(ctx, id)
		if err != nil {
			return backendFail("kill_entity", err)
		}
		return scenario.OK(resp)

	case scenario.KindQueryEntities:
		entities, err := backend.QueryEntities(ctx, act.String("entity"))
		if err != nil {
			return backendFail("query_entities", err)
		}
		return storeOr(act, entities, scenario.OK(renderValue(entities)))

	default:
		return unsupported(act.Kind)
	}
}
