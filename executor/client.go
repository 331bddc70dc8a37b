package executor

import (
	"context"
	"time"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/correlate"
	"github.com/goliatone/go-scenario/state"
)

// DefaultAwaitTimeout bounds a correlation wait when the action does not
// set timeout_ms.
const DefaultAwaitTimeout = 5 * time.Second

// ClientExecutor handles player-visible interactions: chat, position and
// health queries, raw player commands, and the cross-channel await_event
// primitive that confirms a previously issued command against the
// asynchronous event stream.
type ClientExecutor struct {
	bus *correlate.Bus
}

// NewClientExecutor builds the family around the correlation bus; a nil bus
// disables await_event with an explicit failure.
func NewClientExecutor(bus *correlate.Bus) *ClientExecutor {
	return &ClientExecutor{bus: bus}
}

func (e *ClientExecutor) Name() string { return "client" }

func (e *ClientExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{
		scenario.KindSendChat,
		scenario.KindGetPosition,
		scenario.KindGetHealth,
		scenario.KindPlayerCommand,
		scenario.KindAwaitEvent,
	}
}

func (e *ClientExecutor) Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, _ *state.Manager) scenario.ActionResult {
	if act.Kind == scenario.KindAwaitEvent {
		return e.awaitEvent(ctx, act)
	}

	player, err := act.Require("player")
	if err != nil {
		return scenario.FailErr(err)
	}

	switch act.Kind {
	case scenario.KindSendChat:
		message, err := act.Require("message")
		if err != nil {
			return scenario.FailErr(err)
		}
		resp, err := backend.SendChat(ctx, player, message)
		if err != nil {
			return backendFail("send_chat", err)
		}
		return scenario.OK(resp)

	case scenario.KindGetPosition:
		pos, err := backend.Position(ctx, player)
		if err != nil {
			return backendFail("get_position", err)
		}
		return storeOr(act, pos, scenario.OK(renderValue(pos)))

	case scenario.KindGetHealth:
		health, err := backend.Health(ctx, player)
		if err != nil {
			return backendFail("get_health", err)
		}
		return storeOr(act, health, scenario.OKf("%g", health))

	case scenario.KindPlayerCommand:
		command, err := act.Require("command")
		if err != nil {
			return scenario.FailErr(err)
		}
		resp, err := backend.ExecutePlayerCommand(ctx, player, command)
		if err != nil {
			return backendFail("player_command", err)
		}
		return scenario.OK(resp)

	default:
		return unsupported(act.Kind)
	}
}

// awaitEvent blocks the logical step until a matching line appears on the
// event stream, or until the timeout. With invert true the absence of a
// match before the deadline is the success condition.
func (e *ClientExecutor) awaitEvent(ctx context.Context, act scenario.Action) scenario.ActionResult {
	pattern, err := act.Require("pattern")
	if err != nil {
		return scenario.FailErr(err)
	}
	if e.bus == nil {
		return scenario.Fail("await_event requires an event stream, none configured")
	}

	invert := act.Bool("invert", false)
	timeout := act.Duration("timeout_ms", DefaultAwaitTimeout)

	wait := e.bus.Wait(pattern, timeout, invert)
	evt, err := wait.Result(ctx)
	if err != nil {
		return scenario.FailErr(err)
	}

	if invert {
		if evt != nil {
			return scenario.Failf("unexpected event matching %q: %s", pattern, evt.Message)
		}
		return scenario.OKf("no event matching %q within %s", pattern, timeout)
	}

	return storeOr(act, evt.Message, scenario.OK(evt.Message))
}
