package executor

import (
	"context"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// ServerExecutor handles raw server-scoped commands and rcon round-trips
// where the captured response is the authoritative result.
type ServerExecutor struct{}

func (e *ServerExecutor) Name() string { return "server" }

func (e *ServerExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{scenario.KindServerCommand, scenario.KindRconCapture}
}

func (e *ServerExecutor) Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, _ *state.Manager) scenario.ActionResult {
	command, err := act.Require("command")
	if err != nil {
		return scenario.FailErr(err)
	}

	switch act.Kind {
	case scenario.KindServerCommand:
		resp, err := backend.ExecuteServerCommand(ctx, command)
		if err != nil {
			return backendFail("server_command", err)
		}
		return scenario.OK(resp)

	case scenario.KindRconCapture:
		resp, err := backend.ExecuteRconWithCapture(ctx, command)
		if err != nil {
			return backendFail("rcon_capture", err)
		}
		decoded := scenario.DecodeLoose(resp)
		if act.StoreAs != "" {
			// Store the structured form when one decoded, the raw text
			// otherwise. A malformed decode still stores raw text; it is
			// not conflated with a parsed null.
			value := any(resp)
			if decoded.Status == scenario.DecodeOK {
				value = decoded.Value
			}
			return scenario.OKStore(resp, act.StoreAs, value)
		}
		return scenario.OKExtract(resp, decoded)

	default:
		return unsupported(act.Kind)
	}
}
