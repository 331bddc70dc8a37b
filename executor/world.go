package executor

import (
	"context"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// WorldExecutor handles world clock and weather actions.
type WorldExecutor struct{}

func (e *WorldExecutor) Name() string { return "world" }

func (e *WorldExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{
		scenario.KindSetTime,
		scenario.KindGetTime,
		scenario.KindSetWeather,
		scenario.KindGetWeather,
	}
}

func (e *WorldExecutor) Execute(ctx context.Context, act scenario.Action, backend scenario.Backend, _ *state.Manager) scenario.ActionResult {
	switch act.Kind {
	case scenario.KindSetTime:
		if _, ok := act.Value("time"); !ok {
			return scenario.FailErr(scenario.ParameterError("time"))
		}
		ticks := int64(act.Int("time", 0))
		if err := backend.SetWorldTime(ctx, ticks); err != nil {
			return backendFail("set_time", err)
		}
		return scenario.OKf("time set to %d", ticks)

	case scenario.KindGetTime:
		ticks, err := backend.WorldTime(ctx)
		if err != nil {
			return backendFail("get_time", err)
		}
		return storeOr(act, ticks, scenario.OKf("%d", ticks))

	case scenario.KindSetWeather:
		weather, err := act.Require("weather")
		if err != nil {
			return scenario.FailErr(err)
		}
		if err := backend.SetWeather(ctx, weather); err != nil {
			return backendFail("set_weather", err)
		}
		return scenario.OKf("weather set to %s", weather)

	case scenario.KindGetWeather:
		weather, err := backend.Weather(ctx)
		if err != nil {
			return backendFail("get_weather", err)
		}
		return storeOr(act, weather, scenario.OK(weather))

	default:
		return unsupported(act.Kind)
	}
}
