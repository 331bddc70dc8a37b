package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/correlate"
	"github.com/goliatone/go-scenario/state"
)

func TestInventoryQueryStoresValue(t *testing.T) {
	backend := &stubBackend{inventory: []scenario.ItemStack{{Item: "stone", Count: 4}}}
	reg := NewDefaultRegistry(nil)
	st := state.NewManager()

	act := action(scenario.KindGetInventory, map[string]any{"player": "alice"}).WithStore("inv")
	res := reg.Execute(context.Background(), act, backend, st)

	require.True(t, res.Success())
	assert.Equal(t, scenario.ResultStore, res.Kind)
	assert.Equal(t, "inv", res.StoreKey)
	assert.Equal(t, backend.inventory, res.StoreValue)
	assert.Contains(t, res.Response, "stone")
}

func TestInventoryQueryWithoutStoreIsPlain(t *testing.T) {
	backend := &stubBackend{inventory: []scenario.ItemStack{{Item: "stone", Count: 4}}}
	reg := NewDefaultRegistry(nil)

	res := reg.Execute(context.Background(),
		action(scenario.KindGetInventory, map[string]any{"player": "alice"}), backend, state.NewManager())

	require.True(t, res.Success())
	assert.Equal(t, scenario.ResultPlain, res.Kind)
	assert.Empty(t, res.StoreKey)
}

func TestSpawnEntityStoresID(t *testing.T) {
	reg := NewDefaultRegistry(nil)
	st := state.NewManager()

	act := action(scenario.KindSpawnEntity,
		map[string]any{"entity": "zombie", "x": 1, "y": 2, "z": 3}).WithStore("mob")
	res := reg.Execute(context.Background(), act, &stubBackend{}, st)

	require.True(t, res.Success())
	assert.Equal(t, "mob", res.StoreKey)
	assert.Equal(t, "zombie-1", res.StoreValue)
}

func TestWorldSetTimeRequiresParameter(t *testing.T) {
	reg := NewDefaultRegistry(nil)

	res := reg.Execute(context.Background(),
		action(scenario.KindSetTime, nil), &stubBackend{}, state.NewManager())
	assert.False(t, res.Success())
	assert.Contains(t, res.Message, "missing required parameter: time")

	res = reg.Execute(context.Background(),
		action(scenario.KindSetTime, map[string]any{"time": 6000}), &stubBackend{}, state.NewManager())
	require.True(t, res.Success())
	assert.Contains(t, res.Response, "6000")
}

func TestRconCaptureExtractsStructuredPayload(t *testing.T) {
	backend := &stubBackend{rcon: func(string) (string, error) {
		return `{"players": 3}`, nil
	}}
	reg := NewDefaultRegistry(nil)

	res := reg.Execute(context.Background(),
		action(scenario.KindRconCapture, map[string]any{"command": "status"}), backend, state.NewManager())

	require.True(t, res.Success())
	assert.Equal(t, scenario.ResultExtraction, res.Kind)
	assert.Equal(t, scenario.DecodeOK, res.Payload.Status)
	assert.Equal(t, map[string]any{"players": float64(3)}, res.Payload.Value)
	assert.Equal(t, `{"players": 3}`, res.Response)
}

func TestRconCaptureStoresDecodedValue(t *testing.T) {
	backend := &stubBackend{rcon: func(string) (string, error) {
		return `["alice", "bob"]`, nil
	}}
	reg := NewDefaultRegistry(nil)
	st := state.NewManager()

	act := action(scenario.KindRconCapture, map[string]any{"command": "list"}).WithStore("players")
	res := reg.Execute(context.Background(), act, backend, st)

	require.True(t, res.Success())
	assert.Equal(t, "players", res.StoreKey)
	assert.Equal(t, []any{"alice", "bob"}, res.StoreValue)
}

func TestRconCaptureStoresRawTextWhenNotStructured(t *testing.T) {
	backend := &stubBackend{rcon: func(string) (string, error) {
		return "There are 3 players online", nil
	}}
	reg := NewDefaultRegistry(nil)

	act := action(scenario.KindRconCapture, map[string]any{"command": "list"}).WithStore("players")
	res := reg.Execute(context.Background(), act, backend, state.NewManager())

	require.True(t, res.Success())
	assert.Equal(t, "There are 3 players online", res.StoreValue)
}

func TestCompareStateProducesComparison(t *testing.T) {
	reg := NewDefaultRegistry(nil)
	st := state.NewManager()
	st.Store("before", map[string]any{"count": 1})
	st.Store("after", map[string]any{"count": 2})

	res := reg.Execute(context.Background(),
		action(scenario.KindCompareState, map[string]any{"a": "before", "b": "after"}),
		&stubBackend{}, st)

	require.True(t, res.Success())
	assert.Equal(t, scenario.ResultComparison, res.Kind)
	require.NotNil(t, res.Comparison)
	assert.True(t, res.HasChanges())
	assert.Contains(t, res.Response, ".count")
}

func TestAwaitEventMatchesConfirmation(t *testing.T) {
	bus := correlate.NewBus()
	reg := NewDefaultRegistry(bus)

	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Publishf("alice", "alice joined the game")
	}()

	res := reg.Execute(context.Background(),
		action(scenario.KindAwaitEvent, map[string]any{
			"pattern":    "* joined the game",
			"timeout_ms": 1000,
		}), &stubBackend{}, state.NewManager())

	require.True(t, res.Success())
	assert.Equal(t, "alice joined the game", res.Response)
}

func TestAwaitEventTimesOutDistinctly(t *testing.T) {
	bus := correlate.NewBus()
	reg := NewDefaultRegistry(bus)

	res := reg.Execute(context.Background(),
		action(scenario.KindAwaitEvent, map[string]any{
			"pattern":    "never happens",
			"timeout_ms": 50,
		}), &stubBackend{}, state.NewManager())

	assert.False(t, res.Success())
	assert.Contains(t, res.Message, "correlation timeout")
	assert.Contains(t, res.Message, "never happens")
}

func TestAwaitEventInvertedAbsenceIsSuccess(t *testing.T) {
	bus := correlate.NewBus()
	reg := NewDefaultRegistry(bus)

	res := reg.Execute(context.Background(),
		action(scenario.KindAwaitEvent, map[string]any{
			"pattern":    "ERROR*",
			"timeout_ms": 50,
			"invert":     true,
		}), &stubBackend{}, state.NewManager())

	require.True(t, res.Success())
	assert.Contains(t, res.Response, "no event matching")
}

func TestAwaitEventInvertedPresenceFails(t *testing.T) {
	bus := correlate.NewBus()
	reg := NewDefaultRegistry(bus)

	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Publishf("", "ERROR chunk corrupted")
	}()

	res := reg.Execute(context.Background(),
		action(scenario.KindAwaitEvent, map[string]any{
			"pattern":    "ERROR*",
			"timeout_ms": 1000,
			"invert":     true,
		}), &stubBackend{}, state.NewManager())

	assert.False(t, res.Success())
	assert.Contains(t, res.Message, "unexpected event")
	assert.Contains(t, res.Message, "ERROR chunk corrupted")
}

func TestAwaitEventWithoutBusFailsExplicitly(t *testing.T) {
	reg := NewDefaultRegistry(nil)

	res := reg.Execute(context.Background(),
		action(scenario.KindAwaitEvent, map[string]any{"pattern": "*"}),
		&stubBackend{}, state.NewManager())

	assert.False(t, res.Success())
	assert.Contains(t, res.Message, "event stream")
}
