package simworld

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/correlate"
)

func newWorld(t *testing.T, opts ...Option) *World {
	t.Helper()
	w := New(opts...)
	require.NoError(t, w.Initialize(context.Background()))
	return w
}

func TestSpawnAndDespawnPlayer(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	resp, err := w.SpawnPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice joined the game", resp)

	_, err = w.SpawnPlayer(ctx, "alice")
	require.Error(t, err, "double spawn is a conflict")

	_, err = w.DespawnPlayer(ctx, "alice")
	require.NoError(t, err)

	_, err = w.DespawnPlayer(ctx, "alice")
	require.Error(t, err)
}

func TestGiveMergesStacks(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	_, err := w.SpawnPlayer(ctx, "alice")
	require.NoError(t, err)

	_, err = w.GiveItem(ctx, "alice", "stone", 4)
	require.NoError(t, err)
	_, err = w.GiveItem(ctx, "alice", "stone", 2)
	require.NoError(t, err)
	_, err = w.GiveItem(ctx, "alice", "dirt", 1)
	require.NoError(t, err)

	inv, err := w.Inventory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []scenario.ItemStack{
		{Item: "stone", Count: 6},
		{Item: "dirt", Count: 1},
	}, inv)
}

func TestGiveRejectsBadInput(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.GiveItem(ctx, "alice", "stone", 0)
	require.Error(t, err)

	_, err = w.GiveItem(ctx, "ghost", "stone", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such player")
}

func TestRemoveItemDrainsStack(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	_, err := w.SpawnPlayer(ctx, "alice")
	require.NoError(t, err)
	_, err = w.GiveItem(ctx, "alice", "stone", 4)
	require.NoError(t, err)

	resp, err := w.RemoveItem(ctx, "alice", "stone", 10)
	require.NoError(t, err, "removing more than held drains the stack")
	assert.Contains(t, resp, "Removed 4 stone")

	inv, err := w.Inventory(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, inv)

	_, err = w.RemoveItem(ctx, "alice", "stone", 1)
	require.Error(t, err)
}

func TestEquipRequiresHeldItem(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	_, err := w.SpawnPlayer(ctx, "alice")
	require.NoError(t, err)

	_, err = w.EquipItem(ctx, "alice", "hand", "sword")
	require.Error(t, err)

	_, err = w.GiveItem(ctx, "alice", "sword", 1)
	require.NoError(t, err)
	_, err = w.EquipItem(ctx, "alice", "hand", "sword")
	require.NoError(t, err)

	eq, err := w.Equipment(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"hand": "sword"}, eq)
}

func TestEntityLifecycle(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	id, err := w.SpawnEntity(ctx, "zombie", scenario.Position{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	assert.Equal(t, "zombie-1", id)

	id2, err := w.SpawnEntity(ctx, "creeper", scenario.Position{})
	require.NoError(t, err)
	assert.Equal(t, "creeper-2", id2)

	zombies, err := w.QueryEntities(ctx, "zombie")
	require.NoError(t, err)
	require.Len(t, zombies, 1)
	assert.Equal(t, "zombie-1", zombies[0].ID)

	all, err := w.QueryEntities(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = w.KillEntity(ctx, "zombie-1")
	require.NoError(t, err)
	_, err = w.KillEntity(ctx, "zombie-1")
	require.Error(t, err)
}

func TestWorldClockAndWeather(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	require.NoError(t, w.SetWorldTime(ctx, 6000))
	ticks, err := w.WorldTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), ticks)

	weather, err := w.Weather(ctx)
	require.NoError(t, err)
	assert.Equal(t, "clear", weather)

	require.NoError(t, w.SetWeather(ctx, "rain"))
	weather, err = w.Weather(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rain", weather)
}

func TestConsoleVocabulary(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	_, err := w.SpawnPlayer(ctx, "alice")
	require.NoError(t, err)

	resp, err := w.ExecuteServerCommand(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, "There are 1 players online: alice", resp)

	resp, err = w.ExecuteServerCommand(ctx, "time query")
	require.NoError(t, err)
	assert.Equal(t, "The time is 0", resp)

	resp, err = w.ExecuteServerCommand(ctx, "weather query")
	require.NoError(t, err)
	assert.Equal(t, "Weather is clear", resp)

	_, err = w.ExecuteServerCommand(ctx, "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown command")

	_, err = w.ExecuteServerCommand(ctx, "")
	require.Error(t, err)
}

func TestMutationsEmitConfirmations(t *testing.T) {
	bus := correlate.NewBus()
	w := newWorld(t, WithBus(bus))
	ctx := context.Background()

	wait := bus.Wait("* joined the game", time.Second, false)
	_, err := w.SpawnPlayer(ctx, "alice")
	require.NoError(t, err)

	evt, err := wait.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice joined the game", evt.Message)
	assert.Equal(t, "alice", evt.Actor)

	wait = bus.Wait("Gave 4 stone to alice", time.Second, false)
	_, err = w.GiveItem(ctx, "alice", "stone", 4)
	require.NoError(t, err)
	_, err = wait.Result(ctx)
	require.NoError(t, err)
}

func TestSayBroadcastsToBus(t *testing.T) {
	bus := correlate.NewBus()
	w := newWorld(t, WithBus(bus))

	wait := bus.Wait("?Server? hello", time.Second, false)
	resp, err := w.ExecuteServerCommand(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "[Server] hello", resp)

	evt, err := wait.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[Server] hello", evt.Message)
}

func TestCleanupCountsAndResets(t *testing.T) {
	w := New()
	ctx := context.Background()

	require.NoError(t, w.Initialize(ctx))
	require.NoError(t, w.Cleanup(ctx))
	require.NoError(t, w.Cleanup(ctx))
	assert.Equal(t, 2, w.CleanupCount())

	w.InitErr = assert.AnError
	require.Error(t, w.Initialize(ctx))
}
