package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scenario "github.com/goliatone/go-scenario"
)

// scriptedConsole answers each command from a canned table and records what
// was sent.
type scriptedConsole struct {
	answers  map[string]string
	err      error
	commands []string
	closed   int
}

func (c *scriptedConsole) Exec(_ context.Context, command string) (string, error) {
	c.commands = append(c.commands, command)
	if c.err != nil {
		return "", c.err
	}
	if resp, ok := c.answers[command]; ok {
		return resp, nil
	}
	return "ok", nil
}

func (c *scriptedConsole) Close() error {
	c.closed++
	return nil
}

func TestCommandRendering(t *testing.T) {
	console := &scriptedConsole{}
	b := New(console)
	ctx := context.Background()

	_, err := b.GiveItem(ctx, "alice", "stone", 4)
	require.NoError(t, err)
	_, err = b.EquipItem(ctx, "alice", "hand", "sword")
	require.NoError(t, err)
	_, err = b.ExecutePlayerCommand(ctx, "alice", "look around")
	require.NoError(t, err)
	require.NoError(t, b.SetWorldTime(ctx, 6000))
	require.NoError(t, b.SetWeather(ctx, "rain"))

	assert.Equal(t, []string{
		"give alice stone 4",
		"equip alice hand sword",
		"execute as alice run look around",
		"time set 6000",
		"weather rain",
	}, console.commands)
}

func TestInitializePingsConsole(t *testing.T) {
	console := &scriptedConsole{}
	b := New(console)

	require.NoError(t, b.Initialize(context.Background()))
	assert.Equal(t, []string{"ping"}, console.commands)

	console.err = errors.New("connection refused")
	err := b.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "console unreachable")
}

func TestCleanupClosesConsole(t *testing.T) {
	console := &scriptedConsole{}
	b := New(console)

	require.NoError(t, b.Cleanup(context.Background()))
	assert.Equal(t, 1, console.closed)
}

func TestInventoryDecodesJSON(t *testing.T) {
	console := &scriptedConsole{answers: map[string]string{
		"inventory alice": `[{"item": "stone", "count": 4}]`,
	}}
	b := New(console)

	inv, err := b.Inventory(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []scenario.ItemStack{{Item: "stone", Count: 4}}, inv)
}

func TestInventoryRejectsLooseText(t *testing.T) {
	console := &scriptedConsole{answers: map[string]string{
		"inventory alice": "alice has some stuff",
	}}
	b := New(console)

	_, err := b.Inventory(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undecodable")
}

func TestPositionAcceptsJSONAndTriple(t *testing.T) {
	console := &scriptedConsole{answers: map[string]string{
		"position alice": `{"x": 1, "y": 64, "z": -3}`,
		"position bob":   "10 70 20",
		"position carol": "somewhere nice",
	}}
	b := New(console)
	ctx := context.Background()

	pos, err := b.Position(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, scenario.Position{X: 1, Y: 64, Z: -3}, pos)

	pos, err = b.Position(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, scenario.Position{X: 10, Y: 70, Z: 20}, pos)

	_, err = b.Position(ctx, "carol")
	require.Error(t, err)
}

func TestHealthParsesNumber(t *testing.T) {
	console := &scriptedConsole{answers: map[string]string{
		"health alice": " 19.5 \n",
	}}
	b := New(console)

	health, err := b.Health(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 19.5, health)
}

func TestWorldTimeParsesTicks(t *testing.T) {
	console := &scriptedConsole{answers: map[string]string{
		"time query": "6000\n",
	}}
	b := New(console)

	ticks, err := b.WorldTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6000), ticks)

	console.answers["time query"] = "it is morning"
	_, err = b.WorldTime(context.Background())
	require.Error(t, err)
}

func TestSpawnEntityReturnsTrimmedID(t *testing.T) {
	console := &scriptedConsole{answers: map[string]string{
		"summon zombie 1 2 3": "zombie-7\n",
	}}
	b := New(console)

	id, err := b.SpawnEntity(context.Background(), "zombie", scenario.Position{X: 1, Y: 2, Z: 3})
	require.NoError(t, err)
	assert.Equal(t, "zombie-7", id)
}

func TestQueryEntitiesDecodesList(t *testing.T) {
	console := &scriptedConsole{answers: map[string]string{
		"entities zombie": `[{"id": "zombie-1", "kind": "zombie", "health": 10}]`,
		"entities":        `[]`,
	}}
	b := New(console)
	ctx := context.Background()

	zombies, err := b.QueryEntities(ctx, "zombie")
	require.NoError(t, err)
	require.Len(t, zombies, 1)
	assert.Equal(t, "zombie-1", zombies[0].ID)

	all, err := b.QueryEntities(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConsoleErrorsPropagate(t *testing.T) {
	console := &scriptedConsole{err: errors.New("broken pipe")}
	b := New(console)

	_, err := b.GiveItem(context.Background(), "alice", "stone", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
