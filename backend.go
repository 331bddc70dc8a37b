package scenario

import "context"

// Position is a world coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ItemStack is one inventory slot: an item identifier and a count.
type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// EntityInfo describes one world entity returned by entity queries.
type EntityInfo struct {
	ID     string   `json:"id"`
	Kind   string   `json:"kind"`
	Pos    Position `json:"pos"`
	Health float64  `json:"health"`
}

// Backend is the capability interface executors drive. Concrete backends
// (the in-process simulated world, the remote console adapter) satisfy it;
// executors never type-test or cast a backend.
//
// Sharing one Backend across concurrent orchestrators is unsupported: each
// orchestrator owns its backend handle for the duration of a run.
type Backend interface {
	// Lifecycle. Initialize is called once entering a run, Cleanup once
	// leaving it, on every code path.
	Initialize(ctx context.Context) error
	Cleanup(ctx context.Context) error

	// Player lifecycle.
	SpawnPlayer(ctx context.Context, player string) (string, error)
	DespawnPlayer(ctx context.Context, player string) (string, error)

	// Player-scoped operations.
	GiveItem(ctx context.Context, player, item string, count int) (string, error)
	RemoveItem(ctx context.Context, player, item string, count int) (string, error)
	EquipItem(ctx context.Context, player, slot, item string) (string, error)
	Inventory(ctx context.Context, player string) ([]ItemStack, error)
	Equipment(ctx context.Context, player string) (map[string]string, error)
	Position(ctx context.Context, player string) (Position, error)
	Health(ctx context.Context, player string) (float64, error)
	SendChat(ctx context.Context, player, message string) (string, error)
	ExecutePlayerCommand(ctx context.Context, player, command string) (string, error)

	// World-scoped operations.
	SpawnEntity(ctx context.Context, kind string, pos Position) (string, error)
	KillEntity(ctx context.Context, id string) (string, error)
	QueryEntities(ctx context.Context, kind string) ([]EntityInfo, error)
	ExecuteServerCommand(ctx context.Context, command string) (string, error)
	WorldTime(ctx context.Context) (int64, error)
	SetWorldTime(ctx context.Context, ticks int64) error
	Weather(ctx context.Context) (string, error)
	SetWeather(ctx context.Context, weather string) error

	// ExecuteRconWithCapture performs a command/response round-trip where
	// the response text is the authoritative result.
	ExecuteRconWithCapture(ctx context.Context, command string) (string, error)
}
