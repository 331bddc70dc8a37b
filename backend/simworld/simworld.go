// Package simworld is an in-memory backend good enough to run whole stories
// without a remote server: named players with slot inventories and
// equipment, spawned entities, a world clock and weather. Every mutating
// operation pushes a confirmation line onto the correlation bus, so
// await_event works against it exactly as against a live log stream.
package simworld

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-errors"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/correlate"
)

type player struct {
	name      string
	inventory []scenario.ItemStack
	equipment map[string]string
	pos       scenario.Position
	health    float64
}

// World implements scenario.Backend over in-process state. One World serves
// one orchestrator run at a time.
type World struct {
	mu           sync.Mutex
	initialized  bool
	players      map[string]*player
	entities     map[string]scenario.EntityInfo
	nextEntityID int
	timeOfDay    int64
	weather      string

	bus *correlate.Bus

	// InitErr, when set, makes Initialize fail. Used to exercise the
	// orchestrator's abort path.
	InitErr error

	cleanups int
}

// Option configures a World.
type Option func(*World)

// WithBus attaches the correlation bus confirmation lines are published to.
func WithBus(bus *correlate.Bus) Option {
	return func(w *World) {
		w.bus = bus
	}
}

// New creates an empty world.
func New(opts ...Option) *World {
	w := &World{
		players:  make(map[string]*player),
		entities: make(map[string]scenario.EntityInfo),
		weather:  "clear",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// CleanupCount reports how many times Cleanup ran.
func (w *World) CleanupCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cleanups
}

func (w *World) emit(actor, format string, args ...any) {
	if w.bus != nil {
		w.bus.Publishf(actor, format, args...)
	}
}

func (w *World) Initialize(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.InitErr != nil {
		return w.InitErr
	}
	w.initialized = true
	return nil
}

func (w *World) Cleanup(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.initialized = false
	w.cleanups++
	return nil
}

func (w *World) SpawnPlayer(_ context.Context, name string) (string, error) {
	w.mu.Lock()
	if _, exists := w.players[name]; exists {
		w.mu.Unlock()
		return "", errors.New(fmt.Sprintf("player %s already present", name), errors.CategoryConflict).
			WithTextCode("PLAYER_EXISTS")
	}
	w.players[name] = &player{
		name:      name,
		equipment: make(map[string]string),
		health:    20,
	}
	w.mu.Unlock()

	w.emit(name, "%s joined the game", name)
	return fmt.Sprintf("%s joined the game", name), nil
}

func (w *World) DespawnPlayer(_ context.Context, name string) (string, error) {
	w.mu.Lock()
	if _, err := w.playerLocked(name); err != nil {
		w.mu.Unlock()
		return "", err
	}
	delete(w.players, name)
	w.mu.Unlock()

	w.emit(name, "%s left the game", name)
	return fmt.Sprintf("%s left the game", name), nil
}

func (w *World) GiveItem(_ context.Context, name, item string, count int) (string, error) {
	if count <= 0 {
		return "", errors.New("count must be positive", errors.CategoryBadInput).
			WithTextCode("INVALID_COUNT")
	}
	w.mu.Lock()
	p, err := w.playerLocked(name)
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	merged := false
	for i := range p.inventory {
		if p.inventory[i].Item == item {
			p.inventory[i].Count += count
			merged = true
			break
		}
	}
	if !merged {
		p.inventory = append(p.inventory, scenario.ItemStack{Item: item, Count: count})
	}
	w.mu.Unlock()

	w.emit(name, "Gave %d %s to %s", count, item, name)
	return fmt.Sprintf("Gave %d %s to %s", count, item, name), nil
}

func (w *World) RemoveItem(_ context.Context, name, item string, count int) (string, error) {
	w.mu.Lock()
	p, err := w.playerLocked(name)
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	removed := 0
	for i := range p.inventory {
		if p.inventory[i].Item != item {
			continue
		}
		removed = count
		if p.inventory[i].Count < count {
			removed = p.inventory[i].Count
		}
		p.inventory[i].Count -= removed
		if p.inventory[i].Count == 0 {
			p.inventory = append(p.inventory[:i], p.inventory[i+1:]...)
		}
		break
	}
	w.mu.Unlock()

	if removed == 0 {
		return "", errors.New(fmt.Sprintf("%s has no %s", name, item), errors.CategoryBadInput).
			WithTextCode("ITEM_MISSING")
	}
	w.emit(name, "Removed %d %s from %s", removed, item, name)
	return fmt.Sprintf("Removed %d %s from %s", removed, item, name), nil
}

func (w *World) EquipItem(_ context.Context, name, slot, item string) (string, error) {
	w.mu.Lock()
	p, err := w.playerLocked(name)
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	held := false
	for _, stack := range p.inventory {
		if stack.Item == item {
			held = true
			break
		}
	}
	if !held {
		w.mu.Unlock()
		return "", errors.New(fmt.Sprintf("%s does not hold %s", name, item), errors.CategoryBadInput).
			WithTextCode("ITEM_MISSING")
	}
	p.equipment[slot] = item
	w.mu.Unlock()

	w.emit(name, "%s equipped %s in %s", name, item, slot)
	return fmt.Sprintf("%s equipped %s in %s", name, item, slot), nil
}

func (w *World) Inventory(_ context.Context, name string) ([]scenario.ItemStack, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.playerLocked(name)
	if err != nil {
		return nil, err
	}
	out := make([]scenario.ItemStack, len(p.inventory))
	copy(out, p.inventory)
	return out, nil
}

func (w *World) Equipment(_ context.Context, name string) (map[string]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.playerLocked(name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(p.equipment))
	for k, v := range p.equipment {
		out[k] = v
	}
	return out, nil
}

func (w *World) Position(_ context.Context, name string) (scenario.Position, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.playerLocked(name)
	if err != nil {
		return scenario.Position{}, err
	}
	return p.pos, nil
}

func (w *World) Health(_ context.Context, name string) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.playerLocked(name)
	if err != nil {
		return 0, err
	}
	return p.health, nil
}

func (w *World) SendChat(_ context.Context, name, message string) (string, error) {
	w.mu.Lock()
	if _, err := w.playerLocked(name); err != nil {
		w.mu.Unlock()
		return "", err
	}
	w.mu.Unlock()

	w.emit(name, "<%s> %s", name, message)
	return fmt.Sprintf("<%s> %s", name, message), nil
}

func (w *World) ExecutePlayerCommand(ctx context.Context, name, command string) (string, error) {
	w.mu.Lock()
	if _, err := w.playerLocked(name); err != nil {
		w.mu.Unlock()
		return "", err
	}
	w.mu.Unlock()

	resp, err := w.runCommand(ctx, command)
	if err != nil {
		return "", err
	}
	w.emit(name, "%s ran: %s", name, command)
	return resp, nil
}

func (w *World) SpawnEntity(_ context.Context, kind string, pos scenario.Position) (string, error) {
	w.mu.Lock()
	w.nextEntityID++
	id := fmt.Sprintf("%s-%d", kind, w.nextEntityID)
	w.entities[id] = scenario.EntityInfo{ID: id, Kind: kind, Pos: pos, Health: 10}
	w.mu.Unlock()

	w.emit("", "Spawned %s at %.0f %.0f %.0f", id, pos.X, pos.Y, pos.Z)
	return id, nil
}

func (w *World) KillEntity(_ context.Context, id string) (string, error) {
	w.mu.Lock()
	if _, ok := w.entities[id]; !ok {
		w.mu.Unlock()
		return "", errors.New(fmt.Sprintf("no such entity: %s", id), errors.CategoryBadInput).
			WithTextCode("ENTITY_MISSING")
	}
	delete(w.entities, id)
	w.mu.Unlock()

	w.emit("", "Killed %s", id)
	return fmt.Sprintf("Killed %s", id), nil
}

func (w *World) QueryEntities(_ context.Context, kind string) ([]scenario.EntityInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]scenario.EntityInfo, 0, len(w.entities))
	for _, info := range w.entities {
		if kind == "" || info.Kind == kind {
			out = append(out, info)
		}
	}
	return out, nil
}

func (w *World) ExecuteServerCommand(ctx context.Context, command string) (string, error) {
	return w.runCommand(ctx, command)
}

func (w *World) WorldTime(_ context.Context) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeOfDay, nil
}

func (w *World) SetWorldTime(_ context.Context, ticks int64) error {
	w.mu.Lock()
	w.timeOfDay = ticks
	w.mu.Unlock()
	w.emit("", "Time set to %d", ticks)
	return nil
}

func (w *World) Weather(_ context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.weather, nil
}

func (w *World) SetWeather(_ context.Context, weather string) error {
	w.mu.Lock()
	w.weather = weather
	w.mu.Unlock()
	w.emit("", "Weather changed to %s", weather)
	return nil
}

func (w *World) ExecuteRconWithCapture(ctx context.Context, command string) (string, error) {
	return w.runCommand(ctx, command)
}

// runCommand implements the small console vocabulary the simulated world
// answers to.
func (w *World) runCommand(_ context.Context, command string) (string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", errors.New("empty command", errors.CategoryBadInput).
			WithTextCode("EMPTY_COMMAND")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch fields[0] {
	case "list":
		names := make([]string, 0, len(w.players))
		for name := range w.players {
			names = append(names, name)
		}
		return fmt.Sprintf("There are %d players online: %s", len(names), strings.Join(names, ", ")), nil
	case "time":
		if len(fields) > 1 && fields[1] == "query" {
			return fmt.Sprintf("The time is %d", w.timeOfDay), nil
		}
	case "weather":
		if len(fields) > 1 && fields[1] == "query" {
			return fmt.Sprintf("Weather is %s", w.weather), nil
		}
	case "say":
		message := strings.Join(fields[1:], " ")
		if w.bus != nil {
			// The broadcast shows up on the log stream shortly after the
			// command returns, as it does on a live console.
			bus := w.bus
			go func() {
				time.Sleep(10 * time.Millisecond)
				bus.Publishf("", "[Server] %s", message)
			}()
		}
		return fmt.Sprintf("[Server] %s", message), nil
	}
	return "", errors.New(fmt.Sprintf("Unknown command: %s", fields[0]), errors.CategoryBadInput).
		WithTextCode("UNKNOWN_COMMAND")
}

func (w *World) playerLocked(name string) (*player, error) {
	p, ok := w.players[name]
	if !ok {
		return nil, errors.New(fmt.Sprintf("no such player: %s", name), errors.CategoryBadInput).
			WithTextCode("PLAYER_MISSING")
	}
	return p, nil
}
