// Package remote satisfies the backend capability interface by rendering
// each operation as a console command string and decoding the captured
// response. Query responses are expected as JSON; loose text answers fall
// back to zero values with an explicit error rather than a silent nil.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"

	scenario "github.com/goliatone/go-scenario"
)

// Console is the command/response round-tripper remote drives. Implemented
// by console.Client and by scripted fakes in tests.
type Console interface {
	Exec(ctx context.Context, command string) (string, error)
	Close() error
}

// Backend renders backend operations onto a Console.
type Backend struct {
	console Console
}

// New wraps a console connection.
func New(console Console) *Backend {
	return &Backend{console: console}
}

func (b *Backend) Initialize(ctx context.Context) error {
	_, err := b.console.Exec(ctx, "ping")
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "console unreachable").
			WithTextCode("CONSOLE_UNREACHABLE")
	}
	return nil
}

func (b *Backend) Cleanup(_ context.Context) error {
	return b.console.Close()
}

func (b *Backend) SpawnPlayer(ctx context.Context, player string) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("player spawn %s", player))
}

func (b *Backend) DespawnPlayer(ctx context.Context, player string) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("player despawn %s", player))
}

func (b *Backend) GiveItem(ctx context.Context, player, item string, count int) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("give %s %s %d", player, item, count))
}

func (b *Backend) RemoveItem(ctx context.Context, player, item string, count int) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("clear %s %s %d", player, item, count))
}

func (b *Backend) EquipItem(ctx context.Context, player, slot, item string) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("equip %s %s %s", player, slot, item))
}

func (b *Backend) Inventory(ctx context.Context, player string) ([]scenario.ItemStack, error) {
	resp, err := b.console.Exec(ctx, fmt.Sprintf("inventory %s", player))
	if err != nil {
		return nil, err
	}
	var stacks []scenario.ItemStack
	if err := decodeJSON(resp, &stacks); err != nil {
		return nil, err
	}
	return stacks, nil
}

func (b *Backend) Equipment(ctx context.Context, player string) (map[string]string, error) {
	resp, err := b.console.Exec(ctx, fmt.Sprintf("equipment %s", player))
	if err != nil {
		return nil, err
	}
	equipment := make(map[string]string)
	if err := decodeJSON(resp, &equipment); err != nil {
		return nil, err
	}
	return equipment, nil
}

func (b *Backend) Position(ctx context.Context, player string) (scenario.Position, error) {
	resp, err := b.console.Exec(ctx, fmt.Sprintf("position %s", player))
	if err != nil {
		return scenario.Position{}, err
	}
	var pos scenario.Position
	if jerr := decodeJSON(resp, &pos); jerr == nil {
		return pos, nil
	}
	// Plain "x y z" answers are accepted too.
	fields := strings.Fields(resp)
	if len(fields) == 3 {
		x, xe := strconv.ParseFloat(fields[0], 64)
		y, ye := strconv.ParseFloat(fields[1], 64)
		z, ze := strconv.ParseFloat(fields[2], 64)
		if xe == nil && ye == nil && ze == nil {
			return scenario.Position{X: x, Y: y, Z: z}, nil
		}
	}
	return scenario.Position{}, undecodable("position", resp)
}

func (b *Backend) Health(ctx context.Context, player string) (float64, error) {
	resp, err := b.console.Exec(ctx, fmt.Sprintf("health %s", player))
	if err != nil {
		return 0, err
	}
	health, perr := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if perr != nil {
		return 0, undecodable("health", resp)
	}
	return health, nil
}

func (b *Backend) SendChat(ctx context.Context, player, message string) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("chat %s %s", player, message))
}

func (b *Backend) ExecutePlayerCommand(ctx context.Context, player, command string) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("execute as %s run %s", player, command))
}

func (b *Backend) SpawnEntity(ctx context.Context, kind string, pos scenario.Position) (string, error) {
	resp, err := b.console.Exec(ctx, fmt.Sprintf("summon %s %g %g %g", kind, pos.X, pos.Y, pos.Z))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

func (b *Backend) KillEntity(ctx context.Context, id string) (string, error) {
	return b.console.Exec(ctx, fmt.Sprintf("kill %s", id))
}

func (b *Backend) QueryEntities(ctx context.Context, kind string) ([]scenario.EntityInfo, error) {
	command := "entities"
	if kind != "" {
		command = fmt.Sprintf("entities %s", kind)
	}
	resp, err := b.console.Exec(ctx, command)
	if err != nil {
		return nil, err
	}
	var entities []scenario.EntityInfo
	if err := decodeJSON(resp, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func (b *Backend) ExecuteServerCommand(ctx context.Context, command string) (string, error) {
	return b.console.Exec(ctx, command)
}

func (b *Backend) WorldTime(ctx context.Context) (int64, error) {
	resp, err := b.console.Exec(ctx, "time query")
	if err != nil {
		return 0, err
	}
	ticks, perr := strconv.ParseInt(strings.TrimSpace(resp), 10, 64)
	if perr != nil {
		return 0, undecodable("time", resp)
	}
	return ticks, nil
}

func (b *Backend) SetWorldTime(ctx context.Context, ticks int64) error {
	_, err := b.console.Exec(ctx, fmt.Sprintf("time set %d", ticks))
	return err
}

func (b *Backend) Weather(ctx context.Context) (string, error) {
	resp, err := b.console.Exec(ctx, "weather query")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

func (b *Backend) SetWeather(ctx context.Context, weather string) error {
	_, err := b.console.Exec(ctx, fmt.Sprintf("weather %s", weather))
	return err
}

func (b *Backend) ExecuteRconWithCapture(ctx context.Context, command string) (string, error) {
	return b.console.Exec(ctx, command)
}

func decodeJSON(resp string, target any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp)), target); err != nil {
		return undecodable(fmt.Sprintf("%T", target), resp)
	}
	return nil
}

func undecodable(what, resp string) error {
	return errors.New(
		fmt.Sprintf("console returned undecodable %s response: %q", what, resp),
		errors.CategoryExternal,
	).WithTextCode("CONSOLE_RESPONSE_UNDECODABLE")
}
