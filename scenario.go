package scenario

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the family-specific operation an Action performs.
// The initial set below is closed, but executors for new kinds can be
// registered at runtime through the executor registry.
type Kind string

const (
	// Player lifecycle.
	KindSpawnPlayer   Kind = "spawn_player"
	KindDespawnPlayer Kind = "despawn_player"

	// Inventory.
	KindGiveItem     Kind = "give_item"
	KindRemoveItem   Kind = "remove_item"
	KindEquipItem    Kind = "equip_item"
	KindGetInventory Kind = "get_inventory"
	KindGetEquipment Kind = "get_equipment"

	// Entities.
	KindSpawnEntity   Kind = "spawn_entity"
	KindKillEntity    Kind = "kill_entity"
	KindQueryEntities Kind = "query_entities"

	// World / environment.
	KindSetTime    Kind = "set_time"
	KindGetTime    Kind = "get_time"
	KindSetWeather Kind = "set_weather"
	KindGetWeather Kind = "get_weather"

	// Client interaction.
	KindSendChat      Kind = "send_chat"
	KindGetPosition   Kind = "get_position"
	KindGetHealth     Kind = "get_health"
	KindPlayerCommand Kind = "player_command"
	KindAwaitEvent    Kind = "await_event"

	// Server commands.
	KindServerCommand Kind = "server_command"
	KindRconCapture   Kind = "rcon_capture"

	// State comparison.
	KindCompareState Kind = "compare_state"

	// Assertions.
	KindAssert Kind = "assert"
)

// Action is a single declarative instruction: a kind tag, a flat bag of
// kind-specific parameters, and an optional variable name the produced value
// should be stored under. Actions are built by the story loader and never
// mutated afterwards.
type Action struct {
	Kind    Kind
	Params  map[string]any
	StoreAs string
}

// NewAction builds an action with a copy of the given parameter bag.
func NewAction(kind Kind, params map[string]any) Action {
	cp := make(map[string]any, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return Action{Kind: kind, Params: cp}
}

// WithStore returns a copy of the action carrying a storeAs name.
func (a Action) WithStore(name string) Action {
	a.StoreAs = name
	return a
}

// String returns the string parameter under key, or "" when absent.
func (a Action) String(key string) string {
	if v, ok := a.Params[key]; ok {
		switch s := v.(type) {
		case string:
			return s
		case fmt.Stringer:
			return s.String()
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// Require returns the string parameter under key, or a parameter error when
// the key is absent or empty.
func (a Action) Require(key string) (string, error) {
	s := a.String(key)
	if s == "" {
		return "", ParameterError(key)
	}
	return s, nil
}

// Int returns the integer parameter under key, falling back to def.
// Numeric strings and YAML float decodings are coerced.
func (a Action) Int(key string, def int) int {
	v, ok := a.Params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return def
}

// Float returns the float parameter under key, falling back to def.
func (a Action) Float(key string, def float64) float64 {
	v, ok := a.Params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return parsed
		}
	}
	return def
}

// Bool returns the boolean parameter under key, falling back to def.
func (a Action) Bool(key string, def bool) bool {
	v, ok := a.Params[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

// Duration reads a millisecond count under key, falling back to def.
func (a Action) Duration(key string, def time.Duration) time.Duration {
	ms := a.Int(key, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Value returns the raw parameter under key.
func (a Action) Value(key string) (any, bool) {
	v, ok := a.Params[key]
	return v, ok
}

// Actor returns the player parameter, the conventional actor identifier.
func (a Action) Actor() string {
	return a.String("player")
}

// Name renders a short human-readable label for logs and step records.
func (a Action) Name() string {
	if actor := a.Actor(); actor != "" {
		return fmt.Sprintf("%s(%s)", a.Kind, actor)
	}
	return string(a.Kind)
}

// Story is an ordered setup/steps/cleanup script executed as one run.
// Read-only once loaded; one Story maps to one orchestrator run and one
// TestResult.
type Story struct {
	Name        string
	Description string
	Setup       []Action
	Steps       []Action
	Cleanup     []Action
}

// ActionCount returns the total number of actions across all phases.
func (s Story) ActionCount() int {
	return len(s.Setup) + len(s.Steps) + len(s.Cleanup)
}
