// Package state holds the run-scoped variable store and the snapshot diff
// engine. One Manager is created per story run and discarded with it; there
// is no cross-run persistence and no history.
package state

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-errors"
)

// Manager maps variable names to arbitrary stored values. It is owned by
// exactly one orchestrator run and passed by reference to every executor
// call; it is never a process-wide singleton.
type Manager struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewManager creates an empty store.
func NewManager() *Manager {
	return &Manager{values: make(map[string]any)}
}

// Store records value under name, silently overwriting any previous value.
// Last write wins; no history is retained.
func (m *Manager) Store(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
}

// Retrieve returns the value stored under name, or (nil, false) when absent.
// It never fails.
func (m *Manager) Retrieve(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[name]
	return v, ok
}

// Names returns the stored variable names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of stored variables.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Comparison is the outcome of diffing two stored snapshots: both serialized
// forms, the ordered patch operations, and whether anything changed.
// Computed on demand, never mutated.
type Comparison struct {
	NameA      string      `json:"name_a"`
	NameB      string      `json:"name_b"`
	Before     string      `json:"before"`
	After      string      `json:"after"`
	Ops        []Operation `json:"ops"`
	HasChanges bool        `json:"has_changes"`
}

// Summary renders a short human-readable account of the comparison,
// truncating long values for display.
func (c *Comparison) Summary() string {
	if !c.HasChanges {
		return fmt.Sprintf("%s and %s are identical", c.NameA, c.NameB)
	}
	out := fmt.Sprintf("%s -> %s: %d change(s)", c.NameA, c.NameB, len(c.Ops))
	for _, op := range c.Ops {
		out += "\n  " + op.String()
	}
	return out
}

// Compare retrieves both named values (each may be absent, diffed as null),
// serializes them to a canonical structured form, and computes the patch
// style diff between them. Only a value that cannot be serialized produces
// an error.
func (m *Manager) Compare(nameA, nameB string) (*Comparison, error) {
	a, _ := m.Retrieve(nameA)
	b, _ := m.Retrieve(nameB)

	ca, err := Canonicalize(a)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, fmt.Sprintf("cannot serialize %q", nameA)).
			WithTextCode("UNSERIALIZABLE_VALUE")
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, fmt.Sprintf("cannot serialize %q", nameB)).
			WithTextCode("UNSERIALIZABLE_VALUE")
	}

	before, _ := json.MarshalIndent(ca, "", "  ")
	after, _ := json.MarshalIndent(cb, "", "  ")
	ops := diffValue("", ca, cb)

	return &Comparison{
		NameA:      nameA,
		NameB:      nameB,
		Before:     string(before),
		After:      string(after),
		Ops:        ops,
		HasChanges: len(ops) > 0,
	}, nil
}
