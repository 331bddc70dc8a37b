package state

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"unicode/utf8"
)

// Op classifies one patch entry.
type Op string

const (
	// OpAdd introduces a value absent from the before snapshot.
	OpAdd Op = "add"
	// OpRemove drops a value absent from the after snapshot.
	OpRemove Op = "remove"
	// OpReplace swaps one value for another at the same path.
	OpReplace Op = "replace"
)

// Operation is one entry of a patch-style diff. Path encoding: root is
// empty, map keys append ".key", array indices append "[i]". Old is only
// set for remove/replace, New only for add/replace.
type Operation struct {
	Op   Op     `json:"op"`
	Path string `json:"path"`
	Old  any    `json:"old,omitempty"`
	New  any    `json:"new,omitempty"`
}

// DefaultDisplayLimit caps rendered values; diffing always runs on full
// content regardless.
const DefaultDisplayLimit = 512

func (o Operation) String() string {
	path := o.Path
	if path == "" {
		path = "(root)"
	}
	switch o.Op {
	case OpAdd:
		return fmt.Sprintf("add %s: %s", path, FormatValue(o.New, DefaultDisplayLimit))
	case OpRemove:
		return fmt.Sprintf("remove %s: %s", path, FormatValue(o.Old, DefaultDisplayLimit))
	default:
		return fmt.Sprintf("replace %s: %s -> %s",
			path, FormatValue(o.Old, DefaultDisplayLimit), FormatValue(o.New, DefaultDisplayLimit))
	}
}

// FormatValue renders v as compact JSON, truncated for display at limit
// with an explicit marker carrying the full length.
func FormatValue(v any, limit int) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return Truncate(string(data), limit)
}

// Truncate shortens s to at most limit bytes, backing the cut off to a rune
// boundary so the kept prefix stays valid UTF-8, and appends an explicit
// truncation marker instead of silently dropping content.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s ...truncated, %d total", s[:cut], len(s))
}

// Canonicalize round-trips v through JSON so that diffs operate on plain
// maps, slices, strings, float64 numbers, booleans, and nil, regardless of
// the Go types executors stored.
func Canonicalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Diff computes the patch operations transforming before into after. Both
// values are canonicalized first; the result is empty exactly when the two
// are structurally equal.
func Diff(before, after any) ([]Operation, error) {
	a, err := Canonicalize(before)
	if err != nil {
		return nil, err
	}
	b, err := Canonicalize(after)
	if err != nil {
		return nil, err
	}
	return diffValue("", a, b), nil
}

func diffValue(path string, a, b any) []Operation {
	if a == nil && b == nil {
		return nil
	}
	if a == nil {
		return []Operation{{Op: OpAdd, Path: path, New: b}}
	}
	if b == nil {
		return []Operation{{Op: OpRemove, Path: path, Old: a}}
	}

	am, aIsMap := a.(map[string]any)
	bm, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		return diffMap(path, am, bm)
	}

	as, aIsArr := a.([]any)
	bs, bIsArr := b.([]any)
	if aIsArr && bIsArr {
		return diffArray(path, as, bs)
	}

	if reflect.DeepEqual(a, b) {
		return nil
	}
	return []Operation{{Op: OpReplace, Path: path, Old: a, New: b}}
}

// diffMap key-compares unordered maps with unique keys. A null value is
// treated the same as an absent key: a null-to-value transition reports as
// add and value-to-null as remove, matching how Compare diffs an absent
// variable name against a present one.
func diffMap(path string, a, b map[string]any) []Operation {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range b {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var ops []Operation
	for _, k := range keys {
		child := path + "." + k
		av, inA := a[k]
		bv, inB := b[k]
		switch {
		case inA && inB:
			ops = append(ops, diffValue(child, av, bv)...)
		case inB:
			ops = append(ops, Operation{Op: OpAdd, Path: child, New: bv})
		default:
			ops = append(ops, Operation{Op: OpRemove, Path: child, Old: av})
		}
	}
	return ops
}

// diffArray index-compares ordered arrays. Trailing elements present on one
// side only become adds or removes; no move detection is attempted.
func diffArray(path string, a, b []any) []Operation {
	var ops []Operation
	shared := len(a)
	if len(b) < shared {
		shared = len(b)
	}
	for i := 0; i < shared; i++ {
		ops = append(ops, diffValue(fmt.Sprintf("%s[%d]", path, i), a[i], b[i])...)
	}
	for i := shared; i < len(b); i++ {
		ops = append(ops, Operation{Op: OpAdd, Path: fmt.Sprintf("%s[%d]", path, i), New: b[i]})
	}
	for i := shared; i < len(a); i++ {
		ops = append(ops, Operation{Op: OpRemove, Path: fmt.Sprintf("%s[%d]", path, i), Old: a[i]})
	}
	return ops
}
