package executor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/state"
)

// AssertExecutor evaluates conditions against previously stored values. It
// never re-queries the backend: the source parameter names the variable a
// prior step captured. Every evaluation yields a message carrying both the
// expected and the actual value; very large actual values are truncated
// with an explicit marker, never dropped.
type AssertExecutor struct{}

func (e *AssertExecutor) Name() string { return "assert" }

func (e *AssertExecutor) SupportedKinds() []scenario.Kind {
	return []scenario.Kind{scenario.KindAssert}
}

func (e *AssertExecutor) Execute(_ context.Context, act scenario.Action, _ scenario.Backend, st *state.Manager) scenario.ActionResult {
	if act.Kind != scenario.KindAssert {
		return unsupported(act.Kind)
	}

	condition, err := act.Require("condition")
	if err != nil {
		return scenario.FailErr(err)
	}
	source, err := act.Require("source")
	if err != nil {
		return scenario.FailErr(err)
	}

	actual, ok := st.Retrieve(source)
	if !ok {
		return scenario.Failf("assertion source %q was never stored", source)
	}

	switch condition {
	case "contains":
		return assertContains(act, source, actual)
	case "has_item":
		return assertHasItem(act, source, actual)
	case "entity_exists":
		return assertEntityExists(act, source, actual)
	case "compare":
		return assertCompare(act, source, actual)
	case "equals":
		return assertEquals(act, source, actual)
	default:
		return scenario.Failf("unknown assertion condition %q", condition)
	}
}

func assertContains(act scenario.Action, source string, actual any) scenario.ActionResult {
	needle, err := act.Require("value")
	if err != nil {
		return scenario.FailErr(err)
	}
	haystack := renderValue(actual)
	if raw, ok := actual.(string); ok {
		haystack = raw
	}
	if strings.Contains(haystack, needle) {
		return scenario.OKf("%s contains %q", source, needle)
	}
	return scenario.Failf("expected %s to contain %q, actual: %s",
		source, needle, state.Truncate(haystack, state.DefaultDisplayLimit))
}

// assertHasItem walks the canonical form of a captured inventory looking
// for a stack with the given item identifier (and at least count when set).
func assertHasItem(act scenario.Action, source string, actual any) scenario.ActionResult {
	item, err := act.Require("item")
	if err != nil {
		return scenario.FailErr(err)
	}
	minCount := act.Int("count", 1)

	canonical, cerr := state.Canonicalize(actual)
	if cerr != nil {
		return scenario.Failf("assertion source %q is not inspectable: %v", source, cerr)
	}
	stacks, ok := canonical.([]any)
	if !ok {
		return scenario.Failf("expected %s to be an inventory list, actual: %s",
			source, renderValue(actual))
	}

	total := 0
	for _, raw := range stacks {
		stack, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := stack["item"].(string)
		if name != item {
			continue
		}
		if count, ok := stack["count"].(float64); ok {
			total += int(count)
		} else {
			total++
		}
	}

	if total >= minCount {
		return scenario.OKf("%s holds %dx %s", source, total, item)
	}
	return scenario.Failf("expected %s to hold %dx %s, found %d, actual inventory: %s",
		source, minCount, item, total, state.Truncate(renderValue(actual), state.DefaultDisplayLimit))
}

func assertEntityExists(act scenario.Action, source string, actual any) scenario.ActionResult {
	entity, err := act.Require("entity")
	if err != nil {
		return scenario.FailErr(err)
	}

	canonical, cerr := state.Canonicalize(actual)
	if cerr != nil {
		return scenario.Failf("assertion source %q is not inspectable: %v", source, cerr)
	}
	entities, ok := canonical.([]any)
	if !ok {
		return scenario.Failf("expected %s to be an entity list, actual: %s",
			source, renderValue(actual))
	}

	for _, raw := range entities {
		info, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if info["kind"] == entity || info["id"] == entity {
			return scenario.OKf("%s contains entity %s", source, entity)
		}
	}
	return scenario.Failf("expected entity %q in %s, actual: %s",
		entity, source, state.Truncate(renderValue(actual), state.DefaultDisplayLimit))
}

func assertCompare(act scenario.Action, source string, actual any) scenario.ActionResult {
	op := act.String("op")
	if op == "" {
		op = "eq"
	}
	expectedRaw, ok := act.Value("value")
	if !ok {
		return scenario.FailErr(scenario.ParameterError("value"))
	}

	got, gok := asNumber(actual)
	want, wok := asNumber(expectedRaw)
	if !gok || !wok {
		return scenario.Failf("numeric comparison needs numbers, expected: %v, actual: %s",
			expectedRaw, renderValue(actual))
	}

	pass := false
	switch op {
	case "eq":
		pass = got == want
	case "ne":
		pass = got != want
	case "gt":
		pass = got > want
	case "gte":
		pass = got >= want
	case "lt":
		pass = got < want
	case "lte":
		pass = got <= want
	default:
		return scenario.Failf("unknown comparison operator %q", op)
	}

	if pass {
		return scenario.OKf("%s %s %v holds (actual %v)", source, op, want, got)
	}
	return scenario.Failf("expected %s %s %v, actual: %v", source, op, want, got)
}

func assertEquals(act scenario.Action, source string, actual any) scenario.ActionResult {
	expected, ok := act.Value("expected")
	if !ok {
		return scenario.FailErr(scenario.ParameterError("expected"))
	}
	ops, err := state.Diff(actual, expected)
	if err != nil {
		return scenario.Failf("structural equality check failed: %v", err)
	}
	if len(ops) == 0 {
		return scenario.OKf("%s structurally equals the expected value", source)
	}

	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		lines = append(lines, op.String())
	}
	return scenario.Failf("expected %s to equal %s, actual: %s, diff:\n  %s",
		source,
		state.Truncate(renderValue(expected), state.DefaultDisplayLimit),
		state.Truncate(renderValue(actual), state.DefaultDisplayLimit),
		strings.Join(lines, "\n  "))
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return parsed, err == nil
	case fmt.Stringer:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
