package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/ledger"
	"github.com/roach88/elemental/internal/sound"
	"github.com/roach88/elemental/internal/testutil"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s -> %s %v\n", ev.Step, ev.Action, ev.State, ev.Canvas)
		}
	}
	return buf.String()
}

// AssertionContext is the final state assertions are evaluated against.
type AssertionContext struct {
	Cache  *cache.Cache
	Ledger *ledger.Ledger
	Oracle *testutil.RecordingOracle
	Final  engine.View
	Cues   []sound.Kind
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. An empty slice means every assertion held.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			err.Trace = result.Trace
			errs = append(errs, fmt.Sprintf("assertion %d: %s", i+1, err.Error()))
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) *AssertionError {
	switch a.Type {
	case AssertCanvas:
		return assertCanvas(a, actx.Final)
	case AssertPlacement:
		return assertPlacement(a, actx.Final)
	case AssertKnown:
		return assertKnown(a, actx.Ledger)
	case AssertCombo:
		return assertCombo(a, actx.Cache)
	case AssertSplit:
		return assertSplit(a, actx.Cache)
	case AssertCues:
		return assertCues(a, actx.Cues)
	case AssertOracleCalls:
		return assertCount(a.Type, *a.Count, actx.Oracle.Count())
	case AssertPending:
		return assertCount(a.Type, *a.Count, len(actx.Final.Placeholders))
	case AssertState:
		if actx.Final.State.String() != a.State {
			return &AssertionError{Type: a.Type, Expected: a.State, Actual: actx.Final.State.String()}
		}
		return nil
	default:
		return &AssertionError{Type: a.Type, Expected: "known assertion type", Actual: a.Type}
	}
}

func assertCanvas(a Assertion, v engine.View) *AssertionError {
	actual := make([]string, 0, len(v.Placements))
	for _, p := range v.Placements {
		actual = append(actual, p.Element.Symbol)
	}
	want := a.Symbols
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(want, actual) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", actual),
		}
	}
	return nil
}

func assertPlacement(a Assertion, v engine.View) *AssertionError {
	for _, p := range v.Placements {
		if p.Element.Symbol == a.Symbol && p.X == *a.X && p.Y == *a.Y {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s@%d,%d", a.Symbol, *a.X, *a.Y),
		Actual:   fmt.Sprintf("%v", canvasLabels(v)),
	}
}

func assertKnown(a Assertion, l *ledger.Ledger) *AssertionError {
	e, ok := l.Get(a.Symbol)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: a.Symbol + " known", Actual: "not known"}
	}
	if a.Discovery != nil && e.IsDiscovery != *a.Discovery {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s discovery=%t", a.Symbol, *a.Discovery),
			Actual:   fmt.Sprintf("discovery=%t", e.IsDiscovery),
		}
	}
	return nil
}

func assertCombo(a Assertion, c *cache.Cache) *AssertionError {
	k := ir.CombineKey(a.A, a.B)
	got, ok := c.LookupCombine(k)
	expected := a.Symbol
	if a.Tombstone {
		expected = "tombstone"
	}
	switch {
	case !ok:
		return &AssertionError{Type: a.Type, Expected: expected, Actual: "no entry for " + k.String()}
	case a.Tombstone && !got.IsTombstone():
		return &AssertionError{Type: a.Type, Expected: expected, Actual: got.Symbol}
	case !a.Tombstone && got.Symbol != a.Symbol:
		actual := got.Symbol
		if got.IsTombstone() {
			actual = "tombstone"
		}
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
	}
	return nil
}

func assertSplit(a Assertion, c *cache.Cache) *AssertionError {
	k := ir.SplitKey(a.Symbol)
	got, ok := c.LookupSplit(k)
	expected := fmt.Sprintf("%v", a.Symbols)
	if a.Tombstone {
		expected = "tombstone"
	}
	if !ok {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: "no entry for " + k.String()}
	}
	actual := "tombstone"
	if !got.IsTombstone() {
		actual = fmt.Sprintf("%v", []string{got[0].Symbol, got[1].Symbol})
	}
	if actual != expected {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
	}
	return nil
}

func assertCues(a Assertion, cues []sound.Kind) *AssertionError {
	actual := cueNames(cues)
	want := a.Cues
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(want, actual) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", actual),
		}
	}
	return nil
}

func assertCount(typ string, want, got int) *AssertionError {
	if want != got {
		return &AssertionError{Type: typ, Expected: fmt.Sprintf("%d", want), Actual: fmt.Sprintf("%d", got)}
	}
	return nil
}

func parseButton(s string) (engine.Button, error) {
	switch s {
	case "":
		return engine.ButtonNone, nil
	case "primary", "left":
		return engine.Primary, nil
	case "secondary", "right":
		return engine.Secondary, nil
	case "tertiary", "middle":
		return engine.Tertiary, nil
	default:
		return 0, fmt.Errorf("unknown button %q", s)
	}
}

func parseCue(s string) (sound.Kind, error) {
	return sound.ParseKind(s)
}

func parseState(s string) (engine.State, error) {
	for _, st := range []engine.State{engine.Idle, engine.Holding, engine.Dragging} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", s)
}
