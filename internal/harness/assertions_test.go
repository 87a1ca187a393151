package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/ledger"
	"github.com/roach88/elemental/internal/sound"
	"github.com/roach88/elemental/internal/testutil"
)

func newAssertionContext(t *testing.T) *AssertionContext {
	t.Helper()
	ctx := t.Context()

	c := cache.New(nil)
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Earth", "Water"), ir.Element{Symbol: "Mud", Glyph: "m"}))
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Earth", "Fire"), ir.Tombstone()))
	require.NoError(t, c.StoreSplit(ctx, ir.SplitKey("Steam"), ir.Pair{{Symbol: "Fire", Glyph: "f"}, {Symbol: "Water", Glyph: "w"}}))

	l := ledger.New(nil)
	require.NoError(t, l.Load(ctx, nil, []ir.Element{{Symbol: "Earth", Glyph: "e"}}))

	return &AssertionContext{
		Cache:  c,
		Ledger: l,
		Oracle: testutil.NewRecordingOracle(nil),
		Final: engine.View{
			State: engine.Idle,
			Placements: []engine.PlacementView{
				{Placement: canvas.Placement{Element: ir.Element{Symbol: "Mud", Glyph: "m"}, X: 10, Y: 20}},
			},
		},
		Cues: []sound.Kind{sound.Plop, sound.Discovery},
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	actx := newAssertionContext(t)
	no := false

	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertCanvas, Symbols: []string{"Mud"}},
		{Type: AssertPlacement, Symbol: "Mud", X: intPtr(10), Y: intPtr(20)},
		{Type: AssertKnown, Symbol: "Earth", Discovery: &no},
		{Type: AssertCombo, A: "Water", B: "Earth", Symbol: "Mud"},
		{Type: AssertCombo, A: "Fire", B: "Earth", Tombstone: true},
		{Type: AssertSplit, Symbol: "Steam", Symbols: []string{"Fire", "Water"}},
		{Type: AssertCues, Cues: []string{"plop", "discovery"}},
		{Type: AssertOracleCalls, Count: intPtr(0)},
		{Type: AssertPending, Count: intPtr(0)},
		{Type: AssertState, State: "idle"},
	}, actx)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	actx := newAssertionContext(t)
	yes := true

	tests := []struct {
		name      string
		assertion Assertion
		want      []string
	}{
		{
			name:      "canvas",
			assertion: Assertion{Type: AssertCanvas},
			want:      []string{"Expected: []", "Actual: [Mud]"},
		},
		{
			name:      "placement",
			assertion: Assertion{Type: AssertPlacement, Symbol: "Mud", X: intPtr(11), Y: intPtr(20)},
			want:      []string{"Expected: Mud@11,20", "Actual: [Mud@10,20]"},
		},
		{
			name:      "unknown symbol",
			assertion: Assertion{Type: AssertKnown, Symbol: "Plasma"},
			want:      []string{"Expected: Plasma known", "Actual: not known"},
		},
		{
			name:      "discovery flag",
			assertion: Assertion{Type: AssertKnown, Symbol: "Earth", Discovery: &yes},
			want:      []string{"Expected: Earth discovery=true", "Actual: discovery=false"},
		},
		{
			name:      "combo missing",
			assertion: Assertion{Type: AssertCombo, A: "Air", B: "Earth", Symbol: "Dust"},
			want:      []string{"Actual: no entry for Air+++Earth"},
		},
		{
			name:      "combo is tombstone",
			assertion: Assertion{Type: AssertCombo, A: "Earth", B: "Fire", Symbol: "Lava"},
			want:      []string{"Expected: Lava", "Actual: tombstone"},
		},
		{
			name:      "combo not tombstone",
			assertion: Assertion{Type: AssertCombo, A: "Earth", B: "Water", Tombstone: true},
			want:      []string{"Expected: tombstone", "Actual: Mud"},
		},
		{
			name:      "split mismatch",
			assertion: Assertion{Type: AssertSplit, Symbol: "Steam", Symbols: []string{"Water", "Fire"}},
			want:      []string{"Expected: [Water Fire]", "Actual: [Fire Water]"},
		},
		{
			name:      "cues",
			assertion: Assertion{Type: AssertCues, Cues: []string{"plop"}},
			want:      []string{"Expected: [plop]", "Actual: [plop discovery]"},
		},
		{
			name:      "pending",
			assertion: Assertion{Type: AssertPending, Count: intPtr(2)},
			want:      []string{"Assertion failed: pending", "Expected: 2", "Actual: 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewResult()
			result.AddTrace(TraceEvent{Action: "select Earth", State: "holding"})

			errs := EvaluateAssertions(result, []Assertion{tt.assertion}, actx)
			require.Len(t, errs, 1)
			for _, w := range tt.want {
				assert.Contains(t, errs[0], w)
			}
			assert.Contains(t, errs[0], "[1] select Earth -> holding")
		})
	}
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
