package harness

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/ledger"
	"github.com/roach88/elemental/internal/oracle"
	"github.com/roach88/elemental/internal/pending"
	"github.com/roach88/elemental/internal/store"
	"github.com/roach88/elemental/internal/testutil"
)

// Default surface size when a scenario does not set one.
const (
	DefaultWidth  = 1000
	DefaultHeight = 600
)

// Harness drives one scenario against a real engine.
//
// Oracle tasks are not executed when issued. They are held until a resolve
// step so that scenarios control the interleaving of responses.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	cache  *cache.Cache
	ledger *ledger.Ledger
	oracle *testutil.RecordingOracle
	player *testutil.RecordingPlayer

	held []engine.Task
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database, cache and ledger
// 2. Seed known elements and pre-populate the cache
// 3. Apply steps, recording a trace event for each
// 4. Evaluate assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h, err := newHarness(ctx, st, scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.apply(ctx, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	result.Cues = h.player.Cues()
	result.Final = h.engine.Snapshot()

	actx := &AssertionContext{
		Cache:  h.cache,
		Ledger: h.ledger,
		Oracle: h.oracle,
		Final:  result.Final,
		Cues:   result.Cues,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

func newHarness(ctx context.Context, st *store.Store, s *Scenario) (*Harness, error) {
	table, err := buildTable(s.Recipes)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:  st,
		cache:  cache.New(st),
		ledger: ledger.New(st),
		oracle: testutil.NewRecordingOracle(table),
		player: &testutil.RecordingPlayer{},
	}

	seed := ledger.Seed()
	if len(s.Seed) > 0 {
		seed = toElements(s.Seed)
	}
	if err := h.ledger.Load(ctx, st, seed); err != nil {
		return nil, fmt.Errorf("failed to seed ledger: %w", err)
	}
	if err := prepopulate(ctx, h.cache, s.Cache); err != nil {
		return nil, err
	}

	geom := canvas.DefaultGeometry()
	if s.Geometry != nil {
		geom = *s.Geometry
	}
	clock := testutil.NewStepClock(time.Second)
	h.engine = engine.New(
		engine.Config{Geometry: geom, Metrics: canvas.CellMetrics()},
		engine.Deps{
			Cache:  h.cache,
			Ledger: h.ledger,
			Oracle: h.oracle,
			Player: h.player,
			IDs:    pending.NewSequenceGenerator("ph"),
			Now:    clock.Now,
		},
	)

	w, ht := DefaultWidth, DefaultHeight
	if s.Surface != nil {
		w, ht = s.Surface.Width, s.Surface.Height
	}
	h.engine.Process(engine.ResizeEvent(w, ht))
	return h, nil
}

// apply runs one step and appends its trace event.
func (h *Harness) apply(ctx context.Context, step Step, result *Result) error {
	before := len(h.player.Cues())
	var (
		action string
		issued []engine.Task
	)

	switch {
	case step.Select != "":
		e, ok := h.ledger.Get(step.Select)
		if !ok {
			return fmt.Errorf("select: %q is not a known element", step.Select)
		}
		action = "select " + e.Symbol
		issued = h.engine.Process(engine.SelectEvent(e))

	case step.Press != nil:
		action, issued = h.pointer(engine.Press, step.Press)
	case step.Release != nil:
		action, issued = h.pointer(engine.Release, step.Release)
	case step.Move != nil:
		action, issued = h.pointer(engine.Move, step.Move)
	case step.DoubleClick != nil:
		action, issued = h.pointer(engine.DoubleClick, step.DoubleClick)

	case step.Cancel:
		action = "cancel"
		issued = h.engine.Process(engine.CancelEvent())

	case step.Resize != nil:
		action = fmt.Sprintf("resize %dx%d", step.Resize.Width, step.Resize.Height)
		issued = h.engine.Process(engine.ResizeEvent(step.Resize.Width, step.Resize.Height))

	case step.Resolve != "":
		action = "resolve " + step.Resolve
		issued = h.resolve(ctx, step.Resolve == ResolveReverse)

	default:
		return fmt.Errorf("empty step")
	}

	h.held = append(h.held, issued...)

	tasks := make([]string, 0, len(issued))
	for _, t := range issued {
		tasks = append(tasks, describeTask(t))
	}
	view := h.engine.Snapshot()
	result.AddTrace(TraceEvent{
		Action:  action,
		State:   view.State.String(),
		Canvas:  canvasLabels(view),
		Cues:    cueNames(h.player.Cues()[before:]),
		Tasks:   tasks,
		Pending: len(view.Placeholders),
	})
	return nil
}

func (h *Harness) pointer(action engine.Action, p *PointerStep) (string, []engine.Task) {
	button, _ := parseButton(p.Button)
	if p.Button == "" && action != engine.Move {
		button = engine.Primary
	}
	desc := fmt.Sprintf("%s %s %d,%d", action, button, p.X, p.Y)
	return desc, h.engine.Process(engine.PointerAt(action, button, p.X, p.Y))
}

// resolve executes every held task and feeds the resolutions back in issue
// order, or reversed. Tasks issued while resolving are held for the next
// resolve step.
func (h *Harness) resolve(ctx context.Context, reverse bool) []engine.Task {
	batch := h.held
	h.held = nil
	if reverse {
		batch = slices.Clone(batch)
		slices.Reverse(batch)
	}

	var issued []engine.Task
	for _, t := range batch {
		ev := h.engine.Execute(ctx, t)
		issued = append(issued, h.engine.Process(ev)...)
	}
	return issued
}

func describeTask(t engine.Task) string {
	return fmt.Sprintf("%s %s", t.Kind, t.Key)
}

func buildTable(f oracle.TableFile) (*oracle.Table, error) {
	t := oracle.NewTable()
	for i, r := range f.Combine {
		if r.A == "" || r.B == "" {
			return nil, fmt.Errorf("recipes.combine[%d]: a and b are required", i)
		}
		t.AddCombine(r.A, r.B, toElement(r.Result))
	}
	for i, d := range f.Split {
		if d.Symbol == "" {
			return nil, fmt.Errorf("recipes.split[%d]: symbol is required", i)
		}
		t.AddSplit(d.Symbol, toElements(d.Into)...)
	}
	return t, nil
}

// prepopulate stores cache entries before play starts. An empty combine
// result or split list is a tombstone.
func prepopulate(ctx context.Context, c *cache.Cache, f oracle.TableFile) error {
	for i, r := range f.Combine {
		if r.A == "" || r.B == "" {
			return fmt.Errorf("cache.combine[%d]: a and b are required", i)
		}
		if err := c.StoreCombine(ctx, ir.CombineKey(r.A, r.B), toElement(r.Result)); err != nil {
			return fmt.Errorf("cache.combine[%d]: %w", i, err)
		}
	}
	for i, d := range f.Split {
		if d.Symbol == "" {
			return fmt.Errorf("cache.split[%d]: symbol is required", i)
		}
		p := ir.TombstonePair()
		if len(d.Into) > 0 {
			var ok bool
			if p, ok = ir.PairFromSlice(toElements(d.Into)); !ok {
				return fmt.Errorf("cache.split[%d]: want two valid elements", i)
			}
		}
		if err := c.StoreSplit(ctx, ir.SplitKey(d.Symbol), p); err != nil {
			return fmt.Errorf("cache.split[%d]: %w", i, err)
		}
	}
	return nil
}

func toElement(it oracle.TableItem) ir.Element {
	return ir.Element{Symbol: it.Symbol, Glyph: it.Glyph}
}

func toElements(items []oracle.TableItem) []ir.Element {
	out := make([]ir.Element, 0, len(items))
	for _, it := range items {
		out = append(out, toElement(it))
	}
	return out
}
