package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/ledger"
	"github.com/roach88/elemental/internal/oracle"
	"github.com/roach88/elemental/internal/pending"
	"github.com/roach88/elemental/internal/sound"
)

// Config holds the layout parameters of the canvas.
type Config struct {
	Geometry canvas.Geometry
	Metrics  canvas.Metrics
}

// Deps are the collaborators the engine drives. Nil fields get in-memory
// defaults: an empty cache and ledger, a table oracle that knows nothing, a
// silent player, UUIDv7 placeholder ids and the wall clock.
type Deps struct {
	Cache  *cache.Cache
	Ledger *ledger.Ledger
	Oracle oracle.Oracle
	Player sound.Player
	IDs    pending.IDGenerator
	Now    func() time.Time
}

// Engine is the interaction state machine.
//
// Thread-safety model:
//   - Process(): serialized by an internal mutex; callers should still feed
//     events from one goroutine to keep their order meaningful
//   - Execute(): safe from any goroutine, touches only the oracle
//   - Enqueue(), Snapshot(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// INVARIANTS:
//   - held is non-nil exactly when state is Holding or Dragging
//   - every Task returned by Process owns one open placeholder
//   - the placement consumed by a combine or split is gone before its Task
//     is returned
type Engine struct {
	mu sync.Mutex

	cache   *cache.Cache
	ledger  *ledger.Ledger
	oracle  oracle.Oracle
	player  sound.Player
	canvas  *canvas.Model
	pending *pending.Tracker
	clock   *Clock
	now     func() time.Time
	inbox   *inbox

	state   State
	held    *ir.Element
	pointer canvas.Point
	armed   *canvas.Placement
}

// New creates an Engine.
func New(cfg Config, deps Deps) *Engine {
	if cfg.Metrics == nil {
		cfg.Metrics = canvas.CellMetrics()
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(nil)
	}
	if deps.Ledger == nil {
		deps.Ledger = ledger.New(nil)
	}
	if deps.Oracle == nil {
		deps.Oracle = oracle.NewTable()
	}
	if deps.Player == nil {
		deps.Player = sound.NewSequencer(sound.Discard{})
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Engine{
		cache:   deps.Cache,
		ledger:  deps.Ledger,
		oracle:  deps.Oracle,
		player:  deps.Player,
		canvas:  canvas.New(cfg.Metrics, cfg.Geometry),
		pending: pending.NewTracker(deps.IDs),
		clock:   NewClock(),
		now:     deps.Now,
		inbox:   newInbox(),
		state:   Idle,
	}
}

// Enqueue submits an event for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.inbox.Post(ev)
}

// Run starts the event loop for headless use.
// Blocks until context is cancelled or Stop() is called.
//
// Every Task produced by Process is executed on its own goroutine and its
// resolution is enqueued back onto the loop. Run waits for outstanding tasks
// before returning; cancelling ctx cancels their oracle calls.
//
// ERROR HANDLING: On event processing failure, the error is logged with full
// event context and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting")

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		batch := e.inbox.Take()
		for _, ev := range batch {
			for _, t := range e.Process(ev) {
				wg.Add(1)
				go func(t Task) {
					defer wg.Done()
					res := e.Execute(ctx, t)
					if !e.Enqueue(res) {
						slog.Debug("resolution dropped: engine stopped",
							"key", t.Key.String(),
							"placeholder", t.Placeholder,
						)
					}
				}(t)
			}
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.inbox.Close()
			return ctx.Err()

		case <-e.inbox.Ready():
			if e.inbox.Done() {
				slog.Info("engine stopping: inbox closed")
				return nil
			}
		}
	}
}

// Stop refuses new events. Events already posted are still processed.
func (e *Engine) Stop() {
	e.inbox.Close()
}

// Process applies one event and returns the oracle requests it issued.
// Handling failures are logged and never stop processing.
func (e *Engine) Process(ev Event) []Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks, err := e.processEvent(ev)
	if err != nil {
		logEventError(ev, err)
	}
	return tasks
}

func (e *Engine) processEvent(ev Event) ([]Task, error) {
	switch ev.Type {
	case EventResize:
		if ev.Size == nil {
			return nil, errors.New("resize event has no size")
		}
		e.canvas.Resize(ev.Size.Width, ev.Size.Height)
		return nil, nil

	case EventSelect:
		if ev.Element == nil {
			return nil, errors.New("select event has no element")
		}
		return nil, e.selectElement(*ev.Element)

	case EventCancel:
		e.dropHeld()
		return nil, nil

	case EventPointer:
		if ev.Pointer == nil {
			return nil, errors.New("pointer event has no payload")
		}
		return e.processPointer(*ev.Pointer)

	case EventResolved:
		if ev.Resolved == nil {
			return nil, errors.New("resolved event has no resolution")
		}
		return nil, e.processResolution(*ev.Resolved)

	default:
		return nil, errors.New("unknown event type: " + ev.Type.String())
	}
}

func (e *Engine) selectElement(el ir.Element) error {
	if e.state != Idle {
		return NewInvalidState(e.state, "select")
	}
	if !el.Valid() {
		return errors.New("select of invalid element")
	}
	el.Symbol = ir.Normalize(el.Symbol)
	e.held = &el
	e.state = Holding
	e.player.Play(sound.Plop)
	return nil
}

func (e *Engine) dropHeld() {
	if e.held != nil {
		slog.Debug("element returned to pool", "symbol", e.held.Symbol)
	}
	e.held = nil
	e.armed = nil
	e.state = Idle
}

func (e *Engine) processPointer(p PointerEvent) ([]Task, error) {
	e.pointer = canvas.Point{X: p.X, Y: p.Y}

	switch p.Action {
	case Move:
		if e.state == Idle && e.armed != nil {
			e.pickUp()
		}
		return nil, nil

	case Press:
		if e.state != Idle {
			return nil, nil
		}
		return e.press(p)

	case DoubleClick:
		if e.state != Idle {
			return nil, nil
		}
		if _, target, ok := e.canvas.HitTest(p.X, p.Y); ok {
			e.duplicate(target)
		}
		return nil, nil

	case Release:
		e.armed = nil
		// Terminals often report releases without a button.
		if e.held == nil || (p.Button != Primary && p.Button != ButtonNone) {
			return nil, nil
		}
		return e.drop(p.X, p.Y)

	default:
		return nil, errors.New("unknown pointer action: " + p.Action.String())
	}
}

func (e *Engine) press(p PointerEvent) ([]Task, error) {
	i, target, hit := e.canvas.HitTest(p.X, p.Y)

	switch p.Button {
	case Primary:
		if hit {
			e.player.Play(sound.Plop)
			e.armed = &target
		}
		return nil, nil

	case Secondary:
		if !hit {
			return nil, nil
		}
		e.player.Play(sound.Plop)
		e.canvas.RemoveIndex(i)
		return e.split(target)

	case Tertiary:
		e.player.Play(sound.Plop)
		if hit {
			e.duplicate(target)
		}
		return nil, nil

	default:
		return nil, nil
	}
}

// pickUp turns an armed press into a drag. The placement leaves the canvas
// and its element attaches to the pointer.
func (e *Engine) pickUp() {
	armed := *e.armed
	e.armed = nil

	i := e.canvas.IndexOf(armed)
	if i < 0 {
		return
	}
	e.canvas.RemoveIndex(i)
	el := armed.Element
	e.held = &el
	e.state = Dragging
	e.player.Play(sound.Plop)
}

func (e *Engine) drop(x, y int) ([]Task, error) {
	held := *e.held
	e.held = nil
	e.state = Idle

	candidate := canvas.Placement{Element: held, X: x, Y: y}
	if i, target, ok := e.canvas.FindOverlap(candidate); ok {
		e.canvas.RemoveIndex(i)
		return e.combine(target.Element, held, x, y)
	}

	if !e.canvas.OnCanvas(x, y) {
		slog.Debug("element returned to pool", "symbol", held.Symbol)
		return nil, nil
	}
	if !e.canvas.Add(candidate) {
		slog.Debug("placement rejected", "symbol", held.Symbol, "x", x, "y", y)
	}
	return nil, nil
}

func (e *Engine) duplicate(target canvas.Placement) {
	pos := e.canvas.Geometry().DuplicatePosition(target.X, target.Y)
	copied := canvas.Placement{Element: target.Element, X: pos.X, Y: pos.Y}
	if !e.canvas.Add(copied) {
		slog.Debug("duplicate rejected", "symbol", target.Element.Symbol, "x", pos.X, "y", pos.Y)
	}
}

// combine opens a placeholder at the drop point and either resolves from the
// cache immediately or issues a Task.
func (e *Engine) combine(a, b ir.Element, x, y int) ([]Task, error) {
	key := ir.CombineKey(a.Symbol, b.Symbol)
	id := e.pending.Begin(x, y)
	t := Task{Kind: TaskCombine, Key: key, Placeholder: id, X: x, Y: y, Seq: e.clock.Next()}

	if result, ok := e.cache.LookupCombine(key); ok {
		e.pending.End(id)
		e.finishCombine(result, x, y)
		return nil, nil
	}

	slog.Debug("combine issued", "key", key.String(), "placeholder", id, "seq", t.Seq)
	return []Task{t}, nil
}

// split opens a placeholder where target stood and either resolves from the
// cache immediately or issues a Task.
func (e *Engine) split(target canvas.Placement) ([]Task, error) {
	key := ir.SplitKey(target.Element.Symbol)
	id := e.pending.Begin(target.X, target.Y)
	t := Task{Kind: TaskSplit, Key: key, Placeholder: id, X: target.X, Y: target.Y, Seq: e.clock.Next()}

	if result, ok := e.cache.LookupSplit(key); ok {
		e.pending.End(id)
		e.finishSplit(result, target.X, target.Y)
		return nil, nil
	}

	slog.Debug("split issued", "key", key.String(), "placeholder", id, "seq", t.Seq)
	return []Task{t}, nil
}

func (e *Engine) processResolution(r Resolution) error {
	t := r.Task
	ph, open := e.pending.End(t.Placeholder)

	if r.Abandoned {
		slog.Debug("resolution abandoned", "key", t.Key.String(), "placeholder", t.Placeholder)
		return nil
	}

	cause := wrapOracleError(t.Key, r.Err)

	ctx := context.Background()
	var storeErr error
	switch t.Kind {
	case TaskCombine:
		storeErr = e.cache.StoreCombine(ctx, t.Key, r.Element)
	case TaskSplit:
		storeErr = e.cache.StoreSplit(ctx, t.Key, r.Pair)
	default:
		return errors.New("unknown task kind: " + t.Kind.String())
	}
	if storeErr != nil {
		slog.Warn("cache persistence failed", "key", t.Key.String(), "error", storeErr)
	}

	if !open {
		return NewUnknownPlaceholder(t.Key.String(), t.Placeholder)
	}

	switch t.Kind {
	case TaskCombine:
		e.finishCombine(r.Element, ph.X, ph.Y)
	case TaskSplit:
		e.finishSplit(r.Pair, ph.X, ph.Y)
	}
	return cause
}

func (e *Engine) finishCombine(result ir.Element, x, y int) {
	if result.IsTombstone() {
		e.player.Play(sound.Failure)
		return
	}
	e.place(result, x, y)
}

func (e *Engine) finishSplit(result ir.Pair, x, y int) {
	if result.IsTombstone() {
		e.player.Play(sound.Failure)
		return
	}
	left, right := e.canvas.Geometry().SplitPositions(x, y)
	e.place(result[0], left.X, left.Y)
	e.place(result[1], right.X, right.Y)
}

// place records el in the ledger, plays its cue and adds it to the canvas.
func (e *Engine) place(el ir.Element, x, y int) {
	visible := e.canvas.Visible(el.Symbol)
	out, err := e.ledger.Observe(context.Background(), el, visible, e.now())
	if err != nil {
		slog.Warn("ledger persistence failed", "symbol", el.Symbol, "error", err)
	}
	e.player.Play(out.Cue)

	p := canvas.Placement{Element: out.Element, X: x, Y: y}
	if !e.canvas.Add(p) {
		slog.Debug("placement rejected", "symbol", el.Symbol, "x", x, "y", y)
	}
}

// eventErrorLevel picks the log level for a processing failure. Oracle
// failures are expected in normal play, and a late resolution for a
// placeholder that is already closed is only worth a debug line.
func eventErrorLevel(err error) slog.Level {
	switch {
	case IsUnknownPlaceholder(err):
		return slog.LevelDebug
	case IsOracleFailure(err), IsMalformedResult(err), IsInvalidState(err):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// logEventError logs an event processing failure with the event's context.
func logEventError(ev Event, err error) {
	level := eventErrorLevel(err)

	attrs := []any{"error", err, "event_type", ev.Type.String()}
	switch ev.Type {
	case EventPointer:
		if ev.Pointer != nil {
			attrs = append(attrs,
				"action", ev.Pointer.Action.String(),
				"button", ev.Pointer.Button.String(),
				"x", ev.Pointer.X,
				"y", ev.Pointer.Y,
			)
		}
	case EventSelect:
		if ev.Element != nil {
			attrs = append(attrs, "symbol", ev.Element.Symbol)
		}
	case EventResolved:
		if ev.Resolved != nil {
			attrs = append(attrs,
				"task", ev.Resolved.Task.Kind.String(),
				"key", ev.Resolved.Task.Key.String(),
				"placeholder", ev.Resolved.Task.Placeholder,
				"seq", ev.Resolved.Task.Seq,
			)
		}
	}

	slog.Log(context.Background(), level, "event processing failed", attrs...)
}
