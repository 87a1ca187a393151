package engine

import (
	"context"
	"fmt"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/oracle"
)

// TaskKind distinguishes combine from split tasks.
type TaskKind int

const (
	TaskCombine TaskKind = iota + 1
	TaskSplit
)

// String returns the task kind name.
func (k TaskKind) String() string {
	switch k {
	case TaskCombine:
		return "combine"
	case TaskSplit:
		return "split"
	default:
		return fmt.Sprintf("TaskKind(%d)", int(k))
	}
}

// Task is an oracle request awaiting resolution. Each task owns exactly one
// open placeholder.
type Task struct {
	Kind        TaskKind
	Key         ir.Key
	Placeholder string
	X, Y        int
	// Seq is the logical time the task was issued.
	Seq int64
}

// Resolution is the outcome of a Task. For combine tasks Element is set, for
// split tasks Pair is set. A failed resolution carries the tombstone and the
// cause in Err. An abandoned resolution is dropped without being cached.
type Resolution struct {
	Task      Task
	Element   ir.Element
	Pair      ir.Pair
	Err       error
	Abandoned bool
}

// Execute runs t against the oracle and returns the EventResolved to feed back
// into Process. It blocks for the duration of the oracle call and is safe to
// call from any goroutine.
func (e *Engine) Execute(ctx context.Context, t Task) Event {
	r := &Resolution{Task: t}
	switch t.Kind {
	case TaskCombine:
		r.Element, r.Err = oracle.ResolveCombine(ctx, e.oracle, t.Key.A, t.Key.B)
	case TaskSplit:
		r.Pair, r.Err = oracle.ResolveSplit(ctx, e.oracle, t.Key.A)
	default:
		r.Err = fmt.Errorf("unknown task kind %s", t.Kind)
	}
	r.Abandoned = abandoned(ctx, r.Err)
	return Event{Type: EventResolved, Resolved: r}
}

// abandoned reports whether a failed oracle call ended because the caller
// stopped waiting. A backend that times out on its own still tombstones.
func abandoned(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}
