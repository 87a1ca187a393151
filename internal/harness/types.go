package harness

import (
	"fmt"

	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/sound"
)

// TraceEvent records one applied step and the state right after it.
type TraceEvent struct {
	Step    int      `json:"step"`
	Action  string   `json:"action"`
	State   string   `json:"state"`
	Canvas  []string `json:"canvas"`  // "Symbol@x,y" in placement order
	Cues    []string `json:"cues"`    // cues played by this step
	Tasks   []string `json:"tasks"`   // oracle requests issued by this step
	Pending int      `json:"pending"` // open placeholders after this step
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Cues is every cue played during the run.
	Cues []sound.Kind `json:"-"`

	// Final is the engine view after the last step.
	Final engine.View `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step record.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Step = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}

func canvasLabels(v engine.View) []string {
	out := make([]string, 0, len(v.Placements))
	for _, p := range v.Placements {
		out = append(out, fmt.Sprintf("%s@%d,%d", p.Element.Symbol, p.X, p.Y))
	}
	return out
}

func cueNames(cues []sound.Kind) []string {
	out := make([]string, 0, len(cues))
	for _, c := range cues {
		out = append(out, c.String())
	}
	return out
}
