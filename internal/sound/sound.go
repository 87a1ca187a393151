// Package sound plays fire-and-forget audio cues keyed off outcome
// classification.
//
// A Sequencer is the single process-wide cue player. It is created once at
// startup and exposes Play; the plop rotation is internal to it.
package sound

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Kind is an audio cue.
type Kind int

const (
	// Plop acknowledges an ordinary action or an already-known result.
	Plop Kind = iota + 1
	// Discovery marks a symbol seen for the first time anywhere.
	Discovery
	// New marks a known symbol that is not currently on the canvas.
	New
	// Failure marks a tombstoned combine or split.
	Failure
)

// String returns the cue name used in logs and traces.
func (k Kind) String() string {
	switch k {
	case Plop:
		return "plop"
	case Discovery:
		return "discovery"
	case New:
		return "new"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Plop, Discovery, New, Failure} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown cue %q", s)
}

// Player plays a cue. Implementations must not block the caller.
type Player interface {
	Play(k Kind)
}

// Sink is an output device. Variant selects among recordings of the same
// kind; only Plop has more than one.
type Sink interface {
	Emit(k Kind, variant int)
}

// PlopVariants is the number of plop recordings rotated through.
const PlopVariants = 4

// Sequencer is a Player that rotates plops round-robin across variants.
//
// Thread-safety: Sequencer is safe for concurrent use.
type Sequencer struct {
	mu   sync.Mutex
	sink Sink
	next int
}

// NewSequencer creates a player that emits to sink. A nil sink discards cues.
func NewSequencer(sink Sink) *Sequencer {
	if sink == nil {
		sink = Discard{}
	}
	return &Sequencer{sink: sink}
}

// Play implements Player.
func (s *Sequencer) Play(k Kind) {
	variant := 0
	s.mu.Lock()
	if k == Plop {
		variant = s.next
		s.next = (s.next + 1) % PlopVariants
	}
	s.mu.Unlock()

	s.sink.Emit(k, variant)
}

// Discard drops every cue.
type Discard struct{}

// Emit implements Sink.
func (Discard) Emit(Kind, int) {}

// Bell rings the terminal bell for discovery and failure cues.
// Plop and New are silent: a bell on every drop is noise.
type Bell struct {
	W io.Writer
}

// Emit implements Sink.
func (b Bell) Emit(k Kind, _ int) {
	if k != Discovery && k != Failure {
		return
	}
	if _, err := io.WriteString(b.W, "\a"); err != nil {
		slog.Debug("bell write failed", "error", err)
	}
}

// Log records each cue at debug level.
type Log struct{}

// Emit implements Sink.
func (Log) Emit(k Kind, variant int) {
	slog.Debug("cue", "kind", k.String(), "variant", variant)
}

// Tee emits to every sink in order.
type Tee []Sink

// Emit implements Sink.
func (t Tee) Emit(k Kind, variant int) {
	for _, s := range t {
		s.Emit(k, variant)
	}
}
