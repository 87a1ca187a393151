package testutil

import (
	"context"
	"sync"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/oracle"
	"github.com/roach88/elemental/internal/sound"
)

// OracleCall is one recorded oracle request.
type OracleCall struct {
	Op   string
	Args []string
}

// RecordingOracle wraps an oracle and records every call made through it.
//
// Thread-safety: safe for concurrent use.
type RecordingOracle struct {
	next oracle.Oracle

	mu    sync.Mutex
	calls []OracleCall
}

// NewRecordingOracle wraps next. A nil next answers every call with
// oracle.ErrUnknown.
func NewRecordingOracle(next oracle.Oracle) *RecordingOracle {
	if next == nil {
		next = oracle.NewTable()
	}
	return &RecordingOracle{next: next}
}

// Combine implements oracle.Oracle.
func (r *RecordingOracle) Combine(ctx context.Context, a, b string) (ir.Element, error) {
	r.record("combine", a, b)
	return r.next.Combine(ctx, a, b)
}

// Split implements oracle.Oracle.
func (r *RecordingOracle) Split(ctx context.Context, symbol string) ([]ir.Element, error) {
	r.record("split", symbol)
	return r.next.Split(ctx, symbol)
}

func (r *RecordingOracle) record(op string, args ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, OracleCall{Op: op, Args: args})
}

// Calls returns a copy of the recorded calls in order.
func (r *RecordingOracle) Calls() []OracleCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]OracleCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of recorded calls.
func (r *RecordingOracle) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// RecordingPlayer records every cue played.
//
// Thread-safety: safe for concurrent use.
type RecordingPlayer struct {
	mu   sync.Mutex
	cues []sound.Kind
}

// Play implements sound.Player.
func (p *RecordingPlayer) Play(k sound.Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues = append(p.cues, k)
}

// Cues returns a copy of the played cues in order.
func (p *RecordingPlayer) Cues() []sound.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sound.Kind, len(p.cues))
	copy(out, p.cues)
	return out
}

// Last returns the most recent cue, or zero if none was played.
func (p *RecordingPlayer) Last() sound.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.cues) == 0 {
		return 0
	}
	return p.cues[len(p.cues)-1]
}

// Reset forgets all recorded cues.
func (p *RecordingPlayer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues = nil
}
