package engine

import "sync"

// inbox collects events posted from input readers and task goroutines for
// the Run loop, which takes them in batches.
//
// It is unbounded so a task goroutine never blocks on a busy loop.
type inbox struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event
	closed  bool
	ready   chan struct{} // buffered, size 1; closed by Close
}

func newInbox() *inbox {
	return &inbox{ready: make(chan struct{}, 1)}
}

// Post appends ev. It reports false once the inbox is closed.
func (b *inbox) Post(ev Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.pending = append(b.pending, ev)
	select {
	case b.ready <- struct{}{}:
	default:
	}
	return true
}

// Take removes and returns every posted event in arrival order, or nil.
// The returned slice is only valid until the next Take.
func (b *inbox) Take() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	batch := b.pending
	clear(b.spare)
	b.pending, b.spare = b.spare[:0], batch
	return batch
}

// Ready fires after a Post, and stays fired once the inbox is closed.
func (b *inbox) Ready() <-chan struct{} {
	return b.ready
}

// Len reports how many events wait to be taken.
func (b *inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Done reports whether the inbox is closed and nothing is left to take.
func (b *inbox) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed && len(b.pending) == 0
}

// Close refuses further posts. Safe to call twice.
func (b *inbox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ready)
	}
}
