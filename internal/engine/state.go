package engine

import "fmt"

// State is the interaction state.
type State int

const (
	// Idle: nothing is attached to the pointer.
	Idle State = iota
	// Holding: a sidebar element is attached to the pointer, not yet placed.
	Holding
	// Dragging: a placed element was picked up and is attached to the pointer.
	Dragging
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
