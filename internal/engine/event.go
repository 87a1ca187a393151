package engine

import (
	"fmt"

	"github.com/roach88/elemental/internal/ir"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventResize sets the canvas surface size.
	EventResize EventType = iota + 1
	// EventSelect attaches a sidebar element to the pointer.
	EventSelect
	// EventPointer is a raw pointer event on the surface.
	EventPointer
	// EventCancel returns any attached element to the pool.
	EventCancel
	// EventResolved carries the outcome of a Task.
	EventResolved
)

// String returns the event type name used in logs.
func (t EventType) String() string {
	switch t {
	case EventResize:
		return "resize"
	case EventSelect:
		return "select"
	case EventPointer:
		return "pointer"
	case EventCancel:
		return "cancel"
	case EventResolved:
		return "resolved"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Action is what the pointer did.
type Action int

const (
	Press Action = iota + 1
	Release
	Move
	DoubleClick
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	case Move:
		return "move"
	case DoubleClick:
		return "double-click"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Button identifies a pointer button. ButtonNone is used for moves.
type Button int

const (
	ButtonNone Button = iota
	Primary
	Secondary
	Tertiary
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Tertiary:
		return "tertiary"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// PointerEvent is a pointer action at a surface coordinate.
type PointerEvent struct {
	Action Action
	Button Button
	X, Y   int
}

// Size is a surface size.
type Size struct {
	Width, Height int
}

// Event wraps every input to the state machine.
// Exactly one payload field is set, matching Type.
type Event struct {
	Type     EventType
	Pointer  *PointerEvent
	Size     *Size
	Element  *ir.Element
	Resolved *Resolution
}

// ResizeEvent creates an EventResize.
func ResizeEvent(width, height int) Event {
	return Event{Type: EventResize, Size: &Size{Width: width, Height: height}}
}

// SelectEvent creates an EventSelect for e.
func SelectEvent(e ir.Element) Event {
	return Event{Type: EventSelect, Element: &e}
}

// PointerAt creates an EventPointer.
func PointerAt(action Action, button Button, x, y int) Event {
	return Event{Type: EventPointer, Pointer: &PointerEvent{Action: action, Button: button, X: x, Y: y}}
}

// CancelEvent creates an EventCancel.
func CancelEvent() Event {
	return Event{Type: EventCancel}
}
