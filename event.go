package thicket

import "github.com/hajimehoshi/ebiten/v2"

// EventType identifies the kind of an input event.
type EventType uint8

const (
	EventNothing EventType = iota
	EventMotion
	EventButtonPress
	EventButtonRelease
	EventScroll
	EventEnter
	EventLeave
	EventTouchBegin
	EventTouchUpdate
	EventTouchEnd
	EventTouchCancel
	EventKeyPress
	EventKeyRelease
	EventFocusIn
	EventFocusOut
)

var eventTypeNames = [...]string{
	EventNothing:       "nothing",
	EventMotion:        "motion",
	EventButtonPress:   "button-press",
	EventButtonRelease: "button-release",
	EventScroll:        "scroll",
	EventEnter:         "enter",
	EventLeave:         "leave",
	EventTouchBegin:    "touch-begin",
	EventTouchUpdate:   "touch-update",
	EventTouchEnd:      "touch-end",
	EventTouchCancel:   "touch-cancel",
	EventKeyPress:      "key-press",
	EventKeyRelease:    "key-release",
	EventFocusIn:       "focus-in",
	EventFocusOut:      "focus-out",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// EventFlags carries per-event markers.
type EventFlags uint8

const (
	// FlagSynthetic marks events that do not come straight from a device:
	// focus notifications, or pointer events a backend emulates from
	// another device. Gestures ignore them.
	FlagSynthetic EventFlags = 1 << iota
	// FlagGrabNotify marks crossing events caused by a grab change instead
	// of pointer motion.
	FlagGrabNotify
)

// Event is a normalized input event. Events are plain values; the router
// copies them freely and gestures keep their own copies per sequence.
type Event struct {
	Type  EventType
	Flags EventFlags
	// Time is the event timestamp in milliseconds.
	Time uint32

	Device       DeviceID
	SourceDevice DeviceID
	Sequence     SequenceID

	// X and Y are stage coordinates.
	X, Y float64
	// DX and DY hold scroll deltas for EventScroll.
	DX, DY float64

	Button    MouseButton
	Modifiers KeyModifiers
	Key       ebiten.Key

	// Source is the node the event is targeted at. For crossing events it
	// is the node being entered or left.
	Source *Node
	// Related is the other side of a crossing: the node left when entering,
	// or the node entered when leaving.
	Related *Node
}

// Identity returns the (device, sequence) pair of the event.
func (e *Event) Identity() Identity {
	return Identity{Device: e.Device, Sequence: e.Sequence}
}

// Position returns the stage coordinates of the event.
func (e *Event) Position() Vec2 { return Vec2{e.X, e.Y} }

// IsSynthetic reports whether the event carries FlagSynthetic.
func (e *Event) IsSynthetic() bool { return e.Flags&FlagSynthetic != 0 }

// IsGrabNotify reports whether the crossing was caused by a grab change.
func (e *Event) IsGrabNotify() bool { return e.Flags&FlagGrabNotify != 0 }

// IsPointer reports whether the event is positional.
func (e *Event) IsPointer() bool {
	switch e.Type {
	case EventMotion, EventButtonPress, EventButtonRelease, EventScroll,
		EventEnter, EventLeave,
		EventTouchBegin, EventTouchUpdate, EventTouchEnd, EventTouchCancel:
		return true
	}
	return false
}

// IsCrossing reports whether the event is an enter or leave.
func (e *Event) IsCrossing() bool {
	return e.Type == EventEnter || e.Type == EventLeave
}

// IsSequenceBegin reports whether the event starts an input sequence: a
// button press or a touch begin.
func (e *Event) IsSequenceBegin() bool {
	return e.Type == EventButtonPress || e.Type == EventTouchBegin
}

// IsSequenceEnd reports whether the event ends an input sequence: a button
// release, a touch end or a touch cancel.
func (e *Event) IsSequenceEnd() bool {
	switch e.Type {
	case EventButtonRelease, EventTouchEnd, EventTouchCancel:
		return true
	}
	return false
}
