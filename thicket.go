package thicket

import "math"

// Vec2 is a 2D vector used for positions, offsets and pointer coordinates.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Len returns the length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

// KeyModifiers is a bitmask of keyboard modifier keys held during an event.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Phase selects whether an action runs on the capture (root towards target)
// or bubble (target towards root) pass of an emission.
type Phase uint8

const (
	PhaseBubble Phase = iota
	PhaseCapture
)

func (p Phase) String() string {
	if p == PhaseCapture {
		return "capture"
	}
	return "bubble"
}

// DeviceID identifies a logical input device (a mouse, a touchscreen, a keyboard).
type DeviceID uint32

// SequenceID identifies one touch contact. Zero means "no sequence": the
// identity is a pointer device rather than a touch point.
type SequenceID uint32

// Identity is the (device, sequence) pair that owns one pointer focus.
type Identity struct {
	Device   DeviceID
	Sequence SequenceID
}

// IsTouch reports whether the identity is a touch sequence.
func (id Identity) IsTouch() bool { return id.Sequence != 0 }

// Devices reported by EbitenInput and by injected input.
const (
	DeviceMouse       DeviceID = 1
	DeviceTouchscreen DeviceID = 2
	DeviceKeyboard    DeviceID = 3
)
