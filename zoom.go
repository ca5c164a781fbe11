package thicket

import "math"

// ZoomGesture recognizes a two-finger pinch. Once the distance between the
// fingers changes by more than the begin threshold it reports scale and
// rotation relative to where the fingers started.
type ZoomGesture struct {
	Gesture

	// OnZoom fires on every move of either finger while recognizing.
	OnZoom func()

	beginThreshold    float64
	beginThresholdSet bool

	tracking     bool
	initialDist  float64
	initialAngle float64
	prevDist     float64
	prevAngle    float64

	center     Vec2
	scale      float64
	scaleDelta float64
	rotation   float64
	rotDelta   float64
}

// NewZoomGesture creates a pinch gesture.
func NewZoomGesture(name string) *ZoomGesture {
	z := &ZoomGesture{scale: 1}
	z.Init(name, z)
	z.ShouldHandleSequence = func(begin *Event) bool {
		return begin.Type == EventTouchBegin
	}
	z.PointBegan = z.pointBegan
	z.PointMoved = z.pointMoved
	z.PointEnded = z.pointEnded
	z.StateChanged = z.stateChanged
	return z
}

// SetBeginThreshold sets the relative change in finger distance needed
// before the zoom is recognized; 0.05 is five percent.
func (z *ZoomGesture) SetBeginThreshold(ratio float64) {
	if ratio < 0 {
		ratio = 0
	}
	z.beginThreshold = ratio
	z.beginThresholdSet = true
}

// BeginThreshold returns the threshold in effect: the explicit one, or the
// stage's zoom.begin_threshold.
func (z *ZoomGesture) BeginThreshold() float64 {
	if z.beginThresholdSet {
		return z.beginThreshold
	}
	return z.config().Zoom.BeginThreshold
}

// Center returns the midpoint between the fingers in stage coordinates.
func (z *ZoomGesture) Center() Vec2 { return z.center }

// Scale returns the finger distance relative to the starting distance.
func (z *ZoomGesture) Scale() float64 { return z.scale }

// ScaleDelta returns the relative change of the latest update.
func (z *ZoomGesture) ScaleDelta() float64 { return z.scaleDelta }

// Rotation returns the angle in radians turned since the fingers started.
func (z *ZoomGesture) Rotation() float64 { return z.rotation }

// RotationDelta returns the angle turned in the latest update.
func (z *ZoomGesture) RotationDelta() float64 { return z.rotDelta }

// measure returns the midpoint, distance and angle of the first two points.
func (z *ZoomGesture) measure() (center Vec2, dist, angle float64, ok bool) {
	points := z.Points()
	if len(points) != 2 {
		return Vec2{}, 0, 0, false
	}
	p0 := z.PointCoordsAbs(points[0])
	p1 := z.PointCoordsAbs(points[1])
	center = Vec2{(p0.X + p1.X) / 2, (p0.Y + p1.Y) / 2}
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	return center, math.Sqrt(dx*dx + dy*dy), math.Atan2(dy, dx), true
}

func (z *ZoomGesture) pointBegan(int) {
	n := z.NPoints()
	if n > 2 {
		if z.State() == GesturePossible {
			z.Cancel()
		}
		return
	}
	if n != 2 {
		return
	}
	center, dist, angle, _ := z.measure()
	z.tracking = true
	z.center = center
	z.initialDist, z.prevDist = dist, dist
	z.initialAngle, z.prevAngle = angle, angle
	z.scale, z.scaleDelta = 1, 0
	z.rotation, z.rotDelta = 0, 0
}

func (z *ZoomGesture) pointMoved(int) {
	if !z.tracking {
		return
	}
	center, dist, angle, ok := z.measure()
	if !ok {
		return
	}
	z.center = center
	z.scale = 1
	if z.initialDist > 0 {
		z.scale = dist / z.initialDist
	}
	z.scaleDelta = 0
	if z.prevDist > 0 {
		z.scaleDelta = dist/z.prevDist - 1
	}
	z.rotation = normalizeAngle(angle - z.initialAngle)
	z.rotDelta = normalizeAngle(angle - z.prevAngle)
	z.prevDist = dist
	z.prevAngle = angle

	if z.State() == GesturePossible && math.Abs(z.scale-1) >= z.BeginThreshold() {
		z.Recognize()
	}
	if z.State() == GestureRecognizing && z.OnZoom != nil {
		z.OnZoom()
	}
}

func (z *ZoomGesture) pointEnded(int) {
	// Lifting either finger ends the pinch.
	switch {
	case z.State() == GestureRecognizing:
		z.Complete()
	case z.NPoints() == 1:
		z.Cancel()
	default:
		z.tracking = false
	}
}

func (z *ZoomGesture) stateChanged(_, newState GestureState) {
	if newState != GestureWaiting {
		return
	}
	z.tracking = false
	z.scale, z.scaleDelta = 1, 0
	z.rotation, z.rotDelta = 0, 0
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
