package thicket

import "testing"

// --- Test scaffolding ---

// eventLog records events delivered to watched nodes as "name type" lines.
type eventLog struct {
	entries []string
	filter  func(ev *Event) bool
}

// watch installs bubble handlers on nodes that record into the log.
func (l *eventLog) watch(nodes ...*Node) {
	for _, n := range nodes {
		name := n.Name
		n.OnEvent = func(ev *Event) bool {
			if l.filter == nil || l.filter(ev) {
				l.entries = append(l.entries, name+" "+ev.Type.String())
			}
			return false
		}
	}
}

// take returns the recorded lines and clears the log.
func (l *eventLog) take() []string {
	out := l.entries
	l.entries = nil
	return out
}

func grabNotifyOnly(ev *Event) bool { return ev.IsCrossing() && ev.IsGrabNotify() }

func crossingsOnly(ev *Event) bool { return ev.IsCrossing() }

// newGrabTree builds
//
//	  stage
//	  ╱  ╲
//	 a    c
//	╱
//	b
//
// on a 100x100 stage: a and b cover the left half, c the right half. The
// mouse is moved onto b.
func newGrabTree(t *testing.T) (s *Stage, a, b, c *Node) {
	t.Helper()
	s = NewStage()
	a = NewHitArea("a", HitRect{Width: 50, Height: 100})
	b = NewHitArea("b", HitRect{Width: 50, Height: 100})
	c = NewHitArea("c", HitRect{Width: 50, Height: 100})
	c.X = 50
	s.Root().AddChild(a)
	a.AddChild(b)
	s.Root().AddChild(c)

	moveMouse(s, 25, 50)
	if !b.HasPointer() {
		t.Fatal("pointer did not enter b")
	}
	return s, a, b, c
}

var mouseID = Identity{Device: DeviceMouse}

func moveMouse(s *Stage, x, y float64) {
	s.ProcessEvent(Event{Type: EventMotion, Device: DeviceMouse, X: x, Y: y})
}

func pressMouse(s *Stage, x, y float64, button MouseButton) {
	s.ProcessEvent(Event{Type: EventButtonPress, Device: DeviceMouse, X: x, Y: y, Button: button})
}

func releaseMouse(s *Stage, x, y float64, button MouseButton) {
	s.ProcessEvent(Event{Type: EventButtonRelease, Device: DeviceMouse, X: x, Y: y, Button: button})
}

func touch(s *Stage, t EventType, seq SequenceID, x, y float64) {
	s.ProcessEvent(Event{Type: t, Device: DeviceTouchscreen, Sequence: seq, X: x, Y: y})
}

// gestureStates records every state change of gestures on a stage as
// "name OLD->NEW" lines.
type gestureStates struct {
	entries []string
}

func watchGestures(s *Stage) *gestureStates {
	gs := &gestureStates{}
	s.OnGestureStateChanged(func(c GestureStateChange) {
		gs.entries = append(gs.entries, c.Gesture.Name()+" "+c.OldState.String()+"->"+c.NewState.String())
	})
	return gs
}

func (gs *gestureStates) take() []string {
	out := gs.entries
	gs.entries = nil
	return out
}

// testGesture creates a gesture that accepts every sequence and leaves all
// recognition decisions to the test.
func testGesture(name string) *Gesture {
	g := NewGesture(name)
	g.ShouldHandleSequence = func(*Event) bool { return true }
	return g
}
