package thicket

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// pressOnlyGesture tracks mouse presses only.
func pressOnlyGesture(name string) *Gesture {
	g := NewGesture(name)
	g.ShouldHandleSequence = func(ev *Event) bool { return ev.Type == EventButtonPress }
	return g
}

func expectState(t *testing.T, g *Gesture, want GestureState) {
	t.Helper()
	if got := g.State(); got != want {
		t.Errorf("%s state = %s, want %s", g.Name(), got, want)
	}
}

func expectPoints(t *testing.T, g *Gesture, want int) {
	t.Helper()
	if got := g.NPoints(); got != want {
		t.Errorf("%s NPoints = %d, want %d", g.Name(), got, want)
	}
}

// firstStateChange records the first state a gesture moves to.
func firstStateChange(g *Gesture) *GestureState {
	var (
		got  = new(GestureState)
		seen bool
		prev = g.StateChanged
	)
	*got = numGestureStates
	g.StateChanged = func(old, next GestureState) {
		if !seen {
			seen = true
			*got = next
		}
		if prev != nil {
			prev(old, next)
		}
	}
	return got
}

// --- State machine ---

func TestGestureStateString(t *testing.T) {
	tests := []struct {
		s    GestureState
		want string
	}{
		{GestureWaiting, "WAITING"},
		{GesturePossible, "POSSIBLE"},
		{GestureRecognizing, "RECOGNIZING"},
		{GestureCompleted, "COMPLETED"},
		{GestureCancelled, "CANCELLED"},
		{GestureState(42), "INVALID"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("GestureState(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestGestureMoveToWaiting(t *testing.T) {
	s := NewStage()
	g := pressOnlyGesture("g")
	expectState(t, g, GestureWaiting)
	s.Root().AddAction(g)
	expectState(t, g, GestureWaiting)

	moveMouse(s, 15, 15)
	pressMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g, GesturePossible)
	expectPoints(t, g, 1)

	g.Cancel()
	expectState(t, g, GestureCancelled)
	expectPoints(t, g, 1)

	pressMouse(s, 15, 15, MouseButtonRight)
	expectState(t, g, GestureCancelled)
	expectPoints(t, g, 1)

	releaseMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g, GestureCancelled)
	expectPoints(t, g, 1)

	releaseMouse(s, 15, 15, MouseButtonRight)
	expectState(t, g, GestureWaiting)
	expectPoints(t, g, 0)
	if len(s.ActiveGestures()) != 0 {
		t.Errorf("ActiveGestures = %d, want 0", len(s.ActiveGestures()))
	}
}

func TestGestureCancelledWhilePossible(t *testing.T) {
	s := NewStage()
	g := pressOnlyGesture("g")
	s.Root().AddAction(g)
	states := watchGestures(s)

	pressMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g, GesturePossible)
	releaseMouse(s, 15, 15, MouseButtonLeft)

	want := []string{"g WAITING->POSSIBLE", "g POSSIBLE->CANCELLED", "g CANCELLED->WAITING"}
	if diff := cmp.Diff(want, states.take()); diff != "" {
		t.Errorf("state changes (-want +got):\n%s", diff)
	}
	expectPoints(t, g, 0)
}

func TestGestureCancelledOnGrab(t *testing.T) {
	s := NewStage()
	second := NewHitArea("second", HitRect{Width: 20, Height: 20})
	s.Root().AddChild(second)
	g := pressOnlyGesture("g")
	s.Root().AddAction(g)

	pressMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g, GesturePossible)
	g.Recognize()
	expectState(t, g, GestureRecognizing)

	first := firstStateChange(g)
	grab := s.Grab(second)
	if *first != GestureCancelled {
		t.Errorf("first state change = %s, want CANCELLED", *first)
	}
	expectState(t, g, GestureWaiting)
	expectPoints(t, g, 0)

	releaseMouse(s, 15, 15, MouseButtonLeft)
	grab.Dismiss()
}

func TestGestureMultipleMouseButtons(t *testing.T) {
	s := NewStage()
	g := pressOnlyGesture("g")
	s.Root().AddAction(g)

	pressMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g, GesturePossible)
	expectPoints(t, g, 1)

	moveMouse(s, 5, 5)
	pressMouse(s, 5, 5, MouseButtonRight)
	expectPoints(t, g, 1)

	moveMouse(s, 15, 15)
	releaseMouse(s, 15, 15, MouseButtonLeft)
	expectPoints(t, g, 1)

	releaseMouse(s, 15, 15, MouseButtonRight)
	expectPoints(t, g, 0)

	// Nothing to cancel; ignored silently.
	g.Cancel()
	expectState(t, g, GestureWaiting)
}

func TestGestureDisposedNodeWhileActive(t *testing.T) {
	s := NewStage()
	second := NewHitArea("second", HitRect{Width: 20, Height: 20})
	second.X = 15
	s.Root().AddChild(second)
	g := pressOnlyGesture("g")
	second.AddAction(g)

	pressMouse(s, 15, 15, MouseButtonLeft)
	g.Recognize()
	expectState(t, g, GestureRecognizing)

	second.Dispose()
	expectState(t, g, GestureWaiting)
	if g.Node() != nil {
		t.Error("gesture still attached to a disposed node")
	}
	if len(s.ActiveGestures()) != 0 {
		t.Errorf("ActiveGestures = %d, want 0", len(s.ActiveGestures()))
	}
	releaseMouse(s, 15, 15, MouseButtonLeft)
}

func TestGestureIllegalSetState(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	s.Root().AddAction(g)

	g.Recognize()
	expectState(t, g, GestureWaiting)
	g.SetState(GesturePossible)
	expectState(t, g, GestureWaiting)

	pressMouse(s, 10, 10, MouseButtonLeft)
	g.SetState(GestureWaiting)
	expectState(t, g, GesturePossible)

	g.Complete()
	expectState(t, g, GestureCompleted)
	g.Recognize()
	expectState(t, g, GestureCompleted)

	releaseMouse(s, 10, 10, MouseButtonLeft)
	expectState(t, g, GestureWaiting)
}

func TestGestureSignals(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	s.Root().AddAction(g)

	var got []string
	g.OnRecognize = func() { got = append(got, "recognize") }
	g.OnEnd = func() { got = append(got, "end") }
	g.OnCancel = func() { got = append(got, "cancel") }

	// Recognize then complete.
	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Recognize()
	g.Complete()
	releaseMouse(s, 10, 10, MouseButtonLeft)

	// Complete straight from POSSIBLE.
	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Complete()
	releaseMouse(s, 10, 10, MouseButtonLeft)

	// Recognize then cancel.
	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Recognize()
	g.Cancel()
	releaseMouse(s, 10, 10, MouseButtonLeft)

	// Cancel while POSSIBLE: no signal.
	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Cancel()
	releaseMouse(s, 10, 10, MouseButtonLeft)

	want := []string{"recognize", "end", "recognize", "recognize", "cancel"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("signals (-want +got):\n%s", diff)
	}
}

func TestGestureMayRecognizeVeto(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	allow := false
	g.MayRecognize = func() bool { return allow }
	s.Root().AddAction(g)

	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Recognize()
	expectState(t, g, GestureCancelled)
	releaseMouse(s, 10, 10, MouseButtonLeft)
	expectState(t, g, GestureWaiting)

	allow = true
	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Recognize()
	expectState(t, g, GestureRecognizing)
	g.Complete()
	releaseMouse(s, 10, 10, MouseButtonLeft)
}

func TestGestureRecognizeClaimsSequence(t *testing.T) {
	s := NewStage()
	n := NewHitArea("n", HitRect{Width: 100, Height: 100})
	s.Root().AddChild(n)
	g := testGesture("g")
	n.AddAction(g)

	var nodeEvents []EventType
	n.OnEvent = func(ev *Event) bool {
		if !ev.IsCrossing() {
			nodeEvents = append(nodeEvents, ev.Type)
		}
		return false
	}

	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Recognize()
	moveMouse(s, 20, 20)
	releaseMouse(s, 20, 20, MouseButtonLeft)

	if diff := cmp.Diff([]EventType{EventButtonPress}, nodeEvents); diff != "" {
		t.Errorf("node events after recognize (-want +got):\n%s", diff)
	}
	expectState(t, g, GestureWaiting)

	// The next sequence reaches the node again.
	nodeEvents = nil
	pressMouse(s, 20, 20, MouseButtonLeft)
	if len(nodeEvents) != 1 {
		t.Errorf("node events on new sequence = %v, want one press", nodeEvents)
	}
	releaseMouse(s, 20, 20, MouseButtonLeft)
}

func TestGestureIgnoresSyntheticEvents(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	moved := 0
	g.PointMoved = func(int) { moved++ }
	s.Root().AddAction(g)

	pressMouse(s, 10, 10, MouseButtonLeft)
	s.ProcessEvent(Event{Type: EventMotion, Flags: FlagSynthetic, Device: DeviceMouse, X: 20, Y: 20})
	moveMouse(s, 30, 30)
	if moved != 1 {
		t.Errorf("PointMoved called %d times, want 1", moved)
	}
	releaseMouse(s, 30, 30, MouseButtonLeft)
}

func TestGesturePointCoords(t *testing.T) {
	s := NewStage()
	n := NewHitArea("n", HitRect{Width: 100, Height: 100})
	n.X, n.Y = 10, 10
	s.Root().AddChild(n)
	g := testGesture("g")
	n.AddAction(g)

	var checked bool
	g.PointMoved = func(p int) {
		if p != 0 {
			t.Errorf("point = %d, want 0", p)
		}
		if got := g.PointBeginCoordsAbs(p); got != (Vec2{20, 20}) {
			t.Errorf("PointBeginCoordsAbs = %v, want {20 20}", got)
		}
		if got := g.PointCoords(-1); got != (Vec2{30, 40}) {
			t.Errorf("PointCoords = %v, want {30 40}", got)
		}
		if got := g.PointPreviousCoordsAbs(p); got != (Vec2{20, 20}) {
			t.Errorf("PointPreviousCoordsAbs = %v, want {20 20}", got)
		}
		if got := g.PointIdentity(p); got != mouseID {
			t.Errorf("PointIdentity = %v, want %v", got, mouseID)
		}
		if got := g.PointEvent(p).Type; got != EventMotion {
			t.Errorf("PointEvent type = %s, want motion", got)
		}
		checked = true
	}

	pressMouse(s, 20, 20, MouseButtonLeft)
	moveMouse(s, 40, 50)
	if !checked {
		t.Fatal("PointMoved not called")
	}
	if diff := cmp.Diff([]int{0}, g.Points()); diff != "" {
		t.Errorf("Points (-want +got):\n%s", diff)
	}
	releaseMouse(s, 40, 50, MouseButtonLeft)
}

// --- Attachment ---

func TestGestureDisableWhileTracking(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	s.Root().AddAction(g)

	pressMouse(s, 10, 10, MouseButtonLeft)
	expectState(t, g, GesturePossible)
	g.SetEnabled(false)
	expectState(t, g, GestureWaiting)
	releaseMouse(s, 10, 10, MouseButtonLeft)

	pressMouse(s, 10, 10, MouseButtonLeft)
	expectState(t, g, GestureWaiting)
	releaseMouse(s, 10, 10, MouseButtonLeft)

	g.SetEnabled(true)
	pressMouse(s, 10, 10, MouseButtonLeft)
	expectState(t, g, GesturePossible)
	releaseMouse(s, 10, 10, MouseButtonLeft)
}

func TestGestureRemovedWhileTracking(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	s.Root().AddAction(g)

	pressMouse(s, 10, 10, MouseButtonLeft)
	g.Recognize()
	s.Root().RemoveAction(g)
	expectState(t, g, GestureWaiting)
	if len(s.ActiveGestures()) != 0 {
		t.Errorf("ActiveGestures = %d, want 0", len(s.ActiveGestures()))
	}
	releaseMouse(s, 10, 10, MouseButtonLeft)
}

func TestGestureRejectsOtherSourceDevice(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	s.Root().AddAction(g)

	touch(s, EventTouchBegin, 1, 10, 10)
	pressMouse(s, 20, 20, MouseButtonLeft)
	expectPoints(t, g, 1)
	if g.PointIdentity(0).Device != DeviceTouchscreen {
		t.Error("tracked point should be the touch")
	}
	releaseMouse(s, 20, 20, MouseButtonLeft)
	touch(s, EventTouchEnd, 1, 10, 10)
	expectState(t, g, GestureWaiting)
}

func TestGestureTouchCancel(t *testing.T) {
	s := NewStage()
	g := testGesture("g")
	s.Root().AddAction(g)

	touch(s, EventTouchBegin, 1, 10, 10)
	g.Recognize()
	touch(s, EventTouchCancel, 1, 10, 10)
	expectState(t, g, GestureWaiting)
	if s.Pointer(Identity{Device: DeviceTouchscreen, Sequence: 1}) != nil {
		t.Error("cancelled touch identity not removed")
	}
}

// --- Arbitration between independent gestures ---

func TestIndependentGestureCancelledOnRecognize(t *testing.T) {
	s := NewStage()
	left := NewHitArea("left", HitRect{Width: 50, Height: 100})
	right := NewHitArea("right", HitRect{Width: 50, Height: 100})
	right.X = 50
	s.Root().AddChild(left)
	s.Root().AddChild(right)
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	left.AddAction(g1)
	right.AddAction(g2)

	touch(s, EventTouchBegin, 1, 10, 10)
	touch(s, EventTouchBegin, 2, 60, 10)
	expectState(t, g1, GesturePossible)
	expectState(t, g2, GesturePossible)
	if g1.IsRelatedTo(g2) {
		t.Error("gestures on different sequences should not be related")
	}

	g1.Recognize()
	expectState(t, g1, GestureRecognizing)
	expectState(t, g2, GestureCancelled)

	touch(s, EventTouchEnd, 2, 60, 10)
	expectState(t, g2, GestureWaiting)
	g1.Complete()
	touch(s, EventTouchEnd, 1, 10, 10)
	expectState(t, g1, GestureWaiting)
}

func TestNewGestureCancelledWhileOtherRecognizes(t *testing.T) {
	s := NewStage()
	left := NewHitArea("left", HitRect{Width: 50, Height: 100})
	right := NewHitArea("right", HitRect{Width: 50, Height: 100})
	right.X = 50
	s.Root().AddChild(left)
	s.Root().AddChild(right)
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	left.AddAction(g1)
	right.AddAction(g2)

	touch(s, EventTouchBegin, 1, 10, 10)
	g1.Recognize()

	first := firstStateChange(g2)
	touch(s, EventTouchBegin, 2, 60, 10)
	if *first != GesturePossible {
		t.Errorf("first g2 state = %s, want POSSIBLE", *first)
	}
	expectState(t, g2, GestureCancelled)
	expectPoints(t, g2, 0)

	touch(s, EventTouchEnd, 2, 60, 10)
	expectState(t, g2, GestureWaiting)
	expectState(t, g1, GestureRecognizing)
	g1.Complete()
	touch(s, EventTouchEnd, 1, 10, 10)
}

// --- Relationships ---

func TestGestureRelationshipDisposeDespiteRelationship(t *testing.T) {
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	g1.CanNotCancel(g2)
	if _, ok := g2.canNotCancelBy[g1]; !ok {
		t.Fatal("CanNotCancel should record the reverse link")
	}

	g2.Dispose()
	if len(g1.canNotCancel) != 0 {
		t.Error("disposing g2 should drop g1's link to it")
	}
	g1.Dispose()
}

func TestGestureRelationshipCancelOnRecognize(t *testing.T) {
	s := NewStage()
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	s.Root().AddAction(g1)
	s.Root().AddAction(g2)

	pressMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g1, GesturePossible)
	expectState(t, g2, GesturePossible)
	if !g1.IsRelatedTo(g2) || !g2.IsRelatedTo(g1) {
		t.Fatal("gestures sharing a sequence should be related")
	}

	g1.Recognize()
	expectState(t, g1, GestureRecognizing)
	expectState(t, g2, GestureCancelled)

	g1.Complete()
	releaseMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g1, GestureWaiting)
	expectState(t, g2, GestureWaiting)
	if g1.IsRelatedTo(g2) || g2.IsRelatedTo(g1) {
		t.Error("relationship should be torn down in WAITING")
	}
}

func TestGestureRelationshipSimple(t *testing.T) {
	s := NewStage()
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	s.Root().AddAction(g1)
	s.Root().AddAction(g2)

	pressMouse(s, 15, 15, MouseButtonLeft)

	var recognized, cancelled bool
	g2.OnRecognize = func() { recognized = true }
	g1.OnCancel = func() { cancelled = true }

	g2.Complete()
	if !recognized {
		t.Error("g2 OnRecognize not called")
	}
	if cancelled {
		t.Error("g1 OnCancel called although g1 was never recognizing")
	}
	expectState(t, g1, GestureCancelled)
	expectState(t, g2, GestureCompleted)

	releaseMouse(s, 15, 15, MouseButtonLeft)
	expectState(t, g1, GestureWaiting)
	expectState(t, g2, GestureWaiting)
}

func TestGestureRelationshipTwoPoints(t *testing.T) {
	s := NewStage()
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	s.Root().AddAction(g1)
	s.Root().AddAction(g2)

	touch(s, EventTouchBegin, 1, 15, 15)
	touch(s, EventTouchBegin, 2, 15, 20)
	expectState(t, g1, GesturePossible)
	expectState(t, g2, GesturePossible)

	g1.Complete()
	expectState(t, g1, GestureCompleted)
	expectState(t, g2, GestureCancelled)

	touch(s, EventTouchEnd, 2, 15, 20)
	expectState(t, g1, GestureCompleted)
	expectState(t, g2, GestureCancelled)

	touch(s, EventTouchEnd, 1, 15, 15)
	expectState(t, g1, GestureWaiting)
	expectState(t, g2, GestureWaiting)
}

func TestGestureRelationshipNegotiatedOncePerPair(t *testing.T) {
	s := NewStage()
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	s.Root().AddAction(g1)
	s.Root().AddAction(g2)
	var negotiations int
	g1.ShouldInfluence = func(*Gesture, *bool) { negotiations++ }

	touch(s, EventTouchBegin, 1, 15, 15)
	touch(s, EventTouchBegin, 2, 15, 20)
	if negotiations != 1 {
		t.Errorf("negotiations after two shared points = %d, want 1", negotiations)
	}
	if !g1.IsRelatedTo(g2) || !g2.IsRelatedTo(g1) {
		t.Error("gestures sharing points should be related")
	}

	touch(s, EventTouchEnd, 2, 15, 20)
	touch(s, EventTouchEnd, 1, 15, 15)
	expectState(t, g1, GestureWaiting)
	expectState(t, g2, GestureWaiting)
	if g1.IsRelatedTo(g2) {
		t.Error("relationship survived the gestures returning to WAITING")
	}

	touch(s, EventTouchBegin, 3, 15, 15)
	if negotiations != 2 {
		t.Errorf("negotiations after a new shared point = %d, want 2", negotiations)
	}
	touch(s, EventTouchEnd, 3, 15, 15)
}

func TestGestureRelationshipTwoPointsTwoNodes(t *testing.T) {
	s := NewStage()
	second := NewHitArea("second", HitRect{Width: 20, Height: 20})
	s.Root().AddChild(second)
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	s.Root().AddAction(g1)
	second.AddAction(g2)

	touch(s, EventTouchBegin, 1, 15, 15)
	touch(s, EventTouchBegin, 2, 15, 50)
	expectState(t, g1, GesturePossible)
	expectState(t, g2, GesturePossible)

	g1.Complete()
	expectState(t, g1, GestureCompleted)
	expectState(t, g2, GestureCancelled)

	touch(s, EventTouchEnd, 1, 15, 15)
	expectState(t, g1, GestureCompleted)
	expectState(t, g2, GestureWaiting)

	touch(s, EventTouchBegin, 1, 15, 15)
	expectState(t, g1, GestureCompleted)
	expectState(t, g2, GesturePossible)

	g2.Complete()
	expectState(t, g1, GestureCompleted)
	expectState(t, g2, GestureCompleted)

	touch(s, EventTouchEnd, 1, 15, 15)
	expectState(t, g1, GestureCompleted)
	expectState(t, g2, GestureWaiting)

	touch(s, EventTouchEnd, 2, 15, 50)
	expectState(t, g1, GestureWaiting)
	expectState(t, g2, GestureWaiting)
}

func TestGestureRelationshipClaimNewSequenceWhileRecognizing(t *testing.T) {
	s := NewStage()
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	resetOnEnd := func(_, next GestureState) {
		if next == GestureCancelled || next == GestureCompleted {
			g2.ResetStateMachine()
		}
	}
	g2.StateChanged = resetOnEnd
	s.Root().AddAction(g1)
	s.Root().AddAction(g2)

	touch(s, EventTouchBegin, 1, 15, 15)
	expectState(t, g1, GesturePossible)
	expectState(t, g2, GesturePossible)
	expectPoints(t, g1, 1)
	expectPoints(t, g2, 1)

	g1.Recognize()
	expectState(t, g1, GestureRecognizing)
	expectState(t, g2, GestureWaiting)
	expectPoints(t, g2, 0)

	// g2 moves to POSSIBLE, then g1 claims the new point and cancels it,
	// which resets g2 straight to WAITING.
	first := firstStateChange(g2)
	touch(s, EventTouchBegin, 2, 45, 0)
	expectState(t, g1, GestureRecognizing)
	if *first != GesturePossible {
		t.Errorf("first g2 state = %s, want POSSIBLE", *first)
	}
	expectState(t, g2, GestureWaiting)
	expectPoints(t, g1, 2)
	expectPoints(t, g2, 0)

	touch(s, EventTouchEnd, 2, 45, 0)

	// Without the reset, g2 stays CANCELLED until its point ends.
	g2.StateChanged = nil
	first = firstStateChange(g2)
	touch(s, EventTouchBegin, 2, 45, 0)
	expectState(t, g1, GestureRecognizing)
	if *first != GesturePossible {
		t.Errorf("first g2 state = %s, want POSSIBLE", *first)
	}
	expectState(t, g2, GestureCancelled)
	expectPoints(t, g1, 2)
	expectPoints(t, g2, 0)

	touch(s, EventTouchEnd, 2, 45, 0)
	expectState(t, g1, GestureRecognizing)
	expectState(t, g2, GestureWaiting)

	g1.Complete()
	touch(s, EventTouchEnd, 1, 15, 15)
	expectState(t, g1, GestureWaiting)
	expectState(t, g2, GestureWaiting)
}

func TestGestureRelationshipSharedWithCanNotCancel(t *testing.T) {
	s := NewStage()
	second := NewHitArea("second", HitRect{Width: 20, Height: 20})
	s.Root().AddChild(second)
	g1 := testGesture("g1")
	g2 := testGesture("g2")
	s.Root().AddAction(g1)
	second.AddAction(g2)

	touch(s, EventTouchBegin, 1, 25, 25)
	expectState(t, g1, GesturePossible)
	expectState(t, g2, GestureWaiting)

	g1.Recognize()
	expectState(t, g1, GestureRecognizing)

	g1.CanNotCancel(g2)
	g2.CanNotCancel(g1)

	touch(s, EventTouchBegin, 2, 15, 15)
	expectState(t, g1, GestureRecognizing)
	expectState(t, g2, GesturePossible)
	expectPoints(t, g1, 2)
	expectPoints(t, g2, 1)

	g2.Recognize()
	expectState(t, g1, GestureRecognizing)
	expectState(t, g2, GestureRecognizing)

	g1.Complete()
	g2.Complete()
	touch(s, EventTouchEnd, 2, 15, 15)
	touch(s, EventTouchEnd, 1, 25, 25)
	expectState(t, g1, GestureWaiting)
	expectState(t, g2, GestureWaiting)
}

func TestGestureRelationshipUnmapBeforePointsAdded(t *testing.T) {
	s := NewStage()
	second := NewHitArea("second", HitRect{Width: 20, Height: 20})
	s.Root().AddChild(second)

	press := testGesture("press")
	press.SetPhase(PhaseCapture)
	press.PointBegan = func(int) { press.Complete() }
	press.OnRecognize = func() { second.SetVisible(false) }
	g2 := testGesture("g2")
	s.Root().AddAction(press)
	second.AddAction(g2)

	press.CanNotCancel(g2)

	first := firstStateChange(g2)
	touch(s, EventTouchBegin, 1, 15, 15)
	if second.Mapped() {
		t.Error("second should be unmapped")
	}
	expectState(t, press, GestureCompleted)
	if *first != GesturePossible {
		t.Errorf("first g2 state = %s, want POSSIBLE", *first)
	}
	expectState(t, g2, GestureWaiting)
	expectPoints(t, press, 1)
	expectPoints(t, g2, 0)

	touch(s, EventTouchEnd, 1, 15, 15)
	expectState(t, press, GestureWaiting)
	expectState(t, g2, GestureWaiting)
}

func TestGestureShouldInfluenceHooks(t *testing.T) {
	s := NewStage()
	outer := testGesture("outer")
	inner := testGesture("inner")
	// inner may run alongside outer.
	inner.ShouldBeInfluencedBy = func(other *Gesture, cancel *bool) {
		if other == outer {
			*cancel = false
		}
	}
	s.Root().AddAction(outer)
	s.Root().AddAction(inner)

	pressMouse(s, 10, 10, MouseButtonLeft)
	outer.Recognize()
	expectState(t, inner, GesturePossible)
	inner.Recognize()
	expectState(t, inner, GestureRecognizing)
	// inner still cancels outer.
	expectState(t, outer, GestureCancelled)

	inner.Complete()
	releaseMouse(s, 10, 10, MouseButtonLeft)
	expectState(t, outer, GestureWaiting)
	expectState(t, inner, GestureWaiting)
}

func TestSetupSequenceRelationshipResult(t *testing.T) {
	s := NewStage()
	a := testGesture("a")
	b := testGesture("b")
	c := testGesture("c")
	a.CanNotCancel(b)
	s.Root().AddAction(a)
	s.Root().AddAction(b)
	s.Root().AddAction(c)

	touch(s, EventTouchBegin, 1, 10, 10)
	ev := a.PointEvent(0)

	// Cached relationships answer the same on every call.
	if got := a.SetupSequenceRelationship(b, &ev); got != 1 {
		t.Errorf("a vs b = %d, want 1 (only b cancels)", got)
	}
	if got := b.SetupSequenceRelationship(a, &ev); got != -1 {
		t.Errorf("b vs a = %d, want -1", got)
	}
	if got := a.SetupSequenceRelationship(c, &ev); got != 0 {
		t.Errorf("a vs c = %d, want 0", got)
	}
	if got := a.SetupSequenceRelationship(NewFuncAction("f", PhaseBubble, nil), &ev); got != 0 {
		t.Errorf("a vs plain action = %d, want 0", got)
	}
	touch(s, EventTouchEnd, 1, 10, 10)
}
