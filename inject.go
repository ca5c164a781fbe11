package thicket

import "github.com/hajimehoshi/ebiten/v2"

// injectFrameMS is the time step between injected events that carry no
// timestamp of their own.
const injectFrameMS = 16

// InjectEvent queues an arbitrary event. Queued events are consumed one per
// Stage.Update, in place of the attached input source.
func (s *Stage) InjectEvent(ev Event) {
	s.injectQueue = append(s.injectQueue, ev)
}

// InjectPress queues a left button press at the given stage coordinates.
func (s *Stage) InjectPress(x, y float64) {
	s.InjectButton(x, y, MouseButtonLeft, true)
}

// InjectMove queues a mouse motion to the given stage coordinates. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (s *Stage) InjectMove(x, y float64) {
	s.InjectEvent(Event{Type: EventMotion, Device: DeviceMouse, X: x, Y: y})
}

// InjectRelease queues a left button release at the given stage coordinates.
func (s *Stage) InjectRelease(x, y float64) {
	s.InjectButton(x, y, MouseButtonLeft, false)
}

// InjectButton queues a press or release of any mouse button.
func (s *Stage) InjectButton(x, y float64, button MouseButton, pressed bool) {
	t := EventButtonRelease
	if pressed {
		t = EventButtonPress
	}
	s.InjectEvent(Event{Type: t, Device: DeviceMouse, X: x, Y: y, Button: button})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two frames.
func (s *Stage) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (s *Stage) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// InjectTouchBegin queues the start of touch sequence seq. Sequence zero is
// reserved for pointer devices and is rejected.
func (s *Stage) InjectTouchBegin(seq SequenceID, x, y float64) {
	s.injectTouch(EventTouchBegin, seq, x, y)
}

// InjectTouchUpdate queues a move of touch sequence seq.
func (s *Stage) InjectTouchUpdate(seq SequenceID, x, y float64) {
	s.injectTouch(EventTouchUpdate, seq, x, y)
}

// InjectTouchEnd queues the end of touch sequence seq.
func (s *Stage) InjectTouchEnd(seq SequenceID, x, y float64) {
	s.injectTouch(EventTouchEnd, seq, x, y)
}

// InjectTouchCancel queues the cancellation of touch sequence seq.
func (s *Stage) InjectTouchCancel(seq SequenceID, x, y float64) {
	s.injectTouch(EventTouchCancel, seq, x, y)
}

func (s *Stage) injectTouch(t EventType, seq SequenceID, x, y float64) {
	if seq == 0 {
		warnf("inject %s: touch sequence must be non-zero", t)
		return
	}
	s.InjectEvent(Event{Type: t, Device: DeviceTouchscreen, Sequence: seq, X: x, Y: y})
}

// InjectPinch queues a two-finger pinch centred on (cx, cy): fingers start
// fromDist apart on a horizontal line and move to toDist apart over the
// given number of move steps. Sequences 1 and 2 are used.
func (s *Stage) InjectPinch(cx, cy, fromDist, toDist float64, steps int) {
	if steps < 1 {
		steps = 1
	}
	s.InjectTouchBegin(1, cx-fromDist/2, cy)
	s.InjectTouchBegin(2, cx+fromDist/2, cy)
	d := fromDist
	for i := 1; i <= steps; i++ {
		d = fromDist + (toDist-fromDist)*float64(i)/float64(steps)
		s.InjectTouchUpdate(1, cx-d/2, cy)
		s.InjectTouchUpdate(2, cx+d/2, cy)
	}
	s.InjectTouchEnd(1, cx-d/2, cy)
	s.InjectTouchEnd(2, cx+d/2, cy)
}

// InjectKey queues a key press or release.
func (s *Stage) InjectKey(key ebiten.Key, pressed bool) {
	t := EventKeyRelease
	if pressed {
		t = EventKeyPress
	}
	s.InjectEvent(Event{Type: t, Device: DeviceKeyboard, Key: key})
}

// processInjectedInput pops one event from the inject queue and routes it.
// Returns true if an event was consumed (device input should be skipped).
func (s *Stage) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	ev := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue[len(s.injectQueue)-1] = Event{}
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	if ev.Time == 0 {
		ev.Time = s.now + injectFrameMS
	}
	s.ProcessEvent(ev)
	return true
}

// PendingInjections returns the number of queued events.
func (s *Stage) PendingInjections() int { return len(s.injectQueue) }
