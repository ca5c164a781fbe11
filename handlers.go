package thicket

// --- Handler registry ---

type listenerKind uint8

const (
	listenGrab listenerKind = iota + 1
	listenKeyFocus
	listenGestureState
)

type registered interface {
	handlerID() uint32
}

type grabHandler struct {
	id uint32
	fn func(*Grab)
}

type keyFocusHandler struct {
	id uint32
	fn func(*Node)
}

type gestureStateHandler struct {
	id uint32
	fn func(GestureStateChange)
}

func (h grabHandler) handlerID() uint32         { return h.id }
func (h keyFocusHandler) handlerID() uint32     { return h.id }
func (h gestureStateHandler) handlerID() uint32 { return h.id }

type handlerRegistry struct {
	grab         []grabHandler
	keyFocus     []keyFocusHandler
	gestureState []gestureStateHandler
	nextID       uint32
}

// GestureStateChange describes one gesture state transition.
type GestureStateChange struct {
	Gesture  *Gesture
	OldState GestureState
	NewState GestureState
}

// CallbackHandle allows removing a registered stage-level callback.
type CallbackHandle struct {
	id   uint32
	reg  *handlerRegistry
	kind listenerKind
}

// Remove unregisters this callback so it no longer fires. Removing a
// callback that is not registered logs a warning.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		warnf("CallbackHandle.Remove: handle was never registered")
		return
	}
	var ok bool
	switch h.kind {
	case listenGrab:
		h.reg.grab, ok = removeHandler(h.reg.grab, h.id)
	case listenKeyFocus:
		h.reg.keyFocus, ok = removeHandler(h.reg.keyFocus, h.id)
	case listenGestureState:
		h.reg.gestureState, ok = removeHandler(h.reg.gestureState, h.id)
	}
	if !ok {
		warnf("CallbackHandle.Remove: callback %d is not registered", h.id)
	}
}

func indexHandler[T registered](s []T, id uint32) int {
	for i := range s {
		if s[i].handlerID() == id {
			return i
		}
	}
	return -1
}

func removeHandler[T registered](s []T, id uint32) ([]T, bool) {
	i := indexHandler(s, id)
	if i < 0 {
		return s, false
	}
	var zero T
	copy(s[i:], s[i+1:])
	s[len(s)-1] = zero
	return s[:len(s)-1], true
}

// --- Stage-level event registration ---

// OnGrabChanged registers fn to run whenever the effective grab changes.
// fn receives the new topmost grab, nil when none remains.
func (s *Stage) OnGrabChanged(fn func(*Grab)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.grab = append(s.handlers.grab, grabHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, kind: listenGrab}
}

// OnKeyFocusChanged registers fn to run whenever key focus is requested on
// a different node. fn receives nil when the stage takes focus.
func (s *Stage) OnKeyFocusChanged(fn func(*Node)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.keyFocus = append(s.handlers.keyFocus, keyFocusHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, kind: listenKeyFocus}
}

// OnGestureStateChanged registers fn to run on every state transition of
// any gesture attached under this stage.
func (s *Stage) OnGestureStateChanged(fn func(GestureStateChange)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.gestureState = append(s.handlers.gestureState, gestureStateHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, kind: listenGestureState}
}

func (r *handlerRegistry) emitGrab(g *Grab) {
	emitHandlers(&r.grab, func(h grabHandler) { h.fn(g) })
}

func (r *handlerRegistry) emitKeyFocus(n *Node) {
	emitHandlers(&r.keyFocus, func(h keyFocusHandler) { h.fn(n) })
}

func (r *handlerRegistry) emitGestureState(c GestureStateChange) {
	emitHandlers(&r.gestureState, func(h gestureStateHandler) { h.fn(c) })
}

// emitHandlers calls every handler registered when the emission starts.
// Callbacks may add or remove handlers while running: added ones wait for
// the next emission, removed ones are skipped if their turn has not come.
func emitHandlers[T registered](live *[]T, call func(T)) {
	if len(*live) == 0 {
		return
	}
	for _, h := range append([]T(nil), *live...) {
		if indexHandler(*live, h.handlerID()) < 0 {
			continue
		}
		call(h)
	}
}
