package thicket

// EntityStore is the interface for optional ECS integration.
// When set on a Stage, interaction events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionType identifies an InteractionEvent.
type InteractionType uint8

const (
	InteractionGrabChanged InteractionType = iota + 1
	InteractionKeyFocusChanged
	InteractionPointerEnter
	InteractionPointerLeave
	InteractionGestureRecognize
	InteractionGestureEnd
	InteractionGestureCancel
)

// InteractionEvent carries routing data for the ECS bridge. Pointer and
// gesture events are only forwarded for nodes with a non-zero EntityID.
type InteractionEvent struct {
	Type     InteractionType
	EntityID uint32
	X, Y     float64
	Device   DeviceID
	Sequence SequenceID
	// Gesture is the gesture name for gesture events.
	Gesture string
}

// InputSource feeds device input into a stage once per Update.
type InputSource interface {
	Poll(s *Stage)
}

// Stage is the root context of a routing tree. It owns the root node, the
// grab stack, one focus per pointer identity, the key focus and the list of
// gestures currently tracking points.
type Stage struct {
	root   *Node
	store  EntityStore
	picker Picker
	source InputSource
	config Config

	debugMode  bool
	debugFlags DebugFlags

	active   bool
	disposed bool
	// now is the timestamp of the event being processed.
	now uint32

	topmostGrab *Grab
	keyFocus    *KeyFocus
	pointers    map[Identity]*PointerFocus
	// pointerOrder keeps identities in creation order so grab and unmap
	// notifications reach them deterministically.
	pointerOrder   []*PointerFocus
	activeGestures []*Gesture

	handlers    handlerRegistry
	injectQueue []Event
	testRunner  *TestRunner
}

// NewStage creates a new stage with a pre-created, reactive root node.
func NewStage() *Stage {
	root := NewNode("stage")
	root.reactive = true
	s := &Stage{
		root:     root,
		picker:   &treePicker{},
		config:   DefaultConfig(),
		active:   true,
		pointers: make(map[Identity]*PointerFocus),
	}
	root.stage = s
	root.mapped = true
	s.keyFocus = newKeyFocus(s)
	s.keyFocus.SetCurrentNode(nil, 0, 0)
	return s
}

// Root returns the stage's root node.
func (s *Stage) Root() *Node {
	return s.root
}

// SetEntityStore sets the optional ECS bridge.
func (s *Stage) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetPicker replaces the hit tester. Nil restores the default tree picker.
func (s *Stage) SetPicker(p Picker) {
	if p == nil {
		p = &treePicker{}
	}
	s.picker = p
}

// SetInputSource attaches a device backend polled by Update.
func (s *Stage) SetInputSource(src InputSource) {
	s.source = src
}

// Update advances a scripted test run, then feeds either one injected event
// or the attached input source into the stage.
func (s *Stage) Update() {
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	if s.processInjectedInput() {
		return
	}
	if s.source != nil {
		s.source.Poll(s)
	}
}

// SetActive marks the stage as focused or unfocused by the window system.
// An inactive stage directs key events at its root.
func (s *Stage) SetActive(active bool) {
	if s.active == active {
		return
	}
	s.active = active
	s.keyFocus.SetCurrentNode(s.keyFocus.requested, 0, s.now)
}

// IsActive reports whether the stage has window focus.
func (s *Stage) IsActive() bool { return s.active }

// SetKeyFocus directs key events at n. Nil, or the root itself, gives the
// stage the focus.
func (s *Stage) SetKeyFocus(n *Node) {
	if n == s.root {
		warnf("SetKeyFocus: key focus set to the stage root, unsetting focus instead")
		n = nil
	}
	s.keyFocus.SetCurrentNode(n, 0, s.now)
}

// KeyFocus returns the node requested as key focus, nil meaning the stage.
func (s *Stage) KeyFocus() *Node { return s.keyFocus.CurrentNode() }

// KeyFocusTracker returns the keyboard focus tracker.
func (s *Stage) KeyFocusTracker() *KeyFocus { return s.keyFocus }

// Pointer returns the focus for an identity, or nil when it is unknown.
func (s *Stage) Pointer(id Identity) *PointerFocus { return s.pointers[id] }

// Pointers returns the tracked identities in creation order. The returned
// slice MUST NOT be mutated by the caller.
func (s *Stage) Pointers() []*PointerFocus { return s.pointerOrder }

// NodeAt returns the node under the identity, or nil.
func (s *Stage) NodeAt(id Identity) *Node {
	if p := s.pointers[id]; p != nil {
		return p.current
	}
	return nil
}

// Pick returns the node the picker reports at (x, y).
func (s *Stage) Pick(x, y float64) *Node {
	n, _ := s.picker.Pick(s, x, y)
	if n == nil {
		return s.root
	}
	return n
}

// ActiveGestures returns the gestures currently out of the waiting state.
// The returned slice MUST NOT be mutated by the caller.
func (s *Stage) ActiveGestures() []*Gesture { return s.activeGestures }

// --- Event processing ---

// ProcessEvent routes one input event. Positional events update the focus
// of their identity first (emitting crossings) and are then propagated;
// key events go to the key focus.
func (s *Stage) ProcessEvent(ev Event) {
	if s.disposed {
		return
	}
	if ev.SourceDevice == 0 {
		ev.SourceDevice = ev.Device
	}
	if ev.Time != 0 {
		s.now = ev.Time
	} else {
		ev.Time = s.now
	}
	s.debugf(DebugEvents, "%s device=%d sequence=%d at (%.1f, %.1f)",
		ev.Type, ev.Device, ev.Sequence, ev.X, ev.Y)

	if !ev.IsPointer() {
		s.keyFocus.PropagateEvent(&ev)
		return
	}

	id := ev.Identity()
	pos := ev.Position()
	switch ev.Type {
	case EventTouchEnd, EventTouchCancel:
		p := s.pointers[id]
		if p == nil {
			s.debugf(DebugEvents, "%s for unknown sequence %d dropped", ev.Type, ev.Sequence)
			return
		}
		p.UpdateFromEvent(&ev)
		p.PropagateEvent(&ev)
		s.removePointer(p, ev.SourceDevice, ev.Time)
	case EventLeave:
		// The device left the stage.
		if p := s.pointers[id]; p != nil {
			p.update(pos, nil)
			p.SetCurrentNode(nil, ev.SourceDevice, ev.Time)
		}
	case EventEnter:
		p := s.ensurePointer(id)
		s.pickAndUpdate(p, ev.SourceDevice, true, pos, ev.Time)
	default:
		p := s.ensurePointer(id)
		s.pickAndUpdate(p, ev.SourceDevice, false, pos, ev.Time)
		p.UpdateFromEvent(&ev)
		p.PropagateEvent(&ev)
	}
}

func (s *Stage) ensurePointer(id Identity) *PointerFocus {
	if p := s.pointers[id]; p != nil {
		return p
	}
	p := newPointerFocus(s, id)
	s.pointers[id] = p
	s.pointerOrder = append(s.pointerOrder, p)
	return p
}

func (s *Stage) removePointer(p *PointerFocus, sourceDevice DeviceID, time uint32) {
	p.SetCurrentNode(nil, sourceDevice, time)
	if p.pressCount > 0 {
		p.stage.debugf(DebugGrabs, "[device=%d sequence=%d] releasing implicit grab", p.id.Device, p.id.Sequence)
		p.cleanupImplicitGrab()
	}
	delete(s.pointers, p.id)
	for i, cur := range s.pointerOrder {
		if cur == p {
			copy(s.pointerOrder[i:], s.pointerOrder[i+1:])
			s.pointerOrder[len(s.pointerOrder)-1] = nil
			s.pointerOrder = s.pointerOrder[:len(s.pointerOrder)-1]
			break
		}
	}
}

// pointerSnapshot returns the identities to notify; the list may change
// while notifications run.
func (s *Stage) pointerSnapshot() []*PointerFocus {
	if len(s.pointerOrder) == 0 {
		return nil
	}
	return append([]*PointerFocus(nil), s.pointerOrder...)
}

func (s *Stage) pickAndUpdate(p *PointerFocus, sourceDevice DeviceID, ignoreCache bool, point Vec2, time uint32) {
	if !ignoreCache && p.pointInClearArea(point) {
		p.coords = point
		return
	}
	n, clearArea := s.picker.Pick(s, point.X, point.Y)
	if n == nil {
		s.debugAssert(false, "picker returned nil")
		n = s.root
	}
	p.update(point, clearArea)
	p.SetCurrentNode(n, sourceDevice, time)
}

// RemoveDevice drops every identity of device. Running sequences are
// cancelled and the nodes under them receive LEAVE.
func (s *Stage) RemoveDevice(device DeviceID) {
	for _, p := range s.pointerSnapshot() {
		if p.id.Device != device {
			continue
		}
		p.maybeLostImplicitGrab()
		s.removePointer(p, device, s.now)
	}
}

// LostImplicitGrab tells the stage that the window system took the input
// sequence of id away. Every action tracking it is cancelled.
func (s *Stage) LostImplicitGrab(id Identity) {
	if p := s.pointers[id]; p != nil {
		p.maybeLostImplicitGrab()
	}
}

// --- Tree notifications ---

// nodeUnmapped resolves everything that referenced n as a live target:
// implicit grab anchors, pointers over it and key focus.
func (s *Stage) nodeUnmapped(n *Node) {
	if n.implicitGrabs > 0 {
		for _, p := range s.pointerSnapshot() {
			p.maybeBreakImplicitGrab(n)
		}
	}
	if n.pointerCount > 0 {
		s.invalidateFocus(n)
	}
	if s.keyFocus.requested == n {
		s.SetKeyFocus(nil)
	}
}

// invalidateFocus re-picks every identity whose current node is n.
func (s *Stage) invalidateFocus(n *Node) {
	if s.disposed {
		return
	}
	for _, p := range s.pointerSnapshot() {
		if p.current != n {
			continue
		}
		s.pickAndUpdate(p, 0, true, p.coords, s.now)
	}
	if n != s.root {
		s.debugAssert(n.pointerCount == 0, "node still under a pointer after invalidation")
	}
}

// notifyActionImplicitGrab stops node delivery for a sequence an action
// has claimed.
func (s *Stage) notifyActionImplicitGrab(id Identity) {
	if p := s.pointers[id]; p != nil && p.pressCount > 0 {
		p.removeAllNodesFromChain()
	}
}

// commonRoot returns the deepest node containing both a and b, or the root
// when either is nil or they share no ancestor.
func (s *Stage) commonRoot(a, b *Node) *Node {
	if a != nil && b != nil {
		for ; a != nil; a = a.Parent {
			if a == b || a.Contains(b) {
				return a
			}
		}
	}
	return s.root
}

func (s *Stage) emitInteraction(ev InteractionEvent) {
	if s.store == nil {
		return
	}
	switch ev.Type {
	case InteractionGrabChanged, InteractionKeyFocusChanged:
	default:
		if ev.EntityID == 0 {
			return
		}
	}
	s.store.EmitEvent(ev)
}

func entityOf(n *Node) uint32 {
	if n == nil {
		return 0
	}
	return n.EntityID
}

// Dispose dismisses every grab, drops every identity and disposes the tree.
func (s *Stage) Dispose() {
	if s.disposed {
		return
	}
	for s.topmostGrab != nil {
		s.topmostGrab.Dismiss()
	}
	for _, p := range s.pointerSnapshot() {
		p.maybeLostImplicitGrab()
		s.removePointer(p, 0, s.now)
	}
	s.disposed = true
	s.root.dispose()
}
