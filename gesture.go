package thicket

// GestureState is the recognition state of a gesture.
type GestureState uint8

const (
	// GestureWaiting: no points are tracked.
	GestureWaiting GestureState = iota
	// GesturePossible: points are tracked, nothing is recognized yet.
	GesturePossible
	// GestureRecognizing: a continuous gesture is in progress.
	GestureRecognizing
	// GestureCompleted: the gesture finished; it returns to waiting once
	// every point has ended.
	GestureCompleted
	// GestureCancelled: the gesture gave up; it returns to waiting once
	// every point has ended.
	GestureCancelled

	numGestureStates
)

var gestureStateNames = [numGestureStates]string{
	GestureWaiting:     "WAITING",
	GesturePossible:    "POSSIBLE",
	GestureRecognizing: "RECOGNIZING",
	GestureCompleted:   "COMPLETED",
	GestureCancelled:   "CANCELLED",
}

func (s GestureState) String() string {
	if s < numGestureStates {
		return gestureStateNames[s]
	}
	return "INVALID"
}

func (s GestureState) terminal() bool {
	return s == GestureCompleted || s == GestureCancelled
}

// gestureTransitions[from][to] lists every legal state change.
var gestureTransitions = [numGestureStates][numGestureStates]bool{
	GestureWaiting:     {GesturePossible: true},
	GesturePossible:    {GestureRecognizing: true, GestureCompleted: true, GestureCancelled: true},
	GestureRecognizing: {GestureCompleted: true, GestureCancelled: true},
	GestureCompleted:   {GestureWaiting: true},
	GestureCancelled:   {GestureWaiting: true},
}

// gestureSequence is the per-point record of a gesture.
type gestureSequence struct {
	id           Identity
	sourceDevice DeviceID

	begin    Event
	previous Event
	latest   Event
	nEvents  int

	nButtons int
	seen     bool
	ended    bool
}

// Gesture is an action that recognizes input patterns and arbitrates with
// other gestures over shared input sequences. Points are registered through
// the implicit grab; the implementation reacts to them through the hook
// fields and moves the state machine with SetState.
//
// Gesture is usable as a value embedded in a concrete gesture type (see
// ClickGesture) or on its own with hooks set, via NewGesture.
type Gesture struct {
	BaseAction

	// ShouldHandleSequence decides whether the gesture tracks a new
	// sequence. It must be set.
	ShouldHandleSequence func(begin *Event) bool
	// MayRecognize can veto a move to RECOGNIZING or COMPLETED.
	MayRecognize func() bool
	PointBegan   func(point int)
	PointMoved   func(point int)
	// PointEnded defaults to cancelling when the last point ends.
	PointEnded func(point int)
	// SequencesCancelled defaults to cancelling the gesture.
	SequencesCancelled func(points []int)
	CrossingEvent      func(point int, ev *Event)
	StateChanged       func(old, new GestureState)
	// ShouldInfluence may clear *cancel so that this gesture does not
	// cancel other when it recognizes.
	ShouldInfluence func(other *Gesture, cancel *bool)
	// ShouldBeInfluencedBy may clear *cancel so that other does not cancel
	// this gesture when it recognizes.
	ShouldBeInfluencedBy func(other *Gesture, cancel *bool)

	// OnRecognize fires when the gesture recognizes: on entering
	// RECOGNIZING, or on completing without having been recognizing.
	OnRecognize func()
	// OnEnd fires when a recognizing gesture completes.
	OnEnd func()
	// OnCancel fires when a recognizing gesture is cancelled.
	OnCancel func()

	impl        Action
	stage       *Stage
	state       GestureState
	sequences   []gestureSequence
	latestIndex int

	related             map[*Gesture]struct{}
	cancelOnRecognizing []*Gesture
	canNotCancel        map[*Gesture]struct{}
	canNotCancelBy      map[*Gesture]struct{}
}

var _ Action = (*Gesture)(nil)

// NewGesture creates a gesture driven entirely by its hook fields.
func NewGesture(name string) *Gesture {
	g := &Gesture{}
	g.name = name
	return g
}

// Init names the gesture and records the concrete action embedding it.
// Concrete gesture types call it from their constructors.
func (g *Gesture) Init(name string, impl Action) {
	g.name = name
	g.impl = impl
}

// Impl returns the concrete action embedding this gesture, or the gesture
// itself.
func (g *Gesture) Impl() Action {
	if g.impl != nil {
		return g.impl
	}
	return g
}

func (g *Gesture) gesture() *Gesture { return g }

type gestureCarrier interface {
	gesture() *Gesture
}

// AsGesture returns the gesture behind an action, or nil.
func AsGesture(a Action) *Gesture {
	if c, ok := a.(gestureCarrier); ok {
		return c.gesture()
	}
	return nil
}

func (g *Gesture) config() Config {
	if g.stage != nil {
		return g.stage.config
	}
	if g.node != nil {
		if s := g.node.Stage(); s != nil {
			return s.config
		}
	}
	return DefaultConfig()
}

// State returns the current state.
func (g *Gesture) State() GestureState { return g.state }

func (g *Gesture) debugf(format string, args ...any) {
	if g.stage == nil {
		return
	}
	g.stage.debugf(DebugGestures, "<%s> "+format, append([]any{g.name}, args...)...)
}

func (g *Gesture) assert(cond bool, msg string) {
	if cond {
		return
	}
	if g.stage != nil {
		g.stage.debugAssert(false, "gesture "+g.name+": "+msg)
		return
	}
	warnf("gesture %q: internal inconsistency: %s", g.name, msg)
}

// --- State machine ---

// SetState requests a state change from the implementation. Only
// POSSIBLE → RECOGNIZING/COMPLETED/CANCELLED and RECOGNIZING →
// COMPLETED/CANCELLED may be requested; a needless cancel is ignored and
// anything else is logged.
func (g *Gesture) SetState(state GestureState) {
	g.debugf("state change requested: %s -> %s", g.state, state)
	legal := (g.state == GesturePossible &&
		(state == GestureRecognizing || state == GestureCompleted || state == GestureCancelled)) ||
		(g.state == GestureRecognizing &&
			(state == GestureCompleted || state == GestureCancelled))
	if legal {
		g.setStateAuthoritative(state)
		return
	}
	if state == GestureCancelled {
		return
	}
	warnf("gesture %q: requested invalid state change: %s -> %s", g.name, g.state, state)
}

// Recognize requests RECOGNIZING.
func (g *Gesture) Recognize() { g.SetState(GestureRecognizing) }

// Complete requests COMPLETED.
func (g *Gesture) Complete() { g.SetState(GestureCompleted) }

// Cancel requests CANCELLED.
func (g *Gesture) Cancel() { g.SetState(GestureCancelled) }

// ResetStateMachine moves a finished gesture straight back to WAITING,
// dropping any points it still tracks.
func (g *Gesture) ResetStateMachine() {
	if g.state.terminal() {
		g.setStateAuthoritative(GestureWaiting)
	}
}

func (g *Gesture) setState(newState GestureState) {
	if g.state == newState {
		g.debugf("skipping state change %s -> %s", g.state, newState)
		return
	}
	if !gestureTransitions[g.state][newState] {
		g.assert(false, "illegal transition "+g.state.String()+" -> "+newState.String())
		return
	}

	if g.state == GestureWaiting && newState == GesturePossible {
		if g.stage == nil && g.node != nil {
			g.stage = g.node.Stage()
		}
		if g.stage == nil {
			g.assert(false, "gesture has no stage")
			return
		}
		g.stage.activeGestures = append(g.stage.activeGestures, g)
	}

	if g.state == GesturePossible &&
		(newState == GestureRecognizing || newState == GestureCompleted) {
		if !g.mayStart() {
			g.setStateAuthoritative(GestureCancelled)
			return
		}
	}

	oldState := g.state
	recognizing := newState == GestureRecognizing ||
		(oldState != GestureRecognizing && newState == GestureCompleted)

	if recognizing {
		for i := range g.sequences {
			if g.sequences[i].ended {
				continue
			}
			g.stage.notifyActionImplicitGrab(g.sequences[i].id)
		}
		// Independent gestures still in POSSIBLE would otherwise show
		// feedback (a pressed look) for input they will never get.
		g.cancelIndependentGestures()
	}

	if newState == GestureWaiting {
		if g.stage != nil {
			removed := g.stage.removeActiveGesture(g)
			g.assert(removed, "waiting gesture was not active")
		}
		clear(g.sequences)
		g.sequences = g.sequences[:0]
		for other := range g.related {
			_, ok := other.related[g]
			g.assert(ok, "relationship is not mutual")
			delete(other.related, g)
			delete(g.related, other)
		}
		clear(g.cancelOnRecognizing)
		g.cancelOnRecognizing = g.cancelOnRecognizing[:0]
	}

	g.state = newState
	g.debugf("state change (%s -> %s)", oldState, newState)

	s := g.stage
	if recognizing {
		if g.OnRecognize != nil {
			g.OnRecognize()
		}
		g.emitInteraction(s, InteractionGestureRecognize)
	}
	if oldState == GestureRecognizing && newState == GestureCompleted {
		if g.OnEnd != nil {
			g.OnEnd()
		}
		g.emitInteraction(s, InteractionGestureEnd)
	}
	if oldState == GestureRecognizing && newState == GestureCancelled {
		if g.OnCancel != nil {
			g.OnCancel()
		}
		g.emitInteraction(s, InteractionGestureCancel)
	}
	if g.StateChanged != nil {
		g.StateChanged(oldState, newState)
	}
	if s != nil {
		s.handlers.emitGestureState(GestureStateChange{Gesture: g, OldState: oldState, NewState: newState})
	}
	if newState == GestureWaiting && g.node == nil {
		g.stage = nil
	}
}

func (g *Gesture) emitInteraction(s *Stage, t InteractionType) {
	if s == nil || g.node == nil {
		return
	}
	ev := InteractionEvent{Type: t, EntityID: g.node.EntityID, Gesture: g.name}
	if len(g.sequences) > 0 {
		seq := &g.sequences[g.latestIndex]
		ev.X, ev.Y = seq.latestOrBegin().X, seq.latestOrBegin().Y
		ev.Device, ev.Sequence = seq.id.Device, seq.id.Sequence
	}
	s.emitInteraction(ev)
}

func (g *Gesture) setStateAuthoritative(newState GestureState) {
	oldState := g.state
	g.setState(newState)
	if g.state == GestureRecognizing ||
		(oldState != GestureRecognizing && g.state == GestureCompleted) {
		g.maybeInfluenceOtherGestures()
	}
	g.maybeMoveToWaiting()
}

func (g *Gesture) maybeMoveToWaiting() {
	if !g.state.terminal() {
		return
	}
	for i := range g.sequences {
		if !g.sequences[i].ended {
			return
		}
	}
	g.setState(GestureWaiting)
}

// maybeInfluenceOtherGestures cancels the related gestures this one was
// negotiated to cancel on recognizing.
func (g *Gesture) maybeInfluenceOtherGestures() {
	if g.state != GestureRecognizing && g.state != GestureCompleted {
		return
	}
	for i := 0; i < len(g.cancelOnRecognizing); i++ {
		other := g.cancelOnRecognizing[i]
		if _, ok := g.related[other]; !ok {
			continue
		}
		g.assert(other.state != GestureWaiting, "related gesture is waiting")
		if other.state.terminal() {
			continue
		}
		other.setState(GestureCancelled)
		other.maybeMoveToWaiting()
	}
}

// newGestureAllowedToStart reports whether no unrelated gesture is
// recognizing. Only one gesture recognizes at a time unless the two
// negotiated a relationship.
func (g *Gesture) newGestureAllowedToStart() bool {
	if g.stage == nil {
		return true
	}
	for _, other := range g.stage.activeGestures {
		if other == g {
			continue
		}
		if _, ok := other.related[g]; ok {
			continue
		}
		if other.state == GestureRecognizing {
			return false
		}
	}
	return true
}

func (g *Gesture) mayStart() bool {
	if !g.newGestureAllowedToStart() {
		g.debugf("gesture may not recognize, another gesture is already running")
		return false
	}
	if g.MayRecognize != nil && !g.MayRecognize() {
		g.debugf("MayRecognize prevented gesture from recognizing")
		return false
	}
	return true
}

// cancelIndependentGestures cancels every unrelated gesture still in
// POSSIBLE. Cancellation may shrink the active list, so it is walked
// backwards with a bounds check.
func (g *Gesture) cancelIndependentGestures() {
	s := g.stage
	for i := len(s.activeGestures) - 1; i >= 0; i-- {
		if i >= len(s.activeGestures) {
			continue
		}
		other := s.activeGestures[i]
		if other == g {
			continue
		}
		if _, ok := g.related[other]; ok {
			continue
		}
		if other.state == GesturePossible {
			g.debugf("cancelling independent gesture %q in POSSIBLE on recognize", other.name)
			other.setStateAuthoritative(GestureCancelled)
		}
	}
}

func (s *Stage) removeActiveGesture(g *Gesture) bool {
	for i, cur := range s.activeGestures {
		if cur == g {
			copy(s.activeGestures[i:], s.activeGestures[i+1:])
			s.activeGestures[len(s.activeGestures)-1] = nil
			s.activeGestures = s.activeGestures[:len(s.activeGestures)-1]
			return true
		}
	}
	return false
}

// --- Sequences ---

func (g *Gesture) sequenceIndex(id Identity) int {
	for i := range g.sequences {
		if !g.sequences[i].ended && g.sequences[i].id == id {
			return i
		}
	}
	return -1
}

func (g *Gesture) seq(i int) *gestureSequence {
	if i < 0 || i >= len(g.sequences) {
		return nil
	}
	return &g.sequences[i]
}

func (seq *gestureSequence) latestOrBegin() *Event {
	if seq.nEvents > 0 {
		return &seq.latest
	}
	return &seq.begin
}

// RegisterSequence accepts a new sequence unless the gesture already ended,
// already tracks points from a different physical device, or declines it
// through ShouldHandleSequence.
func (g *Gesture) RegisterSequence(begin *Event) bool {
	if g.state.terminal() {
		return false
	}
	for i := range g.sequences {
		if g.sequences[i].ended {
			continue
		}
		if g.sequences[i].sourceDevice != begin.SourceDevice {
			return false
		}
		break
	}
	if !g.shouldHandleSequence(begin) {
		return false
	}
	if g.state == GestureWaiting {
		g.setStateAuthoritative(GesturePossible)
		if g.state != GesturePossible {
			return false
		}
	}
	g.sequences = append(g.sequences, gestureSequence{
		id:           begin.Identity(),
		sourceDevice: begin.SourceDevice,
		begin:        *begin,
	})
	g.debugf("[d=%d s=%d] registered new sequence, n total sequences now: %d",
		begin.Device, begin.Sequence, len(g.sequences))
	return true
}

func (g *Gesture) shouldHandleSequence(begin *Event) bool {
	if g.ShouldHandleSequence == nil {
		warnf("gesture %q: ShouldHandleSequence not implemented", g.name)
		return false
	}
	return g.ShouldHandleSequence(begin)
}

// SequenceCancelled cancels the point of the identity.
func (g *Gesture) SequenceCancelled(id Identity) {
	i := g.sequenceIndex(id)
	if i < 0 {
		return
	}
	g.debugf("[d=%d s=%d] cancelling point", id.Device, id.Sequence)
	g.cancelSequence(i)
}

func (g *Gesture) cancelSequence(i int) {
	defer func() {
		if seq := g.seq(i); seq != nil {
			seq.ended = true
		}
		g.maybeMoveToWaiting()
	}()

	if g.state.terminal() {
		return
	}
	g.assert(g.state == GesturePossible || g.state == GestureRecognizing, "cancelling a point while waiting")

	// Losing the only sequence means the gesture never had input at all.
	if len(g.sequences) == 1 {
		g.setStateAuthoritative(GestureCancelled)
		return
	}
	seq := g.seq(i)
	if seq == nil || !seq.seen {
		return
	}
	g.sequencesCancelled([]int{i})
}

func (g *Gesture) cancelAllPoints() {
	defer func() {
		for i := range g.sequences {
			g.sequences[i].ended = true
		}
		g.maybeMoveToWaiting()
	}()

	if g.state.terminal() {
		return
	}
	g.assert(g.state == GesturePossible || g.state == GestureRecognizing, "cancelling points while waiting")

	var points []int
	nEnded := 0
	for i := range g.sequences {
		if g.sequences[i].ended {
			nEnded++
		}
		if g.sequences[i].seen && !g.sequences[i].ended {
			points = append(points, i)
		}
	}
	if nEnded == 0 {
		g.setStateAuthoritative(GestureCancelled)
		return
	}
	if len(points) == 0 {
		return
	}
	g.sequencesCancelled(points)
}

func (g *Gesture) sequencesCancelled(points []int) {
	if g.SequencesCancelled != nil {
		g.SequencesCancelled(points)
		return
	}
	g.setStateAuthoritative(GestureCancelled)
}

func (g *Gesture) pointEnded(point int) {
	if g.PointEnded != nil {
		g.PointEnded(point)
		return
	}
	if g.NPoints() == 1 {
		g.setStateAuthoritative(GestureCancelled)
	}
}

// --- Event handling ---

// HandleEvent feeds an event of a tracked sequence to the hooks. Gestures
// never stop propagation.
func (g *Gesture) HandleEvent(ev *Event) bool {
	if ev.IsSynthetic() {
		return false
	}
	idx := g.sequenceIndex(ev.Identity())
	if idx < 0 {
		return false
	}
	if ev.IsCrossing() {
		if g.CrossingEvent != nil {
			g.CrossingEvent(idx, ev)
		}
		return false
	}
	g.assert(g.state != GestureWaiting, "event for a waiting gesture")

	seq := &g.sequences[idx]
	oldState := g.state
	isFirst := !seq.seen
	shouldEmit := g.state == GesturePossible || g.state == GestureRecognizing
	mayRemove := true

	switch ev.Type {
	case EventButtonPress:
		seq.nButtons++
		if seq.nButtons >= 2 {
			shouldEmit = false
		}
	case EventButtonRelease:
		seq.nButtons--
		if seq.nButtons >= 1 {
			shouldEmit = false
			mayRemove = false
		}
	}

	if g.state == GesturePossible && len(g.sequences) == 1 && isFirst {
		// Other half of cancelIndependentGestures: bail out on the first
		// event when an independent gesture is already recognizing.
		if !g.newGestureAllowedToStart() {
			g.debugf("cancelling gesture on first event, another gesture is already running")
			g.setStateAuthoritative(GestureCancelled)
			return false
		}
	}

	if shouldEmit {
		seq.previous = seq.latest
		seq.latest = *ev
		seq.nEvents++
		seq.seen = true
		g.latestIndex = idx

		switch ev.Type {
		case EventButtonPress, EventTouchBegin:
			if g.PointBegan != nil {
				g.PointBegan(idx)
			}
		case EventMotion, EventTouchUpdate:
			if g.PointMoved != nil {
				g.PointMoved(idx)
			}
		case EventButtonRelease, EventTouchEnd:
			g.pointEnded(idx)
		case EventTouchCancel:
			g.cancelSequence(idx)
		}
	}

	// Hooks may have reset the sequences.
	seq = g.seq(idx)
	if seq == nil {
		return false
	}
	if mayRemove && ev.IsSequenceEnd() {
		seq.ended = true
		g.maybeMoveToWaiting()
		if seq = g.seq(idx); seq == nil {
			return false
		}
	}

	// A point added while recognizing is claimed as well, unless the hooks
	// cancelled it.
	if isFirst && !seq.ended &&
		oldState == GestureRecognizing && g.state == GestureRecognizing {
		if g.stage != nil {
			g.stage.notifyActionImplicitGrab(ev.Identity())
		}
		g.debugf("cancelling other gestures on newly added point automatically")
		g.maybeInfluenceOtherGestures()
	}
	return false
}

// --- Attachment ---

// SetEnabled cancels every point when the gesture is disabled while
// tracking.
func (g *Gesture) SetEnabled(enabled bool) {
	if !enabled && len(g.sequences) > 0 {
		g.debugf("disabling gesture while it has points, cancelling all points")
		g.cancelAllPoints()
	}
	g.BaseAction.SetEnabled(enabled)
}

func (g *Gesture) attach(n *Node) {
	if len(g.sequences) > 0 {
		g.debugf("detaching from node while gesture has points, cancelling all points")
		g.cancelAllPoints()
	}
	if n == nil && g.state == GestureWaiting {
		g.stage = nil
	}
	g.BaseAction.attach(n)
}

// Dispose detaches the gesture and drops every reference other gestures
// hold to it. A gesture still active afterwards is removed from the stage
// with a warning.
func (g *Gesture) Dispose() {
	if g.node != nil {
		g.node.RemoveAction(g.Impl())
	}
	if g.state != GestureWaiting {
		warnf("gesture %q: disposed while in active state (%s), implementation didn't move the gesture to an end state",
			g.name, g.state)
		if g.stage != nil {
			g.stage.removeActiveGesture(g)
		}
		for other := range g.related {
			delete(other.related, g)
			other.cancelOnRecognizing = removeGesture(other.cancelOnRecognizing, g)
		}
		clear(g.related)
		g.cancelOnRecognizing = nil
		g.sequences = nil
		g.state = GestureWaiting
	}
	for other := range g.canNotCancel {
		delete(other.canNotCancelBy, g)
	}
	for other := range g.canNotCancelBy {
		delete(other.canNotCancel, g)
	}
	g.canNotCancel = nil
	g.canNotCancelBy = nil
	g.stage = nil
}

// --- Points ---

// NPoints returns the number of points seen and not yet ended.
func (g *Gesture) NPoints() int {
	n := 0
	for i := range g.sequences {
		if g.sequences[i].seen && !g.sequences[i].ended {
			n++
		}
	}
	return n
}

// Points returns the indices of the points seen and not yet ended.
func (g *Gesture) Points() []int {
	var out []int
	for i := range g.sequences {
		if g.sequences[i].seen && !g.sequences[i].ended {
			out = append(out, i)
		}
	}
	return out
}

func (g *Gesture) point(i int) *gestureSequence {
	if i == -1 {
		i = g.latestIndex
	}
	return g.seq(i)
}

// PointIdentity returns the identity of a point. An index of -1 selects
// the point that received the latest event.
func (g *Gesture) PointIdentity(point int) Identity {
	if seq := g.point(point); seq != nil {
		return seq.id
	}
	return Identity{}
}

// PointEvent returns a copy of the latest event of a point.
func (g *Gesture) PointEvent(point int) Event {
	if seq := g.point(point); seq != nil {
		return *seq.latestOrBegin()
	}
	return Event{}
}

// PointCoordsAbs returns the latest stage coordinates of a point.
func (g *Gesture) PointCoordsAbs(point int) Vec2 {
	if seq := g.point(point); seq != nil {
		return seq.latestOrBegin().Position()
	}
	return Vec2{}
}

// PointCoords returns the latest coordinates of a point relative to the
// gesture's node.
func (g *Gesture) PointCoords(point int) Vec2 {
	return g.toLocal(g.PointCoordsAbs(point))
}

// PointBeginCoordsAbs returns the stage coordinates where a point began.
func (g *Gesture) PointBeginCoordsAbs(point int) Vec2 {
	if seq := g.point(point); seq != nil {
		return seq.begin.Position()
	}
	return Vec2{}
}

// PointBeginCoords returns where a point began, relative to the node.
func (g *Gesture) PointBeginCoords(point int) Vec2 {
	return g.toLocal(g.PointBeginCoordsAbs(point))
}

// PointPreviousCoordsAbs returns the stage coordinates of the event before
// the latest one of a point, or its begin coordinates.
func (g *Gesture) PointPreviousCoordsAbs(point int) Vec2 {
	seq := g.point(point)
	if seq == nil {
		return Vec2{}
	}
	if seq.nEvents > 1 {
		return seq.previous.Position()
	}
	return seq.begin.Position()
}

// PointPreviousCoords is PointPreviousCoordsAbs relative to the node.
func (g *Gesture) PointPreviousCoords(point int) Vec2 {
	return g.toLocal(g.PointPreviousCoordsAbs(point))
}

func (g *Gesture) toLocal(v Vec2) Vec2 {
	if g.node == nil {
		return v
	}
	x, y := g.node.WorldToLocal(v.X, v.Y)
	return Vec2{x, y}
}
