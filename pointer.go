package thicket

// PointerFocus tracks one pointer identity: a mouse (sequence zero) or one
// touch contact. It remembers the node under the identity, emits crossings
// when that changes, and holds the implicit grab that pins the emission
// chain from press to release.
type PointerFocus struct {
	stage  *Stage
	id     Identity
	coords Vec2

	current   *Node
	clearArea *Rect

	// pressCount coalesces overlapping mouse button presses into one
	// implicit grab. Touch identities never exceed one.
	pressCount   int
	implicitGrab *Node
	pinned       emissionChain
	scratch      emissionChain
}

var _ Focus = (*PointerFocus)(nil)

func newPointerFocus(s *Stage, id Identity) *PointerFocus {
	return &PointerFocus{stage: s, id: id}
}

// Identity returns the (device, sequence) pair this focus tracks.
func (p *PointerFocus) Identity() Identity { return p.id }

// Coords returns the last known stage coordinates.
func (p *PointerFocus) Coords() Vec2 { return p.coords }

// CurrentNode returns the node under the identity.
func (p *PointerFocus) CurrentNode() *Node { return p.current }

// ImplicitGrabNode returns the node the implicit grab is anchored to, or nil
// when no sequence is in progress.
func (p *PointerFocus) ImplicitGrabNode() *Node { return p.implicitGrab }

// PressCount returns the number of coalesced presses held.
func (p *PointerFocus) PressCount() int { return p.pressCount }

// UpdateFromEvent records the event coordinates.
func (p *PointerFocus) UpdateFromEvent(ev *Event) {
	p.coords = Vec2{ev.X, ev.Y}
}

func (p *PointerFocus) update(coords Vec2, clearArea *Rect) {
	p.coords = coords
	p.clearArea = clearArea
}

func (p *PointerFocus) pointInClearArea(v Vec2) bool {
	return p.clearArea != nil && p.clearArea.Contains(v.X, v.Y)
}

// SetCurrentNode moves the identity to n, emitting LEAVE on the old node
// and ENTER on the new one, both bounded by their common ancestor (or the
// grab node when the ancestor lies outside the grab).
func (p *PointerFocus) SetCurrentNode(n *Node, sourceDevice DeviceID, time uint32) bool {
	if p.current == n {
		return false
	}
	old := p.current
	if old != nil {
		old.pointerCount--
	}
	p.current = n
	if n != nil {
		n.pointerCount++
	}

	s := p.stage
	root := s.commonRoot(n, old)
	if sourceDevice == 0 {
		sourceDevice = p.id.Device
	}
	if g := s.GrabNode(); g != nil && root != g && !g.Contains(root) {
		root = g
	}

	if old != nil {
		ev := p.crossing(EventLeave, 0, old, n)
		ev.SourceDevice = sourceDevice
		ev.Time = time
		p.emitCrossing(&ev, old, root)
		s.emitInteraction(InteractionEvent{
			Type: InteractionPointerLeave, EntityID: old.EntityID,
			X: p.coords.X, Y: p.coords.Y, Device: p.id.Device, Sequence: p.id.Sequence,
		})
	}
	if n != nil {
		ev := p.crossing(EventEnter, 0, n, old)
		ev.SourceDevice = sourceDevice
		ev.Time = time
		p.emitCrossing(&ev, n, root)
		s.emitInteraction(InteractionEvent{
			Type: InteractionPointerEnter, EntityID: n.EntityID,
			X: p.coords.X, Y: p.coords.Y, Device: p.id.Device, Sequence: p.id.Sequence,
		})
	}
	return true
}

func (p *PointerFocus) crossing(t EventType, flags EventFlags, source, related *Node) Event {
	return Event{
		Type:         t,
		Flags:        flags,
		Time:         p.stage.now,
		Device:       p.id.Device,
		SourceDevice: p.id.Device,
		Sequence:     p.id.Sequence,
		X:            p.coords.X,
		Y:            p.coords.Y,
		Source:       source,
		Related:      related,
	}
}

// NotifyGrab prunes the implicit grab against the new grab and emits the
// crossings between the old and new grab nodes.
func (p *PointerFocus) NotifyGrab(grab *Grab, grabNode, oldGrabNode *Node) {
	if p.current == nil {
		return
	}
	s := p.stage
	inNew := inGrab(grabNode, p.current)
	inOld := inGrab(oldGrabNode, p.current)

	implicitCancelled := false
	removed, remaining := 0, 0
	if grabNode != nil && p.pressCount > 0 {
		removed, remaining = p.pinned.pruneOutside(grabNode, p.id)
		// A grab wins over the implicit grab unless it keeps part of it.
		implicitCancelled = remaining == 0
		s.debugf(DebugGrabs, "[device=%d sequence=%d implicit_grab_cancelled=%t] removed %d receivers (%d remaining) due to new grab",
			p.id.Device, p.id.Sequence, implicitCancelled, removed, remaining)
	}
	if implicitCancelled {
		// Nodes skipped while the implicit grab held the identity are
		// entered before the grab crossings are computed.
		p.syncCrossingsOnImplicitGrabEnd()
		p.cleanupImplicitGrab()
	}

	if grabNode == nil {
		grabNode = s.root
	}
	if oldGrabNode == nil {
		oldGrabNode = s.root
	}
	if grabNode == oldGrabNode {
		s.debugAssert((removed == 0 && remaining == 0) || !implicitCancelled,
			"implicit grab cancelled without a grab change")
		return
	}

	evType := EventNothing
	var topmost, deepmost *Node
	switch {
	case inNew && inOld:
		if grabNode.Contains(oldGrabNode) {
			evType = EventEnter
			deepmost = oldGrabNode.Parent
			topmost = grabNode
		} else if oldGrabNode.Contains(grabNode) {
			evType = EventLeave
			deepmost = grabNode.Parent
			topmost = oldGrabNode
		}
	case inNew:
		evType = EventEnter
		deepmost = p.current
		topmost = grabNode
	case inOld:
		evType = EventLeave
		deepmost = p.current
		topmost = s.commonRoot(grabNode, oldGrabNode)
	}

	if evType != EventNothing {
		if p.implicitGrab != nil {
			deepmost = s.commonRoot(p.implicitGrab, deepmost)
		}
		related := oldGrabNode
		if evType == EventLeave {
			related = grabNode
		}
		ev := p.crossing(evType, FlagGrabNotify, p.current, related)
		p.emitCrossing(&ev, deepmost, topmost)
	}
}

// PropagateEvent delivers a pointer event. A sequence begin event sets up
// the implicit grab and pins the chain; while the grab holds, every event
// of the identity travels that chain.
func (p *PointerFocus) PropagateEvent(ev *Event) {
	if ev.Type == EventNothing {
		return
	}
	target := p.current
	if target == nil {
		return
	}
	s := p.stage
	ev.Source = target

	top := s.grabOrRoot()

	if ev.IsSequenceBegin() && p.setupImplicitGrab() {
		s.debugAssert(p.implicitGrab == nil, "implicit grab already anchored")
		p.implicitGrab = target
		target.implicitGrabs++
		p.pinned.build(top, target)
		p.pinned.setupSequenceActions(ev)
	}

	if p.pressCount > 0 {
		if p.pinned.emit(ev) == handledByNode {
			p.pinned.removeAllActions(p.id)
		}
	} else {
		chain := &p.scratch
		if chain.len() != 0 {
			chain = &emissionChain{}
		}
		chain.build(top, target)
		chain.emit(ev)
		chain.reset()
	}

	if ev.IsSequenceEnd() && p.id.IsTouch() {
		// The stage removes the identity next; its final LEAVE still
		// travels the pinned chain.
		return
	}
	if ev.IsSequenceEnd() && p.releaseImplicitGrab() {
		if ev.Type == EventButtonRelease {
			p.syncCrossingsOnImplicitGrabEnd()
		}
		p.cleanupImplicitGrab()
	}
}

func (p *PointerFocus) setupImplicitGrab() bool {
	// A second mouse button pressed while one is held joins the running
	// grab; it is released with the last button.
	if !p.id.IsTouch() && p.pressCount > 0 {
		p.pressCount++
		return false
	}
	p.stage.debugf(DebugGrabs, "[device=%d sequence=%d] acquiring implicit grab", p.id.Device, p.id.Sequence)
	p.stage.debugAssert(p.pressCount == 0, "implicit grab set up twice")
	p.pressCount = 1
	return true
}

func (p *PointerFocus) releaseImplicitGrab() bool {
	if p.pressCount == 0 {
		return false
	}
	if !p.id.IsTouch() && p.pressCount > 1 {
		p.pressCount--
		return false
	}
	p.stage.debugf(DebugGrabs, "[device=%d sequence=%d] releasing implicit grab", p.id.Device, p.id.Sequence)
	p.pressCount = 0
	return true
}

func (p *PointerFocus) cleanupImplicitGrab() {
	if p.implicitGrab != nil {
		p.implicitGrab.implicitGrabs--
		p.implicitGrab = nil
	}
	p.pinned.reset()
	p.pressCount = 0
}

// syncCrossingsOnImplicitGrabEnd enters the part of the current node's
// ancestry that does not contain the old anchor. Those nodes were skipped
// while the grab held the identity. Nothing outside the effective grab is
// entered.
func (p *PointerFocus) syncCrossingsOnImplicitGrabEnd() {
	if p.current == nil || p.current.Contains(p.implicitGrab) {
		return
	}
	grabNode := p.stage.GrabNode()
	if grabNode != nil && !grabNode.Contains(p.current) {
		return
	}
	deepmost := p.current
	topmost := p.current
	for topmost != grabNode {
		parent := topmost.Parent
		if parent == nil || parent.Contains(p.implicitGrab) {
			break
		}
		topmost = parent
	}
	ev := p.crossing(EventEnter, FlagGrabNotify, p.current, nil)
	p.emitCrossing(&ev, deepmost, topmost)
}

// removeAllNodesFromChain stops node delivery on the pinned chain once an
// action has claimed the sequence.
func (p *PointerFocus) removeAllNodesFromChain() {
	p.stage.debugAssert(p.pressCount > 0, "no implicit grab to claim")
	p.pinned.removeAllNodes()
}

// maybeLostImplicitGrab cancels the sequence on every action and tears the
// implicit grab down.
func (p *PointerFocus) maybeLostImplicitGrab() {
	if p.pressCount == 0 {
		return
	}
	p.stage.debugf(DebugGrabs, "[device=%d sequence=%d] lost implicit grab", p.id.Device, p.id.Sequence)
	p.pinned.cancelAllActions(p.id)
	p.syncCrossingsOnImplicitGrabEnd()
	p.cleanupImplicitGrab()
}

// maybeBreakImplicitGrab drops n from the pinned chain when n anchors the
// implicit grab and moves the anchor to n's parent.
func (p *PointerFocus) maybeBreakImplicitGrab(n *Node) {
	if p.implicitGrab != n {
		return
	}
	p.stage.debugf(DebugGrabs, "[device=%d sequence=%d] cancelling implicit grab on %s due to unmap",
		p.id.Device, p.id.Sequence, nodeName(n))
	p.pinned.dropNode(n, p.id)

	n.implicitGrabs--
	p.implicitGrab = nil
	if parent := n.Parent; parent != nil {
		p.stage.debugAssert(parent.mapped, "implicit grab moved to unmapped parent")
		p.implicitGrab = parent
		parent.implicitGrabs++
	}
}

// emitCrossing delivers a crossing. Motion crossings during an implicit
// grab use the pinned chain, limited to the nodes between deepmost and
// topmost; grab crossings and everything else get a chain of their own.
func (p *PointerFocus) emitCrossing(ev *Event, deepmost, topmost *Node) {
	if p.pressCount > 0 && !ev.IsGrabNotify() {
		// Pinned nodes off the crossing's own path are not told about it.
		p.pinned.emitOnPath(ev, topmost, deepmost)
		return
	}
	// Crossings can happen in the middle of another emission, when a node
	// unmaps or a grab starts from a handler.
	chain := &p.scratch
	if chain.len() != 0 {
		chain = &emissionChain{}
	}
	chain.build(topmost, deepmost)
	chain.emit(ev)
	chain.reset()
}
