package thicket

// KeyFocus directs keyboard events. The requested node may be nil, in which
// case (or while the stage is inactive) the stage root is the effective
// target.
type KeyFocus struct {
	stage     *Stage
	requested *Node
	effective *Node
	chain     emissionChain
}

var _ Focus = (*KeyFocus)(nil)

func newKeyFocus(s *Stage) *KeyFocus {
	return &KeyFocus{stage: s}
}

// SetCurrentNode requests keyboard focus on n (nil for the stage).
func (k *KeyFocus) SetCurrentNode(n *Node, _ DeviceID, time uint32) bool {
	s := k.stage
	effective := n
	if n == nil || !s.active {
		effective = s.root
	}
	if k.requested == n && k.effective == effective {
		return false
	}

	old := k.effective
	// Cleared before the focus-out so handlers observing it do not see the
	// outgoing node as focused.
	k.effective = nil
	if old != nil {
		k.setHasKeyFocus(old, false, time)
	}

	k.requested = n
	k.effective = effective

	if inGrab(s.GrabNode(), effective) {
		k.setHasKeyFocus(effective, true, time)
	}
	s.debugf(DebugFocus, "key focus -> %s", nodeName(effective))
	s.handlers.emitKeyFocus(n)
	s.emitInteraction(InteractionEvent{Type: InteractionKeyFocusChanged, EntityID: entityOf(n)})
	return true
}

// CurrentNode returns the requested focus node, nil meaning the stage.
func (k *KeyFocus) CurrentNode() *Node { return k.requested }

// Effective returns the node key events are delivered to.
func (k *KeyFocus) Effective() *Node { return k.effective }

// NotifyGrab gives or takes key focus when the grab change moves the focus
// node into or out of the grabbed subtree.
func (k *KeyFocus) NotifyGrab(_ *Grab, grabNode, oldGrabNode *Node) {
	n := k.effective
	if n == nil {
		return
	}
	inNew := inGrab(grabNode, n)
	inOld := inGrab(oldGrabNode, n)
	switch {
	case inNew && !inOld:
		k.setHasKeyFocus(n, true, 0)
	case !inNew && inOld:
		k.setHasKeyFocus(n, false, 0)
	}
}

// PropagateEvent delivers a key event from the grab (or root) down to the
// effective focus and back up.
func (k *KeyFocus) PropagateEvent(ev *Event) {
	target := k.effective
	if target == nil {
		return
	}
	ev.Source = target
	k.emit(ev, k.stage.grabOrRoot(), target)
}

// UpdateFromEvent does nothing; key focus does not follow event contents.
func (k *KeyFocus) UpdateFromEvent(*Event) {}

// setHasKeyFocus flips the node flag and emits the focus event through the
// part of the chain inside the current grab.
func (k *KeyFocus) setHasKeyFocus(n *Node, focused bool, time uint32) {
	if n.keyFocused == focused {
		return
	}
	n.keyFocused = focused
	ev := Event{
		Type:   EventFocusOut,
		Flags:  FlagSynthetic,
		Time:   time,
		Source: n,
	}
	if focused {
		ev.Type = EventFocusIn
	}
	topmost := k.stage.grabOrRoot()
	if !inGrab(topmost, n) {
		topmost = n
	}
	k.emit(&ev, topmost, n)
}

func (k *KeyFocus) emit(ev *Event, topmost, deepmost *Node) {
	chain := &k.chain
	if chain.len() != 0 {
		chain = &emissionChain{}
	}
	chain.build(topmost, deepmost)
	chain.emit(ev)
	chain.reset()
}
