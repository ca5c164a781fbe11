package thicket

// Grab restricts event delivery to the subtree of one node. Grabs form a
// stack on the stage; only the topmost is effective. A grab is released
// with Dismiss, or revoked automatically when its node is disposed.
type Grab struct {
	stage     *Stage
	node      *Node
	prev      *Grab
	next      *Grab
	ownsNode  bool
	revoked   bool
	dismissed bool
}

// Grab creates a grab on n and activates it.
func (s *Stage) Grab(n *Node) *Grab {
	g := s.grabFull(n, false)
	if g != nil {
		g.Activate()
	}
	return g
}

// GrabInactive creates a grab on n that takes effect on Activate.
func (s *Stage) GrabInactive(n *Node) *Grab {
	return s.grabFull(n, false)
}

// GrabInputOnly creates an inactive grab on a zero-size node that routes
// every grabbed event to fn. The node is owned by the grab and disposed
// when the grab is dismissed.
func (s *Stage) GrabInputOnly(fn func(ev *Event) bool) *Grab {
	n := NewNode("input only grab node")
	n.reactive = true
	n.OnEvent = fn
	s.root.AddChildAt(n, 0)
	return s.grabFull(n, true)
}

func (s *Stage) grabFull(n *Node, owns bool) *Grab {
	if n == nil {
		panic("thicket: cannot grab nil node")
	}
	if n.Stage() != s {
		warnf("Grab: node %q is not attached to this stage", n.Name)
		return nil
	}
	g := &Grab{stage: s, node: n, ownsNode: owns}
	n.grabs = append(n.grabs, g)
	return g
}

// Node returns the grabbed node. It is nil once an owned node has been
// disposed.
func (g *Grab) Node() *Node { return g.node }

// IsRevoked reports whether the grab was dismissed because its node was
// disposed.
func (g *Grab) IsRevoked() bool { return g.revoked }

// IsActive reports whether the grab is on the stack.
func (g *Grab) IsActive() bool {
	return g.prev != nil || g.next != nil || g.stage.topmostGrab == g
}

// Activate pushes the grab onto the top of the stack. Activating an active
// or revoked grab does nothing; a dismissed grab may be activated again.
func (g *Grab) Activate() {
	s := g.stage
	if g.IsActive() || g.revoked || g.node == nil {
		return
	}
	if g.dismissed {
		g.dismissed = false
		g.node.grabs = append(g.node.grabs, g)
	}
	g.prev = nil
	g.next = s.topmostGrab
	if s.topmostGrab != nil {
		s.topmostGrab.prev = g
	}
	s.topmostGrab = g

	s.debugf(DebugGrabs, "attached grab on %s (n_grabs: %d)", nodeName(g.node), s.grabCount())
	s.notifyGrab(g, g.next)
}

// Dismiss removes the grab. When it was the effective grab, focus trackers
// receive the crossings for the change. Dismissing a revoked grab does
// nothing; dismissing twice logs a warning.
func (g *Grab) Dismiss() {
	if g.revoked {
		return
	}
	if g.dismissed {
		warnf("Dismiss: grab on %q already dismissed", nodeName(g.node))
		return
	}
	g.release()
}

func (g *Grab) revoke() {
	if g.revoked {
		return
	}
	g.revoked = true
	g.stage.debugf(DebugGrabs, "revoked grab on %s", nodeName(g.node))
	g.release()
}

func (g *Grab) release() {
	g.dismissed = true
	g.node.removeGrab(g)
	g.stage.unlinkGrab(g)
	if g.ownsNode && g.node != nil {
		n := g.node
		g.node = nil
		n.Dispose()
	}
}

func (s *Stage) unlinkGrab(g *Grab) {
	if !g.IsActive() {
		return
	}
	prev, next := g.prev, g.next
	if prev != nil {
		prev.next = next
	}
	if next != nil {
		next.prev = prev
	}
	wasTop := s.topmostGrab == g
	if wasTop {
		s.debugAssert(prev == nil, "topmost grab has a predecessor")
		s.topmostGrab = next
	}
	g.prev = nil
	g.next = nil

	if wasTop {
		s.notifyGrab(next, g)
	} else {
		// The effective grab is unchanged; trackers early out.
		s.notifyGrab(s.topmostGrab, s.topmostGrab)
	}
	s.debugf(DebugGrabs, "detached grab (n_grabs: %d)", s.grabCount())
}

// notifyGrab tells every focus tracker that the effective grab moved from
// old to cur.
func (s *Stage) notifyGrab(cur, old *Grab) {
	var curNode, oldNode *Node
	if cur != nil {
		curNode = cur.node
	}
	if old != nil {
		oldNode = old.node
	}
	if curNode == oldNode {
		return
	}
	for _, p := range s.pointerSnapshot() {
		p.NotifyGrab(cur, curNode, oldNode)
	}
	s.keyFocus.NotifyGrab(cur, curNode, oldNode)

	s.handlers.emitGrab(cur)
	s.emitInteraction(InteractionEvent{Type: InteractionGrabChanged, EntityID: entityOf(curNode)})
}

// GrabNode returns the node holding the effective grab, or nil.
func (s *Stage) GrabNode() *Node {
	if s.topmostGrab == nil {
		return nil
	}
	return s.topmostGrab.node
}

// IsGrabbed reports whether any grab is active.
func (s *Stage) IsGrabbed() bool { return s.topmostGrab != nil }

func (s *Stage) grabOrRoot() *Node {
	if n := s.GrabNode(); n != nil {
		return n
	}
	return s.root
}

func (s *Stage) grabCount() int {
	n := 0
	for g := s.topmostGrab; g != nil; g = g.next {
		n++
	}
	return n
}

func (n *Node) removeGrab(g *Grab) {
	if n == nil {
		return
	}
	for i, cur := range n.grabs {
		if cur == g {
			copy(n.grabs[i:], n.grabs[i+1:])
			n.grabs[len(n.grabs)-1] = nil
			n.grabs = n.grabs[:len(n.grabs)-1]
			return
		}
	}
}
