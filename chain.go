package thicket

// handledState reports who, if anyone, stopped an emission.
type handledState uint8

const (
	notHandled handledState = iota
	handledByNode
	handledByAction
)

// receiver is one entry of an emission chain. Node entries have node set;
// action entries have action set. An entry with neither has been cleared
// and is skipped.
type receiver struct {
	node       *Node
	phase      Phase
	emitToNode bool

	action Action
}

// emissionChain is the ordered receiver list an event travels through.
type emissionChain struct {
	receivers []receiver
	nodes     []*Node
}

func (c *emissionChain) len() int { return len(c.receivers) }

func (c *emissionChain) reset() {
	clear(c.receivers)
	c.receivers = c.receivers[:0]
}

// collectPath appends deepmost and its ancestors up to and including
// topmost. A nil topmost walks to the tree root. When deepmost lies
// outside topmost the path is topmost alone: the grab root handles every
// event that falls outside of it.
func collectPath(topmost, deepmost *Node, buf []*Node) []*Node {
	start := len(buf)
	for n := deepmost; n != nil; n = n.Parent {
		buf = append(buf, n)
		if n == topmost {
			return buf
		}
	}
	if topmost == nil {
		return buf
	}
	clear(buf[start:])
	buf = buf[:start]
	if topmost != nil {
		buf = append(buf, topmost)
	}
	return buf
}

// build fills the chain for an emission bounded by topmost and deepmost:
// the capture pass from topmost down, then the bubble pass from deepmost
// up. Capture actions precede their node; bubble actions follow it.
func (c *emissionChain) build(topmost, deepmost *Node) {
	if deepmost == nil {
		return
	}
	c.nodes = collectPath(topmost, deepmost, c.nodes[:0])

	for i := len(c.nodes) - 1; i >= 0; i-- {
		n := c.nodes[i]
		for _, a := range n.actions {
			if a.Enabled() && a.Phase() == PhaseCapture {
				c.receivers = append(c.receivers, receiver{action: a})
			}
		}
		c.receivers = append(c.receivers, receiver{node: n, phase: PhaseCapture, emitToNode: true})
	}
	for _, n := range c.nodes {
		c.receivers = append(c.receivers, receiver{node: n, phase: PhaseBubble, emitToNode: true})
		for _, a := range n.actions {
			if a.Enabled() && a.Phase() == PhaseBubble {
				c.receivers = append(c.receivers, receiver{action: a})
			}
		}
	}
	clear(c.nodes)
	c.nodes = c.nodes[:0]
}

// emit delivers ev along the chain until a receiver handles it. The chain
// may be modified by the receivers themselves, so every step re-reads the
// entry at its index.
func (c *emissionChain) emit(ev *Event) handledState {
	return c.emitOnPath(ev, nil, nil)
}

// emitOnPath is emit restricted, for node entries, to the nodes between
// deepmost and topmost inclusive. A nil deepmost places no restriction.
// Action entries always receive the event.
func (c *emissionChain) emitOnPath(ev *Event, topmost, deepmost *Node) handledState {
	crossing := ev.IsCrossing()
	for i := 0; i < len(c.receivers); i++ {
		r := c.receivers[i]
		switch {
		case r.node != nil:
			if !r.emitToNode && !crossing {
				continue
			}
			if r.node.disposed || (!r.node.mapped && !crossing) {
				continue
			}
			if deepmost != nil && !onPath(r.node, topmost, deepmost) {
				continue
			}
			if r.node.deliver(ev, r.phase) {
				return handledByNode
			}
		case r.action != nil:
			if r.action.Node() == nil {
				continue
			}
			if r.action.HandleEvent(ev) {
				return handledByAction
			}
		}
	}
	return notHandled
}

// onPath reports whether n lies between deepmost and topmost. A nil
// topmost reaches the tree root.
func onPath(n, topmost, deepmost *Node) bool {
	if !n.Contains(deepmost) {
		return false
	}
	return topmost == nil || topmost.Contains(n)
}

func (n *Node) deliver(ev *Event, phase Phase) bool {
	if phase == PhaseCapture {
		if n.OnCapturedEvent != nil {
			return n.OnCapturedEvent(ev)
		}
		return false
	}
	if n.OnEvent != nil {
		return n.OnEvent(ev)
	}
	return false
}

// removeAllNodes stops delivery to every node entry. Crossing events still
// reach them.
func (c *emissionChain) removeAllNodes() {
	for i := range c.receivers {
		if c.receivers[i].node != nil {
			c.receivers[i].emitToNode = false
		}
	}
}

// removeAllActions cancels the sequence on every action entry and clears it.
func (c *emissionChain) removeAllActions(id Identity) {
	for i := 0; i < len(c.receivers); i++ {
		if a := c.receivers[i].action; a != nil {
			c.receivers[i].action = nil
			a.SequenceCancelled(id)
		}
	}
}

// cancelAllActions tells every action entry the sequence is gone without
// clearing the entries.
func (c *emissionChain) cancelAllActions(id Identity) {
	for i := 0; i < len(c.receivers); i++ {
		if a := c.receivers[i].action; a != nil {
			a.SequenceCancelled(id)
		}
	}
}

// pruneOutside drops entries whose node is outside grabNode and returns
// how many entries were removed and how many still deliver.
func (c *emissionChain) pruneOutside(grabNode *Node, id Identity) (removed, remaining int) {
	for i := 0; i < len(c.receivers); i++ {
		r := &c.receivers[i]
		switch {
		case r.node != nil && r.emitToNode:
			if !grabNode.Contains(r.node) {
				r.emitToNode = false
				removed++
			} else {
				remaining++
			}
		case r.action != nil:
			an := r.action.Node()
			if an == nil || !grabNode.Contains(an) {
				a := r.action
				r.action = nil
				a.SequenceCancelled(id)
				removed++
			} else {
				remaining++
			}
		}
	}
	return removed, remaining
}

// dropNode stops delivery to n and cancels the sequence on its actions
// (and on actions that lost their node). n keeps receiving crossings so
// that the pointer leaving it is still reported.
func (c *emissionChain) dropNode(n *Node, id Identity) {
	for i := 0; i < len(c.receivers); i++ {
		r := &c.receivers[i]
		switch {
		case r.node != nil:
			if r.node == n {
				r.emitToNode = false
			}
		case r.action != nil:
			an := r.action.Node()
			if an == nil || an == n {
				a := r.action
				r.action = nil
				a.SequenceCancelled(id)
			}
		}
	}
}

// setupSequenceActions offers the sequence to each action, drops those
// that decline, then lets every remaining pair negotiate.
func (c *emissionChain) setupSequenceActions(begin *Event) {
	for i := 0; i < len(c.receivers); i++ {
		a := c.receivers[i].action
		if a == nil {
			continue
		}
		if !a.RegisterSequence(begin) {
			c.receivers[i].action = nil
		}
	}
	for i := 0; i < len(c.receivers); i++ {
		a1 := c.receivers[i].action
		if a1 == nil {
			continue
		}
		for j := i + 1; j < len(c.receivers); j++ {
			a2 := c.receivers[j].action
			if a2 == nil {
				continue
			}
			a1.SetupSequenceRelationship(a2, begin)
		}
	}
}

// --- Inspection ---

// ChainEntry describes one receiver of an emission chain.
type ChainEntry struct {
	Node   *Node
	Action Action
	Phase  Phase
}

// EmissionOrder returns the receivers an event bounded by topmost and
// deepmost would visit, in order.
func EmissionOrder(topmost, deepmost *Node) []ChainEntry {
	var c emissionChain
	c.build(topmost, deepmost)
	out := make([]ChainEntry, 0, len(c.receivers))
	for _, r := range c.receivers {
		if r.action != nil {
			out = append(out, ChainEntry{Node: r.action.Node(), Action: r.action, Phase: r.action.Phase()})
			continue
		}
		out = append(out, ChainEntry{Node: r.node, Phase: r.phase})
	}
	return out
}
