package thicket

// Focus tracks where one input source is directed. The stage owns one
// KeyFocus and one PointerFocus per pointer identity; both are told about
// every effective grab change.
type Focus interface {
	// SetCurrentNode moves the focus and reports whether it changed.
	SetCurrentNode(n *Node, sourceDevice DeviceID, time uint32) bool
	CurrentNode() *Node
	// PropagateEvent delivers ev along the chain from the grab (or root)
	// to the focus target.
	PropagateEvent(ev *Event)
	// NotifyGrab re-evaluates the focus after the topmost grab moved from
	// oldGrabNode to grabNode. Nil means no grab.
	NotifyGrab(grab *Grab, grabNode, oldGrabNode *Node)
	UpdateFromEvent(ev *Event)
}

// inGrab reports whether n is reachable inside grabNode. A nil grab
// contains everything.
func inGrab(grabNode, n *Node) bool {
	return grabNode == nil || grabNode == n || grabNode.Contains(n)
}
