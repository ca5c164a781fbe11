package thicket

// HitShape is a custom hit testing region in local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// --- ID counter ---

// nodeIDCounter is a plain counter, not atomic: thicket is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is an element of the routing tree. Each node has at most one parent
// and an ordered child list; later children are stacked above earlier ones
// for picking.
type Node struct {
	ID   uint32
	Name string

	Parent   *Node
	children []*Node

	// X and Y offset the node from its parent. Hit shapes are expressed
	// relative to this origin.
	X, Y float64

	// HitShape defines the pickable area. Nodes without a shape are never
	// picked but their children still are.
	HitShape HitShape

	// EntityID links the node to an ECS entity. Zero means no entity.
	EntityID uint32
	UserData any

	// OnEvent is called on the bubble pass. Returning true stops propagation.
	OnEvent func(ev *Event) bool
	// OnCapturedEvent is called on the capture pass. Returning true stops
	// propagation.
	OnCapturedEvent func(ev *Event) bool

	visible  bool
	reactive bool
	mapped   bool
	disposed bool

	// stage is only set on a stage's root node.
	stage *Stage

	actions []Action
	grabs   []*Grab

	pointerCount  int
	keyFocused    bool
	implicitGrabs int
}

// NewNode creates a visible, non-reactive node.
func NewNode(name string) *Node {
	return &Node{
		ID:      nextNodeID(),
		Name:    name,
		visible: true,
	}
}

// NewHitArea creates a visible, reactive node picked through shape.
func NewHitArea(name string, shape HitShape) *Node {
	n := NewNode(name)
	n.HitShape = shape
	n.reactive = true
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.AddChildAt(child, -1)
}

// AddChildAt inserts child at the given index. An index of -1 appends.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("thicket: cannot add nil child")
	}
	debug := debugEnabled(n)
	if debug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("thicket: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	if index == -1 {
		index = len(n.children)
	}
	if index < 0 || index > len(n.children) {
		panic("thicket: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if debug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
	child.updateMapped()
}

// RemoveChild detaches child from this node. The child subtree is unmapped
// while still attached, so crossings and grabs are resolved against the
// intact ancestry. Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("thicket: child's parent is not this node")
	}
	if child.mapped {
		child.unmapSubtree()
	}
	// Unmap handlers may have reparented the child already.
	if child.Parent != n {
		return
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FirstChild returns the bottom-most child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// LastChild returns the top-most child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// NextSibling returns the sibling stacked directly above n, or nil.
func (n *Node) NextSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	i := n.Parent.indexOf(n)
	if i+1 < len(n.Parent.children) {
		return n.Parent.children[i+1]
	}
	return nil
}

// PreviousSibling returns the sibling stacked directly below n, or nil.
func (n *Node) PreviousSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	i := n.Parent.indexOf(n)
	if i > 0 {
		return n.Parent.children[i-1]
	}
	return nil
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("thicket: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		panic("thicket: child index out of range")
	}
	oldIndex := n.indexOf(child)
	if oldIndex == index {
		return
	}
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
}

// Contains reports whether other is n or a descendant of n. A nil other is
// never contained.
func (n *Node) Contains(other *Node) bool {
	if other == nil {
		return false
	}
	return isAncestor(n, other)
}

// --- Visibility and reactivity ---

// SetVisible shows or hides the node. Hiding unmaps the subtree.
func (n *Node) SetVisible(visible bool) {
	if n.visible == visible {
		return
	}
	n.visible = visible
	n.updateMapped()
}

// IsVisible reports the node's own visibility flag.
func (n *Node) IsVisible() bool { return n.visible }

// Mapped reports whether the node is attached to a stage and every node on
// its path to the root is visible. Only mapped nodes are picked.
func (n *Node) Mapped() bool { return n.mapped }

// SetReactive controls whether the node itself can be picked. Making the
// node under a pointer non-reactive re-picks that pointer.
func (n *Node) SetReactive(reactive bool) {
	if n.reactive == reactive {
		return
	}
	n.reactive = reactive
	if !reactive && n.pointerCount > 0 {
		if s := n.Stage(); s != nil {
			s.invalidateFocus(n)
		}
	}
}

// IsReactive reports whether the node can be picked.
func (n *Node) IsReactive() bool { return n.reactive }

// HasPointer reports whether at least one pointer identity is over the node.
func (n *Node) HasPointer() bool { return n.pointerCount > 0 }

// HasKeyFocus reports whether the node holds keyboard focus inside the
// current grab.
func (n *Node) HasKeyFocus() bool { return n.keyFocused }

// Stage returns the stage the node is attached to, or nil.
func (n *Node) Stage() *Stage {
	p := n
	for p.Parent != nil {
		p = p.Parent
	}
	return p.stage
}

// WorldPosition returns the node origin in stage coordinates.
func (n *Node) WorldPosition() Vec2 {
	var v Vec2
	for p := n; p != nil; p = p.Parent {
		v.X += p.X
		v.Y += p.Y
	}
	return v
}

// WorldToLocal converts stage coordinates to this node's local coordinates.
func (n *Node) WorldToLocal(x, y float64) (float64, float64) {
	o := n.WorldPosition()
	return x - o.X, y - o.Y
}

// --- Actions ---

// AddAction attaches a to the node. An action attached elsewhere is moved.
func (n *Node) AddAction(a Action) {
	if a == nil {
		panic("thicket: cannot add nil action")
	}
	// A disposed node has no stage; the action's current stage decides.
	if debugEnabled(n) || (a.Node() != nil && debugEnabled(a.Node())) {
		debugCheckDisposed(n, "AddAction")
	}
	if cur := a.Node(); cur != nil {
		if cur == n {
			return
		}
		cur.RemoveAction(a)
	}
	n.actions = append(n.actions, a)
	a.attach(n)
}

// RemoveAction detaches a from the node. Removing an action that is not
// attached logs a warning and does nothing.
func (n *Node) RemoveAction(a Action) {
	for i, cur := range n.actions {
		if cur == a {
			copy(n.actions[i:], n.actions[i+1:])
			n.actions[len(n.actions)-1] = nil
			n.actions = n.actions[:len(n.actions)-1]
			a.attach(nil)
			return
		}
	}
	warnf("RemoveAction: action %q is not attached to node %q", actionName(a), n.Name)
}

// Actions returns the attached actions in insertion order. The returned
// slice MUST NOT be mutated by the caller.
func (n *Node) Actions() []Action {
	return n.actions
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Grabs bound to disposed nodes
// are revoked and their actions detached.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for len(n.grabs) > 0 {
		n.grabs[len(n.grabs)-1].revoke()
	}
	for len(n.actions) > 0 {
		n.RemoveAction(n.actions[len(n.actions)-1])
	}
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.ID = 0
	n.children = nil
	n.Parent = nil
	n.HitShape = nil
	n.UserData = nil
	n.OnEvent = nil
	n.OnCapturedEvent = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) removeChildByPtr(child *Node) {
	i := n.indexOf(child)
	if i < 0 {
		return
	}
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
}

func (n *Node) updateMapped() {
	want := n.visible && (n.stage != nil || (n.Parent != nil && n.Parent.mapped))
	if want == n.mapped {
		return
	}
	if want {
		n.mapSubtree()
	} else {
		n.unmapSubtree()
	}
}

func (n *Node) mapSubtree() {
	n.mapped = true
	for _, c := range n.children {
		if c.visible && !c.mapped {
			c.mapSubtree()
		}
	}
}

// unmapSubtree unmaps children before their parent so that anything
// relocated to a parent during notification lands on a still-mapped node.
func (n *Node) unmapSubtree() {
	if len(n.children) > 0 {
		kids := append([]*Node(nil), n.children...)
		for _, c := range kids {
			if c.mapped && c.Parent == n {
				c.unmapSubtree()
			}
		}
	}
	n.mapped = false
	if s := n.Stage(); s != nil {
		s.nodeUnmapped(n)
	}
}
