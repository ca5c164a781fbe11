package thicket

// Action is a handler attached to a node that takes part in event emission
// alongside the node itself. Actions run on either the capture or the bubble
// pass, and may claim input sequences through the implicit grab.
//
// Implementations embed BaseAction (or a type built on it, such as Gesture)
// and override the methods they need.
type Action interface {
	// Node returns the node the action is attached to, or nil.
	Node() *Node
	Phase() Phase
	Enabled() bool
	Name() string

	// HandleEvent receives an event during emission. Returning true stops
	// propagation.
	HandleEvent(ev *Event) bool
	// RegisterSequence is offered the begin event of an implicit grab.
	// Returning false removes the action from that grab's chain.
	RegisterSequence(ev *Event) bool
	// SequenceCancelled tells the action it no longer receives events for
	// the identity.
	SequenceCancelled(id Identity)
	// SetupSequenceRelationship negotiates with another action sharing the
	// sequence. The result orders the pair: negative puts the receiver first.
	SetupSequenceRelationship(other Action, ev *Event) int

	attach(n *Node)
}

// BaseAction carries the state every action shares. The zero value is a
// bubble-phase, enabled action with no node.
type BaseAction struct {
	name     string
	node     *Node
	phase    Phase
	disabled bool
}

// Node returns the attached node.
func (a *BaseAction) Node() *Node { return a.node }

// Name returns the action name.
func (a *BaseAction) Name() string { return a.name }

// SetName sets the action name used in logs and debug notes.
func (a *BaseAction) SetName(name string) { a.name = name }

// Phase returns the emission pass the action runs on.
func (a *BaseAction) Phase() Phase { return a.phase }

// SetPhase selects the emission pass. Changing it while a sequence is
// running takes effect on the next chain built.
func (a *BaseAction) SetPhase(p Phase) { a.phase = p }

// Enabled reports whether the action is included in emission chains.
func (a *BaseAction) Enabled() bool { return !a.disabled }

// SetEnabled includes or excludes the action from emission chains.
func (a *BaseAction) SetEnabled(enabled bool) { a.disabled = !enabled }

// HandleEvent propagates.
func (a *BaseAction) HandleEvent(*Event) bool { return false }

// RegisterSequence declines.
func (a *BaseAction) RegisterSequence(*Event) bool { return false }

// SequenceCancelled does nothing.
func (a *BaseAction) SequenceCancelled(Identity) {}

// SetupSequenceRelationship keeps the chain order.
func (a *BaseAction) SetupSequenceRelationship(Action, *Event) int { return 0 }

func (a *BaseAction) attach(n *Node) { a.node = n }

// FuncAction is an action that forwards events to a callback. It never
// registers for sequences, so it sees implicit-grab events only through
// fresh chains.
type FuncAction struct {
	BaseAction
	Fn func(ev *Event) bool
}

// NewFuncAction creates an action calling fn on the given pass.
func NewFuncAction(name string, phase Phase, fn func(ev *Event) bool) *FuncAction {
	return &FuncAction{BaseAction: BaseAction{name: name, phase: phase}, Fn: fn}
}

// HandleEvent calls Fn.
func (a *FuncAction) HandleEvent(ev *Event) bool {
	if a.Fn == nil {
		return false
	}
	return a.Fn(ev)
}

func actionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.Name()
}
