package ecs

import (
	"github.com/phanxgames/thicket"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType carries every interaction event the stage reports.
// Events are queued; systems drain them with ProcessEvents.
var InteractionEventType = events.NewEventType[thicket.InteractionEvent]()

// Routing is the input state of an entity bound to a node, kept current
// as the stage routes events. It is written synchronously, so systems can
// read it without draining the event queue.
type Routing struct {
	// Pointers is the number of pointer identities over the node.
	Pointers int
	// LastX and LastY hold the stage position of the latest crossing.
	LastX, LastY float64
	// KeyFocus is set while the node holds the requested key focus.
	KeyFocus bool
	// Gesture names the gesture of the node that is recognizing, if any.
	Gesture string
}

// Hovered reports whether any pointer is over the node.
func (r *Routing) Hovered() bool { return r.Pointers > 0 }

// RoutingComponent attaches Routing to an entity.
var RoutingComponent = donburi.NewComponentType[Routing]()

// DonburiStore forwards stage interaction events into a Donburi world.
type DonburiStore struct {
	world    donburi.World
	entities map[uint32]donburi.Entity
	focused  uint32
}

var _ thicket.EntityStore = (*DonburiStore)(nil)

// NewDonburiStore creates a store publishing to InteractionEventType in
// world.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, entities: make(map[uint32]donburi.Entity)}
}

// Bind ties n to e, giving n an unused entity id when it has none. The
// entity receives a Routing component when it has none.
func (s *DonburiStore) Bind(n *thicket.Node, e donburi.Entity) {
	if n.EntityID == 0 {
		id := uint32(len(s.entities)) + 1
		for _, taken := s.entities[id]; taken; _, taken = s.entities[id] {
			id++
		}
		n.EntityID = id
	}
	s.entities[n.EntityID] = e
	if entry := s.entry(n.EntityID); entry != nil && !entry.HasComponent(RoutingComponent) {
		entry.AddComponent(RoutingComponent)
	}
}

// Unbind forgets the entity tied to n and clears n's entity id.
func (s *DonburiStore) Unbind(n *thicket.Node) {
	delete(s.entities, n.EntityID)
	if s.focused == n.EntityID {
		s.focused = 0
	}
	n.EntityID = 0
}

// Entity returns the entity bound to the given node entity id.
func (s *DonburiStore) Entity(id uint32) (donburi.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// EmitEvent updates the Routing component of the bound entity and queues
// the event.
func (s *DonburiStore) EmitEvent(ev thicket.InteractionEvent) {
	switch ev.Type {
	case thicket.InteractionPointerEnter, thicket.InteractionPointerLeave:
		if r := s.routing(ev.EntityID); r != nil {
			if ev.Type == thicket.InteractionPointerEnter {
				r.Pointers++
			} else if r.Pointers > 0 {
				r.Pointers--
			}
			r.LastX, r.LastY = ev.X, ev.Y
		}
	case thicket.InteractionKeyFocusChanged:
		if r := s.routing(s.focused); r != nil {
			r.KeyFocus = false
		}
		s.focused = ev.EntityID
		if r := s.routing(ev.EntityID); r != nil {
			r.KeyFocus = true
		}
	case thicket.InteractionGestureRecognize:
		if r := s.routing(ev.EntityID); r != nil {
			r.Gesture = ev.Gesture
		}
	case thicket.InteractionGestureEnd, thicket.InteractionGestureCancel:
		if r := s.routing(ev.EntityID); r != nil && r.Gesture == ev.Gesture {
			r.Gesture = ""
		}
	}
	InteractionEventType.Publish(s.world, ev)
}

func (s *DonburiStore) entry(id uint32) *donburi.Entry {
	if id == 0 {
		return nil
	}
	e, ok := s.entities[id]
	if !ok || !s.world.Valid(e) {
		return nil
	}
	return s.world.Entry(e)
}

func (s *DonburiStore) routing(id uint32) *Routing {
	entry := s.entry(id)
	if entry == nil || !entry.HasComponent(RoutingComponent) {
		return nil
	}
	return RoutingComponent.Get(entry)
}
