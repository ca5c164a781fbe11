// Package ecs connects thicket's routing notifications to a [Donburi] world.
//
// [DonburiStore] queues every interaction event (grab and key focus
// changes, pointer enter/leave, gesture recognize/end/cancel) as a typed
// Donburi event, and keeps a [Routing] component current on entities bound
// to nodes with [DonburiStore.Bind].
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	stage.SetEntityStore(store)
//	store.Bind(buttonNode, buttonEntity)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
