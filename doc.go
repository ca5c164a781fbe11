// Package thicket is the input routing and gesture arbitration core of a
// retained-mode scene graph for [Ebitengine].
//
// Thicket decides which nodes and handlers receive each pointer, touch and
// key event, keeps enter/leave notifications consistent while grabs come and
// go, and lets competing gestures negotiate ownership of shared input.
//
// # Quick start
//
// Create a [Stage], build a tree of [Node]s with hit shapes, attach an input
// source and call [Stage.Update] once per frame:
//
//	stage := thicket.NewStage()
//	button := thicket.NewHitArea("ok", thicket.HitRect{Width: 80, Height: 30})
//	button.X, button.Y = 100, 50
//	stage.Root().AddChild(button)
//
//	click := thicket.NewClickGesture("ok-click")
//	click.OnClick = func() { log.Println("clicked") }
//	button.AddAction(click)
//
//	stage.SetInputSource(thicket.NewEbitenInput())
//
//	type Game struct{ stage *thicket.Stage }
//
//	func (g *Game) Update() error { g.stage.Update(); return nil }
//
// # Routing
//
// Every positional event belongs to an identity: a (device, sequence) pair,
// where sequence zero is a pointer device and non-zero values are touch
// contacts. Each identity has a [PointerFocus] tracking the node under it.
// When that node changes, LEAVE and ENTER events are emitted along the
// ancestry below the common ancestor. Key events go to the [KeyFocus].
//
// Events travel an emission chain: a capture pass from the topmost node down
// to the target, then a bubble pass back up. Attached [Action]s run right
// before their node on the pass they choose. Returning true from a handler
// stops the emission.
//
// # Grabs
//
// [Stage.Grab] confines input to a subtree. Grabs stack; dismissing the top
// grab restores the one below it. Every focus re-emits crossings so nodes
// outside the new grab see LEAVE and nodes inside see ENTER.
//
// A button press or touch begin also starts an implicit grab: the chain
// built for the press is pinned, and the rest of the sequence travels the
// same receivers wherever the pointer moves.
//
// # Gestures
//
// A [Gesture] is an action with a state machine (WAITING, POSSIBLE,
// RECOGNIZING, COMPLETED, CANCELLED). Gestures sharing a sequence negotiate
// whether recognizing one cancels the other; unrelated gestures cannot
// recognize at the same time. [ClickGesture], [PanGesture] and [ZoomGesture]
// are built on it.
//
// # Scripted input
//
// [Stage.InjectClick], [Stage.InjectDrag], [Stage.InjectTouchBegin] and
// friends queue events consumed one per Update. [LoadTestScript] drives the
// same queue from a JSON script.
//
// # ECS integration
//
// Set an [EntityStore] with [Stage.SetEntityStore] to receive
// [InteractionEvent]s. The thicket/ecs module provides a [Donburi] adapter.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package thicket
