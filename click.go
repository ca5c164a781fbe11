package thicket

// ClickGesture recognizes a press and release of a single point on its
// node. The click completes on release when the point is still over the
// node and has not travelled past the cancel threshold.
type ClickGesture struct {
	Gesture

	// RequiredButton restricts the gesture to one mouse button. Touch
	// points count as MouseButtonLeft. MouseButtonNone accepts any button.
	RequiredButton MouseButton

	OnPress          func()
	OnRelease        func()
	OnPressedChanged func(pressed bool)
	// OnClick fires when the gesture completes.
	OnClick func()

	cancelThreshold    float64
	cancelThresholdSet bool

	pressed     bool
	isTouch     bool
	pressButton MouseButton
	pressCoords Vec2
	modifiers   KeyModifiers
}

// NewClickGesture creates a click gesture.
func NewClickGesture(name string) *ClickGesture {
	c := &ClickGesture{}
	c.Init(name, c)
	c.ShouldHandleSequence = shouldHandlePress
	c.PointBegan = c.pointBegan
	c.PointMoved = c.pointMoved
	c.PointEnded = c.pointEnded
	c.CrossingEvent = c.crossingEvent
	c.StateChanged = c.stateChanged
	return c
}

func shouldHandlePress(begin *Event) bool {
	return begin.Type == EventButtonPress || begin.Type == EventTouchBegin
}

// SetCancelThreshold sets the distance in pixels a point may move before
// the click is cancelled. Negative disables cancellation.
func (c *ClickGesture) SetCancelThreshold(px float64) {
	c.cancelThreshold = px
	c.cancelThresholdSet = true
}

// CancelThreshold returns the threshold in effect: the explicit one, or the
// stage's press.cancel_threshold.
func (c *ClickGesture) CancelThreshold() float64 {
	if c.cancelThresholdSet {
		return c.cancelThreshold
	}
	return c.config().Press.CancelThreshold
}

// Pressed reports whether the point is down and over the node.
func (c *ClickGesture) Pressed() bool { return c.pressed }

// Button returns the button of the press, MouseButtonLeft for touch.
func (c *ClickGesture) Button() MouseButton { return c.pressButton }

// Modifiers returns the modifiers held for the whole click, or zero when
// they changed between press and release.
func (c *ClickGesture) Modifiers() KeyModifiers { return c.modifiers }

// PressCoords returns the stage coordinates of the press.
func (c *ClickGesture) PressCoords() Vec2 { return c.pressCoords }

func (c *ClickGesture) setPressed(pressed bool) {
	if c.pressed == pressed {
		return
	}
	c.pressed = pressed
	if c.OnPressedChanged != nil {
		c.OnPressedChanged(pressed)
	}
}

func (c *ClickGesture) pointBegan(point int) {
	if c.NPoints() != 1 {
		c.Cancel()
		return
	}
	ev := c.PointEvent(point)
	isTouch := ev.Type == EventTouchBegin
	button := ev.Button
	if isTouch {
		button = MouseButtonLeft
	}
	if c.RequiredButton != MouseButtonNone && button != c.RequiredButton {
		c.Cancel()
		return
	}
	c.isTouch = isTouch
	c.pressButton = button
	c.modifiers = ev.Modifiers
	c.pressCoords = c.PointCoordsAbs(point)

	c.setPressed(true)
	if c.OnPress != nil {
		c.OnPress()
	}
}

func (c *ClickGesture) pointMoved(point int) {
	threshold := c.CancelThreshold()
	if threshold < 0 {
		return
	}
	if c.PointCoordsAbs(point).Sub(c.pressCoords).Len() > threshold {
		c.Cancel()
	}
}

func (c *ClickGesture) pointEnded(point int) {
	ev := c.PointEvent(point)
	// Modifiers must be held throughout the click.
	if ev.Modifiers != c.modifiers {
		c.modifiers = 0
	}
	if c.OnRelease != nil {
		c.OnRelease()
	}
	wasPressed := c.pressed
	c.setPressed(false)

	if c.State().terminal() {
		return
	}
	if wasPressed {
		c.Complete()
	} else {
		c.Cancel()
	}
}

func (c *ClickGesture) crossingEvent(_ int, ev *Event) {
	state := c.State()
	if state != GesturePossible && state != GestureRecognizing {
		return
	}
	if ev.Source == c.Node() {
		c.setPressed(ev.Type == EventEnter)
	}
}

func (c *ClickGesture) stateChanged(_, newState GestureState) {
	switch newState {
	case GestureCompleted:
		c.setPressed(false)
		if c.OnClick != nil {
			c.OnClick()
		}
	case GestureCancelled:
		c.setPressed(false)
		c.pressButton = MouseButtonNone
		c.pressCoords = Vec2{}
	case GestureWaiting:
		c.modifiers = 0
	}
}
