package thicket

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var mouseButtons = [...]struct {
	eb ebiten.MouseButton
	mb MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonRight, MouseButtonRight},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
}

type ebitenTouch struct {
	id  ebiten.TouchID
	seq SequenceID
	pos Vec2
}

// EbitenInput is an InputSource reading ebiten's mouse, wheel, touch and
// keyboard state once per Stage.Update. Changes since the previous poll are
// turned into events: motion before presses, touches in the order they
// began, keys last.
type EbitenInput struct {
	// ScreenToStage converts window coordinates to stage coordinates. Nil
	// uses window coordinates unchanged.
	ScreenToStage func(x, y float64) (float64, float64)

	start  time.Time
	polled bool

	cursor  Vec2
	buttons [len(mouseButtons)]bool

	touches  []*ebitenTouch // oldest first
	touchBuf []ebiten.TouchID
	nextSeq  SequenceID

	keyBuf []ebiten.Key
}

var _ InputSource = (*EbitenInput)(nil)

// NewEbitenInput creates an input source. Attach it with
// Stage.SetInputSource and call Stage.Update from the game's Update.
func NewEbitenInput() *EbitenInput {
	return &EbitenInput{
		start: time.Now(),
	}
}

func (in *EbitenInput) now() uint32 {
	// Zero means "no timestamp" to the stage.
	return uint32(time.Since(in.start).Milliseconds()) + 1
}

func (in *EbitenInput) toStage(x, y int) Vec2 {
	fx, fy := float64(x), float64(y)
	if in.ScreenToStage != nil {
		fx, fy = in.ScreenToStage(fx, fy)
	}
	return Vec2{fx, fy}
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// Poll feeds the input that changed since the last call into s.
func (in *EbitenInput) Poll(s *Stage) {
	t := in.now()
	mods := readModifiers()
	s.SetActive(ebiten.IsFocused())

	in.pollMouse(s, t, mods)
	in.pollTouches(s, t, mods)
	in.pollKeys(s, t, mods)
	in.polled = true
}

func (in *EbitenInput) pollMouse(s *Stage, t uint32, mods KeyModifiers) {
	pos := in.toStage(ebiten.CursorPosition())
	base := Event{Time: t, Device: DeviceMouse, X: pos.X, Y: pos.Y, Modifiers: mods}

	if !in.polled || pos != in.cursor {
		in.cursor = pos
		ev := base
		ev.Type = EventMotion
		s.ProcessEvent(ev)
	}

	for i, b := range mouseButtons {
		pressed := ebiten.IsMouseButtonPressed(b.eb)
		if pressed == in.buttons[i] {
			continue
		}
		in.buttons[i] = pressed
		ev := base
		ev.Button = b.mb
		ev.Type = EventButtonRelease
		if pressed {
			ev.Type = EventButtonPress
		}
		s.ProcessEvent(ev)
	}

	if dx, dy := ebiten.Wheel(); dx != 0 || dy != 0 {
		ev := base
		ev.Type = EventScroll
		ev.DX, ev.DY = dx, dy
		s.ProcessEvent(ev)
	}
}

func (in *EbitenInput) pollTouches(s *Stage, t uint32, mods KeyModifiers) {
	// Ended touches first, so a finger lifted and put down again in the same
	// frame frees its slot.
	live := in.touches[:0]
	for _, tc := range in.touches {
		if !inpututil.IsTouchJustReleased(tc.id) {
			live = append(live, tc)
			continue
		}
		s.ProcessEvent(Event{
			Type: EventTouchEnd, Time: t, Device: DeviceTouchscreen, Sequence: tc.seq,
			X: tc.pos.X, Y: tc.pos.Y, Modifiers: mods,
		})
	}
	clear(in.touches[len(live):])
	in.touches = live

	for _, tc := range in.touches {
		pos := in.toStage(ebiten.TouchPosition(tc.id))
		if pos == tc.pos {
			continue
		}
		tc.pos = pos
		s.ProcessEvent(Event{
			Type: EventTouchUpdate, Time: t, Device: DeviceTouchscreen, Sequence: tc.seq,
			X: pos.X, Y: pos.Y, Modifiers: mods,
		})
	}

	limit := s.Config().Input.MaxTouchPoints
	in.touchBuf = inpututil.AppendJustPressedTouchIDs(in.touchBuf[:0])
	for _, id := range in.touchBuf {
		if in.tracking(id) {
			continue
		}
		if len(in.touches) >= limit {
			s.debugf(DebugEvents, "touch %d dropped: %d touch points already tracked", id, limit)
			continue
		}
		in.nextSeq++
		if in.nextSeq == 0 {
			in.nextSeq = 1
		}
		tc := &ebitenTouch{id: id, seq: in.nextSeq, pos: in.toStage(ebiten.TouchPosition(id))}
		in.touches = append(in.touches, tc)
		s.ProcessEvent(Event{
			Type: EventTouchBegin, Time: t, Device: DeviceTouchscreen, Sequence: tc.seq,
			X: tc.pos.X, Y: tc.pos.Y, Modifiers: mods,
		})
	}
}

func (in *EbitenInput) tracking(id ebiten.TouchID) bool {
	for _, tc := range in.touches {
		if tc.id == id {
			return true
		}
	}
	return false
}

func (in *EbitenInput) pollKeys(s *Stage, t uint32, mods KeyModifiers) {
	in.keyBuf = inpututil.AppendJustPressedKeys(in.keyBuf[:0])
	for _, k := range in.keyBuf {
		s.ProcessEvent(Event{Type: EventKeyPress, Time: t, Device: DeviceKeyboard, Key: k, Modifiers: mods})
	}
	in.keyBuf = inpututil.AppendJustReleasedKeys(in.keyBuf[:0])
	for _, k := range in.keyBuf {
		s.ProcessEvent(Event{Type: EventKeyRelease, Time: t, Device: DeviceKeyboard, Key: k, Modifiers: mods})
	}
}
