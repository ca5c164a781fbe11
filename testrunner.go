package thicket

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	FromX    float64 `json:"fromX,omitempty"`
	FromY    float64 `json:"fromY,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
	Frames   int     `json:"frames,omitempty"`
	Button   int     `json:"button,omitempty"`
	Sequence int     `json:"sequence,omitempty"`
	Key      string  `json:"key,omitempty"`
	Distance float64 `json:"distance,omitempty"`
	ToDist   float64 `json:"toDistance,omitempty"`

	key ebiten.Key
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input events across frames for scripted
// runs of an interactive scene. Attach to a Stage via SetTestRunner.
//
// Supported actions: click, press, release, move, drag, touch_begin,
// touch_update, touch_end, touch_cancel, pinch, key_press, key_release,
// wait.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Stage via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i := range script.Steps {
		if err := script.Steps[i].validate(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func (st *testStep) validate() error {
	switch st.Action {
	case "click", "press", "release", "move", "drag", "pinch", "wait":
	case "touch_begin", "touch_update", "touch_end", "touch_cancel":
		if st.Sequence <= 0 {
			return fmt.Errorf("%s: sequence must be positive", st.Action)
		}
	case "key_press", "key_release":
		if err := st.key.UnmarshalText([]byte(st.Key)); err != nil {
			return fmt.Errorf("%s: %w", st.Action, err)
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	if st.Button < 0 || st.Button > int(MouseButtonMiddle) {
		return fmt.Errorf("%s: button %d out of range", st.Action, st.Button)
	}
	return nil
}

func (st *testStep) button() MouseButton {
	if st.Button == 0 {
		return MouseButtonLeft
	}
	return MouseButton(st.Button)
}

// SetTestRunner attaches a TestRunner to the stage. The runner's step method
// is called from Stage.Update before injected input is processed.
func (s *Stage) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Stage.Update.
func (r *TestRunner) step(s *Stage) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(s.injectQueue) > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := &r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		b := st.button()
		s.InjectButton(st.X, st.Y, b, true)
		s.InjectButton(st.X, st.Y, b, false)
	case "press":
		s.InjectButton(st.X, st.Y, st.button(), true)
	case "release":
		s.InjectButton(st.X, st.Y, st.button(), false)
	case "move":
		s.InjectMove(st.X, st.Y)
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames)
	case "touch_begin":
		s.InjectTouchBegin(SequenceID(st.Sequence), st.X, st.Y)
	case "touch_update":
		s.InjectTouchUpdate(SequenceID(st.Sequence), st.X, st.Y)
	case "touch_end":
		s.InjectTouchEnd(SequenceID(st.Sequence), st.X, st.Y)
	case "touch_cancel":
		s.InjectTouchCancel(SequenceID(st.Sequence), st.X, st.Y)
	case "pinch":
		s.InjectPinch(st.X, st.Y, st.Distance, st.ToDist, st.Frames)
	case "key_press":
		s.InjectKey(st.key, true)
	case "key_release":
		s.InjectKey(st.key, false)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
	if st.Label != "" {
		s.debugf(DebugEvents, "test step %d: %s", r.cursor-1, st.Label)
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}
