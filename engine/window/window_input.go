package window

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/input"
)

// inputSink turns raw platform callbacks into input events. It remembers the last cursor
// position so motion events carry a delta and button events carry a position.
// It is only touched from the window thread.
type inputSink struct {
	queues     input.Queues
	x, y       float32
	seenCursor bool
}

func newInputSink(queues input.Queues) *inputSink {
	return &inputSink{queues: queues}
}

func elementState(pressed bool) input.ElementState {
	if pressed {
		return input.Pressed
	}
	return input.Released
}

func (s *inputSink) key(code, scanCode int, pressed bool) {
	s.queues.Keyboard.Send(input.KeyboardInput{KeyCode: code, ScanCode: scanCode, State: elementState(pressed)})
}

func (s *inputSink) button(b input.MouseButton, pressed bool) {
	s.queues.MouseButtons.Send(input.MouseButtonInput{Button: b, State: elementState(pressed), X: s.x, Y: s.y})
}

func (s *inputSink) motion(x, y float32) {
	var dx, dy float32
	if s.seenCursor {
		dx, dy = x-s.x, y-s.y
	}
	s.x, s.y, s.seenCursor = x, y, true
	s.queues.MouseMotion.Send(input.MouseMotionInput{X: x, Y: y, DeltaX: dx, DeltaY: dy})
}

func (s *inputSink) scroll(dx, dy float32) {
	s.queues.MouseScroll.Send(input.MouseScrollInput{DeltaX: dx, DeltaY: dy})
}
