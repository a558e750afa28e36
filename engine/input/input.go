package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/event"
)

// ElementState is whether a key or button went down or up.
type ElementState int

const (
	Pressed ElementState = iota
	Released
)

func (s ElementState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonOther
)

// KeyboardInput is a key press or release. KeyCode uses the common.Key* values.
type KeyboardInput struct {
	KeyCode  int
	ScanCode int
	State    ElementState
}

// MouseButtonInput is a mouse button press or release at a cursor position.
type MouseButtonInput struct {
	Button MouseButton
	State  ElementState
	X, Y   float32
}

// MouseMotionInput is a cursor movement. Delta is relative to the previous motion event.
type MouseMotionInput struct {
	X, Y           float32
	DeltaX, DeltaY float32
}

// MouseScrollInput is a scroll wheel movement.
type MouseScrollInput struct {
	DeltaX, DeltaY float32
}

// Queues groups the input queues registered by Register.
type Queues struct {
	Keyboard     *event.Events[KeyboardInput]
	MouseButtons *event.Events[MouseButtonInput]
	MouseMotion  *event.Events[MouseMotionInput]
	MouseScroll  *event.Events[MouseScrollInput]
}

// Register registers every input event type on r and returns their queues.
// Calling it again returns the same queues.
//
// Parameters:
//   - r: the event registry
//
// Returns:
//   - Queues: the input queues
func Register(r *event.Registry) Queues {
	return Queues{
		Keyboard:     event.Register[KeyboardInput](r),
		MouseButtons: event.Register[MouseButtonInput](r),
		MouseMotion:  event.Register[MouseMotionInput](r),
		MouseScroll:  event.Register[MouseScrollInput](r),
	}
}

// KeyState tracks which keys are held, fed from drained KeyboardInput events.
type KeyState struct {
	mu           sync.RWMutex
	down         map[int]bool
	justPressed  map[int]bool
	justReleased map[int]bool
}

// NewKeyState creates a KeyState with no keys held.
//
// Returns:
//   - *KeyState: the new key state
func NewKeyState() *KeyState {
	return &KeyState{
		down:         make(map[int]bool),
		justPressed:  make(map[int]bool),
		justReleased: make(map[int]bool),
	}
}

// Apply starts a new frame and folds events into the held-key set.
//
// Parameters:
//   - events: keyboard events in arrival order
func (k *KeyState) Apply(events []KeyboardInput) {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.justPressed)
	clear(k.justReleased)
	for _, evt := range events {
		switch evt.State {
		case Pressed:
			if !k.down[evt.KeyCode] {
				k.justPressed[evt.KeyCode] = true
			}
			k.down[evt.KeyCode] = true
		case Released:
			if k.down[evt.KeyCode] {
				k.justReleased[evt.KeyCode] = true
			}
			delete(k.down, evt.KeyCode)
		}
	}
}

// Pressed reports whether key is held.
func (k *KeyState) Pressed(key int) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.down[key]
}

// JustPressed reports whether key went down during the last Apply.
func (k *KeyState) JustPressed(key int) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.justPressed[key]
}

// JustReleased reports whether key went up during the last Apply.
func (k *KeyState) JustReleased(key int) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.justReleased[key]
}
