package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/event"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := event.NewRegistry()
	a := Register(r)
	b := Register(r)
	if a.Keyboard != b.Keyboard || a.MouseButtons != b.MouseButtons || a.MouseMotion != b.MouseMotion || a.MouseScroll != b.MouseScroll {
		t.Fatalf("Register created new queues on the second call")
	}
	if q, ok := event.Of[KeyboardInput](r); !ok || q != a.Keyboard {
		t.Fatalf("keyboard queue not reachable through the registry")
	}
}

func TestKeyState(t *testing.T) {
	r := event.NewRegistry()
	q := Register(r)
	keys := NewKeyState()

	q.Keyboard.Send(KeyboardInput{KeyCode: common.KeySpace, State: Pressed})
	q.Keyboard.Send(KeyboardInput{KeyCode: common.KeyR, State: Pressed})
	q.Keyboard.Send(KeyboardInput{KeyCode: common.KeyR, State: Released})
	keys.Apply(q.Keyboard.Drain())

	tests := []struct {
		name         string
		key          int
		pressed      bool
		justPressed  bool
		justReleased bool
	}{
		{"held", common.KeySpace, true, true, false},
		{"tapped", common.KeyR, false, true, true},
		{"untouched", common.KeyUp, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if keys.Pressed(tt.key) != tt.pressed || keys.JustPressed(tt.key) != tt.justPressed || keys.JustReleased(tt.key) != tt.justReleased {
				t.Fatalf("key %d: pressed %v just %v released %v", tt.key, keys.Pressed(tt.key), keys.JustPressed(tt.key), keys.JustReleased(tt.key))
			}
		})
	}

	// a repeat press while held is not a new press
	keys.Apply([]KeyboardInput{{KeyCode: common.KeySpace, State: Pressed}})
	if !keys.Pressed(common.KeySpace) || keys.JustPressed(common.KeySpace) {
		t.Fatalf("repeat press reported as just pressed")
	}
	keys.Apply(nil)
	if keys.JustReleased(common.KeyR) {
		t.Fatalf("just-released state survived a frame")
	}
}
