package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
	"github.com/Carmen-Shannon/oxy-anim/engine/input"
)

func slideClip(t *testing.T) animation.AnimationClip {
	t.Helper()
	clip := animation.NewAnimationClip(animation.WithClipName("slide"))
	if err := clip.AddCurveToPath(animation.NewEntityPath("planet"), animation.VariableCurve{
		KeyframeTimestamps: []float32{0, 1},
		Keyframes:          animation.TranslationKeyframes{{0, 0, 0}, {2, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	return clip
}

func TestStepAppliesAnimationsHeadless(t *testing.T) {
	e := NewEngine(WithAnimationOptions(animation.WithWorkers(1)))
	defer e.Animation().Release()

	if e.Window() != nil {
		t.Fatalf("headless engine has a window")
	}
	root := e.World().Spawn(hierarchy.WithName("scene"))
	planet := e.World().Spawn(hierarchy.WithName("planet"), hierarchy.WithParent(root))

	clip := slideClip(t)
	// the player is attached from the tick callback and must be applied in the same step
	e.SetTickCallback(func(float32) {
		if e.Animation().Player(root) == nil {
			e.Animation().Attach(root, animation.NewAnimationPlayer().Play(clip))
		}
	})

	stats := e.Step(0.5)
	if stats.Players != 1 || stats.Resolved != 1 || stats.Missed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	tr, _ := e.World().Transform(planet)
	if tr.Translation != [3]float32{1, 0, 0} {
		t.Fatalf("translation after 0.5s = %v", tr.Translation)
	}

	e.Step(5)
	tr, _ = e.World().Transform(planet)
	if tr.Translation != [3]float32{2, 0, 0} {
		t.Fatalf("translation after clamp = %v", tr.Translation)
	}
}

func TestStepAdvancesEvents(t *testing.T) {
	e := NewEngine(WithAnimationOptions(animation.WithWorkers(1)))
	defer e.Animation().Release()

	e.Input().Keyboard.Send(input.KeyboardInput{KeyCode: 32, State: input.Pressed})
	e.Step(0.01)
	if n := e.Input().Keyboard.Len(); n != 1 {
		t.Fatalf("event dropped after one step, len = %d", n)
	}
	e.Step(0.01)
	if n := e.Input().Keyboard.Len(); n != 0 {
		t.Fatalf("undrained event survived two steps, len = %d", n)
	}
}

func TestRunHeadlessUntilQuit(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithAnimationOptions(animation.WithWorkers(1)))

	ticks := make(chan struct{}, 64)
	e.SetTickCallback(func(float32) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	for range 3 {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("engine did not tick")
		}
	}
	e.SetTickRate(1000)
	e.Quit()
	e.Quit()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Quit")
	}
}

func TestTickCallbackPanicStopsEngine(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithAnimationOptions(animation.WithWorkers(1)))
	e.SetTickCallback(func(float32) { panic("boom") })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after a tick panic")
	}
}

func TestRunReleasesOnlyOwnedAnimationSystem(t *testing.T) {
	run := func(e Engine) {
		done := make(chan struct{})
		go func() {
			e.Run()
			close(done)
		}()
		e.Quit()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("Run did not return after Quit")
		}
	}
	// a live system detaches the player of a despawned root; a released one no longer listens
	attachAndDespawn := func(h hierarchy.Hierarchy, sys animation.AnimationSystem) int {
		root := h.Spawn(hierarchy.WithName("scene"))
		sys.Attach(root, animation.NewAnimationPlayer())
		if err := h.Despawn(root); err != nil {
			t.Fatalf("Despawn: %v", err)
		}
		return sys.Len()
	}

	h := hierarchy.NewHierarchy()
	sys := animation.NewAnimationSystem(h, animation.WithWorkers(1))
	defer sys.Release()
	supplied := NewEngine(WithHierarchy(h), WithAnimationSystem(sys), WithTickRate(500))
	if supplied.Animation() != sys {
		t.Fatalf("engine replaced the supplied animation system")
	}
	run(supplied)
	if n := attachAndDespawn(h, sys); n != 0 {
		t.Fatalf("supplied system was released by Run, %d players still attached", n)
	}

	owned := NewEngine(WithTickRate(500), WithAnimationOptions(animation.WithWorkers(1)))
	run(owned)
	if n := attachAndDespawn(owned.World(), owned.Animation()); n != 1 {
		t.Fatalf("owned system still detaches after Run, %d players attached", n)
	}
}
