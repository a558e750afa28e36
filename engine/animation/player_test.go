package animation

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
	"github.com/Carmen-Shannon/oxy-anim/engine/resolver"
)

// scene builds anchor -> "root" with the player attached to anchor.
func scene(t *testing.T) (hierarchy.Hierarchy, resolver.PathResolver, hierarchy.ObjectID, hierarchy.ObjectID) {
	t.Helper()
	h := hierarchy.NewHierarchy()
	anchor := h.Spawn(hierarchy.WithName("anchor"))
	target := h.Spawn(hierarchy.WithName("root"), hierarchy.WithParent(anchor))
	r := resolver.NewPathResolver(h)
	t.Cleanup(r.Close)
	return h, r, anchor, target
}

func translationOf(t *testing.T, h hierarchy.Hierarchy, id hierarchy.ObjectID) [3]float32 {
	t.Helper()
	tr, ok := h.Transform(id)
	if !ok {
		t.Fatalf("object %d missing", id)
	}
	return tr.Translation
}

func TestPlayerStateMachine(t *testing.T) {
	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("root"), translationCurve(0, 2)); err != nil {
		t.Fatal(err)
	}

	p := NewAnimationPlayer()
	if p.State() != StateIdle {
		t.Fatalf("new player state = %v, want idle", p.State())
	}
	p.Pause()
	if p.State() != StateIdle {
		t.Fatalf("pause while idle changed state to %v", p.State())
	}
	p.Tick(1)
	if p.Elapsed() != 0 {
		t.Fatalf("idle tick advanced time to %v", p.Elapsed())
	}

	p.SetSpeed(2).Play(clip).Repeat()
	if p.State() != StatePlaying || !p.Repeating() || p.Speed() != 2 {
		t.Fatalf("after play: state %v repeat %v speed %v", p.State(), p.Repeating(), p.Speed())
	}
	p.Tick(0.25)
	if p.Elapsed() != 0.5 {
		t.Fatalf("Elapsed = %v, want 0.5", p.Elapsed())
	}

	p.Pause()
	p.Tick(10)
	if p.State() != StatePaused || p.Elapsed() != 0.5 {
		t.Fatalf("paused tick: state %v elapsed %v", p.State(), p.Elapsed())
	}
	p.Resume()
	p.Tick(0.25)
	if p.State() != StatePlaying || p.Elapsed() != 1 {
		t.Fatalf("after resume: state %v elapsed %v", p.State(), p.Elapsed())
	}

	// play resets time and repeat but keeps speed
	p.Play(clip)
	if p.Elapsed() != 0 || p.Repeating() || p.Speed() != 2 {
		t.Fatalf("replay: elapsed %v repeat %v speed %v", p.Elapsed(), p.Repeating(), p.Speed())
	}

	p.Play(nil)
	if p.State() != StateIdle {
		t.Fatalf("Play(nil) state = %v, want idle", p.State())
	}
}

func TestRepeatWrapEquivalence(t *testing.T) {
	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("root"), translationCurve(0, 2)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		speed float32
		ticks []float32
	}{
		{"forward", 1, []float32{0.75, 0.75, 0.75, 0.75, 0.75}},
		{"uneven", 1, []float32{1.5, 0.25, 3.125, 0.5}},
		{"double speed", 2, []float32{0.625, 0.625, 0.625}},
		{"reverse", -1, []float32{0.5, 0.75, 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepped := NewAnimationPlayer(WithSpeed(tt.speed)).Play(clip).Repeat()
			total := float32(0)
			for _, dt := range tt.ticks {
				stepped.Tick(dt)
				total += dt
			}
			once := NewAnimationPlayer(WithSpeed(tt.speed)).Play(clip).Repeat()
			once.Tick(total)

			if stepped.Elapsed() != once.Elapsed() {
				t.Fatalf("stepped elapsed %v != single tick elapsed %v", stepped.Elapsed(), once.Elapsed())
			}
			if e := stepped.Elapsed(); e < 0 || e >= clip.Duration() {
				t.Fatalf("elapsed %v outside [0, %v)", e, clip.Duration())
			}
		})
	}
}

func TestEndHoldIdempotence(t *testing.T) {
	h, r, anchor, target := scene(t)
	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("root"), VariableCurve{
		KeyframeTimestamps: []float32{0, 1.5},
		Keyframes:          TranslationKeyframes{{0, 0, 0}, {3, 2, 1}},
	}); err != nil {
		t.Fatal(err)
	}

	p := NewAnimationPlayer().Play(clip)
	p.Update(1.5, anchor, r, h)
	want := translationOf(t, h, target)
	if want != [3]float32{3, 2, 1} {
		t.Fatalf("at end translation = %v", want)
	}
	for i := 0; i < 5; i++ {
		p.Update(0.7, anchor, r, h)
		if got := translationOf(t, h, target); got != want {
			t.Fatalf("tick %d past end: %v, want %v", i, got, want)
		}
		if p.Elapsed() != 1.5 {
			t.Fatalf("elapsed %v, want clamped 1.5", p.Elapsed())
		}
	}
	if !p.Finished() {
		t.Fatalf("player not finished at end hold")
	}

	// reverse playback clamps at zero
	p.SetSpeed(-1)
	p.Update(10, anchor, r, h)
	if p.Elapsed() != 0 || translationOf(t, h, target) != [3]float32{} {
		t.Fatalf("reverse clamp: elapsed %v translation %v", p.Elapsed(), translationOf(t, h, target))
	}
}

func TestTranslationScenario(t *testing.T) {
	h, r, anchor, target := scene(t)
	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("root"), VariableCurve{
		KeyframeTimestamps: []float32{0, 1, 2},
		Keyframes:          TranslationKeyframes{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	p := NewAnimationPlayer().Play(clip)

	steps := []struct {
		dt   float32
		want [3]float32
	}{
		{0.5, [3]float32{0.5, 0, 0}},
		{0.5, [3]float32{1, 0, 0}},
		{1.0, [3]float32{0, 0, 0}},
		{1.0, [3]float32{0, 0, 0}},
	}
	for i, s := range steps {
		stats := p.Update(s.dt, anchor, r, h)
		if stats.CurvesApplied != 1 || stats.Missed != 0 {
			t.Fatalf("step %d: stats %+v", i, stats)
		}
		if got := translationOf(t, h, target); got != s.want {
			t.Fatalf("step %d: translation %v, want %v", i, got, s.want)
		}
	}
}

func TestCurvesOfDifferentLengths(t *testing.T) {
	h, r, anchor, _ := scene(t)
	short := h.Spawn(hierarchy.WithName("short"), hierarchy.WithParent(anchor))
	long := h.Spawn(hierarchy.WithName("long"), hierarchy.WithParent(anchor))

	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("short"), VariableCurve{
		KeyframeTimestamps: []float32{0, 2},
		Keyframes:          TranslationKeyframes{{0, 0, 0}, {2, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := clip.AddCurveToPath(NewEntityPath("long"), VariableCurve{
		KeyframeTimestamps: []float32{0, 4},
		Keyframes:          TranslationKeyframes{{0, 0, 0}, {4, 0, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	if clip.Duration() != 4 {
		t.Fatalf("Duration = %v, want 4", clip.Duration())
	}

	p := NewAnimationPlayer().Play(clip)
	p.Update(3, anchor, r, h)
	if got := translationOf(t, h, short); got != [3]float32{2, 0, 0} {
		t.Fatalf("short curve at t=3: %v, want held end value", got)
	}
	if got := translationOf(t, h, long); got != [3]float32{3, 0, 0} {
		t.Fatalf("long curve at t=3: %v, want (3,0,0)", got)
	}
}

func TestPausedPlayerStillApplies(t *testing.T) {
	h, r, anchor, target := scene(t)
	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("root"), translationCurve(0, 2)); err != nil {
		t.Fatal(err)
	}
	p := NewAnimationPlayer().Play(clip)
	p.Update(1, anchor, r, h)
	p.Pause()

	h.SetTranslation(target, [3]float32{42, 0, 0})
	p.Update(5, anchor, r, h)
	if got := translationOf(t, h, target); got != [3]float32{1, 0, 0} {
		t.Fatalf("paused update wrote %v, want frozen frame (1,0,0)", got)
	}

	idle := NewAnimationPlayer()
	h.SetTranslation(target, [3]float32{42, 0, 0})
	if stats := idle.Update(1, anchor, r, h); stats != (ApplyStats{}) {
		t.Fatalf("idle player applied: %+v", stats)
	}
	if got := translationOf(t, h, target); got != [3]float32{42, 0, 0} {
		t.Fatalf("idle player wrote %v", got)
	}
}

func TestUnresolvedPathIsSkipped(t *testing.T) {
	h, r, anchor, target := scene(t)
	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("ghost"), translationCurve(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := clip.AddCurveToPath(NewEntityPath("root"), VariableCurve{
		KeyframeTimestamps: []float32{0, 1},
		Keyframes:          ScaleKeyframes{{1, 1, 1}, {3, 3, 3}},
	}); err != nil {
		t.Fatal(err)
	}

	p := NewAnimationPlayer(WithMissLogging(false)).Play(clip)
	stats := p.Update(0.5, anchor, r, h)
	if stats.Tracks != 2 || stats.Missed != 1 || stats.Resolved != 1 || stats.CurvesApplied != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	tr, _ := h.Transform(target)
	if tr.Scale != [3]float32{2, 2, 2} {
		t.Fatalf("scale = %v, want (2,2,2)", tr.Scale)
	}
	if tr.Translation != [3]float32{} {
		t.Fatalf("translation written on an unanimated field: %v", tr.Translation)
	}

	// the path starts resolving once a matching object appears
	ghost := h.Spawn(hierarchy.WithName("ghost"), hierarchy.WithParent(anchor))
	stats = p.Update(0.25, anchor, r, h)
	if stats.Missed != 0 || stats.CurvesApplied != 2 {
		t.Fatalf("after spawn stats = %+v", stats)
	}
	if got := translationOf(t, h, ghost); got != [3]float32{0.75, 0, 0} {
		t.Fatalf("ghost translation = %v", got)
	}
}

func TestSetElapsed(t *testing.T) {
	clip := NewAnimationClip()
	if err := clip.AddCurveToPath(NewEntityPath("root"), translationCurve(0, 2)); err != nil {
		t.Fatal(err)
	}
	p := NewAnimationPlayer().Play(clip)
	if p.SetElapsed(5).Elapsed() != 2 {
		t.Fatalf("non-repeating seek past end = %v, want 2", p.Elapsed())
	}
	p.Repeat()
	if p.SetElapsed(5).Elapsed() != 1 {
		t.Fatalf("repeating seek = %v, want 1", p.Elapsed())
	}
	if p.SetElapsed(-0.5).Elapsed() != 1.5 {
		t.Fatalf("repeating negative seek = %v, want 1.5", p.Elapsed())
	}
}
