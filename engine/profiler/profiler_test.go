package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

func TestProfilerReportsAfterInterval(t *testing.T) {
	p := NewProfiler(WithInterval(20*time.Millisecond), WithQuiet())

	tick := animation.UpdateStats{
		ApplyStats: animation.ApplyStats{Tracks: 3, Resolved: 2, Missed: 1, CurvesApplied: 4},
		Players:    2,
		Duration:   time.Millisecond,
	}
	if _, ok := p.Tick(tick); ok {
		t.Fatalf("report before the interval elapsed")
	}
	time.Sleep(25 * time.Millisecond)
	r, ok := p.Tick(tick)
	if !ok {
		t.Fatalf("no report after the interval")
	}
	if r.Players != 2 || r.Tracks != 6 || r.Resolved != 4 || r.Missed != 2 || r.CurvesApplied != 8 {
		t.Fatalf("animation totals = %+v", r)
	}
	if r.AvgUpdate != time.Millisecond {
		t.Fatalf("AvgUpdate = %v", r.AvgUpdate)
	}
	if r.TicksPerSecond <= 0 || r.HeapMB <= 0 {
		t.Fatalf("runtime stats missing: %+v", r)
	}

	time.Sleep(25 * time.Millisecond)
	r, ok = p.Tick(animation.UpdateStats{})
	if !ok || r.Tracks != 0 || r.AvgUpdate != 0 {
		t.Fatalf("counters not reset between intervals: %+v", r)
	}
}
