package profiler

import (
	"log"
	"os"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"

	"github.com/shirou/gopsutil/v3/process"
)

// Report is one interval's worth of statistics.
type Report struct {
	// TicksPerSecond is the measured engine tick rate.
	TicksPerSecond float64

	// Players is the number of attached players at the last tick.
	Players int

	// Tracks, Resolved and Missed are summed over the interval.
	Tracks, Resolved, Missed int

	// CurvesApplied is the number of curve samples written over the interval.
	CurvesApplied int

	// AvgUpdate is the mean wall time of an animation update.
	AvgUpdate time.Duration

	// HeapMB is live heap memory; SysMB is memory obtained from the OS.
	HeapMB, SysMB float64

	// AllocRateMB is heap allocation churn in MB/s.
	AllocRateMB float64

	// GCCount is the total number of collections.
	GCCount uint32

	// LastPauseUs and MaxPauseUs are GC pauses in microseconds.
	LastPauseUs, MaxPauseUs uint64

	// CPUPercent and RSSMB come from the OS process table. They are zero when
	// the process could not be inspected.
	CPUPercent float64
	RSSMB      float64
}

// Profiler tracks tick rate, animation workload, memory and process statistics.
// Outputs a report to the log at a configurable interval.
type Profiler struct {
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	players      int
	applied      animation.ApplyStats
	updateTotal  time.Duration
	updatesTimed int

	proc  *process.Process
	quiet bool
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often a report is produced.
//
// Parameters:
//   - d: the reporting interval (ignored if <= 0)
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithQuiet stops reports from being logged; Tick still returns them.
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithQuiet() ProfilerBuilderOption {
	return func(p *Profiler) {
		p.quiet = true
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
// Process statistics are skipped if the current process cannot be inspected.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
	for _, opt := range options {
		opt(p)
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Printf("[Profiler] process stats unavailable: %v", err)
	} else {
		p.proc = proc
		// the first sample only primes the CPU counter
		_, _ = proc.Percent(0)
	}
	return p
}

// Tick should be called once per engine tick with that tick's animation statistics.
// When the update interval has elapsed it builds a Report, logs it, and resets the counters.
//
// Parameters:
//   - stats: the animation system's statistics for this tick
//
// Returns:
//   - Report: the report, valid only when the bool is true
//   - bool: true if an interval completed on this tick
func (p *Profiler) Tick(stats animation.UpdateStats) (Report, bool) {
	p.tickCount++
	p.players = stats.Players
	p.applied.Add(stats.ApplyStats)
	if stats.Players > 0 {
		p.updateTotal += stats.Duration
		p.updatesTimed++
	}

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	r := Report{
		TicksPerSecond: float64(p.tickCount) / elapsed.Seconds(),
		Players:        p.players,
		Tracks:         p.applied.Tracks,
		Resolved:       p.applied.Resolved,
		Missed:         p.applied.Missed,
		CurvesApplied:  p.applied.CurvesApplied,
	}
	if p.updatesTimed > 0 {
		r.AvgUpdate = p.updateTotal / time.Duration(p.updatesTimed)
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	if gcCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if p.proc != nil {
		if cpu, err := p.proc.Percent(0); err == nil {
			r.CPUPercent = cpu
		}
		if mem, err := p.proc.MemoryInfo(); err == nil && mem != nil {
			r.RSSMB = float64(mem.RSS) / 1024 / 1024
		}
	}

	if !p.quiet {
		log.Printf("[Profiler] TPS: %.2f | Players: %d | Tracks: %d (missed %d) | Update: %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | CPU: %.1f%% | RSS: %.2f MB",
			r.TicksPerSecond, r.Players, r.Tracks, r.Missed, r.AvgUpdate, r.HeapMB, r.AllocRateMB, r.GCCount, r.LastPauseUs, r.MaxPauseUs, r.CPUPercent, r.RSSMB)
	}

	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.applied = animation.ApplyStats{}
	p.updateTotal = 0
	p.updatesTimed = 0
	return r, true
}
