package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/event"
	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler sets a custom profiler, e.g. one with a shorter reporting interval.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the engine runs its frame loop on. The window should be built
// with window.WithInput(engine input queues) to feed the engine's registry; use
// WithEvents to share a registry created beforehand.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithEvents sets the event registry the engine advances each tick.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEvents(r *event.Registry) EngineBuilderOption {
	return func(e *engine) {
		if r != nil {
			e.events = r
		}
	}
}

// WithHierarchy sets the object hierarchy animations are applied to.
//
// Parameters:
//   - h: the hierarchy
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHierarchy(h hierarchy.Hierarchy) EngineBuilderOption {
	return func(e *engine) {
		e.world = h
	}
}

// WithAnimationOptions passes options to the animation system the engine creates.
//
// Parameters:
//   - options: animation system options such as animation.WithWorkers
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAnimationOptions(options ...animation.AnimationSystemBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.animationOptions = append(e.animationOptions, options...)
	}
}

// WithAnimationSystem makes the engine drive an existing animation system instead of creating
// one. The caller keeps ownership: Run does not release it. The system should write into the
// same hierarchy passed to WithHierarchy.
//
// Parameters:
//   - sys: the animation system
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAnimationSystem(sys animation.AnimationSystem) EngineBuilderOption {
	return func(e *engine) {
		e.animation = sys
	}
}
