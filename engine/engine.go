package engine

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/event"
	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
	"github.com/Carmen-Shannon/oxy-anim/engine/input"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/window"
)

// engine implements the Engine interface.
// Coordinates the tick goroutine and the window thread.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	events *event.Registry
	input  input.Queues

	world            hierarchy.Hierarchy
	animation        animation.AnimationSystem
	animationOptions []animation.AnimationSystemBuilderOption
	ownsAnimation    bool

	// tickMu serializes Step so a manual Step never overlaps the tick loop.
	tickMu sync.Mutex

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  func()
}

// Engine is the main entry point for the engine.
// It owns the object hierarchy, the animation system and the event registry, and drives
// them from a fixed-rate tick loop. A window is optional; without one the engine runs headless.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// World returns the object hierarchy animations are applied to.
	//
	// Returns:
	//   - hierarchy.Hierarchy: the world
	World() hierarchy.Hierarchy

	// Animation returns the animation system driven by the tick loop.
	//
	// Returns:
	//   - animation.AnimationSystem: the animation system
	Animation() animation.AnimationSystem

	// Events returns the event registry advanced once per tick.
	//
	// Returns:
	//   - *event.Registry: the registry
	Events() *event.Registry

	// Input returns the input queues on the engine's registry.
	//
	// Returns:
	//   - input.Queues: the input queues
	Input() input.Queues

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, before animations
	// are advanced. Use this for game logic and input handling; player changes made here
	// take effect in the same tick.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called each window message loop iteration,
	// on the window thread. Ignored when running headless.
	//
	// Parameters:
	//   - callback: function to call each frame
	SetFrameCallback(callback func())

	// Step runs one tick synchronously: the tick callback, the animation update, then the
	// event registry update.
	//
	// Parameters:
	//   - deltaTime: the tick length in seconds
	//
	// Returns:
	//   - animation.UpdateStats: the animation statistics for the tick
	Step(deltaTime float32) animation.UpdateStats

	// Run starts the tick loop and blocks until the window closes or Quit is called.
	// With a window it must be called from the goroutine that created the window.
	// The window is closed before Run returns, and so is the animation system unless it
	// was supplied with WithAnimationSystem.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A hierarchy and an animation system are created unless supplied by options, and the input
// event types are registered on the engine's registry.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		wg:              sync.WaitGroup{},
		events:          event.NewRegistry(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	e.input = input.Register(e.events)
	if e.world == nil {
		e.world = hierarchy.NewHierarchy()
	}
	if e.animation == nil {
		e.animation = animation.NewAnimationSystem(e.world, e.animationOptions...)
		e.ownsAnimation = true
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) World() hierarchy.Hierarchy {
	return e.world
}

func (e *engine) Animation() animation.AnimationSystem {
	return e.animation
}

func (e *engine) Events() *event.Registry {
	return e.events
}

func (e *engine) Input() input.Queues {
	return e.input
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()

	if e.window != nil {
		e.window.SetUpdateCallback(e.frame)
		e.window.ProcessMessages()
		e.signalQuit()
		// errors only when frame already closed it
		_ = e.window.Close()
	}

	e.wg.Wait()
	e.running.Store(false)
	if e.ownsAnimation {
		e.animation.Release()
	}
	log.Printf("[Engine] stopped")
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// frame runs on the window thread each message loop iteration. It closes the window once
// Quit has been called, which ends ProcessMessages.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] failed to close window: %v", err)
		}
		return
	default:
	}
	if e.frameCallback != nil {
		e.frameCallback()
	}
}

// handle launches the tick goroutine, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(1)
	go e.handleEngine()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Runs one Step per tick and listens for dynamic rate changes via tickRateChannel.
// Recovers from panics in the tick so a failing callback shuts the engine down instead of the process.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] tick goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) Step(deltaTime float32) animation.UpdateStats {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	if e.tickCallback != nil {
		e.tickCallback(deltaTime)
	}
	stats := e.animation.Update(deltaTime)
	e.events.Update()

	if e.profilingEnabled.Load() {
		e.profiler.Tick(stats)
	}
	return stats
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetFrameCallback registers the function called each window frame.
func (e *engine) SetFrameCallback(callback func()) {
	e.frameCallback = callback
}
