package animation

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
)

// PathResolver maps a root-relative name path to a live object.
type PathResolver interface {
	Resolve(root hierarchy.ObjectID, path []string) (hierarchy.ObjectID, bool)
}

// TransformWriter receives sampled values. The engine only ever writes through it.
type TransformWriter interface {
	SetTranslation(id hierarchy.ObjectID, v [3]float32)
	SetRotation(id hierarchy.ObjectID, q [4]float32)
	SetScale(id hierarchy.ObjectID, v [3]float32)
}

// PlayerState is the playback state of an AnimationPlayer.
type PlayerState int

const (
	StateIdle PlayerState = iota
	StatePlaying
	StatePaused
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return fmt.Sprintf("PlayerState(%d)", int(s))
}

// ApplyStats summarizes one evaluation of a player's clip.
type ApplyStats struct {
	// Tracks is the number of distinct target paths in the clip.
	Tracks int
	// Resolved is the number of paths that resolved to an object.
	Resolved int
	// Missed is the number of paths that did not resolve and were skipped.
	Missed int
	// CurvesApplied is the number of curve values written.
	CurvesApplied int
}

// Add accumulates o into s.
func (s *ApplyStats) Add(o ApplyStats) {
	s.Tracks += o.Tracks
	s.Resolved += o.Resolved
	s.Missed += o.Missed
	s.CurvesApplied += o.CurvesApplied
}

type animationPlayer struct {
	mu        sync.Mutex
	clip      AnimationClip
	elapsed   float32
	speed     float32
	repeat    bool
	paused    bool
	logMisses bool

	// missing holds path keys that failed to resolve on the previous evaluation
	missing map[string]struct{}
}

// AnimationPlayer plays one AnimationClip at a time against the object it is attached to.
// All methods are safe to call from any goroutine; the control methods that return the
// player can be chained, e.g. NewAnimationPlayer().Play(clip).Repeat().
type AnimationPlayer interface {
	// Play starts clip from the beginning. Elapsed time resets to 0 and repeat is cleared;
	// speed is kept. The clip becomes read-only.
	//
	// Parameters:
	//   - clip: the clip to play, or nil to return to idle
	//
	// Returns:
	//   - AnimationPlayer: the player, for chaining
	Play(clip AnimationClip) AnimationPlayer

	// Repeat makes playback wrap around at the clip's duration.
	//
	// Returns:
	//   - AnimationPlayer: the player, for chaining
	Repeat() AnimationPlayer

	// StopRepeating makes playback hold at the clip's end again.
	//
	// Returns:
	//   - AnimationPlayer: the player, for chaining
	StopRepeating() AnimationPlayer

	// Repeating reports whether playback wraps.
	Repeating() bool

	// Pause freezes elapsed time. Values keep being applied at the frozen time.
	// Has no effect while idle.
	Pause()

	// Resume continues a paused player. Has no effect while idle.
	Resume()

	// IsPaused reports whether the player is paused.
	IsPaused() bool

	// SetSpeed sets the playback rate multiplier. Negative values play backwards.
	//
	// Parameters:
	//   - speed: the rate multiplier
	//
	// Returns:
	//   - AnimationPlayer: the player, for chaining
	SetSpeed(speed float32) AnimationPlayer

	// Speed returns the playback rate multiplier.
	Speed() float32

	// Elapsed returns the playback position in seconds.
	Elapsed() float32

	// SetElapsed seeks to t seconds. The position is wrapped or clamped like a tick would.
	//
	// Parameters:
	//   - t: the new playback position
	//
	// Returns:
	//   - AnimationPlayer: the player, for chaining
	SetElapsed(t float32) AnimationPlayer

	// State returns Idle, Playing or Paused.
	State() PlayerState

	// Clip returns the current clip, or nil when idle.
	Clip() AnimationClip

	// Finished reports whether a non-repeating player is holding at the end of its clip.
	Finished() bool

	// Tick advances elapsed time by deltaTime * speed while playing.
	//
	// Parameters:
	//   - deltaTime: wall time since the previous tick in seconds
	Tick(deltaTime float32)

	// Update ticks the player and, unless idle, writes the clip's sampled values to the
	// objects its paths resolve to under root. Unresolved paths are skipped.
	//
	// Parameters:
	//   - deltaTime: wall time since the previous update in seconds
	//   - root: the object the player is attached to
	//   - resolver: maps clip paths to objects
	//   - out: receives the sampled values
	//
	// Returns:
	//   - ApplyStats: what was resolved and written
	Update(deltaTime float32, root hierarchy.ObjectID, resolver PathResolver, out TransformWriter) ApplyStats
}

var _ AnimationPlayer = &animationPlayer{}

// NewAnimationPlayer creates an idle AnimationPlayer with speed 1.
//
// Parameters:
//   - options: functional options to configure the player
//
// Returns:
//   - AnimationPlayer: the new player
func NewAnimationPlayer(options ...AnimationPlayerBuilderOption) AnimationPlayer {
	p := &animationPlayer{
		speed:     1,
		logMisses: true,
		missing:   make(map[string]struct{}),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *animationPlayer) Play(clip AnimationClip) AnimationPlayer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playLocked(clip)
	return p
}

func (p *animationPlayer) playLocked(clip AnimationClip) {
	if clip != nil {
		clip.freeze()
	}
	p.clip = clip
	p.elapsed = 0
	p.repeat = false
	p.paused = false
	clear(p.missing)
}

func (p *animationPlayer) Repeat() AnimationPlayer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = true
	return p
}

func (p *animationPlayer) StopRepeating() AnimationPlayer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = false
	return p
}

func (p *animationPlayer) Repeating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repeat
}

func (p *animationPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clip != nil {
		p.paused = true
	}
}

func (p *animationPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
}

func (p *animationPlayer) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *animationPlayer) SetSpeed(speed float32) AnimationPlayer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = speed
	return p
}

func (p *animationPlayer) Speed() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

func (p *animationPlayer) Elapsed() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}

func (p *animationPlayer) SetElapsed(t float32) AnimationPlayer {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elapsed = t
	p.normalizeLocked()
	return p
}

func (p *animationPlayer) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.clip == nil:
		return StateIdle
	case p.paused:
		return StatePaused
	}
	return StatePlaying
}

func (p *animationPlayer) Clip() AnimationClip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clip
}

func (p *animationPlayer) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clip == nil || p.repeat {
		return false
	}
	if p.speed < 0 {
		return p.elapsed <= 0
	}
	return p.elapsed >= p.clip.Duration()
}

func (p *animationPlayer) Tick(deltaTime float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickLocked(deltaTime)
}

func (p *animationPlayer) Update(deltaTime float32, root hierarchy.ObjectID, resolver PathResolver, out TransformWriter) ApplyStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.clip == nil {
		return ApplyStats{}
	}
	p.tickLocked(deltaTime)
	return p.applyLocked(root, resolver, out)
}

func (p *animationPlayer) tickLocked(deltaTime float32) {
	if p.clip == nil || p.paused {
		return
	}
	p.elapsed += deltaTime * p.speed
	p.normalizeLocked()
}

// normalizeLocked wraps elapsed into [0, duration) when repeating, else clamps it into [0, duration].
func (p *animationPlayer) normalizeLocked() {
	if p.clip == nil {
		p.elapsed = 0
		return
	}
	d := p.clip.Duration()
	if d <= 0 {
		p.elapsed = 0
		return
	}
	if !p.repeat {
		p.elapsed = min(max(p.elapsed, 0), d)
		return
	}

	e := math.Mod(float64(p.elapsed), float64(d))
	if e < 0 {
		e += float64(d)
	}
	p.elapsed = float32(e)
	if p.elapsed >= d {
		p.elapsed = 0
	}
}

func (p *animationPlayer) applyLocked(root hierarchy.ObjectID, resolver PathResolver, out TransformWriter) ApplyStats {
	var stats ApplyStats
	for _, t := range p.clip.snapshot() {
		stats.Tracks++
		key := t.path.key()

		target, ok := resolver.Resolve(root, t.path.Parts)
		if !ok {
			stats.Missed++
			if _, seen := p.missing[key]; !seen {
				p.missing[key] = struct{}{}
				if p.logMisses {
					log.Printf("[Animation] clip %q: nothing at path %q under object %d, skipping its curves", p.clip.Name(), t.path, root)
				}
			}
			continue
		}
		if len(p.missing) > 0 {
			delete(p.missing, key)
		}

		stats.Resolved++
		for _, c := range t.curves {
			v := c.Sample(p.elapsed)
			switch v.Kind {
			case KindTranslation:
				out.SetTranslation(target, v.Translation)
			case KindRotation:
				out.SetRotation(target, v.Rotation)
			case KindScale:
				out.SetScale(target, v.Scale)
			}
			stats.CurvesApplied++
		}
	}
	return stats
}
