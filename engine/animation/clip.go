package animation

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
)

// EntityPath is the chain of object names from an animation root (exclusive) down to the
// animated object. An empty path addresses the root itself.
type EntityPath struct {
	Parts []string
}

// NewEntityPath builds an EntityPath from name segments.
func NewEntityPath(parts ...string) EntityPath {
	return EntityPath{Parts: append([]string(nil), parts...)}
}

// ParseEntityPath splits a slash-separated path such as "planet/orbit_controller".
// Empty segments are dropped, so "" and "/" both address the root.
func ParseEntityPath(s string) EntityPath {
	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return EntityPath{Parts: parts}
}

// String joins the path with slashes.
func (p EntityPath) String() string {
	return strings.Join(p.Parts, "/")
}

// Equal reports whether both paths have the same segments.
func (p EntityPath) Equal(o EntityPath) bool {
	return p.key() == o.key()
}

// key is a collision-free map key for the path; names may contain '/'.
func (p EntityPath) key() string {
	return strings.Join(p.Parts, "\x00")
}

// track is every curve a clip holds for one path.
type track struct {
	path   EntityPath
	curves []VariableCurve
}

type animationClip struct {
	mu       sync.Mutex
	name     string
	tracks   []*track
	index    map[string]int
	duration float32
	frozen   atomic.Bool
}

// AnimationClip is a named set of curves keyed by target path. A clip is authored with
// AddCurveToPath and becomes read-only the first time it is handed to AnimationPlayer.Play,
// after which any number of players may share it concurrently.
type AnimationClip interface {
	// Name returns the clip's name.
	Name() string

	// AddCurveToPath adds a curve for the object at path.
	// The curve is copied, so the caller may reuse its slices.
	//
	// Parameters:
	//   - path: root-relative name chain of the target object
	//   - curve: the keyframed curve
	//
	// Returns:
	//   - error: *AuthoringError if the curve is malformed, duplicates a kind already present
	//     on the path, or the clip is frozen
	AddCurveToPath(path EntityPath, curve VariableCurve) error

	// AddCurveToTarget adds a curve for a live object by first computing its name path
	// relative to root.
	//
	// Parameters:
	//   - h: the hierarchy containing both objects
	//   - root: the object the playing player will be attached to
	//   - target: root or one of its descendants
	//   - curve: the keyframed curve
	//
	// Returns:
	//   - error: hierarchy.ErrUnknownObject if target is not under root, or any AddCurveToPath error
	AddCurveToTarget(h hierarchy.Hierarchy, root, target hierarchy.ObjectID, curve VariableCurve) error

	// Duration returns the latest keyframe timestamp across all curves, or 0 for an empty clip.
	Duration() float32

	// Paths returns every animated path in first-insertion order.
	Paths() []EntityPath

	// CurvesForPath returns the curves targeting path, or nil.
	CurvesForPath(path EntityPath) []VariableCurve

	// CurveCount returns the total number of curves in the clip.
	CurveCount() int

	// Frozen reports whether the clip has been handed to a player.
	Frozen() bool

	freeze()
	snapshot() []*track
}

var _ AnimationClip = &animationClip{}

// NewAnimationClip creates an empty AnimationClip.
//
// Parameters:
//   - options: functional options to configure the clip
//
// Returns:
//   - AnimationClip: the new clip
func NewAnimationClip(options ...AnimationClipBuilderOption) AnimationClip {
	c := &animationClip{
		index: make(map[string]int),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *animationClip) Name() string {
	return c.name
}

func (c *animationClip) AddCurveToPath(path EntityPath, curve VariableCurve) error {
	fail := func(err error) error {
		return &AuthoringError{Clip: c.name, Path: path, Kind: curve.Kind(), Err: err}
	}
	if c.frozen.Load() {
		return fail(ErrClipFrozen)
	}
	if err := curve.Validate(); err != nil {
		return fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen.Load() {
		return fail(ErrClipFrozen)
	}

	key := path.key()
	i, ok := c.index[key]
	if !ok {
		i = len(c.tracks)
		c.index[key] = i
		c.tracks = append(c.tracks, &track{path: NewEntityPath(path.Parts...)})
	}
	t := c.tracks[i]
	for _, existing := range t.curves {
		if existing.Kind() == curve.Kind() {
			return fail(ErrDuplicateCurveKind)
		}
	}
	t.curves = append(t.curves, curve.clone())
	c.duration = max(c.duration, curve.EndTime())
	return nil
}

func (c *animationClip) AddCurveToTarget(h hierarchy.Hierarchy, root, target hierarchy.ObjectID, curve VariableCurve) error {
	parts, ok := h.NamePath(root, target)
	if !ok {
		return fmt.Errorf("object %d is not under %d: %w", target, root, hierarchy.ErrUnknownObject)
	}
	return c.AddCurveToPath(EntityPath{Parts: parts}, curve)
}

func (c *animationClip) Duration() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *animationClip) Paths() []EntityPath {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EntityPath, len(c.tracks))
	for i, t := range c.tracks {
		out[i] = NewEntityPath(t.path.Parts...)
	}
	return out
}

func (c *animationClip) CurvesForPath(path EntityPath) []VariableCurve {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[path.key()]
	if !ok {
		return nil
	}
	return append([]VariableCurve(nil), c.tracks[i].curves...)
}

func (c *animationClip) CurveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tracks {
		n += len(t.curves)
	}
	return n
}

func (c *animationClip) Frozen() bool {
	return c.frozen.Load()
}

func (c *animationClip) freeze() {
	c.mu.Lock()
	c.frozen.Store(true)
	c.mu.Unlock()
}

// snapshot returns the internal track list. Only valid once the clip is frozen.
func (c *animationClip) snapshot() []*track {
	return c.tracks
}
