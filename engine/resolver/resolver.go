package resolver

import (
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
)

// AmbiguityPolicy decides what happens when several siblings carry the same name.
type AmbiguityPolicy int

const (
	// AmbiguityFirstMatch picks the first matching child in declared order and warns once.
	AmbiguityFirstMatch AmbiguityPolicy = iota
	// AmbiguityReject treats an ambiguous segment as a miss.
	AmbiguityReject
)

// HierarchyView is the part of a hierarchy the resolver reads.
type HierarchyView interface {
	ChildrenOf(id hierarchy.ObjectID) []hierarchy.Child
	Contains(id hierarchy.ObjectID) bool
	Subscribe(l hierarchy.Listener) func()
}

// Stats are cumulative resolver counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Ambiguous     uint64
	Invalidations uint64
}

type cacheKey struct {
	root hierarchy.ObjectID
	path string
}

type cacheEntry struct {
	target hierarchy.ObjectID
	// chain is every object walked, root first and target last
	chain []hierarchy.ObjectID
}

type pathResolver struct {
	mu          sync.RWMutex
	view        HierarchyView
	cache       map[cacheKey]cacheEntry
	byObject    map[hierarchy.ObjectID]map[cacheKey]struct{}
	generation  uint64
	warned      map[cacheKey]struct{}
	policy      AmbiguityPolicy
	caching     bool
	logWarnings bool
	unsubscribe func()

	hits          atomic.Uint64
	misses        atomic.Uint64
	ambiguous     atomic.Uint64
	invalidations atomic.Uint64
}

// PathResolver resolves root-relative name paths to objects, caching successful lookups
// until a hierarchy change touches an object along the cached chain. It is safe to share
// between goroutines.
type PathResolver interface {
	// Resolve walks path from root, matching each segment against child names.
	// An empty path resolves to root itself while root exists.
	//
	// Parameters:
	//   - root: the object the walk starts from
	//   - path: the name segments
	//
	// Returns:
	//   - hierarchy.ObjectID: the resolved object
	//   - bool: false when some segment has no match
	Resolve(root hierarchy.ObjectID, path []string) (hierarchy.ObjectID, bool)

	// Invalidate drops every cached resolution.
	Invalidate()

	// Len returns the number of cached resolutions.
	Len() int

	// Stats returns the cumulative counters.
	Stats() Stats

	// Close stops listening for hierarchy changes and clears the cache.
	Close()
}

var _ PathResolver = &pathResolver{}

// NewPathResolver creates a PathResolver over view and subscribes to its change notifications.
//
// Parameters:
//   - view: the hierarchy to resolve against
//   - options: functional options to configure the resolver
//
// Returns:
//   - PathResolver: the new resolver
func NewPathResolver(view HierarchyView, options ...PathResolverBuilderOption) PathResolver {
	r := &pathResolver{
		view:        view,
		cache:       make(map[cacheKey]cacheEntry),
		byObject:    make(map[hierarchy.ObjectID]map[cacheKey]struct{}),
		warned:      make(map[cacheKey]struct{}),
		caching:     true,
		logWarnings: true,
	}
	for _, option := range options {
		option(r)
	}
	r.unsubscribe = view.Subscribe(r.onChange)
	return r
}

func (r *pathResolver) Resolve(root hierarchy.ObjectID, path []string) (hierarchy.ObjectID, bool) {
	if len(path) == 0 {
		if root == hierarchy.InvalidObject || !r.view.Contains(root) {
			r.misses.Add(1)
			return hierarchy.InvalidObject, false
		}
		return root, true
	}
	key := cacheKey{root: root, path: strings.Join(path, "\x00")}

	r.mu.RLock()
	entry, ok := r.cache[key]
	gen := r.generation
	r.mu.RUnlock()
	if ok {
		r.hits.Add(1)
		return entry.target, true
	}

	chain, ok := r.walk(key, root, path)
	if !ok {
		r.misses.Add(1)
		return hierarchy.InvalidObject, false
	}
	target := chain[len(chain)-1]
	if !r.caching {
		return target, true
	}

	r.mu.Lock()
	// a change arriving during the walk may have made it stale; skip caching it
	if r.generation == gen {
		r.cache[key] = cacheEntry{target: target, chain: chain}
		for _, id := range chain {
			keys, ok := r.byObject[id]
			if !ok {
				keys = make(map[cacheKey]struct{})
				r.byObject[id] = keys
			}
			keys[key] = struct{}{}
		}
	}
	r.mu.Unlock()
	return target, true
}

// walk matches each segment against the current node's children in declared order.
func (r *pathResolver) walk(key cacheKey, root hierarchy.ObjectID, path []string) ([]hierarchy.ObjectID, bool) {
	chain := make([]hierarchy.ObjectID, 0, len(path)+1)
	chain = append(chain, root)
	cur := root
	for depth, segment := range path {
		next := hierarchy.InvalidObject
		matches := 0
		for _, c := range r.view.ChildrenOf(cur) {
			if c.Name != segment {
				continue
			}
			if matches == 0 {
				next = c.ID
			}
			matches++
		}
		if matches == 0 {
			return nil, false
		}
		if matches > 1 {
			r.ambiguous.Add(1)
			r.warnAmbiguous(key, path[:depth+1], matches)
			if r.policy == AmbiguityReject {
				return nil, false
			}
		}
		chain = append(chain, next)
		cur = next
	}
	return chain, true
}

func (r *pathResolver) warnAmbiguous(key cacheKey, prefix []string, matches int) {
	if !r.logWarnings {
		return
	}
	r.mu.Lock()
	_, seen := r.warned[key]
	r.warned[key] = struct{}{}
	r.mu.Unlock()
	if seen {
		return
	}
	action := "using the first"
	if r.policy == AmbiguityReject {
		action = "treating as unresolved"
	}
	log.Printf("[Resolver] %d objects named %q under object %d, %s", matches, strings.Join(prefix, "/"), key.root, action)
}

// onChange drops every cached chain that passes through an object the event touches.
func (r *pathResolver) onChange(evt hierarchy.ChangeEvent) {
	touched := [3]hierarchy.ObjectID{evt.Object, evt.Parent, evt.OldParent}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	dropped := 0
	for _, id := range touched {
		if id == hierarchy.InvalidObject {
			continue
		}
		for key := range r.byObject[id] {
			if r.dropLocked(key) {
				dropped++
			}
		}
	}
	if evt.Kind == hierarchy.ChangeDespawned {
		delete(r.byObject, evt.Object)
		for key := range r.warned {
			if key.root == evt.Object {
				delete(r.warned, key)
			}
		}
	}
	if dropped > 0 {
		r.invalidations.Add(uint64(dropped))
	}
}

func (r *pathResolver) dropLocked(key cacheKey) bool {
	entry, ok := r.cache[key]
	if !ok {
		return false
	}
	delete(r.cache, key)
	for _, id := range entry.chain {
		if keys, ok := r.byObject[id]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(r.byObject, id)
			}
		}
	}
	return true
}

func (r *pathResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if n := len(r.cache); n > 0 {
		r.invalidations.Add(uint64(n))
	}
	clear(r.cache)
	clear(r.byObject)
	clear(r.warned)
}

func (r *pathResolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *pathResolver) Stats() Stats {
	return Stats{
		Hits:          r.hits.Load(),
		Misses:        r.misses.Load(),
		Ambiguous:     r.ambiguous.Load(),
		Invalidations: r.invalidations.Load(),
	}
}

func (r *pathResolver) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.Invalidate()
}
