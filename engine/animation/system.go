package animation

import (
	"log"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/engine/hierarchy"
	"github.com/Carmen-Shannon/oxy-anim/engine/resolver"
)

// World is the hierarchy surface the system needs: transform writes for sampled values,
// child lookups for the default resolver and change notifications for despawn cleanup.
type World interface {
	TransformWriter
	resolver.HierarchyView
}

// UpdateStats summarizes one AnimationSystem.Update call.
type UpdateStats struct {
	ApplyStats

	// Players is the number of players evaluated.
	Players int
	// Duration is the wall time the update took.
	Duration time.Duration
}

type attachment struct {
	root   hierarchy.ObjectID
	player AnimationPlayer
}

type animationSystem struct {
	mu                sync.RWMutex
	world             World
	resolver          PathResolver
	ownsResolver      bool
	players           map[hierarchy.ObjectID]AnimationPlayer
	order             []hierarchy.ObjectID
	workers           int
	parallelThreshold int
	pool              worker.DynamicWorkerPool
	unsubscribe       func()
	totals            ApplyStats
	frames            uint64
}

// AnimationSystem ticks every attached AnimationPlayer once per Update. Players are evaluated in
// parallel on a worker pool; they share one concurrency-safe PathResolver.
type AnimationSystem interface {
	// Attach binds player to root, replacing any player already attached there.
	//
	// Parameters:
	//   - root: the object whose subtree the player's clip paths are resolved in
	//   - player: the player
	Attach(root hierarchy.ObjectID, player AnimationPlayer)

	// Detach removes the player attached to root, if any.
	//
	// Parameters:
	//   - root: the object the player is attached to
	//
	// Returns:
	//   - AnimationPlayer: the detached player, or nil
	Detach(root hierarchy.ObjectID) AnimationPlayer

	// Player returns the player attached to root, or nil.
	Player(root hierarchy.ObjectID) AnimationPlayer

	// Len returns the number of attached players.
	Len() int

	// Resolver returns the resolver shared by all players.
	Resolver() PathResolver

	// Update advances every attached player by deltaTime and applies their clips.
	// It returns once every player has been evaluated.
	//
	// Parameters:
	//   - deltaTime: wall time since the previous update in seconds
	//
	// Returns:
	//   - UpdateStats: aggregated statistics for this update
	Update(deltaTime float32) UpdateStats

	// Totals returns the statistics accumulated over every Update and the number of updates.
	Totals() (ApplyStats, uint64)

	// Release stops the worker pool and stops listening for hierarchy changes.
	Release()
}

var _ AnimationSystem = &animationSystem{}

// NewAnimationSystem creates an AnimationSystem writing into world.
// Unless WithResolver is given, a resolver.PathResolver over world is created and owned by the system.
//
// Parameters:
//   - world: the hierarchy the players animate
//   - options: functional options to configure the system
//
// Returns:
//   - AnimationSystem: the new system
func NewAnimationSystem(world World, options ...AnimationSystemBuilderOption) AnimationSystem {
	s := &animationSystem{
		world:             world,
		players:           make(map[hierarchy.ObjectID]AnimationPlayer),
		workers:           max(runtime.NumCPU()-1, 1),
		parallelThreshold: 2,
	}
	for _, option := range options {
		option(s)
	}

	if s.resolver == nil {
		s.resolver = resolver.NewPathResolver(world)
		s.ownsResolver = true
	}
	if s.workers > 1 {
		// Queue size of 256 matches typical per-frame player counts with headroom; larger
		// batches simply block the submitter until a worker frees a slot.
		s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	}
	s.unsubscribe = world.Subscribe(s.onChange)
	return s
}

func (s *animationSystem) Attach(root hierarchy.ObjectID, player AnimationPlayer) {
	if player == nil {
		s.Detach(root)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[root]; !exists {
		s.order = append(s.order, root)
	}
	s.players[root] = player
}

func (s *animationSystem) Detach(root hierarchy.ObjectID) AnimationPlayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detachLocked(root)
}

func (s *animationSystem) detachLocked(root hierarchy.ObjectID) AnimationPlayer {
	p, ok := s.players[root]
	if !ok {
		return nil
	}
	delete(s.players, root)
	if i := slices.Index(s.order, root); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return p
}

func (s *animationSystem) Player(root hierarchy.ObjectID) AnimationPlayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players[root]
}

func (s *animationSystem) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

func (s *animationSystem) Resolver() PathResolver {
	return s.resolver
}

func (s *animationSystem) Update(deltaTime float32) UpdateStats {
	start := time.Now()

	s.mu.RLock()
	batch := make([]attachment, 0, len(s.order))
	for _, root := range s.order {
		batch = append(batch, attachment{root: root, player: s.players[root]})
	}
	s.mu.RUnlock()

	results := make([]ApplyStats, len(batch))
	if s.pool == nil || len(batch) < s.parallelThreshold {
		for i, a := range batch {
			results[i] = a.player.Update(deltaTime, a.root, s.resolver, s.world)
		}
	} else {
		// A WaitGroup is the per-frame barrier; pool.Wait only returns once workers go idle.
		var wg sync.WaitGroup
		for i, a := range batch {
			wg.Add(1)
			idx, att := i, a
			s.pool.SubmitTask(worker.Task{
				ID: idx,
				Do: func() (any, error) {
					defer wg.Done()
					results[idx] = att.player.Update(deltaTime, att.root, s.resolver, s.world)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	stats := UpdateStats{Players: len(batch)}
	for _, r := range results {
		stats.Add(r)
	}
	stats.Duration = time.Since(start)

	s.mu.Lock()
	s.totals.Add(stats.ApplyStats)
	s.frames++
	s.mu.Unlock()
	return stats
}

func (s *animationSystem) Totals() (ApplyStats, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals, s.frames
}

func (s *animationSystem) Release() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.pool != nil {
		s.pool.Stop()
		s.pool = nil
	}
	if s.ownsResolver {
		if r, ok := s.resolver.(resolver.PathResolver); ok {
			r.Close()
		}
	}
}

// onChange detaches players whose root object was despawned.
func (s *animationSystem) onChange(evt hierarchy.ChangeEvent) {
	if evt.Kind != hierarchy.ChangeDespawned {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detachLocked(evt.Object) != nil {
		log.Printf("[Animation] object %d despawned, detached its player", evt.Object)
	}
}
