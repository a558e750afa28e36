package event

import (
	"reflect"
	"sync"
)

// updater is the type-erased view of an Events[T] the registry advances each frame.
type updater interface {
	Update()
	Len() int
}

// Registry owns one Events queue per event type. Queues are registered at startup and
// advanced together once per frame.
type Registry struct {
	mu     sync.RWMutex
	queues map[reflect.Type]updater
	order  []reflect.Type
}

// NewRegistry creates an empty Registry.
//
// Returns:
//   - *Registry: the new registry
func NewRegistry() *Registry {
	return &Registry{queues: make(map[reflect.Type]updater)}
}

// Register returns the queue for T, creating it on first use.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - *Events[T]: the queue for T
func Register[T any](r *Registry) *Events[T] {
	key := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[key]; ok {
		return q.(*Events[T])
	}
	q := &Events[T]{}
	r.queues[key] = q
	r.order = append(r.order, key)
	return q
}

// Of returns the queue for T if it has been registered.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - *Events[T]: the queue, or nil
//   - bool: false if T was never registered
func Of[T any](r *Registry) (*Events[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return q.(*Events[T]), true
}

// Update advances every registered queue by one frame.
func (r *Registry) Update() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range r.order {
		r.queues[key].Update()
	}
}

// Pending returns the number of undrained events per registered type name.
func (r *Registry) Pending() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.queues))
	for _, key := range r.order {
		out[key.String()] = r.queues[key].Len()
	}
	return out
}
