package event

import "sync"

// Events is a typed, double-buffered event queue. Events sent during a frame stay readable
// through the following frame; Update drops anything older than that.
// It is safe for concurrent use, so a window thread can send while the tick loop drains.
type Events[T any] struct {
	mu       sync.Mutex
	previous []T
	current  []T
	sent     uint64
}

// Send queues an event.
//
// Parameters:
//   - evt: the event
func (e *Events[T]) Send(evt T) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.current = append(e.current, evt)
	e.sent++
	e.mu.Unlock()
}

// Drain returns every queued event, oldest first, and clears the queue.
//
// Returns:
//   - []T: the events, or nil if none are queued
func (e *Events[T]) Drain() []T {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.previous) == 0 && len(e.current) == 0 {
		return nil
	}
	out := make([]T, 0, len(e.previous)+len(e.current))
	out = append(out, e.previous...)
	out = append(out, e.current...)
	e.previous = e.previous[:0]
	e.current = e.current[:0]
	return out
}

// Len returns the number of queued events.
func (e *Events[T]) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.previous) + len(e.current)
}

// Sent returns the total number of events ever sent.
func (e *Events[T]) Sent() uint64 {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent
}

// Update advances the queue by one frame, discarding events that were not drained
// during the previous two frames.
func (e *Events[T]) Update() {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.previous, e.current = e.current, e.previous[:0]
	e.mu.Unlock()
}

// Clear discards every queued event.
func (e *Events[T]) Clear() {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.previous = e.previous[:0]
	e.current = e.current[:0]
	e.mu.Unlock()
}
