package hierarchy

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// ObjectID identifies an object inside a Hierarchy. The zero value never refers to a live object.
type ObjectID uint64

// InvalidObject is the zero ObjectID.
const InvalidObject ObjectID = 0

var (
	ErrUnknownObject  = errors.New("unknown object")
	ErrHierarchyCycle = errors.New("parenting would create a cycle")
)

// ChangeKind classifies a structural hierarchy change.
type ChangeKind int

const (
	// ChangeSpawned is emitted after an object is created. Parent is set when it was spawned under one.
	ChangeSpawned ChangeKind = iota
	// ChangeDespawned is emitted once for every object removed by Despawn, children first.
	ChangeDespawned
	// ChangeReparented is emitted when an object moves to a new parent or a new position among its siblings.
	ChangeReparented
	// ChangeRenamed is emitted when an object's name changes.
	ChangeRenamed
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSpawned:
		return "spawned"
	case ChangeDespawned:
		return "despawned"
	case ChangeReparented:
		return "reparented"
	case ChangeRenamed:
		return "renamed"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// ChangeEvent describes one structural change. Transform writes never produce events.
type ChangeEvent struct {
	Kind      ChangeKind
	Object    ObjectID
	Parent    ObjectID
	OldParent ObjectID
	Name      string
	OldName   string
}

// Child is a (name, id) pair as returned by ChildrenOf.
type Child struct {
	Name string
	ID   ObjectID
}

// Listener receives change notifications. Listeners are invoked synchronously after the
// hierarchy lock is released, in subscription order.
type Listener func(ChangeEvent)

type node struct {
	id        ObjectID
	name      string
	parent    ObjectID
	children  []ObjectID
	transform common.Transform
}

type hierarchy struct {
	mu        sync.RWMutex
	nodes     map[ObjectID]*node
	nextID    ObjectID
	listeners map[int]Listener
	listenerN int
	lmu       sync.RWMutex
}

// Hierarchy is a named tree of objects with local transforms. It is safe for concurrent use:
// structural edits and transform writes take the write lock, queries take the read lock.
type Hierarchy interface {
	// Spawn creates a new object configured by the given options.
	// An unknown parent option leaves the object at the top level.
	//
	// Parameters:
	//   - options: functional options (name, parent, initial transform)
	//
	// Returns:
	//   - ObjectID: the new object's identifier
	Spawn(options ...ObjectBuilderOption) ObjectID

	// Despawn removes the object and its whole subtree.
	//
	// Parameters:
	//   - id: the object to remove
	//
	// Returns:
	//   - error: ErrUnknownObject if the object does not exist
	Despawn(id ObjectID) error

	// SetParent appends child to parent's children. Passing InvalidObject as the parent detaches
	// the child to the top level.
	//
	// Parameters:
	//   - child: the object to move
	//   - parent: the new parent, or InvalidObject
	//
	// Returns:
	//   - error: ErrUnknownObject or ErrHierarchyCycle
	SetParent(child, parent ObjectID) error

	// InsertChildren places children under parent starting at index, preserving their order.
	// Index is clamped to the parent's child count.
	//
	// Parameters:
	//   - parent: the new parent
	//   - index: insert position among the parent's children
	//   - children: the objects to move
	//
	// Returns:
	//   - error: ErrUnknownObject or ErrHierarchyCycle; no child is moved on error
	InsertChildren(parent ObjectID, index int, children ...ObjectID) error

	// SetName renames an object.
	//
	// Parameters:
	//   - id: the object to rename
	//   - name: the new name
	//
	// Returns:
	//   - error: ErrUnknownObject if the object does not exist
	SetName(id ObjectID, name string) error

	// Name returns the object's name.
	Name(id ObjectID) (string, bool)

	// Parent returns the object's parent, or InvalidObject for top-level objects.
	Parent(id ObjectID) (ObjectID, bool)

	// ChildrenOf returns the object's children in declared order. Unknown objects have none.
	//
	// Parameters:
	//   - id: the parent object
	//
	// Returns:
	//   - []Child: a snapshot of (name, id) pairs
	ChildrenOf(id ObjectID) []Child

	// Roots returns the top-level objects in spawn order.
	Roots() []ObjectID

	// NamePath returns the names from root (exclusive) down to target (inclusive).
	// An empty path is returned when target == root.
	//
	// Parameters:
	//   - root: the ancestor the path is relative to
	//   - target: the descendant
	//
	// Returns:
	//   - []string: the name chain
	//   - bool: false if target is not root or a descendant of it
	NamePath(root, target ObjectID) ([]string, bool)

	// Subscribe registers a change listener.
	//
	// Parameters:
	//   - l: the listener
	//
	// Returns:
	//   - func(): removes the listener
	Subscribe(l Listener) func()

	// Transform returns the object's local transform.
	Transform(id ObjectID) (common.Transform, bool)

	// SetTransform replaces the object's local transform.
	SetTransform(id ObjectID, t common.Transform)

	// SetTranslation writes the local translation. Unknown objects are ignored.
	SetTranslation(id ObjectID, v [3]float32)

	// SetRotation writes the local rotation. Unknown objects are ignored.
	SetRotation(id ObjectID, q [4]float32)

	// SetScale writes the local scale. Unknown objects are ignored.
	SetScale(id ObjectID, v [3]float32)

	// GlobalTransform composes the local matrices from the top-level ancestor down to id.
	//
	// Parameters:
	//   - id: the object
	//
	// Returns:
	//   - [16]float32: column-major world matrix
	//   - bool: false if the object does not exist
	GlobalTransform(id ObjectID) ([16]float32, bool)

	// Contains reports whether the object exists.
	Contains(id ObjectID) bool

	// Len returns the number of live objects.
	Len() int
}

var _ Hierarchy = &hierarchy{}

// NewHierarchy creates an empty Hierarchy.
//
// Returns:
//   - Hierarchy: the new hierarchy
func NewHierarchy() Hierarchy {
	return &hierarchy{
		nodes:     make(map[ObjectID]*node),
		nextID:    1,
		listeners: make(map[int]Listener),
	}
}

func (h *hierarchy) Spawn(options ...ObjectBuilderOption) ObjectID {
	spec := &objectSpec{transform: common.IdentityTransform()}
	for _, option := range options {
		option(spec)
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	n := &node{id: id, name: spec.name, transform: spec.transform}
	h.nodes[id] = n
	if p, ok := h.nodes[spec.parent]; ok {
		n.parent = p.id
		p.children = append(p.children, id)
	}
	evt := ChangeEvent{Kind: ChangeSpawned, Object: id, Parent: n.parent, Name: n.name}
	h.mu.Unlock()

	h.notify(evt)
	return id
}

func (h *hierarchy) Despawn(id ObjectID) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("despawn %d: %w", id, ErrUnknownObject)
	}
	if p, ok := h.nodes[n.parent]; ok {
		p.children = removeID(p.children, id)
	}

	var events []ChangeEvent
	var walk func(n *node)
	walk = func(n *node) {
		for _, c := range n.children {
			if cn, ok := h.nodes[c]; ok {
				walk(cn)
			}
		}
		delete(h.nodes, n.id)
		events = append(events, ChangeEvent{Kind: ChangeDespawned, Object: n.id, Parent: n.parent, Name: n.name})
	}
	walk(n)
	h.mu.Unlock()

	for _, evt := range events {
		h.notify(evt)
	}
	return nil
}

func (h *hierarchy) SetParent(child, parent ObjectID) error {
	if parent == InvalidObject {
		h.mu.Lock()
		n, ok := h.nodes[child]
		if !ok {
			h.mu.Unlock()
			return fmt.Errorf("set parent of %d: %w", child, ErrUnknownObject)
		}
		old := n.parent
		if p, ok := h.nodes[old]; ok {
			p.children = removeID(p.children, child)
		}
		n.parent = InvalidObject
		name := n.name
		h.mu.Unlock()

		if old != InvalidObject {
			h.notify(ChangeEvent{Kind: ChangeReparented, Object: child, OldParent: old, Name: name})
		}
		return nil
	}

	h.mu.RLock()
	count := 0
	if p, ok := h.nodes[parent]; ok {
		count = len(p.children)
	}
	h.mu.RUnlock()
	return h.InsertChildren(parent, count, child)
}

func (h *hierarchy) InsertChildren(parent ObjectID, index int, children ...ObjectID) error {
	h.mu.Lock()
	p, ok := h.nodes[parent]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("insert children into %d: %w", parent, ErrUnknownObject)
	}
	for _, c := range children {
		if _, ok := h.nodes[c]; !ok {
			h.mu.Unlock()
			return fmt.Errorf("insert child %d: %w", c, ErrUnknownObject)
		}
		if h.isAncestorLocked(c, parent) {
			h.mu.Unlock()
			return fmt.Errorf("insert child %d under %d: %w", c, parent, ErrHierarchyCycle)
		}
	}

	events := make([]ChangeEvent, 0, len(children))
	for _, c := range children {
		n := h.nodes[c]
		old := n.parent
		if op, ok := h.nodes[old]; ok {
			if op == p {
				// moving within the same parent shifts the insert point when the child sat before it
				if i := indexOf(p.children, c); i >= 0 && i < index {
					index--
				}
			}
			op.children = removeID(op.children, c)
		}
		index = max(0, min(index, len(p.children)))
		p.children = append(p.children, 0)
		copy(p.children[index+1:], p.children[index:])
		p.children[index] = c
		index++
		n.parent = parent
		events = append(events, ChangeEvent{Kind: ChangeReparented, Object: c, Parent: parent, OldParent: old, Name: n.name})
	}
	h.mu.Unlock()

	for _, evt := range events {
		h.notify(evt)
	}
	return nil
}

func (h *hierarchy) SetName(id ObjectID, name string) error {
	h.mu.Lock()
	n, ok := h.nodes[id]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("rename %d: %w", id, ErrUnknownObject)
	}
	old := n.name
	n.name = name
	evt := ChangeEvent{Kind: ChangeRenamed, Object: id, Parent: n.parent, Name: name, OldName: old}
	h.mu.Unlock()

	if old != name {
		h.notify(evt)
	}
	return nil
}

func (h *hierarchy) Name(id ObjectID) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[id]
	if !ok {
		return "", false
	}
	return n.name, true
}

func (h *hierarchy) Parent(id ObjectID) (ObjectID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[id]
	if !ok {
		return InvalidObject, false
	}
	return n.parent, true
}

func (h *hierarchy) ChildrenOf(id ObjectID) []Child {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[id]
	if !ok || len(n.children) == 0 {
		return nil
	}
	out := make([]Child, 0, len(n.children))
	for _, c := range n.children {
		if cn, ok := h.nodes[c]; ok {
			out = append(out, Child{Name: cn.name, ID: c})
		}
	}
	return out
}

func (h *hierarchy) Roots() []ObjectID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []ObjectID
	for id := ObjectID(1); id < h.nextID; id++ {
		if n, ok := h.nodes[id]; ok && n.parent == InvalidObject {
			out = append(out, id)
		}
	}
	return out
}

func (h *hierarchy) NamePath(root, target ObjectID) ([]string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.nodes[root]; !ok {
		return nil, false
	}
	var reversed []string
	cur := target
	for cur != root {
		n, ok := h.nodes[cur]
		if !ok {
			return nil, false
		}
		reversed = append(reversed, n.name)
		cur = n.parent
	}
	path := make([]string, len(reversed))
	for i, name := range reversed {
		path[len(reversed)-1-i] = name
	}
	return path, true
}

func (h *hierarchy) Subscribe(l Listener) func() {
	h.lmu.Lock()
	key := h.listenerN
	h.listenerN++
	h.listeners[key] = l
	h.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.lmu.Lock()
			delete(h.listeners, key)
			h.lmu.Unlock()
		})
	}
}

func (h *hierarchy) Transform(id ObjectID) (common.Transform, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, ok := h.nodes[id]
	if !ok {
		return common.Transform{}, false
	}
	return n.transform, true
}

func (h *hierarchy) SetTransform(id ObjectID, t common.Transform) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n, ok := h.nodes[id]; ok {
		n.transform = t
	}
}

func (h *hierarchy) SetTranslation(id ObjectID, v [3]float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n, ok := h.nodes[id]; ok {
		n.transform.Translation = v
	}
}

func (h *hierarchy) SetRotation(id ObjectID, q [4]float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n, ok := h.nodes[id]; ok {
		n.transform.Rotation = q
	}
}

func (h *hierarchy) SetScale(id ObjectID, v [3]float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n, ok := h.nodes[id]; ok {
		n.transform.Scale = v
	}
}

func (h *hierarchy) GlobalTransform(id ObjectID) ([16]float32, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok {
		return [16]float32{}, false
	}
	out := n.transform.Matrix()
	for p, ok := h.nodes[n.parent]; ok; p, ok = h.nodes[p.parent] {
		pm := p.transform.Matrix()
		common.Mul4(out[:], pm[:], out[:])
	}
	return out, true
}

func (h *hierarchy) Contains(id ObjectID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.nodes[id]
	return ok
}

func (h *hierarchy) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// isAncestorLocked reports whether candidate is id or one of id's ancestors. Caller holds mu.
func (h *hierarchy) isAncestorLocked(candidate, id ObjectID) bool {
	for cur := id; cur != InvalidObject; {
		if cur == candidate {
			return true
		}
		n, ok := h.nodes[cur]
		if !ok {
			return false
		}
		cur = n.parent
	}
	return false
}

func (h *hierarchy) notify(evt ChangeEvent) {
	h.lmu.RLock()
	keys := make([]int, 0, len(h.listeners))
	for k := range h.listeners {
		keys = append(keys, k)
	}
	ls := make([]Listener, 0, len(keys))
	slices.Sort(keys)
	for _, k := range keys {
		ls = append(ls, h.listeners[k])
	}
	h.lmu.RUnlock()

	for _, l := range ls {
		l(evt)
	}
}

func removeID(ids []ObjectID, id ObjectID) []ObjectID {
	if i := indexOf(ids, id); i >= 0 {
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}

func indexOf(ids []ObjectID, id ObjectID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
