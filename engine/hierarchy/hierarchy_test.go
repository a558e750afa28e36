package hierarchy

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

func childNames(h Hierarchy, id ObjectID) []string {
	var out []string
	for _, c := range h.ChildrenOf(id) {
		out = append(out, c.Name)
	}
	return out
}

func TestSpawnWithParentKeepsDeclaredOrder(t *testing.T) {
	h := NewHierarchy()
	root := h.Spawn(WithName("root"))
	h.Spawn(WithName("b"), WithParent(root))
	h.Spawn(WithName("a"), WithParent(root))
	h.Spawn(WithName("c"), WithParent(root))

	if got, want := childNames(h, root), []string{"b", "a", "c"}; !slices.Equal(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	if h.Len() != 4 {
		t.Fatalf("Len = %d, want 4", h.Len())
	}
	if roots := h.Roots(); !slices.Equal(roots, []ObjectID{root}) {
		t.Fatalf("Roots = %v, want [%d]", roots, root)
	}
}

func TestInsertChildren(t *testing.T) {
	h := NewHierarchy()
	p := h.Spawn(WithName("p"))
	x := h.Spawn(WithName("x"), WithParent(p))
	y := h.Spawn(WithName("y"), WithParent(p))
	a := h.Spawn(WithName("a"))
	b := h.Spawn(WithName("b"))

	if err := h.InsertChildren(p, 0, a, b); err != nil {
		t.Fatalf("InsertChildren: %v", err)
	}
	if got, want := childNames(h, p), []string{"a", "b", "x", "y"}; !slices.Equal(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	// moving y to the front within the same parent
	if err := h.InsertChildren(p, 0, y); err != nil {
		t.Fatalf("InsertChildren: %v", err)
	}
	if got, want := childNames(h, p), []string{"y", "a", "b", "x"}; !slices.Equal(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}

	// index past the end clamps
	if err := h.InsertChildren(p, 99, a); err != nil {
		t.Fatalf("InsertChildren: %v", err)
	}
	if got, want := childNames(h, p), []string{"y", "b", "x", "a"}; !slices.Equal(got, want) {
		t.Fatalf("children = %v, want %v", got, want)
	}
	if parent, _ := h.Parent(x); parent != p {
		t.Fatalf("Parent(x) = %d, want %d", parent, p)
	}
}

func TestSetParentRejectsCycles(t *testing.T) {
	h := NewHierarchy()
	a := h.Spawn(WithName("a"))
	b := h.Spawn(WithName("b"), WithParent(a))
	c := h.Spawn(WithName("c"), WithParent(b))

	tests := []struct {
		name   string
		child  ObjectID
		parent ObjectID
		want   error
	}{
		{"self", a, a, ErrHierarchyCycle},
		{"descendant", a, c, ErrHierarchyCycle},
		{"unknown parent", a, 99, ErrUnknownObject},
		{"unknown child", 99, a, ErrUnknownObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.SetParent(tt.child, tt.parent); !errors.Is(err, tt.want) {
				t.Fatalf("SetParent(%d, %d) = %v, want %v", tt.child, tt.parent, err, tt.want)
			}
		})
	}

	if err := h.SetParent(c, InvalidObject); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if parent, _ := h.Parent(c); parent != InvalidObject {
		t.Fatalf("Parent(c) = %d after detach", parent)
	}
	if len(h.ChildrenOf(b)) != 0 {
		t.Fatalf("b still has children after detach")
	}
}

func TestDespawnRemovesSubtree(t *testing.T) {
	h := NewHierarchy()
	root := h.Spawn(WithName("root"))
	mid := h.Spawn(WithName("mid"), WithParent(root))
	leaf := h.Spawn(WithName("leaf"), WithParent(mid))
	sibling := h.Spawn(WithName("sibling"), WithParent(root))

	var despawned []ObjectID
	h.Subscribe(func(evt ChangeEvent) {
		if evt.Kind == ChangeDespawned {
			despawned = append(despawned, evt.Object)
		}
	})

	if err := h.Despawn(mid); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if !slices.Equal(despawned, []ObjectID{leaf, mid}) {
		t.Fatalf("despawn events = %v, want [%d %d]", despawned, leaf, mid)
	}
	if h.Contains(leaf) || h.Contains(mid) {
		t.Fatalf("subtree still present")
	}
	if got := h.ChildrenOf(root); len(got) != 1 || got[0].ID != sibling {
		t.Fatalf("ChildrenOf(root) = %v", got)
	}
	if err := h.Despawn(mid); !errors.Is(err, ErrUnknownObject) {
		t.Fatalf("second Despawn = %v, want ErrUnknownObject", err)
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	h := NewHierarchy()
	var events []ChangeEvent
	unsubscribe := h.Subscribe(func(evt ChangeEvent) { events = append(events, evt) })

	root := h.Spawn(WithName("root"))
	child := h.Spawn(WithName("child"), WithParent(root))
	_ = h.SetName(child, "renamed")
	_ = h.SetName(child, "renamed") // no-op rename emits nothing
	h.SetTranslation(child, [3]float32{1, 2, 3})

	want := []ChangeKind{ChangeSpawned, ChangeSpawned, ChangeRenamed}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, k := range want {
		if events[i].Kind != k {
			t.Errorf("event %d kind = %v, want %v", i, events[i].Kind, k)
		}
	}
	if events[1].Parent != root {
		t.Errorf("spawn event parent = %d, want %d", events[1].Parent, root)
	}
	if events[2].OldName != "child" || events[2].Name != "renamed" {
		t.Errorf("rename event = %+v", events[2])
	}

	unsubscribe()
	unsubscribe()
	h.Spawn(WithName("late"))
	if len(events) != len(want) {
		t.Fatalf("listener called after unsubscribe")
	}
}

func TestNamePath(t *testing.T) {
	h := NewHierarchy()
	scene := h.Spawn(WithName("scene"))
	planet := h.Spawn(WithName("planet"), WithParent(scene))
	orbit := h.Spawn(WithName("orbit_controller"), WithParent(planet))
	satellite := h.Spawn(WithName("satellite"), WithParent(orbit))
	stray := h.Spawn(WithName("stray"))

	path, ok := h.NamePath(scene, satellite)
	if !ok || !slices.Equal(path, []string{"planet", "orbit_controller", "satellite"}) {
		t.Fatalf("NamePath = %v, %v", path, ok)
	}
	if path, ok := h.NamePath(scene, scene); !ok || len(path) != 0 {
		t.Fatalf("NamePath(root, root) = %v, %v", path, ok)
	}
	if _, ok := h.NamePath(scene, stray); ok {
		t.Fatalf("NamePath to unrelated object succeeded")
	}
}

func TestGlobalTransformComposesParents(t *testing.T) {
	h := NewHierarchy()
	parent := h.Spawn(
		WithName("parent"),
		WithTranslation(10, 0, 0),
		WithRotation(common.QuatFromAxisAngle([3]float32{0, 1, 0}, math.Pi/2)),
	)
	child := h.Spawn(WithName("child"), WithParent(parent), WithTranslation(1, 0, 0), WithScale(2, 2, 2))

	m, ok := h.GlobalTransform(child)
	if !ok {
		t.Fatalf("GlobalTransform failed")
	}
	// rotating (1,0,0) by 90 degrees around +Y lands on (0,0,-1)
	want := [3]float32{10, 0, -1}
	for i := range want {
		if math.Abs(float64(m[12+i]-want[i])) > 1e-5 {
			t.Fatalf("world translation = %v, want %v", m[12:15], want)
		}
	}
	if _, ok := h.GlobalTransform(999); ok {
		t.Fatalf("GlobalTransform of unknown object succeeded")
	}
}

func TestConcurrentTransformWrites(t *testing.T) {
	h := NewHierarchy()
	root := h.Spawn(WithName("root"))
	ids := make([]ObjectID, 32)
	for i := range ids {
		ids[i] = h.Spawn(WithParent(root))
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id ObjectID) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				h.SetTranslation(id, [3]float32{float32(i), float32(n), 0})
				_ = h.ChildrenOf(root)
			}
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		tr, _ := h.Transform(id)
		if tr.Translation != [3]float32{float32(i), 99, 0} {
			t.Fatalf("object %d translation = %v", id, tr.Translation)
		}
	}
}
