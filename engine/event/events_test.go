package event

import (
	"slices"
	"sync"
	"testing"
)

type ping struct{ N int }
type pong struct{ S string }

func TestEventsDrainOrder(t *testing.T) {
	var q Events[ping]
	q.Send(ping{1})
	q.Send(ping{2})
	q.Update()
	q.Send(ping{3})

	got := q.Drain()
	if !slices.Equal(got, []ping{{1}, {2}, {3}}) {
		t.Fatalf("Drain = %v", got)
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Fatalf("queue not empty after drain")
	}
	if q.Sent() != 3 {
		t.Fatalf("Sent = %d, want 3", q.Sent())
	}
}

func TestEventsExpireAfterTwoUpdates(t *testing.T) {
	var q Events[ping]
	q.Send(ping{1})
	q.Update()
	if q.Len() != 1 {
		t.Fatalf("event dropped after one update")
	}
	q.Update()
	if q.Len() != 0 {
		t.Fatalf("event survived two updates")
	}
}

func TestNilEventsIsInert(t *testing.T) {
	var q *Events[ping]
	q.Send(ping{1})
	q.Update()
	q.Clear()
	if q.Len() != 0 || q.Drain() != nil || q.Sent() != 0 {
		t.Fatalf("nil queue reported events")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := Of[ping](r); ok {
		t.Fatalf("unregistered type found")
	}
	pings := Register[ping](r)
	if again := Register[ping](r); again != pings {
		t.Fatalf("Register returned a different queue for the same type")
	}
	pongs := Register[pong](r)
	if got, ok := Of[pong](r); !ok || got != pongs {
		t.Fatalf("Of[pong] = %v, %v", got, ok)
	}

	pings.Send(ping{1})
	pongs.Send(pong{"a"})
	r.Update()
	r.Update()
	if pings.Len() != 0 || pongs.Len() != 0 {
		t.Fatalf("registry Update did not advance every queue")
	}

	pongs.Send(pong{"b"})
	pending := r.Pending()
	if pending["event.pong"] != 1 || pending["event.ping"] != 0 {
		t.Fatalf("Pending = %v", pending)
	}
}

func TestConcurrentSend(t *testing.T) {
	var q Events[ping]
	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 250 {
				q.Send(ping{g*1000 + i})
			}
		}(g)
	}
	wg.Wait()
	if got := len(q.Drain()); got != 1000 {
		t.Fatalf("drained %d events, want 1000", got)
	}
}
