package asynchook

import (
	"sync"
	"testing"

	"github.com/unkn0wn-root/jsoner"
)

type countHooks struct {
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

var _ jsoner.Hooks = (*countHooks)(nil)

func (c *countHooks) add(e string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func (c *countHooks) DecodeFallback(p, r string)   { c.add("fallback:" + p + ":" + r) }
func (c *countHooks) EncodeRejected(n string)      { c.add("rejected:" + n) }
func (c *countHooks) SelfHeal(k, r string)         { c.add("heal:" + k + ":" + r) }
func (c *countHooks) ProviderSetRejected(k string) { c.add("set:" + k) }

func TestAsyncForwardsAndDrains(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)

	h.DecodeFallback("geo.Point", "unresolved_type")
	h.EncodeRejected("chan int")
	h.SelfHeal("k", "corrupt")
	h.ProviderSetRejected("k")
	h.Close()

	if len(inner.events) != 4 {
		t.Fatalf("events = %v", inner.events)
	}

	// after Close events are dropped, not panicking on a closed channel
	h.EncodeRejected("late")
	h.Close()
	if len(inner.events) != 4 {
		t.Fatalf("late event delivered: %v", inner.events)
	}
}

func TestAsyncDropsWhenFull(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	for i := 0; i < 10; i++ {
		h.EncodeRejected("x")
	}
	close(inner.block)
	h.Close()

	// one event held by the worker, one queued; the rest dropped
	if n := len(inner.events); n < 1 || n > 2 {
		t.Fatalf("delivered %d events, want 1 or 2", n)
	}
}
