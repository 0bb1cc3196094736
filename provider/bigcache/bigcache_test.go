package bigcache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestBigcacheSetGetDel(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute, MaxEntriesInWindow: 64, MaxEntrySize: 256})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(ctx)

	if _, hit, err := p.Get(ctx, "doc:t:missing"); hit || err != nil {
		t.Fatalf("miss = %v, %v", hit, err)
	}
	ok, err := p.Set(ctx, "doc:t:a", []byte("frame"), 0, time.Second)
	if err != nil || !ok {
		t.Fatalf("Set = %v, %v", ok, err)
	}
	got, hit, err := p.Get(ctx, "doc:t:a")
	if err != nil || !hit || !bytes.Equal(got, []byte("frame")) {
		t.Fatalf("Get = %q, %v, %v", got, hit, err)
	}
	if err := p.Del(ctx, "doc:t:a"); err != nil {
		t.Fatal(err)
	}
	if err := p.Del(ctx, "doc:t:a"); err != nil {
		t.Fatalf("second Del: %v", err)
	}
}

func TestBigcacheRequiresLifeWindow(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for zero LifeWindow")
	}
}
