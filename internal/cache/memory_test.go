package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.Now = clk.now

	m.Set(ctx, "bands", []byte("payload"), time.Minute)
	if got, err := m.Get(ctx, "bands"); err != nil || string(got) != "payload" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if ttl, _ := m.TTL(ctx, "bands"); ttl != time.Minute {
		t.Errorf("TTL = %v", ttl)
	}

	clk.t = clk.t.Add(time.Minute)
	if _, err := m.Get(ctx, "bands"); !errors.Is(err, ErrMiss) {
		t.Errorf("expired Get err = %v, want ErrMiss", err)
	}
}

func TestMemorySetNX(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.Now = clk.now

	if ok, _ := m.SetNX(ctx, "gate", []byte("1"), 240*time.Second); !ok {
		t.Fatal("first SetNX should win")
	}
	if ok, _ := m.SetNX(ctx, "gate", []byte("1"), 240*time.Second); ok {
		t.Fatal("second SetNX should lose")
	}
	clk.t = clk.t.Add(240 * time.Second)
	if ok, _ := m.SetNX(ctx, "gate", []byte("1"), 240*time.Second); !ok {
		t.Error("SetNX after expiry should win")
	}
}

func TestMemoryIncr(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.Now = clk.now

	for i := int64(1); i <= 3; i++ {
		if n, _ := m.Incr(ctx, "rl", time.Minute); n != i {
			t.Fatalf("Incr = %d, want %d", n, i)
		}
	}
	// the window is fixed by the first hit
	clk.t = clk.t.Add(30 * time.Second)
	m.Incr(ctx, "rl", time.Minute)
	if ttl, _ := m.TTL(ctx, "rl"); ttl != 30*time.Second {
		t.Errorf("TTL = %v, want 30s", ttl)
	}
	clk.t = clk.t.Add(30 * time.Second)
	if n, _ := m.Incr(ctx, "rl", time.Minute); n != 1 {
		t.Errorf("Incr after window = %d, want 1", n)
	}
}
