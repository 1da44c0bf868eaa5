package cache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func TestMemoryHitWithinTTL(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	c := NewMemory[string](time.Hour, clk.Now)
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	clk.Advance(59 * time.Minute)
	if v, ok := c.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get() = %q, %v; want hit", v, ok)
	}
}

func TestMemoryStaleReadsAsAbsent(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	c := NewMemory[string](time.Hour, clk.Now)
	ctx := context.Background()

	c.Set(ctx, "k", "v")
	clk.Advance(61 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected stale entry to be a miss")
	}
	if c.Len() != 0 {
		t.Fatalf("stale entry should be dropped on read, len=%d", c.Len())
	}
}

func TestMemoryLastWriteWins(t *testing.T) {
	c := NewMemory[int](time.Minute, nil)
	ctx := context.Background()
	c.Set(ctx, "k", 1)
	c.Set(ctx, "k", 2)
	if v, _ := c.Get(ctx, "k"); v != 2 {
		t.Fatalf("Get() = %d, want 2", v)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	c := NewMemory[int](time.Minute, nil)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			c.Set(ctx, key, i)
			c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	if c.Len() != 5 {
		t.Fatalf("len = %d, want 5", c.Len())
	}
}

func TestKeyIsStableAndSeparated(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Fatal("Key must be deterministic")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Fatal("Key must separate parts")
	}
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, RedisOptions{Address: addr})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	clk := &fakeClock{t: time.Now()}
	c := NewRedis[string](client, fmt.Sprintf("newsbrief-test-%d", time.Now().UnixNano()), time.Hour, clk.Now)
	c.Set(ctx, "k", "summary")
	if v, ok := c.Get(ctx, "k"); !ok || v != "summary" {
		t.Fatalf("Get() = %q, %v", v, ok)
	}
	clk.Advance(2 * time.Hour)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("entry older than ttl must read as absent")
	}
}

func TestConnectRequiresAddress(t *testing.T) {
	if _, err := Connect(context.Background(), RedisOptions{}); err == nil {
		t.Fatal("expected error for empty address")
	}
}
