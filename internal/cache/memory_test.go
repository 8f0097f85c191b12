package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ErlanBelekov/greeting-api/internal/cache"
	"github.com/ErlanBelekov/greeting-api/internal/domain"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newStore() (*cache.MemoryStore, *clock) {
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return cache.NewMemoryStore().WithClock(c.Now), c
}

func TestKeys(t *testing.T) {
	if got := cache.UserKey("a@x.com"); got != "user:a@x.com" {
		t.Errorf("UserKey = %q", got)
	}
	if got := cache.ResetTokenKey("a@x.com"); got != "resetToken:a@x.com" {
		t.Errorf("ResetTokenKey = %q", got)
	}
}

func TestMemoryStore_GetMiss(t *testing.T) {
	s, _ := newStore()

	var p domain.UserProfile
	if err := s.Get(context.Background(), "user:none", &p); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("want ErrMiss, got %v", err)
	}

	_, ok, err := cache.Get[domain.UserProfile](context.Background(), s, "user:none")
	if err != nil || ok {
		t.Fatalf("typed Get on miss: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore_SetThenGet(t *testing.T) {
	s, _ := newStore()
	ctx := context.Background()
	want := domain.UserProfile{FirstName: "A", LastName: "B", Email: "a@x.com"}

	if err := s.Set(ctx, cache.UserKey(want.Email), want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := cache.Get[domain.UserProfile](ctx, s, cache.UserKey(want.Email))
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMemoryStore_SetOverwrites(t *testing.T) {
	s, _ := newStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", "first", time.Minute)
	_ = s.Set(ctx, "k", "second", time.Minute)

	got, _, _ := cache.Get[string](ctx, s, "k")
	if got != "second" {
		t.Errorf("got %q, want second", got)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s, c := newStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", "v", time.Minute)

	c.Advance(59 * time.Second)
	if _, ok, _ := cache.Get[string](ctx, s, "k"); !ok {
		t.Fatal("entry expired early")
	}

	c.Advance(time.Second)
	if _, ok, _ := cache.Get[string](ctx, s, "k"); ok {
		t.Fatal("entry outlived its TTL")
	}
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	s, c := newStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", "v", 0)
	c.Advance(365 * 24 * time.Hour)

	if _, ok, _ := cache.Get[string](ctx, s, "k"); !ok {
		t.Fatal("entry without TTL expired")
	}
}

func TestMemoryStore_RemoveIsIdempotent(t *testing.T) {
	s, _ := newStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", "v", time.Minute)
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, ok, _ := cache.Get[string](ctx, s, "k"); ok {
		t.Fatal("entry still present after remove")
	}
}

func TestMemoryStore_CompareAndDelete(t *testing.T) {
	s, c := newStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", "token-1", time.Minute)

	if ok, err := s.CompareAndDelete(ctx, "k", "token-2"); ok || err != nil {
		t.Fatalf("mismatch: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := cache.Get[string](ctx, s, "k"); !ok {
		t.Fatal("mismatched compare must not delete")
	}

	if ok, err := s.CompareAndDelete(ctx, "k", "token-1"); !ok || err != nil {
		t.Fatalf("match: ok=%v err=%v", ok, err)
	}
	if ok, _ := s.CompareAndDelete(ctx, "k", "token-1"); ok {
		t.Fatal("second delete must fail")
	}

	_ = s.Set(ctx, "expiring", "token-3", time.Second)
	c.Advance(time.Second)
	if ok, _ := s.CompareAndDelete(ctx, "expiring", "token-3"); ok {
		t.Fatal("expired entry must not be claimable")
	}
}

func TestMemoryStore_CompareAndDeleteSingleWinner(t *testing.T) {
	s, _ := newStore()
	ctx := context.Background()
	_ = s.Set(ctx, "k", "token", time.Minute)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.CompareAndDelete(ctx, "k", "token"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("winners = %d, want 1", got)
	}
}
