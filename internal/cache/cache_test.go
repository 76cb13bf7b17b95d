package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCache_ExpiryWithFakeClock(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := NewWithClock[string, int](0, clock)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k", 42, time.Minute)

	if v, ok := c.Get(ctx, "k"); !ok || v != 42 {
		t.Fatalf("expected fresh hit, got %d, %v", v, ok)
	}

	clock.Advance(59 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("entry expired before its TTL")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry survived past its TTL")
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := NewWithClock[string, string](0, clock)
	defer c.Close()

	ctx := context.Background()
	calls := 0
	compute := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute(ctx, "k", time.Minute, compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "value" {
			t.Fatalf("unexpected value %q", v)
		}
	}
	if calls != 1 {
		t.Errorf("compute ran %d times within TTL, want 1", calls)
	}

	clock.Advance(2 * time.Minute)
	if _, err := c.GetOrCompute(ctx, "k", time.Minute, compute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("compute ran %d times after expiry, want 2", calls)
	}
}

func TestCache_GetOrComputeErrorNotCached(t *testing.T) {
	c := New[string, int](0)
	defer c.Close()

	ctx := context.Background()
	wantErr := errors.New("upstream down")

	_, err := c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected compute error, got %v", err)
	}

	// The failure must not poison the key.
	v, err := c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Errorf("expected recovery on next compute, got %d, %v", v, err)
	}
}

func TestCache_Delete(t *testing.T) {
	c := New[string, int](0)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k", 1, time.Minute)
	c.Delete(ctx, "k")

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("deleted entry still present")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}
