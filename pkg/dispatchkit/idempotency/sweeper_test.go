package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweeperDefaults(t *testing.T) {
	s := NewSweeper(NewMemoryStore(), SweeperConfig{})
	if s.ttl != DefaultSweeperConfig.TTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultSweeperConfig.TTL)
	}
	if s.interval != DefaultSweeperConfig.Interval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultSweeperConfig.Interval)
	}
}

func TestSweepNow(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	now := time.Now()
	if err := store.Put(ctx, sampleRecord("stale", now.Add(-2*time.Hour))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, sampleRecord("fresh", now)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	sweeper := NewSweeper(store, SweeperConfig{TTL: time.Hour})
	removed, err := sweeper.SweepNow(ctx)
	if err != nil {
		t.Fatalf("SweepNow: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Error("stale record survived the sweep")
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh record evicted: %v", err)
	}
}

func TestSweeperRunEvictsPeriodically(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Put(ctx, sampleRecord("stale", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("Put: %v", err)
	}

	sweeper := NewSweeper(store, SweeperConfig{TTL: time.Minute, Interval: 5 * time.Millisecond})
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweeper.Run(ctx)
	}()

	deadline := time.After(time.Second)
	for {
		if _, err := store.Get(ctx, "stale"); errors.Is(err, ErrNotFound) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("record not evicted within a second")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
}
