package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestRedisGate_SecondAcquireFails(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	gate := NewRedisGate(client, "bot-account", 0)

	ok, err := gate.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}

	ok, err = gate.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second acquire to fail while held")
	}
}

func TestRedisGate_ReleaseReopens(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	gate := NewRedisGate(client, "bot-account", 0)

	gate.TryAcquire(ctx)
	if err := gate.Release(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := gate.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected acquire to succeed after release")
	}
}

func TestRedisGate_ReleaseWithoutHoldIsNoop(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	gate := NewRedisGate(client, "bot-account", 0)
	if err := gate.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRedisGate_DoesNotReleaseAnotherHoldersGate(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	first := NewRedisGate(client, "bot-account", 0)
	second := NewRedisGate(client, "bot-account", 0)

	first.TryAcquire(ctx)
	first.Release(ctx)
	second.TryAcquire(ctx)

	// A stale second release from the first holder must not free the gate.
	if err := first.Release(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := first.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected gate to still be held by the second holder")
	}
}

func TestRedisGate_SeparateAccountsDoNotCollide(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	a := NewRedisGate(client, "account-a", 0)
	b := NewRedisGate(client, "account-b", 0)

	okA, _ := a.TryAcquire(ctx)
	okB, _ := b.TryAcquire(ctx)

	if !okA || !okB {
		t.Errorf("expected both accounts to acquire, got a=%v b=%v", okA, okB)
	}
}

func TestRedisGate_TTLExpiryFreesGate(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	ctx := context.Background()
	gate := NewRedisGate(client, "bot-account", time.Second)

	gate.TryAcquire(ctx)
	srv.FastForward(2 * time.Second)

	ok, err := gate.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected acquire to succeed after TTL expiry")
	}
}

func TestRedisGate_Concurrent(t *testing.T) {
	client := newTestRedis(t)
	defer client.Close()

	ctx := context.Background()

	var successCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 50

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gate := NewRedisGate(client, "contested-account", 0)
			ok, err := gate.TryAcquire(ctx)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
}
