package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocal_TryLock(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, "lock:configuration", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock = %v, %v; want ok", ok, err)
	}
	if _, ok, _ := l.TryLock(ctx, "lock:configuration", time.Minute); ok {
		t.Fatal("second TryLock should fail while held")
	}
	if _, ok, _ := l.TryLock(ctx, "lock:full_sync", time.Minute); !ok {
		t.Error("different key should be independent")
	}
	release()
	if _, ok, _ := l.TryLock(ctx, "lock:configuration", time.Minute); !ok {
		t.Error("TryLock after release should succeed")
	}
}

func TestLocal_Expires(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()
	if _, ok, _ := l.TryLock(ctx, "k", time.Millisecond); !ok {
		t.Fatal("TryLock: want ok")
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := l.TryLock(ctx, "k", time.Minute); !ok {
		t.Error("expired lock should be reacquirable")
	}
}

func TestLock_WaitsForRelease(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()
	release, _, _ := l.TryLock(ctx, "k", time.Minute)
	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()
	got, err := Lock(ctx, l, "k", time.Minute)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	got()
}

func TestLock_ContextCancelled(t *testing.T) {
	l := NewLocal()
	_, _, _ = l.TryLock(context.Background(), "k", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := Lock(ctx, l, "k", time.Minute); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Lock err = %v, want deadline exceeded", err)
	}
}

func TestNew_NilClientIsLocal(t *testing.T) {
	if _, ok := New(nil).(*localLocker); !ok {
		t.Error("New(nil) should return the in-process locker")
	}
}

func TestNew_WithoutRedisSharesLocks(t *testing.T) {
	ctx := context.Background()
	a, b := New(nil), New(nil)

	release, ok, err := a.TryLock(ctx, "lock:shared-test", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v; want ok", ok, err)
	}
	defer release()
	if _, ok, _ := b.TryLock(ctx, "lock:shared-test", time.Minute); ok {
		t.Fatal("second locker from New(nil) acquired a held key")
	}
}
