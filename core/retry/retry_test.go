package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"plmsync.GO/core/syncerr"
)

var fast = Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func TestDo_RetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("GET /items: %w", syncerr.ErrTransientIO)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, func() error {
		calls++
		return syncerr.ErrTransientIO
	})
	if !errors.Is(err, syncerr.ErrTransientIO) {
		t.Fatalf("err = %v, want transient", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fast, func() error {
		calls++
		return syncerr.Validation("bad payload")
	})
	if !errors.Is(err, syncerr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_NoRetry(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), NoRetry, func() error {
		calls++
		return syncerr.ErrTransientIO
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
