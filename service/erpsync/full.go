package erpsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"plmsync.GO/core/observability"
	entity "plmsync.GO/model/entity"
)

const (
	FullSyncLockKey = "lock:full_sync"
	fullSyncLockTTL = 2 * time.Hour
)

// Full sync phases.
const (
	PhaseHarvest = "harvest"
	PhasePush    = "push"
	PhaseDone    = "done"
)

var ErrSyncInProgress = errors.New("a full sync is already running")

// PerformFullSync harvests with the prefix filter of cfg and pushes the result.
// A harvest failure skips the push. Completed live passes stamp the last sync time.
func (e *Engine) PerformFullSync(ctx context.Context, cfg entity.Configuration, dryRun bool) (*FullSyncResult, error) {
	ctx, span := tracer.Start(ctx, "PerformFullSync", trace.WithAttributes(
		attribute.String("prefix", cfg.Prefix()),
		attribute.Bool("dry_run", dryRun),
	))
	defer span.End()

	release, ok, err := e.locker.TryLock(ctx, FullSyncLockKey, fullSyncLockTTL)
	if err != nil {
		observability.Fail(span, err)
		return nil, fmt.Errorf("acquire full sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}
	defer release()

	out := &FullSyncResult{Phase: PhaseHarvest}
	out.Harvest, err = e.Harvest(ctx, cfg.Prefix())
	if err != nil {
		observability.Fail(span, err)
		out.Error = err.Error()
		return out, fmt.Errorf("harvest: %w", err)
	}

	out.Phase = PhasePush
	out.Push, err = e.Push(ctx, PushOptions{Prefix: cfg.Prefix(), DryRun: dryRun})
	if err != nil {
		observability.Fail(span, err)
		out.Error = err.Error()
		return out, fmt.Errorf("push: %w", err)
	}

	out.Phase = PhaseDone
	if !dryRun && e.settings != nil {
		if err := e.settings.TouchLastSync(ctx, e.now()); err != nil {
			log.Printf("[sync] could not record last sync time: %v", err)
		}
	}
	return out, nil
}
