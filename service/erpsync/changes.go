package erpsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"plmsync.GO/core/observability"
	"plmsync.GO/core/syncerr"
)

// PollChanges syncs every item touched by a completed PLM change. Each SKU is
// synced once per pass even when several changes reference it.
func (e *Engine) PollChanges(ctx context.Context, dryRun bool) (*SyncResult, error) {
	ctx, span := tracer.Start(ctx, "PollChanges", trace.WithAttributes(attribute.Bool("dry_run", dryRun)))
	defer span.End()

	changes, err := e.source.GetChanges(ctx)
	if err != nil {
		observability.Fail(span, err)
		return nil, fmt.Errorf("list changes: %w", err)
	}

	var skus []string
	seen := make(map[string]struct{})
	for _, ch := range changes {
		lines, err := e.source.GetChangeItems(ctx, ch.GUID)
		if errors.Is(err, syncerr.ErrNotFound) {
			log.Printf("[changes] change %s has no items", ch.Number)
			continue
		}
		if err != nil {
			observability.Fail(span, err)
			return nil, fmt.Errorf("items of change %s: %w", ch.Number, err)
		}
		for _, l := range lines {
			sku := strings.TrimSpace(l.Item.Number)
			if sku == "" {
				continue
			}
			if _, dup := seen[sku]; dup {
				continue
			}
			seen[sku] = struct{}{}
			skus = append(skus, sku)
		}
	}
	log.Printf("[changes] %d changes reference %d items", len(changes), len(skus))

	res := newSyncResult(dryRun, e.now())
	res.Changes = len(changes)
	for _, sku := range skus {
		if err := ctx.Err(); err != nil {
			observability.Fail(span, err)
			return nil, err
		}
		d, err := e.syncSKU(ctx, sku, dryRun)
		if errors.Is(err, syncerr.ErrAuthentication) {
			observability.Fail(span, err)
			return nil, err
		}
		res.record(d)
	}
	res.finish(e.now())
	log.Printf("[changes] run %s: %s", res.RunID, res.Message)
	return res, nil
}
