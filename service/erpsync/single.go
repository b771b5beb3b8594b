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
	"plmsync.GO/model/entity/plm"
)

// SyncSingleItem pushes one SKU. The item is read live from the PLM and
// falls back to the local store when the PLM no longer has it. Failures are
// returned to the caller alongside the result.
func (e *Engine) SyncSingleItem(ctx context.Context, sku string, dryRun bool) (*SyncResult, error) {
	ctx, span := tracer.Start(ctx, "SyncSingleItem", trace.WithAttributes(
		attribute.String("sku", sku),
		attribute.Bool("dry_run", dryRun),
	))
	defer span.End()

	res := newSyncResult(dryRun, e.now())
	d, err := e.syncSKU(ctx, sku, dryRun)
	res.record(d)
	res.finish(e.now())
	if err != nil {
		observability.Fail(span, err)
		res.Status = StatusError
		res.Message = d.Error
		return res, err
	}
	return res, nil
}

func (e *Engine) syncSKU(ctx context.Context, sku string, dryRun bool) (ItemDetail, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		err := syncerr.MissingField("request", "item_number")
		return ItemDetail{Outcome: OutcomeFailed, Error: err.Error(), ErrorKind: syncerr.Classify(err)}, err
	}
	item, err := e.refresh(ctx, sku)
	if err != nil {
		return ItemDetail{SKU: sku, Outcome: OutcomeFailed, Error: err.Error(), ErrorKind: syncerr.Classify(err)}, err
	}
	return e.pushSafe(ctx, item, dryRun)
}

// refresh prefers the live PLM record over the local copy.
func (e *Engine) refresh(ctx context.Context, sku string) (plm.SourceItem, error) {
	item, err := e.fetchLive(ctx, sku)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, syncerr.ErrNotFound) {
		return plm.SourceItem{}, err
	}
	local, lerr := e.items.FindBySKU(sku)
	if lerr != nil {
		return plm.SourceItem{}, fmt.Errorf("item %s: %w", sku, syncerr.ErrNotFound)
	}
	log.Printf("[push] %s not found in PLM, using local copy from %s", sku, local.HarvestedAt.Format("2006-01-02 15:04"))
	return *local, nil
}
