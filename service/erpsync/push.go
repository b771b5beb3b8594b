package erpsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"plmsync.GO/core/observability"
	"plmsync.GO/core/syncerr"
	"plmsync.GO/model/entity/plm"
)

// PushOptions selects the local items to push. An empty Prefix pushes everything.
type PushOptions struct {
	Prefix string
	DryRun bool
}

// Push sends the local items matching opts to the ERP.
func (e *Engine) Push(ctx context.Context, opts PushOptions) (*SyncResult, error) {
	items, err := e.items.ListByPrefix(opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("load local items: %w", err)
	}
	log.Printf("[push] %d local items match prefix %q (dry run: %v)", len(items), opts.Prefix, opts.DryRun)
	return e.PushItems(ctx, items, opts.DryRun)
}

// PushItems runs every item through a bounded worker pool. One item's failure
// never stops the others, except a rejected login: that cancels the items not
// yet started and the pass returns syncerr.ErrAuthentication with the partial result.
func (e *Engine) PushItems(ctx context.Context, items []plm.SourceItem, dryRun bool) (*SyncResult, error) {
	ctx, span := tracer.Start(ctx, "Push", trace.WithAttributes(
		attribute.Int("items", len(items)),
		attribute.Bool("dry_run", dryRun),
	))
	defer span.End()

	res := newSyncResult(dryRun, e.now())
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, it := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			d, err := e.pushSafe(gctx, it, dryRun)
			if errors.Is(err, syncerr.ErrAuthentication) {
				mu.Lock()
				res.record(d)
				mu.Unlock()
				return err
			}
			if gctx.Err() != nil && errors.Is(err, context.Canceled) {
				return nil
			}
			mu.Lock()
			res.record(d)
			mu.Unlock()
			return nil
		})
	}
	abort := g.Wait()

	sort.SliceStable(res.Details, func(i, j int) bool { return res.Details[i].SKU < res.Details[j].SKU })
	res.finish(e.now())
	if abort != nil {
		observability.Fail(span, abort)
		res.Status = StatusError
		res.Message = fmt.Sprintf("Aborted after %d of %d items: %v",
			res.Summary.Success+res.Summary.Mocked+res.Summary.Failed, len(items), abort)
		log.Printf("[push] run %s: %s", res.RunID, res.Message)
		return res, fmt.Errorf("push aborted: %w", abort)
	}
	span.SetAttributes(
		attribute.Int("success", res.Summary.Success),
		attribute.Int("mocked", res.Summary.Mocked),
		attribute.Int("failed", res.Summary.Failed),
	)
	log.Printf("[push] run %s: %s", res.RunID, res.Message)
	return res, nil
}

func (e *Engine) pushSafe(ctx context.Context, item plm.SourceItem, dryRun bool) (d ItemDetail, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while pushing %s: %v", item.ItemNumber, r)
			log.Printf("[push] %v", err)
			d = ItemDetail{SKU: item.ItemNumber, Outcome: OutcomeFailed, Error: err.Error(), ErrorKind: "panic"}
		}
	}()
	return e.pushOne(ctx, item, dryRun)
}

// pushOne resolves the BOM of item, builds its payload and, unless dryRun,
// upserts it. The returned error is also recorded in the detail.
func (e *Engine) pushOne(ctx context.Context, item plm.SourceItem, dryRun bool) (ItemDetail, error) {
	ctx, span := tracer.Start(ctx, "PushItem", trace.WithAttributes(attribute.String("sku", item.ItemNumber)))
	defer span.End()

	d := ItemDetail{SKU: item.ItemNumber}
	fail := func(err error) (ItemDetail, error) {
		observability.Fail(span, err)
		log.Printf("[push] %s failed: %v", item.ItemNumber, err)
		d.Outcome = OutcomeFailed
		d.Error = err.Error()
		d.ErrorKind = syncerr.Classify(err)
		return d, err
	}

	var w warnings
	bom, err := e.resolveBOM(ctx, item, []string{item.ItemNumber}, dryRun, &w)
	if err != nil {
		return fail(err)
	}
	p, err := Transform(item, e.rules, bom)
	if err != nil {
		return fail(err)
	}
	d.Warnings = w

	if dryRun {
		d.Outcome = OutcomeMocked
		d.Payload = &p
		return d, nil
	}
	id, err := e.write(ctx, p, &w)
	d.Warnings = w
	if err != nil {
		return fail(err)
	}
	d.Outcome = OutcomeSuccess
	d.ProductID = id.String()
	return d, nil
}
