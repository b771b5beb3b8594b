package erpsync

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"plmsync.GO/core/observability"
	"plmsync.GO/core/syncerr"
	"plmsync.GO/model/entity/plm"
)

// Harvest pulls PLM items whose number starts with prefix ("" for all),
// filters them and merge-upserts the survivors into the local store. Writes
// are buffered and committed in one transaction, so a failed pass persists nothing.
func (e *Engine) Harvest(ctx context.Context, prefix string) (*HarvestResult, error) {
	ctx, span := tracer.Start(ctx, "Harvest", trace.WithAttributes(attribute.String("prefix", prefix)))
	defer span.End()

	start := e.now()
	res := &HarvestResult{RunID: uuid.NewString()}
	fail := func(err error) (*HarvestResult, error) {
		observability.Fail(span, err)
		res.Harvested = 0
		res.Duration = e.now().Sub(start)
		log.Printf("[harvest] run %s aborted: %v", res.RunID, err)
		return res, err
	}

	if err := e.source.Authenticate(ctx); err != nil {
		return fail(fmt.Errorf("authenticate source: %w", err))
	}
	listing, err := e.source.ListItems(ctx, prefix)
	if err != nil {
		return fail(fmt.Errorf("list items: %w", err))
	}
	res.Listing = listing
	log.Printf("[harvest] %d candidates for prefix %q", len(listing), prefix)

	elig := NewEligibility(e.rules)
	seen := make(map[string]string, len(listing))
	batch := make([]plm.SourceItem, 0, len(listing))
	for _, summary := range listing {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		detail, err := e.source.GetItem(ctx, summary.GUID)
		if errors.Is(err, syncerr.ErrNotFound) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("item %s (%s) disappeared during harvest", summary.Number, summary.GUID))
			continue
		}
		if err != nil {
			return fail(fmt.Errorf("fetch item %s: %w", summary.GUID, err))
		}

		attrs := ExtractAttributes(MapAttributes(detail.AdditionalAttributes))
		switch elig.Check(detail.LifecyclePhase.Name, attrs.TransferToERP) {
		case SkipLifecycle:
			res.SkippedLifecycle++
			continue
		case SkipTransfer:
			res.SkippedTransfer++
			continue
		}

		sourcing, err := e.source.GetSourcing(ctx, summary.GUID)
		if err != nil {
			return fail(fmt.Errorf("fetch sourcing %s: %w", summary.GUID, err))
		}
		rec, err := ToSourceItem(detail, sourcing, e.now())
		if err != nil {
			res.SkippedInvalid++
			res.Warnings = append(res.Warnings, err.Error())
			continue
		}
		if guid, dup := seen[rec.ItemNumber]; dup {
			if guid != rec.GUID {
				res.SkippedDuplicate++
				res.Warnings = append(res.Warnings, fmt.Sprintf("item number %s is used by %s and %s, keeping %s", rec.ItemNumber, guid, rec.GUID, guid))
			}
			continue
		}
		seen[rec.ItemNumber] = rec.GUID
		batch = append(batch, rec)
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return e.items.WithTx(tx).Upsert(batch)
	})
	if err != nil {
		return fail(fmt.Errorf("store harvested items: %w", err))
	}

	res.Harvested = len(batch)
	res.Duration = e.now().Sub(start)
	span.SetAttributes(
		attribute.Int("harvested", res.Harvested),
		attribute.Int("skipped_lifecycle", res.SkippedLifecycle),
		attribute.Int("skipped_transfer", res.SkippedTransfer),
	)
	log.Printf("[harvest] run %s: %d harvested, %d skipped (lifecycle), %d skipped (transfer), %d duplicates, %d invalid",
		res.RunID, res.Harvested, res.SkippedLifecycle, res.SkippedTransfer, res.SkippedDuplicate, res.SkippedInvalid)
	return res, nil
}
