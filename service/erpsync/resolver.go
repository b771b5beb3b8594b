package erpsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"plmsync.GO/client/cin7"
	"plmsync.GO/core/observability"
	"plmsync.GO/core/syncerr"
	"plmsync.GO/model/entity/plm"
)

// warnings collects non-fatal problems met while syncing one item.
type warnings []string

func (w *warnings) add(format string, args ...interface{}) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// EnsureExists returns the ERP id for sku, creating the product and, depth
// first, every BOM component it depends on.
func (e *Engine) EnsureExists(ctx context.Context, sku string) (cin7.ProductID, []string, error) {
	var w warnings
	id, err := e.ensureExists(ctx, strings.TrimSpace(sku), nil, &w)
	return id, w, err
}

// ensureExists walks one branch. path holds the SKUs being resolved above
// this call; reaching one of them again is a cycle.
func (e *Engine) ensureExists(ctx context.Context, sku string, path []string, w *warnings) (cin7.ProductID, error) {
	ctx, span := tracer.Start(ctx, "EnsureExists", trace.WithAttributes(
		attribute.String("sku", sku),
		attribute.Int("depth", len(path)),
	))
	defer span.End()

	existing, err := e.target.FindBySKU(ctx, sku)
	if err != nil {
		observability.Fail(span, err)
		return "", fmt.Errorf("lookup %s: %w", sku, err)
	}
	if existing != nil {
		return existing.ID, nil
	}
	for _, p := range path {
		if p == sku {
			err := syncerr.Cycle(path, sku)
			observability.Fail(span, err)
			return "", err
		}
	}

	item, err := e.locate(ctx, sku)
	if err != nil {
		observability.Fail(span, err)
		return "", err
	}
	branch := append(path[:len(path):len(path)], sku)
	bom, err := e.resolveBOM(ctx, item, branch, false, w)
	if err != nil {
		observability.Fail(span, err)
		return "", err
	}
	p, err := Transform(item, e.rules, bom)
	if err != nil {
		observability.Fail(span, err)
		return "", err
	}
	id, err := e.write(ctx, p, w)
	if err != nil {
		observability.Fail(span, err)
		return "", err
	}
	log.Printf("[resolve] created %s (id %s) at depth %d", sku, id, len(path))
	return id, nil
}

// locate finds sku in the local store, then live in the PLM. A live record
// is not persisted.
func (e *Engine) locate(ctx context.Context, sku string) (plm.SourceItem, error) {
	local, err := e.items.FindBySKU(sku)
	if err == nil {
		return *local, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return plm.SourceItem{}, fmt.Errorf("local lookup %s: %w", sku, err)
	}
	return e.fetchLive(ctx, sku)
}

func (e *Engine) fetchLive(ctx context.Context, sku string) (plm.SourceItem, error) {
	detail, err := e.source.FindItemByNumber(ctx, sku)
	if err != nil {
		return plm.SourceItem{}, fmt.Errorf("item %s: %w", sku, err)
	}
	if detail == nil {
		return plm.SourceItem{}, fmt.Errorf("item %s: %w", sku, syncerr.ErrNotFound)
	}
	sourcing, err := e.source.GetSourcing(ctx, detail.GUID)
	if err != nil {
		return plm.SourceItem{}, fmt.Errorf("sourcing %s: %w", sku, err)
	}
	return ToSourceItem(detail, sourcing, e.now())
}

// resolveBOM reads the live BOM of item and resolves every component. In
// dry-run mode components are only looked up; unresolved ones keep their SKU.
// A component that cannot be resolved is a warning, never a failure of item,
// unless the ERP rejected our credentials.
func (e *Engine) resolveBOM(ctx context.Context, item plm.SourceItem, path []string, dryRun bool, w *warnings) ([]ResolvedLine, error) {
	if !e.assemblyBOMEnabled() {
		return nil, nil
	}
	lines, err := e.source.GetBOM(ctx, item.GUID)
	if err != nil {
		return nil, fmt.Errorf("bom %s: %w", item.ItemNumber, err)
	}
	resolved := make([]ResolvedLine, 0, len(lines))
	for _, line := range lines {
		sku := strings.TrimSpace(line.Item.Number)
		if sku == "" {
			w.add("bom line %d of %s has no item number", line.LineNumber, item.ItemNumber)
			continue
		}
		if line.Quantity.IsNegative() {
			w.add("bom line %s of %s has negative quantity %s", sku, item.ItemNumber, line.Quantity)
			continue
		}
		rl := ResolvedLine{SKU: sku, Quantity: line.Quantity}
		if dryRun {
			existing, err := e.target.FindBySKU(ctx, sku)
			switch {
			case errors.Is(err, syncerr.ErrAuthentication):
				return nil, fmt.Errorf("component %s: %w", sku, err)
			case err != nil:
				w.add("component %s: %v", sku, err)
			case existing != nil:
				rl.ComponentID = existing.ID
			}
		} else {
			id, err := e.ensureExists(ctx, sku, path, w)
			if errors.Is(err, syncerr.ErrAuthentication) {
				return nil, fmt.Errorf("component %s: %w", sku, err)
			}
			if err != nil {
				log.Printf("[resolve] component %s of %s unresolved: %v", sku, item.ItemNumber, err)
				w.add("component %s: %v", sku, err)
			}
			rl.ComponentID = id
		}
		resolved = append(resolved, rl)
	}
	return resolved, nil
}

// write upserts p and then uploads its BOM. A rejected BOM upload is a warning.
func (e *Engine) write(ctx context.Context, p cin7.Product, w *warnings) (cin7.ProductID, error) {
	res, err := e.target.UpsertProduct(ctx, p)
	if err != nil {
		return "", fmt.Errorf("upsert %s: %w", p.SKU, err)
	}
	if !res.OK() {
		return "", fmt.Errorf("upsert %s: %w", p.SKU, syncerr.Validation(res.Message))
	}
	var id cin7.ProductID
	if res.Data != nil {
		id = res.Data.ID
	}
	if len(p.BillOfMaterialsProducts) == 0 {
		return id, nil
	}
	if id == "" {
		w.add("no product id returned for %s, bom not uploaded", p.SKU)
		return id, nil
	}
	bres, err := e.target.UploadBOM(ctx, id, p.BillOfMaterialsProducts)
	switch {
	case errors.Is(err, syncerr.ErrAuthentication):
		return id, fmt.Errorf("bom upload %s: %w", p.SKU, err)
	case err != nil:
		w.add("bom upload for %s: %v", p.SKU, err)
	case !bres.OK():
		w.add("bom upload for %s rejected: %s", p.SKU, bres.Message)
	}
	return id, nil
}
