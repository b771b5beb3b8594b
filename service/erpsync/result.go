package erpsync

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"plmsync.GO/client/arena"
	"plmsync.GO/client/cin7"
)

// Per-item outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeMocked  = "mocked"
	OutcomeFailed  = "failed"
)

// Batch statuses.
const (
	StatusSuccess     = "success"
	StatusComplete    = "complete" // finished with at least one failed item
	StatusMockSuccess = "mock_success"
	StatusError       = "error"
)

type Summary struct {
	Success int `json:"success"`
	Mocked  int `json:"mocked"`
	Failed  int `json:"failed"`
}

// ItemDetail is kept for failures, dry-run previews and successes with warnings.
type ItemDetail struct {
	SKU       string        `json:"sku"`
	Outcome   string        `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	ProductID string        `json:"product_id,omitempty"`
	Warnings  []string      `json:"warnings,omitempty"`
	Payload   *cin7.Product `json:"payload,omitempty"`
}

type SyncResult struct {
	RunID     string        `json:"run_id"`
	Status    string        `json:"status"`
	Message   string        `json:"message"`
	DryRun    bool          `json:"dry_run"`
	Summary   Summary       `json:"summary"`
	Details   []ItemDetail  `json:"details"`
	Changes   int           `json:"changes,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

func newSyncResult(dryRun bool, now time.Time) *SyncResult {
	return &SyncResult{RunID: uuid.NewString(), DryRun: dryRun, Details: []ItemDetail{}, StartedAt: now}
}

func (r *SyncResult) record(d ItemDetail) {
	switch d.Outcome {
	case OutcomeSuccess:
		r.Summary.Success++
		if len(d.Warnings) == 0 {
			return
		}
	case OutcomeMocked:
		r.Summary.Mocked++
	default:
		r.Summary.Failed++
	}
	r.Details = append(r.Details, d)
}

func (r *SyncResult) finish(now time.Time) {
	r.Duration = now.Sub(r.StartedAt)
	switch {
	case r.DryRun:
		r.Status = StatusMockSuccess
	case r.Summary.Failed > 0:
		r.Status = StatusComplete
	default:
		r.Status = StatusSuccess
	}
	total := r.Summary.Success + r.Summary.Mocked + r.Summary.Failed
	r.Message = fmt.Sprintf("Processed %d items: %d success, %d mocked, %d failed",
		total, r.Summary.Success, r.Summary.Mocked, r.Summary.Failed)
}

type HarvestResult struct {
	RunID            string              `json:"run_id"`
	Harvested        int                 `json:"items_harvested"`
	SkippedLifecycle int                 `json:"skipped_lifecycle"`
	SkippedTransfer  int                 `json:"skipped_transfer_erp"`
	SkippedDuplicate int                 `json:"skipped_duplicate"`
	SkippedInvalid   int                 `json:"skipped_invalid"`
	Listing          []arena.ItemSummary `json:"listing,omitempty"`
	Warnings         []string            `json:"warnings,omitempty"`
	Duration         time.Duration       `json:"duration_ns"`
}

// FullSyncResult reports which phase stopped a full sync, if any.
type FullSyncResult struct {
	Phase   string         `json:"phase"`
	Error   string         `json:"error,omitempty"`
	Harvest *HarvestResult `json:"harvest,omitempty"`
	Push    *SyncResult    `json:"push,omitempty"`
}
