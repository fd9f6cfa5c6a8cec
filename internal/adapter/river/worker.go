package river

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

// OrderEventWorker tells the fulfillment team about new orders. For now it
// logs; orders missing their identities are flagged for manual follow-up.
type OrderEventWorker struct {
	river.WorkerDefaults[OrderEventArgs]
	logger *slog.Logger
}

// Work processes a single order event job.
func (w *OrderEventWorker) Work(ctx context.Context, job *river.Job[OrderEventArgs]) error {
	attrs := []any{
		"event", job.Args.Event,
		"order_id", job.Args.OrderID,
		"email", job.Args.Email,
		"number_of_domains", job.Args.NumberOfDomains,
		"total_accounts", job.Args.TotalAccounts,
		"job_id", job.ID,
		"attempt", job.Attempt,
	}
	if job.Args.StoredAccounts == 0 {
		w.logger.WarnContext(ctx, "new order has no account identities", attrs...)
		return nil
	}
	w.logger.InfoContext(ctx, "new order ready for fulfillment", attrs...)
	return nil
}

// PurgePayloadsArgs is the periodic job that deletes expired intake payloads.
type PurgePayloadsArgs struct{}

func (PurgePayloadsArgs) Kind() string { return "payload.purge" }

// PurgePayloadsWorker runs PayloadStore.PurgeExpired.
type PurgePayloadsWorker struct {
	river.WorkerDefaults[PurgePayloadsArgs]
	payloads domain.PayloadStore
	clock    clock.Clock
	logger   *slog.Logger
}

func (w *PurgePayloadsWorker) Work(ctx context.Context, job *river.Job[PurgePayloadsArgs]) error {
	n, err := w.payloads.PurgeExpired(ctx, w.clock.Now())
	if err != nil {
		return fmt.Errorf("purging expired payloads: %w", err)
	}
	if n > 0 {
		w.logger.InfoContext(ctx, "purged expired payloads", "count", n, "job_id", job.ID)
	}
	return nil
}
