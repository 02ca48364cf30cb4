package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatadesk/khatadesk/internal/invoices"
)

// OverdueScanJob flips unpaid invoices past their due date to OVERDUE. The
// mark is a status override; the PENDING/PARTIAL/PAID derivation never
// produces OVERDUE on its own, and recording a payment recomputes the status
// back out of it.
type OverdueScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(pool *pgxpool.Pool, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{
		Pool:   pool,
		Logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the overdue scan across both document families.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	cutoff := j.clock().AddDate(0, 0, -payload.GraceDays)

	total := int64(0)
	for _, table := range []string{"sales_invoices", "purchase_invoices"} {
		tag, err := j.Pool.Exec(ctx, fmt.Sprintf(`
			UPDATE %s
			SET payment_status = $1, updated_at = NOW()
			WHERE due_date IS NOT NULL
			  AND due_date < $2
			  AND payment_status IN ($3, $4)`, table),
			invoices.PaymentOverdue, cutoff, invoices.PaymentPending, invoices.PaymentPartial)
		if err != nil {
			return fmt.Errorf("overdue scan %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}

	j.Logger.InfoContext(ctx, "overdue scan finished",
		"cutoff", cutoff.Format("2006-01-02"), "marked", total)
	return nil
}
