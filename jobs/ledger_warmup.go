package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatadesk/khatadesk/internal/ledger"
)

// LedgerWarmupJob pre-renders partner statements so the first morning request
// hits a warm cache. Parties are picked by recent invoice activity.
type LedgerWarmupJob struct {
	Pool    *pgxpool.Pool
	Ledgers *ledger.Service
	Logger  *slog.Logger
}

// NewLedgerWarmupJob initialises the warmup handler.
func NewLedgerWarmupJob(pool *pgxpool.Pool, ledgers *ledger.Service, logger *slog.Logger) *LedgerWarmupJob {
	return &LedgerWarmupJob{Pool: pool, Ledgers: ledgers, Logger: logger}
}

// Handle warms statements for the most recently active parties.
func (j *LedgerWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil || j.Ledgers == nil {
		return errors.New("ledger warmup: handler not configured")
	}
	var payload LedgerWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 50
	}

	rows, err := j.Pool.Query(ctx, `
		SELECT party_id FROM (
			SELECT party_id, MAX(updated_at) AS last_activity FROM sales_invoices GROUP BY party_id
			UNION ALL
			SELECT party_id, MAX(updated_at) FROM purchase_invoices GROUP BY party_id
		) activity
		GROUP BY party_id
		ORDER BY MAX(last_activity) DESC
		LIMIT $1`, payload.Limit)
	if err != nil {
		return err
	}
	defer rows.Close()

	var partyIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		partyIDs = append(partyIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	warmed := 0
	for _, id := range partyIDs {
		if _, err := j.Ledgers.PartyStatement(ctx, id); err != nil {
			j.Logger.WarnContext(ctx, "ledger warmup skip", "party_id", id, "error", err)
			continue
		}
		warmed++
	}
	j.Logger.InfoContext(ctx, "ledger warmup finished", "warmed", warmed, "candidates", len(partyIDs))
	return nil
}
