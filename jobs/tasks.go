package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan marks unpaid invoices past their due date as overdue.
	TaskOverdueScan = "ledger:overdue_scan"
	// TaskLedgerWarmup pre-renders partner statements into the cache.
	TaskLedgerWarmup = "ledger:warmup"
)

// OverdueScanPayload bounds the scan. A zero GraceDays means due date strictly
// in the past.
type OverdueScanPayload struct {
	GraceDays int `json:"grace_days"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(graceDays int) (*asynq.Task, error) {
	data, err := json.Marshal(OverdueScanPayload{GraceDays: graceDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// LedgerWarmupPayload selects which partners to warm. Limit caps the number
// of recently active parties considered.
type LedgerWarmupPayload struct {
	Limit int `json:"limit"`
}

// NewLedgerWarmupTask constructs an Asynq task.
func NewLedgerWarmupTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerWarmupPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerWarmup, data), nil
}
