package queue

import (
	"encoding/json"

	"github.com/fieldops-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSyncSweep 待同步记录补推任务
	TaskSyncSweep = constants.TaskSyncSweep
	// TaskLedgerRetry 滞留台账分录补投任务
	TaskLedgerRetry = constants.TaskLedgerRetry
)

// SyncSweepPayload 补推任务载荷
type SyncSweepPayload struct {
	Reason string `json:"reason,omitempty"`
}

// LedgerRetryPayload 台账补投任务载荷
type LedgerRetryPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewSyncSweepTask 创建补推任务
func NewSyncSweepTask(payload SyncSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncSweep, body), nil
}

// NewLedgerRetryTask 创建台账补投任务
func NewLedgerRetryTask(payload LedgerRetryPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerRetry, body), nil
}
