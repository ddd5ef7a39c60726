package worker

import (
	"context"
	"encoding/json"

	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/provider"
	"github.com/fieldops-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSyncSweep, c.handleSyncSweep)
	mux.HandleFunc(queue.TaskLedgerRetry, c.handleLedgerRetry)
}

func (c *Consumer) handleSyncSweep(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_sync_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SyncSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_sync_sweep_unmarshal_failed", "error", err)
		return err
	}
	if c.SyncService == nil {
		logger.Warnw("worker_sync_sweep_skip_sync_service_nil")
		return nil
	}
	pushed, err := c.SyncService.SweepPending(ctx)
	if err != nil {
		logger.Warnw("worker_sync_sweep_failed", "reason", payload.Reason, "error", err)
		return err
	}
	if pushed > 0 {
		logger.Infow("worker_sync_sweep_done", "pushed", pushed, "reason", payload.Reason)
	}
	return nil
}

func (c *Consumer) handleLedgerRetry(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_ledger_retry_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LedgerRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_ledger_retry_unmarshal_failed", "error", err)
		return err
	}
	if c.LedgerService == nil {
		logger.Warnw("worker_ledger_retry_skip_ledger_service_nil")
		return nil
	}
	posted, err := c.LedgerService.RetryPending(ctx)
	if err != nil {
		logger.Warnw("worker_ledger_retry_failed", "reason", payload.Reason, "error", err)
		return err
	}
	if posted > 0 {
		logger.Infow("worker_ledger_retry_done", "posted", posted, "reason", payload.Reason)
	}
	return nil
}
