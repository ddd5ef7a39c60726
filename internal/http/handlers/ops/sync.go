package ops

import (
	"github.com/fieldops-next/internal/http/response"
	"github.com/fieldops-next/internal/queue"

	"github.com/gin-gonic/gin"
)

// TriggerSync 手动触发补推。队列可用时走异步任务，
// 否则当场执行一轮扫描。
func (h *Handler) TriggerSync(c *gin.Context) {
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueSyncSweep(queue.SyncSweepPayload{Reason: "manual"}); err != nil {
			respondServiceError(c, response.WrapError(response.CodeInternal, "同步任务入队失败", err))
			return
		}
		if err := h.QueueClient.EnqueueLedgerRetry(queue.LedgerRetryPayload{Reason: "manual"}); err != nil {
			respondServiceError(c, response.WrapError(response.CodeInternal, "台账重投任务入队失败", err))
			return
		}
		response.SuccessWithMsg(c, "已入队", nil)
		return
	}

	pushed, err := h.SyncService.SweepPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	posted, err := h.LedgerService.RetryPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"pushed": pushed, "ledger_posted": posted})
}

// SyncStatus 当前滞留情况
func (h *Handler) SyncStatus(c *gin.Context) {
	pendingLedger, err := h.LedgerService.PendingCount()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"pending_ledger": pendingLedger})
}
