package ops

import (
	"errors"
	"strings"

	"github.com/fieldops-next/internal/http/response"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListDeliveries 合并后的配送单列表
func (h *Handler) ListDeliveries(c *gin.Context) {
	deliveries, err := h.ReconcileService.Deliveries(c.Request.Context(), h.scope(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, deliveries)
}

// markDeliveredRequest 确认送达请求体
type markDeliveredRequest struct {
	Cash        models.Money `json:"cash"`
	CollectedBy string       `json:"collected_by"`
	Signature   string       `json:"signature"`
}

// MarkDelivered 确认送达并登记现场收款
func (h *Handler) MarkDelivered(c *gin.Context) {
	var req markDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	collectedBy := h.resolveOperator(req.CollectedBy)
	delivery, err := h.PaymentService.MarkDelivered(c.Request.Context(), c.Param("id"), req.Cash, collectedBy, req.Signature)
	if err != nil {
		if errors.Is(err, service.ErrLedgerDeferred) {
			// 送达已生效，台账由后台补投
			response.SuccessWithMsg(c, "台账投递暂缓", gin.H{"delivery": delivery, "ledger_deferred": true})
			return
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, delivery)
}

// collectRequest 收款请求体
type collectRequest struct {
	Amount      models.Money `json:"amount"`
	CollectedBy string       `json:"collected_by"`
	Notes       string       `json:"notes"`
}

// CollectPayment 赊销回款
func (h *Handler) CollectPayment(c *gin.Context) {
	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	collectedBy := h.resolveOperator(req.CollectedBy)
	delivery, err := h.PaymentService.Collect(c.Request.Context(), c.Param("id"), req.Amount, collectedBy, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrLedgerDeferred) {
			response.SuccessWithMsg(c, "台账投递暂缓", gin.H{"delivery": delivery, "ledger_deferred": true})
			return
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, delivery)
}

// adjustRequest 冲正请求体
type adjustRequest struct {
	Delta models.Money `json:"delta"`
	Actor string       `json:"actor"`
	Notes string       `json:"notes"`
}

// AdjustPayment 已付清配送单冲正
func (h *Handler) AdjustPayment(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	actor := h.resolveOperator(req.Actor)
	delivery, err := h.PaymentService.Adjust(c.Request.Context(), c.Param("id"), req.Delta, actor, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrLedgerDeferred) {
			response.SuccessWithMsg(c, "台账投递暂缓", gin.H{"delivery": delivery, "ledger_deferred": true})
			return
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, delivery)
}

func (h *Handler) resolveOperator(requested string) string {
	operator := strings.TrimSpace(requested)
	if operator == "" {
		operator = h.Config.Device.OperatorID
	}
	return operator
}
