package ops

import (
	"errors"
	"strings"

	"github.com/fieldops-next/internal/http/response"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/service"

	"github.com/gin-gonic/gin"
)

// stockReturnItemRequest 退货行请求体
type stockReturnItemRequest struct {
	ProductID   string       `json:"product_id" binding:"required"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity" binding:"required"`
	UnitValue   models.Money `json:"unit_value"`
}

// stockReturnRequest 退货单请求体
type stockReturnRequest struct {
	ShopID    string                   `json:"shop_id" binding:"required"`
	ShopName  string                   `json:"shop_name"`
	RegionID  string                   `json:"region_id"`
	BranchID  string                   `json:"branch_id"`
	Reason    string                   `json:"reason"`
	CreatedBy string                   `json:"created_by"`
	Items     []stockReturnItemRequest `json:"items"`
}

// CreateStockReturn 创建退货单
func (h *Handler) CreateStockReturn(c *gin.Context) {
	var req stockReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	regionID := strings.TrimSpace(req.RegionID)
	if regionID == "" {
		regionID = h.Config.Device.RegionID
	}
	branchID := strings.TrimSpace(req.BranchID)
	if branchID == "" {
		branchID = h.Config.Device.BranchID
	}
	items := make([]service.StockReturnItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.StockReturnItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitValue:   item.UnitValue,
		})
	}
	input := service.StockReturnInput{
		ShopID:   req.ShopID,
		ShopName: req.ShopName,
		RegionID: regionID,
		BranchID: branchID,
		Reason:   req.Reason,
		Items:    items,
	}
	stockReturn, err := h.StockReturnService.Create(c.Request.Context(), input, h.resolveOperator(req.CreatedBy))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, stockReturn)
}

// ListStockReturns 合并后的退货单列表
func (h *Handler) ListStockReturns(c *gin.Context) {
	returns, err := h.ReconcileService.StockReturns(c.Request.Context(), h.scope(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, returns)
}

// approvalRequest 审批请求体
type approvalRequest struct {
	Actor string `json:"actor"`
}

// ApproveStockReturn 审批通过退货单
func (h *Handler) ApproveStockReturn(c *gin.Context) {
	var req approvalRequest
	_ = c.ShouldBindJSON(&req)
	stockReturn, err := h.StockReturnService.Approve(c.Request.Context(), c.Param("id"), h.resolveOperator(req.Actor))
	if err != nil {
		if errors.Is(err, service.ErrLedgerDeferred) {
			response.SuccessWithMsg(c, "台账投递暂缓", gin.H{"stock_return": stockReturn, "ledger_deferred": true})
			return
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, stockReturn)
}

// RejectStockReturn 驳回退货单
func (h *Handler) RejectStockReturn(c *gin.Context) {
	var req approvalRequest
	_ = c.ShouldBindJSON(&req)
	stockReturn, err := h.StockReturnService.Reject(c.Request.Context(), c.Param("id"), h.resolveOperator(req.Actor))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, stockReturn)
}
