package ops

import (
	"strings"

	"github.com/fieldops-next/internal/http/response"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/service"

	"github.com/gin-gonic/gin"
)

// orderItemRequest 订单行请求体
type orderItemRequest struct {
	ProductID         string       `json:"product_id" binding:"required"`
	ProductName       string       `json:"product_name"`
	Quantity          int          `json:"quantity" binding:"required"`
	UnitPrice         models.Money `json:"unit_price"`
	DiscountPercent   float64      `json:"discount_percent"`
	ProductMaxPercent float64      `json:"product_max_percent"`
}

// orderRequest 订单草稿请求体
type orderRequest struct {
	ShopID          string             `json:"shop_id" binding:"required"`
	ShopName        string             `json:"shop_name"`
	BookerID        string             `json:"booker_id"`
	RegionID        string             `json:"region_id"`
	BranchID        string             `json:"branch_id"`
	PaymentMode     string             `json:"payment_mode"`
	Items           []orderItemRequest `json:"items"`
	BookerMaxPct    *float64           `json:"booker_max_percent"`
	BookerMaxAmount *models.Money      `json:"booker_max_amount"`
}

func (r orderRequest) toDraftInput(defaultRegion, defaultBranch string) service.OrderDraftInput {
	regionID := strings.TrimSpace(r.RegionID)
	if regionID == "" {
		regionID = defaultRegion
	}
	branchID := strings.TrimSpace(r.BranchID)
	if branchID == "" {
		branchID = defaultBranch
	}
	items := make([]service.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.OrderItemInput{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			DiscountPercent:   item.DiscountPercent,
			ProductMaxPercent: item.ProductMaxPercent,
		})
	}
	return service.OrderDraftInput{
		ShopID:      r.ShopID,
		ShopName:    r.ShopName,
		BookerID:    r.BookerID,
		RegionID:    regionID,
		BranchID:    branchID,
		PaymentMode: r.PaymentMode,
		Items:       items,
	}
}

func (r orderRequest) toLimits() service.DiscountLimits {
	return service.DiscountLimits{
		BookerMaxPercent: r.BookerMaxPct,
		BookerMaxAmount:  r.BookerMaxAmount,
	}
}

// CreateOrder 创建草稿订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.OrderService.CreateDraft(c.Request.Context(),
		req.toDraftInput(h.Config.Device.RegionID, h.Config.Device.BranchID), req.toLimits())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrder 更新草稿订单
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.OrderService.UpdateDraft(c.Request.Context(), c.Param("id"),
		req.toDraftInput(h.Config.Device.RegionID, h.Config.Device.BranchID), req.toLimits())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// submitOrderRequest 提交请求体（仅限额）
type submitOrderRequest struct {
	BookerMaxPct    *float64      `json:"booker_max_percent"`
	BookerMaxAmount *models.Money `json:"booker_max_amount"`
}

// SubmitOrder 提交订单并生成配送单
func (h *Handler) SubmitOrder(c *gin.Context) {
	var req submitOrderRequest
	// 请求体可为空（不带限额提交）
	_ = c.ShouldBindJSON(&req)
	limits := service.DiscountLimits{
		BookerMaxPercent: req.BookerMaxPct,
		BookerMaxAmount:  req.BookerMaxAmount,
	}
	order, delivery, err := h.OrderService.Submit(c.Request.Context(), c.Param("id"), limits)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"order": order, "delivery": delivery})
}

// RequestOrderEdit 审核退回订单
func (h *Handler) RequestOrderEdit(c *gin.Context) {
	order, err := h.OrderService.RequestEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ApproveOrder 审核通过订单
func (h *Handler) ApproveOrder(c *gin.Context) {
	order, err := h.OrderService.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.OrderService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrder 读取订单
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 合并后的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.ReconcileService.Orders(c.Request.Context(), h.scope(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, orders)
}

func (h *Handler) scope(c *gin.Context) service.Scope {
	regionID := strings.TrimSpace(c.Query("region_id"))
	if regionID == "" {
		regionID = h.Config.Device.RegionID
	}
	return service.Scope{RegionID: regionID}
}
