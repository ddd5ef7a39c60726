package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/replica"

	"github.com/google/uuid"
)

// 订单状态机合法流转表
var allowedOrderTransitions = map[string][]string{
	constants.OrderStatusDraft:         {constants.OrderStatusSubmitted, constants.OrderStatusCanceled},
	constants.OrderStatusSubmitted:     {constants.OrderStatusEditRequested, constants.OrderStatusApproved, constants.OrderStatusCanceled},
	constants.OrderStatusEditRequested: {constants.OrderStatusDraft, constants.OrderStatusCanceled},
	constants.OrderStatusApproved:      {constants.OrderStatusDelivered, constants.OrderStatusCanceled},
	constants.OrderStatusDelivered:     {},
	constants.OrderStatusCanceled:      {},
}

// OrderService 订单生命周期。草稿可改，提交后冻结，
// 提交时完成折扣授权拆分并 1:1 生成配送单。
type OrderService struct {
	replica  replica.Store
	sync     *SyncService
	discount *DiscountService
}

// NewOrderService 创建订单服务
func NewOrderService(replicaStore replica.Store, syncService *SyncService, discountService *DiscountService) *OrderService {
	return &OrderService{
		replica:  replicaStore,
		sync:     syncService,
		discount: discountService,
	}
}

// OrderDraftInput 草稿创建/更新输入
type OrderDraftInput struct {
	ShopID      string
	ShopName    string
	BookerID    string
	RegionID    string
	BranchID    string
	PaymentMode string
	Items       []OrderItemInput
}

// OrderItemInput 订单行输入
type OrderItemInput struct {
	ProductID         string
	ProductName       string
	Quantity          int
	UnitPrice         models.Money
	DiscountPercent   float64
	ProductMaxPercent float64
}

// CreateDraft 创建草稿订单。金额在提交时才定稿，
// 草稿阶段仅做基础校验并预计算行金额供前端回显。
func (s *OrderService) CreateDraft(ctx context.Context, input OrderDraftInput, limits DiscountLimits) (models.Order, error) {
	if err := validateDraftInput(input); err != nil {
		return models.Order{}, err
	}
	now := models.Now()
	order := models.Order{
		ID:          uuid.NewString(),
		OrderNumber: newOrderNumber(now),
		Status:      constants.OrderStatusDraft,
		CreatedAt:   now,
	}
	applyDraftInput(&order, input, limits, s.discount, now)
	return s.sync.SaveOrder(ctx, order)
}

// UpdateDraft 更新草稿订单。仅 draft 与 edit_requested 状态可改，
// edit_requested 改完自动回到 draft。
func (s *OrderService) UpdateDraft(ctx context.Context, orderID string, input OrderDraftInput, limits DiscountLimits) (models.Order, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status != constants.OrderStatusDraft && order.Status != constants.OrderStatusEditRequested {
		return order, ErrOrderNotDraft
	}
	if err := validateDraftInput(input); err != nil {
		return order, err
	}
	order.Status = constants.OrderStatusDraft
	applyDraftInput(&order, input, limits, s.discount, models.Now())
	return s.sync.SaveOrder(ctx, order)
}

// Submit 提交订单：定稿折扣授权拆分，冻结订单内容，
// 并生成与订单 1:1 的配送单（应收额为授权后应收）。
func (s *OrderService) Submit(ctx context.Context, orderID string, limits DiscountLimits) (models.Order, models.Delivery, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return models.Order{}, models.Delivery{}, err
	}
	if err := s.transition(&order, constants.OrderStatusSubmitted); err != nil {
		return order, models.Delivery{}, err
	}
	if len(order.Items) == 0 {
		return order, models.Delivery{}, ErrInvalidOrderItem
	}

	split := s.discount.Authorize(discountInputs(order.Items), limits)
	applySplit(&order, split)
	order.UpdatedAt = models.Now()

	order, err = s.sync.SaveOrder(ctx, order)
	if err != nil {
		return order, models.Delivery{}, err
	}

	delivery, err := s.ensureDelivery(ctx, order)
	if err != nil {
		return order, delivery, err
	}
	return order, delivery, nil
}

// RequestEdit 审核退回：submitted → edit_requested，开单员可重新修改
func (s *OrderService) RequestEdit(ctx context.Context, orderID string) (models.Order, error) {
	return s.moveTo(ctx, orderID, constants.OrderStatusEditRequested)
}

// Approve 审核通过：submitted → approved
func (s *OrderService) Approve(ctx context.Context, orderID string) (models.Order, error) {
	return s.moveTo(ctx, orderID, constants.OrderStatusApproved)
}

// Cancel 取消订单（终态前任意状态可取消）
func (s *OrderService) Cancel(ctx context.Context, orderID string) (models.Order, error) {
	return s.moveTo(ctx, orderID, constants.OrderStatusCanceled)
}

// Get 按 ID 读取订单
func (s *OrderService) Get(orderID string) (models.Order, error) {
	return s.findOrder(orderID)
}

func (s *OrderService) moveTo(ctx context.Context, orderID, target string) (models.Order, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.transition(&order, target); err != nil {
		return order, err
	}
	order.UpdatedAt = models.Now()
	return s.sync.SaveOrder(ctx, order)
}

func (s *OrderService) transition(order *models.Order, target string) error {
	for _, allowed := range allowedOrderTransitions[order.Status] {
		if allowed == target {
			order.Status = target
			return nil
		}
	}
	return ErrOrderStatusInvalid
}

// ensureDelivery 为已提交订单生成配送单，已存在则复用（幂等）
func (s *OrderService) ensureDelivery(ctx context.Context, order models.Order) (models.Delivery, error) {
	deliveries, err := replica.GetList[models.Delivery](s.replica, constants.CollectionDeliveries)
	if err != nil {
		return models.Delivery{}, err
	}
	for _, existing := range deliveries {
		if existing.OrderID == order.ID {
			return existing, nil
		}
	}

	now := models.Now()
	items := make([]models.DeliveryItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.DeliveryItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			FinalAmount: item.FinalAmount,
		})
	}
	delivery := models.Delivery{
		ID:               uuid.NewString(),
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		ShopID:           order.ShopID,
		ShopName:         order.ShopName,
		BookerID:         order.BookerID,
		RegionID:         order.RegionID,
		BranchID:         order.BranchID,
		Status:           constants.DeliveryStatusAssigned,
		Items:            items,
		TotalAmount:      order.GrandTotal,
		PaidAmount:       models.MoneyZero(),
		RemainingBalance: order.GrandTotal,
		PaymentStatus:    constants.PaymentStatusUnpaid,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if delivery.TotalAmount.Decimal.IsZero() {
		delivery.PaymentStatus = constants.PaymentStatusPaid
	}
	return s.sync.SaveDelivery(ctx, delivery)
}

func (s *OrderService) findOrder(orderID string) (models.Order, error) {
	orders, err := replica.GetList[models.Order](s.replica, constants.CollectionOrders)
	if err != nil {
		return models.Order{}, err
	}
	for _, order := range orders {
		if order.ID == orderID {
			return order, nil
		}
	}
	return models.Order{}, ErrOrderNotFound
}

func validateDraftInput(input OrderDraftInput) error {
	if strings.TrimSpace(input.ShopID) == "" {
		return ErrMissingPartyID
	}
	if strings.TrimSpace(input.RegionID) == "" {
		return ErrMissingRegionID
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 {
			return ErrInvalidOrderItem
		}
		if item.UnitPrice.Decimal.IsNegative() {
			return ErrInvalidOrderItem
		}
		if item.DiscountPercent < 0 || item.DiscountPercent > 100 {
			return ErrInvalidOrderItem
		}
	}
	return nil
}

// applyDraftInput 覆盖订单内容并重算金额拆分
func applyDraftInput(order *models.Order, input OrderDraftInput, limits DiscountLimits, discount *DiscountService, now models.Timestamp) {
	order.ShopID = input.ShopID
	order.ShopName = input.ShopName
	order.BookerID = input.BookerID
	order.RegionID = input.RegionID
	order.BranchID = input.BranchID
	order.PaymentMode = input.PaymentMode
	order.UpdatedAt = now

	order.Items = make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercent:    item.DiscountPercent,
			MaxAllowedDiscount: item.ProductMaxPercent,
		})
	}
	split := discount.Authorize(discountInputs(order.Items), limits)
	applySplit(order, split)
}

func discountInputs(items []models.OrderItem) []DiscountLineInput {
	inputs := make([]DiscountLineInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, DiscountLineInput{
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			DiscountPercent:   item.DiscountPercent,
			ProductMaxPercent: item.MaxAllowedDiscount,
		})
	}
	return inputs
}

// applySplit 将折扣授权拆分写回订单行与订单头
func applySplit(order *models.Order, split DiscountOrderSplit) {
	for i := range order.Items {
		line := split.Lines[i]
		order.Items[i].LineTotal = line.LineTotal
		order.Items[i].DiscountAmount = line.DiscountAmount
		order.Items[i].FinalAmount = line.FinalAmount
		order.Items[i].MaxAllowedDiscount = line.EffectiveMaxPercent
		order.Items[i].UnauthorizedAmount = line.Unauthorized
	}
	order.Subtotal = split.Subtotal
	order.TotalDiscount = split.TotalDiscount
	order.AllowedDiscount = split.Allowed
	order.UnauthorizedDiscount = split.Unauthorized
	order.GrandTotal = models.NewMoneyFromDecimal(split.Subtotal.Decimal.Sub(split.TotalDiscount.Decimal))
}

func newOrderNumber(at models.Timestamp) string {
	return fmt.Sprintf("SO-%s-%s", at.Time().Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}
