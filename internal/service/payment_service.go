package service

import (
	"context"
	"errors"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/replica"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService 收款状态机。收款记录只追加不修改，
// paid_amount 恒等于收款记录之和，状态由金额派生，不单独维护。
type PaymentService struct {
	replica replica.Store
	sync    *SyncService
	ledger  *LedgerService
}

// NewPaymentService 创建收款服务
func NewPaymentService(replicaStore replica.Store, syncService *SyncService, ledgerService *LedgerService) *PaymentService {
	return &PaymentService{
		replica: replicaStore,
		sync:    syncService,
		ledger:  ledgerService,
	}
}

// MarkDelivered 确认送达：状态置为 delivered，登记现场实收现金，
// 投递 SALE_DELIVERED 分录（无论是否收款），有实收再投 PAYMENT_COLLECTION，
// 有未收尾款则挂账 CREDIT_CREATED。
// 台账投递失败不回滚送达，返回 ErrLedgerDeferred 由后台补投。
func (s *PaymentService) MarkDelivered(ctx context.Context, deliveryID string, cash models.Money, collectedBy, signature string) (models.Delivery, error) {
	delivery, err := s.findDelivery(deliveryID)
	if err != nil {
		return models.Delivery{}, err
	}
	if delivery.IsTerminal() {
		return delivery, ErrDeliveryFinalized
	}
	if cash.Decimal.IsNegative() {
		return delivery, ErrInvalidAmount
	}
	if cash.Decimal.GreaterThan(delivery.TotalAmount.Decimal) {
		return delivery, ErrOverpayment
	}

	now := models.Now()
	// 送达固定登记一条初始收款记录，金额可为 0
	cashRecord := models.PaymentRecord{
		ID:          uuid.NewString(),
		Amount:      cash,
		PaidAt:      now,
		CollectedBy: collectedBy,
	}
	delivery.PaymentHistory = append(delivery.PaymentHistory, cashRecord)
	delivery.Status = constants.DeliveryStatusDelivered
	delivery.Signature = signature
	delivery.UpdatedAt = now
	recomputePayment(&delivery)

	delivery, err = s.sync.SaveDelivery(ctx, delivery)
	if err != nil {
		return delivery, err
	}

	order, orderErr := s.findOrder(delivery.OrderID)
	if orderErr != nil {
		// 订单快照缺失时退化为按配送单金额确认销售
		order = models.Order{ID: delivery.OrderID, Subtotal: delivery.TotalAmount}
	} else {
		order.Status = constants.OrderStatusDelivered
		order.UpdatedAt = now
		if order, err = s.sync.SaveOrder(ctx, order); err != nil {
			return delivery, err
		}
	}

	deferred := false
	if err := s.ledger.SaleDelivered(ctx, order, delivery, collectedBy); err != nil {
		if !errors.Is(err, ErrLedgerDeferred) {
			return delivery, err
		}
		deferred = true
	}
	if cash.Decimal.IsPositive() {
		if err := s.ledger.PaymentCollection(ctx, delivery, cashRecord); err != nil {
			if !errors.Is(err, ErrLedgerDeferred) {
				return delivery, err
			}
			deferred = true
		}
	}
	if delivery.RemainingBalance.Decimal.IsPositive() {
		if err := s.ledger.CreditCreated(ctx, delivery); err != nil {
			if !errors.Is(err, ErrLedgerDeferred) {
				return delivery, err
			}
			deferred = true
		}
	}
	if deferred {
		return delivery, ErrLedgerDeferred
	}
	return delivery, nil
}

// Collect 赊销回款：对已送达且仍有尾款的配送单追加收款记录，
// 投递 CREDIT_COLLECTED 分录。收款人即操作者，赊销归属人
// （原始开单员）随分录备注保留。
func (s *PaymentService) Collect(ctx context.Context, deliveryID string, amount models.Money, collectedBy, notes string) (models.Delivery, error) {
	if !amount.Decimal.IsPositive() {
		return models.Delivery{}, ErrInvalidAmount
	}
	delivery, err := s.findDelivery(deliveryID)
	if err != nil {
		return models.Delivery{}, err
	}
	if delivery.Status != constants.DeliveryStatusDelivered {
		return delivery, ErrOrderStatusInvalid
	}
	if amount.Decimal.GreaterThan(delivery.RemainingBalance.Decimal) {
		return delivery, ErrOverpayment
	}

	record := models.PaymentRecord{
		ID:          uuid.NewString(),
		Amount:      amount,
		PaidAt:      models.Now(),
		CollectedBy: collectedBy,
		Notes:       notes,
	}
	delivery.PaymentHistory = append(delivery.PaymentHistory, record)
	delivery.UpdatedAt = record.PaidAt
	recomputePayment(&delivery)

	delivery, err = s.sync.SaveDelivery(ctx, delivery)
	if err != nil {
		return delivery, err
	}
	if err := s.ledger.CreditCollected(ctx, delivery, record, delivery.BookerID); err != nil {
		return delivery, err
	}
	return delivery, nil
}

// Adjust 已付清配送单的冲正：追加带符号收款记录（退款为负），
// 投递 ADJUSTMENT 分录。仅允许从 PAID 状态发起。
func (s *PaymentService) Adjust(ctx context.Context, deliveryID string, delta models.Money, actor, notes string) (models.Delivery, error) {
	if delta.Decimal.IsZero() {
		return models.Delivery{}, ErrInvalidAmount
	}
	delivery, err := s.findDelivery(deliveryID)
	if err != nil {
		return models.Delivery{}, err
	}
	if delivery.PaymentStatus != constants.PaymentStatusPaid {
		return delivery, ErrAdjustRequiresPaid
	}
	adjusted := delivery.PaidAmount.Decimal.Add(delta.Decimal)
	if adjusted.IsNegative() || adjusted.GreaterThan(delivery.TotalAmount.Decimal) {
		return delivery, ErrOverpayment
	}

	record := models.PaymentRecord{
		ID:          uuid.NewString(),
		Amount:      delta,
		PaidAt:      models.Now(),
		CollectedBy: actor,
		Notes:       notes,
	}
	delivery.PaymentHistory = append(delivery.PaymentHistory, record)
	delivery.UpdatedAt = record.PaidAt
	recomputePayment(&delivery)

	delivery, err = s.sync.SaveDelivery(ctx, delivery)
	if err != nil {
		return delivery, err
	}
	if err := s.ledger.Adjustment(ctx, delivery, record); err != nil {
		return delivery, err
	}
	return delivery, nil
}

// recomputePayment 由收款记录派生金额与状态。
// 先判付清（含零金额订单），再判未付，其余为部分收款。
func recomputePayment(delivery *models.Delivery) {
	paid := decimal.Zero
	for _, record := range delivery.PaymentHistory {
		paid = paid.Add(record.Amount.Decimal)
	}
	delivery.PaidAmount = models.NewMoneyFromDecimal(paid)
	delivery.RemainingBalance = models.NewMoneyFromDecimal(delivery.TotalAmount.Decimal.Sub(paid))

	switch {
	case delivery.PaidAmount.Equals(delivery.TotalAmount):
		delivery.PaymentStatus = constants.PaymentStatusPaid
	case paid.IsZero():
		delivery.PaymentStatus = constants.PaymentStatusUnpaid
	default:
		delivery.PaymentStatus = constants.PaymentStatusPartial
	}
}

func (s *PaymentService) findDelivery(deliveryID string) (models.Delivery, error) {
	deliveries, err := replica.GetList[models.Delivery](s.replica, constants.CollectionDeliveries)
	if err != nil {
		return models.Delivery{}, err
	}
	for _, delivery := range deliveries {
		if delivery.ID == deliveryID {
			return delivery, nil
		}
	}
	return models.Delivery{}, ErrDeliveryNotFound
}

func (s *PaymentService) findOrder(orderID string) (models.Order, error) {
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
