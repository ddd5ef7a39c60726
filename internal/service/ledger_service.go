package service

import (
	"context"
	"strings"

	"github.com/fieldops-next/internal/cache"
	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/remote"
	"github.com/fieldops-next/internal/replica"

	"github.com/google/uuid"
)

// LedgerService 财务台账投递。分录不可变、只增不改，
// 每笔分录按业务自然键做幂等投递：同一业务事件重放任意次，
// 远端至多出现一条分录。
type LedgerService struct {
	remote  remote.Store
	replica replica.Store
}

// NewLedgerService 创建台账服务
func NewLedgerService(remoteStore remote.Store, replicaStore replica.Store) *LedgerService {
	return &LedgerService{
		remote:  remoteStore,
		replica: replicaStore,
	}
}

// SaleDelivered 送达即确认销售。net_cash 恒等于毛额减实际折扣（应计口径），
// 实收现金单独走 PAYMENT_COLLECTION，未收尾款走 CREDIT_CREATED。
func (s *LedgerService) SaleDelivered(ctx context.Context, order models.Order, delivery models.Delivery, actor string) error {
	txn := models.LedgerTransaction{
		ID:                   uuid.NewString(),
		Type:                 constants.LedgerTypeSaleDelivered,
		OrderID:              delivery.OrderID,
		PartyID:              delivery.ShopID,
		PartyName:            delivery.ShopName,
		RegionID:             delivery.RegionID,
		BranchID:             delivery.BranchID,
		GrossAmount:          order.Subtotal,
		DiscountAllowed:      order.AllowedDiscount,
		DiscountGiven:        order.TotalDiscount,
		UnauthorizedDiscount: order.UnauthorizedDiscount,
		NetCash:              models.NewMoneyFromDecimal(order.Subtotal.Decimal.Sub(order.TotalDiscount.Decimal)),
		CreatedBy:            actor,
		CreatedAt:            models.Now(),
	}
	return s.post(ctx, txn)
}

// PaymentCollection 送达现场收款。net_cash 为正的实收现金。
func (s *LedgerService) PaymentCollection(ctx context.Context, delivery models.Delivery, payment models.PaymentRecord) error {
	txn := models.LedgerTransaction{
		ID:        uuid.NewString(),
		Type:      constants.LedgerTypePaymentCollection,
		OrderID:   delivery.OrderID,
		RefID:     payment.ID,
		PartyID:   delivery.ShopID,
		PartyName: delivery.ShopName,
		RegionID:  delivery.RegionID,
		BranchID:  delivery.BranchID,
		NetCash:   payment.Amount,
		CreatedBy: payment.CollectedBy,
		Notes:     payment.Notes,
		CreatedAt: models.Now(),
	}
	return s.post(ctx, txn)
}

// CreditCreated 送达后未收齐的尾款挂账。net_cash 为负的未收余额，
// 赊销归属（原始开单员）记入 created_by。
func (s *LedgerService) CreditCreated(ctx context.Context, delivery models.Delivery) error {
	txn := models.LedgerTransaction{
		ID:        uuid.NewString(),
		Type:      constants.LedgerTypeCreditCreated,
		OrderID:   delivery.OrderID,
		PartyID:   delivery.ShopID,
		PartyName: delivery.ShopName,
		RegionID:  delivery.RegionID,
		BranchID:  delivery.BranchID,
		NetCash:   models.NewMoneyFromDecimal(delivery.RemainingBalance.Decimal.Neg()),
		CreatedBy: delivery.BookerID,
		CreatedAt: models.Now(),
	}
	return s.post(ctx, txn)
}

// CreditCollected 赊销后续收款。收款人是现场操作者，
// 赊销归属人保留在备注中供提成核算。
func (s *LedgerService) CreditCollected(ctx context.Context, delivery models.Delivery, payment models.PaymentRecord, creditOwner string) error {
	notes := payment.Notes
	if creditOwner != "" {
		attribution := "credit_owner=" + creditOwner
		if notes != "" {
			notes = notes + "; " + attribution
		} else {
			notes = attribution
		}
	}
	txn := models.LedgerTransaction{
		ID:        uuid.NewString(),
		Type:      constants.LedgerTypeCreditCollected,
		OrderID:   delivery.OrderID,
		RefID:     payment.ID,
		PartyID:   delivery.ShopID,
		PartyName: delivery.ShopName,
		RegionID:  delivery.RegionID,
		BranchID:  delivery.BranchID,
		NetCash:   payment.Amount,
		CreatedBy: payment.CollectedBy,
		Notes:     notes,
		CreatedAt: models.Now(),
	}
	return s.post(ctx, txn)
}

// Adjustment 已付清配送单的冲正。net_cash 带符号（退款为负）。
func (s *LedgerService) Adjustment(ctx context.Context, delivery models.Delivery, adjustment models.PaymentRecord) error {
	txn := models.LedgerTransaction{
		ID:        uuid.NewString(),
		Type:      constants.LedgerTypeAdjustment,
		OrderID:   delivery.OrderID,
		RefID:     adjustment.ID,
		PartyID:   delivery.ShopID,
		PartyName: delivery.ShopName,
		RegionID:  delivery.RegionID,
		BranchID:  delivery.BranchID,
		NetCash:   adjustment.Amount,
		CreatedBy: adjustment.CollectedBy,
		Notes:     adjustment.Notes,
		CreatedAt: models.Now(),
	}
	return s.post(ctx, txn)
}

// Return 退货审批通过后的冲销分录。net_cash 为负的退货金额。
func (s *LedgerService) Return(ctx context.Context, stockReturn models.StockReturn, actor string) error {
	txn := models.LedgerTransaction{
		ID:        uuid.NewString(),
		Type:      constants.LedgerTypeReturn,
		ReturnID:  stockReturn.ID,
		PartyID:   stockReturn.ShopID,
		PartyName: stockReturn.ShopName,
		RegionID:  stockReturn.RegionID,
		BranchID:  stockReturn.BranchID,
		NetCash:   models.NewMoneyFromDecimal(stockReturn.TotalValue.Decimal.Neg()),
		CreatedBy: actor,
		Notes:     stockReturn.Reason,
		CreatedAt: models.Now(),
	}
	return s.post(ctx, txn)
}

// RetryPending 重放滞留队列中的分录。逐条投递，
// 成功与重复视为完成，远端仍不可达的留在队列等下一轮。
func (s *LedgerService) RetryPending(ctx context.Context) (int, error) {
	pending, err := replica.GetList[models.LedgerTransaction](s.replica, constants.SnapshotPendingLedger)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	posted := 0
	remaining := make([]models.LedgerTransaction, 0, len(pending))
	for _, txn := range pending {
		if err := s.postRemote(ctx, txn); err != nil {
			remaining = append(remaining, txn)
			continue
		}
		posted++
	}
	if err := replica.SetList(s.replica, constants.SnapshotPendingLedger, remaining); err != nil {
		return posted, err
	}
	if posted > 0 {
		logger.Infow("ledger_retry_drained", "posted", posted, "remaining", len(remaining))
	}
	return posted, nil
}

// PendingCount 返回滞留分录数量
func (s *LedgerService) PendingCount() (int, error) {
	pending, err := replica.GetList[models.LedgerTransaction](s.replica, constants.SnapshotPendingLedger)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// post 幂等投递一笔分录：校验、抢占投递守卫、查重、写入。
// 远端不可达时滞留本地队列并返回 ErrLedgerDeferred，
// 调用方据此决定本地操作是否继续生效。
func (s *LedgerService) post(ctx context.Context, txn models.LedgerTransaction) error {
	if err := validateTransaction(txn); err != nil {
		return err
	}

	guardKey := naturalKey(txn)
	acquired, err := cache.AcquirePostingGuard(ctx, guardKey)
	if err != nil {
		// 守卫不可用不阻断投递，远端查重独立兜底
		logger.Warnw("ledger_guard_unavailable", "key", guardKey, "error", err)
		acquired = true
	}
	if !acquired {
		return ErrPostingInProgress
	}

	if err := s.postRemote(ctx, txn); err != nil {
		if releaseErr := cache.ReleasePostingGuard(ctx, guardKey); releaseErr != nil {
			logger.Warnw("ledger_guard_release_failed", "key", guardKey, "error", releaseErr)
		}
		return s.park(txn, err)
	}
	return nil
}

// postRemote 执行查重加写入。已存在同业务键分录视为成功。
func (s *LedgerService) postRemote(ctx context.Context, txn models.LedgerTransaction) error {
	field, value := naturalKeyField(txn)
	existing, err := s.remote.GetWhere(ctx, constants.CollectionLedger, field, remote.OpEqual, value)
	if err != nil {
		return err
	}
	for _, doc := range existing {
		var found models.LedgerTransaction
		if err := models.FromDoc(doc, &found); err != nil {
			continue
		}
		if found.Type == txn.Type {
			logger.Infow("ledger_duplicate_skipped", "type", txn.Type, "key", value)
			return nil
		}
	}

	doc, err := models.ToDoc(txn)
	if err != nil {
		return err
	}
	if err := s.remote.Set(ctx, constants.CollectionLedger, txn.ID, doc); err != nil {
		return err
	}
	logger.Infow("ledger_posted", "type", txn.Type, "id", txn.ID, "net_cash", txn.NetCash.String())
	return nil
}

// park 将投递失败的分录滞留到本地队列
func (s *LedgerService) park(txn models.LedgerTransaction, cause error) error {
	pending, err := replica.GetList[models.LedgerTransaction](s.replica, constants.SnapshotPendingLedger)
	if err != nil {
		return err
	}
	for _, queued := range pending {
		if sameNaturalKey(queued, txn) {
			return ErrLedgerDeferred
		}
	}
	pending = append(pending, txn)
	if err := replica.SetList(s.replica, constants.SnapshotPendingLedger, pending); err != nil {
		return err
	}
	logger.Warnw("ledger_deferred", "type", txn.Type, "id", txn.ID, "cause", cause)
	return ErrLedgerDeferred
}

func validateTransaction(txn models.LedgerTransaction) error {
	if strings.TrimSpace(txn.PartyID) == "" {
		return ErrMissingPartyID
	}
	if strings.TrimSpace(txn.RegionID) == "" {
		return ErrMissingRegionID
	}
	switch txn.Type {
	case constants.LedgerTypeSaleDelivered, constants.LedgerTypeCreditCreated:
		if strings.TrimSpace(txn.OrderID) == "" {
			return ErrMissingOrderID
		}
	case constants.LedgerTypeReturn:
		if strings.TrimSpace(txn.ReturnID) == "" {
			return ErrMissingReturnID
		}
	default:
		if strings.TrimSpace(txn.RefID) == "" {
			return ErrMissingRefID
		}
	}
	if txn.Type != constants.LedgerTypeSaleDelivered && txn.NetCash.Decimal.IsZero() {
		return ErrInvalidAmount
	}
	return nil
}

// naturalKeyField 返回查重用的业务键字段。
// 订单级分录按 order_id，退货按 return_id，记录级分录按 ref_id。
func naturalKeyField(txn models.LedgerTransaction) (string, string) {
	switch txn.Type {
	case constants.LedgerTypeSaleDelivered, constants.LedgerTypeCreditCreated:
		return "order_id", txn.OrderID
	case constants.LedgerTypeReturn:
		return "return_id", txn.ReturnID
	default:
		return "ref_id", txn.RefID
	}
}

func naturalKey(txn models.LedgerTransaction) string {
	_, value := naturalKeyField(txn)
	return txn.Type + ":" + value
}

func sameNaturalKey(a, b models.LedgerTransaction) bool {
	return naturalKey(a) == naturalKey(b)
}
