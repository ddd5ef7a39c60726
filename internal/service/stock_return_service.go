package service

import (
	"context"
	"strings"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/replica"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockReturnService 退货审批流。业务员发起，KPO 审批，
// 审批通过即投递 RETURN 冲销分录并置为 processed。
type StockReturnService struct {
	replica replica.Store
	sync    *SyncService
	ledger  *LedgerService
}

// NewStockReturnService 创建退货服务
func NewStockReturnService(replicaStore replica.Store, syncService *SyncService, ledgerService *LedgerService) *StockReturnService {
	return &StockReturnService{
		replica: replicaStore,
		sync:    syncService,
		ledger:  ledgerService,
	}
}

// StockReturnInput 退货单创建输入
type StockReturnInput struct {
	ShopID   string
	ShopName string
	RegionID string
	BranchID string
	Reason   string
	Items    []StockReturnItemInput
}

// StockReturnItemInput 退货行输入
type StockReturnItemInput struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitValue   models.Money
}

// Create 创建退货单，进入待审批状态
func (s *StockReturnService) Create(ctx context.Context, input StockReturnInput, createdBy string) (models.StockReturn, error) {
	if strings.TrimSpace(input.ShopID) == "" {
		return models.StockReturn{}, ErrMissingPartyID
	}
	if strings.TrimSpace(input.RegionID) == "" {
		return models.StockReturn{}, ErrMissingRegionID
	}
	if len(input.Items) == 0 {
		return models.StockReturn{}, ErrInvalidOrderItem
	}

	total := decimal.Zero
	items := make([]models.StockReturnItem, 0, len(input.Items))
	for _, item := range input.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 || item.UnitValue.Decimal.IsNegative() {
			return models.StockReturn{}, ErrInvalidOrderItem
		}
		lineValue := item.UnitValue.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, models.StockReturnItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitValue:   item.UnitValue,
			LineValue:   models.NewMoneyFromDecimal(lineValue),
		})
		total = total.Add(lineValue)
	}

	now := models.Now()
	stockReturn := models.StockReturn{
		ID:         uuid.NewString(),
		ShopID:     input.ShopID,
		ShopName:   input.ShopName,
		RegionID:   input.RegionID,
		BranchID:   input.BranchID,
		Items:      items,
		TotalValue: models.NewMoneyFromDecimal(total),
		Reason:     input.Reason,
		Status:     constants.StockReturnStatusPendingApproval,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.sync.SaveStockReturn(ctx, stockReturn)
}

// Approve 审批通过：投递 RETURN 冲销分录，成功后置为 processed。
// 分录滞留时退货单停在 approved，由后台补投后的下一次审批推进。
func (s *StockReturnService) Approve(ctx context.Context, returnID, approvedBy string) (models.StockReturn, error) {
	stockReturn, err := s.find(returnID)
	if err != nil {
		return models.StockReturn{}, err
	}
	if stockReturn.Status != constants.StockReturnStatusPendingApproval &&
		stockReturn.Status != constants.StockReturnStatusApproved {
		return stockReturn, ErrReturnNotPending
	}

	stockReturn.Status = constants.StockReturnStatusApproved
	stockReturn.ApprovedBy = approvedBy
	stockReturn.UpdatedAt = models.Now()
	stockReturn, err = s.sync.SaveStockReturn(ctx, stockReturn)
	if err != nil {
		return stockReturn, err
	}

	if err := s.ledger.Return(ctx, stockReturn, approvedBy); err != nil {
		return stockReturn, err
	}

	stockReturn.Status = constants.StockReturnStatusProcessed
	stockReturn.UpdatedAt = models.Now()
	return s.sync.SaveStockReturn(ctx, stockReturn)
}

// Reject 审批驳回
func (s *StockReturnService) Reject(ctx context.Context, returnID, rejectedBy string) (models.StockReturn, error) {
	stockReturn, err := s.find(returnID)
	if err != nil {
		return models.StockReturn{}, err
	}
	if stockReturn.Status != constants.StockReturnStatusPendingApproval {
		return stockReturn, ErrReturnNotPending
	}
	stockReturn.Status = constants.StockReturnStatusRejected
	stockReturn.ApprovedBy = rejectedBy
	stockReturn.UpdatedAt = models.Now()
	return s.sync.SaveStockReturn(ctx, stockReturn)
}

func (s *StockReturnService) find(returnID string) (models.StockReturn, error) {
	list, err := replica.GetList[models.StockReturn](s.replica, constants.CollectionStockReturns)
	if err != nil {
		return models.StockReturn{}, err
	}
	for _, stockReturn := range list {
		if stockReturn.ID == returnID {
			return stockReturn, nil
		}
	}
	return models.StockReturn{}, ErrReturnNotFound
}
