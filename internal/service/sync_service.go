package service

import (
	"context"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/remote"
	"github.com/fieldops-next/internal/replica"
)

// SyncService 本地优先写入编排。业务写入先落本地快照（必须成功），
// 随后尽力推送远端；远端不可达时记录 pending，由后台扫描补推。
type SyncService struct {
	remote  remote.Store
	replica replica.Store
}

// NewSyncService 创建同步服务
func NewSyncService(remoteStore remote.Store, replicaStore replica.Store) *SyncService {
	return &SyncService{
		remote:  remoteStore,
		replica: replicaStore,
	}
}

// SaveOrder 保存订单（本地必达，远端尽力）
func (s *SyncService) SaveOrder(ctx context.Context, order models.Order) (models.Order, error) {
	order.SyncStatus = constants.SyncStatusSynced
	synced, err := saveEntity(ctx, s, constants.CollectionOrders, order,
		func(o models.Order) string { return o.ID },
		func(o models.Order, status string) models.Order { o.SyncStatus = status; return o })
	return synced, err
}

// SaveDelivery 保存配送单（本地必达，远端尽力）
func (s *SyncService) SaveDelivery(ctx context.Context, delivery models.Delivery) (models.Delivery, error) {
	delivery.SyncStatus = constants.SyncStatusSynced
	synced, err := saveEntity(ctx, s, constants.CollectionDeliveries, delivery,
		func(d models.Delivery) string { return d.ID },
		func(d models.Delivery, status string) models.Delivery { d.SyncStatus = status; return d })
	return synced, err
}

// SaveStockReturn 保存退货单（本地必达，远端尽力）
func (s *SyncService) SaveStockReturn(ctx context.Context, stockReturn models.StockReturn) (models.StockReturn, error) {
	stockReturn.SyncStatus = constants.SyncStatusSynced
	synced, err := saveEntity(ctx, s, constants.CollectionStockReturns, stockReturn,
		func(r models.StockReturn) string { return r.ID },
		func(r models.StockReturn, status string) models.StockReturn { r.SyncStatus = status; return r })
	return synced, err
}

// SweepPending 扫描三个集合中 sync_status=pending 的记录并补推远端。
// 返回补推成功条数。
func (s *SyncService) SweepPending(ctx context.Context) (int, error) {
	pushed := 0

	n, err := sweepCollection(ctx, s, constants.CollectionOrders,
		func(o models.Order) string { return o.ID },
		func(o models.Order) string { return o.SyncStatus },
		func(o models.Order, status string) models.Order { o.SyncStatus = status; return o })
	if err != nil {
		return pushed, err
	}
	pushed += n

	n, err = sweepCollection(ctx, s, constants.CollectionDeliveries,
		func(d models.Delivery) string { return d.ID },
		func(d models.Delivery) string { return d.SyncStatus },
		func(d models.Delivery, status string) models.Delivery { d.SyncStatus = status; return d })
	if err != nil {
		return pushed, err
	}
	pushed += n

	n, err = sweepCollection(ctx, s, constants.CollectionStockReturns,
		func(r models.StockReturn) string { return r.ID },
		func(r models.StockReturn) string { return r.SyncStatus },
		func(r models.StockReturn, status string) models.StockReturn { r.SyncStatus = status; return r })
	if err != nil {
		return pushed, err
	}
	pushed += n

	if pushed > 0 {
		logger.Infow("sync_sweep_pushed", "count", pushed)
	}
	return pushed, nil
}

// saveEntity 本地 upsert 后尽力推送远端。远端失败只降级同步状态，不报错。
func saveEntity[T any](ctx context.Context, s *SyncService, collection string, entity T,
	idOf func(T) string, withStatus func(T, string) T) (T, error) {
	pushed := entity
	doc, err := models.ToDoc(entity)
	if err != nil {
		return entity, err
	}
	if err := s.remote.Set(ctx, collection, idOf(entity), doc); err != nil {
		logger.Warnw("remote_push_deferred", "collection", collection, "id", idOf(entity), "error", err)
		pushed = withStatus(entity, constants.SyncStatusPending)
	}

	if err := upsertLocal(s.replica, collection, pushed, idOf); err != nil {
		return pushed, err
	}
	return pushed, nil
}

func upsertLocal[T any](store replica.Store, collection string, entity T, idOf func(T) string) error {
	list, err := replica.GetList[T](store, collection)
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if idOf(list[i]) == idOf(entity) {
			list[i] = entity
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, entity)
	}
	return replica.SetList(store, collection, list)
}

func sweepCollection[T any](ctx context.Context, s *SyncService, collection string,
	idOf func(T) string, statusOf func(T) string, withStatus func(T, string) T) (int, error) {
	list, err := replica.GetList[T](s.replica, collection)
	if err != nil {
		return 0, err
	}
	pushed := 0
	dirty := false
	for i := range list {
		if statusOf(list[i]) != constants.SyncStatusPending {
			continue
		}
		candidate := withStatus(list[i], constants.SyncStatusSynced)
		doc, err := models.ToDoc(candidate)
		if err != nil {
			return pushed, err
		}
		if err := s.remote.Set(ctx, collection, idOf(candidate), doc); err != nil {
			continue
		}
		list[i] = candidate
		pushed++
		dirty = true
	}
	if dirty {
		if err := replica.SetList(s.replica, collection, list); err != nil {
			return pushed, err
		}
	}
	return pushed, nil
}
