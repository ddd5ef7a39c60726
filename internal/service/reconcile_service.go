package service

import (
	"context"
	"sort"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/remote"
	"github.com/fieldops-next/internal/replica"
)

// ReconcileService 本地/远端快照合并。每次读取集合时运行，
// 产出唯一权威列表并回写本地缓存；远端不可达时直接退化为本地快照。
type ReconcileService struct {
	remote  remote.Store
	replica replica.Store
}

// NewReconcileService 创建合并服务
func NewReconcileService(remoteStore remote.Store, replicaStore replica.Store) *ReconcileService {
	return &ReconcileService{
		remote:  remoteStore,
		replica: replicaStore,
	}
}

// Scope 调用方授权范围。区域为空表示不过滤。
type Scope struct {
	RegionID string
}

// mergeRule 实体合并规则
type mergeRule[T any] struct {
	id          func(T) string
	updatedAt   func(T) models.Timestamp
	terminal    func(T) bool
	businessKey func(T) string // 为空表示不做业务键去重
}

// Orders 合并订单集合
func (s *ReconcileService) Orders(ctx context.Context, scope Scope) ([]models.Order, error) {
	rule := mergeRule[models.Order]{
		id:        func(o models.Order) string { return o.ID },
		updatedAt: func(o models.Order) models.Timestamp { return o.UpdatedAt },
		terminal: func(o models.Order) bool {
			return o.Status == constants.OrderStatusDelivered || o.Status == constants.OrderStatusCanceled
		},
	}
	merged, err := reconcileCollection(ctx, s, constants.CollectionOrders, rule)
	if err != nil {
		return nil, err
	}
	return filterByScope(merged, scope, func(o models.Order) string { return o.RegionID }), nil
}

// Deliveries 合并配送单集合。身份合并后按订单号去重，
// 同一订单只保留一条记录。
func (s *ReconcileService) Deliveries(ctx context.Context, scope Scope) ([]models.Delivery, error) {
	rule := mergeRule[models.Delivery]{
		id:          func(d models.Delivery) string { return d.ID },
		updatedAt:   func(d models.Delivery) models.Timestamp { return d.UpdatedAt },
		terminal:    func(d models.Delivery) bool { return d.IsTerminal() },
		businessKey: func(d models.Delivery) string { return d.OrderID },
	}
	merged, err := reconcileCollection(ctx, s, constants.CollectionDeliveries, rule)
	if err != nil {
		return nil, err
	}
	return filterByScope(merged, scope, func(d models.Delivery) string { return d.RegionID }), nil
}

// StockReturns 合并退货单集合
func (s *ReconcileService) StockReturns(ctx context.Context, scope Scope) ([]models.StockReturn, error) {
	rule := mergeRule[models.StockReturn]{
		id:        func(r models.StockReturn) string { return r.ID },
		updatedAt: func(r models.StockReturn) models.Timestamp { return r.UpdatedAt },
		terminal: func(r models.StockReturn) bool {
			return r.Status == constants.StockReturnStatusProcessed || r.Status == constants.StockReturnStatusRejected
		},
	}
	merged, err := reconcileCollection(ctx, s, constants.CollectionStockReturns, rule)
	if err != nil {
		return nil, err
	}
	return filterByScope(merged, scope, func(r models.StockReturn) string { return r.RegionID }), nil
}

// reconcileCollection 加载、合并并回写一个集合。
// 远端读取失败时退化为本地快照且不回写，陈旧优于不可用。
func reconcileCollection[T any](ctx context.Context, s *ReconcileService, collection string, rule mergeRule[T]) ([]T, error) {
	local, err := replica.GetList[T](s.replica, collection)
	if err != nil {
		return nil, err
	}

	remoteDocs, err := s.remote.Get(ctx, collection)
	if err != nil {
		logger.Warnw("reconcile_remote_unavailable", "collection", collection, "error", err)
		return local, nil
	}
	remoteList, err := models.DecodeList[T](remoteDocs)
	if err != nil {
		return nil, err
	}

	merged := mergeSnapshots(local, remoteList, rule)
	if err := replica.SetList(s.replica, collection, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// mergeSnapshots 两遍合并：先按 ID 做身份合并，再按业务键去重。
// 结果按 ID 排序，不依赖快照遍历顺序；对自身合并是恒等操作。
func mergeSnapshots[T any](local, remoteList []T, rule mergeRule[T]) []T {
	chosen := make(map[string]T, len(local)+len(remoteList))
	for _, entity := range remoteList {
		id := rule.id(entity)
		if id == "" {
			continue
		}
		chosen[id] = entity
	}
	for _, localEntity := range local {
		id := rule.id(localEntity)
		if id == "" {
			continue
		}
		remoteEntity, inRemote := chosen[id]
		if !inRemote {
			// 仅存在于本地：视为待同步，保留
			chosen[id] = localEntity
			continue
		}
		chosen[id] = pickNewer(localEntity, remoteEntity, rule)
	}

	merged := make([]T, 0, len(chosen))
	for _, entity := range chosen {
		merged = append(merged, entity)
	}
	sort.Slice(merged, func(i, j int) bool { return rule.id(merged[i]) < rule.id(merged[j]) })

	if rule.businessKey == nil {
		return merged
	}
	return dedupByBusinessKey(merged, rule)
}

// pickNewer 身份合并裁决：远端严格更新则取远端；
// 本地严格更新、或时间相同但本地已终态（已送达的配送单绝不能
// 被陈旧的远端读回退）则取本地。
func pickNewer[T any](localEntity, remoteEntity T, rule mergeRule[T]) T {
	localAt := rule.updatedAt(localEntity)
	remoteAt := rule.updatedAt(remoteEntity)
	if remoteAt.After(localAt) {
		return remoteEntity
	}
	if localAt.After(remoteAt) {
		return localEntity
	}
	if rule.terminal(localEntity) && !rule.terminal(remoteEntity) {
		return localEntity
	}
	if rule.terminal(remoteEntity) && !rule.terminal(localEntity) {
		return remoteEntity
	}
	return localEntity
}

// dedupByBusinessKey 每个业务键保留一条：取 updatedAt 最新的，
// 时间相同优先保留仍可操作（非终态）的记录。
func dedupByBusinessKey[T any](merged []T, rule mergeRule[T]) []T {
	byKey := make(map[string]T, len(merged))
	order := make([]string, 0, len(merged))
	for _, entity := range merged {
		key := rule.businessKey(entity)
		if key == "" {
			key = rule.id(entity)
		}
		existing, seen := byKey[key]
		if !seen {
			byKey[key] = entity
			order = append(order, key)
			continue
		}
		byKey[key] = pickActionable(existing, entity, rule)
	}

	result := make([]T, 0, len(byKey))
	for _, key := range order {
		result = append(result, byKey[key])
	}
	sort.Slice(result, func(i, j int) bool { return rule.id(result[i]) < rule.id(result[j]) })
	return result
}

func pickActionable[T any](a, b T, rule mergeRule[T]) T {
	aAt := rule.updatedAt(a)
	bAt := rule.updatedAt(b)
	if bAt.After(aAt) {
		return b
	}
	if aAt.After(bAt) {
		return a
	}
	if rule.terminal(a) && !rule.terminal(b) {
		return b
	}
	return a
}

func filterByScope[T any](list []T, scope Scope, regionOf func(T) string) []T {
	if scope.RegionID == "" {
		return list
	}
	filtered := make([]T, 0, len(list))
	for _, entity := range list {
		if regionOf(entity) == scope.RegionID {
			filtered = append(filtered, entity)
		}
	}
	return filtered
}
