package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/replica"
)

func (env *testEnv) pushRemoteDelivery(t *testing.T, delivery models.Delivery) {
	t.Helper()
	doc, err := models.ToDoc(delivery)
	if err != nil {
		t.Fatalf("encode delivery: %v", err)
	}
	if err := env.remote.Set(context.Background(), constants.CollectionDeliveries, delivery.ID, doc); err != nil {
		t.Fatalf("push delivery: %v", err)
	}
}

func TestReconcileMergeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	delivery := makeDelivery("d1", "o1", 500, constants.DeliveryStatusAssigned)
	env.seedDelivery(t, delivery)
	env.pushRemoteDelivery(t, delivery)

	merged, err := env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("merged = %d, want 1", len(merged))
	}

	// 再跑一轮结果不变
	again, err := env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile again: %v", err)
	}
	if len(again) != 1 || again[0].ID != "d1" {
		t.Fatalf("second pass diverged: %+v", again)
	}
}

func TestReconcileNewerTimestampWins(t *testing.T) {
	env := newTestEnv(t)
	local := makeDelivery("d1", "o1", 500, constants.DeliveryStatusAssigned)
	local.UpdatedAt = models.Timestamp(1000)
	remoteCopy := local
	remoteCopy.Status = constants.DeliveryStatusInTransit
	remoteCopy.UpdatedAt = models.Timestamp(2000)

	env.seedDelivery(t, local)
	env.pushRemoteDelivery(t, remoteCopy)

	merged, err := env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if merged[0].Status != constants.DeliveryStatusInTransit {
		t.Fatalf("status = %s, want in_transit (remote newer)", merged[0].Status)
	}

	// 反向：本地更新时保留本地
	local.Status = constants.DeliveryStatusDelivered
	local.UpdatedAt = models.Timestamp(3000)
	env.seedDelivery(t, local)
	merged, err = env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if merged[0].Status != constants.DeliveryStatusDelivered {
		t.Fatalf("status = %s, want delivered (local newer)", merged[0].Status)
	}
}

func TestReconcileNeverRegressesTerminalStatus(t *testing.T) {
	env := newTestEnv(t)
	local := makeDelivery("d1", "o1", 500, constants.DeliveryStatusDelivered)
	local.UpdatedAt = models.Timestamp(5000)
	stale := local
	stale.Status = constants.DeliveryStatusInTransit
	stale.UpdatedAt = models.Timestamp(5000)

	env.seedDelivery(t, local)
	env.pushRemoteDelivery(t, stale)

	merged, err := env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if merged[0].Status != constants.DeliveryStatusDelivered {
		t.Fatalf("status = %s, delivered must not regress", merged[0].Status)
	}
}

func TestReconcileKeepsLocalOnlyPending(t *testing.T) {
	env := newTestEnv(t)
	pending := makeDelivery("d-local", "o-local", 300, constants.DeliveryStatusAssigned)
	pending.SyncStatus = constants.SyncStatusPending
	env.seedDelivery(t, pending)
	env.pushRemoteDelivery(t, makeDelivery("d-remote", "o-remote", 700, constants.DeliveryStatusAssigned))

	merged, err := env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged = %d, want 2 (local-only kept, remote-only adopted)", len(merged))
	}
}

func TestReconcileDedupsByOrder(t *testing.T) {
	env := newTestEnv(t)
	older := makeDelivery("d1", "o1", 500, constants.DeliveryStatusAssigned)
	older.UpdatedAt = models.Timestamp(1000)
	newer := makeDelivery("d2", "o1", 500, constants.DeliveryStatusInTransit)
	newer.UpdatedAt = models.Timestamp(2000)

	env.pushRemoteDelivery(t, older)
	env.pushRemoteDelivery(t, newer)

	merged, err := env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("merged = %d, want 1 after order dedup", len(merged))
	}
	if merged[0].ID != "d2" {
		t.Fatalf("kept = %s, want d2 (newer)", merged[0].ID)
	}
}

func TestReconcileFallsBackToLocalWhenRemoteDown(t *testing.T) {
	env := newTestEnv(t)
	local := makeDelivery("d1", "o1", 500, constants.DeliveryStatusAssigned)
	env.seedDelivery(t, local)
	env.remote.SetFail(errors.New("network down"))

	merged, err := env.reconcile.Deliveries(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("reconcile should degrade, got %v", err)
	}
	if len(merged) != 1 || merged[0].ID != "d1" {
		t.Fatalf("fallback = %+v, want local snapshot", merged)
	}
}

func TestReconcileFiltersByRegionScope(t *testing.T) {
	env := newTestEnv(t)
	north := makeDelivery("d1", "o1", 500, constants.DeliveryStatusAssigned)
	north.RegionID = "region-north"
	south := makeDelivery("d2", "o2", 700, constants.DeliveryStatusAssigned)
	south.RegionID = "region-south"
	env.pushRemoteDelivery(t, north)
	env.pushRemoteDelivery(t, south)

	merged, err := env.reconcile.Deliveries(context.Background(), Scope{RegionID: "region-north"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(merged) != 1 || merged[0].ID != "d1" {
		t.Fatalf("scoped = %+v, want only region-north", merged)
	}

	// 过滤只作用于返回值，缓存的是全量合并结果
	cached, err := replica.GetList[models.Delivery](env.replica, constants.CollectionDeliveries)
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("cached = %d, want 2", len(cached))
	}
}
