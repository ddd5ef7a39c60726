package service

import (
	"context"
	"testing"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/remote"
	"github.com/fieldops-next/internal/replica"
)

type testEnv struct {
	remote      *remote.MemoryStore
	replica     replica.Store
	discount    *DiscountService
	reconcile   *ReconcileService
	ledger      *LedgerService
	sync        *SyncService
	payment     *PaymentService
	order       *OrderService
	stockReturn *StockReturnService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	replicaStore, err := replica.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open replica store: %v", err)
	}
	remoteStore := remote.NewMemoryStore()

	env := &testEnv{
		remote:   remoteStore,
		replica:  replicaStore,
		discount: NewDiscountService(),
	}
	env.reconcile = NewReconcileService(remoteStore, replicaStore)
	env.ledger = NewLedgerService(remoteStore, replicaStore)
	env.sync = NewSyncService(remoteStore, replicaStore)
	env.payment = NewPaymentService(replicaStore, env.sync, env.ledger)
	env.order = NewOrderService(replicaStore, env.sync, env.discount)
	env.stockReturn = NewStockReturnService(replicaStore, env.sync, env.ledger)
	return env
}

func (env *testEnv) seedDelivery(t *testing.T, delivery models.Delivery) {
	t.Helper()
	if err := upsertLocal(env.replica, constants.CollectionDeliveries, delivery,
		func(d models.Delivery) string { return d.ID }); err != nil {
		t.Fatalf("seed delivery: %v", err)
	}
}

func (env *testEnv) seedOrder(t *testing.T, order models.Order) {
	t.Helper()
	if err := upsertLocal(env.replica, constants.CollectionOrders, order,
		func(o models.Order) string { return o.ID }); err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func (env *testEnv) ledgerEntries(t *testing.T) []models.LedgerTransaction {
	t.Helper()
	docs, err := env.remote.Get(context.Background(), constants.CollectionLedger)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	entries, err := models.DecodeList[models.LedgerTransaction](docs)
	if err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	return entries
}

func (env *testEnv) ledgerByType(t *testing.T, ledgerType string) []models.LedgerTransaction {
	t.Helper()
	matched := make([]models.LedgerTransaction, 0)
	for _, entry := range env.ledgerEntries(t) {
		if entry.Type == ledgerType {
			matched = append(matched, entry)
		}
	}
	return matched
}

func makeDelivery(id, orderID string, total float64, status string) models.Delivery {
	now := models.Now()
	amount := models.NewMoney(total)
	paymentStatus := constants.PaymentStatusUnpaid
	if total == 0 {
		paymentStatus = constants.PaymentStatusPaid
	}
	return models.Delivery{
		ID:               id,
		OrderID:          orderID,
		ShopID:           "shop-1",
		ShopName:         "Test Shop",
		BookerID:         "booker-1",
		RegionID:         "region-1",
		Status:           status,
		TotalAmount:      amount,
		PaidAmount:       models.MoneyZero(),
		RemainingBalance: amount,
		PaymentStatus:    paymentStatus,
		CreatedAt:        now,
		UpdatedAt:        now,
		SyncStatus:       constants.SyncStatusSynced,
	}
}
