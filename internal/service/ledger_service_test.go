package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/models"
)

func TestSaleDeliveredPostsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	delivery := makeDelivery("d1", "o1", 1000, constants.DeliveryStatusDelivered)
	order := models.Order{
		ID:            "o1",
		Subtotal:      models.NewMoney(1000),
		TotalDiscount: models.NewMoney(100),
	}

	if err := env.ledger.SaleDelivered(ctx, order, delivery, "salesman-1"); err != nil {
		t.Fatalf("first post: %v", err)
	}
	if err := env.ledger.SaleDelivered(ctx, order, delivery, "salesman-1"); err != nil {
		t.Fatalf("second post: %v", err)
	}

	entries := env.ledgerByType(t, constants.LedgerTypeSaleDelivered)
	if len(entries) != 1 {
		t.Fatalf("sale entries = %d, want 1", len(entries))
	}
	// net_cash 恒等于毛额减实际折扣
	if got := entries[0].NetCash.String(); got != "900.00" {
		t.Fatalf("sale net cash = %s, want 900.00", got)
	}
}

func TestPaymentCollectionKeyedByRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	delivery := makeDelivery("d1", "o1", 1000, constants.DeliveryStatusDelivered)

	first := models.PaymentRecord{ID: "pay-1", Amount: models.NewMoney(600), CollectedBy: "salesman-1"}
	second := models.PaymentRecord{ID: "pay-2", Amount: models.NewMoney(400), CollectedBy: "salesman-1"}

	if err := env.ledger.PaymentCollection(ctx, delivery, first); err != nil {
		t.Fatalf("post first: %v", err)
	}
	// 同一收款记录重放不产生第二条分录
	if err := env.ledger.PaymentCollection(ctx, delivery, first); err != nil {
		t.Fatalf("replay first: %v", err)
	}
	if err := env.ledger.PaymentCollection(ctx, delivery, second); err != nil {
		t.Fatalf("post second: %v", err)
	}

	entries := env.ledgerByType(t, constants.LedgerTypePaymentCollection)
	if len(entries) != 2 {
		t.Fatalf("collection entries = %d, want 2", len(entries))
	}
}

func TestPostDeferredAndRetried(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	delivery := makeDelivery("d1", "o1", 500, constants.DeliveryStatusDelivered)
	record := models.PaymentRecord{ID: "pay-1", Amount: models.NewMoney(500), CollectedBy: "salesman-1"}

	env.remote.SetFail(errors.New("network down"))
	err := env.ledger.PaymentCollection(ctx, delivery, record)
	if !errors.Is(err, ErrLedgerDeferred) {
		t.Fatalf("err = %v, want ErrLedgerDeferred", err)
	}
	count, err := env.ledger.PendingCount()
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 1 {
		t.Fatalf("pending = %d, want 1", count)
	}

	env.remote.SetFail(nil)
	posted, err := env.ledger.RetryPending(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if posted != 1 {
		t.Fatalf("posted = %d, want 1", posted)
	}
	count, _ = env.ledger.PendingCount()
	if count != 0 {
		t.Fatalf("pending after retry = %d, want 0", count)
	}
	if entries := env.ledgerByType(t, constants.LedgerTypePaymentCollection); len(entries) != 1 {
		t.Fatalf("collection entries = %d, want 1", len(entries))
	}
}

func TestPostValidationRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	delivery := makeDelivery("d1", "o1", 500, constants.DeliveryStatusDelivered)
	delivery.ShopID = ""
	record := models.PaymentRecord{ID: "pay-1", Amount: models.NewMoney(500)}
	if err := env.ledger.PaymentCollection(ctx, delivery, record); !errors.Is(err, ErrMissingPartyID) {
		t.Fatalf("err = %v, want ErrMissingPartyID", err)
	}

	delivery = makeDelivery("d2", "o2", 500, constants.DeliveryStatusDelivered)
	record = models.PaymentRecord{ID: "", Amount: models.NewMoney(500)}
	if err := env.ledger.PaymentCollection(ctx, delivery, record); !errors.Is(err, ErrMissingRefID) {
		t.Fatalf("err = %v, want ErrMissingRefID", err)
	}

	delivery = makeDelivery("d3", "o3", 500, constants.DeliveryStatusDelivered)
	record = models.PaymentRecord{ID: "pay-3", Amount: models.MoneyZero()}
	if err := env.ledger.PaymentCollection(ctx, delivery, record); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}

	if entries := env.ledgerEntries(t); len(entries) != 0 {
		t.Fatalf("ledger entries = %d, want 0", len(entries))
	}
}

func TestReturnPostsNegativeNetCash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stockReturn := models.StockReturn{
		ID:         "r1",
		ShopID:     "shop-1",
		RegionID:   "region-1",
		TotalValue: models.NewMoney(250),
		Status:     constants.StockReturnStatusApproved,
	}

	if err := env.ledger.Return(ctx, stockReturn, "kpo-1"); err != nil {
		t.Fatalf("post return: %v", err)
	}

	entries := env.ledgerByType(t, constants.LedgerTypeReturn)
	if len(entries) != 1 {
		t.Fatalf("return entries = %d, want 1", len(entries))
	}
	if got := entries[0].NetCash.String(); got != "-250.00" {
		t.Fatalf("net cash = %s, want -250.00", got)
	}
	if entries[0].ReturnID != "r1" {
		t.Fatalf("return id = %q, want r1", entries[0].ReturnID)
	}
}

func TestCreditCollectedKeepsAttribution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	delivery := makeDelivery("d1", "o1", 1000, constants.DeliveryStatusDelivered)
	record := models.PaymentRecord{ID: "pay-1", Amount: models.NewMoney(400), CollectedBy: "salesman-9"}

	if err := env.ledger.CreditCollected(ctx, delivery, record, "booker-1"); err != nil {
		t.Fatalf("post: %v", err)
	}

	entries := env.ledgerByType(t, constants.LedgerTypeCreditCollected)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].CreatedBy != "salesman-9" {
		t.Fatalf("created_by = %q, want salesman-9", entries[0].CreatedBy)
	}
	if entries[0].Notes != "credit_owner=booker-1" {
		t.Fatalf("notes = %q, want credit attribution", entries[0].Notes)
	}
}
