package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldops-next/internal/models"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "orders", "o1", models.Doc{"id": "o1", "status": "draft"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "orders", "o2", models.Doc{"id": "o2", "status": "submitted"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	docs, err := store.Get(ctx, "orders")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	// ID 升序，结果稳定
	if docs[0]["id"] != "o1" || docs[1]["id"] != "o2" {
		t.Fatalf("order unstable: %v", docs)
	}
}

func TestMemoryStoreGetWhere(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "ledger", "t1", models.Doc{"id": "t1", "order_id": "o1", "type": "SALE_DELIVERED"})
	_ = store.Set(ctx, "ledger", "t2", models.Doc{"id": "t2", "order_id": "o2", "type": "SALE_DELIVERED"})

	docs, err := store.GetWhere(ctx, "ledger", "order_id", OpEqual, "o1")
	if err != nil {
		t.Fatalf("get where: %v", err)
	}
	if len(docs) != 1 || docs[0]["id"] != "t1" {
		t.Fatalf("docs = %v, want only t1", docs)
	}

	if _, err := store.GetWhere(ctx, "ledger", "order_id", Op(">"), "o1"); !errors.Is(err, ErrUnsupportedOp) {
		t.Fatalf("err = %v, want ErrUnsupportedOp", err)
	}
}

func TestMemoryStoreUpdatePatches(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "orders", "o1", models.Doc{"id": "o1", "status": "draft", "shop_id": "s1"})

	if err := store.Update(ctx, "orders", "o1", models.Doc{"status": "submitted"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	docs, _ := store.Get(ctx, "orders")
	if docs[0]["status"] != "submitted" || docs[0]["shop_id"] != "s1" {
		t.Fatalf("patch lost fields: %v", docs[0])
	}
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("network down")
	store.SetFail(boom)

	if _, err := store.Get(ctx, "orders"); !errors.Is(err, boom) {
		t.Fatalf("get err = %v, want injected", err)
	}
	if err := store.Set(ctx, "orders", "o1", models.Doc{"id": "o1"}); !errors.Is(err, boom) {
		t.Fatalf("set err = %v, want injected", err)
	}

	store.SetFail(nil)
	if err := store.Set(ctx, "orders", "o1", models.Doc{"id": "o1"}); err != nil {
		t.Fatalf("set after recover: %v", err)
	}
}
