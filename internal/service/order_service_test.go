package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/models"
)

func draftInput() OrderDraftInput {
	return OrderDraftInput{
		ShopID:   "shop-1",
		ShopName: "Test Shop",
		BookerID: "booker-1",
		RegionID: "region-1",
		Items: []OrderItemInput{
			{ProductID: "p1", Quantity: 10, UnitPrice: models.NewMoney(100), DiscountPercent: 5, ProductMaxPercent: 8},
		},
	}
}

func TestCreateDraftComputesAmounts(t *testing.T) {
	env := newTestEnv(t)
	order, err := env.order.CreateDraft(context.Background(), draftInput(), DiscountLimits{})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if order.Status != constants.OrderStatusDraft {
		t.Fatalf("status = %s, want draft", order.Status)
	}
	if order.OrderNumber == "" {
		t.Fatalf("order number must be assigned")
	}
	if got := order.Subtotal.String(); got != "1000.00" {
		t.Fatalf("subtotal = %s, want 1000.00", got)
	}
	if got := order.GrandTotal.String(); got != "950.00" {
		t.Fatalf("grand total = %s, want 950.00", got)
	}
}

func TestCreateDraftValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := draftInput()
	input.ShopID = ""
	if _, err := env.order.CreateDraft(ctx, input, DiscountLimits{}); !errors.Is(err, ErrMissingPartyID) {
		t.Fatalf("err = %v, want ErrMissingPartyID", err)
	}

	input = draftInput()
	input.Items[0].Quantity = 0
	if _, err := env.order.CreateDraft(ctx, input, DiscountLimits{}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("err = %v, want ErrInvalidOrderItem", err)
	}

	input = draftInput()
	input.Items[0].DiscountPercent = 120
	if _, err := env.order.CreateDraft(ctx, input, DiscountLimits{}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("err = %v, want ErrInvalidOrderItem", err)
	}
}

func TestSubmitFreezesOrderAndCreatesDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, err := env.order.CreateDraft(ctx, draftInput(), DiscountLimits{})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	submitted, delivery, err := env.order.Submit(ctx, order.ID, DiscountLimits{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != constants.OrderStatusSubmitted {
		t.Fatalf("status = %s, want submitted", submitted.Status)
	}
	if delivery.OrderID != order.ID {
		t.Fatalf("delivery order = %s, want %s", delivery.OrderID, order.ID)
	}
	if !delivery.TotalAmount.Equals(submitted.GrandTotal) {
		t.Fatalf("delivery total %s != grand total %s", delivery.TotalAmount.String(), submitted.GrandTotal.String())
	}
	if delivery.PaymentStatus != constants.PaymentStatusUnpaid {
		t.Fatalf("payment status = %s, want UNPAID", delivery.PaymentStatus)
	}

	// 提交后冻结
	if _, err := env.order.UpdateDraft(ctx, order.ID, draftInput(), DiscountLimits{}); !errors.Is(err, ErrOrderNotDraft) {
		t.Fatalf("err = %v, want ErrOrderNotDraft", err)
	}
}

func TestSubmitIsIdempotentOnDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, err := env.order.CreateDraft(ctx, draftInput(), DiscountLimits{})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	_, first, err := env.order.Submit(ctx, order.ID, DiscountLimits{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 回退再提交复用已有配送单
	if _, err := env.order.RequestEdit(ctx, order.ID); err != nil {
		t.Fatalf("request edit: %v", err)
	}
	if _, err := env.order.UpdateDraft(ctx, order.ID, draftInput(), DiscountLimits{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	_, second, err := env.order.Submit(ctx, order.ID, DiscountLimits{})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("delivery recreated: %s vs %s", first.ID, second.ID)
	}
}

func TestOrderTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, err := env.order.CreateDraft(ctx, draftInput(), DiscountLimits{})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	// draft 不能直接 approve
	if _, err := env.order.Approve(ctx, order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("err = %v, want ErrOrderStatusInvalid", err)
	}

	if _, _, err := env.order.Submit(ctx, order.ID, DiscountLimits{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approved, err := env.order.Approve(ctx, order.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != constants.OrderStatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}

	canceled, err := env.order.Cancel(ctx, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("status = %s, want canceled", canceled.Status)
	}
	// 终态后禁止任何流转
	if _, err := env.order.Cancel(ctx, order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("err = %v, want ErrOrderStatusInvalid", err)
	}
}

func TestEditRequestedReturnsToDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, err := env.order.CreateDraft(ctx, draftInput(), DiscountLimits{})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, _, err := env.order.Submit(ctx, order.ID, DiscountLimits{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.order.RequestEdit(ctx, order.ID); err != nil {
		t.Fatalf("request edit: %v", err)
	}

	updated, err := env.order.UpdateDraft(ctx, order.ID, draftInput(), DiscountLimits{})
	if err != nil {
		t.Fatalf("update after edit request: %v", err)
	}
	if updated.Status != constants.OrderStatusDraft {
		t.Fatalf("status = %s, want draft", updated.Status)
	}
}
