package service

import (
	"testing"

	"github.com/fieldops-next/internal/models"
)

func TestAuthorizeSplitsUnauthorizedByProductCap(t *testing.T) {
	svc := NewDiscountService()
	lines := []DiscountLineInput{
		{ProductID: "p1", Quantity: 10, UnitPrice: models.NewMoney(100), DiscountPercent: 10, ProductMaxPercent: 5},
	}

	split := svc.Authorize(lines, DiscountLimits{})

	if got := split.Subtotal.String(); got != "1000.00" {
		t.Fatalf("subtotal = %s, want 1000.00", got)
	}
	if got := split.TotalDiscount.String(); got != "100.00" {
		t.Fatalf("total discount = %s, want 100.00", got)
	}
	if got := split.Unauthorized.String(); got != "50.00" {
		t.Fatalf("unauthorized = %s, want 50.00", got)
	}
	if got := split.Allowed.String(); got != "50.00" {
		t.Fatalf("allowed = %s, want 50.00", got)
	}
}

func TestAuthorizeBookerPercentTightensProductCap(t *testing.T) {
	svc := NewDiscountService()
	bookerMax := 5.0
	lines := []DiscountLineInput{
		{ProductID: "p1", Quantity: 1, UnitPrice: models.NewMoney(1000), DiscountPercent: 8, ProductMaxPercent: 10},
	}

	split := svc.Authorize(lines, DiscountLimits{BookerMaxPercent: &bookerMax})

	if got := split.Lines[0].EffectiveMaxPercent; got != 5 {
		t.Fatalf("effective max = %v, want 5", got)
	}
	// 折扣 80，上限 50，超限 30
	if got := split.Unauthorized.String(); got != "30.00" {
		t.Fatalf("unauthorized = %s, want 30.00", got)
	}
}

func TestAuthorizeWithinLimitHasNoUnauthorized(t *testing.T) {
	svc := NewDiscountService()
	lines := []DiscountLineInput{
		{ProductID: "p1", Quantity: 5, UnitPrice: models.NewMoney(200), DiscountPercent: 3, ProductMaxPercent: 5},
		{ProductID: "p2", Quantity: 2, UnitPrice: models.NewMoney(50), DiscountPercent: 0, ProductMaxPercent: 5},
	}

	split := svc.Authorize(lines, DiscountLimits{})

	if !split.Unauthorized.Equals(models.MoneyZero()) {
		t.Fatalf("unauthorized = %s, want 0.00", split.Unauthorized.String())
	}
	if !split.Allowed.Equals(split.TotalDiscount) {
		t.Fatalf("allowed %s should equal total discount %s", split.Allowed.String(), split.TotalDiscount.String())
	}
}

func TestAuthorizeAbsoluteCapDoesNotDoubleCount(t *testing.T) {
	svc := NewDiscountService()
	capAmount := models.NewMoney(30)
	lines := []DiscountLineInput{
		// 折扣 100，行级超限 50
		{ProductID: "p1", Quantity: 10, UnitPrice: models.NewMoney(100), DiscountPercent: 10, ProductMaxPercent: 5},
	}

	split := svc.Authorize(lines, DiscountLimits{BookerMaxAmount: &capAmount})

	// 绝对额超出 70 覆盖行级 50，只取 70 而不是 120
	if got := split.Unauthorized.String(); got != "70.00" {
		t.Fatalf("unauthorized = %s, want 70.00", got)
	}
	if got := split.Allowed.String(); got != "30.00" {
		t.Fatalf("allowed = %s, want 30.00", got)
	}
}

func TestAuthorizeAbsoluteCapLooserThanLines(t *testing.T) {
	svc := NewDiscountService()
	capAmount := models.NewMoney(500)
	lines := []DiscountLineInput{
		{ProductID: "p1", Quantity: 10, UnitPrice: models.NewMoney(100), DiscountPercent: 10, ProductMaxPercent: 5},
	}

	split := svc.Authorize(lines, DiscountLimits{BookerMaxAmount: &capAmount})

	// 绝对额不超限时维持行级拆分
	if got := split.Unauthorized.String(); got != "50.00" {
		t.Fatalf("unauthorized = %s, want 50.00", got)
	}
}

func TestAuthorizeReplayIsDeterministic(t *testing.T) {
	svc := NewDiscountService()
	bookerMax := 7.5
	lines := []DiscountLineInput{
		{ProductID: "p1", Quantity: 3, UnitPrice: models.NewMoney(99.99), DiscountPercent: 9, ProductMaxPercent: 8},
		{ProductID: "p2", Quantity: 7, UnitPrice: models.NewMoney(12.5), DiscountPercent: 6, ProductMaxPercent: 5},
	}
	limits := DiscountLimits{BookerMaxPercent: &bookerMax}

	first := svc.Authorize(lines, limits)
	second := svc.Authorize(lines, limits)

	if !first.Unauthorized.Equals(second.Unauthorized) || !first.Allowed.Equals(second.Allowed) {
		t.Fatalf("replay mismatch: %s/%s vs %s/%s",
			first.Allowed.String(), first.Unauthorized.String(),
			second.Allowed.String(), second.Unauthorized.String())
	}
}
