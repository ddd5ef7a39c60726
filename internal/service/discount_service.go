package service

import (
	"github.com/fieldops-next/internal/models"

	"github.com/shopspring/decimal"
)

// DiscountService 折扣授权计算。纯函数，无副作用，
// 给定订单行与限额即可逐位复算（审计回放依赖这一点）。
type DiscountService struct{}

// NewDiscountService 创建折扣授权服务
func NewDiscountService() *DiscountService {
	return &DiscountService{}
}

// DiscountLineInput 单行折扣输入
type DiscountLineInput struct {
	ProductID         string
	Quantity          int
	UnitPrice         models.Money
	DiscountPercent   float64
	ProductMaxPercent float64
}

// DiscountLimits 开单员限额。百分比与绝对额上限均为可选，未设置时不参与计算。
type DiscountLimits struct {
	BookerMaxPercent *float64
	BookerMaxAmount  *models.Money
}

// DiscountLineSplit 单行折扣拆分结果
type DiscountLineSplit struct {
	ProductID           string
	LineTotal           models.Money
	DiscountAmount      models.Money
	FinalAmount         models.Money
	EffectiveMaxPercent float64
	Allowed             models.Money
	Unauthorized        models.Money
}

// DiscountOrderSplit 订单级折扣拆分结果
type DiscountOrderSplit struct {
	Lines         []DiscountLineSplit
	Subtotal      models.Money
	TotalDiscount models.Money
	Allowed       models.Money
	Unauthorized  models.Money
}

// Authorize 计算授权/超限折扣拆分。
// 每行 effectiveMax = min(产品上限, 开单员百分比上限)，超出部分记为超限；
// 然后对折扣总额做一次开单员绝对额上限检查，仅补记尚未被行级检查
// 覆盖的超出部分，重叠部分不重复累加。
func (s *DiscountService) Authorize(lines []DiscountLineInput, limits DiscountLimits) DiscountOrderSplit {
	result := DiscountOrderSplit{
		Lines: make([]DiscountLineSplit, 0, len(lines)),
	}
	subtotal := decimal.Zero
	totalDiscount := decimal.Zero
	lineUnauthorized := decimal.Zero

	for _, line := range lines {
		effectiveMax := line.ProductMaxPercent
		if limits.BookerMaxPercent != nil && *limits.BookerMaxPercent < effectiveMax {
			effectiveMax = *limits.BookerMaxPercent
		}

		lineTotal := line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		discountAmount := lineTotal.Mul(decimal.NewFromFloat(line.DiscountPercent)).Div(decimal.NewFromInt(100)).Round(2)
		lineCap := lineTotal.Mul(decimal.NewFromFloat(effectiveMax)).Div(decimal.NewFromInt(100)).Round(2)

		unauthorized := discountAmount.Sub(lineCap)
		if unauthorized.IsNegative() {
			unauthorized = decimal.Zero
		}
		allowed := discountAmount.Sub(unauthorized)

		result.Lines = append(result.Lines, DiscountLineSplit{
			ProductID:           line.ProductID,
			LineTotal:           models.NewMoneyFromDecimal(lineTotal),
			DiscountAmount:      models.NewMoneyFromDecimal(discountAmount),
			FinalAmount:         models.NewMoneyFromDecimal(lineTotal.Sub(discountAmount)),
			EffectiveMaxPercent: effectiveMax,
			Allowed:             models.NewMoneyFromDecimal(allowed),
			Unauthorized:        models.NewMoneyFromDecimal(unauthorized),
		})
		subtotal = subtotal.Add(lineTotal)
		totalDiscount = totalDiscount.Add(discountAmount)
		lineUnauthorized = lineUnauthorized.Add(unauthorized)
	}

	orderUnauthorized := lineUnauthorized
	if limits.BookerMaxAmount != nil {
		capExcess := totalDiscount.Sub(limits.BookerMaxAmount.Decimal)
		if capExcess.GreaterThan(lineUnauthorized) {
			// 绝对额上限超出部分中，行级检查已覆盖的不再重复计入
			orderUnauthorized = capExcess
		}
	}

	result.Subtotal = models.NewMoneyFromDecimal(subtotal)
	result.TotalDiscount = models.NewMoneyFromDecimal(totalDiscount)
	result.Unauthorized = models.NewMoneyFromDecimal(orderUnauthorized)
	result.Allowed = models.NewMoneyFromDecimal(totalDiscount.Sub(orderUnauthorized))
	return result
}
