package main

import (
	"context"

	"github.com/fieldops-next/internal/config"
	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/models"
	"github.com/fieldops-next/internal/provider"
	"github.com/fieldops-next/internal/service"
)

// 演示数据：两家门店各一张订单，一张直接走完提交流程
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	c := provider.NewContainer(cfg)
	ctx := context.Background()

	bookerMaxPercent := 10.0
	limits := service.DiscountLimits{BookerMaxPercent: &bookerMaxPercent}

	drafts := []service.OrderDraftInput{
		{
			ShopID:      "shop-karim-store",
			ShopName:    "Karim General Store",
			BookerID:    "booker-001",
			RegionID:    "region-north",
			BranchID:    "branch-01",
			PaymentMode: "cash",
			Items: []service.OrderItemInput{
				{ProductID: "prod-cola-1l", ProductName: "Cola 1L", Quantity: 24, UnitPrice: models.NewMoney(85), DiscountPercent: 5, ProductMaxPercent: 8},
				{ProductID: "prod-chips-50g", ProductName: "Chips 50g", Quantity: 48, UnitPrice: models.NewMoney(30), DiscountPercent: 0, ProductMaxPercent: 5},
			},
		},
		{
			ShopID:      "shop-alam-mart",
			ShopName:    "Alam Mart",
			BookerID:    "booker-002",
			RegionID:    "region-north",
			BranchID:    "branch-01",
			PaymentMode: "credit",
			Items: []service.OrderItemInput{
				{ProductID: "prod-biscuit-200g", ProductName: "Biscuit 200g", Quantity: 36, UnitPrice: models.NewMoney(55), DiscountPercent: 12, ProductMaxPercent: 10},
			},
		},
	}

	for i, draft := range drafts {
		order, err := c.OrderService.CreateDraft(ctx, draft, limits)
		if err != nil {
			stdLog.Printf("创建草稿失败 %s: %v", draft.ShopID, err)
			continue
		}
		stdLog.Printf("草稿已创建: %s (%s)", order.OrderNumber, order.ShopName)

		// 第一张订单走完提交，生成配送单
		if i == 0 {
			submitted, delivery, err := c.OrderService.Submit(ctx, order.ID, limits)
			if err != nil {
				stdLog.Printf("提交失败 %s: %v", order.OrderNumber, err)
				continue
			}
			stdLog.Printf("已提交: %s 应收 %s，配送单 %s", submitted.OrderNumber, submitted.GrandTotal.String(), delivery.ID)
		}
	}

	stdLog.Printf("演示数据写入完成")
}
