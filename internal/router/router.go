package router

import (
	"github.com/fieldops-next/internal/config"
	opshandlers "github.com/fieldops-next/internal/http/handlers/ops"
	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	opsHandler := opshandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 订单
		orders := apiV1.Group("/orders")
		{
			orders.GET("", opsHandler.ListOrders)
			orders.POST("", opsHandler.CreateOrder)
			orders.GET("/:id", opsHandler.GetOrder)
			orders.PUT("/:id", opsHandler.UpdateOrder)
			orders.POST("/:id/submit", opsHandler.SubmitOrder)
			orders.POST("/:id/request-edit", opsHandler.RequestOrderEdit)
			orders.POST("/:id/approve", opsHandler.ApproveOrder)
			orders.POST("/:id/cancel", opsHandler.CancelOrder)
		}

		// 配送与收款
		deliveries := apiV1.Group("/deliveries")
		{
			deliveries.GET("", opsHandler.ListDeliveries)
			deliveries.POST("/:id/deliver", opsHandler.MarkDelivered)
			deliveries.POST("/:id/collect", opsHandler.CollectPayment)
			deliveries.POST("/:id/adjust", opsHandler.AdjustPayment)
		}

		// 退货
		stockReturns := apiV1.Group("/stock-returns")
		{
			stockReturns.GET("", opsHandler.ListStockReturns)
			stockReturns.POST("", opsHandler.CreateStockReturn)
			stockReturns.POST("/:id/approve", opsHandler.ApproveStockReturn)
			stockReturns.POST("/:id/reject", opsHandler.RejectStockReturn)
		}

		// 同步
		sync := apiV1.Group("/sync")
		{
			sync.POST("/sweep", opsHandler.TriggerSync)
			sync.GET("/status", opsHandler.SyncStatus)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
