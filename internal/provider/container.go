package provider

import (
	"context"
	"time"

	"github.com/fieldops-next/internal/cache"
	"github.com/fieldops-next/internal/config"
	"github.com/fieldops-next/internal/constants"
	"github.com/fieldops-next/internal/logger"
	"github.com/fieldops-next/internal/queue"
	"github.com/fieldops-next/internal/remote"
	"github.com/fieldops-next/internal/replica"
	"github.com/fieldops-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Stores
	RemoteStore  remote.Store
	ReplicaStore replica.Store

	// Services
	DiscountService    *service.DiscountService
	ReconcileService   *service.ReconcileService
	LedgerService      *service.LedgerService
	SyncService        *service.SyncService
	PaymentService     *service.PaymentService
	OrderService       *service.OrderService
	StockReturnService *service.StockReturnService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化存储
	c.initStores()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initStores() {
	replicaStore, err := replica.Open(c.Config.Replica.Driver, c.Config.Replica.DSN)
	if err != nil {
		logger.Errorw("provider_init_replica_failed", "error", err)
		panic(err)
	}
	c.ReplicaStore = replicaStore

	if !c.Config.Remote.Enabled {
		// 离线/测试模式：远端退化为进程内存储
		c.RemoteStore = remote.NewMemoryStore()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoStore, err := remote.NewMongoStore(ctx, c.Config.Remote.URI, c.Config.Remote.Database)
	if err != nil {
		// 远端不可达不阻断启动，本地优先语义兜底
		logger.Warnw("provider_init_remote_failed", "error", err)
		c.RemoteStore = remote.NewMemoryStore()
		return
	}
	if err := mongoStore.EnsureIndexes(ctx, constants.CollectionLedger); err != nil {
		logger.Warnw("provider_ensure_indexes_failed", "error", err)
	}
	c.RemoteStore = mongoStore
}

func (c *Container) initServices() {
	c.DiscountService = service.NewDiscountService()
	c.ReconcileService = service.NewReconcileService(c.RemoteStore, c.ReplicaStore)
	c.LedgerService = service.NewLedgerService(c.RemoteStore, c.ReplicaStore)
	c.SyncService = service.NewSyncService(c.RemoteStore, c.ReplicaStore)
	c.PaymentService = service.NewPaymentService(c.ReplicaStore, c.SyncService, c.LedgerService)
	c.OrderService = service.NewOrderService(c.ReplicaStore, c.SyncService, c.DiscountService)
	c.StockReturnService = service.NewStockReturnService(c.ReplicaStore, c.SyncService, c.LedgerService)
}
