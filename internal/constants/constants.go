package constants

// 订单状态常量
const (
	OrderStatusDraft         = "draft"
	OrderStatusSubmitted     = "submitted"
	OrderStatusEditRequested = "edit_requested"
	OrderStatusApproved      = "approved"
	OrderStatusDelivered     = "delivered"
	OrderStatusCanceled      = "canceled"
)

// 配送单状态常量
const (
	DeliveryStatusAssigned  = "assigned"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// 收款状态常量
const (
	PaymentStatusUnpaid  = "UNPAID"
	PaymentStatusPartial = "PARTIAL"
	PaymentStatusPaid    = "PAID"
)

// 台账分录类型常量
const (
	LedgerTypeSaleDelivered     = "SALE_DELIVERED"
	LedgerTypeReturn            = "RETURN"
	LedgerTypeAdjustment        = "ADJUSTMENT"
	LedgerTypePaymentCollection = "PAYMENT_COLLECTION"
	LedgerTypeCreditCreated     = "CREDIT_CREATED"
	LedgerTypeCreditCollected   = "CREDIT_COLLECTED"
)

// 退货单状态常量
const (
	StockReturnStatusPendingApproval = "pending_kpo_approval"
	StockReturnStatusApproved        = "approved"
	StockReturnStatusRejected        = "rejected"
	StockReturnStatusProcessed       = "processed"
)

// 同步状态常量
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
)

// 远端集合名常量
const (
	CollectionOrders       = "orders"
	CollectionDeliveries   = "deliveries"
	CollectionLedger       = "ledger_transactions"
	CollectionStockReturns = "stock_returns"
)

// 本地快照专用键（不对应远端集合）
const (
	SnapshotPendingLedger = "pending_ledger"
)

// 异步任务类型常量
const (
	TaskSyncSweep   = "sync:sweep"
	TaskLedgerRetry = "ledger:retry"
)

// 队列名称常量
const (
	QueueDefault = "default"
)
