package service

import "errors"

// 校验类错误：对当前操作致命，绝不静默修正
var (
	ErrMissingOrderID  = errors.New("缺少订单 ID")
	ErrMissingReturnID = errors.New("缺少退货单 ID")
	ErrMissingPartyID  = errors.New("缺少门店 ID")
	ErrMissingRegionID = errors.New("缺少区域 ID")
	ErrMissingRefID    = errors.New("缺少业务凭据 ID")
	ErrInvalidAmount   = errors.New("金额不合法")
)

// 状态机类错误：拒绝非法状态流转，不做部分应用
var (
	ErrOrderNotFound       = errors.New("订单不存在")
	ErrOrderNotDraft       = errors.New("订单已提交，禁止修改")
	ErrOrderStatusInvalid  = errors.New("订单状态不允许该操作")
	ErrInvalidOrderItem    = errors.New("订单行不合法")
	ErrDeliveryNotFound    = errors.New("配送单不存在")
	ErrDeliveryFinalized   = errors.New("配送单已终态")
	ErrOverpayment         = errors.New("收款超出应收金额")
	ErrAdjustRequiresPaid  = errors.New("仅可冲正已付清的配送单")
	ErrReturnNotFound      = errors.New("退货单不存在")
	ErrReturnNotPending    = errors.New("退货单不在待审批状态")
)

// 台账投递类错误
var (
	// ErrLedgerDeferred 台账投递失败但本地操作已生效，等待后台重试
	ErrLedgerDeferred = errors.New("台账投递暂缓")
	// ErrPostingInProgress 同一业务键的另一次投递正在进行
	ErrPostingInProgress = errors.New("台账投递进行中")
)
