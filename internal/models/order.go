package models

// Order 订单文档
type Order struct {
	ID                   string      `json:"id"`                    // 文档 ID
	OrderNumber          string      `json:"order_number"`          // 订单编号
	ShopID               string      `json:"shop_id"`               // 门店 ID
	ShopName             string      `json:"shop_name,omitempty"`   // 门店名称（冗余，便于台账归属）
	BookerID             string      `json:"booker_id"`             // 开单员 ID
	RegionID             string      `json:"region_id"`             // 区域 ID
	BranchID             string      `json:"branch_id,omitempty"`   // 分部 ID
	Status               string      `json:"status"`                // 订单状态
	Items                []OrderItem `json:"items"`                 // 订单行
	Subtotal             Money       `json:"subtotal"`              // 折前合计
	TotalDiscount        Money       `json:"total_discount"`        // 折扣合计
	AllowedDiscount      Money       `json:"allowed_discount"`      // 授权折扣
	UnauthorizedDiscount Money       `json:"unauthorized_discount"` // 超限折扣
	GrandTotal           Money       `json:"grand_total"`           // 应收合计
	PaymentMode          string      `json:"payment_mode,omitempty"`
	CreatedAt            Timestamp   `json:"created_at"`
	UpdatedAt            Timestamp   `json:"updated_at"`
	SyncStatus           string      `json:"sync_status"`
}

// OrderItem 订单行
type OrderItem struct {
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name,omitempty"`
	Quantity           int     `json:"quantity"`
	UnitPrice          Money   `json:"unit_price"`
	DiscountPercent    float64 `json:"discount_percent"`
	LineTotal          Money   `json:"line_total"`           // quantity × unitPrice
	DiscountAmount     Money   `json:"discount_amount"`      // lineTotal × discountPercent/100
	FinalAmount        Money   `json:"final_amount"`         // lineTotal − discountAmount
	MaxAllowedDiscount float64 `json:"max_allowed_discount"` // 生效折扣上限（%）
	UnauthorizedAmount Money   `json:"unauthorized_amount"`  // 超限部分
}
