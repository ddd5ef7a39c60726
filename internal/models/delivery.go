package models

// Delivery 配送单文档（与订单 1:1）
type Delivery struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	OrderNumber      string          `json:"order_number,omitempty"`
	ShopID           string          `json:"shop_id"`
	ShopName         string          `json:"shop_name,omitempty"`
	BookerID         string          `json:"booker_id,omitempty"`
	SalesmanID       string          `json:"salesman_id,omitempty"` // 指派的配送业务员
	RegionID         string          `json:"region_id"`
	BranchID         string          `json:"branch_id,omitempty"`
	Status           string          `json:"status"`
	Items            []DeliveryItem  `json:"items"`
	TotalAmount      Money           `json:"total_amount"`
	PaidAmount       Money           `json:"paid_amount"`
	RemainingBalance Money           `json:"remaining_balance"` // totalAmount − paidAmount
	PaymentStatus    string          `json:"payment_status"`
	PaymentHistory   []PaymentRecord `json:"payment_history"`
	Signature        string          `json:"signature,omitempty"` // 签收凭据（可选）
	CreatedAt        Timestamp       `json:"created_at"`
	UpdatedAt        Timestamp       `json:"updated_at"`
	SyncStatus       string          `json:"sync_status"`
}

// DeliveryItem 配送行
type DeliveryItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	FinalAmount Money  `json:"final_amount"`
}

// PaymentRecord 收款记录（追加写，负数表示冲正）
type PaymentRecord struct {
	ID          string    `json:"id"`
	Amount      Money     `json:"amount"`
	PaidAt      Timestamp `json:"paid_at"`
	CollectedBy string    `json:"collected_by"`
	Notes       string    `json:"notes,omitempty"`
}

// IsTerminal 判断配送单是否处于终态
func (d *Delivery) IsTerminal() bool {
	return d.Status == "delivered" || d.Status == "failed"
}
