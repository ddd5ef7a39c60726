package models

// StockReturn 退货单文档
type StockReturn struct {
	ID         string             `json:"id"`
	ShopID     string             `json:"shop_id"`
	ShopName   string             `json:"shop_name,omitempty"`
	RegionID   string             `json:"region_id"`
	BranchID   string             `json:"branch_id,omitempty"`
	Items      []StockReturnItem  `json:"items"`
	TotalValue Money              `json:"total_value"`
	Reason     string             `json:"reason,omitempty"`
	Status     string             `json:"status"`
	CreatedBy  string             `json:"created_by,omitempty"`
	ApprovedBy string             `json:"approved_by,omitempty"`
	CreatedAt  Timestamp          `json:"created_at"`
	UpdatedAt  Timestamp          `json:"updated_at"`
	SyncStatus string             `json:"sync_status"`
}

// StockReturnItem 退货行
type StockReturnItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitValue   Money  `json:"unit_value"`
	LineValue   Money  `json:"line_value"`
}
