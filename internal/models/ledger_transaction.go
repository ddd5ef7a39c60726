package models

// LedgerTransaction 财务台账分录。创建后不可变，是所有财务报表的唯一依据。
type LedgerTransaction struct {
	ID                   string    `json:"id"`
	Type                 string    `json:"type"`
	OrderID              string    `json:"order_id,omitempty"`
	ReturnID             string    `json:"return_id,omitempty"` // 退货业务键（仅 RETURN）
	RefID                string    `json:"ref_id,omitempty"`    // 记录级业务键（收款/冲正记录 ID）
	PartyID              string    `json:"party_id"`            // 门店
	PartyName            string    `json:"party_name,omitempty"`
	RegionID             string    `json:"region_id"`
	BranchID             string    `json:"branch_id,omitempty"`
	GrossAmount          Money     `json:"gross_amount"`
	DiscountAllowed      Money     `json:"discount_allowed"`
	DiscountGiven        Money     `json:"discount_given"`
	UnauthorizedDiscount Money     `json:"unauthorized_discount"`
	NetCash              Money     `json:"net_cash"` // 正=现金流入，负=挂账/信用
	CreatedBy            string    `json:"created_by"`
	Notes                string    `json:"notes,omitempty"` // 归属说明（如原始赊销负责人）
	CreatedAt            Timestamp `json:"created_at"`
}
