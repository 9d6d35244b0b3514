package model

// Reward is an item a child can buy with tokens. Dates are unix seconds,
// 0 when unset.
type Reward struct {
	ID             int64  `json:"id"`
	ChildAddress   string `json:"child"`
	EnrollmentID   int64  `json:"-"`
	Description    string `json:"description"`
	Price          int64  `json:"price"`
	Purchased      bool   `json:"purchased"`
	PurchaseDate   int64  `json:"purchase_date"`
	Redeemed       bool   `json:"redeemed"`
	RedemptionDate int64  `json:"redemption_date"`
	Approved       bool   `json:"approved"`
	ApprovalDate   int64  `json:"approval_date"`
}

// TokenInfo describes the token and the treasury backing it.
type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Supply      int64  `json:"supply"`
	Bounded     bool   `json:"bounded"`
	Treasury    int64  `json:"treasury"`
	Circulating int64  `json:"circulating"`
}
