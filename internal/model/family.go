package model

// ChildSummary is one entry of a parent's family group listing.
type ChildSummary struct {
	Address string      `json:"address"`
	Name    string      `json:"name"`
	Balance int64       `json:"balance"`
	Tasks   TaskTally   `json:"tasks"`
	Rewards RewardTally `json:"rewards"`
}

type TaskTally struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Expired   int `json:"expired"`
	Completed int `json:"completed"`
	Approved  int `json:"approved"`
}

type RewardTally struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Purchased int `json:"purchased"`
	Redeemed  int `json:"redeemed"`
	Approved  int `json:"approved"`
}
