package model

type Counters struct {
	Accounts AccountCounters `json:"accounts"`
	Tasks    TaskCounters    `json:"tasks"`
	Rewards  RewardCounters  `json:"rewards"`
}

type AccountCounters struct {
	ParentsRegistered int64 `json:"parents_registered"`
	ParentsDeleted    int64 `json:"parents_deleted"`
	ChildrenAdded     int64 `json:"children_added"`
	ChildrenRemoved   int64 `json:"children_removed"`
}

type TaskCounters struct {
	Added        int64 `json:"added"`
	Deleted      int64 `json:"deleted"`
	Completed    int64 `json:"completed"`
	Approved     int64 `json:"approved"`
	TokensEarned int64 `json:"tokens_earned"`
}

type RewardCounters struct {
	Added       int64 `json:"added"`
	Deleted     int64 `json:"deleted"`
	Purchased   int64 `json:"purchased"`
	Redeemed    int64 `json:"redeemed"`
	Approved    int64 `json:"approved"`
	TokensSpent int64 `json:"tokens_spent"`
}
