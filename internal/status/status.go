package status

import "github.com/dukerupert/choreledger/internal/model"

type Status string

const (
	StatusOpen      Status = "open"
	StatusExpired   Status = "expired"
	StatusCompleted Status = "completed"
	StatusApproved  Status = "approved"
	StatusPurchased Status = "purchased"
	StatusRedeemed  Status = "redeemed"
)

type TaskWithStatus struct {
	model.Task
	Status  Status `json:"status"`
	Expired bool   `json:"expired"`
}

type RewardWithStatus struct {
	model.Reward
	Status Status `json:"status"`
}

// IsExpired reports whether an uncompleted task is past its due date. A zero
// due date never expires.
func IsExpired(t model.Task, now int64) bool {
	return t.DueDate > 0 && t.DueDate < now && !t.Completed
}

// ComputeTask derives the lifecycle status of a task at unix time now.
func ComputeTask(t model.Task, now int64) TaskWithStatus {
	out := TaskWithStatus{Task: t, Expired: IsExpired(t, now)}
	switch {
	case t.Approved:
		out.Status = StatusApproved
	case t.Completed:
		out.Status = StatusCompleted
	case out.Expired:
		out.Status = StatusExpired
	default:
		out.Status = StatusOpen
	}
	return out
}

// ComputeReward derives the lifecycle status of a reward.
func ComputeReward(r model.Reward) RewardWithStatus {
	out := RewardWithStatus{Reward: r}
	switch {
	case r.Approved:
		out.Status = StatusApproved
	case r.Redeemed:
		out.Status = StatusRedeemed
	case r.Purchased:
		out.Status = StatusPurchased
	default:
		out.Status = StatusOpen
	}
	return out
}

// TallyTasks counts tasks per status for a family group summary.
func TallyTasks(tasks []TaskWithStatus) model.TaskTally {
	var tally model.TaskTally
	for _, t := range tasks {
		tally.Total++
		switch t.Status {
		case StatusOpen:
			tally.Open++
		case StatusExpired:
			tally.Expired++
		case StatusCompleted:
			tally.Completed++
		case StatusApproved:
			tally.Approved++
		}
	}
	return tally
}

func TallyRewards(rewards []RewardWithStatus) model.RewardTally {
	var tally model.RewardTally
	for _, r := range rewards {
		tally.Total++
		switch r.Status {
		case StatusOpen:
			tally.Open++
		case StatusPurchased:
			tally.Purchased++
		case StatusRedeemed:
			tally.Redeemed++
		case StatusApproved:
			tally.Approved++
		}
	}
	return tally
}
