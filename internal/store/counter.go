package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/dukerupert/choreledger/internal/model"
)

// Counter names as stored in the counters table.
const (
	CounterParentsRegistered = "parents_registered"
	CounterParentsDeleted    = "parents_deleted"
	CounterChildrenAdded     = "children_added"
	CounterChildrenRemoved   = "children_removed"
	CounterTasksAdded        = "tasks_added"
	CounterTasksDeleted      = "tasks_deleted"
	CounterTasksCompleted    = "tasks_completed"
	CounterTasksApproved     = "tasks_approved"
	CounterTokensEarned      = "tokens_earned"
	CounterRewardsAdded      = "rewards_added"
	CounterRewardsDeleted    = "rewards_deleted"
	CounterRewardsPurchased  = "rewards_purchased"
	CounterRewardsRedeemed   = "rewards_redeemed"
	CounterRewardsApproved   = "rewards_approved"
	CounterTokensSpent       = "tokens_spent"
)

// Id sequences.
const (
	SeqTask       = "task"
	SeqReward     = "reward"
	SeqEnrollment = "enrollment"
)

type CounterStore struct {
	db Querier
}

func NewCounterStore(db Querier) *CounterStore {
	return &CounterStore{db: db}
}

// ErrCounterOverflow is returned by Add when the result does not fit in an
// int64. The counter is left unchanged.
var ErrCounterOverflow = errors.New("counter overflow")

func (s *CounterStore) Add(ctx context.Context, name string, delta int64) error {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("unknown counter %q", name)
	}
	if err != nil {
		return fmt.Errorf("read counter %s: %w", name, err)
	}
	if (delta > 0 && v > math.MaxInt64-delta) || (delta < 0 && v < math.MinInt64-delta) {
		return fmt.Errorf("add counter %s: %w", name, ErrCounterOverflow)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE counters SET value = ? WHERE name = ?`, v+delta, name); err != nil {
		return fmt.Errorf("add counter %s: %w", name, err)
	}
	return nil
}

// Snapshot reads every counter into the grouped view.
func (s *CounterStore) Snapshot(ctx context.Context) (model.Counters, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM counters`)
	if err != nil {
		return model.Counters{}, fmt.Errorf("list counters: %w", err)
	}
	defer rows.Close()

	values := make(map[string]int64)
	for rows.Next() {
		var name string
		var v int64
		if err := rows.Scan(&name, &v); err != nil {
			return model.Counters{}, fmt.Errorf("scan counter: %w", err)
		}
		values[name] = v
	}
	if err := rows.Err(); err != nil {
		return model.Counters{}, fmt.Errorf("iterate counters: %w", err)
	}

	return model.Counters{
		Accounts: model.AccountCounters{
			ParentsRegistered: values[CounterParentsRegistered],
			ParentsDeleted:    values[CounterParentsDeleted],
			ChildrenAdded:     values[CounterChildrenAdded],
			ChildrenRemoved:   values[CounterChildrenRemoved],
		},
		Tasks: model.TaskCounters{
			Added:        values[CounterTasksAdded],
			Deleted:      values[CounterTasksDeleted],
			Completed:    values[CounterTasksCompleted],
			Approved:     values[CounterTasksApproved],
			TokensEarned: values[CounterTokensEarned],
		},
		Rewards: model.RewardCounters{
			Added:       values[CounterRewardsAdded],
			Deleted:     values[CounterRewardsDeleted],
			Purchased:   values[CounterRewardsPurchased],
			Redeemed:    values[CounterRewardsRedeemed],
			Approved:    values[CounterRewardsApproved],
			TokensSpent: values[CounterTokensSpent],
		},
	}, nil
}

// NextID allocates the next value of a sequence. Values are never handed out
// twice, even when the row they were allocated for is later deleted.
func (s *CounterStore) NextID(ctx context.Context, seq string) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM sequences WHERE name = ?`, seq).Scan(&id); err != nil {
		return 0, fmt.Errorf("read sequence %s: %w", seq, err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE sequences SET value = value + 1 WHERE name = ?`, seq); err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", seq, err)
	}
	return id, nil
}
