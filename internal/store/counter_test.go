package store

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCounterAddAndSnapshot(t *testing.T) {
	s := NewCounterStore(setupTestDB(t))
	ctx := context.Background()

	if err := s.Add(ctx, CounterTasksAdded, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, CounterTokensEarned, 10); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, CounterTasksAdded, -1); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	c, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if c.Tasks.Added != 1 {
		t.Errorf("tasks added = %d, want 1", c.Tasks.Added)
	}
	if c.Tasks.TokensEarned != 10 {
		t.Errorf("tokens earned = %d, want 10", c.Tasks.TokensEarned)
	}
	if c.Rewards.TokensSpent != 0 {
		t.Errorf("tokens spent = %d, want 0", c.Rewards.TokensSpent)
	}
}

func TestCounterAddUnknown(t *testing.T) {
	s := NewCounterStore(setupTestDB(t))

	if err := s.Add(context.Background(), "bogus", 1); err == nil {
		t.Error("expected error for unknown counter")
	}
}

func TestCounterAddOverflow(t *testing.T) {
	db := setupTestDB(t)
	s := NewCounterStore(db)
	ctx := context.Background()

	if _, err := db.Exec(`UPDATE counters SET value = ? WHERE name = ?`, int64(math.MaxInt64-5), CounterTokensEarned); err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	err := s.Add(ctx, CounterTokensEarned, 10)
	if !errors.Is(err, ErrCounterOverflow) {
		t.Fatalf("add = %v, want ErrCounterOverflow", err)
	}

	c, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot after overflow: %v", err)
	}
	if c.Tasks.TokensEarned != math.MaxInt64-5 {
		t.Errorf("tokens earned = %d, want %d", c.Tasks.TokensEarned, int64(math.MaxInt64-5))
	}

	if err := s.Add(ctx, CounterTokensEarned, 5); err != nil {
		t.Fatalf("add to max: %v", err)
	}
}

func TestNextIDIsMonotonic(t *testing.T) {
	s := NewCounterStore(setupTestDB(t))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.NextID(ctx, SeqTask)
		if err != nil {
			t.Fatalf("next id: %v", err)
		}
		if got != want {
			t.Errorf("next id = %d, want %d", got, want)
		}
	}

	// Sequences are independent.
	got, _ := s.NextID(ctx, SeqReward)
	if got != 1 {
		t.Errorf("reward id = %d, want 1", got)
	}
	if _, err := s.NextID(ctx, "bogus"); err == nil {
		t.Error("expected error for unknown sequence")
	}
}
