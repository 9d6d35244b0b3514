package store

import (
	"context"
	"database/sql"
	"fmt"
)

type BalanceStore struct {
	db Querier
}

func NewBalanceStore(db Querier) *BalanceStore {
	return &BalanceStore{db: db}
}

// Get returns the balance for address; unknown addresses hold 0.
func (s *BalanceStore) Get(ctx context.Context, address string) (int64, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx, `SELECT amount FROM balances WHERE address = ?`, address).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return amount, nil
}

// Set stores an absolute balance. The schema rejects negative amounts.
func (s *BalanceStore) Set(ctx context.Context, address string, amount int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balances (address, amount) VALUES (?, ?)
		 ON CONFLICT(address) DO UPDATE SET amount = excluded.amount`,
		address, amount,
	)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

// Seed creates a balance row only if none exists yet.
func (s *BalanceStore) Seed(ctx context.Context, address string, amount int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balances (address, amount) VALUES (?, ?) ON CONFLICT(address) DO NOTHING`,
		address, amount,
	)
	if err != nil {
		return fmt.Errorf("seed balance: %w", err)
	}
	return nil
}

// SumExcept totals every balance other than the given address.
func (s *BalanceStore) SumExcept(ctx context.Context, address string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM balances WHERE address != ?`, address,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return total, nil
}
