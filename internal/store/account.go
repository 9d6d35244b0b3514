package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreledger/internal/model"
)

type AccountStore struct {
	db Querier
}

func NewAccountStore(db Querier) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	var parent sql.NullString
	var enrollment sql.NullInt64

	err := scanner.Scan(&a.Address, &a.Kind, &a.Name, &parent, &enrollment, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Parent = parent.String
	a.EnrollmentID = enrollment.Int64
	return &a, nil
}

const accountCols = `address, kind, name, parent, enrollment_id, created_at, updated_at`

func (s *AccountStore) CreateParent(ctx context.Context, address, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (address, kind, name) VALUES (?, 'parent', ?)`,
		address, name,
	)
	if err != nil {
		return fmt.Errorf("insert parent: %w", err)
	}
	return nil
}

func (s *AccountStore) CreateChild(ctx context.Context, address, name, parent string, enrollmentID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (address, kind, name, parent, enrollment_id) VALUES (?, 'child', ?, ?, ?)`,
		address, name, parent, enrollmentID,
	)
	if err != nil {
		return fmt.Errorf("insert child: %w", err)
	}
	return nil
}

// Get returns the account for address, or nil if the address is not
// registered.
func (s *AccountStore) Get(ctx context.Context, address string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE address = ?`, address)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) UpdateName(ctx context.Context, address, name string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE address = ?`,
		name, address,
	)
	if err != nil {
		return fmt.Errorf("update account name: %w", err)
	}
	return nil
}

func (s *AccountStore) Delete(ctx context.Context, address string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE address = ?`, address)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// ListChildren returns a parent's children in the order they were added.
func (s *AccountStore) ListChildren(ctx context.Context, parent string) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE parent = ? ORDER BY enrollment_id ASC`,
		parent,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *a)
	}
	return children, rows.Err()
}
