package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreledger/internal/model"
)

type RewardStore struct {
	db Querier
}

func NewRewardStore(db Querier) *RewardStore {
	return &RewardStore{db: db}
}

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	var purchased, redeemed, approved int

	err := scanner.Scan(&r.ID, &r.ChildAddress, &r.EnrollmentID, &r.Description, &r.Price,
		&purchased, &r.PurchaseDate, &redeemed, &r.RedemptionDate, &approved, &r.ApprovalDate)
	if err != nil {
		return nil, err
	}
	r.Purchased = purchased != 0
	r.Redeemed = redeemed != 0
	r.Approved = approved != 0
	return &r, nil
}

const rewardCols = `id, child_address, enrollment_id, description, price, purchased, purchase_date, redeemed, redemption_date, approved, approval_date`

func (s *RewardStore) Create(ctx context.Context, r model.Reward) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rewards (`+rewardCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ChildAddress, r.EnrollmentID, r.Description, r.Price,
		boolToInt(r.Purchased), r.PurchaseDate, boolToInt(r.Redeemed), r.RedemptionDate,
		boolToInt(r.Approved), r.ApprovalDate,
	)
	if err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}

func (s *RewardStore) GetByID(ctx context.Context, id int64) (*model.Reward, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

func (s *RewardStore) Update(ctx context.Context, r model.Reward) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE rewards SET description = ?, price = ?, purchased = ?, purchase_date = ?, redeemed = ?,
			redemption_date = ?, approved = ?, approval_date = ? WHERE id = ?`,
		r.Description, r.Price, boolToInt(r.Purchased), r.PurchaseDate, boolToInt(r.Redeemed),
		r.RedemptionDate, boolToInt(r.Approved), r.ApprovalDate, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update reward: %w", err)
	}
	return nil
}

func (s *RewardStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	return nil
}

func (s *RewardStore) ListByEnrollment(ctx context.Context, child string, enrollmentID int64) ([]model.Reward, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+rewardCols+` FROM rewards WHERE child_address = ? AND enrollment_id = ? ORDER BY id ASC`,
		child, enrollmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}
