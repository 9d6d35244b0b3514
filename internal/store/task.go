package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreledger/internal/model"
)

type TaskStore struct {
	db Querier
}

func NewTaskStore(db Querier) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var completed, approved int

	err := scanner.Scan(&t.ID, &t.ChildAddress, &t.EnrollmentID, &t.Description, &t.Reward, &t.DueDate,
		&completed, &t.CompletionDate, &approved, &t.ApprovalDate)
	if err != nil {
		return nil, err
	}
	t.Completed = completed != 0
	t.Approved = approved != 0
	return &t, nil
}

const taskCols = `id, child_address, enrollment_id, description, reward, due_date, completed, completion_date, approved, approval_date`

// Create inserts a task under the id the caller allocated from the task
// sequence.
func (s *TaskStore) Create(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ChildAddress, t.EnrollmentID, t.Description, t.Reward, t.DueDate,
		boolToInt(t.Completed), t.CompletionDate, boolToInt(t.Approved), t.ApprovalDate,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Update writes every mutable field of t.
func (s *TaskStore) Update(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET description = ?, reward = ?, due_date = ?, completed = ?, completion_date = ?,
			approved = ?, approval_date = ? WHERE id = ?`,
		t.Description, t.Reward, t.DueDate, boolToInt(t.Completed), t.CompletionDate,
		boolToInt(t.Approved), t.ApprovalDate, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListByEnrollment returns the tasks created for child during one enrollment,
// ordered by id.
func (s *TaskStore) ListByEnrollment(ctx context.Context, child string, enrollmentID int64) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE child_address = ? AND enrollment_id = ? ORDER BY id ASC`,
		child, enrollmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
