package ledger

import (
	"context"

	"github.com/dukerupert/choreledger/internal/address"
	"github.com/dukerupert/choreledger/internal/model"
	"github.com/dukerupert/choreledger/internal/status"
	"github.com/dukerupert/choreledger/internal/store"
)

// TaskInput holds the parent-editable fields of a task.
type TaskInput struct {
	Description string
	Reward      int64
	// DueDate is a unix timestamp; 0 means no due date.
	DueDate int64
}

func (in TaskInput) validate() (TaskInput, error) {
	desc, err := validDescription(in.Description)
	if err != nil {
		return in, err
	}
	in.Description = desc
	if err := validAmount("reward", in.Reward); err != nil {
		return in, err
	}
	if in.DueDate < 0 {
		return in, withMetadata(CodeInvalidArgument, "due date must be 0 or a unix timestamp", map[string]string{"field": "due_date"})
	}
	return in, nil
}

// parentTask loads a task the parent may act on.
func (tx *txn) parentTask(parent *model.Account, id int64) (*model.Task, error) {
	if id <= 0 {
		return nil, invalidID("task", id)
	}
	t, err := tx.tasks.GetByID(tx.ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, invalidID("task", id)
	}
	ok, err := tx.enrolledUnder(parent, t.ChildAddress, t.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(CodeNotInYourFamilyGroup, "task belongs to a child outside your family group")
	}
	return t, nil
}

// ownTask loads a task assigned to the calling child.
func (tx *txn) ownTask(kid *model.Account, id int64) (*model.Task, error) {
	if id <= 0 {
		return nil, invalidID("task", id)
	}
	t, err := tx.tasks.GetByID(tx.ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, invalidID("task", id)
	}
	if t.ChildAddress != kid.Address || t.EnrollmentID != kid.EnrollmentID {
		return nil, newError(CodeNotYourTask, "task is not assigned to you")
	}
	return t, nil
}

func (tx *txn) childTasks(kid model.Account) ([]status.TaskWithStatus, error) {
	tasks, err := tx.tasks.ListByEnrollment(tx.ctx, kid.Address, kid.EnrollmentID)
	if err != nil {
		return nil, err
	}
	out := make([]status.TaskWithStatus, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, status.ComputeTask(t, tx.now))
	}
	return out, nil
}

func (l *Ledger) AddTask(ctx context.Context, caller, child string, in TaskInput) (model.Task, error) {
	var task model.Task
	err := l.update(ctx, "add_task", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		kid, err := tx.childInGroup(parent, child)
		if err != nil {
			return err
		}
		in, err := in.validate()
		if err != nil {
			return err
		}

		id, err := tx.counters.NextID(tx.ctx, store.SeqTask)
		if err != nil {
			return err
		}
		task = model.Task{
			ID:           id,
			ChildAddress: kid.Address,
			EnrollmentID: kid.EnrollmentID,
			Description:  in.Description,
			Reward:       in.Reward,
			DueDate:      in.DueDate,
		}
		if err := tx.tasks.Create(tx.ctx, task); err != nil {
			return err
		}
		tx.bump(store.CounterTasksAdded, 1)
		return tx.emit(model.EventTaskAdded, map[string]any{
			"id":          id,
			"child":       kid.Address,
			"description": in.Description,
			"reward":      in.Reward,
			"due_date":    in.DueDate,
		})
	})
	return task, err
}

func (l *Ledger) EditTask(ctx context.Context, caller string, id int64, in TaskInput) (model.Task, error) {
	var task model.Task
	err := l.update(ctx, "edit_task", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		t, err := tx.parentTask(parent, id)
		if err != nil {
			return err
		}
		if t.Completed {
			return newError(CodeAlreadyCompleted, "completed tasks cannot be edited")
		}
		in, err := in.validate()
		if err != nil {
			return err
		}

		t.Description, t.Reward, t.DueDate = in.Description, in.Reward, in.DueDate
		if err := tx.tasks.Update(tx.ctx, *t); err != nil {
			return err
		}
		task = *t
		return tx.emit(model.EventTaskEdited, map[string]any{
			"id":          t.ID,
			"description": t.Description,
			"reward":      t.Reward,
			"due_date":    t.DueDate,
		})
	})
	return task, err
}

// DeleteTask removes an open task. Its id is never reissued.
func (l *Ledger) DeleteTask(ctx context.Context, caller string, id int64) error {
	return l.update(ctx, "delete_task", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		t, err := tx.parentTask(parent, id)
		if err != nil {
			return err
		}
		if t.Completed {
			return newError(CodeAlreadyCompleted, "completed tasks cannot be deleted")
		}

		if err := tx.tasks.Delete(tx.ctx, t.ID); err != nil {
			return err
		}
		tx.bump(store.CounterTasksDeleted, 1)
		return tx.emit(model.EventTaskDeleted, map[string]any{"id": t.ID})
	})
}

func (l *Ledger) CompleteTask(ctx context.Context, caller string, id int64) (model.Task, error) {
	var task model.Task
	err := l.update(ctx, "complete_task", caller, func(tx *txn) error {
		kid, err := tx.requireChild()
		if err != nil {
			return err
		}
		t, err := tx.ownTask(kid, id)
		if err != nil {
			return err
		}
		if t.Completed {
			return newError(CodeAlreadyCompleted, "task is already completed")
		}
		if status.IsExpired(*t, tx.now) {
			return newError(CodeExpired, "task is past its due date")
		}

		t.Completed, t.CompletionDate = true, tx.now
		if err := tx.tasks.Update(tx.ctx, *t); err != nil {
			return err
		}
		task = *t
		tx.bump(store.CounterTasksCompleted, 1)
		return tx.emit(model.EventTaskCompleted, map[string]any{
			"id":              t.ID,
			"child":           kid.Address,
			"completion_date": t.CompletionDate,
		})
	})
	return task, err
}

func (l *Ledger) CancelTaskCompletion(ctx context.Context, caller string, id int64) (model.Task, error) {
	var task model.Task
	err := l.update(ctx, "cancel_task_completion", caller, func(tx *txn) error {
		kid, err := tx.requireChild()
		if err != nil {
			return err
		}
		t, err := tx.ownTask(kid, id)
		if err != nil {
			return err
		}
		if !t.Completed {
			return newError(CodeNotYetCompleted, "task is not completed")
		}
		if t.Approved {
			return newError(CodeAlreadyApproved, "task completion is already approved")
		}

		t.Completed, t.CompletionDate = false, 0
		if err := tx.tasks.Update(tx.ctx, *t); err != nil {
			return err
		}
		task = *t
		tx.bump(store.CounterTasksCompleted, -1)
		return tx.emit(model.EventTaskCompletionCancelled, map[string]any{"id": t.ID, "child": kid.Address})
	})
	return task, err
}

// ApproveTaskCompletion confirms a completed task and credits its reward from
// the treasury to the child.
func (l *Ledger) ApproveTaskCompletion(ctx context.Context, caller string, id int64) (model.Task, error) {
	var task model.Task
	err := l.update(ctx, "approve_task_completion", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		t, err := tx.parentTask(parent, id)
		if err != nil {
			return err
		}
		if !t.Completed {
			return newError(CodeNotYetCompleted, "task is not completed")
		}
		if t.Approved {
			return newError(CodeAlreadyApproved, "task completion is already approved")
		}

		t.Approved, t.ApprovalDate = true, tx.now
		if err := tx.tasks.Update(tx.ctx, *t); err != nil {
			return err
		}
		if err := tx.transfer(address.Treasury, t.ChildAddress, t.Reward); err != nil {
			return err
		}
		task = *t
		tx.bump(store.CounterTasksApproved, 1)
		tx.bump(store.CounterTokensEarned, t.Reward)
		return tx.emit(model.EventTaskCompletionApproved, map[string]any{
			"id":            t.ID,
			"parent":        parent.Address,
			"approval_date": t.ApprovalDate,
			"reward":        t.Reward,
		})
	})
	return task, err
}

// ChildTasks lists the calling child's tasks.
func (l *Ledger) ChildTasks(ctx context.Context, caller string) ([]status.TaskWithStatus, error) {
	var tasks []status.TaskWithStatus
	err := l.view(ctx, "get_child_tasks", caller, func(tx *txn) error {
		kid, err := tx.requireChild()
		if err != nil {
			return err
		}
		tasks, err = tx.childTasks(*kid)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FamilyGroupTasks lists the tasks of every child in the caller's group,
// child by child in insertion order.
func (l *Ledger) FamilyGroupTasks(ctx context.Context, caller string) ([]status.TaskWithStatus, error) {
	tasks := []status.TaskWithStatus{}
	err := l.view(ctx, "get_family_group_tasks", caller, func(tx *txn) error {
		parent, err := tx.requireParent()
		if err != nil {
			return err
		}
		children, err := tx.accounts.ListChildren(tx.ctx, parent.Address)
		if err != nil {
			return err
		}
		for _, kid := range children {
			kidTasks, err := tx.childTasks(kid)
			if err != nil {
				return err
			}
			tasks = append(tasks, kidTasks...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
