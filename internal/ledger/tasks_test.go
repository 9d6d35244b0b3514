package ledger

import (
	"context"
	"math"
	"testing"

	"github.com/dukerupert/choreledger/internal/address"
	"github.com/dukerupert/choreledger/internal/model"
	"github.com/dukerupert/choreledger/internal/status"
)

func TestScenarioAddTask(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()

	task, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task1", Reward: 10, DueDate: 0})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if task.ID != 1 {
		t.Errorf("id = %d, want 1", task.ID)
	}

	tasks, err := l.ChildTasks(ctx, childC)
	if err != nil {
		t.Fatalf("child tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Completed {
		t.Error("new task should not be completed")
	}
	if tasks[0].Status != status.StatusOpen {
		t.Errorf("status = %q, want %q", tasks[0].Status, status.StatusOpen)
	}
}

func TestScenarioCompleteAndApprove(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()

	if _, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task1", Reward: 10}); err != nil {
		t.Fatalf("add task1: %v", err)
	}
	task, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task2", Reward: 10, DueDate: 1693436399})
	if err != nil {
		t.Fatalf("add task2: %v", err)
	}
	if task.ID != 2 {
		t.Fatalf("id = %d, want 2", task.ID)
	}

	done, err := l.CompleteTask(ctx, childC, 2)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed || done.CompletionDate <= 0 {
		t.Errorf("completed = %v, completion date = %d", done.Completed, done.CompletionDate)
	}

	before := balance(t, l, childC)
	approved, err := l.ApproveTaskCompletion(ctx, parentP, 2)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Approved || approved.ApprovalDate != fixtureNow.Unix() {
		t.Errorf("approved = %v, approval date = %d", approved.Approved, approved.ApprovalDate)
	}
	if got := balance(t, l, childC); got != before+10 {
		t.Errorf("balance = %d, want %d", got, before+10)
	}

	c, _ := l.Counters(ctx)
	want := model.TaskCounters{Added: 2, Completed: 1, Approved: 1, TokensEarned: 10}
	if c.Tasks != want {
		t.Errorf("task counters = %+v, want %+v", c.Tasks, want)
	}
}

func TestScenarioExpiredTask(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()

	task, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task4", Reward: 10, DueDate: 1689893999})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	_, err = l.CompleteTask(ctx, childC, task.ID)
	wantCode(t, err, CodeExpired)

	tasks, _ := l.ChildTasks(ctx, childC)
	if !tasks[0].Expired || tasks[0].Status != status.StatusExpired {
		t.Errorf("task = %+v", tasks[0])
	}
	group, _ := l.FamilyGroup(ctx, parentP)
	if group[0].Tasks.Expired != 1 {
		t.Errorf("expired tally = %d, want 1", group[0].Tasks.Expired)
	}
}

func TestTaskGuards(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()
	in := TaskInput{Description: "Task1", Reward: 10}

	_, err := l.AddTask(ctx, childC, childC, in)
	wantCode(t, err, CodeNotRegisteredAsParent)
	_, err = l.AddTask(ctx, parentP, childD, in)
	wantCode(t, err, CodeAddressNotAChild)
	_, err = l.AddTask(ctx, parentP, childC, TaskInput{Description: "", Reward: 10})
	wantCode(t, err, CodeInvalidArgument)
	_, err = l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task1", Reward: 0})
	wantCode(t, err, CodeInvalidArgument)

	if err := l.RegisterParent(ctx, parentQ, "Parent2"); err != nil {
		t.Fatalf("register Q: %v", err)
	}
	if err := l.AddChild(ctx, parentQ, childD, "Child2"); err != nil {
		t.Fatalf("add child D: %v", err)
	}
	_, err = l.AddTask(ctx, parentQ, childC, in)
	wantCode(t, err, CodeNotInYourFamilyGroup)

	task, err := l.AddTask(ctx, parentP, childC, in)
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	_, err = l.EditTask(ctx, parentP, 0, in)
	wantCode(t, err, CodeInvalidID)
	_, err = l.EditTask(ctx, parentP, 99, in)
	wantCode(t, err, CodeInvalidID)
	_, err = l.EditTask(ctx, parentQ, task.ID, in)
	wantCode(t, err, CodeNotInYourFamilyGroup)
	_, err = l.CompleteTask(ctx, parentP, task.ID)
	wantCode(t, err, CodeNotRegisteredAsChild)
	_, err = l.CompleteTask(ctx, childD, task.ID)
	wantCode(t, err, CodeNotYourTask)
	_, err = l.CancelTaskCompletion(ctx, childC, task.ID)
	wantCode(t, err, CodeNotYetCompleted)
	_, err = l.ApproveTaskCompletion(ctx, parentP, task.ID)
	wantCode(t, err, CodeNotYetCompleted)

	if _, err := l.CompleteTask(ctx, childC, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err = l.CompleteTask(ctx, childC, task.ID)
	wantCode(t, err, CodeAlreadyCompleted)
	_, err = l.EditTask(ctx, parentP, task.ID, in)
	wantCode(t, err, CodeAlreadyCompleted)
	wantCode(t, l.DeleteTask(ctx, parentP, task.ID), CodeAlreadyCompleted)

	if _, err := l.ApproveTaskCompletion(ctx, parentP, task.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err = l.ApproveTaskCompletion(ctx, parentP, task.ID)
	wantCode(t, err, CodeAlreadyApproved)
	_, err = l.CancelTaskCompletion(ctx, childC, task.ID)
	wantCode(t, err, CodeAlreadyApproved)
}

func TestEditTask(t *testing.T) {
	l, rec, _ := setupFamily(t)
	ctx := context.Background()

	task, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task1", Reward: 10})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	edited, err := l.EditTask(ctx, parentP, task.ID, TaskInput{Description: " Dishes ", Reward: 15, DueDate: 1700000000})
	if err != nil {
		t.Fatalf("edit task: %v", err)
	}
	if edited.Description != "Dishes" || edited.Reward != 15 || edited.DueDate != 1700000000 {
		t.Errorf("edited = %+v", edited)
	}
	if last := rec.events[len(rec.events)-1]; last.Name != model.EventTaskEdited {
		t.Errorf("last event = %q", last.Name)
	}
}

func TestCancelTaskCompletion(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()

	task, _ := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task1", Reward: 10})
	if _, err := l.CompleteTask(ctx, childC, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	reopened, err := l.CancelTaskCompletion(ctx, childC, task.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if reopened.Completed || reopened.CompletionDate != 0 {
		t.Errorf("reopened = %+v", reopened)
	}

	c, _ := l.Counters(ctx)
	if c.Tasks.Completed != 0 {
		t.Errorf("completed counter = %d, want 0", c.Tasks.Completed)
	}

	// Reopened tasks are editable again.
	if _, err := l.EditTask(ctx, parentP, task.ID, TaskInput{Description: "Task1b", Reward: 3}); err != nil {
		t.Fatalf("edit reopened: %v", err)
	}
}

func TestDeleteTaskNeverReusesID(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()

	first, _ := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task1", Reward: 10})
	if err := l.DeleteTask(ctx, parentP, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantCode(t, l.DeleteTask(ctx, parentP, first.ID), CodeInvalidID)
	_, err := l.CompleteTask(ctx, childC, first.ID)
	wantCode(t, err, CodeInvalidID)

	second, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task2", Reward: 10})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if second.ID != first.ID+1 {
		t.Errorf("id = %d, want %d", second.ID, first.ID+1)
	}

	tasks, _ := l.FamilyGroupTasks(ctx, parentP)
	if len(tasks) != 1 || tasks[0].ID != second.ID {
		t.Errorf("tasks = %+v", tasks)
	}
	c, _ := l.Counters(ctx)
	if c.Tasks.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", c.Tasks.Deleted)
	}
}

func TestFamilyGroupTasksOrderedByChild(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()
	if err := l.AddChild(ctx, parentP, childD, "Child2"); err != nil {
		t.Fatalf("add child: %v", err)
	}

	l.AddTask(ctx, parentP, childD, TaskInput{Description: "D1", Reward: 1})
	l.AddTask(ctx, parentP, childC, TaskInput{Description: "C1", Reward: 1})
	l.AddTask(ctx, parentP, childD, TaskInput{Description: "D2", Reward: 1})

	tasks, err := l.FamilyGroupTasks(ctx, parentP)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	got := []string{}
	for _, task := range tasks {
		got = append(got, task.Description)
	}
	want := []string{"C1", "D1", "D2"}
	if len(got) != len(want) {
		t.Fatalf("tasks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tasks[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	_, err = l.FamilyGroupTasks(ctx, childC)
	wantCode(t, err, CodeNotRegisteredAsParent)
	_, err = l.ChildTasks(ctx, parentP)
	wantCode(t, err, CodeNotRegisteredAsChild)
}

func TestBoundedTreasuryRollsBackApproval(t *testing.T) {
	l, rec, _ := setupLedger(t, Treasury{Supply: 15})
	ctx := context.Background()
	l.RegisterParent(ctx, parentP, "Parent1")
	l.AddChild(ctx, parentP, childC, "Child1")

	for i := 0; i < 2; i++ {
		task, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task", Reward: 10})
		if err != nil {
			t.Fatalf("add task: %v", err)
		}
		if _, err := l.CompleteTask(ctx, childC, task.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	if _, err := l.ApproveTaskCompletion(ctx, parentP, 1); err != nil {
		t.Fatalf("approve first: %v", err)
	}
	if got := balance(t, l, address.Treasury); got != 5 {
		t.Errorf("treasury = %d, want 5", got)
	}

	published := len(rec.events)
	_, err := l.ApproveTaskCompletion(ctx, parentP, 2)
	wantCode(t, err, CodeInsufficientBalance)

	tasks, _ := l.ChildTasks(ctx, childC)
	if tasks[1].Approved {
		t.Error("failed approval must not leave the task approved")
	}
	if got := balance(t, l, childC); got != 10 {
		t.Errorf("child balance = %d, want 10", got)
	}
	c, _ := l.Counters(ctx)
	if c.Tasks.Approved != 1 || c.Tasks.TokensEarned != 10 {
		t.Errorf("task counters = %+v", c.Tasks)
	}
	if len(rec.events) != published {
		t.Error("failed approval published events")
	}

	info, err := l.TokenInfo(ctx)
	if err != nil {
		t.Fatalf("token info: %v", err)
	}
	if !info.Bounded || info.Supply != 15 || info.Treasury != 5 || info.Circulating != 10 {
		t.Errorf("token info = %+v", info)
	}
}

func TestTaskRewardUpperBound(t *testing.T) {
	l, _, _ := setupFamily(t)
	ctx := context.Background()

	_, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task", Reward: math.MaxInt64})
	wantCode(t, err, CodeInvalidArgument)

	task, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task", Reward: MaxAmount})
	if err != nil {
		t.Fatalf("add task at max: %v", err)
	}
	_, err = l.EditTask(ctx, parentP, task.ID, TaskInput{Description: "Task", Reward: MaxAmount + 1})
	wantCode(t, err, CodeInvalidArgument)
}

// completedTask adds and completes a task worth reward for childC.
func completedTask(t *testing.T, l *Ledger, reward int64) int64 {
	t.Helper()
	ctx := context.Background()
	task, err := l.AddTask(ctx, parentP, childC, TaskInput{Description: "Task", Reward: reward})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if _, err := l.CompleteTask(ctx, childC, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return task.ID
}

func TestApprovalBalanceOverflowRejected(t *testing.T) {
	l, rec, db := setupFamily(t)
	ctx := context.Background()
	id := completedTask(t, l, 10)

	if _, err := db.Exec(`INSERT INTO balances (address, amount) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET amount = excluded.amount`, childC, int64(math.MaxInt64-5)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	published := len(rec.events)
	_, err := l.ApproveTaskCompletion(ctx, parentP, id)
	wantCode(t, err, CodeAmountOverflow)
	if got := CodeAmountOverflow.HTTPStatus(); got != 422 {
		t.Errorf("status = %d, want 422", got)
	}

	if got := balance(t, l, childC); got != math.MaxInt64-5 {
		t.Errorf("child balance = %d, want %d", got, int64(math.MaxInt64-5))
	}
	tasks, _ := l.ChildTasks(ctx, childC)
	if tasks[0].Approved {
		t.Error("rejected approval left the task approved")
	}
	c, err := l.Counters(ctx)
	if err != nil {
		t.Fatalf("counters: %v", err)
	}
	if c.Tasks.Approved != 0 || c.Tasks.TokensEarned != 0 {
		t.Errorf("task counters = %+v", c.Tasks)
	}
	if len(rec.events) != published {
		t.Error("rejected approval published events")
	}
}

func TestApprovalCounterOverflowRejected(t *testing.T) {
	l, _, db := setupFamily(t)
	ctx := context.Background()
	id := completedTask(t, l, 10)

	if _, err := db.Exec(`UPDATE counters SET value = ? WHERE name = 'tokens_earned'`, int64(math.MaxInt64-5)); err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	_, err := l.ApproveTaskCompletion(ctx, parentP, id)
	wantCode(t, err, CodeAmountOverflow)

	c, err := l.Counters(ctx)
	if err != nil {
		t.Fatalf("counters after rejected approval: %v", err)
	}
	if c.Tasks.TokensEarned != math.MaxInt64-5 || c.Tasks.Approved != 0 {
		t.Errorf("task counters = %+v", c.Tasks)
	}
	if got := balance(t, l, childC); got != 0 {
		t.Errorf("child balance = %d, want 0", got)
	}

	// A smaller approval still fits.
	if _, err := db.Exec(`UPDATE counters SET value = 0 WHERE name = 'tokens_earned'`); err != nil {
		t.Fatalf("reset counter: %v", err)
	}
	if _, err := l.ApproveTaskCompletion(ctx, parentP, id); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := balance(t, l, childC); got != 10 {
		t.Errorf("child balance = %d, want 10", got)
	}
}
