package model

// Task is a chore assigned to a child. Dates are unix seconds, 0 when unset.
type Task struct {
	ID             int64  `json:"id"`
	ChildAddress   string `json:"child"`
	EnrollmentID   int64  `json:"-"`
	Description    string `json:"description"`
	Reward         int64  `json:"reward"`
	DueDate        int64  `json:"due_date"`
	Completed      bool   `json:"completed"`
	CompletionDate int64  `json:"completion_date"`
	Approved       bool   `json:"approved"`
	ApprovalDate   int64  `json:"approval_date"`
}
