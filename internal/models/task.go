package models

import "time"

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

const DefaultCategory = "general"

type Task struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"ownerId"`
	Title     string       `json:"title"`
	Details   string       `json:"details"`
	Status    TaskStatus   `json:"status"`
	Priority  TaskPriority `json:"priority"`
	Category  string       `json:"category"`
	Deadline  *time.Time   `json:"deadline"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// TaskData is a validated, normalized task payload. Ownership and timestamps
// are assigned by the repository, never by the caller.
type TaskData struct {
	Title    string
	Details  string
	Status   TaskStatus
	Priority TaskPriority
	Category string
	Deadline *time.Time
}
