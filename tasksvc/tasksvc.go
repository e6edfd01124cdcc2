package tasksvc

import (
	"context"
	"errors"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var Priorities = []string{string(PriorityHigh), string(PriorityMedium), string(PriorityLow)}

// Task carries no owner reference; ownership is checked per request only.
type Task struct {
	ID        string    `json:"id" gorm:"primaryKey;size:24"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Priority  Priority  `json:"priority"`
	Date      Date      `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch holds the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string
	Content  *string
	Priority *Priority
	Date     *Date
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Content == nil && p.Priority == nil && p.Date == nil
}

// Apply copies the supplied fields onto t and bumps UpdatedAt.
func (p Patch) Apply(t *Task, now time.Time) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	t.UpdatedAt = now
}

type Page struct {
	TotalTasks  int64   `json:"totalTasks"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  float64 `json:"totalPages"`
	Tasks       []Task  `json:"tasks"`
}

type TaskRepository interface {
	Create(ctx context.Context, task Task) (Task, error)
	Find(ctx context.Context, taskID string) (Task, error)
	FindPage(ctx context.Context, skip, limit int) ([]Task, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, taskID string, patch Patch) (Task, error)
	Delete(ctx context.Context, taskID string) (Task, error)
}

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

var (
	ErrNotFound         = errors.New("task does not exist")
	ErrTaskUnavailable  = errors.New("Unable to get Task")
	ErrTaskNotFound     = errors.New("Task not found")
	ErrNoTasks          = errors.New("Something went wrong")
	ErrCreateFailed     = errors.New("Error while creating task")
	ErrCreateNotAllowed = errors.New("Not Allowed to create task")
	ErrUpdateNotAllowed = errors.New("Not Allowed to Update task")
	ErrDeleteNotAllowed = errors.New("Not Allowed to delete task")
)
