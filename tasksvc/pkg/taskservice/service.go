package taskservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/tasksvc"
)

type Service interface {
	CreateTask(ctx context.Context, task tasksvc.Task) (string, error)
	Tasks(ctx context.Context, page, limit int) (tasksvc.Page, error)
	Task(ctx context.Context, taskID string) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch tasksvc.Patch) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, taskID string) (tasksvc.Task, error)
}

func New(t tasksvc.TaskRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks tasksvc.TaskRepository
}

func NewBasicService(t tasksvc.TaskRepository) Service {
	return basicService{tasks: t}
}

func (s basicService) CreateTask(ctx context.Context, task tasksvc.Task) (string, error) {
	now := time.Now().UTC()
	task.ID = ""
	task.CreatedAt = now
	task.UpdatedAt = now

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return "", fmt.Errorf("%w: %w", tasksvc.ErrCreateFailed, err)
	}
	return created.ID, nil
}

// Tasks returns one page in insertion order. TotalPages is total/limit
// without rounding, and an empty page is reported as ErrNoTasks.
func (s basicService) Tasks(ctx context.Context, page, limit int) (tasksvc.Page, error) {
	if page < 1 {
		page = tasksvc.DefaultPage
	}
	if limit < 1 {
		limit = tasksvc.DefaultLimit
	}

	// No store holds more than math.MaxInt documents, so a page whose
	// offset overflows is always empty.
	if page-1 > math.MaxInt/limit {
		return tasksvc.Page{}, tasksvc.ErrNoTasks
	}

	total, err := s.tasks.Count(ctx)
	if err != nil {
		return tasksvc.Page{}, err
	}

	tasks, err := s.tasks.FindPage(ctx, (page-1)*limit, limit)
	if err != nil {
		return tasksvc.Page{}, err
	}
	if len(tasks) == 0 {
		return tasksvc.Page{}, tasksvc.ErrNoTasks
	}

	return tasksvc.Page{
		TotalTasks:  total,
		CurrentPage: page,
		TotalPages:  float64(total) / float64(limit),
		Tasks:       tasks,
	}, nil
}

func (s basicService) Task(ctx context.Context, taskID string) (tasksvc.Task, error) {
	t, err := s.tasks.Find(ctx, taskID)
	if errors.Is(err, tasksvc.ErrNotFound) {
		return tasksvc.Task{}, tasksvc.ErrTaskUnavailable
	}
	return t, err
}

func (s basicService) UpdateTask(ctx context.Context, taskID string, patch tasksvc.Patch) (tasksvc.Task, error) {
	t, err := s.tasks.Update(ctx, taskID, patch)
	if errors.Is(err, tasksvc.ErrNotFound) {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}
	return t, err
}

func (s basicService) DeleteTask(ctx context.Context, taskID string) (tasksvc.Task, error) {
	t, err := s.tasks.Delete(ctx, taskID)
	if errors.Is(err, tasksvc.ErrNotFound) {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}
	return t, err
}
