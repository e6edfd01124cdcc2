// Package inmem provides an in-memory task store with the same identifier
// and ordering rules as the database-backed ones.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/ichigozero/todokit/tasksvc"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type taskRepository struct {
	mtx   sync.RWMutex
	tasks map[string]tasksvc.Task
	order []string
}

func NewTaskRepository() tasksvc.TaskRepository {
	return &taskRepository{tasks: make(map[string]tasksvc.Task)}
}

func (r *taskRepository) Create(_ context.Context, task tasksvc.Task) (tasksvc.Task, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	task.ID = primitive.NewObjectID().Hex()
	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)
	return task, nil
}

func (r *taskRepository) Find(_ context.Context, taskID string) (tasksvc.Task, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}
	return t, nil
}

func (r *taskRepository) FindPage(_ context.Context, skip, limit int) ([]tasksvc.Task, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	tasks := []tasksvc.Task{}
	for i := max(skip, 0); i < len(r.order) && len(tasks) < limit; i++ {
		tasks = append(tasks, r.tasks[r.order[i]])
	}
	return tasks, nil
}

func (r *taskRepository) Count(context.Context) (int64, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return int64(len(r.order)), nil
}

func (r *taskRepository) Update(_ context.Context, taskID string, patch tasksvc.Patch) (tasksvc.Task, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}

	patch.Apply(&t, time.Now().UTC())
	r.tasks[taskID] = t
	return t, nil
}

func (r *taskRepository) Delete(_ context.Context, taskID string) (tasksvc.Task, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}

	delete(r.tasks, taskID)
	for i, id := range r.order {
		if id == taskID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return t, nil
}
