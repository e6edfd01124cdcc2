package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ichigozero/todokit/tasksvc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	libgorm "gorm.io/gorm"
)

type taskRepository struct {
	db *libgorm.DB
}

func NewTaskRepository(db *libgorm.DB) tasksvc.TaskRepository {
	return &taskRepository{db}
}

func Migrate(db *libgorm.DB) error {
	return db.AutoMigrate(&tasksvc.Task{})
}

func (t taskRepository) Create(ctx context.Context, task tasksvc.Task) (tasksvc.Task, error) {
	task.ID = primitive.NewObjectID().Hex()
	result := t.db.WithContext(ctx).Create(&task)
	if result.Error != nil {
		return tasksvc.Task{}, fmt.Errorf("insert task: %w", result.Error)
	}

	return task, nil
}

func (t taskRepository) Find(ctx context.Context, taskID string) (tasksvc.Task, error) {
	return t.find(t.db.WithContext(ctx), taskID)
}

func (t taskRepository) find(db *libgorm.DB, taskID string) (tasksvc.Task, error) {
	var task tasksvc.Task
	result := db.Where("id = ?", taskID).First(&task)
	if errors.Is(result.Error, libgorm.ErrRecordNotFound) {
		return tasksvc.Task{}, tasksvc.ErrNotFound
	}
	if result.Error != nil {
		return tasksvc.Task{}, fmt.Errorf("find task %s: %w", taskID, result.Error)
	}

	return task, nil
}

func (t taskRepository) FindPage(ctx context.Context, skip, limit int) ([]tasksvc.Task, error) {
	tasks := []tasksvc.Task{}
	result := t.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&tasks)
	if result.Error != nil {
		return nil, fmt.Errorf("find tasks: %w", result.Error)
	}

	return tasks, nil
}

func (t taskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	result := t.db.WithContext(ctx).Model(&tasksvc.Task{}).Count(&n)
	if result.Error != nil {
		return 0, fmt.Errorf("count tasks: %w", result.Error)
	}

	return n, nil
}

// Update writes only the patched columns, so concurrent patches to other
// fields are kept.
func (t taskRepository) Update(ctx context.Context, taskID string, patch tasksvc.Patch) (tasksvc.Task, error) {
	var task tasksvc.Task
	err := t.db.WithContext(ctx).Transaction(func(tx *libgorm.DB) error {
		result := tx.Model(&tasksvc.Task{}).
			Where("id = ?", taskID).
			Updates(updateColumns(patch, time.Now().UTC()))
		if result.Error != nil {
			return fmt.Errorf("update task %s: %w", taskID, result.Error)
		}
		if result.RowsAffected == 0 {
			return tasksvc.ErrNotFound
		}

		var err error
		task, err = t.find(tx, taskID)
		return err
	})
	if err != nil {
		return tasksvc.Task{}, err
	}

	return task, nil
}

func updateColumns(patch tasksvc.Patch, now time.Time) map[string]interface{} {
	columns := map[string]interface{}{"updated_at": now}
	if patch.Name != nil {
		columns["name"] = *patch.Name
	}
	if patch.Content != nil {
		columns["content"] = *patch.Content
	}
	if patch.Priority != nil {
		columns["priority"] = string(*patch.Priority)
	}
	if patch.Date != nil {
		columns["date"] = *patch.Date
	}
	return columns
}

func (t taskRepository) Delete(ctx context.Context, taskID string) (tasksvc.Task, error) {
	var task tasksvc.Task
	err := t.db.WithContext(ctx).Transaction(func(tx *libgorm.DB) error {
		var err error
		task, err = t.find(tx, taskID)
		if err != nil {
			return err
		}

		return tx.Delete(&tasksvc.Task{}, "id = ?", taskID).Error
	})
	if err != nil {
		return tasksvc.Task{}, err
	}

	return task, nil
}
