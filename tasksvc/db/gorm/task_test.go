package gorm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ichigozero/todokit/tasksvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDB(t *testing.T) *libgorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := libgorm.Open(sqlite.Open(dsn), &libgorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func sample(name string) tasksvc.Task {
	d, _ := tasksvc.ParseDate("2024-03-15")
	return tasksvc.Task{Name: name, Content: "content", Priority: tasksvc.PriorityLow, Date: d}
}

func TestTaskRepository_CreateFind(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newDB(t))

	created, err := repo.Create(ctx, sample("water plants"))
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)

	found, err := repo.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "water plants", found.Name)
	assert.Equal(t, tasksvc.PriorityLow, found.Priority)
	assert.Equal(t, "2024-03-15", found.Date.String())

	_, err = repo.Find(ctx, "507f1f77bcf86cd799439011")
	assert.ErrorIs(t, err, tasksvc.ErrNotFound)
}

func TestTaskRepository_Page(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newDB(t))

	for i := 1; i <= 7; i++ {
		_, err := repo.Create(ctx, sample(fmt.Sprintf("task %d", i)))
		require.NoError(t, err)
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	page, err := repo.FindPage(ctx, 5, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "task 6", page[0].Name)
	assert.Equal(t, "task 7", page[1].Name)

	page, err = repo.FindPage(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestTaskRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(newDB(t))

	created, err := repo.Create(ctx, sample("draft"))
	require.NoError(t, err)

	content := "final content"
	updated, err := repo.Update(ctx, created.ID, tasksvc.Patch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "draft", updated.Name)
	assert.Equal(t, "final content", updated.Content)

	found, err := repo.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "final content", found.Content)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, tasksvc.ErrNotFound)
	_, err = repo.Update(ctx, created.ID, tasksvc.Patch{Content: &content})
	assert.ErrorIs(t, err, tasksvc.ErrNotFound)
}

func TestTaskRepository_UpdateWritesOnlyPatchedColumns(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	repo := NewTaskRepository(db)

	created, err := repo.Create(ctx, sample("draft"))
	require.NoError(t, err)

	// Another writer changes content between the start of the update and
	// the write itself.
	var written []string
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:concurrent_writer", func(tx *libgorm.DB) {
		columns, ok := tx.Statement.Dest.(map[string]interface{})
		if !ok {
			return
		}
		for column := range columns {
			written = append(written, column)
		}
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"UPDATE tasks SET content = ? WHERE id = ?", "edited elsewhere", created.ID)
		if err != nil {
			tx.AddError(err)
		}
	}))

	name := "renamed"
	updated, err := repo.Update(ctx, created.ID, tasksvc.Patch{Name: &name})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"name", "updated_at"}, written)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "edited elsewhere", updated.Content)
	assert.Equal(t, tasksvc.PriorityLow, updated.Priority)
	assert.Equal(t, "2024-03-15", updated.Date.String())
}
