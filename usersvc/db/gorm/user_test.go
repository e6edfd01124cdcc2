package gorm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ichigozero/todokit/usersvc"
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

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newDB(t))

	created, err := repo.Create(ctx, usersvc.User{Name: "Jane", Email: "jane@example.com", Password: "hash"})
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)

	_, err = repo.Create(ctx, usersvc.User{Name: "Copy", Email: "jane@example.com", Password: "hash"})
	assert.ErrorIs(t, err, usersvc.ErrEmailTaken)

	found, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.Password)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, usersvc.ErrUserNotFound)

	_, err = repo.Create(ctx, usersvc.User{Name: "John", Email: "john@example.com", Password: "hash"})
	require.NoError(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Jane", all[0].Name)
	assert.Equal(t, "John", all[1].Name)
}
