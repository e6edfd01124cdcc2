package inmem

import (
	"context"
	"testing"

	"github.com/ichigozero/todokit/usersvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewUserRepository()

	created, err := repo.Create(ctx, usersvc.User{Name: "Jane", Email: "jane@example.com", Password: "hash"})
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)

	_, err = repo.Create(ctx, usersvc.User{Name: "Other", Email: "jane@example.com"})
	assert.ErrorIs(t, err, usersvc.ErrEmailTaken)

	found, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, usersvc.ErrUserNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []usersvc.User{created}, all)
}
