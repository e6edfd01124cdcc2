package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/ichigozero/todokit/usersvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "todo.users"

func userDoc(id primitive.ObjectID, name, email string) bson.D {
	now := primitive.NewDateTimeFromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: email},
		{Key: "password", Value: "$2a$10$hash"},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, EnsureIndexes(ctx, mt.DB))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "createIndexes", evt.CommandName)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := repo.Create(ctx, usersvc.User{Name: "Jane", Email: "jane@example.com", Password: "hash"})
		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(created.ID))
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: todo.users index: email_1",
		}))

		_, err := repo.Create(ctx, usersvc.User{Name: "Jane", Email: "jane@example.com", Password: "hash"})
		assert.ErrorIs(mt, err, usersvc.ErrEmailTaken)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, "Jane", "jane@example.com")))

		u, err := repo.FindByEmail(ctx, "jane@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "$2a$10$hash", u.Password)
	})

	mt.Run("find by email missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, usersvc.ErrUserNotFound)
	})

	mt.Run("find all", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "Jane", "jane@example.com"),
			userDoc(primitive.NewObjectID(), "John", "john@example.com"),
		))

		users, err := repo.FindAll(ctx)
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "Jane", users[0].Name)
		assert.Equal(mt, "John", users[1].Name)
	})
}
