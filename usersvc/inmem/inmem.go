// Package inmem provides an in-memory user store enforcing unique emails.
package inmem

import (
	"context"
	"sync"

	"github.com/ichigozero/todokit/usersvc"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	mtx     sync.RWMutex
	users   []usersvc.User
	byEmail map[string]int
}

func NewUserRepository() usersvc.UserRepository {
	return &userRepository{byEmail: make(map[string]int)}
}

func (r *userRepository) Create(_ context.Context, user usersvc.User) (usersvc.User, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return usersvc.User{}, usersvc.ErrEmailTaken
	}

	user.ID = primitive.NewObjectID().Hex()
	r.byEmail[user.Email] = len(r.users)
	r.users = append(r.users, user)
	return user, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (usersvc.User, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	i, ok := r.byEmail[email]
	if !ok {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	return r.users[i], nil
}

func (r *userRepository) FindAll(context.Context) ([]usersvc.User, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return append([]usersvc.User{}, r.users...), nil
}
