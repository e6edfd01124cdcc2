package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ichigozero/todokit/usersvc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	libgorm "gorm.io/gorm"
)

type userRepository struct {
	db *libgorm.DB
}

// NewUserRepository expects db to be opened with TranslateError so that
// unique violations surface as gorm.ErrDuplicatedKey.
func NewUserRepository(db *libgorm.DB) usersvc.UserRepository {
	return &userRepository{db}
}

func Migrate(db *libgorm.DB) error {
	return db.AutoMigrate(&usersvc.User{})
}

func (u *userRepository) Create(ctx context.Context, user usersvc.User) (usersvc.User, error) {
	user.ID = primitive.NewObjectID().Hex()
	result := u.db.WithContext(ctx).Create(&user)
	if errors.Is(result.Error, libgorm.ErrDuplicatedKey) {
		return usersvc.User{}, usersvc.ErrEmailTaken
	}
	if result.Error != nil {
		return usersvc.User{}, fmt.Errorf("insert user: %w", result.Error)
	}

	return user, nil
}

func (u *userRepository) FindByEmail(ctx context.Context, email string) (usersvc.User, error) {
	var user usersvc.User
	result := u.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if errors.Is(result.Error, libgorm.ErrRecordNotFound) {
		return usersvc.User{}, usersvc.ErrUserNotFound
	}
	if result.Error != nil {
		return usersvc.User{}, fmt.Errorf("find user: %w", result.Error)
	}

	return user, nil
}

func (u *userRepository) FindAll(ctx context.Context) ([]usersvc.User, error) {
	users := []usersvc.User{}
	result := u.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&users)
	if result.Error != nil {
		return nil, fmt.Errorf("find users: %w", result.Error)
	}

	return users, nil
}
