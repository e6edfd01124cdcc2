package userservice

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/authsvc/pkg/authservice"
	"github.com/ichigozero/todokit/usersvc"
	"golang.org/x/crypto/bcrypt"
)

const HashCost = 10

type Service interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Users(ctx context.Context) ([]usersvc.User, error)
}

func New(u usersvc.UserRepository, t authservice.Tokenizer, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(u, t)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	users     usersvc.UserRepository
	tokenizer authservice.Tokenizer
}

func NewBasicService(u usersvc.UserRepository, t authservice.Tokenizer) Service {
	return basicService{users: u, tokenizer: t}
}

func (s basicService) Register(ctx context.Context, name, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, usersvc.User{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", err
	}

	return user.ID, nil
}

// Login returns a bearer token for the user. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s basicService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, usersvc.ErrUserNotFound) {
		return "", usersvc.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", usersvc.ErrInvalidCredentials
	}

	return s.tokenizer.Generate(user.ID)
}

func (s basicService) Users(ctx context.Context) ([]usersvc.User, error) {
	return s.users.FindAll(ctx)
}
