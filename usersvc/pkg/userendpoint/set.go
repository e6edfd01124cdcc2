package userendpoint

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/authsvc/pkg/authendpoint"
	"github.com/ichigozero/todokit/usersvc"
	"github.com/ichigozero/todokit/usersvc/pkg/userservice"
	"github.com/ichigozero/todokit/validator"
)

type Set struct {
	RegisterEndpoint endpoint.Endpoint
	LoginEndpoint    endpoint.Endpoint
	UsersEndpoint    endpoint.Endpoint
}

func New(svc userservice.Service, logger log.Logger) Set {
	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = MakeRegisterEndpoint(svc)
		registerEndpoint = validator.Middleware()(registerEndpoint)
		registerEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "Register"))(registerEndpoint)
	}
	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = MakeLoginEndpoint(svc)
		loginEndpoint = validator.Middleware()(loginEndpoint)
		loginEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "Login"))(loginEndpoint)
	}
	var usersEndpoint endpoint.Endpoint
	{
		usersEndpoint = MakeUsersEndpoint(svc)
		usersEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "Users"))(usersEndpoint)
	}
	return Set{
		RegisterEndpoint: registerEndpoint,
		LoginEndpoint:    loginEndpoint,
		UsersEndpoint:    usersEndpoint,
	}
}

func MakeRegisterEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(*RegisterRequest)
		id, err := s.Register(ctx, req.Name, req.Email, req.Password)
		return RegisterResponse{Message: "User created successfully..!", ID: id, Err: err}, nil
	}
}

func MakeLoginEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(*LoginRequest)
		token, err := s.Login(ctx, req.Email, req.Password)
		return LoginResponse{Message: "Login Successful", Token: token, Err: err}, nil
	}
}

func MakeUsersEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		users, err := s.Users(ctx)
		return UsersResponse{Users: users, Err: err}, nil
	}
}

var (
	_ endpoint.Failer = RegisterResponse{}
	_ endpoint.Failer = LoginResponse{}
	_ endpoint.Failer = UsersResponse{}
)

type RegisterRequest struct {
	validator.DecodeError `json:"-"`

	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	v := validator.New()
	if !r.Check(v) {
		return v.Validate()
	}

	v.Field("name", &r.Name).Trim().Rules(
		validator.Required("Name is required."),
		validator.MinLength(3, "Name must be at least 3 characters long."),
	)
	v.Field("email", &r.Email).Trim().Rules(
		validator.Required("Email is required."),
		validator.IsEmail("Invalid email address."),
	)
	v.Field("password", &r.Password).Rules(
		validator.Required("Password is required."),
		validator.MinLength(6, "Password must be at least 6 characters long."),
	)
	return v.Validate()
}

type RegisterResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Err     error  `json:"-"`
}

func (r RegisterResponse) Failed() error { return r.Err }

func (r RegisterResponse) StatusCode() int { return http.StatusCreated }

type LoginRequest struct {
	validator.DecodeError `json:"-"`

	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	v := validator.New()
	if !r.Check(v) {
		return v.Validate()
	}

	v.Field("email", &r.Email).Trim().Rules(
		validator.Required("Email is required."),
		validator.IsEmail("Invalid email address."),
	)
	v.Field("password", &r.Password).Rules(
		validator.Required("Password is required."),
		validator.MinLength(6, "Password must be at least 6 characters long."),
		validator.Matches(validator.Digit, "Password must contain at least one number."),
	)
	return v.Validate()
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Err     error  `json:"-"`
}

func (r LoginResponse) Failed() error { return r.Err }

func (r LoginResponse) StatusCode() int { return http.StatusCreated }

type UsersRequest struct{}

// UsersResponse encodes as a bare JSON array.
type UsersResponse struct {
	Users []usersvc.User
	Err   error
}

func (r UsersResponse) Failed() error { return r.Err }

func (r UsersResponse) StatusCode() int { return http.StatusCreated }

func (r UsersResponse) MarshalJSON() ([]byte, error) {
	if r.Users == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Users)
}
