package taskendpoint

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/authsvc/pkg/authendpoint"
	"github.com/ichigozero/todokit/tasksvc"
	"github.com/ichigozero/todokit/tasksvc/pkg/taskservice"
	"github.com/ichigozero/todokit/validator"
)

type Set struct {
	CreateTaskEndpoint endpoint.Endpoint
	TasksEndpoint      endpoint.Endpoint
	TaskEndpoint       endpoint.Endpoint
	UpdateTaskEndpoint endpoint.Endpoint
	DeleteTaskEndpoint endpoint.Endpoint
}

// New wires the task endpoints. Ownership and input checks run here; the
// bearer token guard is added by the transport in front of the owned ones.
func New(svc taskservice.Service, logger log.Logger) Set {
	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = MakeCreateTaskEndpoint(svc)
		createTaskEndpoint = validator.Middleware()(createTaskEndpoint)
		createTaskEndpoint = authendpoint.OwnerMiddleware(tasksvc.ErrCreateNotAllowed)(createTaskEndpoint)
		createTaskEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "CreateTask"))(createTaskEndpoint)
	}
	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = MakeTasksEndpoint(svc)
		tasksEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "Tasks"))(tasksEndpoint)
	}
	var taskEndpoint endpoint.Endpoint
	{
		taskEndpoint = MakeTaskEndpoint(svc)
		taskEndpoint = validator.Middleware()(taskEndpoint)
		taskEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "Task"))(taskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = MakeUpdateTaskEndpoint(svc)
		updateTaskEndpoint = validator.Middleware()(updateTaskEndpoint)
		updateTaskEndpoint = authendpoint.OwnerMiddleware(tasksvc.ErrUpdateNotAllowed)(updateTaskEndpoint)
		updateTaskEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "UpdateTask"))(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = MakeDeleteTaskEndpoint(svc)
		deleteTaskEndpoint = validator.Middleware()(deleteTaskEndpoint)
		deleteTaskEndpoint = authendpoint.OwnerMiddleware(tasksvc.ErrDeleteNotAllowed)(deleteTaskEndpoint)
		deleteTaskEndpoint = authendpoint.LoggingMiddleware(log.With(logger, "method", "DeleteTask"))(deleteTaskEndpoint)
	}

	return Set{
		CreateTaskEndpoint: createTaskEndpoint,
		TasksEndpoint:      tasksEndpoint,
		TaskEndpoint:       taskEndpoint,
		UpdateTaskEndpoint: updateTaskEndpoint,
		DeleteTaskEndpoint: deleteTaskEndpoint,
	}
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(*CreateTaskRequest)
		date, err := tasksvc.ParseDate(req.Date)
		if err != nil {
			return nil, err
		}

		id, err := s.CreateTask(ctx, tasksvc.Task{
			Name:     req.Name,
			Content:  req.Content,
			Priority: tasksvc.Priority(req.Priority),
			Date:     date,
		})
		return CreateTaskResponse{Message: "Task created successfully", ID: id, Err: err}, nil
	}
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(*TasksRequest)
		p, err := s.Tasks(ctx, atoi(req.Page, tasksvc.DefaultPage), atoi(req.Limit, tasksvc.DefaultLimit))
		return TasksResponse{Page: p, Err: err}, nil
	}
}

func MakeTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(*TaskRequest)
		t, err := s.Task(ctx, req.TaskID)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(*UpdateTaskRequest)
		patch, err := req.patch()
		if err != nil {
			return nil, err
		}

		t, err := s.UpdateTask(ctx, req.TaskID, patch)
		return UpdateTaskResponse{Message: "Task updated successfully", Task: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(*DeleteTaskRequest)
		t, err := s.DeleteTask(ctx, req.TaskID)
		return DeleteTaskResponse{Message: "Task Deleted successfully", Task: t, Err: err}, nil
	}
}

func atoi(s *string, fallback int) int {
	if s == nil {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

var (
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = TaskResponse{}
	_ endpoint.Failer = UpdateTaskResponse{}
	_ endpoint.Failer = DeleteTaskResponse{}

	_ authendpoint.Owned = &CreateTaskRequest{}
	_ authendpoint.Owned = &UpdateTaskRequest{}
	_ authendpoint.Owned = &DeleteTaskRequest{}
)

type CreateTaskRequest struct {
	validator.DecodeError `json:"-"`

	UserID   string `json:"-"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	Priority string `json:"priority"`
	Date     string `json:"date"`
}

func (r *CreateTaskRequest) OwnerID() string { return r.UserID }

func (r *CreateTaskRequest) Validate() error {
	v := validator.New()
	if !r.Check(v) {
		return v.Validate()
	}

	v.Field("userId", &r.UserID).Trim().Rules(
		validator.Required("User ID is required."),
		validator.IsObjectID("Invalid User ID format."),
	)
	v.Field("name", &r.Name).Trim().Rules(
		validator.Required("Name is Required"),
		validator.MinLength(3, "Name must be at least 3 characters long"),
	)
	v.Field("content", &r.Content).Trim().Rules(
		validator.Required("Content is required"),
		validator.MinLength(3, "Content must be at least 3 characters long"),
	)
	v.Field("priority", &r.Priority).Trim().Rules(
		validator.Required("Priority should not be empty."),
		validator.OneOf(tasksvc.Priorities, "The priority should be low, medium or high"),
	)
	v.Field("date", &r.Date).Rules(
		validator.Required("Date should not be empty."),
		validator.IsDate(tasksvc.DateLayout, "Invalid Date Format, should be YYYY-MM-DD"),
	)
	return v.Validate()
}

type CreateTaskResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Err     error  `json:"-"`
}

func (r CreateTaskResponse) Failed() error { return r.Err }

// TasksRequest carries the raw query values. Missing, non-numeric and
// non-positive values fall back to DefaultPage and DefaultLimit.
type TasksRequest struct {
	Page  *string
	Limit *string
}

type TasksResponse struct {
	tasksvc.Page
	Err error `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

type TaskRequest struct {
	TaskID string
}

func (r *TaskRequest) Validate() error {
	v := validator.New()
	v.Field("taskId", &r.TaskID).Trim().Rules(
		validator.Required("Task ID is required."),
		validator.IsObjectID("Invalid Task ID format."),
	)
	return v.Validate()
}

type TaskResponse struct {
	tasksvc.Task
	Err error `json:"-"`
}

func (r TaskResponse) Failed() error { return r.Err }

type UpdateTaskRequest struct {
	validator.DecodeError `json:"-"`

	TaskID   string  `json:"-"`
	UserID   string  `json:"-"`
	Name     *string `json:"name,omitempty"`
	Content  *string `json:"content,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Date     *string `json:"date,omitempty"`
}

func (r *UpdateTaskRequest) OwnerID() string { return r.UserID }

func (r *UpdateTaskRequest) Validate() error {
	v := validator.New()
	if !r.Check(v) {
		return v.Validate()
	}

	v.Field("userId", &r.UserID).Trim().Rules(
		validator.Required("User ID is required."),
		validator.IsObjectID("Invalid User ID format."),
	)
	v.Field("taskId", &r.TaskID).Trim().Rules(
		validator.Required("Task ID is required."),
		validator.IsObjectID("Invalid Task ID format."),
	)
	v.Field("name", r.Name).Optional().Trim().Rules(
		validator.Required("Name should not be empty if provided."),
		validator.MinLength(3, "Name must be at least 3 characters long."),
	)
	v.Field("content", r.Content).Optional().Trim().Rules(
		validator.Required("Content should not be empty if provided."),
		validator.MinLength(3, "Content must be at least 3 characters long."),
	)
	v.Field("priority", r.Priority).Optional().Trim().Rules(
		validator.Required("Priority should not be empty if provided."),
		validator.OneOf(tasksvc.Priorities, "Priority must be one of: low, medium, or high."),
	)
	v.Field("date", r.Date).Optional().Rules(
		validator.Required("Date should not be empty if provided."),
		validator.IsDate(tasksvc.DateLayout, "Invalid date format. Expected YYYY-MM-DD."),
	)
	return v.Validate()
}

func (r *UpdateTaskRequest) patch() (tasksvc.Patch, error) {
	p := tasksvc.Patch{Name: r.Name, Content: r.Content}
	if r.Priority != nil {
		priority := tasksvc.Priority(*r.Priority)
		p.Priority = &priority
	}
	if r.Date != nil {
		d, err := tasksvc.ParseDate(*r.Date)
		if err != nil {
			return tasksvc.Patch{}, err
		}
		p.Date = &d
	}
	return p, nil
}

type UpdateTaskResponse struct {
	Message string       `json:"message"`
	Task    tasksvc.Task `json:"updateTask"`
	Err     error        `json:"-"`
}

func (r UpdateTaskResponse) Failed() error { return r.Err }

type DeleteTaskRequest struct {
	TaskID string
	UserID string
}

func (r *DeleteTaskRequest) OwnerID() string { return r.UserID }

func (r *DeleteTaskRequest) Validate() error {
	v := validator.New()
	v.Field("userId", &r.UserID).Trim().Rules(
		validator.Required("User ID is required."),
		validator.IsObjectID("Invalid User ID format."),
	)
	v.Field("taskId", &r.TaskID).Trim().Rules(
		validator.Required("Task ID is required."),
		validator.IsObjectID("Invalid Task ID format."),
	)
	return v.Validate()
}

type DeleteTaskResponse struct {
	Message string       `json:"message"`
	Task    tasksvc.Task `json:"deletedTask"`
	Err     error        `json:"-"`
}

func (r DeleteTaskResponse) Failed() error { return r.Err }
