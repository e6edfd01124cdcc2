package tasktransport

import (
	"context"
	"net/http"
	"time"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/ichigozero/todokit/httpapi"
	"github.com/ichigozero/todokit/tasksvc/pkg/taskendpoint"
	"github.com/sony/gobreaker"
)

// PathPrefix is where the task routes are mounted on the API server.
const PathPrefix = "/api/tasks"

// NewHTTPClient returns endpoints calling the task routes mounted at
// instance. The bearer token is taken from the kitjwt.JWTContextKey value of
// the call context. Error responses come back as a *httpapi.StatusError in
// the response's Failed method, not as the endpoint error.
func NewHTTPClient(instance string) (taskendpoint.Set, error) {
	u, err := httpapi.BaseURL(instance)
	if err != nil {
		return taskendpoint.Set{}, err
	}

	options := []httptransport.ClientOption{
		httptransport.ClientBefore(kitjwt.ContextToHTTP()),
	}

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = httptransport.NewClient(
			"POST",
			u,
			encodeHTTPCreateTaskRequest,
			decodeHTTPCreateTaskResponse,
			options...,
		).Endpoint()
		createTaskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "CreateTask",
			Timeout: 30 * time.Second,
		}))(createTaskEndpoint)
	}

	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = httptransport.NewClient(
			"GET",
			u,
			encodeHTTPTasksRequest,
			decodeHTTPTasksResponse,
			options...,
		).Endpoint()
		tasksEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Tasks",
			Timeout: 30 * time.Second,
		}))(tasksEndpoint)
	}

	var taskEndpoint endpoint.Endpoint
	{
		taskEndpoint = httptransport.NewClient(
			"GET",
			u,
			encodeHTTPTaskRequest,
			decodeHTTPTaskResponse,
			options...,
		).Endpoint()
		taskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Task",
			Timeout: 30 * time.Second,
		}))(taskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = httptransport.NewClient(
			"PATCH",
			u,
			encodeHTTPUpdateTaskRequest,
			decodeHTTPUpdateTaskResponse,
			options...,
		).Endpoint()
		updateTaskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "UpdateTask",
			Timeout: 30 * time.Second,
		}))(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = httptransport.NewClient(
			"DELETE",
			u,
			encodeHTTPDeleteTaskRequest,
			decodeHTTPDeleteTaskResponse,
			options...,
		).Endpoint()
		deleteTaskEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "DeleteTask",
			Timeout: 30 * time.Second,
		}))(deleteTaskEndpoint)
	}

	return taskendpoint.Set{
		CreateTaskEndpoint: createTaskEndpoint,
		TasksEndpoint:      tasksEndpoint,
		TaskEndpoint:       taskEndpoint,
		UpdateTaskEndpoint: updateTaskEndpoint,
		DeleteTaskEndpoint: deleteTaskEndpoint,
	}, nil
}

func encodeHTTPCreateTaskRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(*taskendpoint.CreateTaskRequest)
	r.URL.Path += "/create/" + req.UserID
	return httptransport.EncodeJSONRequest(ctx, r, req)
}

func encodeHTTPTasksRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(*taskendpoint.TasksRequest)
	r.URL.Path += "/get_all"

	q := r.URL.Query()
	if req.Page != nil {
		q.Set("page", *req.Page)
	}
	if req.Limit != nil {
		q.Set("limit", *req.Limit)
	}
	r.URL.RawQuery = q.Encode()

	return nil
}

func encodeHTTPTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(*taskendpoint.TaskRequest)
	r.URL.Path += "/get_one/" + req.TaskID
	return nil
}

func encodeHTTPUpdateTaskRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(*taskendpoint.UpdateTaskRequest)
	r.URL.Path += "/update/" + req.TaskID + "/" + req.UserID
	return httptransport.EncodeJSONRequest(ctx, r, req)
}

func encodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(*taskendpoint.DeleteTaskRequest)
	r.URL.Path += "/del/" + req.TaskID + "/" + req.UserID
	return nil
}

func decodeHTTPCreateTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.CreateTaskResponse
	failed, err := httpapi.DecodeResponse(r, &resp)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}

func decodeHTTPTasksResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.TasksResponse
	failed, err := httpapi.DecodeResponse(r, &resp)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}

func decodeHTTPTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.TaskResponse
	failed, err := httpapi.DecodeResponse(r, &resp)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}

func decodeHTTPUpdateTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.UpdateTaskResponse
	failed, err := httpapi.DecodeResponse(r, &resp)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}

func decodeHTTPDeleteTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.DeleteTaskResponse
	failed, err := httpapi.DecodeResponse(r, &resp)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}
