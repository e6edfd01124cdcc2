package tasktransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/ichigozero/todokit/authsvc/pkg/authtransport"
	"github.com/ichigozero/todokit/httpapi"
	"github.com/ichigozero/todokit/tasksvc/pkg/taskendpoint"
)

// NewHTTPHandler serves the task routes relative to their mount point.
// Creating, updating and deleting require a bearer token signed with secret.
func NewHTTPHandler(endpoints taskendpoint.Set, secret []byte, logger log.Logger) http.Handler {
	options := httpapi.ServerOptions(transport.NewLogErrorHandler(logger))
	guarded := append(options, httptransport.ServerBefore(authtransport.HTTPToContext()))
	guard := authtransport.NewGuard(secret)

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = endpoints.CreateTaskEndpoint
		createTaskEndpoint = guard(createTaskEndpoint)
	}

	createTaskHandler := httptransport.NewServer(
		createTaskEndpoint,
		decodeHTTPCreateTaskRequest,
		httpapi.EncodeResponse,
		guarded...,
	)

	tasksHandler := httptransport.NewServer(
		endpoints.TasksEndpoint,
		decodeHTTPTasksRequest,
		httpapi.EncodeResponse,
		options...,
	)

	taskHandler := httptransport.NewServer(
		endpoints.TaskEndpoint,
		decodeHTTPTaskRequest,
		httpapi.EncodeResponse,
		options...,
	)

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = endpoints.UpdateTaskEndpoint
		updateTaskEndpoint = guard(updateTaskEndpoint)
	}

	updateTaskHandler := httptransport.NewServer(
		updateTaskEndpoint,
		decodeHTTPUpdateTaskRequest,
		httpapi.EncodeResponse,
		guarded...,
	)

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = endpoints.DeleteTaskEndpoint
		deleteTaskEndpoint = guard(deleteTaskEndpoint)
	}

	deleteTaskHandler := httptransport.NewServer(
		deleteTaskEndpoint,
		decodeHTTPDeleteTaskRequest,
		httpapi.EncodeResponse,
		guarded...,
	)

	r := mux.NewRouter()
	r.NotFoundHandler = httpapi.NotFound()
	r.MethodNotAllowedHandler = httpapi.MethodNotAllowed()

	r.Methods("POST").Path("/create/{userId}").Handler(createTaskHandler)
	r.Methods("GET").Path("/get_all").Handler(tasksHandler)
	r.Methods("GET").Path("/get_one/{taskId}").Handler(taskHandler)
	r.Methods("PATCH").Path("/update/{taskId}/{userId}").Handler(updateTaskHandler)
	r.Methods("DELETE").Path("/del/{taskId}/{userId}").Handler(deleteTaskHandler)

	return r
}

// decodeBody fills v from the JSON body. An empty body leaves v untouched;
// any other decoding failure is returned for the validator to report.
func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func decodeHTTPCreateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	userID, ok := mux.Vars(r)["userId"]
	if !ok {
		return nil, httpapi.ErrBadRouting
	}

	var req taskendpoint.CreateTaskRequest
	req.DecodeError.Err = decodeBody(r, &req)
	req.UserID = userID

	return &req, nil
}

func decodeHTTPTasksRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req taskendpoint.TasksRequest

	q := r.URL.Query()
	if q.Has("page") {
		page := q.Get("page")
		req.Page = &page
	}
	if q.Has("limit") {
		limit := q.Get("limit")
		req.Limit = &limit
	}

	return &req, nil
}

func decodeHTTPTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	taskID, ok := mux.Vars(r)["taskId"]
	if !ok {
		return nil, httpapi.ErrBadRouting
	}

	return &taskendpoint.TaskRequest{TaskID: taskID}, nil
}

func decodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	taskID, ok := vars["taskId"]
	if !ok {
		return nil, httpapi.ErrBadRouting
	}
	userID, ok := vars["userId"]
	if !ok {
		return nil, httpapi.ErrBadRouting
	}

	var req taskendpoint.UpdateTaskRequest
	req.DecodeError.Err = decodeBody(r, &req)
	req.TaskID = taskID
	req.UserID = userID

	return &req, nil
}

func decodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	taskID, ok := vars["taskId"]
	if !ok {
		return nil, httpapi.ErrBadRouting
	}
	userID, ok := vars["userId"]
	if !ok {
		return nil, httpapi.ErrBadRouting
	}

	return &taskendpoint.DeleteTaskRequest{TaskID: taskID, UserID: userID}, nil
}
