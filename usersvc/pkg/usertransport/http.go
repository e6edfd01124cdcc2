package usertransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/ichigozero/todokit/httpapi"
	"github.com/ichigozero/todokit/usersvc/pkg/userendpoint"
)

func NewHTTPHandler(endpoints userendpoint.Set, logger log.Logger) http.Handler {
	options := httpapi.ServerOptions(transport.NewLogErrorHandler(logger))

	usersHandler := httptransport.NewServer(
		endpoints.UsersEndpoint,
		decodeHTTPUsersRequest,
		httpapi.EncodeResponse,
		options...,
	)

	registerHandler := httptransport.NewServer(
		endpoints.RegisterEndpoint,
		decodeHTTPRegisterRequest,
		httpapi.EncodeResponse,
		options...,
	)

	loginHandler := httptransport.NewServer(
		endpoints.LoginEndpoint,
		decodeHTTPLoginRequest,
		httpapi.EncodeResponse,
		options...,
	)

	r := mux.NewRouter()
	r.NotFoundHandler = httpapi.NotFound()
	r.MethodNotAllowedHandler = httpapi.MethodNotAllowed()

	r.Methods("GET").Path("/").Handler(usersHandler)
	r.Methods("POST").Path("/create").Handler(registerHandler)
	r.Methods("POST").Path("/login").Handler(loginHandler)

	return r
}

func decodeBody(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func decodeHTTPUsersRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return userendpoint.UsersRequest{}, nil
}

func decodeHTTPRegisterRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.RegisterRequest
	req.DecodeError.Err = decodeBody(r, &req)
	return &req, nil
}

func decodeHTTPLoginRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req userendpoint.LoginRequest
	req.DecodeError.Err = decodeBody(r, &req)
	return &req, nil
}
