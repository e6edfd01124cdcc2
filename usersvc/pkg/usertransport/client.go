package usertransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/ichigozero/todokit/httpapi"
	"github.com/ichigozero/todokit/usersvc/pkg/userendpoint"
	"github.com/sony/gobreaker"
)

// PathPrefix is where the user routes are mounted on the API server.
const PathPrefix = "/api/users"

// NewHTTPClient returns endpoints calling the user routes mounted at instance.
func NewHTTPClient(instance string) (userendpoint.Set, error) {
	u, err := httpapi.BaseURL(instance)
	if err != nil {
		return userendpoint.Set{}, err
	}

	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = httptransport.NewClient(
			"POST",
			u,
			encodeHTTPRegisterRequest,
			decodeHTTPRegisterResponse,
		).Endpoint()
		registerEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Register",
			Timeout: 30 * time.Second,
		}))(registerEndpoint)
	}

	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = httptransport.NewClient(
			"POST",
			u,
			encodeHTTPLoginRequest,
			decodeHTTPLoginResponse,
		).Endpoint()
		loginEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Login",
			Timeout: 30 * time.Second,
		}))(loginEndpoint)
	}

	var usersEndpoint endpoint.Endpoint
	{
		usersEndpoint = httptransport.NewClient(
			"GET",
			u,
			encodeHTTPUsersRequest,
			decodeHTTPUsersResponse,
		).Endpoint()
		usersEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "Users",
			Timeout: 30 * time.Second,
		}))(usersEndpoint)
	}

	return userendpoint.Set{
		RegisterEndpoint: registerEndpoint,
		LoginEndpoint:    loginEndpoint,
		UsersEndpoint:    usersEndpoint,
	}, nil
}

func encodeHTTPRegisterRequest(ctx context.Context, r *http.Request, request interface{}) error {
	r.URL.Path += "/create"
	return httptransport.EncodeJSONRequest(ctx, r, request.(*userendpoint.RegisterRequest))
}

func encodeHTTPLoginRequest(ctx context.Context, r *http.Request, request interface{}) error {
	r.URL.Path += "/login"
	return httptransport.EncodeJSONRequest(ctx, r, request.(*userendpoint.LoginRequest))
}

func encodeHTTPUsersRequest(_ context.Context, r *http.Request, _ interface{}) error {
	r.URL.Path += "/"
	return nil
}

func decodeHTTPRegisterResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp userendpoint.RegisterResponse
	failed, err := httpapi.DecodeResponse(r, &resp)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}

func decodeHTTPLoginResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp userendpoint.LoginResponse
	failed, err := httpapi.DecodeResponse(r, &resp)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}

func decodeHTTPUsersResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp userendpoint.UsersResponse
	failed, err := httpapi.DecodeResponse(r, &resp.Users)
	if err != nil {
		return nil, err
	}
	resp.Err = failed
	return resp, nil
}
