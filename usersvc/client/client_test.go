package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/kit/sd"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/authsvc/pkg/authservice"
	"github.com/ichigozero/todokit/httpapi"
	"github.com/ichigozero/todokit/usersvc/inmem"
	"github.com/ichigozero/todokit/usersvc/pkg/userendpoint"
	"github.com/ichigozero/todokit/usersvc/pkg/userservice"
	"github.com/ichigozero/todokit/usersvc/pkg/usertransport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEndpoints(t *testing.T) userendpoint.Set {
	t.Helper()

	logger := log.NewNopLogger()
	svc := userservice.New(inmem.NewUserRepository(), authservice.NewTokenizer([]byte("secret")), logger)
	handler := usertransport.NewHTTPHandler(userendpoint.New(svc, logger), logger)

	mux := http.NewServeMux()
	mux.Handle(usertransport.PathPrefix+"/", httpapi.StripPrefix(usertransport.PathPrefix, handler))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewWithInstancer(sd.FixedInstancer{server.URL}, logger, 3, time.Second)
}

func TestClient_RegisterLoginList(t *testing.T) {
	endpoints := newEndpoints(t)
	ctx := context.Background()

	resp, err := endpoints.UsersEndpoint(ctx, userendpoint.UsersRequest{})
	require.NoError(t, err)
	users := resp.(userendpoint.UsersResponse)
	require.NoError(t, users.Failed())
	assert.Empty(t, users.Users)

	resp, err = endpoints.RegisterEndpoint(ctx, &userendpoint.RegisterRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	registered := resp.(userendpoint.RegisterResponse)
	require.NoError(t, registered.Failed())
	assert.Equal(t, "User created successfully..!", registered.Message)
	require.NotEmpty(t, registered.ID)

	resp, err = endpoints.LoginEndpoint(ctx, &userendpoint.LoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	login := resp.(userendpoint.LoginResponse)
	require.NoError(t, login.Failed())
	assert.Equal(t, "Login Successful", login.Message)
	assert.NotEmpty(t, login.Token)

	resp, err = endpoints.UsersEndpoint(ctx, userendpoint.UsersRequest{})
	require.NoError(t, err)
	users = resp.(userendpoint.UsersResponse)
	require.NoError(t, users.Failed())
	require.Len(t, users.Users, 1)
	assert.Equal(t, registered.ID, users.Users[0].ID)
	assert.Equal(t, "alice@example.com", users.Users[0].Email)
	assert.Empty(t, users.Users[0].Password)
}

func TestClient_ErrorResponses(t *testing.T) {
	endpoints := newEndpoints(t)
	ctx := context.Background()

	register := &userendpoint.RegisterRequest{Name: "bob", Email: "bob@example.com", Password: "hunter22"}
	_, err := endpoints.RegisterEndpoint(ctx, register)
	require.NoError(t, err)

	resp, err := endpoints.RegisterEndpoint(ctx, &userendpoint.RegisterRequest{
		Name:     "bob",
		Email:    "bob@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	var serr *httpapi.StatusError
	require.ErrorAs(t, resp.(userendpoint.RegisterResponse).Failed(), &serr)
	assert.Equal(t, http.StatusConflict, serr.Code)

	resp, err = endpoints.LoginEndpoint(ctx, &userendpoint.LoginRequest{
		Email:    "bob@example.com",
		Password: "wrongpass1",
	})
	require.NoError(t, err)
	require.ErrorAs(t, resp.(userendpoint.LoginResponse).Failed(), &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Code)
	assert.Equal(t, "Invalid Credentials", serr.Message)
}
