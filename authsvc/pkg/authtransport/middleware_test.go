package authtransport

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/golang-jwt/jwt/v4"
	"github.com/ichigozero/todokit/authsvc"
	"github.com/ichigozero/todokit/authsvc/pkg/authservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func subjectEcho(ctx context.Context, _ interface{}) (interface{}, error) {
	id, _ := authsvc.Subject(ctx)
	return id, nil
}

func withHeader(value string) context.Context {
	r := httptest.NewRequest("GET", "/", nil)
	if value != "" {
		r.Header.Set("Authorization", value)
	}
	return HTTPToContext()(context.Background(), r)
}

func TestHTTPToContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"missing", "", "", false},
		{"lowercase scheme", "bearer abc", "", false},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", false},
		{"empty token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, ok := withHeader(tt.header).Value(kitjwt.JWTContextKey).(string)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestGuard_BindsSubject(t *testing.T) {
	t.Parallel()

	token, err := authservice.NewTokenizer(secret).Generate("507f1f77bcf86cd799439011")
	require.NoError(t, err)

	resp, err := NewGuard(secret)(subjectEcho)(withHeader("Bearer "+token), nil)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", resp)
}

func TestGuard_Rejects(t *testing.T) {
	t.Parallel()

	good, err := authservice.NewTokenizer(secret).Generate("u1")
	require.NoError(t, err)
	expired, err := authservice.NewTokenizerWithExpiry(secret, -time.Minute).Generate("u1")
	require.NoError(t, err)
	foreign, err := authservice.NewTokenizer([]byte("other")).Generate("u1")
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, authsvc.Claims{ID: "u1"}).SignedString(secret)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authsvc.Claims{}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token " + good},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"bad signature", "Bearer " + foreign},
		{"wrong method", "Bearer " + hs512},
		{"no subject", "Bearer " + noSubject},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			next := func(context.Context, interface{}) (interface{}, error) {
				called = true
				return nil, nil
			}

			_, err := NewGuard(secret)(next)(withHeader(tt.header), nil)
			assert.ErrorIs(t, err, authsvc.ErrUnauthenticated)
			assert.False(t, called)
		})
	}
}

func TestGuard_PassesThroughDownstreamErrors(t *testing.T) {
	t.Parallel()

	token, err := authservice.NewTokenizer(secret).Generate("u1")
	require.NoError(t, err)

	boom := errors.New("boom")
	next := func(context.Context, interface{}) (interface{}, error) {
		return nil, boom
	}

	_, err = NewGuard(secret)(next)(withHeader("Bearer "+token), nil)
	assert.ErrorIs(t, err, boom)
}
