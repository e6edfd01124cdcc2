package authtransport

import (
	"context"
	stdhttp "net/http"
	"strings"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	httptransport "github.com/go-kit/kit/transport/http"
)

const bearer = "Bearer "

// HTTPToContext moves the bearer token from the Authorization header into
// the request context. Only the exact "Bearer " prefix is accepted; anything
// else leaves the context untouched and the parser rejects the request.
func HTTPToContext() httptransport.RequestFunc {
	return func(ctx context.Context, r *stdhttp.Request) context.Context {
		token, ok := extractTokenFromAuthHeader(r.Header.Get("Authorization"))
		if !ok {
			return ctx
		}

		return context.WithValue(ctx, kitjwt.JWTContextKey, token)
	}
}

func extractTokenFromAuthHeader(val string) (string, bool) {
	if !strings.HasPrefix(val, bearer) {
		return "", false
	}

	parts := strings.Split(val, " ")
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
