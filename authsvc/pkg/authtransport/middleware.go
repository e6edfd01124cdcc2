package authtransport

import (
	"context"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	"github.com/golang-jwt/jwt/v4"
	"github.com/ichigozero/todokit/authsvc"
	"github.com/ichigozero/todokit/authsvc/pkg/authservice"
)

// NewAuthenticater binds the id claim of the parsed token to the context.
func NewAuthenticater() endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			claims, ok := ctx.Value(kitjwt.JWTClaimsContextKey).(*authsvc.Claims)
			if !ok {
				return nil, authsvc.ErrClaimsMissing
			}

			if claims.ID == "" {
				return nil, authsvc.ErrUnauthenticated
			}

			ctx = context.WithValue(ctx, authsvc.SubjectContextKey, claims.ID)

			return next(ctx, request)
		}
	}
}

// NewGuard verifies the HS256 bearer token against secret and binds its
// subject. Every failure before next is reached reports ErrUnauthenticated.
func NewGuard(secret []byte) endpoint.Middleware {
	parser := kitjwt.NewParser(
		authservice.Keyfunc(secret),
		jwt.SigningMethodHS256,
		authsvc.ClaimsFactory,
	)

	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			var reached bool
			inner := func(ctx context.Context, request interface{}) (interface{}, error) {
				reached = true
				return next(ctx, request)
			}

			response, err := parser(NewAuthenticater()(inner))(ctx, request)
			if err != nil && !reached {
				return nil, authsvc.ErrUnauthenticated
			}
			return response, err
		}
	}
}
