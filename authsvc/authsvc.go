package authsvc

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the bearer token payload: {"id": <userId>, "exp": ...}.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

func ClaimsFactory() jwt.Claims {
	return &Claims{}
}

type contextKey string

const SubjectContextKey contextKey = "Subject"

// Subject returns the authenticated user id bound by the guard.
func Subject(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SubjectContextKey).(string)
	return id, ok && id != ""
}

var (
	ErrUnauthenticated = errors.New("not Authenticated")
	ErrClaimsMissing   = errors.New("JWT claims was not passed through the context")
)
