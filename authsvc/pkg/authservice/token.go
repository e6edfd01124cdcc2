package authservice

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ichigozero/todokit/authsvc"
)

type Tokenizer interface {
	Generate(userID string) (string, error)
}

type tokenizer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenizer(secret []byte) Tokenizer {
	return NewTokenizerWithExpiry(secret, AccessTokenExpiry())
}

func NewTokenizerWithExpiry(secret []byte, expiry time.Duration) Tokenizer {
	return &tokenizer{secret: secret, expiry: expiry}
}

func (t *tokenizer) Generate(userID string) (string, error) {
	now := time.Now()
	claims := authsvc.Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Keyfunc returns the verification key for tokens issued by a tokenizer
// built with the same secret.
func Keyfunc(secret []byte) jwt.Keyfunc {
	return func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}
}

func AccessTokenExpiry() time.Duration {
	return time.Hour
}
