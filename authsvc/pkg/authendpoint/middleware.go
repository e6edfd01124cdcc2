package authendpoint

import (
	"context"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/authsvc"
)

// Owned is implemented by requests that name the user acting on a resource.
type Owned interface {
	OwnerID() string
}

// OwnerMiddleware rejects requests whose owner differs from the
// authenticated subject with denied. It must run after the guard.
func OwnerMiddleware(denied error) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			subject, ok := authsvc.Subject(ctx)
			if !ok {
				return nil, authsvc.ErrUnauthenticated
			}

			req, ok := request.(Owned)
			if !ok || req.OwnerID() != subject {
				return nil, denied
			}

			return next(ctx, request)
		}
	}
}

// LoggingMiddleware logs the duration and transport error of each call.
func LoggingMiddleware(logger log.Logger) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				logger.Log("transport_error", err, "took", time.Since(begin))
			}(time.Now())
			return next(ctx, request)
		}
	}
}
