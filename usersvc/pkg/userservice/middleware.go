package userservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/usersvc"
)

type Middleware func(Service) Service

// LoggingMiddleware never logs passwords or issued tokens.
func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) Register(ctx context.Context, name, email, password string) (id string, err error) {
	defer func() {
		mw.logger.Log("method", "Register", "name", name, "email", email, "id", id, "err", err)
	}()
	return mw.next.Register(ctx, name, email, password)
}

func (mw loggingMiddleware) Login(ctx context.Context, email, password string) (token string, err error) {
	defer func() {
		mw.logger.Log("method", "Login", "email", email, "err", err)
	}()
	return mw.next.Login(ctx, email, password)
}

func (mw loggingMiddleware) Users(ctx context.Context) (users []usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "Users", "count", len(users), "err", err)
	}()
	return mw.next.Users(ctx)
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) Register(ctx context.Context, name, email, password string) (string, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "register").Add(1)
		mw.requestLatency.With("method", "register").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Register(ctx, name, email, password)
}

func (mw instrumentingMiddleware) Login(ctx context.Context, email, password string) (string, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "login").Add(1)
		mw.requestLatency.With("method", "login").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Login(ctx, email, password)
}

func (mw instrumentingMiddleware) Users(ctx context.Context) ([]usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "users").Add(1)
		mw.requestLatency.With("method", "users").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Users(ctx)
}
