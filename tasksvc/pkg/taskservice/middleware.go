package taskservice

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/log"
	"github.com/ichigozero/todokit/tasksvc"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) CreateTask(ctx context.Context, task tasksvc.Task) (id string, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"name", task.Name,
			"priority", task.Priority,
			"date", task.Date.String(),
			"id", id,
			"err", err,
		)
	}()
	return mw.next.CreateTask(ctx, task)
}

func (mw loggingMiddleware) Tasks(ctx context.Context, page, limit int) (p tasksvc.Page, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Tasks",
			"page", page,
			"limit", limit,
			"total", p.TotalTasks,
			"err", err,
		)
	}()
	return mw.next.Tasks(ctx, page, limit)
}

func (mw loggingMiddleware) Task(ctx context.Context, taskID string) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Task",
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.Task(ctx, taskID)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, taskID string, patch tasksvc.Patch) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTask",
			"task_id", taskID,
			"empty_patch", patch.Empty(),
			"err", err,
		)
	}()
	return mw.next.UpdateTask(ctx, taskID, patch)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, taskID string) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "DeleteTask",
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.DeleteTask(ctx, taskID)
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

func (mw instrumentingMiddleware) observe(method string, begin time.Time) {
	mw.requestCount.With("method", method).Add(1)
	mw.requestLatency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, task tasksvc.Task) (string, error) {
	defer mw.observe("create_task", time.Now())
	return mw.next.CreateTask(ctx, task)
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context, page, limit int) (tasksvc.Page, error) {
	defer mw.observe("tasks", time.Now())
	return mw.next.Tasks(ctx, page, limit)
}

func (mw instrumentingMiddleware) Task(ctx context.Context, taskID string) (tasksvc.Task, error) {
	defer mw.observe("task", time.Now())
	return mw.next.Task(ctx, taskID)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, taskID string, patch tasksvc.Patch) (tasksvc.Task, error) {
	defer mw.observe("update_task", time.Now())
	return mw.next.UpdateTask(ctx, taskID, patch)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, taskID string) (tasksvc.Task, error) {
	defer mw.observe("delete_task", time.Now())
	return mw.next.DeleteTask(ctx, taskID)
}

// Cache stores single tasks by id. A miss is reported with ok == false and
// a nil error. AddTask stores t only when no entry exists for its id.
type Cache interface {
	GetTask(ctx context.Context, taskID string) (t tasksvc.Task, ok bool, err error)
	AddTask(ctx context.Context, t tasksvc.Task) error
	SetTask(ctx context.Context, t tasksvc.Task) error
	DeleteTask(ctx context.Context, taskID string) error
}

// CachingMiddleware serves Task from c when possible. Updates write the new
// task through to c and deletes evict it. A task read from the store is only
// cached when no update or delete finished during the read, and never
// replaces an existing entry. Cache failures are logged and never fail the
// call.
func CachingMiddleware(c Cache, logger log.Logger) Middleware {
	return func(next Service) Service {
		return &cachingMiddleware{cache: c, logger: logger, next: next}
	}
}

type cachingMiddleware struct {
	cache  Cache
	logger log.Logger
	next   Service

	mtx    sync.Mutex
	writes uint64
}

func (mw *cachingMiddleware) CreateTask(ctx context.Context, task tasksvc.Task) (string, error) {
	return mw.next.CreateTask(ctx, task)
}

func (mw *cachingMiddleware) Tasks(ctx context.Context, page, limit int) (tasksvc.Page, error) {
	return mw.next.Tasks(ctx, page, limit)
}

func (mw *cachingMiddleware) Task(ctx context.Context, taskID string) (tasksvc.Task, error) {
	t, ok, err := mw.cache.GetTask(ctx, taskID)
	if err != nil {
		mw.logger.Log("method", "Task", "task_id", taskID, "cache", "get", "err", err)
	}
	if ok {
		return t, nil
	}

	mw.mtx.Lock()
	writes := mw.writes
	mw.mtx.Unlock()

	t, err = mw.next.Task(ctx, taskID)
	if err != nil {
		return t, err
	}

	mw.mtx.Lock()
	defer mw.mtx.Unlock()

	if mw.writes != writes {
		return t, nil
	}
	if err := mw.cache.AddTask(ctx, t); err != nil {
		mw.logger.Log("method", "Task", "task_id", taskID, "cache", "add", "err", err)
	}
	return t, nil
}

func (mw *cachingMiddleware) UpdateTask(ctx context.Context, taskID string, patch tasksvc.Patch) (tasksvc.Task, error) {
	t, err := mw.next.UpdateTask(ctx, taskID, patch)

	mw.mtx.Lock()
	defer mw.mtx.Unlock()
	mw.writes++

	if err != nil {
		mw.evict(ctx, "UpdateTask", taskID)
		return t, err
	}
	if err := mw.cache.SetTask(ctx, t); err != nil {
		mw.logger.Log("method", "UpdateTask", "task_id", taskID, "cache", "set", "err", err)
		mw.evict(ctx, "UpdateTask", taskID)
	}
	return t, nil
}

func (mw *cachingMiddleware) DeleteTask(ctx context.Context, taskID string) (tasksvc.Task, error) {
	t, err := mw.next.DeleteTask(ctx, taskID)

	mw.mtx.Lock()
	defer mw.mtx.Unlock()
	mw.writes++

	mw.evict(ctx, "DeleteTask", taskID)
	return t, err
}

func (mw *cachingMiddleware) evict(ctx context.Context, method, taskID string) {
	if err := mw.cache.DeleteTask(ctx, taskID); err != nil {
		mw.logger.Log("method", method, "task_id", taskID, "cache", "delete", "err", err)
	}
}
