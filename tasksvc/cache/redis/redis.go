package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ichigozero/todokit/tasksvc"
	stdredis "github.com/redis/go-redis/v9"
)

const DefaultTTL = 60 * time.Second

func NewClient(addr string) *stdredis.Client {
	return stdredis.NewClient(&stdredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}

type TaskCache struct {
	client *stdredis.Client
	ttl    time.Duration
}

func NewTaskCache(client *stdredis.Client, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TaskCache{client: client, ttl: ttl}
}

func (c *TaskCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *TaskCache) GetTask(ctx context.Context, taskID string) (tasksvc.Task, bool, error) {
	data, err := c.client.Get(ctx, TaskKey(taskID)).Bytes()
	if errors.Is(err, stdredis.Nil) {
		return tasksvc.Task{}, false, nil
	}
	if err != nil {
		return tasksvc.Task{}, false, err
	}

	var t tasksvc.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return tasksvc.Task{}, false, err
	}
	return t, true, nil
}

func (c *TaskCache) SetTask(ctx context.Context, t tasksvc.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, TaskKey(t.ID), data, c.ttl).Err()
}

// AddTask stores t unless an entry for its id already exists.
func (c *TaskCache) AddTask(ctx context.Context, t tasksvc.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, TaskKey(t.ID), data, c.ttl).Err()
}

func (c *TaskCache) DeleteTask(ctx context.Context, taskID string) error {
	return c.client.Del(ctx, TaskKey(taskID)).Err()
}

func TaskKey(taskID string) string {
	return "task:" + taskID
}
