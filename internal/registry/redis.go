package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// taskKeyPrefix namespaces registry keys in Redis.
const taskKeyPrefix = "haiku:task:"

// casAttempts bounds optimistic-locking retries when a poll races a
// finalizing write on the same key.
const casAttempts = 3

// RedisRegistry is a Registry backed by Redis, for deployments running more
// than one instance behind a load balancer. Each task is a JSON value whose
// key expiry doubles as the retention sweep.
type RedisRegistry struct {
	client    *redis.Client
	retention time.Duration
	logger    *slog.Logger
}

// NewRedisRegistry creates a RedisRegistry speaking to the given address.
// It pings the server once so misconfiguration fails at startup rather than
// on the first upload.
func NewRedisRegistry(ctx context.Context, addr string, retention time.Duration, logger *slog.Logger) (*RedisRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisRegistry{
		client:    client,
		retention: retention,
		logger:    logger.With(slog.String("component", "redis_registry")),
	}, nil
}

// Ensure RedisRegistry implements the Registry interface
var _ Registry = (*RedisRegistry)(nil)

// Close releases the underlying Redis connection pool.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

// Create implements Registry.Create
func (r *RedisRegistry) Create(ctx context.Context, sourceImagePath, haiku, prompt string) (string, error) {
	task := &Task{
		ID:              uuid.New().String(),
		SourceImagePath: sourceImagePath,
		Haiku:           haiku,
		Prompt:          prompt,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	data, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := r.client.Set(ctx, taskKeyPrefix+task.ID, data, r.retention).Err(); err != nil {
		return "", fmt.Errorf("failed to store task: %w", err)
	}

	r.logger.Debug("task registered",
		"task_id", task.ID,
		"source_image_path", sourceImagePath)
	return task.ID, nil
}

// Get implements Registry.Get
func (r *RedisRegistry) Get(ctx context.Context, id string) (*Task, error) {
	data, err := r.client.Get(ctx, taskKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// MarkCompleted implements Registry.MarkCompleted
func (r *RedisRegistry) MarkCompleted(ctx context.Context, id, illustrationPath string) error {
	return r.finalize(ctx, id, func(task *Task) {
		task.Status = StatusCompleted
		task.IllustrationPath = illustrationPath
	})
}

// MarkFailed implements Registry.MarkFailed
func (r *RedisRegistry) MarkFailed(ctx context.Context, id, errorDetail string) error {
	return r.finalize(ctx, id, func(task *Task) {
		task.Status = StatusFailed
		task.ErrorDetail = errorDetail
	})
}

// finalize applies a terminal transition under an optimistic WATCH lock so
// the pending -> terminal state machine holds even with a poller racing on
// the same key. The remaining key TTL is preserved across the rewrite.
func (r *RedisRegistry) finalize(ctx context.Context, id string, transition func(*Task)) error {
	key := taskKeyPrefix + id

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrTaskNotFound
			}
			return err
		}

		var task Task
		if err := json.Unmarshal(data, &task); err != nil {
			return fmt.Errorf("failed to unmarshal task: %w", err)
		}

		if task.Done() {
			return ErrTaskFinalized
		}

		transition(&task)

		updated, err := json.Marshal(&task)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}

		ttl, err := tx.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = r.retention
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < casAttempts; i++ {
		err = r.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// ConsumeIfDone implements Registry.ConsumeIfDone
func (r *RedisRegistry) ConsumeIfDone(ctx context.Context, id string) (*Task, error) {
	key := taskKeyPrefix + id
	var result *Task

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrTaskNotFound
			}
			return err
		}

		var task Task
		if err := json.Unmarshal(data, &task); err != nil {
			return fmt.Errorf("failed to unmarshal task: %w", err)
		}

		result = &task
		if !task.Done() {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < casAttempts; i++ {
		result = nil
		err = r.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if result != nil && result.Done() {
		r.logger.Debug("task consumed",
			"task_id", id,
			"status", string(result.Status))
	}
	return result, nil
}
