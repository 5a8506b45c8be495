package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const dequeueBlock = 1 * time.Second

// RedisQueue implements Queue on a Redis list.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedis connects to Redis at the given URL and schedules jobs on key.
func NewRedis(redisURL, key string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, eris.Wrap(err, "queue: parse redis url")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, eris.Wrap(err, "queue: connect to redis")
	}

	return &RedisQueue{client: client, key: key}, nil
}

// NewRedisWithClient wraps an existing Redis client. Used by tests.
func NewRedisWithClient(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return eris.Wrap(err, "queue: marshal job")
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return eris.Wrapf(err, "queue: enqueue %s", job.Stage)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	res, err := q.client.BRPop(ctx, dequeueBlock, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "queue: dequeue")
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return nil, eris.Errorf("queue: unexpected BRPOP reply length %d", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, eris.Wrap(err, "queue: unmarshal job")
	}
	return &job, nil
}

// Len reports the number of pending jobs.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	return n, eris.Wrap(err, "queue: len")
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
