package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oraxus/sports-gateway/internal/domain/auth"
)

// QueueKey is the Redis list holding pending ensure jobs
const QueueKey = "sports-gateway:userservice:ensure"

// DefaultMaxQueueSize caps the queue while the user service is down. 0 = unlimited.
const DefaultMaxQueueSize int64 = 1000

// defaultBlockTimeout bounds each BLPop so cancellation is noticed
const defaultBlockTimeout = 2 * time.Second

// ErrQueueFull is returned by enqueue when the queue has reached its cap
var ErrQueueFull = errors.New("user service queue full")

// EnsureJob is the payload pushed onto the queue
type EnsureJob struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// QueuedNotifier pushes ensure jobs to Redis; StartWorker drains them into
// the user service from a separate process.
type QueuedNotifier struct {
	inner        Ensurer
	rdb          *redis.Client
	maxQueueSize int64
	timeout      time.Duration
	blockTimeout time.Duration
	log          *slog.Logger
}

var _ auth.Notifier = (*QueuedNotifier)(nil)

// NewQueuedNotifier creates a Redis-backed notifier. inner may be nil on the
// producer side, where StartWorker is never called.
func NewQueuedNotifier(inner Ensurer, rdb *redis.Client, maxSize int64, timeout time.Duration, log *slog.Logger) *QueuedNotifier {
	return &QueuedNotifier{
		inner:        inner,
		rdb:          rdb,
		maxQueueSize: maxSize,
		timeout:      timeout,
		blockTimeout: defaultBlockTimeout,
		log:          log,
	}
}

// NewRedisClient parses url and pings the server
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// enqueueScript pushes the job only while the list is under the cap.
// KEYS[1] = queue key, ARGV[1] = max size (0 = no cap), ARGV[2] = payload.
// Returns 1 if enqueued, 0 if the queue is full.
var enqueueScript = redis.NewScript(`
local max = tonumber(ARGV[1])
if max > 0 and redis.call('LLEN', KEYS[1]) >= max then
    return 0
end
redis.call('RPUSH', KEYS[1], ARGV[2])
return 1
`)

// EnsureUserExists implements auth.Notifier. Enqueue failures are logged.
func (q *QueuedNotifier) EnsureUserExists(ctx context.Context, username string) {
	job := EnsureJob{
		ID:         uuid.NewString(),
		Username:   username,
		EnqueuedAt: time.Now().UTC(),
	}
	enqueueCtx, cancel := q.callContext(context.WithoutCancel(ctx))
	defer cancel()

	if err := q.enqueue(enqueueCtx, job); err != nil {
		q.log.Warn("Failed to enqueue user service notification", "username", username, "job_id", job.ID, "error", err)
	}
}

func (q *QueuedNotifier) enqueue(ctx context.Context, job EnsureJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal ensure job: %w", err)
	}
	ok, err := enqueueScript.Run(ctx, q.rdb, []string{QueueKey}, q.maxQueueSize, data).Int64()
	if err != nil {
		return fmt.Errorf("enqueue ensure job: %w", err)
	}
	if ok == 0 {
		return ErrQueueFull
	}
	return nil
}

// StartWorker drains the queue until ctx is cancelled
func (q *QueuedNotifier) StartWorker(ctx context.Context) {
	for {
		// BLPop returns redis.Nil after the block timeout so ctx is rechecked
		res, err := q.rdb.BLPop(ctx, q.blockTimeout, QueueKey).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			q.log.Error("Failed to pop ensure job", "error", err)
			continue
		}

		// res[0] = key, res[1] = payload
		var job EnsureJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			q.log.Error("Dropping malformed ensure job", "error", err)
			continue
		}
		q.dispatch(ctx, job)
	}
}

// dispatch hands one job to the user service. Failures are logged and the
// job is dropped.
func (q *QueuedNotifier) dispatch(ctx context.Context, job EnsureJob) {
	if job.Username == "" {
		q.log.Error("Dropping ensure job without username", "job_id", job.ID)
		return
	}

	callCtx, cancel := q.callContext(ctx)
	defer cancel()

	if err := q.inner.EnsureUserExists(callCtx, job.Username); err != nil {
		q.log.Error("Failed to ensure user exists", "job_id", job.ID, "username", job.Username, "error", err)
		return
	}
	q.log.Info("User ensured", "job_id", job.ID, "username", job.Username, "queued_for", time.Since(job.EnqueuedAt))
}

func (q *QueuedNotifier) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, q.timeout)
}
