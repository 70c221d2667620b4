package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/logger"
	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/metrics"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"
)

type Job struct {
	ID      string    `json:"id"`
	Message Message   `json:"message"`
	Created time.Time `json:"created"`
}

// Queue defers delivery through a Redis list. Send enqueues, Start drains the list
// into the delivery sender. A job that fails delivery is parked on emails:failed.
type Queue struct {
	redis   *redis.Client
	deliver Sender
	backoff time.Duration
}

func NewQueue(rdb *redis.Client, deliver Sender) *Queue {
	return &Queue{redis: rdb, deliver: deliver, backoff: 5 * time.Second}
}

func (q *Queue) Send(ctx context.Context, msg Message) (string, error) {
	job := Job{
		ID:      uuid.NewString(),
		Message: msg,
		Created: time.Now().UTC(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal email job: %w", err)
	}

	if err := q.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		return "", fmt.Errorf("queue email to %s: %w", msg.To, err)
	}

	logger.Info("email queued", "to", msg.To, "subject", msg.Subject, "jobId", job.ID)
	return job.ID, nil
}

// Start drains the queue until ctx is done, refreshing the queue length gauge after
// every poll. While Redis is unreachable it waits q.backoff between attempts.
func (q *Queue) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
		}

		if _, err := q.processNext(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.WithError(err).Error("email queue unavailable", "retryIn", q.backoff.String())
			select {
			case <-ctx.Done():
			case <-time.After(q.backoff):
			}
			continue
		}
		q.QueueLength(ctx)
	}
}

// processNext handles at most one job. The error is set only when Redis itself failed;
// an empty poll and per-job failures return (false, nil).
func (q *Queue) processNext(ctx context.Context) (bool, error) {
	result, err := q.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pop email job: %w", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad email job", "error", err.Error())
		return false, nil
	}

	if _, err := q.deliver.Send(ctx, job.Message); err != nil {
		logger.WithError(err).Error("email delivery failed", "to", job.Message.To, "jobId", job.ID)
		q.saveFailed(ctx, job, err)
		return false, nil
	}

	logger.Info("email delivered", "to", job.Message.To, "jobId", job.ID)
	return true, nil
}

func (q *Queue) saveFailed(ctx context.Context, job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now().UTC(),
	}
	data, _ := json.Marshal(failed)
	if pushErr := q.redis.LPush(context.WithoutCancel(ctx), failedKey, data).Err(); pushErr != nil {
		logger.Error("could not park failed email", "jobId", job.ID, "error", pushErr.Error())
		return
	}
	logger.Warn("email moved to failed queue", "to", job.Message.To, "jobId", job.ID)
}

// QueueLength reports the pending jobs and publishes the count as a gauge.
func (q *Queue) QueueLength(ctx context.Context) int64 {
	length, err := q.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		logger.Warn("could not read email queue length", "error", err.Error())
		return 0
	}
	metrics.SetEmailQueueLength(length)
	return length
}

func (q *Queue) Close() error {
	return q.redis.Close()
}
