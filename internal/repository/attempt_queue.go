package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/quizgen/quizgen-backend/internal/config"
	"github.com/quizgen/quizgen-backend/internal/model"
)

// AttemptQueue pushes finished attempts onto the list drained by the attempt worker.
type AttemptQueue struct {
	rdb *redis.Client
}

func NewAttemptQueue(rdb *redis.Client) *AttemptQueue {
	return &AttemptQueue{rdb: rdb}
}

func (q *AttemptQueue) Enqueue(ctx context.Context, a model.Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, raw).Err()
}
