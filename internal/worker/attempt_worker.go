package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/config"
	"github.com/quizgen/quizgen-backend/internal/model"
)

const (
	AttemptBatchSize    = 50
	AttemptBatchTimeout = 2 * time.Second
	AttemptPollTimeout  = 1 * time.Second
)

// AttemptWriter persists attempts drained from the queue.
type AttemptWriter interface {
	BulkInsert(ctx context.Context, batch []model.Attempt) error
	InsertSingle(ctx context.Context, a model.Attempt) error
}

// Requeuer puts an attempt back on the queue after a failed write.
type Requeuer interface {
	Enqueue(ctx context.Context, a model.Attempt) error
}

// AttemptWorker drains persist_attempts_queue into quiz_attempts in batches.
type AttemptWorker struct {
	rdb     *redis.Client
	store   AttemptWriter
	requeue Requeuer
	log     zerolog.Logger
}

func NewAttemptWorker(rdb *redis.Client, store AttemptWriter, requeue Requeuer, log zerolog.Logger) *AttemptWorker {
	return &AttemptWorker{
		rdb:     rdb,
		store:   store,
		requeue: requeue,
		log:     log.With().Str("component", "attempt_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AttemptWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AttemptWorker started")

	batch := make([]model.Attempt, 0, AttemptBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AttemptBatchSize || time.Since(lastFlush) >= AttemptBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AttemptPollTimeout, config.WorkerKey.PersistAttemptsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			a, ok := w.decode(item[1])
			if !ok {
				continue
			}
			batch = append(batch, a)
		}
	}
}

func (w *AttemptWorker) decode(raw string) (model.Attempt, bool) {
	var a model.Attempt
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return a, false
	}
	if a.FinishedAt.IsZero() {
		a.FinishedAt = time.Now()
	}
	return a, true
}

// ----------------------------------------------------------------
// Bulk insert with per-row fallback
// ----------------------------------------------------------------

func (w *AttemptWorker) flushSafe(ctx context.Context, batch []model.Attempt) {
	if len(batch) == 0 {
		return
	}

	if err := w.store.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk attempt insert failed, using fallback")

		for _, a := range batch {
			if err := w.store.InsertSingle(ctx, a); err != nil {
				w.log.Error().Err(err).Str("session_id", a.SessionID.String()).Msg("InsertSingle failed, requeueing")
				if err := w.requeue.Enqueue(ctx, a); err != nil {
					w.log.Error().Err(err).Msg("requeue failed, attempt dropped")
				}
			}
		}
		return
	}

	w.log.Debug().Int("size", len(batch)).Msg("Attempts persisted")
}
