package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizgen/quizgen-backend/internal/model"
)

type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// ListByClient returns attempts newest first plus the client's total count.
func (r *AttemptRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]model.Attempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_attempts WHERE client_id = $1`, clientID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, client_id, session_id, topic, kind, level, correct, total, percentage, questions, finished_at
		 FROM quiz_attempts
		 WHERE client_id = $1
		 ORDER BY finished_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		clientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(
			&a.ID, &a.ClientID, &a.SessionID, &a.Topic, &a.Kind, &a.Level,
			&a.Correct, &a.Total, &a.Percentage, &a.Questions, &a.FinishedAt,
		); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// BulkInsert writes a batch of attempts in a single statement.
func (r *AttemptRepository) BulkInsert(ctx context.Context, batch []model.Attempt) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	clientIDs := make([]string, n)
	sessionIDs := make([]uuid.UUID, n)
	topics := make([]string, n)
	kinds := make([]string, n)
	levels := make([]string, n)
	corrects := make([]int, n)
	totals := make([]int, n)
	percentages := make([]int, n)
	questions := make([]string, n)
	finishedAts := make([]time.Time, n)

	for i, a := range batch {
		clientIDs[i] = a.ClientID
		sessionIDs[i] = a.SessionID
		topics[i] = a.Topic
		kinds[i] = a.Kind
		levels[i] = a.Level
		corrects[i] = a.Correct
		totals[i] = a.Total
		percentages[i] = a.Percentage
		questions[i] = questionsJSON(a)
		finishedAts[i] = a.FinishedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_attempts
			(client_id, session_id, topic, kind, level, correct, total, percentage, questions, finished_at)
		SELECT * FROM UNNEST(
			$1::text[],
			$2::uuid[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::int[],
			$7::int[],
			$8::int[],
			$9::jsonb[],
			$10::timestamptz[]
		)`,
		clientIDs, sessionIDs, topics, kinds, levels, corrects, totals, percentages, questions, finishedAts,
	)
	return err
}

// InsertSingle is the fallback used when a bulk insert fails.
func (r *AttemptRepository) InsertSingle(ctx context.Context, a model.Attempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_attempts
			(client_id, session_id, topic, kind, level, correct, total, percentage, questions, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)`,
		a.ClientID, a.SessionID, a.Topic, a.Kind, a.Level,
		a.Correct, a.Total, a.Percentage, questionsJSON(a), a.FinishedAt,
	)
	return err
}

func questionsJSON(a model.Attempt) string {
	if len(a.Questions) == 0 {
		return "[]"
	}
	return string(a.Questions)
}
