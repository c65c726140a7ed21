package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/response"
)

// AttemptQueue hands finished attempts to the persistence worker.
type AttemptQueue interface {
	Enqueue(ctx context.Context, a model.Attempt) error
}

// AttemptLister reads stored attempts.
type AttemptLister interface {
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]model.Attempt, int, error)
}

// AttemptService records and lists finished quiz runs.
type AttemptService struct {
	queue  AttemptQueue
	lister AttemptLister
	log    zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(queue AttemptQueue, lister AttemptLister, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		queue:  queue,
		lister: lister,
		log:    log.With().Str("component", "attempt_service").Logger(),
	}
}

// Record queues an attempt. Attempts without a client are not kept.
func (s *AttemptService) Record(ctx context.Context, a model.Attempt) error {
	if a.ClientID == "" {
		return nil
	}
	if err := s.queue.Enqueue(ctx, a); err != nil {
		return fmt.Errorf("enqueue attempt: %w", err)
	}
	s.log.Debug().
		Str("client_id", a.ClientID).
		Str("session_id", a.SessionID.String()).
		Int("percentage", a.Percentage).
		Msg("Attempt queued")
	return nil
}

// List returns one page of a client's attempts, newest first.
func (s *AttemptService) List(ctx context.Context, clientID string, page, perPage int) ([]model.Attempt, *response.Pagination, error) {
	if clientID == "" {
		return nil, nil, ErrNoClient
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	attempts, total, err := s.lister.ListByClient(ctx, clientID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}

	return attempts, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}
