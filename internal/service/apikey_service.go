package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// APIKeyStore is the durable key-value store for generation API keys.
type APIKeyStore interface {
	Get(ctx context.Context, clientID string) (string, error)
	Set(ctx context.Context, clientID, apiKey string) error
	Clear(ctx context.Context, clientID string) error
}

// ErrNoClient is returned when a key operation has no client to scope it to.
var ErrNoClient = errors.New("client id is required")

// APIKeyService caches the user's generation API key per browser client.
type APIKeyService struct {
	store APIKeyStore
	log   zerolog.Logger
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(store APIKeyStore, log zerolog.Logger) *APIKeyService {
	return &APIKeyService{
		store: store,
		log:   log.With().Str("component", "apikey_service").Logger(),
	}
}

// Get returns the cached key, or "" when none is stored.
func (s *APIKeyService) Get(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return "", ErrNoClient
	}
	key, err := s.store.Get(ctx, clientID)
	if err != nil {
		return "", fmt.Errorf("get api key: %w", err)
	}
	return key, nil
}

// Save stores apiKey for clientID as given. Blank keys are ignored.
func (s *APIKeyService) Save(ctx context.Context, clientID, apiKey string) error {
	if clientID == "" {
		return ErrNoClient
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	if err := s.store.Set(ctx, clientID, apiKey); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	s.log.Debug().Str("client_id", clientID).Msg("API key cached")
	return nil
}

// Clear removes the cached key.
func (s *APIKeyService) Clear(ctx context.Context, clientID string) error {
	if clientID == "" {
		return ErrNoClient
	}
	if err := s.store.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("clear api key: %w", err)
	}
	return nil
}
