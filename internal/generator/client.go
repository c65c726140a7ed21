package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/quizgen/quizgen-backend/internal/quiz"
	"github.com/rs/zerolog"
)

// Level is the difficulty requested from the generation API.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard:
		return true
	}
	return false
}

// Request is one generation call. Previous carries the questions already in
// the session so the remote side can avoid repeating them.
type Request struct {
	Topic    string
	Level    Level
	APIKey   string
	Previous []quiz.Question
}

// Client is the interface both generator implementations satisfy.
// Returned questions carry no ids; the session numbers them.
type Client interface {
	Generate(ctx context.Context, kind quiz.Kind, req Request) ([]quiz.Question, error)
}

var (
	// ErrUnauthorized means the remote side rejected the API key.
	ErrUnauthorized = errors.New("generator: unauthorized")
	// ErrRateLimited means the remote side answered 429.
	ErrRateLimited = errors.New("generator: rate limited")
	// ErrMalformed means the response body could not be normalised.
	ErrMalformed = errors.New("generator: malformed response")
	// ErrUnsupportedKind means no endpoint exists for the kind.
	ErrUnsupportedKind = errors.New("generator: unsupported question kind")
)

// StatusError is a non-2xx response that is neither an auth nor a rate
// limit failure. Message is the server-provided text, if any.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generator: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("generator: request failed with status %d: %s", e.StatusCode, e.Message)
}

// New returns the mock client when mode is "mock", otherwise the remote one.
func New(mode, baseURL string, log zerolog.Logger) Client {
	if mode == "mock" {
		log.Info().Msg("Generator using mock data")
		return NewMockClient()
	}
	log.Info().Str("base_url", baseURL).Msg("Generator using remote API")
	return NewRemoteClient(baseURL, nil, log)
}
