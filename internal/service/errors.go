package service

import (
	"errors"

	"github.com/quizgen/quizgen-backend/internal/model"
)

var (
	ErrSessionNotFound    = errors.New("quiz session not found")
	ErrMissingInput       = errors.New("topic and api key are required")
	ErrInvalidAPIKey      = errors.New("api key rejected by generator")
	ErrRateLimited        = errors.New("generator rate limit reached")
	ErrServerUnresponsive = errors.New("generator did not respond in time")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrAborted            = errors.New("generation superseded by a newer request")
	ErrNoQuestions        = errors.New("session has no questions")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
)

// GenerationError carries the server-provided message of a failed
// generation. It unwraps to ErrGenerationFailed.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return ErrGenerationFailed.Error()
	}
	return ErrGenerationFailed.Error() + ": " + e.Message
}

func (e *GenerationError) Unwrap() error { return ErrGenerationFailed }

// dialogFor builds the user-facing dialog for a terminal generation error.
// ok is false for errors that never reach the user.
func dialogFor(err error) (d model.Dialog, ok bool) {
	switch {
	case errors.Is(err, ErrInvalidAPIKey):
		return model.Dialog{
			Code:    "INVALID_API_KEY",
			Title:   "Invalid API Key",
			Message: "The API key was rejected. Please check it and try again.",
		}, true
	case errors.Is(err, ErrRateLimited):
		return model.Dialog{
			Code:    "RATE_LIMITED",
			Title:   "Rate Limit Reached",
			Message: "Too many requests. Please wait a moment before generating again.",
		}, true
	case errors.Is(err, ErrServerUnresponsive):
		return model.Dialog{
			Code:      "SERVER_UNRESPONSIVE",
			Title:     "Server Not Responding",
			Message:   "The quiz generator did not respond. The server may be starting up, please try again.",
			Retryable: true,
		}, true
	case errors.Is(err, ErrGenerationFailed):
		msg := "Failed to generate the quiz."
		var ge *GenerationError
		if errors.As(err, &ge) && ge.Message != "" {
			msg = ge.Message
		}
		return model.Dialog{
			Code:      "GENERATION_FAILED",
			Title:     "Generation Failed",
			Message:   msg,
			Retryable: true,
		}, true
	}
	return model.Dialog{}, false
}
