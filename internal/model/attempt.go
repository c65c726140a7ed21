package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Attempt is a finished quiz run stored for the client's history.
type Attempt struct {
	ID         int64           `json:"id"`
	ClientID   string          `json:"client_id"`
	SessionID  uuid.UUID       `json:"session_id"`
	Topic      string          `json:"topic"`
	Kind       string          `json:"kind"`
	Level      string          `json:"level"`
	Correct    int             `json:"correct"`
	Total      int             `json:"total"`
	Percentage int             `json:"percentage"`
	Questions  json.RawMessage `json:"questions,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}

// AttemptFilter holds pagination for the history listing.
type AttemptFilter struct {
	Page    int `form:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1,max=100"`
}
