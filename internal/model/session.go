package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/quizgen/quizgen-backend/internal/quiz"
)

// SessionInfo describes a live quiz session together with its state snapshot.
type SessionInfo struct {
	ID        uuid.UUID     `json:"id"`
	ClientID  string        `json:"client_id,omitempty"`
	Topic     string        `json:"topic"`
	Kind      quiz.Kind     `json:"kind"`
	Level     string        `json:"level"`
	CreatedAt time.Time     `json:"created_at"`
	State     quiz.Snapshot `json:"state"`
}

// CreateSessionRequest is the payload for opening a new quiz session.
type CreateSessionRequest struct {
	ClientID string `json:"client_id" binding:"omitempty,max=64"`
}

// GenerateRequest is the payload for a generation call. Kind and level
// default to the session's current values.
type GenerateRequest struct {
	Topic  string `json:"topic"`
	APIKey string `json:"api_key"`
	Kind   string `json:"kind" binding:"omitempty,quizkind"`
	Level  string `json:"level" binding:"omitempty,level"`
	Append bool   `json:"append"`
}

// PageRequest moves the page cursor.
type PageRequest struct {
	Page *int `json:"page" binding:"required,min=0"`
}

// SelectOptionRequest answers a choice question.
type SelectOptionRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// FillBlankRequest updates the free text of a fill-blank answer.
type FillBlankRequest struct {
	Text string `json:"text" binding:"max=500"`
}

// ReorderRequest moves one ordering item.
type ReorderRequest struct {
	From *int `json:"from" binding:"required,min=0"`
	To   *int `json:"to" binding:"required,min=0"`
}

// MatchRequest pairs a left slot with a right index.
type MatchRequest struct {
	Left  *int `json:"left" binding:"required,min=0"`
	Right *int `json:"right" binding:"required,min=0"`
}

// ResetAnswersRequest must carry an explicit confirmation.
type ResetAnswersRequest struct {
	Confirm bool `json:"confirm"`
}

// PageView is the rendered current page.
type PageView struct {
	Page      int                 `json:"page"`
	PageCount int                 `json:"page_count"`
	Mode      quiz.Mode           `json:"mode"`
	Questions []quiz.QuestionView `json:"questions"`
}
