package websocket

import (
	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/quiz"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelectOption Action = "select_option"
	ActionSetText      Action = "set_text"
	ActionCheckBlank   Action = "check_blank"
	ActionReorder      Action = "reorder"
	ActionSetMatch     Action = "set_match"
	ActionClearMatch   Action = "clear_match"
	ActionSubmitMatch  Action = "submit_match"
	ActionResetMatch   Action = "reset_match"
	ActionNextPage     Action = "next_page"
	ActionPrevPage     Action = "prev_page"
	ActionGoToPage     Action = "go_to_page"
	ActionEnterReview  Action = "enter_review"
	ActionExitReview   Action = "exit_review"
	ActionPing         Action = "ping"
)

// RequestPayload is one client action. Only the fields relevant to the
// action are read.
type RequestPayload struct {
	Action Action `json:"action"`
	QID    int    `json:"q_id,omitempty"`
	Index  int    `json:"index,omitempty"`
	Text   string `json:"text,omitempty"`
	From   int    `json:"from,omitempty"`
	To     int    `json:"to,omitempty"`
	Left   int    `json:"left,omitempty"`
	Right  int    `json:"right,omitempty"`
	Page   int    `json:"page,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventDialog   Event = "dialog"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// SnapshotResponse carries the session state after an action.
type SnapshotResponse struct {
	Event Event         `json:"event"`
	State quiz.Snapshot `json:"state"`
}

// DialogResponse relays a terminal generation error.
type DialogResponse struct {
	Event  Event        `json:"event"`
	Dialog model.Dialog `json:"dialog"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
