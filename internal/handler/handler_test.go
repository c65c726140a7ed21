package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/export"
	"github.com/quizgen/quizgen-backend/internal/generator"
	"github.com/quizgen/quizgen-backend/internal/middleware"
	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/quiz"
	"github.com/quizgen/quizgen-backend/internal/response"
	"github.com/quizgen/quizgen-backend/internal/service"
	ws "github.com/quizgen/quizgen-backend/internal/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrSessionNotFound, http.StatusNotFound, response.ErrSessionNotFound},
		{service.ErrMissingInput, http.StatusBadRequest, response.ErrMissingInput},
		{service.ErrInvalidAPIKey, http.StatusUnauthorized, response.ErrInvalidAPIKey},
		{service.ErrRateLimited, http.StatusTooManyRequests, response.ErrRateLimited},
		{service.ErrServerUnresponsive, http.StatusGatewayTimeout, response.ErrServerUnresponsive},
		{&service.GenerationError{Message: "boom"}, http.StatusBadGateway, response.ErrGenerationFailed},
		{service.ErrAborted, http.StatusConflict, response.ErrGenerationAborted},
		{fmt.Errorf("wrapped: %w", quiz.ErrKindMismatch), http.StatusUnprocessableEntity, response.ErrKindMismatch},
		{quiz.ErrIncomplete, http.StatusConflict, response.ErrQuizIncomplete},
		{fmt.Errorf("export pdf: %w", export.ErrFontUnavailable), http.StatusInternalServerError, response.ErrExportUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			status, code := classify(tc.err)
			if status != tc.status || code != tc.code {
				t.Errorf("classify(%v) = %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
			}
		})
	}
}

func TestFailWith_RelaysGeneratorMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	failWith(c, &service.GenerationError{Message: "Topic too short"})

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Topic too short") {
		t.Errorf("body = %s", w.Body.String())
	}
}

// ─── WebSocket ──────────────────────────────────────────────────────

type nopKeys struct{}

func (nopKeys) Get(context.Context, string) (string, error) { return "", nil }
func (nopKeys) Set(context.Context, string, string) error   { return nil }
func (nopKeys) Clear(context.Context, string) error         { return nil }

func (nopKeys) Notify(context.Context, uuid.UUID, model.Dialog) error { return nil }

type chanStream struct {
	ch chan model.Dialog
}

func (s *chanStream) Subscribe(context.Context, uuid.UUID) (<-chan model.Dialog, func() error) {
	return s.ch, func() error { return nil }
}

func TestSessionStream(t *testing.T) {
	log := zerolog.Nop()
	sessions := service.NewSessionService(
		generator.NewMockClient(), service.NewAPIKeyService(nopKeys{}, log), nopKeys{}, nil,
		time.Second, time.Hour, log,
	)
	info := sessions.Create("")
	if _, err := sessions.Generate(context.Background(), info.ID, service.GenerateInput{Topic: "rivers", APIKey: "k"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stream := &chanStream{ch: make(chan model.Dialog, 1)}
	h := NewWSHandler(sessions, stream, log, nil)
	r := gin.New()
	r.GET("/ws/:id", middleware.RequireSession(sessions.Exists), h.SessionStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/"+info.ID.String(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Event ws.Event `json:"event"`
	}
	if err := conn.ReadJSON(&first); err != nil || first.Event != ws.EventSnapshot {
		t.Fatalf("first event = %q (%v)", first.Event, err)
	}

	tests := []struct {
		name string
		req  ws.RequestPayload
		want ws.Event
		code string
	}{
		{"ping", ws.RequestPayload{Action: ws.ActionPing}, ws.EventPong, ""},
		{"select", ws.RequestPayload{Action: ws.ActionSelectOption, QID: 1, Index: 0}, ws.EventSnapshot, ""},
		{"kind mismatch", ws.RequestPayload{Action: ws.ActionSetText, QID: 1, Text: "x"}, ws.EventError, string(response.ErrKindMismatch)},
		{"unknown action", ws.RequestPayload{Action: "dance"}, ws.EventError, string(response.ErrInvalidPayload)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := conn.WriteJSON(tc.req); err != nil {
				t.Fatalf("write: %v", err)
			}
			var got struct {
				Event ws.Event `json:"event"`
				Code  string   `json:"code"`
			}
			if err := conn.ReadJSON(&got); err != nil {
				t.Fatalf("read: %v", err)
			}
			if got.Event != tc.want || got.Code != tc.code {
				t.Errorf("got %s/%s, want %s/%s", got.Event, got.Code, tc.want, tc.code)
			}
		})
	}

	stream.ch <- model.Dialog{Code: "RATE_LIMITED", Title: "Rate Limit Reached"}
	var dlg ws.DialogResponse
	if err := conn.ReadJSON(&dlg); err != nil {
		t.Fatalf("read dialog: %v", err)
	}
	if dlg.Event != ws.EventDialog || dlg.Dialog.Code != "RATE_LIMITED" {
		t.Errorf("dialog = %+v", dlg)
	}
}
