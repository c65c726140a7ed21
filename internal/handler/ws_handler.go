package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/middleware"
	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/quiz"
	"github.com/quizgen/quizgen-backend/internal/response"
	"github.com/quizgen/quizgen-backend/internal/service"
	ws "github.com/quizgen/quizgen-backend/internal/websocket"
)

// DialogStream delivers the dialogs published for one session.
type DialogStream interface {
	Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan model.Dialog, func() error)
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a quiz session: answer actions in, snapshots and dialogs out.
type WSHandler struct {
	sessionService *service.SessionService
	dialogs        DialogStream
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, dialogs DialogStream, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		dialogs:        dialogs,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:id/stream
// Sends the current snapshot on connect, then one snapshot per action.
func (h *WSHandler) SessionStream(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Client connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go h.relayDialogs(ctx, conn, sessionID, wsLog)

	if info, err := h.sessionService.Get(sessionID); err == nil {
		_ = conn.WriteTyped(ws.SnapshotResponse{Event: ws.EventSnapshot, State: info.State})
	}

	for {
		req, err := conn.ReadRequest()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if req.Action == ws.ActionPing {
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
			continue
		}

		snap, err := h.apply(ctx, sessionID, req)
		if err != nil {
			code := response.ErrInvalidPayload
			if _, unknown := err.(errUnknownAction); !unknown {
				_, code = classify(err)
			}
			_ = conn.WriteError(string(code), err.Error())
			if code == response.ErrSessionNotFound {
				return
			}
			continue
		}
		_ = conn.WriteTyped(ws.SnapshotResponse{Event: ws.EventSnapshot, State: snap})
	}
}

// errUnknownAction is reported for actions the stream does not understand.
type errUnknownAction ws.Action

func (e errUnknownAction) Error() string { return "unknown action: " + string(e) }

func (h *WSHandler) apply(ctx context.Context, id uuid.UUID, req ws.RequestPayload) (quiz.Snapshot, error) {
	svc := h.sessionService
	switch req.Action {
	case ws.ActionSelectOption:
		return svc.SelectOption(id, req.QID, req.Index)
	case ws.ActionSetText:
		return svc.SetFillBlankText(id, req.QID, req.Text)
	case ws.ActionCheckBlank:
		return svc.CheckFillBlank(id, req.QID)
	case ws.ActionReorder:
		return svc.Reorder(id, req.QID, req.From, req.To)
	case ws.ActionSetMatch:
		return svc.SetMatch(id, req.QID, req.Left, req.Right)
	case ws.ActionClearMatch:
		return svc.ClearMatch(id, req.QID, req.Left)
	case ws.ActionSubmitMatch:
		return svc.SubmitMatching(id, req.QID)
	case ws.ActionResetMatch:
		return svc.ResetMatching(id, req.QID)
	case ws.ActionNextPage:
		return svc.NextPage(id)
	case ws.ActionPrevPage:
		return svc.PrevPage(id)
	case ws.ActionGoToPage:
		return svc.GoToPage(id, req.Page)
	case ws.ActionEnterReview:
		return svc.EnterReview(ctx, id)
	case ws.ActionExitReview:
		return svc.ExitReview(id)
	}
	return quiz.Snapshot{}, errUnknownAction(req.Action)
}

// relayDialogs forwards published dialogs to the socket until ctx ends.
func (h *WSHandler) relayDialogs(ctx context.Context, conn *ws.Conn, id uuid.UUID, log zerolog.Logger) {
	dialogs, stop := h.dialogs.Subscribe(ctx, id)
	defer func() {
		if err := stop(); err != nil {
			log.Debug().Err(err).Msg("Dialog subscription close")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-dialogs:
			if !ok {
				return
			}
			if err := conn.WriteTyped(ws.DialogResponse{Event: ws.EventDialog, Dialog: d}); err != nil {
				log.Debug().Err(err).Msg("Dialog write failed")
				return
			}
		}
	}
}
