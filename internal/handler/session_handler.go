package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quizgen/quizgen-backend/internal/generator"
	"github.com/quizgen/quizgen-backend/internal/middleware"
	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/quiz"
	"github.com/quizgen/quizgen-backend/internal/response"
	"github.com/quizgen/quizgen-backend/internal/service"
	"github.com/quizgen/quizgen-backend/internal/validator"
)

// SessionHandler exposes quiz sessions: generation, answering, review and paging.
type SessionHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// ─── Lifecycle ──────────────────────────────────────────────────────

// CreateSession godoc
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	info := h.sessionService.Create(req.ClientID)
	response.Success(c, http.StatusCreated, gin.H{"session": info})
}

// GetSession godoc
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	info, err := h.sessionService.Get(middleware.GetSessionID(c))
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": info})
}

// ResetSession godoc
// DELETE /api/v1/sessions/:id
// Clears the session for a new quiz and aborts any in-flight generation.
func (h *SessionHandler) ResetSession(c *gin.Context) {
	info, err := h.sessionService.Reset(middleware.GetSessionID(c))
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": info})
}

// Generate godoc
// POST /api/v1/sessions/:id/generate
// Blocks until the generator answers, times out twice or is superseded.
func (h *SessionHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	id := middleware.GetSessionID(c)
	snap, err := h.sessionService.Generate(c.Request.Context(), id, service.GenerateInput{
		Topic:  req.Topic,
		APIKey: req.APIKey,
		Kind:   quiz.Kind(req.Kind),
		Level:  generator.Level(req.Level),
		Append: req.Append,
	})
	if err != nil {
		h.log.Debug().Err(err).Str("session_id", id.String()).Msg("Generation ended without questions")
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": snap})
}

// ─── Answers ────────────────────────────────────────────────────────

// SelectOption godoc
// POST /api/v1/sessions/:id/questions/:qid/select
func (h *SessionHandler) SelectOption(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	var req model.SelectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c)(h.sessionService.SelectOption(middleware.GetSessionID(c), qid, *req.Index))
}

// SetFillBlankText godoc
// PUT /api/v1/sessions/:id/questions/:qid/text
func (h *SessionHandler) SetFillBlankText(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	var req model.FillBlankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c)(h.sessionService.SetFillBlankText(middleware.GetSessionID(c), qid, req.Text))
}

// CheckFillBlank godoc
// POST /api/v1/sessions/:id/questions/:qid/check
func (h *SessionHandler) CheckFillBlank(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	h.respond(c)(h.sessionService.CheckFillBlank(middleware.GetSessionID(c), qid))
}

// Reorder godoc
// POST /api/v1/sessions/:id/questions/:qid/reorder
func (h *SessionHandler) Reorder(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	var req model.ReorderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c)(h.sessionService.Reorder(middleware.GetSessionID(c), qid, *req.From, *req.To))
}

// SetMatch godoc
// PUT /api/v1/sessions/:id/questions/:qid/matches
func (h *SessionHandler) SetMatch(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	var req model.MatchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c)(h.sessionService.SetMatch(middleware.GetSessionID(c), qid, *req.Left, *req.Right))
}

// ClearMatch godoc
// DELETE /api/v1/sessions/:id/questions/:qid/matches/:left
func (h *SessionHandler) ClearMatch(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	left, err := strconv.Atoi(c.Param("left"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	h.respond(c)(h.sessionService.ClearMatch(middleware.GetSessionID(c), qid, left))
}

// SubmitMatching godoc
// POST /api/v1/sessions/:id/questions/:qid/submit
func (h *SessionHandler) SubmitMatching(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	h.respond(c)(h.sessionService.SubmitMatching(middleware.GetSessionID(c), qid))
}

// ResetMatching godoc
// DELETE /api/v1/sessions/:id/questions/:qid/matches
func (h *SessionHandler) ResetMatching(c *gin.Context) {
	qid, ok := questionID(c)
	if !ok {
		return
	}
	h.respond(c)(h.sessionService.ResetMatching(middleware.GetSessionID(c), qid))
}

// ResetAnswers godoc
// POST /api/v1/sessions/:id/answers/reset
// Without confirm=true nothing changes and reset is reported as false.
func (h *SessionHandler) ResetAnswers(c *gin.Context) {
	var req model.ResetAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	snap, applied, err := h.sessionService.ResetAllAnswers(middleware.GetSessionID(c), req.Confirm)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": snap, "reset": applied})
}

// ─── Review & Paging ────────────────────────────────────────────────

// EnterReview godoc
// POST /api/v1/sessions/:id/review
func (h *SessionHandler) EnterReview(c *gin.Context) {
	h.respond(c)(h.sessionService.EnterReview(c.Request.Context(), middleware.GetSessionID(c)))
}

// ExitReview godoc
// DELETE /api/v1/sessions/:id/review
func (h *SessionHandler) ExitReview(c *gin.Context) {
	h.respond(c)(h.sessionService.ExitReview(middleware.GetSessionID(c)))
}

// GetPage godoc
// GET /api/v1/sessions/:id/page
func (h *SessionHandler) GetPage(c *gin.Context) {
	view, err := h.sessionService.Page(middleware.GetSessionID(c))
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"page": view})
}

// GoToPage godoc
// PUT /api/v1/sessions/:id/page
func (h *SessionHandler) GoToPage(c *gin.Context) {
	var req model.PageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c)(h.sessionService.GoToPage(middleware.GetSessionID(c), *req.Page))
}

// NextPage godoc
// POST /api/v1/sessions/:id/page/next
func (h *SessionHandler) NextPage(c *gin.Context) {
	h.respond(c)(h.sessionService.NextPage(middleware.GetSessionID(c)))
}

// PrevPage godoc
// POST /api/v1/sessions/:id/page/prev
func (h *SessionHandler) PrevPage(c *gin.Context) {
	h.respond(c)(h.sessionService.PrevPage(middleware.GetSessionID(c)))
}

// ─── Results ────────────────────────────────────────────────────────

// GetScore godoc
// GET /api/v1/sessions/:id/score
func (h *SessionHandler) GetScore(c *gin.Context) {
	res, err := h.sessionService.Score(middleware.GetSessionID(c))
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"score": res})
}

// GetInsights godoc
// GET /api/v1/sessions/:id/insights
func (h *SessionHandler) GetInsights(c *gin.Context) {
	st, err := h.sessionService.Insights(middleware.GetSessionID(c))
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"insights": st})
}

// ─── Helpers ────────────────────────────────────────────────────────

// respond writes the snapshot returned by a state transition.
func (h *SessionHandler) respond(c *gin.Context) func(quiz.Snapshot, error) {
	return func(snap quiz.Snapshot, err error) {
		if err != nil {
			failWith(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"state": snap})
	}
}

func questionID(c *gin.Context) (int, bool) {
	qid, err := strconv.Atoi(c.Param("qid"))
	if err != nil || qid < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return qid, true
}
