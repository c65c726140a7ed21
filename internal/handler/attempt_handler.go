package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizgen/quizgen-backend/internal/middleware"
	"github.com/quizgen/quizgen-backend/internal/model"
	"github.com/quizgen/quizgen-backend/internal/response"
	"github.com/quizgen/quizgen-backend/internal/service"
	"github.com/quizgen/quizgen-backend/internal/validator"
)

// AttemptHandler lists a client's finished quizzes.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// ListAttempts godoc
// GET /api/v1/clients/:client_id/attempts?page=1&per_page=10
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	var filter model.AttemptFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	attempts, pagination, err := h.attemptService.List(c.Request.Context(), middleware.GetClientID(c), filter.Page, filter.PerPage)
	if err != nil {
		failWith(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, pagination)
}
