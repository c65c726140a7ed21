package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizgen/quizgen-backend/internal/export"
	"github.com/quizgen/quizgen-backend/internal/quiz"
	"github.com/quizgen/quizgen-backend/internal/response"
	"github.com/quizgen/quizgen-backend/internal/service"
)

// classify maps a service error to its HTTP status and API error code.
func classify(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, service.ErrMissingInput):
		return http.StatusBadRequest, response.ErrMissingInput
	case errors.Is(err, service.ErrNoClient):
		return http.StatusBadRequest, response.ErrInvalidID
	case errors.Is(err, service.ErrInvalidAPIKey):
		return http.StatusUnauthorized, response.ErrInvalidAPIKey
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, response.ErrRateLimited
	case errors.Is(err, service.ErrServerUnresponsive):
		return http.StatusGatewayTimeout, response.ErrServerUnresponsive
	case errors.Is(err, service.ErrGenerationFailed):
		return http.StatusBadGateway, response.ErrGenerationFailed
	case errors.Is(err, service.ErrAborted):
		return http.StatusConflict, response.ErrGenerationAborted
	case errors.Is(err, service.ErrNoQuestions):
		return http.StatusConflict, response.ErrNoQuestions
	case errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusBadRequest, response.ErrUnsupportedExport
	case errors.Is(err, export.ErrFontUnavailable):
		return http.StatusInternalServerError, response.ErrExportUnavailable
	case errors.Is(err, quiz.ErrQuestionNotFound):
		return http.StatusNotFound, response.ErrQuestionNotFound
	case errors.Is(err, quiz.ErrKindMismatch):
		return http.StatusUnprocessableEntity, response.ErrKindMismatch
	case errors.Is(err, quiz.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity, response.ErrIndexOutOfRange
	case errors.Is(err, quiz.ErrIncomplete):
		return http.StatusConflict, response.ErrQuizIncomplete
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// failWith writes the error envelope for err. Generation failures carry
// the message relayed from the quiz generator.
func failWith(c *gin.Context, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}

	var ge *service.GenerationError
	if errors.As(err, &ge) {
		response.FailWithMessage(c, status, code, ge.Message)
		return
	}
	response.Fail(c, status, code)
}
