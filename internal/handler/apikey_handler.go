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

// APIKeyHandler manages the generation API key cached for a browser client.
type APIKeyHandler struct {
	keyService *service.APIKeyService
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(keyService *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keyService: keyService}
}

// GetAPIKey godoc
// GET /api/v1/clients/:client_id/api-key
// Returns the key so the browser can prefill its input.
func (h *APIKeyHandler) GetAPIKey(c *gin.Context) {
	clientID := middleware.GetClientID(c)
	key, err := h.keyService.Get(c.Request.Context(), clientID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"api_key": model.APIKeyStatus{
		ClientID: clientID,
		APIKey:   key,
		Present:  key != "",
	}})
}

// SaveAPIKey godoc
// PUT /api/v1/clients/:client_id/api-key
func (h *APIKeyHandler) SaveAPIKey(c *gin.Context) {
	var req model.SaveAPIKeyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.keyService.Save(c.Request.Context(), middleware.GetClientID(c), req.APIKey); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "api key saved"})
}

// ClearAPIKey godoc
// DELETE /api/v1/clients/:client_id/api-key
func (h *APIKeyHandler) ClearAPIKey(c *gin.Context) {
	if err := h.keyService.Clear(c.Request.Context(), middleware.GetClientID(c)); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "api key cleared"})
}
