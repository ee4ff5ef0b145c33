package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa/internal/middleware"
	"docqa/internal/service"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create handles POST /api/v1/sessions
// @Summary Create a session
// @Description Create an empty working session and return the bearer token addressing it
// @Tags sessions
// @Produce json
// @Success 201 {object} Response{data=SessionTokenResponse} "Session created"
// @Failure 500 {object} ErrorResponseBody "Internal error"
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	token, err := h.sessionService.Create(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, token)
}

// End handles DELETE /api/v1/sessions/current
// @Summary End the current session
// @Description Discard the session, its questions, corpus and results. A running extraction is canceled.
// @Tags sessions
// @Produce json
// @Success 200 {object} Response{data=MessageResponse} "Session ended"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /sessions/current [delete]
func (h *SessionHandler) End(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context")
		return
	}

	if err := h.sessionService.End(c.Request.Context(), sessionID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "session ended"})
}
