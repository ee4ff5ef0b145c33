package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docqa/internal/service"
)

// ExtractionHandler handles extraction run endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Models handles GET /api/v1/models
// @Summary List selectable models
// @Description List the supported model identifiers and the batch size bounds
// @Tags extractions
// @Produce json
// @Success 200 {object} Response{data=service.ModelsInfo} "Models"
// @Router /models [get]
func (h *ExtractionHandler) Models(c *gin.Context) {
	RespondOK(c, h.extractionService.Models())
}

// Start handles POST /api/v1/extractions
// @Summary Run an extraction
// @Description Run the loaded questions over the loaded corpus. With async=true the run continues in the background and 202 is returned; otherwise the request waits for the results. Results are only replaced when the run succeeds.
// @Tags extractions
// @Accept json
// @Produce json
// @Param request body StartExtractionRequest false "Run options; empty values use the defaults"
// @Success 200 {object} Response{data=ResultTableResponse} "Run finished"
// @Success 202 {object} Response{data=ProgressResponse} "Run started"
// @Failure 400 {object} ErrorResponseBody "Unsupported model or invalid batch size"
// @Failure 409 {object} ErrorResponseBody "No documents, no questions, or a run is already in progress"
// @Failure 502 {object} ErrorResponseBody "Model invocation failed"
// @Security BearerAuth
// @Router /extractions [post]
func (h *ExtractionHandler) Start(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	var req service.StartExtractionInput
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	if req.Async {
		progress, err := h.extractionService.Start(c.Request.Context(), state, req)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondAccepted(c, progress)
		return
	}

	table, err := h.extractionService.Run(c.Request.Context(), state, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, table)
}

// Progress handles GET /api/v1/extractions/progress
// @Summary Get run progress
// @Tags extractions
// @Produce json
// @Success 200 {object} Response{data=ProgressResponse} "Progress"
// @Security BearerAuth
// @Router /extractions/progress [get]
func (h *ExtractionHandler) Progress(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}
	RespondOK(c, h.extractionService.Progress(state))
}

// Cancel handles POST /api/v1/extractions/cancel
// @Summary Cancel the running extraction
// @Description Cancel the session's active run, if any. A canceled run publishes nothing.
// @Tags extractions
// @Produce json
// @Success 200 {object} Response{data=MessageResponse} "Cancel requested"
// @Security BearerAuth
// @Router /extractions/cancel [post]
func (h *ExtractionHandler) Cancel(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}
	state.CancelRun()
	RespondOK(c, gin.H{"message": "cancel requested"})
}

// Events handles GET /api/v1/extractions/:run_id/events
// @Summary List audited events of a run
// @Tags extractions
// @Produce json
// @Param run_id path string true "Run ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ExtractionEvent,meta=PagMeta} "Events"
// @Failure 400 {object} ErrorResponseBody "Invalid run ID"
// @Failure 503 {object} ErrorResponseBody "Audit trail disabled"
// @Security BearerAuth
// @Router /extractions/{run_id}/events [get]
func (h *ExtractionHandler) Events(c *gin.Context) {
	if _, ok := extractSession(c); !ok {
		return
	}

	runID, err := uuid.Parse(c.Param("run_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return
	}

	offset, limit := parsePagination(c)
	events, total, err := h.extractionService.Events(c.Request.Context(), runID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, events, PagMeta{Total: total, Offset: offset, Limit: limit})
}
