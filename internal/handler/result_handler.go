package handler

import (
	"bytes"

	"github.com/gin-gonic/gin"

	"docqa/internal/domain"
	"docqa/internal/service"
)

// ResultHandler handles extraction result endpoints.
type ResultHandler struct {
	resultService service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// Get handles GET /api/v1/results
// @Summary Get the published results
// @Tags results
// @Produce json
// @Success 200 {object} Response{data=ResultTableResponse} "Results"
// @Failure 404 {object} ErrorResponseBody "No results"
// @Security BearerAuth
// @Router /results [get]
func (h *ResultHandler) Get(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	table, err := h.resultService.Get(state)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, table)
}

// Export handles GET /api/v1/results/export
// @Summary Download the published results
// @Tags results
// @Produce json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "json (default), csv or xlsx"
// @Success 200 {file} file "Results file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 404 {object} ErrorResponseBody "No results"
// @Security BearerAuth
// @Router /results/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	format := parseFormat(c, domain.ExportFormatJSON)
	var buf bytes.Buffer
	filename, err := h.resultService.Export(state, &buf, format)
	if err != nil {
		HandleError(c, err)
		return
	}
	sendAttachment(c, filename, format, buf.Bytes())
}

// Publish handles POST /api/v1/results/publish
// @Summary Publish the results to object storage
// @Description Upload an export of the published results and return a presigned download URL
// @Tags results
// @Produce json
// @Param format query string false "json (default), csv or xlsx"
// @Success 201 {object} Response{data=PublishedExportResponse} "Export published"
// @Failure 404 {object} ErrorResponseBody "No results"
// @Failure 503 {object} ErrorResponseBody "Storage disabled"
// @Security BearerAuth
// @Router /results/publish [post]
func (h *ResultHandler) Publish(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	out, err := h.resultService.Publish(c.Request.Context(), state, parseFormat(c, domain.ExportFormatJSON))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, out)
}
