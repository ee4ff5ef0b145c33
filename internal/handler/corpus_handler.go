package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa/internal/domain"
	"docqa/internal/service"
)

// CorpusHandler handles document corpus endpoints.
type CorpusHandler struct {
	corpusService service.CorpusService
}

// NewCorpusHandler creates a new CorpusHandler.
func NewCorpusHandler(corpusService service.CorpusService) *CorpusHandler {
	return &CorpusHandler{corpusService: corpusService}
}

func corpusSummary(c *domain.Corpus) CorpusSummaryResponse {
	return CorpusSummaryResponse{
		SourceName:  c.SourceName,
		Columns:     c.Columns,
		Documents:   len(c.Documents),
		SkippedRows: c.SkippedRows,
		DroppedRows: c.DroppedRows,
		LoadedAt:    c.LoadedAt,
	}
}

// Upload handles POST /api/v1/corpus
// @Summary Upload a document corpus
// @Description Upload a CSV or XLSX table. It replaces the session's corpus; malformed rows are skipped and rows with empty fields dropped.
// @Tags corpus
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Corpus file (CSV or XLSX)"
// @Success 201 {object} Response{data=CorpusSummaryResponse} "Corpus loaded"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type, bad encoding or missing columns"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /corpus [post]
func (h *CorpusHandler) Upload(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	corpus, err := h.corpusService.Upload(c.Request.Context(), state, file, header.Filename, header.Size)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, corpusSummary(corpus))
}

// Get handles GET /api/v1/corpus
// @Summary Describe the loaded corpus
// @Tags corpus
// @Produce json
// @Success 200 {object} Response{data=CorpusSummaryResponse} "Corpus summary"
// @Failure 409 {object} ErrorResponseBody "No documents loaded"
// @Security BearerAuth
// @Router /corpus [get]
func (h *CorpusHandler) Get(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	corpus, err := h.corpusService.Get(state)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, corpusSummary(corpus))
}

// Export handles GET /api/v1/corpus/export
// @Summary Download the loaded corpus as JSON
// @Tags corpus
// @Produce json
// @Success 200 {file} file "Corpus rows"
// @Failure 409 {object} ErrorResponseBody "No documents loaded"
// @Security BearerAuth
// @Router /corpus/export [get]
func (h *CorpusHandler) Export(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.corpusService.Export(state, &buf); err != nil {
		HandleError(c, err)
		return
	}
	sendAttachment(c, "documents.json", domain.ExportFormatJSON, buf.Bytes())
}
