package handler

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa/internal/domain"
	"docqa/internal/service"
)

// QuestionHandler handles question-set editing endpoints.
type QuestionHandler struct {
	questionService service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List handles GET /api/v1/questions
// @Summary List question categories
// @Description List every category with its records in creation order
// @Tags questions
// @Produce json
// @Success 200 {object} Response{data=[]domain.Category} "Categories"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /questions [get]
func (h *QuestionHandler) List(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}
	cats := h.questionService.List(state)
	if cats == nil {
		cats = []domain.Category{}
	}
	RespondOK(c, cats)
}

// CreateCategory handles POST /api/v1/questions/categories
// @Summary Create a category
// @Tags questions
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "Category name"
// @Success 201 {object} Response{data=MessageResponse} "Category created"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 409 {object} ErrorResponseBody "Category already exists"
// @Security BearerAuth
// @Router /questions/categories [post]
func (h *QuestionHandler) CreateCategory(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	var req service.AddCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	if err := h.questionService.AddCategory(state, req); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, gin.H{"message": "category created"})
}

// DeleteCategory handles DELETE /api/v1/questions/categories/:name
// @Summary Delete a category
// @Tags questions
// @Produce json
// @Param name path string true "Category name"
// @Success 200 {object} Response{data=MessageResponse} "Category deleted"
// @Failure 404 {object} ErrorResponseBody "Category not found"
// @Security BearerAuth
// @Router /questions/categories/{name} [delete]
func (h *QuestionHandler) DeleteCategory(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	if err := h.questionService.RemoveCategory(state, c.Param("name")); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "category deleted"})
}

// ListRecords handles GET /api/v1/questions/categories/:name/records
// @Summary List the records of a category
// @Tags questions
// @Produce json
// @Param name path string true "Category name"
// @Success 200 {object} Response{data=[]domain.QuestionRecord} "Records"
// @Failure 404 {object} ErrorResponseBody "Category not found"
// @Security BearerAuth
// @Router /questions/categories/{name}/records [get]
func (h *QuestionHandler) ListRecords(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	records, err := h.questionService.Records(state, c.Param("name"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// AddRecord handles POST /api/v1/questions/categories/:name/records
// @Summary Append a question record
// @Tags questions
// @Accept json
// @Produce json
// @Param name path string true "Category name"
// @Param request body AddRecordRequest true "Question record"
// @Success 201 {object} Response{data=MessageResponse} "Record added"
// @Failure 400 {object} ErrorResponseBody "Incomplete record"
// @Failure 404 {object} ErrorResponseBody "Category not found"
// @Security BearerAuth
// @Router /questions/categories/{name}/records [post]
func (h *QuestionHandler) AddRecord(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	var req service.AddRecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INCOMPLETE_RECORD", "label, question and prompt are all required")
		return
	}

	if err := h.questionService.AddRecord(state, c.Param("name"), req); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, gin.H{"message": "record added"})
}

// RemoveRecords handles POST /api/v1/questions/categories/:name/records/remove
// @Summary Remove records by position
// @Description Remove the records at the given zero-based positions. Nothing is removed if any position is out of range.
// @Tags questions
// @Accept json
// @Produce json
// @Param name path string true "Category name"
// @Param request body RemoveRecordsRequest true "Positions to remove"
// @Success 200 {object} Response{data=MessageResponse} "Records removed"
// @Failure 400 {object} ErrorResponseBody "Index out of range"
// @Failure 404 {object} ErrorResponseBody "Category not found"
// @Security BearerAuth
// @Router /questions/categories/{name}/records/remove [post]
func (h *QuestionHandler) RemoveRecords(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	var req service.RemoveRecordsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "indices is required")
		return
	}

	if err := h.questionService.RemoveRecords(state, c.Param("name"), req); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "records removed"})
}

// Import handles POST /api/v1/questions/import
// @Summary Import a question-set file
// @Description Merge a JSON or YAML mapping of category to records. The format follows the format query parameter or the file extension.
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Question-set file (.json, .yaml)"
// @Param format query string false "json or yaml"
// @Success 200 {object} Response{data=ImportResultResponse} "Import summary"
// @Failure 400 {object} ErrorResponseBody "Invalid import"
// @Security BearerAuth
// @Router /questions/import [post]
func (h *QuestionHandler) Import(c *gin.Context) {
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

	format := domain.ExportFormat(c.Query("format"))
	if format == "" {
		format = formatFromFilename(header.Filename)
	}

	result, err := h.questionService.Import(state, file, format)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Export handles GET /api/v1/questions/export
// @Summary Export the question sets
// @Tags questions
// @Produce json
// @Produce application/yaml
// @Param format query string false "json (default) or yaml"
// @Success 200 {file} file "Question-set file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Security BearerAuth
// @Router /questions/export [get]
func (h *QuestionHandler) Export(c *gin.Context) {
	state, ok := extractSession(c)
	if !ok {
		return
	}

	format := parseFormat(c, domain.ExportFormatJSON)
	var buf bytes.Buffer
	if err := h.questionService.Export(state, &buf, format); err != nil {
		HandleError(c, err)
		return
	}
	sendAttachment(c, "questions."+string(format), format, buf.Bytes())
}

// formatFromFilename picks the codec from the file extension, JSON by default.
func formatFromFilename(name string) domain.ExportFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return domain.ExportFormatYAML
	default:
		return domain.ExportFormatJSON
	}
}
