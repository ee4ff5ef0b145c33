package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/middleware"
	"docqa/internal/session"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, "SESSION_EXPIRED", "session not found or expired"
	case errors.Is(err, domain.ErrEmptyCategoryName):
		return http.StatusBadRequest, "INVALID_CATEGORY", "category name is required"
	case errors.Is(err, domain.ErrCategoryExists):
		return http.StatusConflict, "CATEGORY_EXISTS", "category already exists"
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found"
	case errors.Is(err, domain.ErrIncompleteRecord):
		return http.StatusBadRequest, "INCOMPLETE_RECORD", "label, question and prompt are all required"
	case errors.Is(err, domain.ErrRecordIndexOutOfRange):
		return http.StatusBadRequest, "INDEX_OUT_OF_RANGE", "record index out of range"
	case errors.Is(err, domain.ErrInvalidImport):
		return http.StatusBadRequest, "INVALID_IMPORT", err.Error()
	case errors.Is(err, domain.ErrInvalidEncoding):
		return http.StatusBadRequest, "INVALID_ENCODING", "upload is not valid UTF-8"
	case errors.Is(err, domain.ErrMalformedUpload):
		return http.StatusBadRequest, "MALFORMED_UPLOAD", err.Error()
	case errors.Is(err, domain.ErrMissingColumns):
		return http.StatusBadRequest, "MISSING_COLUMNS", err.Error()
	case errors.Is(err, domain.ErrUnsupportedUpload):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported export format"
	case errors.Is(err, domain.ErrNoDocuments):
		return http.StatusConflict, "NO_DOCUMENTS", "no documents loaded; upload a corpus first"
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusConflict, "NO_QUESTIONS", "no questions registered"
	case errors.Is(err, domain.ErrUnsupportedModel):
		return http.StatusBadRequest, "UNSUPPORTED_MODEL", err.Error()
	case errors.Is(err, domain.ErrInvalidBatchSize):
		return http.StatusBadRequest, "INVALID_BATCH_SIZE", err.Error()
	case errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict, "RUN_IN_PROGRESS", "an extraction run is already in progress"
	case errors.Is(err, domain.ErrNoResults):
		return http.StatusNotFound, "NO_RESULTS", "no extraction results available"
	case errors.Is(err, domain.ErrModelInvocation):
		return http.StatusBadGateway, "MODEL_INVOCATION_FAILED", err.Error()
	case errors.Is(err, domain.ErrStorageDisabled):
		return http.StatusServiceUnavailable, "STORAGE_DISABLED", "export storage is not configured"
	case errors.Is(err, domain.ErrAuditDisabled):
		return http.StatusServiceUnavailable, "AUDIT_DISABLED", "extraction audit trail is not configured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// extractSession returns the session resolved by the auth middleware.
// Returns false if it is missing (error response already written).
func extractSession(c *gin.Context) (*session.State, bool) {
	state, err := middleware.GetSession(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context")
		return nil, false
	}
	return state, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		logrus.WithField("request_id", requestID).Errorf("internal error: %v", err)
	}
	RespondError(c, status, code, msg)
}

// parsePagination extracts offset and limit from query parameters.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

// parseFormat reads the format query parameter, defaulting to def.
func parseFormat(c *gin.Context, def domain.ExportFormat) domain.ExportFormat {
	return domain.ExportFormat(c.DefaultQuery("format", string(def)))
}

// sendAttachment writes body as a download.
func sendAttachment(c *gin.Context, filename string, format domain.ExportFormat, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, domain.ContentTypes[format], body)
}
