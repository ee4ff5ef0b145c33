package domain

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionNotFound = errors.New("session not found or expired")

	ErrEmptyCategoryName     = errors.New("category name is required")
	ErrCategoryExists        = errors.New("category already exists")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrIncompleteRecord      = errors.New("label, question and prompt are all required")
	ErrRecordIndexOutOfRange = errors.New("record index out of range")
	ErrInvalidImport         = errors.New("question import must be a mapping of category to records")

	ErrInvalidEncoding   = errors.New("upload is not valid UTF-8")
	ErrMalformedUpload   = errors.New("upload could not be parsed as comma-delimited text")
	ErrMissingColumns    = errors.New("upload is missing required columns")
	ErrUnsupportedUpload = errors.New("unsupported upload type; allowed: csv, xlsx")
	ErrUploadTooLarge    = errors.New("upload exceeds maximum allowed size")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrStorageDisabled   = errors.New("export storage is not configured")
	ErrAuditDisabled     = errors.New("extraction audit trail is not configured")

	ErrNoDocuments      = errors.New("no documents loaded")
	ErrNoQuestions      = errors.New("no questions registered")
	ErrUnsupportedModel = errors.New("model is not in the supported list")
	ErrInvalidBatchSize = errors.New("batch size out of range")
	ErrRunInProgress    = errors.New("an extraction run is already in progress for this session")
	ErrNoResults        = errors.New("no extraction results available")
	ErrModelInvocation  = errors.New("model invocation failed")
)
