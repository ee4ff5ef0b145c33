package handler

import (
	"time"

	"github.com/google/uuid"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// CreateCategoryRequest represents the create category request body.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required" example:"Peticao Inicial"`
}

// AddRecordRequest represents the add question record request body.
type AddRecordRequest struct {
	Label    string `json:"label" binding:"required" example:"Valor da Causa"`
	Question string `json:"question" binding:"required" example:"Qual o valor da causa?"`
	Prompt   string `json:"prompt" binding:"required" example:"Extraia o valor da causa em reais"`
}

// RemoveRecordsRequest represents the remove records request body.
type RemoveRecordsRequest struct {
	Indices []int `json:"indices" binding:"required" example:"0,2"`
}

// StartExtractionRequest represents the start extraction request body.
type StartExtractionRequest struct {
	Model     string `json:"model" example:"databricks-meta-llama-3-1-405b-instruct"`
	BatchSize int    `json:"batch_size" example:"3"`
	Async     bool   `json:"async" example:"true"`
}

// --- Response Types ---

// SessionTokenResponse represents a newly created session.
type SessionTokenResponse struct {
	Token     string    `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	SessionID uuid.UUID `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ExpiresAt time.Time `json:"expires_at" example:"2026-01-15T18:30:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string            `json:"status" example:"ok"`
	Components map[string]string `json:"components,omitempty"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// ImportResultResponse represents the outcome of a question import.
type ImportResultResponse struct {
	CategoriesCreated int `json:"categories_created" example:"2"`
	RecordsAdded      int `json:"records_added" example:"14"`
	DuplicatesDropped int `json:"duplicates_dropped" example:"1"`
}

// CorpusSummaryResponse represents an uploaded corpus without its rows.
type CorpusSummaryResponse struct {
	SourceName  string    `json:"source_name" example:"processos.csv"`
	Columns     []string  `json:"columns" example:"numero_tj,tipo_doc_rec,tipo_doc,texto_total"`
	Documents   int       `json:"documents" example:"120"`
	SkippedRows int       `json:"skipped_rows" example:"2"`
	DroppedRows int       `json:"dropped_rows" example:"5"`
	LoadedAt    time.Time `json:"loaded_at" example:"2026-01-15T10:30:00Z"`
}

// ProgressResponse represents the state of a session's extraction run.
type ProgressResponse struct {
	Running   bool      `json:"running" example:"true"`
	RunID     uuid.UUID `json:"run_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Processed int       `json:"processed" example:"12"`
	Total     int       `json:"total" example:"40"`
	Fraction  float64   `json:"fraction" example:"0.3"`
	StartedAt time.Time `json:"started_at" example:"2026-01-15T10:30:00Z"`
	LastError string    `json:"last_error,omitempty" example:""`
}

// ResultTableResponse represents the published results of a run.
type ResultTableResponse struct {
	RunID     uuid.UUID                `json:"run_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Model     string                   `json:"model" example:"databricks-meta-llama-3-1-405b-instruct"`
	BatchSize int                      `json:"batch_size" example:"3"`
	Records   []map[string]interface{} `json:"records"`
	Stats     RunStatsResponse         `json:"stats"`
}

// RunStatsResponse represents the counters of one run.
type RunStatsResponse struct {
	Documents     int `json:"documents" example:"40"`
	Processed     int `json:"processed" example:"38"`
	Skipped       int `json:"skipped" example:"2"`
	Batches       int `json:"batches" example:"190"`
	ParseFailures int `json:"parse_failures" example:"1"`
}

// PublishedExportResponse represents an export uploaded to object storage.
type PublishedExportResponse struct {
	Bucket    string    `json:"bucket" example:"docqa-exports"`
	Key       string    `json:"key" example:"exports/550e8400-e29b-41d4-a716-446655440000/results_550e8400_2026-01-15.csv"`
	URL       string    `json:"url" example:"https://docqa-exports.s3.amazonaws.com/exports/..."`
	ExpiresAt time.Time `json:"expires_at" example:"2026-01-15T11:30:00Z"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
