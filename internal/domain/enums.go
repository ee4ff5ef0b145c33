package domain

// EventKind identifies an extraction event.
type EventKind string

const (
	EventRunStarted       EventKind = "run_started"
	EventDocumentSkipped  EventKind = "document_skipped"
	EventBatchAnswered    EventKind = "batch_answered"
	EventBatchParseFailed EventKind = "batch_parse_failed"
	EventDocumentDone     EventKind = "document_completed"
	EventRunCompleted     EventKind = "run_completed"
	EventRunFailed        EventKind = "run_failed"
)

// ExportFormat is a supported serialization for result and question exports.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatYAML ExportFormat = "yaml"
)

// ContentTypes maps export formats to their MIME type.
var ContentTypes = map[ExportFormat]string{
	ExportFormatJSON: "application/json",
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExportFormatYAML: "application/yaml",
}
