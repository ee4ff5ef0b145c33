package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Keys seeded into every ExtractionRecord before any answer is merged.
const (
	FieldProcessIdentifier = "Process Identifier"
	FieldDocumentType      = "Document Type"
)

// QuestionRecord is one extraction question inside a category. Its position
// within the category is its identity; Label is the merge key for answers.
type QuestionRecord struct {
	Label    string `json:"label" yaml:"label"`
	Question string `json:"question" yaml:"question"`
	Prompt   string `json:"prompt" yaml:"prompt"`
}

// Complete reports whether all three fields are filled in.
func (q QuestionRecord) Complete() bool {
	return q.Label != "" && q.Question != "" && q.Prompt != ""
}

// Category is a document type together with its ordered question records.
type Category struct {
	Name    string           `json:"name"`
	Records []QuestionRecord `json:"records"`
}

// DocumentRecord is one uploaded row: column name to cell value.
type DocumentRecord map[string]string

// CorpusFields names the columns the extraction engine reads from each row.
type CorpusFields struct {
	Type        string // selects the question category
	DisplayType string // copied into the record as "Document Type"
	Text        string // full document text sent to the model
	Identifier  string // copied into the record as "Process Identifier"
}

// Required returns the distinct column names a corpus must provide.
func (f CorpusFields) Required() []string {
	seen := make(map[string]bool, 4)
	var cols []string
	for _, c := range []string{f.Identifier, f.Type, f.DisplayType, f.Text} {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cols = append(cols, c)
	}
	return cols
}

// Corpus holds the rows that survived upload filtering.
type Corpus struct {
	SourceName  string           `json:"source_name"`
	Columns     []string         `json:"columns"`
	Documents   []DocumentRecord `json:"documents"`
	SkippedRows int              `json:"skipped_rows"` // malformed (wrong column count)
	DroppedRows int              `json:"dropped_rows"` // had at least one empty field
	LoadedAt    time.Time        `json:"loaded_at"`
}

// ExtractionRecord accumulates the merged answers for one document. Keys keep
// the order in which they were first set; a later Set on an existing key
// overwrites the value in place.
type ExtractionRecord struct {
	keys   []string
	values map[string]interface{}
}

// NewExtractionRecord creates a record seeded with the document's identity.
func NewExtractionRecord(identifier, documentType string) *ExtractionRecord {
	r := &ExtractionRecord{values: make(map[string]interface{})}
	r.Set(FieldProcessIdentifier, identifier)
	r.Set(FieldDocumentType, documentType)
	return r
}

// Set stores value under key, last write wins.
func (r *ExtractionRecord) Set(key string, value interface{}) {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *ExtractionRecord) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the record's keys in first-set order.
func (r *ExtractionRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *ExtractionRecord) Len() int {
	return len(r.keys)
}

// MarshalJSON writes the record as a flat object in key order without
// escaping HTML characters.
func (r *ExtractionRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := MarshalLiteral(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalLiteral(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalLiteral encodes v as compact JSON with HTML escaping disabled.
func MarshalLiteral(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RunStats counts what happened during one extraction run.
type RunStats struct {
	Documents     int `json:"documents"`
	Processed     int `json:"processed"`
	Skipped       int `json:"skipped"`
	Batches       int `json:"batches"`
	ParseFailures int `json:"parse_failures"`
}

// ResultTable is the published output of one successful extraction run.
type ResultTable struct {
	RunID       uuid.UUID           `json:"run_id"`
	Model       string              `json:"model"`
	BatchSize   int                 `json:"batch_size"`
	Records     []*ExtractionRecord `json:"records"`
	Stats       RunStats            `json:"stats"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
}

// Columns returns every key across all records in first-seen order.
func (t *ResultTable) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range t.Records {
		for _, k := range rec.keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// RunProgress describes the state of a session's extraction run.
type RunProgress struct {
	Running   bool      `json:"running"`
	RunID     uuid.UUID `json:"run_id"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Fraction  float64   `json:"fraction"`
	StartedAt time.Time `json:"started_at"`
	LastError string    `json:"last_error,omitempty"`
}
