// Package batch runs extractions outside the HTTP service: over corpus files
// matched by glob patterns, or over files dropped into a watched directory.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/corpus"
	"docqa/internal/domain"
	"docqa/internal/extraction"
	"docqa/internal/port"
	"docqa/internal/questionstore"
	"docqa/internal/resultexport"
)

// Options selects the model and batch size of one offline run. Zero values
// use the configured defaults.
type Options struct {
	Model     string
	BatchSize int
}

// Runner executes extraction runs against local files.
type Runner struct {
	engine *extraction.Engine
	cfg    config.ExtractionConfig
}

// NewRunner creates a Runner. observer may be nil.
func NewRunner(invoker port.ModelInvoker, observer port.ExtractionObserver, cfg config.ExtractionConfig) *Runner {
	return &Runner{
		engine: extraction.NewEngine(invoker, observer, cfg.CorpusFields(), cfg.MaxReplyTokens),
		cfg:    cfg,
	}
}

// ExpandGlobs resolves patterns (with ** support) to a sorted, de-duplicated
// list of regular files. It fails when nothing matches.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %s", strings.Join(patterns, ", "))
	}
	sort.Strings(files)
	return files, nil
}

// FormatFromPath picks an export format from the file extension.
func FormatFromPath(path string) (domain.ExportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return domain.ExportFormatJSON, nil
	case ".csv":
		return domain.ExportFormatCSV, nil
	case ".xlsx":
		return domain.ExportFormatXLSX, nil
	case ".yaml", ".yml":
		return domain.ExportFormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadQuestions reads a JSON or YAML question-set file into a fresh store.
func LoadQuestions(path string) (*questionstore.Store, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cats, err := questionstore.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	store := questionstore.New()
	if _, err := store.Import(cats); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// LoadCorpus loads every file and concatenates their documents. All files
// must share the same header.
func (r *Runner) LoadCorpus(paths []string) (*domain.Corpus, error) {
	var merged *domain.Corpus
	for _, path := range paths {
		c, err := r.loadFile(path)
		if err != nil {
			return nil, err
		}
		logrus.Infof("batch.LoadCorpus: %s: %d documents (%d malformed rows skipped, %d incomplete rows dropped)",
			path, len(c.Documents), c.SkippedRows, c.DroppedRows)
		if merged == nil {
			merged = c
			continue
		}
		if err := corpus.Append(merged, c); err != nil {
			return nil, err
		}
	}
	if merged == nil {
		return nil, domain.ErrNoDocuments
	}
	return merged, nil
}

func (r *Runner) loadFile(path string) (*domain.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	c, err := corpus.Load(f, path, r.cfg.CorpusFields())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Run validates opts and extracts answers for every document in c.
func (r *Runner) Run(ctx context.Context, c *domain.Corpus, questions *questionstore.Store, opts Options) (*domain.ResultTable, error) {
	model := opts.Model
	if model == "" {
		model = r.cfg.DefaultModel
	}
	if !r.cfg.SupportsModel(model) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedModel, model)
	}
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = r.cfg.DefaultBatchSize
	}
	if err := extraction.ValidateBatchSize(batchSize, r.cfg.MaxBatchSize); err != nil {
		return nil, err
	}
	if c == nil || len(c.Documents) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if questions.Len() == 0 {
		return nil, domain.ErrNoQuestions
	}

	total := len(c.Documents)
	return r.engine.Run(ctx, extraction.RunInput{
		RunID:     uuid.New(),
		Documents: c.Documents,
		Questions: questions.Snapshot(),
		Model:     model,
		BatchSize: batchSize,
	}, func(processed, _ int) {
		logrus.Infof("batch.Run: %d/%d documents (%.0f%%)", processed, total, 100*float64(processed)/float64(total))
	})
}

// WriteResults writes table to path in the format implied by its extension.
func WriteResults(path string, table *domain.ResultTable) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := resultexport.Write(f, table, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
