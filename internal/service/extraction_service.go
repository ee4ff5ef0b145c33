package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/extraction"
	"docqa/internal/port"
	"docqa/internal/session"
)

// StartExtractionInput is the DTO for starting a run. Zero values select the
// configured defaults.
type StartExtractionInput struct {
	Model     string `json:"model"`
	BatchSize int    `json:"batch_size"`
	Async     bool   `json:"async"`
}

// ModelsInfo lists the selectable models and batch size bounds.
type ModelsInfo struct {
	Models           []string `json:"models"`
	DefaultModel     string   `json:"default_model"`
	DefaultBatchSize int      `json:"default_batch_size"`
	MinBatchSize     int      `json:"min_batch_size"`
	MaxBatchSize     int      `json:"max_batch_size"`
}

// ExtractionService defines the extraction run contract.
type ExtractionService interface {
	Models() ModelsInfo
	Run(ctx context.Context, state *session.State, input StartExtractionInput) (*domain.ResultTable, error)
	Start(ctx context.Context, state *session.State, input StartExtractionInput) (*domain.RunProgress, error)
	Progress(state *session.State) domain.RunProgress
	Events(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.ExtractionEvent, int, error)
}

type extractionService struct {
	engine    *extraction.Engine
	eventRepo port.ExtractionEventRepository
	cfg       config.ExtractionConfig
	now       func() time.Time
}

// NewExtractionService creates a new ExtractionService implementation.
// eventRepo may be nil when the audit trail is disabled.
func NewExtractionService(
	invoker port.ModelInvoker,
	observer port.ExtractionObserver,
	eventRepo port.ExtractionEventRepository,
	cfg config.ExtractionConfig,
) ExtractionService {
	return &extractionService{
		engine:    extraction.NewEngine(invoker, observer, cfg.CorpusFields(), cfg.MaxReplyTokens),
		eventRepo: eventRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *extractionService) Models() ModelsInfo {
	models := make([]string, len(s.cfg.Models))
	copy(models, s.cfg.Models)
	return ModelsInfo{
		Models:           models,
		DefaultModel:     s.cfg.DefaultModel,
		DefaultBatchSize: s.cfg.DefaultBatchSize,
		MinBatchSize:     1,
		MaxBatchSize:     s.cfg.MaxBatchSize,
	}
}

// Run executes a run synchronously. The session's results are replaced only
// when the whole run succeeds.
func (s *extractionService) Run(ctx context.Context, state *session.State, input StartExtractionInput) (*domain.ResultTable, error) {
	prepared, err := s.prepare(state, input)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := state.BeginRun(prepared.RunID, len(prepared.Documents), s.now(), cancel); err != nil {
		return nil, err
	}

	return s.execute(runCtx, state, prepared)
}

// Start launches a run in the background and returns its initial progress.
// The run outlives the request and is canceled when the session ends.
func (s *extractionService) Start(ctx context.Context, state *session.State, input StartExtractionInput) (*domain.RunProgress, error) {
	prepared, err := s.prepare(state, input)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := state.BeginRun(prepared.RunID, len(prepared.Documents), s.now(), cancel); err != nil {
		cancel()
		return nil, err
	}

	go func() {
		defer cancel()
		_, _ = s.execute(runCtx, state, prepared)
	}()

	progress := state.Progress()
	return &progress, nil
}

func (s *extractionService) Progress(state *session.State) domain.RunProgress {
	return state.Progress()
}

func (s *extractionService) Events(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.ExtractionEvent, int, error) {
	if s.eventRepo == nil {
		return nil, 0, domain.ErrAuditDisabled
	}
	return s.eventRepo.ListByRun(ctx, runID, offset, limit)
}

// prepare validates the request and snapshots the session inputs so the run
// reads a fixed view of questions and documents.
func (s *extractionService) prepare(state *session.State, input StartExtractionInput) (extraction.RunInput, error) {
	model := input.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}
	if !s.cfg.SupportsModel(model) {
		return extraction.RunInput{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedModel, model)
	}

	batchSize := input.BatchSize
	if batchSize == 0 {
		batchSize = s.cfg.DefaultBatchSize
	}
	if err := extraction.ValidateBatchSize(batchSize, s.cfg.MaxBatchSize); err != nil {
		return extraction.RunInput{}, err
	}

	c := state.Corpus()
	if c == nil || len(c.Documents) == 0 {
		return extraction.RunInput{}, domain.ErrNoDocuments
	}
	if state.Questions.Len() == 0 {
		return extraction.RunInput{}, domain.ErrNoQuestions
	}

	docs := make([]domain.DocumentRecord, len(c.Documents))
	copy(docs, c.Documents)

	return extraction.RunInput{
		RunID:     uuid.New(),
		Documents: docs,
		Questions: state.Questions.Snapshot(),
		Model:     model,
		BatchSize: batchSize,
	}, nil
}

func (s *extractionService) execute(ctx context.Context, state *session.State, in extraction.RunInput) (*domain.ResultTable, error) {
	logrus.Infof("extraction.Run: session %s run %s started (%d documents, model=%s, batch=%d)",
		state.ID, in.RunID, len(in.Documents), in.Model, in.BatchSize)

	table, err := s.engine.Run(ctx, in, func(processed, total int) {
		state.UpdateProgress(in.RunID, processed, total)
	})
	state.FinishRun(in.RunID, table, err)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logrus.Warnf("extraction.Run: session %s run %s canceled, nothing published", state.ID, in.RunID)
		} else {
			logrus.Errorf("extraction.Run: session %s run %s failed, nothing published: %v", state.ID, in.RunID, err)
		}
		return nil, err
	}

	logrus.Infof("extraction.Run: session %s run %s published %d records (%d skipped, %d parse failures)",
		state.ID, in.RunID, len(table.Records), table.Stats.Skipped, table.Stats.ParseFailures)
	return table, nil
}
