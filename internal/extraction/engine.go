package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// DefaultMaxReplyTokens caps each model reply when no limit is configured.
const DefaultMaxReplyTokens = 4096

// QuestionSource resolves a document type to its ordered question records.
type QuestionSource interface {
	Lookup(category string) ([]domain.QuestionRecord, bool)
}

// ProgressFunc is called after every document, skipped ones included.
type ProgressFunc func(processed, total int)

// RunInput is everything one extraction run reads. Documents and Questions
// must not change while the run executes.
type RunInput struct {
	RunID     uuid.UUID
	Documents []domain.DocumentRecord
	Questions QuestionSource
	Model     string
	BatchSize int
}

// Engine drives the batched question-answer extraction. Model calls are made
// strictly one at a time.
type Engine struct {
	invoker        port.ModelInvoker
	observer       port.ExtractionObserver
	fields         domain.CorpusFields
	maxReplyTokens int
	now            func() time.Time
}

// NewEngine creates an Engine. observer may be nil.
func NewEngine(invoker port.ModelInvoker, observer port.ExtractionObserver, fields domain.CorpusFields, maxReplyTokens int) *Engine {
	if maxReplyTokens <= 0 {
		maxReplyTokens = DefaultMaxReplyTokens
	}
	return &Engine{
		invoker:        invoker,
		observer:       observer,
		fields:         fields,
		maxReplyTokens: maxReplyTokens,
		now:            time.Now,
	}
}

// Run processes every document in order and returns the finished table.
// Documents whose type has no question category are skipped. A reply without
// recoverable JSON contributes no answers. Any model invocation error or
// context cancellation aborts the run and no table is returned.
func (e *Engine) Run(ctx context.Context, in RunInput, progress ProgressFunc) (*domain.ResultTable, error) {
	if err := ValidateBatchSize(in.BatchSize, MaxBatchSize); err != nil {
		return nil, err
	}
	if in.Questions == nil {
		return nil, domain.ErrNoQuestions
	}
	if in.RunID == uuid.Nil {
		in.RunID = uuid.New()
	}

	table := &domain.ResultTable{
		RunID:     in.RunID,
		Model:     in.Model,
		BatchSize: in.BatchSize,
		Records:   []*domain.ExtractionRecord{},
		StartedAt: e.now(),
	}
	table.Stats.Documents = len(in.Documents)

	e.emit(ctx, &domain.ExtractionEvent{
		RunID:  in.RunID,
		Kind:   domain.EventRunStarted,
		Model:  in.Model,
		Detail: fmt.Sprintf("%d documents, batch size %d", len(in.Documents), in.BatchSize),
	})

	total := len(in.Documents)
	for i, doc := range in.Documents {
		rec, err := e.processDocument(ctx, in, i, doc, &table.Stats)
		if err != nil {
			e.emit(context.WithoutCancel(ctx), &domain.ExtractionEvent{
				RunID:             in.RunID,
				Kind:              domain.EventRunFailed,
				DocumentIndex:     i,
				ProcessIdentifier: doc[e.fields.Identifier],
				Model:             in.Model,
				Detail:            err.Error(),
			})
			return nil, err
		}
		if rec != nil {
			table.Records = append(table.Records, rec)
			table.Stats.Processed++
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	table.CompletedAt = e.now()
	e.emit(ctx, &domain.ExtractionEvent{
		RunID: in.RunID,
		Kind:  domain.EventRunCompleted,
		Model: in.Model,
		Detail: fmt.Sprintf("processed %d, skipped %d, batches %d, parse failures %d",
			table.Stats.Processed, table.Stats.Skipped, table.Stats.Batches, table.Stats.ParseFailures),
	})
	return table, nil
}

// processDocument returns nil, nil when the document is skipped.
func (e *Engine) processDocument(ctx context.Context, in RunInput, index int, doc domain.DocumentRecord, stats *domain.RunStats) (*domain.ExtractionRecord, error) {
	category := doc[e.fields.Type]
	identifier := doc[e.fields.Identifier]

	questions, ok := in.Questions.Lookup(category)
	if !ok {
		stats.Skipped++
		e.emit(ctx, &domain.ExtractionEvent{
			RunID:             in.RunID,
			Kind:              domain.EventDocumentSkipped,
			DocumentIndex:     index,
			ProcessIdentifier: identifier,
			Category:          category,
			Model:             in.Model,
			Detail:            "no question category for document type",
		})
		return nil, nil
	}

	rec := domain.NewExtractionRecord(identifier, doc[e.fields.DisplayType])
	batches := Partition(questions, in.BatchSize)

	for b, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, err := BuildPayload(doc[e.fields.Text], batch)
		if err != nil {
			return nil, err
		}

		resp, err := e.invoker.Complete(ctx, port.CompletionRequest{
			SystemInstruction: SystemInstruction,
			UserContent:       payload,
			Model:             in.Model,
			MaxReplyTokens:    e.maxReplyTokens,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: document %d (%s), batch %d of %d: %w",
				domain.ErrModelInvocation, index, identifier, b+1, len(batches), err)
		}
		stats.Batches++

		event := &domain.ExtractionEvent{
			RunID:             in.RunID,
			DocumentIndex:     index,
			ProcessIdentifier: identifier,
			Category:          category,
			BatchIndex:        b,
			BatchCount:        len(batches),
			Labels:            batchLabels(batch),
			Model:             in.Model,
		}

		items, err := ParseReply(resp.Text)
		if err != nil {
			stats.ParseFailures++
			event.Kind = domain.EventBatchParseFailed
			event.RawReply = resp.Text
			event.Detail = withFinishReason(err.Error(), resp.FinishReason)
			e.emit(ctx, event)
			continue
		}

		answered, ignored := mergeAnswers(rec, items)
		event.Kind = domain.EventBatchAnswered
		event.AnswerCount = answered
		if ignored > 0 {
			event.RawReply = resp.Text
			event.Detail = withFinishReason(fmt.Sprintf("ignored %d non-object elements", ignored), resp.FinishReason)
		} else {
			event.Detail = withFinishReason("", resp.FinishReason)
		}
		e.emit(ctx, event)
	}

	e.emit(ctx, &domain.ExtractionEvent{
		RunID:             in.RunID,
		Kind:              domain.EventDocumentDone,
		DocumentIndex:     index,
		ProcessIdentifier: identifier,
		Category:          category,
		BatchCount:        len(batches),
		AnswerCount:       rec.Len() - 2,
		Model:             in.Model,
	})
	return rec, nil
}

// mergeAnswers folds every pair into rec, later labels overwriting earlier
// ones. It returns the number of pairs merged and of elements ignored.
func mergeAnswers(rec *domain.ExtractionRecord, items []json.RawMessage) (answered, ignored int) {
	for _, item := range items {
		pairs, err := decodeAnswer(item)
		if err != nil {
			ignored++
			continue
		}
		for _, p := range pairs {
			rec.Set(p.Label, p.Value)
			answered++
		}
	}
	return answered, ignored
}

func (e *Engine) emit(ctx context.Context, event *domain.ExtractionEvent) {
	if e.observer == nil {
		return
	}
	event.ID = uuid.New()
	event.OccurredAt = e.now()
	if err := e.observer.Observe(ctx, event); err != nil {
		logrus.Warnf("extraction.Engine: observer failed for %s event: %v", event.Kind, err)
	}
}

func batchLabels(batch []domain.QuestionRecord) []string {
	labels := make([]string, len(batch))
	for i, q := range batch {
		labels[i] = q.Label
	}
	return labels
}

// withFinishReason appends the provider's finish reason when the reply was
// cut short.
func withFinishReason(detail, reason string) string {
	switch strings.ToLower(reason) {
	case "", "stop", "end_turn", "eos":
		return detail
	}
	if detail == "" {
		return "finish reason: " + reason
	}
	return detail + " (finish reason: " + reason + ")"
}
