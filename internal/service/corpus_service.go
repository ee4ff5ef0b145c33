package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/corpus"
	"docqa/internal/domain"
	"docqa/internal/session"
)

// CorpusService defines the document upload contract.
type CorpusService interface {
	Upload(ctx context.Context, state *session.State, r io.Reader, filename string, size int64) (*domain.Corpus, error)
	Get(state *session.State) (*domain.Corpus, error)
	Export(state *session.State, w io.Writer) error
}

type corpusService struct {
	fields  domain.CorpusFields
	maxSize int64
}

// NewCorpusService creates a new CorpusService implementation.
func NewCorpusService(extractionCfg *config.ExtractionConfig, uploadCfg config.UploadConfig) CorpusService {
	return &corpusService{
		fields:  extractionCfg.CorpusFields(),
		maxSize: uploadCfg.MaxSizeMB * 1024 * 1024,
	}
}

// Upload parses the file and replaces the session's corpus. On any error the
// previous corpus is left untouched.
func (s *corpusService) Upload(ctx context.Context, state *session.State, r io.Reader, filename string, size int64) (*domain.Corpus, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, domain.ErrUploadTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limited := r
	if s.maxSize > 0 {
		limited = io.LimitReader(r, s.maxSize+1)
	}
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("corpus.Upload reading: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, domain.ErrUploadTooLarge
	}

	c, err := corpus.Load(bytes.NewReader(data), filename, s.fields)
	if err != nil {
		logrus.Warnf("corpus.Upload: session %s: %s rejected: %v", state.ID, filename, err)
		return nil, err
	}

	state.SetCorpus(c)
	logrus.Infof("corpus.Upload: session %s: %s loaded (%d documents, %d malformed rows skipped, %d incomplete rows dropped)",
		state.ID, filename, len(c.Documents), c.SkippedRows, c.DroppedRows)
	return c, nil
}

func (s *corpusService) Get(state *session.State) (*domain.Corpus, error) {
	c := state.Corpus()
	if c == nil {
		return nil, domain.ErrNoDocuments
	}
	return c, nil
}

func (s *corpusService) Export(state *session.State, w io.Writer) error {
	c, err := s.Get(state)
	if err != nil {
		return err
	}
	return corpus.WriteJSON(w, c)
}
