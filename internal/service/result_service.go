package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/port"
	"docqa/internal/resultexport"
	"docqa/internal/session"
)

// PublishedExport describes an export uploaded to object storage.
type PublishedExport struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResultService defines the result retrieval and export contract.
type ResultService interface {
	Get(state *session.State) (*domain.ResultTable, error)
	Export(state *session.State, w io.Writer, format domain.ExportFormat) (string, error)
	Publish(ctx context.Context, state *session.State, format domain.ExportFormat) (*PublishedExport, error)
}

type resultService struct {
	storage port.ObjectStorage
	cfg     config.S3Config
	now     func() time.Time
}

// NewResultService creates a new ResultService implementation. storage may
// be nil, in which case Publish returns ErrStorageDisabled.
func NewResultService(storage port.ObjectStorage, cfg config.S3Config) ResultService {
	return &resultService{storage: storage, cfg: cfg, now: time.Now}
}

func (s *resultService) Get(state *session.State) (*domain.ResultTable, error) {
	table := state.Results()
	if table == nil {
		return nil, domain.ErrNoResults
	}
	return table, nil
}

// Export writes the published results and returns a download filename.
func (s *resultService) Export(state *session.State, w io.Writer, format domain.ExportFormat) (string, error) {
	table, err := s.Get(state)
	if err != nil {
		return "", err
	}
	if err := resultexport.Write(w, table, format); err != nil {
		return "", err
	}
	return resultexport.BuildFilename("results_"+table.RunID.String()[:8], format), nil
}

func (s *resultService) Publish(ctx context.Context, state *session.State, format domain.ExportFormat) (*PublishedExport, error) {
	if s.storage == nil {
		return nil, domain.ErrStorageDisabled
	}

	var buf bytes.Buffer
	filename, err := s.Export(state, &buf, format)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/%s/%s", state.ID, filename)
	size := int64(buf.Len())
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        &buf,
		ContentType: domain.ContentTypes[format],
		Size:        size,
		Filename:    filename,
		Metadata: map[string]string{
			"session-id": state.ID.String(),
			"format":     string(format),
		},
	}); err != nil {
		return nil, fmt.Errorf("result.Publish upload: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("result.Publish presign: %w", err)
	}

	logrus.Infof("result.Publish: session %s: uploaded %s (%d bytes)", state.ID, key, size)
	return &PublishedExport{
		Bucket:    s.cfg.Bucket,
		Key:       key,
		URL:       url,
		ExpiresAt: s.now().Add(time.Duration(s.cfg.PresignExpiry) * time.Second),
	}, nil
}
