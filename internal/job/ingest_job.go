package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	apperrors "github.com/docqa/ragserver/internal/pkg/errors"
	"github.com/docqa/ragserver/internal/service"
)

// IngestJob re-ingests the whole corpus on a schedule so the index follows
// documents that change between manual ingest calls.
type IngestJob struct {
	ingest *service.IngestService
}

func NewIngestJob(ingest *service.IngestService) *IngestJob {
	return &IngestJob{ingest: ingest}
}

func (j *IngestJob) Name() string {
	return "corpus_reingest"
}

func (j *IngestJob) Run(ctx context.Context) error {
	stats, err := j.ingest.Ingest(ctx)
	if err != nil {
		// An empty corpus is a normal state for a scheduled rescan.
		if apperrors.IsNoContent(err) {
			logutil.GetLogger(ctx).Info("scheduled ingest found no content")
			return nil
		}
		return err
	}
	logutil.GetLogger(ctx).Info("scheduled ingest finished",
		zap.Int("chunks", stats.ChunksCount),
		zap.Int("files", stats.FilesCount),
	)
	return nil
}
