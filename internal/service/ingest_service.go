package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docqa/ragserver/internal/model"
	apperrors "github.com/docqa/ragserver/internal/pkg/errors"
	"github.com/docqa/ragserver/internal/scanner"
	"github.com/docqa/ragserver/internal/source"
)

// Adder is the write side of the index client.
type Adder interface {
	Add(ctx context.Context, texts []string, metadatas []map[string]interface{}) (int, error)
}

// IngestService runs one full corpus rescan: resolve roots from every
// configured source, scan, and upsert everything the scan produced. There is
// no checkpointing; an interrupted run leaves already-upserted batches in
// the index.
type IngestService struct {
	sources []source.Source
	scanner *scanner.Scanner
	index   Adder
}

func NewIngestService(sources []source.Source, sc *scanner.Scanner, index Adder) *IngestService {
	return &IngestService{sources: sources, scanner: sc, index: index}
}

func (s *IngestService) Ingest(ctx context.Context) (*model.IngestStats, error) {
	logger := logutil.GetLogger(ctx)

	var roots []string
	for _, src := range s.sources {
		resolved, err := src.Roots(ctx)
		if err != nil {
			logger.Warn("corpus source unavailable, skipped", zap.Error(err))
			continue
		}
		roots = append(roots, resolved...)
	}

	chunks, failures := s.scanner.Scan(ctx, roots)
	if len(failures) > 0 {
		logger.Warn("some files were skipped", zap.Int("failed_files", len(failures)))
	}
	if len(chunks) == 0 {
		return nil, apperrors.ErrNoContent
	}

	texts := make([]string, 0, len(chunks))
	metadatas := make([]map[string]interface{}, 0, len(chunks))
	for i := range chunks {
		texts = append(texts, chunks[i].Text)
		metadatas = append(metadatas, chunks[i].Metadata())
	}
	count, err := s.index.Add(ctx, texts, metadatas)
	if err != nil {
		return nil, fmt.Errorf("add chunks to index: %w", err)
	}

	stats := summarize(chunks)
	stats.ChunksCount = count
	logger.Info("ingestion finished",
		zap.Int("chunks", stats.ChunksCount),
		zap.Int("files", stats.FilesCount),
	)
	return stats, nil
}

// summarize aggregates chunk counts per source file, preserving the order in
// which files were first seen during the scan.
func summarize(chunks []model.Chunk) *model.IngestStats {
	byPath := map[string]int{}
	var order []string
	types := map[string]string{}
	for _, chunk := range chunks {
		if _, seen := byPath[chunk.SourcePath]; !seen {
			order = append(order, chunk.SourcePath)
			types[chunk.SourcePath] = chunk.FileType
		}
		byPath[chunk.SourcePath]++
	}
	stats := &model.IngestStats{FilesCount: len(order)}
	for _, path := range order {
		stats.Files = append(stats.Files, model.NewFileSummary(path, types[path], byPath[path]))
	}
	return stats
}
