package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docqa/ragserver/internal/chunker"
	"github.com/docqa/ragserver/internal/extract"
	"github.com/docqa/ragserver/internal/model"
)

// Failure records one file that could not be ingested. Failures never abort
// a scan; they are reported alongside the successful chunks.
type Failure struct {
	Path string
	Err  error
}

// Scanner walks corpus roots and turns every supported file into ordered
// chunks. Roots may overlap or nest; files reached through two roots are
// deliberately processed once per root.
type Scanner struct {
	registry     *extract.Registry
	maxChunkSize int
}

func New(registry *extract.Registry, maxChunkSize int) *Scanner {
	return &Scanner{registry: registry, maxChunkSize: maxChunkSize}
}

func (s *Scanner) Scan(ctx context.Context, roots []string) ([]model.Chunk, []Failure) {
	logger := logutil.GetLogger(ctx)
	var chunks []model.Chunk
	var failures []Failure

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			logger.Warn("skipping corpus root", zap.String("root", root), zap.Error(err))
			continue
		}
		logger.Info("scanning directory", zap.String("root", root))
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				failures = append(failures, Failure{Path: path, Err: err})
				logger.Warn("walk error", zap.String("path", path), zap.Error(err))
				return nil
			}
			if d.IsDir() {
				return nil
			}
			s.scanFile(ctx, path, &chunks, &failures)
			return nil
		})
	}
	return chunks, failures
}

func (s *Scanner) scanFile(ctx context.Context, path string, chunks *[]model.Chunk, failures *[]Failure) {
	logger := logutil.GetLogger(ctx).With(zap.String("path", path))
	ext := strings.ToLower(filepath.Ext(path))
	if !s.registry.Supported(ext) {
		return
	}
	text, err := s.registry.Extract(path, ext)
	if err != nil {
		*failures = append(*failures, Failure{Path: path, Err: err})
		logger.Warn("extraction failed, file skipped", zap.Error(err))
		return
	}
	if strings.TrimSpace(text) == "" {
		logger.Debug("no content extracted")
		return
	}
	parts := chunker.Split(text, s.maxChunkSize)
	for i, part := range parts {
		*chunks = append(*chunks, model.Chunk{
			Text:        part,
			SourcePath:  path,
			FileType:    ext,
			Index:       i,
			TotalChunks: len(parts),
		})
	}
	logger.Info("file processed", zap.Int("chunks", len(parts)), zap.Int("chars", len(text)))
}
