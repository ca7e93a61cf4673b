package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docqa/ragserver/internal/extract"
	apperrors "github.com/docqa/ragserver/internal/pkg/errors"
	"github.com/docqa/ragserver/internal/scanner"
	"github.com/docqa/ragserver/internal/source"
)

type fakeAdder struct {
	texts     []string
	metadatas []map[string]interface{}
	err       error
}

func (f *fakeAdder) Add(ctx context.Context, texts []string, metadatas []map[string]interface{}) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.texts = append(f.texts, texts...)
	f.metadatas = append(f.metadatas, metadatas...)
	return len(texts), nil
}

type staticSource struct {
	roots []string
	err   error
}

func (s *staticSource) Roots(ctx context.Context) ([]string, error) {
	return s.roots, s.err
}

func newTestScanner() *scanner.Scanner {
	return scanner.New(extract.NewRegistry(), 3000)
}

func writeCorpusFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngest_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpusFile(t, dir, "notes.txt", "Hello world")

	adder := &fakeAdder{}
	svc := NewIngestService([]source.Source{&staticSource{roots: []string{dir}}}, newTestScanner(), adder)

	stats, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.ChunksCount)
	require.Equal(t, 1, stats.FilesCount)
	require.Len(t, stats.Files, 1)
	require.Equal(t, "notes.txt", stats.Files[0].Filename)
	require.Equal(t, path, stats.Files[0].Path)
	require.Equal(t, 1, stats.Files[0].Chunks)
	require.Equal(t, ".txt", stats.Files[0].FileType)

	require.Equal(t, []string{"Hello world"}, adder.texts)
	require.Equal(t, path, adder.metadatas[0]["source"])
	require.Equal(t, 0, adder.metadatas[0]["chunk"])
	require.Equal(t, 1, adder.metadatas[0]["total_chunks"])
}

func TestIngest_EmptyCorpusFailsWithNoContent(t *testing.T) {
	svc := NewIngestService([]source.Source{&staticSource{roots: []string{t.TempDir()}}}, newTestScanner(), &fakeAdder{})

	stats, err := svc.Ingest(context.Background())
	require.Nil(t, stats)
	require.ErrorIs(t, err, apperrors.ErrNoContent)
}

func TestIngest_IndexFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "notes.txt", "Hello world")

	svc := NewIngestService(
		[]source.Source{&staticSource{roots: []string{dir}}},
		newTestScanner(),
		&fakeAdder{err: fmt.Errorf("index unavailable")},
	)

	stats, err := svc.Ingest(context.Background())
	require.Nil(t, stats)
	require.ErrorContains(t, err, "index unavailable")
}

func TestIngest_UnavailableSourceIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "notes.txt", "Hello world")

	svc := NewIngestService(
		[]source.Source{
			&staticSource{err: fmt.Errorf("bucket unreachable")},
			&staticSource{roots: []string{dir}},
		},
		newTestScanner(),
		&fakeAdder{},
	)

	stats, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesCount)
}

func TestIngest_SummaryAggregatesChunksPerFile(t *testing.T) {
	dir := t.TempDir()
	writeCorpusFile(t, dir, "a.txt", "First paragraph.\n\nSecond paragraph.")
	writeCorpusFile(t, dir, "b.txt", "Single line")

	adder := &fakeAdder{}
	svc := NewIngestService([]source.Source{&staticSource{roots: []string{dir}}}, newTestScanner(), adder)

	stats, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.FilesCount)
	require.Equal(t, len(adder.texts), stats.ChunksCount)

	total := 0
	for _, file := range stats.Files {
		total += file.Chunks
	}
	require.Equal(t, stats.ChunksCount, total)
}
