package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Strategy extracts the plain-text representation of a single file. A
// strategy returns explicit errors; degradation happens in the registry.
type Strategy interface {
	Extract(path string) (string, error)
}

type StrategyFunc func(path string) (string, error)

func (f StrategyFunc) Extract(path string) (string, error) {
	return f(path)
}

// Registry dispatches extraction by normalized lowercase extension. One
// malformed file must never stop the scan of the remaining corpus, so
// Extract converts every strategy failure into a placeholder string that
// carries the file name and the underlying error; the error is also
// returned for logging. Unknown extensions yield empty text and no error.
type Registry struct {
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	r.Register(".txt", StrategyFunc(extractPlainText))
	r.Register(".md", StrategyFunc(extractMarkdown))
	r.Register(".markdown", StrategyFunc(extractMarkdown))
	r.Register(".pdf", StrategyFunc(extractPDF))
	r.Register(".xlsx", &excelStrategy{})
	r.Register(".xls", &excelStrategy{legacyFallback: true})
	r.Register(".csv", StrategyFunc(extractCSV))
	r.Register(".docx", StrategyFunc(extractDocx))
	r.Register(".pptx", StrategyFunc(extractPartition))
	r.Register(".ppt", StrategyFunc(extractPartition))
	return r
}

func (r *Registry) Register(ext string, s Strategy) {
	key := normalizeExt(ext)
	if key == "" || s == nil {
		return
	}
	r.strategies[key] = s
}

func (r *Registry) Supported(ext string) bool {
	_, ok := r.strategies[normalizeExt(ext)]
	return ok
}

// Extract always returns usable text: on strategy error the text is a
// placeholder embedding the file name and the error message, so callers may
// index best effort without checking the error. Callers that instead skip
// failed files, like the corpus scanner, branch on the returned error and
// drop the placeholder.
func (r *Registry) Extract(path string, ext string) (string, error) {
	strategy, ok := r.strategies[normalizeExt(ext)]
	if !ok {
		return "", nil
	}
	text, err := strategy.Extract(path)
	if err != nil {
		return placeholder(path, err), err
	}
	return text, nil
}

func placeholder(path string, err error) string {
	return fmt.Sprintf("content extraction failed for %s: %v", filepath.Base(path), err)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
