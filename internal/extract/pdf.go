package extract

import (
	"strings"

	"github.com/gen2brain/go-fitz"
)

// extractPDF concatenates per-page text with newline separators.
func extractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		page, err := doc.Text(i)
		if err != nil {
			continue
		}
		if strings.TrimSpace(page) != "" {
			pages = append(pages, page)
		}
	}
	return strings.Join(pages, "\n"), nil
}
