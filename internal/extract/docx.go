package extract

import (
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// extractDocx concatenates the document's paragraph text in order.
func extractDocx(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			sb.WriteString(v.String())
			sb.WriteByte('\n')
		case *docx.Table:
			sb.WriteString(v.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}
