package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// extractPartition is a generic fallback for OOXML-style archives without a
// dedicated reader, used for presentations. It walks the archive's XML parts
// and collects the text runs (`t` elements) each part contains, one element
// per run. A file that is not a zip archive at all surfaces as an error and
// degrades to a placeholder upstream.
func extractPartition(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var elements []string
	for _, f := range r.File {
		if !partitionable(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		elements = append(elements, collectTextRuns(rc)...)
		rc.Close()
	}
	return strings.Join(elements, "\n"), nil
}

func partitionable(name string) bool {
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	if strings.Contains(name, "_rels") || strings.HasPrefix(name, "[Content_Types]") {
		return false
	}
	return !strings.Contains(name, "theme")
}

func collectTextRuns(r io.Reader) []string {
	decoder := xml.NewDecoder(r)
	var runs []string
	var current strings.Builder
	depth := 0
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == "t" && depth > 0 {
				depth--
				if text := strings.TrimSpace(current.String()); text != "" {
					runs = append(runs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		}
	}
	return runs
}
