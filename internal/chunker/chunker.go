package chunker

import "strings"

// Break points in priority order: paragraph, line, sentence, word. When none
// of them occurs inside the window the text is cut hard at the window
// boundary, which may land inside a word or a multi-byte sequence.
const (
	breakParagraph = "\n\n"
	breakLine      = "\n"
	breakSentence  = ". "
	breakWord      = " "
)

// Split cuts text into ordered, non-overlapping passages of at most maxSize
// bytes each. Every passage is trimmed of surrounding whitespace and empty
// passages are dropped, so the only characters consumed between passages are
// whitespace; the sentence period stays with its passage.
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		return nil
	}
	if len(text) <= maxSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end >= len(text) {
			chunks = appendChunk(chunks, text[start:])
			break
		}
		window := text[start:end]
		cut, next := findBreak(window)
		chunks = appendChunk(chunks, window[:cut])
		start += next
	}
	return chunks
}

// findBreak locates the best split position inside the window, searching
// backward so the chunk stays as large as possible. It returns the chunk end
// and the offset at which the next chunk starts.
func findBreak(window string) (cut, next int) {
	if i := strings.LastIndex(window, breakParagraph); i >= 0 {
		return i, i + len(breakParagraph)
	}
	if i := strings.LastIndex(window, breakLine); i >= 0 {
		return i, i + len(breakLine)
	}
	if i := strings.LastIndex(window, breakSentence); i >= 0 {
		return i + 1, i + len(breakSentence)
	}
	if i := strings.LastIndex(window, breakWord); i >= 0 {
		return i, i + len(breakWord)
	}
	return len(window), len(window)
}

func appendChunk(chunks []string, raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return chunks
	}
	return append(chunks, trimmed)
}
