package model

import "path/filepath"

// Chunk is a bounded-size slice of a document's extracted text, the unit of
// embedding and retrieval. Immutable once produced by the scanner.
type Chunk struct {
	Text        string
	SourcePath  string
	FileType    string
	Index       int
	TotalChunks int
}

// Metadata renders the chunk's ingestion metadata in the shape stored next to
// its vector. The verbatim text is merged in by the index client, not here.
func (c *Chunk) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"source":       c.SourcePath,
		"file_type":    c.FileType,
		"chunk":        c.Index,
		"total_chunks": c.TotalChunks,
	}
}

// Match is one retrieval result. Ephemeral, lives for a single query.
type Match struct {
	Text   string
	Source string
	Score  float32
}

type FileSummary struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Chunks   int    `json:"chunks"`
	FileType string `json:"file_type"`
}

type IngestStats struct {
	ChunksCount int
	FilesCount  int
	Files       []FileSummary
}

func NewFileSummary(path, fileType string, chunks int) FileSummary {
	return FileSummary{
		Filename: filepath.Base(path),
		Path:     path,
		Chunks:   chunks,
		FileType: fileType,
	}
}
