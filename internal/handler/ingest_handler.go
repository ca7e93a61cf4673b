package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docqa/ragserver/internal/model"
	"github.com/docqa/ragserver/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestResponse struct {
	Status         string              `json:"status"`
	Message        string              `json:"message"`
	ChunksCount    int                 `json:"chunks_count"`
	FilesCount     int                 `json:"files_count"`
	FilesProcessed []model.FileSummary `json:"files_processed"`
}

// Ingest triggers a synchronous full rescan of the configured corpus. An
// empty corpus is reported as a failure, not an empty success.
func (h *IngestHandler) Ingest(c *gin.Context) {
	stats, err := h.ingest.Ingest(c.Request.Context())
	if err != nil {
		errorDetail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, ingestResponse{
		Status:         "success",
		Message:        fmt.Sprintf("Ingested %d chunks from %d files", stats.ChunksCount, stats.FilesCount),
		ChunksCount:    stats.ChunksCount,
		FilesCount:     stats.FilesCount,
		FilesProcessed: stats.Files,
	})
}
