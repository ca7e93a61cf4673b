package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docqa/ragserver/internal/index"
	"github.com/docqa/ragserver/internal/service"
)

type HealthHandler struct {
	index   *index.Client
	answers *service.AnswerService
}

func NewHealthHandler(idx *index.Client, answers *service.AnswerService) *HealthHandler {
	return &HealthHandler{index: idx, answers: answers}
}

// Check probes both backing systems with live calls and reports a
// per-service status of "connected" or "error". A failed probe degrades the
// overall report but the endpoint itself still answers 200.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	status := "healthy"
	services := gin.H{}

	if count, err := h.index.Count(ctx); err != nil {
		status = "degraded"
		services["vector_store"] = gin.H{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		services["vector_store"] = gin.H{
			"status":        "connected",
			"index_name":    h.index.IndexName(),
			"total_vectors": count,
		}
	}

	if reply, err := h.answers.Ping(ctx); err != nil {
		status = "degraded"
		services["ai_provider"] = gin.H{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		services["ai_provider"] = gin.H{
			"status":               "connected",
			"test_response_length": len(reply),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"service":   "ragserver",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	})
}

// Live is the cheap liveness probe, no dependency calls.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root describes the service for anyone poking the base URL.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "ragserver",
		"status":  "running",
		"endpoints": gin.H{
			"chat":   "POST /api/chat",
			"ingest": "POST /api/ingest",
			"health": "GET /api/health",
		},
	})
}
