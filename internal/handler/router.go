package handler

import "github.com/gin-gonic/gin"

type RouterDeps struct {
	Chat   *ChatHandler
	Ingest *IngestHandler
	Health *HealthHandler
}

func RegisterRoutes(engine *gin.Engine, deps RouterDeps) {
	engine.GET("/", deps.Health.Root)
	engine.GET("/health", deps.Health.Live)

	api := engine.Group("/api")
	api.POST("/chat", deps.Chat.Chat)
	api.POST("/ingest", deps.Ingest.Ingest)
	api.GET("/health", deps.Health.Check)
}
