package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docqa/ragserver/internal/ai"
	"github.com/docqa/ragserver/internal/config"
	"github.com/docqa/ragserver/internal/extract"
	"github.com/docqa/ragserver/internal/handler"
	"github.com/docqa/ragserver/internal/index"
	"github.com/docqa/ragserver/internal/job"
	"github.com/docqa/ragserver/internal/middleware"
	"github.com/docqa/ragserver/internal/scanner"
	"github.com/docqa/ragserver/internal/schedule"
	"github.com/docqa/ragserver/internal/service"
	"github.com/docqa/ragserver/internal/source"
	"github.com/docqa/ragserver/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ragserver",
		Short: "retrieval-augmented question answering server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("index", cfg.Index.Name),
	)

	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	provider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	timeout := time.Duration(cfg.AI.Timeout) * time.Second
	generator := ai.NewGenerator(provider, cfg.AI.ChatModel, ai.GenerateOptions{
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
		Temperature:     cfg.AI.Temperature,
	}, timeout)
	embedder := ai.NewEmbedder(provider, cfg.AI.EmbedModel, timeout)

	store, err := vectorstore.New(cfg.VectorStore, cfg.Index)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	idx := index.NewClient(store, embedder)
	if err := idx.Init(ctx); err != nil {
		return err
	}

	var sources []source.Source
	for i, sourceCfg := range cfg.Corpus.Sources {
		src, err := source.New(sourceCfg)
		if err != nil {
			return fmt.Errorf("init corpus source %d: %w", i, err)
		}
		sources = append(sources, src)
	}

	corpusScanner := scanner.New(extract.NewRegistry(), cfg.Chunk.MaxSize)
	answerService := service.NewAnswerService(idx, generator, cfg.TopK)
	ingestService := service.NewIngestService(sources, corpusScanner, idx)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.CORS(cfg.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression),
	)
	handler.RegisterRoutes(engine, handler.RouterDeps{
		Chat:   handler.NewChatHandler(answerService),
		Ingest: handler.NewIngestHandler(ingestService),
		Health: handler.NewHealthHandler(idx, answerService),
	})

	if cfg.IngestCron != "" {
		scheduler := schedule.NewCronScheduler()
		if err := scheduler.AddJob(job.NewIngestJob(ingestService), cfg.IngestCron); err != nil {
			return fmt.Errorf("schedule ingest job: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: engine,
	}
	go func() {
		logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
