package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int               `json:"port"`
	LogConfig   logger.LogConfig  `json:"log_config"`
	CORSOrigins []string          `json:"cors_allow_origins"`
	AI          AIConfig          `json:"ai"`
	Index       IndexConfig       `json:"index"`
	VectorStore VectorStoreConfig `json:"vector_store"`
	Corpus      CorpusConfig      `json:"corpus"`
	Chunk       ChunkConfig       `json:"chunk"`
	TopK        int               `json:"top_k"`
	IngestCron  string            `json:"ingest_cron"`
}

type AIConfig struct {
	Provider        string      `json:"provider"`
	ChatModel       string      `json:"chat_model"`
	EmbedModel      string      `json:"embed_model"`
	MaxOutputTokens int         `json:"max_output_tokens"`
	Temperature     float64     `json:"temperature"`
	Timeout         int         `json:"timeout"`
	Data            interface{} `json:"data"`
}

type IndexConfig struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
}

type VectorStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type CorpusConfig struct {
	Sources []SourceConfig `json:"sources"`
}

type SourceConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ChunkConfig struct {
	MaxSize int `json:"max_size"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.ChatModel == "" {
		return nil, fmt.Errorf("ai.chat_model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.MaxOutputTokens == 0 {
		cfg.AI.MaxOutputTokens = 2000
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.1
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 60
	}
	if cfg.Index.Name == "" {
		return nil, fmt.Errorf("index.name is required")
	}
	if cfg.Index.Dimension == 0 {
		cfg.Index.Dimension = 1536
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "qdrant"
	}
	if len(cfg.Corpus.Sources) == 0 {
		return nil, fmt.Errorf("corpus.sources is required")
	}
	for i, src := range cfg.Corpus.Sources {
		if src.Type == "" {
			return nil, fmt.Errorf("corpus.sources[%d].type is required", i)
		}
	}
	if cfg.Chunk.MaxSize == 0 {
		cfg.Chunk.MaxSize = 3000
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	return &cfg, nil
}
