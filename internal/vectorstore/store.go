package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/docqa/ragserver/internal/config"
	"github.com/docqa/ragserver/internal/model"
)

// Record is the persisted unit inside the similarity index: a generated id,
// the embedding vector and the metadata carrying the verbatim chunk text.
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]interface{}
}

// Store is one similarity index backend. Upsert is strict and propagates
// provider errors; leniency for reads lives in the index client, not here.
type Store interface {
	Name() string
	Ensure(ctx context.Context) error
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, k int) ([]model.Match, error)
	Count(ctx context.Context) (uint64, error)
}

type Factory func(index config.IndexConfig, args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.VectorStoreConfig, index config.IndexConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("vector_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported vector store type: %s", cfg.Type)
	}
	return factory(index, cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode vector store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode vector store config: %w", err)
	}
	return nil
}
