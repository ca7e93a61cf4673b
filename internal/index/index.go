package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docqa/ragserver/internal/ai"
	"github.com/docqa/ragserver/internal/model"
	"github.com/docqa/ragserver/internal/vectorstore"
)

// Batch limit for both embedding calls and upserts.
const batchSize = 100

// Client maps raw chunk text and metadata onto the vector store's record
// schema. Writes are strict and propagate provider errors; reads degrade to
// an empty result so the serving path stays available when the index is down.
type Client struct {
	store    vectorstore.Store
	embedder ai.IEmbedder
	cache    *expirable.LRU[string, []float32]
}

func NewClient(store vectorstore.Store, embedder ai.IEmbedder) *Client {
	// Re-ingestion runs re-embed the same chunk texts; the cache saves the
	// repeated provider calls, not the upserts.
	cache := expirable.NewLRU[string, []float32](10000, nil, 2*time.Hour)
	return &Client{store: store, embedder: embedder, cache: cache}
}

// Init ensures the index exists. A failure here is fatal for the process.
func (c *Client) Init(ctx context.Context) error {
	if err := c.store.Ensure(ctx); err != nil {
		return fmt.Errorf("initialize vector store: %w", err)
	}
	return nil
}

func (c *Client) IndexName() string {
	return c.store.Name()
}

func (c *Client) Count(ctx context.Context) (uint64, error) {
	return c.store.Count(ctx)
}

// Add embeds and upserts the texts in batches of 100, generating a fresh id
// per record and merging each metadata map with the verbatim text. Returns
// the number of records inserted before the first failure.
func (c *Client) Add(ctx context.Context, texts []string, metadatas []map[string]interface{}) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return 0, fmt.Errorf("got %d texts but %d metadata entries", len(texts), len(metadatas))
	}
	logger := logutil.GetLogger(ctx)
	total := 0
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		vectors, err := c.embedBatch(ctx, batch)
		if err != nil {
			return total, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		records := make([]vectorstore.Record, 0, len(batch))
		for i, text := range batch {
			var meta map[string]interface{}
			if metadatas != nil {
				meta = metadatas[start+i]
			}
			records = append(records, vectorstore.Record{
				ID:       uuid.NewString(),
				Vector:   vectors[i],
				Metadata: mergeMetadata(text, meta),
			})
		}
		if err := c.store.Upsert(ctx, records); err != nil {
			return total, fmt.Errorf("upsert batch at %d: %w", start, err)
		}
		total += len(records)
	}
	logger.Info("texts added to index", zap.Int("count", total))
	return total, nil
}

// Query embeds the text and returns the k nearest records. Any failure is
// logged and mapped to an empty result; "no matches" is a valid outcome for
// the caller, not an error.
func (c *Client) Query(ctx context.Context, text string, k int) []model.Match {
	logger := logutil.GetLogger(ctx)
	vectors, err := c.embedBatch(ctx, []string{text})
	if err != nil {
		logger.Error("query embedding failed", zap.Error(err))
		return nil
	}
	matches, err := c.store.Search(ctx, vectors[0], k)
	if err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		return nil
	}
	return matches
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if cached, ok := c.cache.Get(cacheKey(text)); ok {
			vectors[i] = cached
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}
	fresh, err := c.embedder.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(fresh))
	}
	for i, vector := range fresh {
		vectors[missingIdx[i]] = vector
		c.cache.Add(cacheKey(missing[i]), vector)
	}
	return vectors, nil
}

// mergeMetadata stores the verbatim text next to the vector: the index has
// no separate content store, so the record is the only copy of the chunk.
func mergeMetadata(text string, meta map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(meta)+2)
	for k, v := range meta {
		merged[k] = v
	}
	merged["text"] = text
	if _, ok := merged["source"]; !ok {
		merged["source"] = "Unknown"
	}
	return merged
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
