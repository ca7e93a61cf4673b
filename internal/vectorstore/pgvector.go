package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/docqa/ragserver/internal/config"
	"github.com/docqa/ragserver/internal/model"
)

type pgvectorConfig struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

// pgvectorStore keeps the index in a Postgres table with a vector column,
// cosine distance via the <=> operator.
type pgvectorStore struct {
	db        *sqlx.DB
	table     string
	index     string
	dimension int
}

func init() {
	Register("pgvector", createPgvectorStore)
}

func createPgvectorStore(index config.IndexConfig, args interface{}) (Store, error) {
	cfg := &pgvectorConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pgvector dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = strings.ReplaceAll(index.Name, "-", "_")
	}
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &pgvectorStore{
		db:        db,
		table:     table,
		index:     index.Name,
		dimension: index.Dimension,
	}, nil
}

func (s *pgvectorStore) Name() string {
	return s.index
}

func (s *pgvectorStore) Ensure(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		embedding vector(%d) NOT NULL,
		text TEXT NOT NULL,
		source TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'
	)`, s.table, s.dimension)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING ivfflat (embedding vector_cosine_ops)`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}
	return nil
}

func (s *pgvectorStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt := fmt.Sprintf(`INSERT INTO %s (id, embedding, text, source, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET embedding = EXCLUDED.embedding, text = EXCLUDED.text, source = EXCLUDED.source, metadata = EXCLUDED.metadata`, s.table)
	for _, record := range records {
		text, _ := record.Metadata["text"].(string)
		source, _ := record.Metadata["source"].(string)
		if source == "" {
			source = "Unknown"
		}
		meta, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for record %s: %w", record.ID, err)
		}
		if _, err := tx.ExecContext(ctx, stmt, record.ID, pgvector.NewVector(record.Vector), text, source, meta); err != nil {
			return fmt.Errorf("insert record %s: %w", record.ID, err)
		}
	}
	return tx.Commit()
}

func (s *pgvectorStore) Search(ctx context.Context, vector []float32, k int) ([]model.Match, error) {
	query := fmt.Sprintf(`SELECT text, source, 1 - (embedding <=> $1) AS score
		FROM %s ORDER BY embedding <=> $1 LIMIT $2`, s.table)
	rows, err := s.db.QueryxContext(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.Text, &m.Source, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *pgvectorStore) Count(ctx context.Context) (uint64, error) {
	var count uint64
	if err := s.db.GetContext(ctx, &count, fmt.Sprintf("SELECT count(*) FROM %s", s.table)); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}
