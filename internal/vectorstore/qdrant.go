package vectorstore

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"

	"github.com/docqa/ragserver/internal/config"
	"github.com/docqa/ragserver/internal/model"
)

type qdrantConfig struct {
	Addr string `json:"addr"`
}

type qdrantStore struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	collection  string
	dimension   uint64
}

func init() {
	Register("qdrant", createQdrantStore)
}

func createQdrantStore(index config.IndexConfig, args interface{}) (Store, error) {
	cfg := &qdrantConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6334"
	}
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	return &qdrantStore{
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		collection:  index.Name,
		dimension:   uint64(index.Dimension),
	}, nil
}

func (s *qdrantStore) Name() string {
	return s.collection
}

// Ensure creates the collection with cosine distance when it does not exist.
func (s *qdrantStore) Ensure(ctx context.Context) error {
	_, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: s.collection,
	})
	if err == nil {
		return nil
	}
	_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *qdrantStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, record := range records {
		payload, err := mapToPayload(record.Metadata)
		if err != nil {
			return fmt.Errorf("convert payload for record %s: %w", record.ID, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: record.ID}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: record.Vector}}},
			Payload: payload,
		})
	}
	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           proto.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

func (s *qdrantStore) Search(ctx context.Context, vector []float32, k int) ([]model.Match, error) {
	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}
	matches := make([]model.Match, 0, len(resp.GetResult()))
	for _, hit := range resp.GetResult() {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}
		source := payload["source"].GetStringValue()
		if source == "" {
			source = "Unknown"
		}
		matches = append(matches, model.Match{
			Text:   payload["text"].GetStringValue(),
			Source: source,
			Score:  hit.GetScore(),
		})
	}
	return matches, nil
}

func (s *qdrantStore) Count(ctx context.Context) (uint64, error) {
	resp, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("collection info: %w", err)
	}
	return resp.GetResult().GetPointsCount(), nil
}

func mapToPayload(data map[string]interface{}) (map[string]*qdrant.Value, error) {
	payload := make(map[string]*qdrant.Value, len(data))
	for key, val := range data {
		switch v := val.(type) {
		case string:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
		case int:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
		case int64:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
		case float64:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
		case bool:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
		default:
			return nil, fmt.Errorf("unsupported type for payload field %q: %T", key, v)
		}
	}
	return payload, nil
}
