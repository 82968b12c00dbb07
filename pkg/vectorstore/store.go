// Package vectorstore is the thin semantic-search layer over Qdrant (spec.md
// §2 "Vector Store": "Embeddings of knowledge chunks for semantic search").
// It knows nothing about entities or provenance — the Graph Service and
// Ingestion Pipeline attach those via the payload map. Grounded
// structurally on Tangerg-lynx's qdrant vector store provider
// (ai/providers/vectorstores/qdrant/store.go): a pooled *qdrant.Client,
// lazy collection creation, a simple field->value payload filter, and a
// point/score result shape — generalized here to drop the Lynx
// Document/Batcher/filter-DSL abstractions this system does not need.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/rafiq-ai/rafiq/pkg/config"
)

// Store is a pooled handle to one Qdrant collection.
type Store struct {
	client     *qdrant.Client
	collection string
	dims       int
}

// New dials Qdrant and returns a Store bound to cfg.Collection. It does not
// create the collection — call EnsureCollection once at startup.
func New(cfg config.VectorConfig) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: connect: %w", err)
	}
	return &Store{client: client, collection: cfg.Collection, dims: cfg.EmbeddingDims}, nil
}

// EnsureCollection creates the collection with cosine-distance vectors of
// the configured dimensionality if it does not already exist.
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("vectorstore: check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create collection %s: %w", s.collection, err)
	}
	return nil
}

// Point is one stored chunk: its id, vector (populated only by ScrollAll,
// omitted on search-result reads that don't need it), payload, and (for
// search results) similarity score.
type Point struct {
	ID      string
	Vector  []float64
	Payload map[string]any
	Score   float64
}

func fromVectors(v *qdrant.VectorsOutput) []float64 {
	if v == nil || v.GetVector() == nil {
		return nil
	}
	data := v.GetVector().GetData()
	out := make([]float64, len(data))
	for i, x := range data {
		out[i] = float64(x)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toPayload(m map[string]any) (map[string]*qdrant.Value, error) {
	payload, err := qdrant.TryValueMap(m)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: build payload: %w", err)
	}
	return payload, nil
}

func fromPayload(p map[string]*qdrant.Value) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = fromValue(v)
	}
	return out
}

func fromValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch k := v.Kind.(type) {
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	default:
		return nil
	}
}

// Upsert stores one chunk's embedding vector and payload under id (a
// caller-supplied stable id, or a fresh uuid when id is empty).
func (s *Store) Upsert(ctx context.Context, id string, vector []float64, payload map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	p, err := toPayload(payload)
	if err != nil {
		return "", err
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(id),
		Vectors: qdrant.NewVectors(toFloat32(vector)...),
		Payload: p,
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{point},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return "", fmt.Errorf("vectorstore: upsert: %w", err)
	}
	return id, nil
}

// Search runs a k-nearest-neighbour query, optionally narrowed by exact
// field==value filters (AND'd together), matching the Graph Service's
// "semantic search over knowledge chunks" call shape (spec.md §4.4).
func (s *Store) Search(ctx context.Context, vector []float64, topK int, filters map[string]string) ([]Point, error) {
	query := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	if len(filters) > 0 {
		conds := make([]*qdrant.Condition, 0, len(filters))
		for field, value := range filters {
			conds = append(conds, qdrant.NewMatch(field, value))
		}
		query.Filter = &qdrant.Filter{Must: conds}
	}

	points, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}

	out := make([]Point, 0, len(points))
	for _, pt := range points {
		out = append(out, Point{
			ID:      pt.GetId().GetUuid(),
			Payload: fromPayload(pt.GetPayload()),
			Score:   float64(pt.GetScore()),
		})
	}
	return out, nil
}

// DeleteByField removes every point whose payload[field] equals value,
// used by re-ingestion to retract a superseded file's chunks (spec.md
// §4.2 re-upload semantics) and by backup restore's cleanup pass.
func (s *Store) DeleteByField(ctx context.Context, field, value string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(field, value)},
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorstore: delete by %s=%s: %w", field, value, err)
	}
	return nil
}

// ScrollAll walks every point in the collection in batches, invoking fn for
// each batch. Used by the Backup Service's vector export (spec.md §4.10:
// "scroll in batches of 100").
func (s *Store) ScrollAll(ctx context.Context, batchSize int, fn func([]Point) error) error {
	var offset *qdrant.PointId
	for {
		req := &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(uint32(batchSize)),
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		}
		if offset != nil {
			req.Offset = offset
		}

		resp, err := s.client.Scroll(ctx, req)
		if err != nil {
			return fmt.Errorf("vectorstore: scroll: %w", err)
		}
		if len(resp) == 0 {
			return nil
		}

		batch := make([]Point, 0, len(resp))
		for _, pt := range resp {
			batch = append(batch, Point{
				ID:      pt.GetId().GetUuid(),
				Vector:  fromVectors(pt.GetVectors()),
				Payload: fromPayload(pt.GetPayload()),
			})
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(resp) < batchSize {
			return nil
		}
		offset = resp[len(resp)-1].GetId()
	}
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}
