// Package vectorstore wraps qdrant/go-client for the four memory
// collections, grounded on
// intelligencedev-manifold/internal/persistence/databases/qdrant_vector.go
// (ensureCollection/Upsert/Delete/Query shape, UUID point-id derivation).
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/drmoyassine/masteragent/internal/config"
)

// Collection names for the four memory vector surfaces.
const (
	CollectionInteractions       = "memory_interactions"
	CollectionInteractionsShared = "memory_interactions_shared"
	CollectionLessons            = "memory_lessons"
	CollectionLessonsShared      = "memory_lessons_shared"
)

var allCollections = []string{
	CollectionInteractions,
	CollectionInteractionsShared,
	CollectionLessons,
	CollectionLessonsShared,
}

// Point is one embedded chunk ready to upsert.
type Point struct {
	ID      string // external id: "<memoryID>:<chunkIndex>" or "<lessonID>"
	Vector  []float32
	Payload map[string]any
}

// SearchHit is one ranked result from Query.
type SearchHit struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// MatchFilter is one equality condition in the must clause. A field holding
// an array (e.g. entity_types) matches when the array contains Value.
type MatchFilter struct {
	Key   string
	Value string
}

// RangeFilter is one inclusive [Since, Until] condition over a numeric
// payload field. Either bound may be nil.
type RangeFilter struct {
	Key   string
	Since *time.Time
	Until *time.Time
}

// Store manages the four collections against a single Qdrant deployment.
type Store struct {
	client *qdrant.Client
	dim    int
}

func Connect(cfg *config.QdrantConfig, dimension int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &Store{client: client, dim: dimension}, nil
}

// Bootstrap creates each of the four collections if absent, cosine distance,
// sized to the configured embedding dimension.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, name := range allCollections {
		exists, err := s.client.CollectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check collection %s: %w", name, err)
		}
		if exists {
			continue
		}
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(s.dim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	return nil
}

// pointUUID derives a deterministic UUID for an external id: Qdrant only
// accepts UUIDs or unsigned ints as point ids.
func pointUUID(externalID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(externalID)).String()
}

// Upsert writes points into the named collection.
func (s *Store) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	out := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		payload := make(map[string]any, len(p.Payload)+1)
		for k, v := range p.Payload {
			payload[k] = v
		}
		payload["_original_id"] = p.ID
		out[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointUUID(p.ID)),
			Vectors: qdrant.NewVectorsDense(p.Vector),
			Payload: qdrant.NewValueMap(payload),
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         out,
	})
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", collection, err)
	}
	return nil
}

// Delete removes one point by external id.
func (s *Store) Delete(ctx context.Context, collection, externalID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(pointUUID(externalID))),
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", collection, err)
	}
	return nil
}

// compileFilter builds a must-clause qdrant.Filter from equality matchers
// and numeric range conditions. This is the translation of the outbound
// {must: [{key, match}, {key, range}]} dialect into the real gRPC client's
// Filter/Condition types.
func compileFilter(matches []MatchFilter, ranges []RangeFilter) *qdrant.Filter {
	if len(matches) == 0 && len(ranges) == 0 {
		return nil
	}
	must := make([]*qdrant.Condition, 0, len(matches)+len(ranges))
	for _, m := range matches {
		must = append(must, qdrant.NewMatch(m.Key, m.Value))
	}
	for _, rg := range ranges {
		if rg.Since == nil && rg.Until == nil {
			continue
		}
		r := &qdrant.Range{}
		if rg.Since != nil {
			gte := float64(rg.Since.Unix())
			r.Gte = &gte
		}
		if rg.Until != nil {
			lte := float64(rg.Until.Unix())
			r.Lte = &lte
		}
		must = append(must, qdrant.NewRange(rg.Key, r))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// Query dispatches a dense-vector search against one collection.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, limit int, matches []MatchFilter, ranges []RangeFilter) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}
	l := uint64(limit)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          &l,
		Filter:         compileFilter(matches, ranges),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	hits := make([]SearchHit, 0, len(resp))
	for _, hit := range resp {
		payload := make(map[string]any, len(hit.Payload))
		var originalID string
		for k, v := range hit.Payload {
			if k == "_original_id" {
				originalID = v.GetStringValue()
				continue
			}
			payload[k] = valueToAny(v)
		}
		id := originalID
		if id == "" {
			id = hit.Id.GetUuid()
		}
		hits = append(hits, SearchHit{ID: id, Score: hit.Score, Payload: payload})
	}
	return hits, nil
}

func valueToAny(v *qdrant.Value) any {
	switch k := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	case *qdrant.Value_ListValue:
		out := make([]any, 0, len(k.ListValue.Values))
		for _, item := range k.ListValue.Values {
			out = append(out, valueToAny(item))
		}
		return out
	default:
		return v.GetStringValue()
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}
