// Package retriever implements agent semantic search and the entity
// timeline, sharing the embed-then-filter-then-merge core.
package retriever

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/llmclient"
	"github.com/drmoyassine/masteragent/internal/models"
	"github.com/drmoyassine/masteragent/internal/vectorstore"
)

// ResultKind tags whether a hit came from the interactions or lessons
// collection.
type ResultKind string

const (
	ResultInteraction ResultKind = "interaction"
	ResultLesson       ResultKind = "lesson"
)

// SearchResult is one ranked hit returned to the caller.
type SearchResult struct {
	ID        string
	Kind      ResultKind
	Score     float32
	Snippet   string
	Timestamp time.Time
	Metadata  map[string]any
}

// Types selects which collections a search dispatches against.
type Types string

const (
	TypesInteractions Types = "interactions"
	TypesLessons      Types = "lessons"
	TypesBoth         Types = "both"
)

// SearchQuery is the agent/admin search request.
type SearchQuery struct {
	Query      string
	EntityType string
	Channel    string
	Since      *time.Time
	Until      *time.Time
	Types      Types
	SharedOnly bool
	Limit      int
	IsAdmin    bool
}

// Retriever wires the embedding client, vector store, and relational
// fallback together.
type Retriever struct {
	llm       *llmclient.Client
	vectors   *vectorstore.Store
	memories  *database.MemoryRepository
	auditor   Auditor
	logger    *logrus.Logger
}

// Auditor mirrors internal/gate.Auditor without importing it, to avoid a
// cycle between gate and retriever.
type Auditor interface {
	Record(ctx context.Context, rec *models.AuditRecord)
}

func New(llm *llmclient.Client, vectors *vectorstore.Store, memories *database.MemoryRepository, auditor Auditor, logger *logrus.Logger) *Retriever {
	return &Retriever{llm: llm, vectors: vectors, memories: memories, auditor: auditor, logger: logger}
}

// Search runs the embed → filter → dispatch → merge pipeline.
func (r *Retriever) Search(ctx context.Context, agentID string, q SearchQuery) ([]SearchResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	vectors, err := r.llm.Embed(ctx, []string{q.Query})
	if err != nil || len(vectors) == 0 {
		r.logger.WithError(err).Warn("query embedding failed")
		results := r.substringFallback(ctx, q, limit)
		r.audit(ctx, agentID, q, len(results))
		return results, nil
	}

	queryVec := vectors[0]
	matches, ranges := buildMatches(q)

	wantInteractions := q.Types == "" || q.Types == TypesInteractions || q.Types == TypesBoth
	wantLessons := q.Types == "" || q.Types == TypesLessons || q.Types == TypesBoth

	var hits []vectorstore.SearchHit
	if wantInteractions {
		collection := vectorstore.CollectionInteractions
		if q.SharedOnly {
			collection = vectorstore.CollectionInteractionsShared
		}
		h, err := r.vectors.Query(ctx, collection, queryVec, limit, matches, ranges)
		if err != nil {
			r.logger.WithError(err).Warn("interactions vector search failed")
		} else {
			hits = append(hits, taggedHits(h, ResultInteraction)...)
		}
	}
	if wantLessons {
		collection := vectorstore.CollectionLessons
		if q.SharedOnly {
			collection = vectorstore.CollectionLessonsShared
		}
		h, err := r.vectors.Query(ctx, collection, queryVec, limit, matches, ranges)
		if err != nil {
			r.logger.WithError(err).Warn("lessons vector search failed")
		} else {
			hits = append(hits, taggedHits(h, ResultLesson)...)
		}
	}

	results := toSearchResults(hits)
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}

	r.audit(ctx, agentID, q, len(results))
	return results, nil
}

// substringFallback is only reachable for admin callers; agent callers get
// an empty result set when embedding fails.
func (r *Retriever) substringFallback(ctx context.Context, q SearchQuery, limit int) []SearchResult {
	if !q.IsAdmin {
		return nil
	}
	mems, err := r.memories.SearchSubstring(ctx, q.Query, limit)
	if err != nil {
		r.logger.WithError(err).Error("substring fallback search failed")
		return nil
	}
	out := make([]SearchResult, 0, len(mems))
	for _, m := range mems {
		out = append(out, SearchResult{
			ID:        m.ID,
			Kind:      ResultInteraction,
			Score:     0,
			Snippet:   snippet(m.RawText),
			Timestamp: m.Timestamp,
			Metadata:  map[string]any{"channel": m.Channel},
		})
	}
	return out
}

func (r *Retriever) audit(ctx context.Context, agentID string, q SearchQuery, count int) {
	r.auditor.Record(ctx, &models.AuditRecord{
		ID:           uuid.NewString(),
		AgentID:      agentID,
		Action:       "search",
		ResourceType: "query",
		ResourceID:   "",
		Details:      models.Metadata{"query": q.Query, "result_count": count},
		Timestamp:    time.Now().UTC(),
	})
}

// buildMatches compiles the documented filter dialect (channel equality,
// entity_type membership, since/until range) into the vector store's
// equality-match and range-match primitives.
func buildMatches(q SearchQuery) ([]vectorstore.MatchFilter, []vectorstore.RangeFilter) {
	var matches []vectorstore.MatchFilter
	if q.Channel != "" {
		matches = append(matches, vectorstore.MatchFilter{Key: "channel", Value: q.Channel})
	}
	if q.EntityType != "" {
		matches = append(matches, vectorstore.MatchFilter{Key: "entity_types", Value: q.EntityType})
	}

	var ranges []vectorstore.RangeFilter
	if q.Since != nil || q.Until != nil {
		ranges = append(ranges, vectorstore.RangeFilter{Key: "timestamp_unix", Since: q.Since, Until: q.Until})
	}
	return matches, ranges
}

func taggedHits(hits []vectorstore.SearchHit, kind ResultKind) []vectorstore.SearchHit {
	for i := range hits {
		if hits[i].Payload == nil {
			hits[i].Payload = map[string]any{}
		}
		hits[i].Payload["_kind"] = string(kind)
	}
	return hits
}

func toSearchResults(hits []vectorstore.SearchHit) []SearchResult {
	out := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		kind := ResultInteraction
		if k, ok := h.Payload["_kind"].(string); ok && k == string(ResultLesson) {
			kind = ResultLesson
		}
		var ts time.Time
		if tsStr, ok := h.Payload["timestamp"].(string); ok {
			if parsed, err := time.Parse(time.RFC3339, tsStr); err == nil {
				ts = parsed
			}
		}
		text, _ := h.Payload["text"].(string)
		out = append(out, SearchResult{
			ID:        h.ID,
			Kind:      kind,
			Score:     h.Score,
			Snippet:   snippet(text),
			Timestamp: ts,
			Metadata:  h.Payload,
		})
	}
	return out
}

func snippet(text string) string {
	const max = 200
	if len(text) <= max {
		return text
	}
	return text[:max]
}

// Timeline returns memories citing (entityType, entityID), newest first.
func (r *Retriever) Timeline(ctx context.Context, entityType, entityID string, since, until *time.Time, channel string, limit, offset int) ([]*models.Memory, error) {
	return r.memories.ListByEntity(ctx, entityType, entityID, since, until, channel, limit, offset)
}
