// Package lessons implements CRUD for distilled insights, backing both the
// agent/admin HTTP surface and the background miner.
package lessons

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drmoyassine/masteragent/internal/chunker"
	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/llmclient"
	"github.com/drmoyassine/masteragent/internal/models"
	"github.com/drmoyassine/masteragent/internal/vectorstore"
)

// Auditor mirrors the narrow interface used elsewhere, kept local to avoid
// an import cycle with internal/gate.
type Auditor interface {
	Record(ctx context.Context, rec *models.AuditRecord)
}

// Service implements Lesson CRUD and embedding upkeep.
type Service struct {
	repo     *database.LessonRepository
	settings *database.SettingsRepository
	llm      *llmclient.Client
	vectors  *vectorstore.Store
	auditor  Auditor
}

func New(repo *database.LessonRepository, settings *database.SettingsRepository, llm *llmclient.Client, vectors *vectorstore.Store, auditor Auditor) *Service {
	return &Service{repo: repo, settings: settings, llm: llm, vectors: vectors, auditor: auditor}
}

// CreateInput is what a caller supplies; status defaults to draft when
// lesson_approval_required is set, else approved. ForceDraft overrides that
// default — the background miner sets it so mined lessons always land as
// drafts regardless of the approval setting.
type CreateInput struct {
	LessonType      string
	Name            string
	Body            string
	Summary         string
	RelatedEntities []models.EntityRef
	SourceMemoryIDs []string
	ForceDraft      bool
}

func (s *Service) Create(ctx context.Context, agentID string, in CreateInput) (*models.Lesson, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, models.NewPersistenceError("load settings", err)
	}

	status := models.LessonApproved
	if settings.LessonApprovalRequired || in.ForceDraft {
		status = models.LessonDraft
	}

	now := time.Now().UTC()
	lesson := &models.Lesson{
		ID:              uuid.NewString(),
		LessonType:      in.LessonType,
		Name:            in.Name,
		Body:            in.Body,
		Summary:         in.Summary,
		Status:          status,
		RelatedEntities: in.RelatedEntities,
		SourceMemoryIDs: in.SourceMemoryIDs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, lesson); err != nil {
		return nil, models.NewPersistenceError("insert lesson", err)
	}

	s.indexEmbedding(ctx, lesson)

	s.auditor.Record(ctx, &models.AuditRecord{
		ID: uuid.NewString(), AgentID: agentID, Action: "create_lesson",
		ResourceType: "lesson", ResourceID: lesson.ID, Timestamp: now,
	})
	return lesson, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Lesson, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewNotFoundError("lesson not found")
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, status, lessonType string, limit, offset int) ([]*models.Lesson, error) {
	ls, err := s.repo.List(ctx, status, lessonType, limit, offset)
	if err != nil {
		return nil, models.NewPersistenceError("list lessons", err)
	}
	return ls, nil
}

func (s *Service) Update(ctx context.Context, agentID string, l *models.Lesson) error {
	l.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, l); err != nil {
		return models.NewPersistenceError("update lesson", err)
	}
	s.indexEmbedding(ctx, l)
	s.auditor.Record(ctx, &models.AuditRecord{
		ID: uuid.NewString(), AgentID: agentID, Action: "update_lesson",
		ResourceType: "lesson", ResourceID: l.ID, Timestamp: l.UpdatedAt,
	})
	return nil
}

func (s *Service) Delete(ctx context.Context, agentID, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return models.NewPersistenceError("delete lesson", err)
	}
	_ = s.vectors.Delete(ctx, vectorstore.CollectionLessons, id)
	s.auditor.Record(ctx, &models.AuditRecord{
		ID: uuid.NewString(), AgentID: agentID, Action: "delete_lesson",
		ResourceType: "lesson", ResourceID: id, Timestamp: time.Now().UTC(),
	})
	return nil
}

// indexEmbedding embeds a lesson's body into a single vector point keyed by
// lesson id (unlike interactions, a lesson's vector id carries no chunk
// index). Only the first chunk is embedded; lesson bodies are expected to
// fit within one chunk window. Failures are non-fatal: the lesson remains
// relationally authoritative even if vector indexing lags.
func (s *Service) indexEmbedding(ctx context.Context, l *models.Lesson) {
	chunks := chunker.Chunk(l.Body, 400, 80)
	if len(chunks) == 0 {
		return
	}
	vecs, err := s.llm.Embed(ctx, chunks[:1])
	if err != nil || len(vecs) == 0 {
		return
	}
	point := vectorstore.Point{
		ID:     l.ID,
		Vector: vecs[0],
		Payload: map[string]any{
			"lesson_id":      l.ID,
			"lesson_type":    l.LessonType,
			"timestamp":      l.CreatedAt.Format(time.RFC3339),
			"timestamp_unix": float64(l.CreatedAt.Unix()),
			"entity_types":   entityTypes(l.RelatedEntities),
			"text":           chunks[0],
		},
	}
	_ = s.vectors.Upsert(ctx, vectorstore.CollectionLessons, []vectorstore.Point{point})
}

// entityTypes is the deduplicated set of entity types a lesson relates to,
// stored in the vector payload so entity_type search filters can match it.
func entityTypes(entities []models.EntityRef) []string {
	seen := make(map[string]bool, len(entities))
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		if seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		out = append(out, e.Type)
	}
	return out
}
