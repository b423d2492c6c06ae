package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drmoyassine/masteragent/internal/models"
)

// SharedMemoryRepository persists PII-redacted projections.
type SharedMemoryRepository struct {
	db *DB
}

func NewSharedMemoryRepository(db *DB) *SharedMemoryRepository {
	return &SharedMemoryRepository{db: db}
}

func (r *SharedMemoryRepository) Insert(ctx context.Context, q Querier, s *models.SharedMemory) error {
	entitiesJSON, err := json.Marshal(s.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	metadataJSON, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	const query = `
		INSERT INTO memories_shared (id, original_memory_id, timestamp, channel, scrubbed_text, summary_text, has_documents, entities_json, metadata_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = q.Exec(ctx, query, s.ID, s.OriginalMemoryID, s.Timestamp, s.Channel, s.ScrubbedText,
		s.SummaryText, s.HasDocuments, entitiesJSON, metadataJSON, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert shared memory: %w", err)
	}
	return nil
}

func (r *SharedMemoryRepository) GetByOriginID(ctx context.Context, originID string) (*models.SharedMemory, error) {
	const query = `
		SELECT id, original_memory_id, timestamp, channel, scrubbed_text, summary_text, has_documents, entities_json, metadata_json, created_at
		FROM memories_shared WHERE original_memory_id = $1
	`
	row := r.db.Pool.QueryRow(ctx, query, originID)
	var s models.SharedMemory
	var entitiesJSON, metadataJSON []byte
	if err := row.Scan(&s.ID, &s.OriginalMemoryID, &s.Timestamp, &s.Channel, &s.ScrubbedText,
		&s.SummaryText, &s.HasDocuments, &entitiesJSON, &metadataJSON, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan shared memory: %w", err)
	}
	_ = json.Unmarshal(entitiesJSON, &s.Entities)
	_ = json.Unmarshal(metadataJSON, &s.Metadata)
	return &s, nil
}
