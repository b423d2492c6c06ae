package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drmoyassine/masteragent/internal/models"
)

// MemoryRepository persists Memory rows.
type MemoryRepository struct {
	db *DB
}

func NewMemoryRepository(db *DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Insert writes a Memory row within tx (see DB.WithTx). Entities and
// metadata are serialized at this storage boundary only.
func (r *MemoryRepository) Insert(ctx context.Context, q Querier, m *models.Memory) error {
	entitiesJSON, err := json.Marshal(m.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	metadataJSON, err := json.Marshal(m.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	const query = `
		INSERT INTO memories (id, timestamp, channel, raw_text, summary_text, has_documents, is_shared, entities_json, metadata_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = q.Exec(ctx, query, m.ID, m.Timestamp, m.Channel, m.RawText, m.SummaryText,
		m.HasDocuments, m.IsShared, entitiesJSON, metadataJSON, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	const query = `
		SELECT id, timestamp, channel, raw_text, summary_text, has_documents, is_shared, entities_json, metadata_json, created_at, updated_at
		FROM memories WHERE id = $1
	`
	row := r.db.Pool.QueryRow(ctx, query, id)
	return scanMemory(row)
}

// scanRow is the subset of pgx.Row/pgx.Rows used by scanMemory.
type scanRow interface {
	Scan(dest ...any) error
}

func scanMemory(row scanRow) (*models.Memory, error) {
	var m models.Memory
	var entitiesJSON, metadataJSON []byte
	if err := row.Scan(&m.ID, &m.Timestamp, &m.Channel, &m.RawText, &m.SummaryText,
		&m.HasDocuments, &m.IsShared, &entitiesJSON, &metadataJSON, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan memory: %w", err)
	}
	if err := json.Unmarshal(entitiesJSON, &m.Entities); err != nil {
		return nil, fmt.Errorf("unmarshal entities: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &m, nil
}

// SetShared flips the is_shared flag, the one field allowed to mutate
// after ingest.
func (r *MemoryRepository) SetShared(ctx context.Context, id string, shared bool) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE memories SET is_shared = $2, updated_at = now() WHERE id = $1`, id, shared)
	if err != nil {
		return fmt.Errorf("update memory shared flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("memory not found: %s", id)
	}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("memory not found: %s", id)
	}
	return nil
}

// ListByDay returns memories whose timestamp falls on the given UTC
// calendar day, used by the exporter.
func (r *MemoryRepository) ListByDay(ctx context.Context, day string) ([]*models.Memory, error) {
	const query = `
		SELECT id, timestamp, channel, raw_text, summary_text, has_documents, is_shared, entities_json, metadata_json, created_at, updated_at
		FROM memories WHERE (timestamp AT TIME ZONE 'UTC')::date = $1::date ORDER BY timestamp ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list memories by day: %w", err)
	}
	defer rows.Close()

	var result []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ListSince returns memories at or after `since`, used by the lesson miner
// to gather the trailing window.
func (r *MemoryRepository) ListSince(ctx context.Context, since time.Time) ([]*models.Memory, error) {
	const query = `
		SELECT id, timestamp, channel, raw_text, summary_text, has_documents, is_shared, entities_json, metadata_json, created_at, updated_at
		FROM memories WHERE timestamp >= $1 ORDER BY timestamp DESC
	`
	rows, err := r.db.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list memories since: %w", err)
	}
	defer rows.Close()

	var result []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// SearchSubstring is the relational fallback for admin search when the
// embedding call fails.
func (r *MemoryRepository) SearchSubstring(ctx context.Context, needle string, limit int) ([]*models.Memory, error) {
	const query = `
		SELECT id, timestamp, channel, raw_text, summary_text, has_documents, is_shared, entities_json, metadata_json, created_at, updated_at
		FROM memories WHERE raw_text ILIKE $1 OR summary_text ILIKE $1
		ORDER BY timestamp DESC LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, "%"+needle+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("substring search memories: %w", err)
	}
	defer rows.Close()

	var result []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ListByEntity returns memories whose entity list contains entityType/entityID,
// ordered newest-first and paginated — the Timeline operation.
func (r *MemoryRepository) ListByEntity(ctx context.Context, entityType, entityID string, since, until *time.Time, channel string, limit, offset int) ([]*models.Memory, error) {
	query := `
		SELECT id, timestamp, channel, raw_text, summary_text, has_documents, is_shared, entities_json, metadata_json, created_at, updated_at
		FROM memories
		WHERE entities_json @> $1::jsonb
	`
	args := []any{mustMarshalEntityFilter(entityType, entityID)}
	argN := 2

	if since != nil {
		query += fmt.Sprintf(" AND timestamp >= $%d", argN)
		args = append(args, *since)
		argN++
	}
	if until != nil {
		query += fmt.Sprintf(" AND timestamp <= $%d", argN)
		args = append(args, *until)
		argN++
	}
	if channel != "" {
		query += fmt.Sprintf(" AND channel = $%d", argN)
		args = append(args, channel)
		argN++
	}

	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memories by entity: %w", err)
	}
	defer rows.Close()

	var result []*models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func mustMarshalEntityFilter(entityType, entityID string) []byte {
	b, _ := json.Marshal([]models.EntityRef{{Type: entityType, ID: entityID}})
	return b
}
