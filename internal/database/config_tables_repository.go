package database

import (
	"context"
	"fmt"
	"time"
)

// SystemPrompt is a named, versioned prompt template used by the Enricher
// and the miner.
type SystemPrompt struct {
	ID         string
	PromptType string
	Name       string
	PromptText string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LessonType is a row in the configurable set of lesson tags.
type LessonType struct {
	ID          string
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}

// ChannelType is a row in the configurable set of interaction channels.
type ChannelType struct {
	ID          string
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
}

// EntityType is a row in the configurable set of entity kinds citable from
// Memories/Lessons.
type EntityType struct {
	ID          string
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ConfigTablesRepository handles the admin-managed lookup tables: entity
// types, lesson types, channel types, and system prompts. Entity subtypes
// are not handled.
type ConfigTablesRepository struct {
	db *DB
}

func NewConfigTablesRepository(db *DB) *ConfigTablesRepository {
	return &ConfigTablesRepository{db: db}
}

// GetActivePrompt fetches the active prompt for a given type (e.g.
// "summarization", "entity_extraction", "lesson_extraction").
func (r *ConfigTablesRepository) GetActivePrompt(ctx context.Context, promptType string) (*SystemPrompt, error) {
	const query = `
		SELECT id, prompt_type, name, prompt_text, is_active, created_at, updated_at
		FROM memory_system_prompts WHERE prompt_type = $1 AND is_active = TRUE
		ORDER BY updated_at DESC LIMIT 1
	`
	row := r.db.Pool.QueryRow(ctx, query, promptType)
	var p SystemPrompt
	if err := row.Scan(&p.ID, &p.PromptType, &p.Name, &p.PromptText, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan system prompt: %w", err)
	}
	return &p, nil
}

func (r *ConfigTablesRepository) UpsertPrompt(ctx context.Context, p *SystemPrompt) error {
	const query = `
		INSERT INTO memory_system_prompts (id, prompt_type, name, prompt_text, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			prompt_type = EXCLUDED.prompt_type, name = EXCLUDED.name,
			prompt_text = EXCLUDED.prompt_text, is_active = EXCLUDED.is_active, updated_at = now()
	`
	_, err := r.db.Pool.Exec(ctx, query, p.ID, p.PromptType, p.Name, p.PromptText, p.IsActive)
	if err != nil {
		return fmt.Errorf("upsert system prompt: %w", err)
	}
	return nil
}

func (r *ConfigTablesRepository) ListLessonTypes(ctx context.Context) ([]LessonType, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, description, color, created_at FROM memory_lesson_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list lesson types: %w", err)
	}
	defer rows.Close()

	var out []LessonType
	for rows.Next() {
		var lt LessonType
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.Description, &lt.Color, &lt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lesson type: %w", err)
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (r *ConfigTablesRepository) CreateLessonType(ctx context.Context, lt *LessonType) error {
	const query = `INSERT INTO memory_lesson_types (id, name, description, color, created_at) VALUES ($1, $2, $3, $4, now())`
	_, err := r.db.Pool.Exec(ctx, query, lt.ID, lt.Name, lt.Description, lt.Color)
	if err != nil {
		return fmt.Errorf("create lesson type: %w", err)
	}
	return nil
}

func (r *ConfigTablesRepository) ListChannelTypes(ctx context.Context) ([]ChannelType, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, description, icon, created_at FROM memory_channel_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list channel types: %w", err)
	}
	defer rows.Close()

	var out []ChannelType
	for rows.Next() {
		var ct ChannelType
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.Description, &ct.Icon, &ct.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan channel type: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *ConfigTablesRepository) ListEntityTypes(ctx context.Context) ([]EntityType, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, description, icon, created_at, updated_at FROM memory_entity_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list entity types: %w", err)
	}
	defer rows.Close()

	var out []EntityType
	for rows.Next() {
		var et EntityType
		if err := rows.Scan(&et.ID, &et.Name, &et.Description, &et.Icon, &et.CreatedAt, &et.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entity type: %w", err)
		}
		out = append(out, et)
	}
	return out, rows.Err()
}
