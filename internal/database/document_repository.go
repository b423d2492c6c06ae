package database

import (
	"context"
	"fmt"

	"github.com/drmoyassine/masteragent/internal/models"
)

// DocumentRepository persists parsed attachments.
type DocumentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Insert(ctx context.Context, q Querier, d *models.Document) error {
	const query = `
		INSERT INTO memory_documents (id, memory_id, filename, file_type, file_size, parsed_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query, d.ID, d.MemoryID, d.Filename, d.FileType, d.FileSize, d.ParsedText, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByMemory(ctx context.Context, memoryID string) ([]*models.Document, error) {
	const query = `
		SELECT id, memory_id, filename, file_type, file_size, parsed_text, created_at
		FROM memory_documents WHERE memory_id = $1 ORDER BY created_at ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, memoryID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.MemoryID, &d.Filename, &d.FileType, &d.FileSize, &d.ParsedText, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
