package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drmoyassine/masteragent/internal/models"
)

// AuditRepository appends AuditRecords. Audit writes happen in their own
// transaction after the primary operation commits and never fail the
// caller: the Gate logs and swallows the error (see internal/gate.Auditor).
type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, rec *models.AuditRecord) error {
	detailsJSON, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	const query = `
		INSERT INTO memory_audit_log (id, agent_id, action, resource_type, resource_id, details_json, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Pool.Exec(ctx, query, rec.ID, rec.AgentID, rec.Action, rec.ResourceType,
		rec.ResourceID, detailsJSON, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}
