package gate

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/models"
)

// Auditor writes one AuditRecord after a mutating or sensitive operation
// completes. Audit failures must never fail the primary operation — they
// are logged at error level and swallowed.
type Auditor struct {
	repo   *database.AuditRepository
	logger *logrus.Logger
}

func NewAuditor(repo *database.AuditRepository, logger *logrus.Logger) *Auditor {
	return &Auditor{repo: repo, logger: logger}
}

// Record persists one audit entry. Callers invoke it only after the primary
// operation has succeeded; the record carries no outcome field.
func (a *Auditor) Record(ctx context.Context, rec *models.AuditRecord) {
	if err := a.repo.Insert(ctx, rec); err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"agent_id": rec.AgentID,
			"action":   rec.Action,
		}).Error("audit record write failed")
	}
}
