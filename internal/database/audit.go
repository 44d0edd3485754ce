package database

import (
	"context"

	"grc-center/internal/models"
)

type AuditFilter struct {
	Entity string
	Actor  string
	Page
}

// RecordAudit appends one entry to the audit log.
func (s *Store) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	if entry.Actor == "" {
		entry.Actor = models.AnonymousActor
	}
	return s.conn(ctx).Create(entry).Error
}

// ListAudit returns entries newest first.
func (s *Store) ListAudit(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	q := s.conn(ctx).Model(&models.AuditLog{})
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.Actor != "" {
		q = q.Where("actor = ?", f.Actor)
	}
	var out []models.AuditLog
	err := f.Page.apply(q).Order("id DESC").Find(&out).Error
	return out, err
}
