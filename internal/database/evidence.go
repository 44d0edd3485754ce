package database

import (
	"context"

	"grc-center/internal/models"
)

type EvidenceFilter struct {
	Type       models.EvidenceType
	Status     models.EvidenceStatus
	ControlRef string
	Framework  string
	Page
}

func (s *Store) CreateEvidence(ctx context.Context, e *models.Evidence) error {
	return createWithCode(ctx, s, e, &e.Code, EvidenceCodes)
}

func (s *Store) ListEvidence(ctx context.Context, f EvidenceFilter) ([]models.Evidence, error) {
	q := s.conn(ctx).Model(&models.Evidence{})
	if f.Type != "" {
		q = q.Where("evidence_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ControlRef != "" {
		q = q.Where("control_ref = ?", f.ControlRef)
	}
	if f.Framework != "" {
		q = q.Where("framework = ?", f.Framework)
	}
	var out []models.Evidence
	err := f.Page.apply(q).Order("id").Find(&out).Error
	return out, err
}

func (s *Store) GetEvidence(ctx context.Context, code string) (*models.Evidence, error) {
	return first[models.Evidence](s.conn(ctx), "code = ?", code)
}

func (s *Store) SaveEvidence(ctx context.Context, e *models.Evidence) error {
	return s.conn(ctx).Save(e).Error
}

func (s *Store) CreateCollection(ctx context.Context, c *models.EvidenceCollection) error {
	return createWithCode(ctx, s, c, &c.Code, CollectionCodes)
}

func (s *Store) ListCollections(ctx context.Context) ([]models.EvidenceCollection, error) {
	var out []models.EvidenceCollection
	err := s.conn(ctx).Order("id").Find(&out).Error
	return out, err
}
