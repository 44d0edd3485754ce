package database

import (
	"context"

	"grc-center/internal/models"
)

type RiskFilter struct {
	Category models.RiskCategory
	Status   models.RiskStatus
	MinScore *float64
	MaxScore *float64
	Page
}

// CreateRisk inserts r, assigning a RISK- code when r has none.
func (s *Store) CreateRisk(ctx context.Context, r *models.Risk) error {
	return createWithCode(ctx, s, r, &r.Code, RiskCodes)
}

func (s *Store) ListRisks(ctx context.Context, f RiskFilter) ([]models.Risk, error) {
	q := s.conn(ctx).Model(&models.Risk{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MinScore != nil {
		q = q.Where("inherent_risk_score >= ?", *f.MinScore)
	}
	if f.MaxScore != nil {
		q = q.Where("inherent_risk_score <= ?", *f.MaxScore)
	}

	var risks []models.Risk
	err := f.Page.apply(q).Order("id").Find(&risks).Error
	return risks, err
}

func (s *Store) GetRisk(ctx context.Context, code string) (*models.Risk, error) {
	return first[models.Risk](s.conn(ctx), "code = ?", code)
}

// RiskByExternalID finds a risk previously imported from a finding source.
func (s *Store) RiskByExternalID(ctx context.Context, externalID string) (*models.Risk, error) {
	return first[models.Risk](s.conn(ctx), "external_id = ?", externalID)
}

func (s *Store) SaveRisk(ctx context.Context, r *models.Risk) error {
	return s.conn(ctx).Save(r).Error
}

func (s *Store) DeleteRisk(ctx context.Context, code string) error {
	res := s.conn(ctx).Where("code = ?", code).Delete(&models.Risk{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
