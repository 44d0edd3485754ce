package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"grc-center/internal/models"
)

// EnsureComplianceFramework inserts fw unless its code is already present.
func (s *Store) EnsureComplianceFramework(ctx context.Context, fw *models.ComplianceFramework) (bool, error) {
	existing, err := first[models.ComplianceFramework](s.conn(ctx), "code = ?", fw.Code)
	switch {
	case err == nil:
		*fw = *existing
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}
	return true, s.conn(ctx).Create(fw).Error
}

// ListComplianceFrameworks filters on is_active when active is non-nil.
// withRequirements preloads every framework's requirements.
func (s *Store) ListComplianceFrameworks(ctx context.Context, active *bool, withRequirements bool) ([]models.ComplianceFramework, error) {
	q := s.conn(ctx).Model(&models.ComplianceFramework{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if withRequirements {
		q = q.Preload("Requirements", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	}
	var frameworks []models.ComplianceFramework
	err := q.Order("id").Find(&frameworks).Error
	return frameworks, err
}

func (s *Store) GetComplianceFramework(ctx context.Context, code string) (*models.ComplianceFramework, error) {
	return first[models.ComplianceFramework](s.conn(ctx), "code = ?", code)
}

// UpdateFrameworkCompliance overwrites only the derived columns, so concurrent
// recomputations resolve last-write-wins without touching other fields.
func (s *Store) UpdateFrameworkCompliance(ctx context.Context, fw *models.ComplianceFramework) error {
	return s.conn(ctx).Model(fw).
		Select("overall_compliance_percentage", "status", "total_requirements",
			"compliant_requirements", "partially_compliant_requirements", "non_compliant_requirements", "updated_at").
		Updates(fw).Error
}

func (s *Store) ListRequirements(ctx context.Context, frameworkID uint) ([]models.ComplianceRequirement, error) {
	var reqs []models.ComplianceRequirement
	err := s.conn(ctx).Where("framework_id = ?", frameworkID).Order("id").Find(&reqs).Error
	return reqs, err
}

func (s *Store) CreateRequirement(ctx context.Context, r *models.ComplianceRequirement) error {
	return s.conn(ctx).Create(r).Error
}

func (s *Store) GetRequirement(ctx context.Context, frameworkID uint, code string) (*models.ComplianceRequirement, error) {
	return first[models.ComplianceRequirement](s.conn(ctx), "framework_id = ? AND code = ?", frameworkID, code)
}

func (s *Store) SaveRequirement(ctx context.Context, r *models.ComplianceRequirement) error {
	return s.conn(ctx).Save(r).Error
}
