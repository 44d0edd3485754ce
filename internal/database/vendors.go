package database

import (
	"context"

	"grc-center/internal/models"
)

type VendorFilter struct {
	Status    models.VendorStatus
	RiskLevel models.VendorRiskLevel
	Page
}

func (s *Store) CreateVendor(ctx context.Context, v *models.Vendor) error {
	return createWithCode(ctx, s, v, &v.Code, VendorCodes)
}

func (s *Store) ListVendors(ctx context.Context, f VendorFilter) ([]models.Vendor, error) {
	q := s.conn(ctx).Model(&models.Vendor{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RiskLevel != "" {
		q = q.Where("risk_level = ?", f.RiskLevel)
	}
	var vendors []models.Vendor
	err := f.Page.apply(q).Order("id").Find(&vendors).Error
	return vendors, err
}

func (s *Store) GetVendor(ctx context.Context, code string) (*models.Vendor, error) {
	return first[models.Vendor](s.conn(ctx), "code = ?", code)
}

func (s *Store) GetVendorByID(ctx context.Context, id uint) (*models.Vendor, error) {
	return first[models.Vendor](s.conn(ctx), "id = ?", id)
}

func (s *Store) SaveVendor(ctx context.Context, v *models.Vendor) error {
	return s.conn(ctx).Save(v).Error
}

func (s *Store) CreateAssessment(ctx context.Context, a *models.VendorAssessment) error {
	return createWithCode(ctx, s, a, &a.Code, AssessmentCodes)
}

// ListAssessments returns the assessments of one vendor, or of every vendor when vendorID is 0.
func (s *Store) ListAssessments(ctx context.Context, vendorID uint) ([]models.VendorAssessment, error) {
	q := s.conn(ctx).Model(&models.VendorAssessment{})
	if vendorID != 0 {
		q = q.Where("vendor_id = ?", vendorID)
	}
	var out []models.VendorAssessment
	err := q.Order("id").Find(&out).Error
	return out, err
}

func (s *Store) GetAssessment(ctx context.Context, code string) (*models.VendorAssessment, error) {
	return first[models.VendorAssessment](s.conn(ctx), "code = ?", code)
}

// LatestCompletedAssessment is the most recently completed scored assessment of a vendor.
func (s *Store) LatestCompletedAssessment(ctx context.Context, vendorID uint) (*models.VendorAssessment, error) {
	q := s.conn(ctx).
		Where("status = ? AND overall_score IS NOT NULL", models.AssessmentCompleted).
		Order("completion_date DESC, id DESC")
	return first[models.VendorAssessment](q, "vendor_id = ?", vendorID)
}

func (s *Store) SaveAssessment(ctx context.Context, a *models.VendorAssessment) error {
	return s.conn(ctx).Save(a).Error
}
