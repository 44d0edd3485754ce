package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"grc-center/internal/analytics"
	"grc-center/internal/database"
	"grc-center/internal/metrics"
	"grc-center/internal/models"
	"grc-center/internal/scoring"
)

const (
	entityVendor     = "vendor"
	entityAssessment = "assessment"

	recomputeVendor = "vendor"
)

type VendorInput struct {
	Name                    string     `json:"name" binding:"required"`
	Description             string     `json:"description"`
	Status                  string     `json:"status"`
	PrimaryContactName      string     `json:"primary_contact_name"`
	PrimaryContactEmail     string     `json:"primary_contact_email"`
	PrimaryContactPhone     string     `json:"primary_contact_phone"`
	Website                 string     `json:"website"`
	CriticalityLevel        string     `json:"criticality_level"`
	ServiceType             string     `json:"service_type"`
	ContractStartDate       *time.Time `json:"contract_start_date"`
	ContractEndDate         *time.Time `json:"contract_end_date"`
	AnnualSpend             *float64   `json:"annual_spend"`
	DataAccess              bool       `json:"data_access"`
	DataTypes               []string   `json:"data_types"`
	ComplianceRequirements  []string   `json:"compliance_requirements"`
	Certifications          []string   `json:"certifications"`
	NextAssessmentDate      *time.Time `json:"next_assessment_date"`
	AssessmentFrequencyDays int        `json:"assessment_frequency_days"`
	Tags                    []string   `json:"tags"`
}

// VendorUpdate is a partial update; nil fields are left unchanged.
type VendorUpdate struct {
	Name                    *string    `json:"name"`
	Description             *string    `json:"description"`
	Status                  *string    `json:"status"`
	PrimaryContactName      *string    `json:"primary_contact_name"`
	PrimaryContactEmail     *string    `json:"primary_contact_email"`
	PrimaryContactPhone     *string    `json:"primary_contact_phone"`
	Website                 *string    `json:"website"`
	CriticalityLevel        *string    `json:"criticality_level"`
	ServiceType             *string    `json:"service_type"`
	ContractEndDate         *time.Time `json:"contract_end_date"`
	AnnualSpend             *float64   `json:"annual_spend"`
	DataAccess              *bool      `json:"data_access"`
	Certifications          []string   `json:"certifications"`
	NextAssessmentDate      *time.Time `json:"next_assessment_date"`
	AssessmentFrequencyDays *int       `json:"assessment_frequency_days"`
	Tags                    []string   `json:"tags"`
}

func checkSpend(spend *float64) error {
	if spend != nil && *spend < 0 {
		return invalid("annual_spend", "must not be negative, got %v", *spend)
	}
	return nil
}

// applyVendorScore sets the vendor's risk score and level from its own
// attributes and the overall score of its latest completed assessment.
func applyVendorScore(v *models.Vendor, assessmentOverall *float64) {
	score := scoring.VendorRiskScore(scoring.VendorInputOf(*v), assessmentOverall)
	v.RiskScore = &score
	v.RiskLevel = scoring.VendorRiskLevel(score)
}

// CreateVendor assigns the next VND- code. The initial risk score reflects
// data access and spend only, as no assessment exists yet.
func (s *Service) CreateVendor(ctx context.Context, in VendorInput) (*models.Vendor, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name", "is required")
	}
	status := models.VendorActive
	if in.Status != "" {
		var err error
		if status, err = models.ParseVendorStatus(in.Status); err != nil {
			return nil, err
		}
	}
	if err := checkSpend(in.AnnualSpend); err != nil {
		return nil, err
	}
	frequency := in.AssessmentFrequencyDays
	if frequency <= 0 {
		frequency = models.DefaultAssessmentFrequencyDays
	}

	vendor := models.Vendor{
		Name:                    in.Name,
		Description:             in.Description,
		Status:                  status,
		PrimaryContactName:      in.PrimaryContactName,
		PrimaryContactEmail:     in.PrimaryContactEmail,
		PrimaryContactPhone:     in.PrimaryContactPhone,
		Website:                 in.Website,
		CriticalityLevel:        in.CriticalityLevel,
		ServiceType:             in.ServiceType,
		ContractStartDate:       in.ContractStartDate,
		ContractEndDate:         in.ContractEndDate,
		AnnualSpend:             in.AnnualSpend,
		DataAccess:              in.DataAccess,
		DataTypes:               in.DataTypes,
		ComplianceRequirements:  in.ComplianceRequirements,
		Certifications:          in.Certifications,
		NextAssessmentDate:      in.NextAssessmentDate,
		AssessmentFrequencyDays: frequency,
		Tags:                    in.Tags,
	}
	applyVendorScore(&vendor, nil)

	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.CreateVendor(ctx, &vendor); err != nil {
			return fmt.Errorf("create vendor: %w", err)
		}
		return audit(ctx, tx, entityVendor, vendor.Code, ActionCreate, "created vendor %q", vendor.Name)
	})
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (s *Service) ListVendors(ctx context.Context, f database.VendorFilter) ([]models.Vendor, error) {
	f.Page = limitOrDefault(f.Page)
	return s.store.ListVendors(ctx, f)
}

func (s *Service) GetVendor(ctx context.Context, code string) (*models.Vendor, error) {
	v, err := s.store.GetVendor(ctx, code)
	return lookup(v, err, entityVendor, code)
}

// UpdateVendor applies u. A change to data access or spend re-derives the
// risk score against the latest completed assessment.
func (s *Service) UpdateVendor(ctx context.Context, code string, u VendorUpdate) (*models.Vendor, error) {
	if err := checkSpend(u.AnnualSpend); err != nil {
		return nil, err
	}
	if u.AssessmentFrequencyDays != nil && *u.AssessmentFrequencyDays <= 0 {
		return nil, invalid("assessment_frequency_days", "must be positive, got %d", *u.AssessmentFrequencyDays)
	}

	var updated *models.Vendor
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetVendor(ctx, code)
		v, err := lookup(stored, err, entityVendor, code)
		if err != nil {
			return err
		}
		if u.Name != nil {
			if strings.TrimSpace(*u.Name) == "" {
				return invalid("name", "must not be empty")
			}
			v.Name = *u.Name
		}
		if u.Status != nil {
			if v.Status, err = models.ParseVendorStatus(*u.Status); err != nil {
				return err
			}
		}
		setString(&v.Description, u.Description)
		setString(&v.PrimaryContactName, u.PrimaryContactName)
		setString(&v.PrimaryContactEmail, u.PrimaryContactEmail)
		setString(&v.PrimaryContactPhone, u.PrimaryContactPhone)
		setString(&v.Website, u.Website)
		setString(&v.CriticalityLevel, u.CriticalityLevel)
		setString(&v.ServiceType, u.ServiceType)
		if u.ContractEndDate != nil {
			v.ContractEndDate = u.ContractEndDate
		}
		if u.NextAssessmentDate != nil {
			v.NextAssessmentDate = u.NextAssessmentDate
		}
		if u.AssessmentFrequencyDays != nil {
			v.AssessmentFrequencyDays = *u.AssessmentFrequencyDays
		}
		if u.Certifications != nil {
			v.Certifications = u.Certifications
		}
		if u.Tags != nil {
			v.Tags = u.Tags
		}

		rescore := u.AnnualSpend != nil || u.DataAccess != nil
		if u.AnnualSpend != nil {
			v.AnnualSpend = ptr(*u.AnnualSpend)
		}
		if u.DataAccess != nil {
			v.DataAccess = *u.DataAccess
		}
		if rescore {
			overall, err := latestOverall(ctx, tx, v.ID)
			if err != nil {
				return err
			}
			applyVendorScore(v, overall)
		}

		if err := tx.SaveVendor(ctx, v); err != nil {
			return fmt.Errorf("save vendor %s: %w", code, err)
		}
		updated = v
		return audit(ctx, tx, entityVendor, code, ActionUpdate, "rescored=%t", rescore)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// latestOverall returns the overall score of the vendor's latest completed
// assessment, or nil when it has none.
func latestOverall(ctx context.Context, tx *database.Store, vendorID uint) (*float64, error) {
	a, err := tx.LatestCompletedAssessment(ctx, vendorID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest assessment of vendor %d: %w", vendorID, err)
	}
	return a.OverallScore, nil
}

type AssessmentInput struct {
	AssessmentType string     `json:"assessment_type" binding:"required"`
	Assessor       string     `json:"assessor"`
	DueDate        *time.Time `json:"due_date"`
}

// CreateAssessment opens an assessment for the vendor, starting now.
func (s *Service) CreateAssessment(ctx context.Context, vendorCode string, in AssessmentInput) (*models.VendorAssessment, error) {
	if strings.TrimSpace(in.AssessmentType) == "" {
		return nil, invalid("assessment_type", "is required")
	}

	var assessment *models.VendorAssessment
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetVendor(ctx, vendorCode)
		vendor, err := lookup(stored, err, entityVendor, vendorCode)
		if err != nil {
			return err
		}
		start := s.now()
		assessment = &models.VendorAssessment{
			VendorID:       vendor.ID,
			AssessmentType: in.AssessmentType,
			Assessor:       in.Assessor,
			DueDate:        in.DueDate,
			Status:         models.AssessmentNotStarted,
			StartDate:      &start,
		}
		if err := tx.CreateAssessment(ctx, assessment); err != nil {
			return fmt.Errorf("create assessment for %s: %w", vendorCode, err)
		}
		return audit(ctx, tx, entityAssessment, assessment.Code, ActionCreate, "vendor %s, %s", vendorCode, in.AssessmentType)
	})
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *Service) ListAssessments(ctx context.Context, vendorCode string) ([]models.VendorAssessment, error) {
	vendor, err := s.GetVendor(ctx, vendorCode)
	if err != nil {
		return nil, err
	}
	return s.store.ListAssessments(ctx, vendor.ID)
}

func (s *Service) GetAssessment(ctx context.Context, code string) (*models.VendorAssessment, error) {
	a, err := s.store.GetAssessment(ctx, code)
	return lookup(a, err, entityAssessment, code)
}

// ScoresInput carries the component scores of a completed assessment.
// Missing scores count as 0.
type ScoresInput struct {
	SecurityScore    *float64 `json:"security_score"`
	PrivacyScore     *float64 `json:"privacy_score"`
	OperationalScore *float64 `json:"operational_score"`
	FinancialScore   *float64 `json:"financial_score"`
}

func (in ScoresInput) scores() (scoring.AssessmentScores, error) {
	var out scoring.AssessmentScores
	fields := []struct {
		name string
		in   *float64
		out  *float64
	}{
		{"security_score", in.SecurityScore, &out.Security},
		{"privacy_score", in.PrivacyScore, &out.Privacy},
		{"operational_score", in.OperationalScore, &out.Operational},
		{"financial_score", in.FinancialScore, &out.Financial},
	}
	for _, f := range fields {
		if f.in == nil {
			continue
		}
		if *f.in < 0 || *f.in > 100 {
			return out, invalid(f.name, "must be between 0 and 100, got %v", *f.in)
		}
		*f.out = *f.in
	}
	return out, nil
}

type AssessmentCompletion struct {
	AssessmentID    string                 `json:"assessment_id"`
	OverallScore    float64                `json:"overall_score"`
	VendorID        string                 `json:"vendor_id"`
	VendorRiskScore float64                `json:"vendor_risk_score"`
	VendorRiskLevel models.VendorRiskLevel `json:"vendor_risk_level"`
}

// CompleteAssessment records the component scores, derives the overall
// score, re-scores the vendor against it and moves the vendor's assessment
// dates forward. The assessment and vendor are written in one transaction.
func (s *Service) CompleteAssessment(ctx context.Context, code string, in ScoresInput) (AssessmentCompletion, error) {
	scores, err := in.scores()
	if err != nil {
		return AssessmentCompletion{}, err
	}

	var result AssessmentCompletion
	err = s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetAssessment(ctx, code)
		assessment, err := lookup(stored, err, entityAssessment, code)
		if err != nil {
			return err
		}
		vendor, err := tx.GetVendorByID(ctx, assessment.VendorID)
		if err != nil {
			return fmt.Errorf("load vendor of assessment %s: %w", code, err)
		}

		outcome := scoring.CompleteAssessment(scoring.VendorInputOf(*vendor), vendor.AssessmentFrequencyDays, scores, s.now())
		outcome.Apply(vendor, assessment)

		if err := tx.SaveAssessment(ctx, assessment); err != nil {
			return fmt.Errorf("save assessment %s: %w", code, err)
		}
		if err := tx.SaveVendor(ctx, vendor); err != nil {
			return fmt.Errorf("save vendor %s: %w", vendor.Code, err)
		}
		result = AssessmentCompletion{
			AssessmentID:    code,
			OverallScore:    outcome.Overall,
			VendorID:        vendor.Code,
			VendorRiskScore: outcome.VendorRiskScore,
			VendorRiskLevel: outcome.VendorRiskLevel,
		}
		return audit(ctx, tx, entityAssessment, code, ActionComplete, "overall %.2f, vendor %s now %s",
			outcome.Overall, vendor.Code, outcome.VendorRiskLevel)
	})
	if err != nil {
		return AssessmentCompletion{}, err
	}
	metrics.RecomputationsTotal.WithLabelValues(recomputeVendor).Inc()
	return result, nil
}

// RecomputeVendor re-derives the vendor's risk score from its attributes
// and its latest completed assessment.
func (s *Service) RecomputeVendor(ctx context.Context, code string) (*models.Vendor, error) {
	var out *models.Vendor
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetVendor(ctx, code)
		v, err := lookup(stored, err, entityVendor, code)
		if err != nil {
			return err
		}
		overall, err := latestOverall(ctx, tx, v.ID)
		if err != nil {
			return err
		}
		applyVendorScore(v, overall)
		if err := tx.SaveVendor(ctx, v); err != nil {
			return fmt.Errorf("save vendor %s: %w", code, err)
		}
		out = v
		return audit(ctx, tx, entityVendor, code, ActionRecompute, "score %.2f %s", *v.RiskScore, v.RiskLevel)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecomputationsTotal.WithLabelValues(recomputeVendor).Inc()
	return out, nil
}

func (s *Service) VendorDistribution(ctx context.Context) (analytics.VendorDistribution, error) {
	vendors, err := s.store.ListVendors(ctx, database.VendorFilter{})
	if err != nil {
		return analytics.VendorDistribution{}, fmt.Errorf("list vendors: %w", err)
	}
	assessments, err := s.store.ListAssessments(ctx, 0)
	if err != nil {
		return analytics.VendorDistribution{}, fmt.Errorf("list assessments: %w", err)
	}
	return analytics.BuildVendorDistribution(vendors, assessments, s.now()), nil
}
