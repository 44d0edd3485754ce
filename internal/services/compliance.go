package services

import (
	"context"
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
	entityFramework   = "framework"
	entityRequirement = "requirement"

	recomputeFramework = "framework"
)

var standardComplianceFrameworks = []models.ComplianceFramework{
	{Code: "SOC2", Name: "SOC 2 Type II", Version: "2017",
		Description: "Service Organization Control 2: security, availability, processing integrity, confidentiality and privacy"},
	{Code: "NIST-CSF", Name: "NIST Cybersecurity Framework", Version: "1.1",
		Description: "National Institute of Standards and Technology Cybersecurity Framework"},
	{Code: "ISO-27001", Name: "ISO/IEC 27001", Version: "2013",
		Description: "Information Security Management System Standard"},
	{Code: "GDPR", Name: "General Data Protection Regulation", Version: "2016",
		Description: "EU Data Protection Regulation"},
	{Code: "HIPAA", Name: "HIPAA", Version: "1996",
		Description: "Health Insurance Portability and Accountability Act"},
}

// InitComplianceFrameworks creates the standard compliance frameworks that
// do not exist yet, each active and "In Progress".
func (s *Service) InitComplianceFrameworks(ctx context.Context) (InitResult, error) {
	var created []string
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		for _, fw := range standardComplianceFrameworks {
			fw.IsActive = true
			fw.Status = models.ComplianceInProgress
			ok, err := tx.EnsureComplianceFramework(ctx, &fw)
			if err != nil {
				return fmt.Errorf("ensure framework %s: %w", fw.Code, err)
			}
			if ok {
				created = append(created, fw.Name)
			}
		}
		if len(created) == 0 {
			return nil
		}
		return audit(ctx, tx, entityFramework, "", ActionInit, "created %s", strings.Join(created, ", "))
	})
	if err != nil {
		return InitResult{}, err
	}
	return newInitResult(created), nil
}

// ListComplianceFrameworks filters on is_active when active is non-nil.
func (s *Service) ListComplianceFrameworks(ctx context.Context, active *bool) ([]models.ComplianceFramework, error) {
	return s.store.ListComplianceFrameworks(ctx, active, false)
}

func (s *Service) GetComplianceFramework(ctx context.Context, code string) (*models.ComplianceFramework, error) {
	fw, err := s.store.GetComplianceFramework(ctx, code)
	return lookup(fw, err, entityFramework, code)
}

func (s *Service) ListRequirements(ctx context.Context, frameworkCode string) ([]models.ComplianceRequirement, error) {
	fw, err := s.GetComplianceFramework(ctx, frameworkCode)
	if err != nil {
		return nil, err
	}
	return s.store.ListRequirements(ctx, fw.ID)
}

type RequirementInput struct {
	RequirementID       string     `json:"requirement_id" binding:"required"`
	Title               string     `json:"title" binding:"required"`
	Description         string     `json:"description"`
	Category            string     `json:"category"`
	SubCategory         string     `json:"sub_category"`
	Owner               string     `json:"owner"`
	Priority            int        `json:"priority"`
	RequiredEvidence    []string   `json:"required_evidence"`
	MappedControls      []string   `json:"mapped_controls"`
	TestProcedure       string     `json:"test_procedure"`
	RemediationPlan     string     `json:"remediation_plan"`
	RemediationDeadline *time.Time `json:"remediation_deadline"`
}

// CreateRequirement adds a requirement to a framework. New requirements
// start "In Progress" at 0%.
func (s *Service) CreateRequirement(ctx context.Context, frameworkCode string, in RequirementInput) (*models.ComplianceRequirement, error) {
	if strings.TrimSpace(in.RequirementID) == "" {
		return nil, invalid("requirement_id", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title", "is required")
	}

	var req *models.ComplianceRequirement
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetComplianceFramework(ctx, frameworkCode)
		fw, err := lookup(stored, err, entityFramework, frameworkCode)
		if err != nil {
			return err
		}
		req = &models.ComplianceRequirement{
			FrameworkID:          fw.ID,
			Code:                 in.RequirementID,
			Title:                in.Title,
			Description:          in.Description,
			Category:             in.Category,
			SubCategory:          in.SubCategory,
			Owner:                in.Owner,
			Priority:             in.Priority,
			RequiredEvidence:     in.RequiredEvidence,
			MappedControls:       in.MappedControls,
			TestProcedure:        in.TestProcedure,
			RemediationPlan:      in.RemediationPlan,
			RemediationDeadline:  in.RemediationDeadline,
			Status:               models.ComplianceInProgress,
			CompliancePercentage: 0,
		}
		if err := tx.CreateRequirement(ctx, req); err != nil {
			return fmt.Errorf("create requirement %s/%s: %w", frameworkCode, in.RequirementID, err)
		}
		return audit(ctx, tx, entityRequirement, frameworkCode+"/"+req.Code, ActionCreate, "created requirement %q", req.Title)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

type RequirementStatusUpdate struct {
	Status               string     `json:"status" binding:"required"`
	CompliancePercentage *float64   `json:"compliance_percentage"`
	ImplementationNotes  *string    `json:"implementation_notes"`
	RemediationPlan      *string    `json:"remediation_plan"`
	RemediationDeadline  *time.Time `json:"remediation_deadline"`
	Priority             *int       `json:"priority"`
	CollectedEvidence    []string   `json:"collected_evidence"`
}

// UpdateRequirementStatus sets a requirement's own status. The framework's
// cached figures change only on RecomputeFramework.
func (s *Service) UpdateRequirementStatus(ctx context.Context, frameworkCode, requirementCode string, u RequirementStatusUpdate) (*models.ComplianceRequirement, error) {
	status, err := models.ParseComplianceStatus(u.Status)
	if err != nil {
		return nil, err
	}
	if p := u.CompliancePercentage; p != nil && (*p < 0 || *p > 100) {
		return nil, invalid("compliance_percentage", "must be between 0 and 100, got %v", *p)
	}

	var req *models.ComplianceRequirement
	err = s.store.Transaction(ctx, func(tx *database.Store) error {
		stored, err := tx.GetComplianceFramework(ctx, frameworkCode)
		fw, err := lookup(stored, err, entityFramework, frameworkCode)
		if err != nil {
			return err
		}
		storedReq, err := tx.GetRequirement(ctx, fw.ID, requirementCode)
		if req, err = lookup(storedReq, err, entityRequirement, requirementCode); err != nil {
			return err
		}

		req.Status = status
		if u.CompliancePercentage != nil {
			req.CompliancePercentage = *u.CompliancePercentage
		}
		setString(&req.ImplementationNotes, u.ImplementationNotes)
		setString(&req.RemediationPlan, u.RemediationPlan)
		if u.RemediationDeadline != nil {
			req.RemediationDeadline = u.RemediationDeadline
		}
		if u.Priority != nil {
			req.Priority = *u.Priority
		}
		if u.CollectedEvidence != nil {
			req.CollectedEvidence = u.CollectedEvidence
		}
		if err := tx.SaveRequirement(ctx, req); err != nil {
			return fmt.Errorf("save requirement %s/%s: %w", frameworkCode, requirementCode, err)
		}
		return audit(ctx, tx, entityRequirement, frameworkCode+"/"+requirementCode, ActionUpdate, "status=%s", status)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ComplianceResult is the outcome of a framework recomputation.
type ComplianceResult struct {
	FrameworkID string `json:"framework_id"`
	scoring.FrameworkCompliance
}

// RecomputeFramework re-derives the framework's percentage, status and
// requirement counts from its current requirements and overwrites the
// cached values. Concurrent calls resolve last-write-wins.
func (s *Service) RecomputeFramework(ctx context.Context, code string) (ComplianceResult, error) {
	fw, err := s.GetComplianceFramework(ctx, code)
	if err != nil {
		return ComplianceResult{}, err
	}
	result, err := s.recomputeFramework(ctx, fw)
	if err != nil {
		return ComplianceResult{}, err
	}
	return ComplianceResult{FrameworkID: code, FrameworkCompliance: result}, nil
}

func (s *Service) recomputeFramework(ctx context.Context, fw *models.ComplianceFramework) (scoring.FrameworkCompliance, error) {
	reqs, err := s.store.ListRequirements(ctx, fw.ID)
	if err != nil {
		return scoring.FrameworkCompliance{}, fmt.Errorf("list requirements of %s: %w", fw.Code, err)
	}
	result := scoring.ComputeFramework(reqs)
	result.Apply(fw)
	fw.UpdatedAt = s.now()

	err = s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.UpdateFrameworkCompliance(ctx, fw); err != nil {
			return fmt.Errorf("update framework %s: %w", fw.Code, err)
		}
		return audit(ctx, tx, entityFramework, fw.Code, ActionRecompute, "%.2f%% %s (%d requirements)",
			result.Percentage, result.Status, result.Total)
	})
	if err != nil {
		return scoring.FrameworkCompliance{}, err
	}
	metrics.RecomputationsTotal.WithLabelValues(recomputeFramework).Inc()
	s.log.InfoContext(ctx, "framework recomputed", "framework_id", fw.Code,
		"percentage", result.Percentage, "status", result.Status)
	return result, nil
}

func (s *Service) ComplianceDashboard(ctx context.Context) ([]analytics.FrameworkDashboard, error) {
	active := true
	frameworks, err := s.store.ListComplianceFrameworks(ctx, &active, true)
	if err != nil {
		return nil, fmt.Errorf("list frameworks: %w", err)
	}
	return analytics.BuildComplianceDashboard(frameworks), nil
}

func (s *Service) GapAnalysis(ctx context.Context, code string) (analytics.GapAnalysis, error) {
	reqs, err := s.ListRequirements(ctx, code)
	if err != nil {
		return analytics.GapAnalysis{}, err
	}
	return analytics.BuildGapAnalysis(code, reqs), nil
}
