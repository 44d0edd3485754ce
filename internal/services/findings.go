package services

import (
	"context"
	"errors"
	"fmt"

	"grc-center/internal/database"
	"grc-center/internal/integrations"
	"grc-center/internal/metrics"
	"grc-center/internal/models"
	"grc-center/internal/scoring"
)

const (
	importSourceFindings = "securityhub"

	findingThreatSource = "AWS Security Hub"
	findingDefaultTitle = "AWS Security Finding"
)

// FindingSource lists externally reported security findings.
type FindingSource interface {
	Findings(ctx context.Context, severity string, limit int) ([]integrations.Finding, error)
}

type FindingsImport struct {
	FindingsProcessed int `json:"findings_processed"`
	RisksImported     int `json:"risks_imported"`
}

// ImportFindings turns each finding into a Technology risk whose likelihood
// and impact follow the finding's severity. A finding whose id was imported
// before is skipped, so repeated imports create no duplicates.
func (s *Service) ImportFindings(ctx context.Context, src FindingSource, severity string) (FindingsImport, error) {
	findings, err := src.Findings(ctx, severity, integrations.MaxFindings)
	if err != nil {
		return FindingsImport{}, err
	}

	result := FindingsImport{FindingsProcessed: len(findings)}
	for _, f := range findings {
		created, err := s.importFinding(ctx, f)
		if err != nil {
			metrics.ImportRowsTotal.WithLabelValues(importSourceFindings, metrics.ResultError).Inc()
			return result, fmt.Errorf("import finding %s: %w", f.ID, err)
		}
		if !created {
			metrics.ImportRowsTotal.WithLabelValues(importSourceFindings, metrics.ResultSkipped).Inc()
			continue
		}
		result.RisksImported++
		metrics.ImportRowsTotal.WithLabelValues(importSourceFindings, metrics.ResultOK).Inc()
	}

	s.log.InfoContext(ctx, "findings imported", "processed", result.FindingsProcessed, "imported", result.RisksImported)
	return result, nil
}

func (s *Service) importFinding(ctx context.Context, f integrations.Finding) (bool, error) {
	if f.ID == "" {
		return false, invalid("id", "finding has no id")
	}
	severity := f.Severity
	if severity == "" {
		severity = integrations.DefaultSeverity
	}

	created := false
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		_, err := tx.RiskByExternalID(ctx, f.ID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return err
		}

		code, err := tx.NextCode(ctx, database.FindingCodes)
		if err != nil {
			return err
		}
		risk := riskFromFinding(f, severity)
		risk.Code = code
		if err := tx.CreateRisk(ctx, &risk); err != nil {
			return err
		}
		created = true
		return audit(ctx, tx, entityRisk, risk.Code, ActionImport, "from finding %s (%s)", f.ID, severity)
	})
	return created, err
}

func riskFromFinding(f integrations.Finding, severity string) models.Risk {
	title := f.Title
	if title == "" {
		title = findingDefaultTitle
	}
	likelihood, impact := integrations.SeverityToRiskFactors(severity)
	risk := models.Risk{
		Title:               title,
		Description:         f.Description,
		Category:            models.CategoryTechnology,
		Status:              models.RiskOpen,
		Likelihood:          likelihood,
		Impact:              impact,
		ThreatSource:        findingThreatSource,
		ExternalID:          ptr(f.ID),
		ReviewFrequencyDays: 90,
		CustomFields: models.Fields{
			"aws_finding_id": f.ID,
			"aws_severity":   severity,
		},
	}
	scoring.InitialRiskScores(likelihood, impact).Apply(&risk)
	return risk
}
