package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"grc-center/internal/database"
	"grc-center/internal/metrics"
	"grc-center/internal/models"
	"grc-center/internal/scoring"
	"grc-center/internal/transfer"
)

const importSourceExcel = "excel"

// ImportRisks reads a risk register workbook and creates one risk per data
// row. Rows that fail validation are reported and skipped; the others are kept.
func (s *Service) ImportRisks(ctx context.Context, src io.Reader) (ImportReport, error) {
	rows, err := transfer.ReadRiskWorkbook(src)
	if err != nil {
		return ImportReport{}, invalid("file", "failed to import file: %v", err)
	}

	report := ImportReport{Errors: []RowError{}}
	for _, row := range rows {
		risk, err := riskFromRow(row)
		if err == nil {
			err = s.store.CreateRisk(ctx, &risk)
		}
		if err != nil {
			report.Errors = append(report.Errors, RowError{Row: row.Row, Message: err.Error()})
			metrics.ImportRowsTotal.WithLabelValues(importSourceExcel, metrics.ResultError).Inc()
			continue
		}
		report.ImportedCount++
		metrics.ImportRowsTotal.WithLabelValues(importSourceExcel, metrics.ResultOK).Inc()
	}

	if err := audit(ctx, s.store, entityRisk, "", ActionImport, "imported %d of %d rows", report.ImportedCount, len(rows)); err != nil {
		return report, err
	}
	s.log.InfoContext(ctx, "risk import finished", "imported", report.ImportedCount, "rejected", len(report.Errors))
	return report, nil
}

// riskFromRow maps the register columns onto a risk. Empty category,
// likelihood and impact cells fall back to Operational, Possible and Moderate.
func riskFromRow(row transfer.ImportRow) (models.Risk, error) {
	title := row.Get("Title")
	if title == "" {
		return models.Risk{}, invalid("Title", "is required")
	}

	category := models.CategoryOperational
	if v := row.Get("Category"); v != "" {
		c, err := models.ParseRiskCategory(v)
		if err != nil {
			return models.Risk{}, err
		}
		category = c
	}
	likelihood := models.LikelihoodPossible
	if v := row.Get("Likelihood"); v != "" {
		l, err := models.ParseLikelihood(v)
		if err != nil {
			return models.Risk{}, err
		}
		likelihood = l
	}
	impact := models.ImpactModerate
	if v := row.Get("Impact"); v != "" {
		i, err := models.ParseImpact(v)
		if err != nil {
			return models.Risk{}, err
		}
		impact = i
	}

	risk := models.Risk{
		Title:               title,
		Description:         row.Get("Description"),
		Category:            category,
		Status:              models.RiskOpen,
		Likelihood:          likelihood,
		Impact:              impact,
		Owner:               row.Get("Owner"),
		ThreatSource:        row.Get("Threat Source"),
		Vulnerability:       row.Get("Vulnerability"),
		MitigationStrategy:  row.Get("Mitigation Strategy"),
		ReviewFrequencyDays: 90,
	}
	scoring.InitialRiskScores(likelihood, impact).Apply(&risk)
	return risk, nil
}

// ExportRisks renders every risk matching f, ignoring paging, as a workbook.
// It returns the workbook and its download file name.
func (s *Service) ExportRisks(ctx context.Context, f database.RiskFilter) (*bytes.Buffer, string, error) {
	f.Page = database.Page{}
	risks, err := s.store.ListRisks(ctx, f)
	if err != nil {
		return nil, "", fmt.Errorf("list risks: %w", err)
	}
	buf, err := transfer.ExportRisks(risks)
	if err != nil {
		return nil, "", err
	}
	return buf, transfer.ExportFilename(s.now()), nil
}
