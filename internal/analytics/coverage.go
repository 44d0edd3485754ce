package analytics

import (
	"time"

	"grc-center/internal/models"
)

type Share struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type FrameworkCoverage struct {
	Framework          string  `json:"framework"`
	TotalControls      int     `json:"total_controls"`
	Implemented        int     `json:"implemented"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

type ControlCoverage struct {
	TotalControls int                            `json:"total_controls"`
	ByStatus      map[models.ControlStatus]Share `json:"by_status"`
	ByFramework   []FrameworkCoverage            `json:"by_framework"`
}

// BuildControlCoverage breaks controls down by status and, through their
// mappings, by framework.
func BuildControlCoverage(controls []models.Control, frameworks []models.ControlFramework, mappings []models.ControlMapping) ControlCoverage {
	cov := ControlCoverage{
		TotalControls: len(controls),
		ByStatus:      make(map[models.ControlStatus]Share, len(models.ControlStatuses)),
		ByFramework:   make([]FrameworkCoverage, 0, len(frameworks)),
	}

	counts := make(map[models.ControlStatus]int)
	for _, c := range controls {
		counts[c.Status]++
	}
	for _, s := range models.ControlStatuses {
		cov.ByStatus[s] = Share{Count: counts[s], Percentage: ratio(counts[s], len(controls))}
	}

	for _, f := range frameworks {
		total, implemented := 0, 0
		for _, m := range mappings {
			if m.FrameworkID != f.ID {
				continue
			}
			total++
			if m.ComplianceStatus == models.ControlImplemented {
				implemented++
			}
		}
		cov.ByFramework = append(cov.ByFramework, FrameworkCoverage{
			Framework:          f.Name,
			TotalControls:      total,
			Implemented:        implemented,
			CoveragePercentage: ratio(implemented, total),
		})
	}
	return cov
}

type VendorDistribution struct {
	TotalActiveVendors           int                              `json:"total_active_vendors"`
	RiskDistribution             map[models.VendorRiskLevel]Share `json:"risk_distribution"`
	UpcomingAssessments30Days    int                              `json:"upcoming_assessments_30_days"`
	AssessmentsCompletedThisYear int                              `json:"assessments_completed_this_year"`
}

// BuildVendorDistribution considers active vendors only; completed
// assessments are counted since January 1 of now's year.
func BuildVendorDistribution(vendors []models.Vendor, assessments []models.VendorAssessment, now time.Time) VendorDistribution {
	active := activeVendorCount(vendors)
	d := VendorDistribution{
		TotalActiveVendors: active,
		RiskDistribution:   make(map[models.VendorRiskLevel]Share, len(models.VendorRiskLevels)),
	}

	counts := make(map[models.VendorRiskLevel]int)
	deadline := now.AddDate(0, 0, UpcomingWindowDays)
	for _, v := range vendors {
		if v.Status != models.VendorActive {
			continue
		}
		counts[v.RiskLevel]++
		if dueBy(v.NextAssessmentDate, deadline) {
			d.UpcomingAssessments30Days++
		}
	}
	for _, l := range models.VendorRiskLevels {
		d.RiskDistribution[l] = Share{Count: counts[l], Percentage: ratio(counts[l], active)}
	}

	since := yearStart(now)
	for _, a := range assessments {
		if a.CompletionDate != nil && !a.CompletionDate.Before(since) {
			d.AssessmentsCompletedThisYear++
		}
	}
	return d
}

type EvidenceSummary struct {
	TotalEvidence        int                           `json:"total_evidence"`
	ByStatus             map[models.EvidenceStatus]int `json:"by_status"`
	ByType               map[models.EvidenceType]int   `json:"by_type"`
	ExpiringWithin30Days int                           `json:"expiring_within_30_days"`
	ByFramework          map[string]int                `json:"by_framework"`
}

func BuildEvidenceSummary(evidence []models.Evidence, now time.Time) EvidenceSummary {
	sum := EvidenceSummary{
		TotalEvidence: len(evidence),
		ByStatus:      make(map[models.EvidenceStatus]int, len(models.EvidenceStatuses)),
		ByType:        make(map[models.EvidenceType]int, len(models.EvidenceTypes)),
		ByFramework:   make(map[string]int),
	}
	for _, s := range models.EvidenceStatuses {
		sum.ByStatus[s] = 0
	}
	for _, t := range models.EvidenceTypes {
		sum.ByType[t] = 0
	}
	for _, e := range evidence {
		if e.Status.Valid() {
			sum.ByStatus[e.Status]++
		}
		if e.EvidenceType.Valid() {
			sum.ByType[e.EvidenceType]++
		}
		if e.Framework != "" {
			sum.ByFramework[e.Framework]++
		}
		if expiresWithin(e.ValidUntil, now, UpcomingWindowDays) {
			sum.ExpiringWithin30Days++
		}
	}
	return sum
}
