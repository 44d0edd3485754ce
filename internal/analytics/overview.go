package analytics

import (
	"time"

	"grc-center/internal/models"
)

type OverviewSummary struct {
	TotalRisks          int     `json:"total_risks"`
	OpenRisks           int     `json:"open_risks"`
	CriticalRisks       int     `json:"critical_risks"`
	TotalControls       int     `json:"total_controls"`
	ImplementedControls int     `json:"implemented_controls"`
	TotalVendors        int     `json:"total_vendors"`
	HighRiskVendors     int     `json:"high_risk_vendors"`
	TotalEvidence       int     `json:"total_evidence"`
	VerifiedEvidence    int     `json:"verified_evidence"`
	AverageCompliance   float64 `json:"average_compliance"`
}

type OverviewAlerts struct {
	CriticalRisks          int `json:"critical_risks"`
	ControlsNeedingTesting int `json:"controls_needing_testing"`
	AssessmentsDue30Days   int `json:"assessments_due_30_days"`
	ExpiringEvidence       int `json:"expiring_evidence"`
}

type FrameworkSummary struct {
	Framework  string                  `json:"framework"`
	Percentage float64                 `json:"percentage"`
	Status     models.ComplianceStatus `json:"status"`
}

type Overview struct {
	Summary               OverviewSummary    `json:"summary"`
	Alerts                OverviewAlerts     `json:"alerts"`
	ComplianceByFramework []FrameworkSummary `json:"compliance_by_framework"`
}

// BuildOverview counts across every area of the program.
//
// Total vendors counts active vendors only; assessments due counts any vendor
// whose next assessment is on or before now+30d, overdue ones included.
func BuildOverview(s Snapshot, now time.Time) Overview {
	var o Overview
	dueDeadline := now.AddDate(0, 0, UpcomingWindowDays)

	o.Summary.TotalRisks = len(s.Risks)
	for _, r := range s.Risks {
		if r.Status == models.RiskOpen {
			o.Summary.OpenRisks++
		}
		if isCritical(r) {
			o.Summary.CriticalRisks++
		}
	}

	o.Summary.TotalControls = len(s.Controls)
	for _, c := range s.Controls {
		if c.Status == models.ControlImplemented {
			o.Summary.ImplementedControls++
		}
		if dueBy(c.NextTestDate, now) {
			o.Alerts.ControlsNeedingTesting++
		}
	}

	for _, v := range s.Vendors {
		if v.Status == models.VendorActive {
			o.Summary.TotalVendors++
			if v.RiskScore != nil && *v.RiskScore >= HighRiskVendorScore {
				o.Summary.HighRiskVendors++
			}
		}
		if dueBy(v.NextAssessmentDate, dueDeadline) {
			o.Alerts.AssessmentsDue30Days++
		}
	}

	o.Summary.TotalEvidence = len(s.Evidence)
	for _, e := range s.Evidence {
		if e.Status == models.EvidenceVerified {
			o.Summary.VerifiedEvidence++
		}
		if expiresWithin(e.ValidUntil, now, UpcomingWindowDays) {
			o.Alerts.ExpiringEvidence++
		}
	}

	active := activeFrameworks(s.Frameworks)
	o.Summary.AverageCompliance = round2(averageCompliance(active))
	o.ComplianceByFramework = make([]FrameworkSummary, 0, len(active))
	for _, f := range active {
		o.ComplianceByFramework = append(o.ComplianceByFramework, FrameworkSummary{
			Framework:  f.Name,
			Percentage: f.OverallCompliancePercentage,
			Status:     f.DisplayStatus(),
		})
	}

	o.Alerts.CriticalRisks = o.Summary.CriticalRisks
	return o
}
