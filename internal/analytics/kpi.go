package analytics

import (
	"time"

	"grc-center/internal/models"
)

// ImpactConstants are static business claims reported next to the KPIs.
// They are configuration, not derived from data.
type ImpactConstants struct {
	BaselineDays               int
	CurrentDays                int
	EstimatedAnnualAssessments int
}

func DefaultImpactConstants() ImpactConstants {
	return ImpactConstants{BaselineDays: 90, CurrentDays: 14, EstimatedAnnualAssessments: 500}
}

type KPIs struct {
	RiskMetrics struct {
		AverageInherentRisk     float64 `json:"average_inherent_risk"`
		AverageResidualRisk     float64 `json:"average_residual_risk"`
		RiskReductionPercentage float64 `json:"risk_reduction_percentage"`
	} `json:"risk_metrics"`
	ControlMetrics struct {
		ImplementationRate  float64 `json:"implementation_rate"`
		OrchestrationRate   float64 `json:"orchestration_rate"`
		TotalControls       int     `json:"total_controls"`
		ImplementedControls int     `json:"implemented_controls"`
	} `json:"control_metrics"`
	VendorMetrics struct {
		TotalActiveVendors int     `json:"total_active_vendors"`
		AssessmentRateYTD  float64 `json:"assessment_rate_ytd"`
		AssessedThisYear   int     `json:"assessed_this_year"`
	} `json:"vendor_metrics"`
	ComplianceMetrics struct {
		AverageCompliancePercentage float64 `json:"average_compliance_percentage"`
		ActiveFrameworks            int     `json:"active_frameworks"`
	} `json:"compliance_metrics"`
	EvidenceMetrics struct {
		TotalEvidence    int     `json:"total_evidence"`
		VerificationRate float64 `json:"verification_rate"`
	} `json:"evidence_metrics"`
	ImpactMetrics struct {
		AuditPrepTimeSavedDays     int     `json:"audit_prep_time_saved_days"`
		AuditPrepEfficiencyGain    float64 `json:"audit_prep_efficiency_gain"`
		EstimatedAnnualAssessments int     `json:"estimated_annual_assessments"`
	} `json:"impact_metrics"`
}

// AverageScores returns the mean inherent and residual scores; unset scores
// count as 0 and an empty register gives 0.
func AverageScores(risks []models.Risk) (inherent, residual float64) {
	for _, r := range risks {
		if r.InherentRiskScore != nil {
			inherent += *r.InherentRiskScore
		}
		if r.ResidualRiskScore != nil {
			residual += *r.ResidualRiskScore
		}
	}
	n := float64(max(len(risks), 1))
	return inherent / n, residual / n
}

func BuildKPIs(s Snapshot, now time.Time, impact ImpactConstants) KPIs {
	var k KPIs

	avgInherent, avgResidual := AverageScores(s.Risks)
	reduction := (avgInherent - avgResidual) / max(avgInherent, 1) * 100
	k.RiskMetrics.AverageInherentRisk = round2(avgInherent)
	k.RiskMetrics.AverageResidualRisk = round2(avgResidual)
	k.RiskMetrics.RiskReductionPercentage = round2(reduction)

	implemented, orchestrated := 0, 0
	for _, c := range s.Controls {
		if c.Status == models.ControlImplemented {
			implemented++
		}
		if c.SystemOrchestrationLevel != nil && *c.SystemOrchestrationLevel >= OrchestratedLevel {
			orchestrated++
		}
	}
	k.ControlMetrics.TotalControls = len(s.Controls)
	k.ControlMetrics.ImplementedControls = implemented
	k.ControlMetrics.ImplementationRate = round2(ratioFloor1(implemented, len(s.Controls)))
	k.ControlMetrics.OrchestrationRate = round2(ratioFloor1(orchestrated, len(s.Controls)))

	since := yearStart(now)
	assessed := 0
	for _, v := range s.Vendors {
		if v.LastAssessmentDate != nil && !v.LastAssessmentDate.Before(since) {
			assessed++
		}
	}
	active := activeVendorCount(s.Vendors)
	k.VendorMetrics.TotalActiveVendors = active
	k.VendorMetrics.AssessedThisYear = assessed
	k.VendorMetrics.AssessmentRateYTD = round2(ratioFloor1(assessed, active))

	frameworks := activeFrameworks(s.Frameworks)
	k.ComplianceMetrics.ActiveFrameworks = len(frameworks)
	k.ComplianceMetrics.AverageCompliancePercentage = round2(averageCompliance(frameworks))

	verified := 0
	for _, e := range s.Evidence {
		if e.Status == models.EvidenceVerified {
			verified++
		}
	}
	k.EvidenceMetrics.TotalEvidence = len(s.Evidence)
	k.EvidenceMetrics.VerificationRate = round2(ratioFloor1(verified, len(s.Evidence)))

	saved := impact.BaselineDays - impact.CurrentDays
	k.ImpactMetrics.AuditPrepTimeSavedDays = saved
	k.ImpactMetrics.AuditPrepEfficiencyGain = round2(ratioFloor1(saved, impact.BaselineDays))
	k.ImpactMetrics.EstimatedAnnualAssessments = impact.EstimatedAnnualAssessments
	return k
}
