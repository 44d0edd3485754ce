package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grc-center/internal/models"
)

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func days(n int) *time.Time {
	t := now.AddDate(0, 0, n)
	return &t
}

func score(v float64) *float64 { return &v }

func TestEmptySnapshot(t *testing.T) {
	var s Snapshot

	o := BuildOverview(s, now)
	assert.Zero(t, o.Summary.TotalRisks)
	assert.Zero(t, o.Summary.AverageCompliance)
	assert.Empty(t, o.ComplianceByFramework)

	k := BuildKPIs(s, now, DefaultImpactConstants())
	assert.Zero(t, k.RiskMetrics.RiskReductionPercentage)
	assert.Zero(t, k.ControlMetrics.ImplementationRate)
	assert.Zero(t, k.VendorMetrics.AssessmentRateYTD)
	assert.Zero(t, k.EvidenceMetrics.VerificationRate)

	items := BuildActionItems(s, now)
	assert.Zero(t, items.Total)
	assert.Empty(t, items.Items)

	assert.Empty(t, BuildHeatmap(nil))

	stats := BuildRiskStatistics(nil)
	assert.Zero(t, stats.AverageInherentScore)
	assert.Len(t, stats.ByStatus, len(models.RiskStatuses))

	d := BuildVendorDistribution(nil, nil, now)
	assert.Zero(t, d.RiskDistribution[models.VendorHigh].Percentage)
}

func TestActionItemsPriorityBeforeDate(t *testing.T) {
	s := Snapshot{
		Risks: []models.Risk{{
			Code: "RISK-00001", Title: "Ransomware", Status: models.RiskOpen,
			InherentRiskScore: score(20), MitigationDeadline: days(1), Owner: "ciso",
		}},
		Controls: []models.Control{{
			Code: "GEN-0001", Title: "Backup restore", NextTestDate: &now, Owner: "ops",
		}},
	}

	items := BuildActionItems(s, now)
	require.Len(t, items.Items, 2)
	assert.Equal(t, PriorityCritical, items.Items[0].Priority)
	assert.Equal(t, "Address critical risk: Ransomware", items.Items[0].Title)
	assert.Equal(t, PriorityHigh, items.Items[1].Priority)
	assert.Equal(t, "Test control: Backup restore", items.Items[1].Title)
}

func TestActionItemsSelection(t *testing.T) {
	s := Snapshot{
		Risks: []models.Risk{
			{Code: "RISK-00001", Status: models.RiskMitigated, InherentRiskScore: score(25)},
			{Code: "RISK-00002", Status: models.RiskInProgress, InherentRiskScore: score(14)},
			{Code: "RISK-00003", Status: models.RiskInProgress, InherentRiskScore: score(15)},
		},
		Vendors: []models.Vendor{
			{Code: "VND-00001", Name: "Acme", Status: models.VendorActive, NextAssessmentDate: days(30), PrimaryContactName: "Jo"},
			{Code: "VND-00002", Name: "Late", Status: models.VendorActive, NextAssessmentDate: days(31)},
			{Code: "VND-00003", Name: "Gone", Status: models.VendorInactive, NextAssessmentDate: days(1)},
		},
		Evidence: []models.Evidence{
			{Code: "EVD-000001", Title: "Old", ValidUntil: days(-1)},
			{Code: "EVD-000002", Title: "Soon", ValidUntil: days(10), CollectedBy: "auditor"},
		},
	}

	items := BuildActionItems(s, now)
	ids := make([]string, 0, len(items.Items))
	for _, it := range items.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"RISK-00003", "EVD-000002", "VND-00001"}, ids)
	assert.Equal(t, "Jo", items.Items[2].Owner)
}

func TestActionItemsCapped(t *testing.T) {
	var s Snapshot
	for i := 0; i < 15; i++ {
		s.Risks = append(s.Risks, models.Risk{Status: models.RiskOpen, InherentRiskScore: score(16)})
		s.Controls = append(s.Controls, models.Control{NextTestDate: days(-i)})
		s.Vendors = append(s.Vendors, models.Vendor{Status: models.VendorActive, NextAssessmentDate: days(i)})
		s.Evidence = append(s.Evidence, models.Evidence{ValidUntil: days(i)})
	}

	items := BuildActionItems(s, now)
	assert.Equal(t, 40, items.Total)
	assert.Len(t, items.Items, 40)

	// controls ascend by next test date
	for i := 11; i < 20; i++ {
		assert.False(t, items.Items[i].sortDate().Before(items.Items[i-1].sortDate()))
	}
	assert.Nil(t, items.Items[0].DueDate)
}

func TestOverviewExpiringEvidenceWindow(t *testing.T) {
	s := Snapshot{Evidence: []models.Evidence{
		{ValidUntil: days(-1)},
		{ValidUntil: &now},
		{ValidUntil: days(30)},
		{ValidUntil: days(31)},
		{Status: models.EvidenceVerified},
	}}

	o := BuildOverview(s, now)
	assert.Equal(t, 2, o.Alerts.ExpiringEvidence)
	assert.Equal(t, 1, o.Summary.VerifiedEvidence)
	assert.Equal(t, 5, o.Summary.TotalEvidence)
}

func TestOverviewCounts(t *testing.T) {
	s := Snapshot{
		Risks: []models.Risk{
			{Status: models.RiskOpen, InherentRiskScore: score(15)},
			{Status: models.RiskClosed, InherentRiskScore: score(20)},
			{Status: models.RiskOpen},
		},
		Vendors: []models.Vendor{
			{Status: models.VendorActive, RiskScore: score(75)},
			{Status: models.VendorActive, RiskScore: score(74.9), NextAssessmentDate: days(-100)},
			{Status: models.VendorInactive, RiskScore: score(90)},
		},
		Frameworks: []models.ComplianceFramework{
			{Name: "SOC 2", IsActive: true, OverallCompliancePercentage: 70},
			{Name: "ISO 27001", IsActive: true, OverallCompliancePercentage: 80.56},
			{Name: "Retired", OverallCompliancePercentage: 0},
		},
	}

	o := BuildOverview(s, now)
	assert.Equal(t, 2, o.Summary.OpenRisks)
	assert.Equal(t, 2, o.Summary.CriticalRisks)
	assert.Equal(t, 2, o.Summary.TotalVendors)
	assert.Equal(t, 1, o.Summary.HighRiskVendors)
	assert.Equal(t, 1, o.Alerts.AssessmentsDue30Days)
	assert.InDelta(t, 75.28, o.Summary.AverageCompliance, 1e-9)
	require.Len(t, o.ComplianceByFramework, 2)
	assert.Equal(t, models.ComplianceInProgress, o.ComplianceByFramework[0].Status)
}

func TestTrends(t *testing.T) {
	s := Snapshot{
		Risks: []models.Risk{
			{CreatedAt: *days(-5), UpdatedAt: *days(-1), Status: models.RiskClosed},
			{CreatedAt: *days(-40), UpdatedAt: *days(-2), Status: models.RiskClosed},
			{CreatedAt: *days(-3), Status: models.RiskOpen},
			{CreatedAt: *days(-31)},
		},
		Assessments: []models.VendorAssessment{
			{CompletionDate: days(-10)},
			{CompletionDate: days(-45)},
			{},
		},
	}

	tr := BuildTrends(s, 0, now)
	assert.Equal(t, DefaultTrendDays, tr.PeriodDays)
	assert.Equal(t, 2, tr.Risks.New)
	assert.Equal(t, 2, tr.Risks.Closed)
	assert.Equal(t, 0, tr.Risks.NetChange)
	assert.Equal(t, 1, tr.Vendors.AssessmentsCompleted)
}

func TestKPIs(t *testing.T) {
	s := Snapshot{
		Risks: []models.Risk{
			{InherentRiskScore: score(20), ResidualRiskScore: score(10)},
			{InherentRiskScore: score(10), ResidualRiskScore: score(5)},
		},
		Controls: []models.Control{
			{Status: models.ControlImplemented, SystemOrchestrationLevel: intPtr(80)},
			{Status: models.ControlNotImplemented, SystemOrchestrationLevel: intPtr(79)},
		},
		Vendors: []models.Vendor{
			{Status: models.VendorActive, LastAssessmentDate: days(-10)},
			{Status: models.VendorActive, LastAssessmentDate: days(-365)},
		},
	}

	k := BuildKPIs(s, now, DefaultImpactConstants())
	assert.Equal(t, 15.0, k.RiskMetrics.AverageInherentRisk)
	assert.Equal(t, 7.5, k.RiskMetrics.AverageResidualRisk)
	assert.Equal(t, 50.0, k.RiskMetrics.RiskReductionPercentage)
	assert.Equal(t, 50.0, k.ControlMetrics.ImplementationRate)
	assert.Equal(t, 50.0, k.ControlMetrics.OrchestrationRate)
	assert.Equal(t, 50.0, k.VendorMetrics.AssessmentRateYTD)
	assert.Equal(t, 76, k.ImpactMetrics.AuditPrepTimeSavedDays)
	assert.Equal(t, 84.44, k.ImpactMetrics.AuditPrepEfficiencyGain)
	assert.Equal(t, 500, k.ImpactMetrics.EstimatedAnnualAssessments)
}

func intPtr(v int) *int { return &v }

func TestHeatmap(t *testing.T) {
	risks := []models.Risk{
		{Code: "RISK-00001", Likelihood: 3, Impact: 5},
		{Code: "RISK-00002", Likelihood: 2, Impact: 2},
		{Code: "RISK-00003", Likelihood: 3, Impact: 5},
		{Code: "RISK-00004", Likelihood: 5, Impact: 5, Status: models.RiskClosed},
		{Code: "RISK-00005", Likelihood: 0, Impact: 4},
	}

	cells := BuildHeatmap(risks)
	require.Len(t, cells, 2)
	assert.Equal(t, 2, cells[0].Count)
	assert.Equal(t, models.LevelCritical, cells[0].RiskLevel)
	assert.Equal(t, []string{"RISK-00001", "RISK-00003"}, cells[0].Risks)
	assert.Equal(t, models.LevelLow, cells[1].RiskLevel)
}

func TestGapAnalysisOrder(t *testing.T) {
	reqs := []models.ComplianceRequirement{
		{Code: "CC1.1", Status: models.NonCompliant, Priority: 5},
		{Code: "CC1.2", Status: models.Compliant, Priority: 10},
		{Code: "CC1.3", Status: models.PartiallyCompliant, Priority: 9},
		{Code: "CC1.4", Status: models.NonCompliant, Priority: 5},
	}

	ga := BuildGapAnalysis("SOC2", reqs)
	assert.Equal(t, 3, ga.TotalGaps)
	codes := []string{ga.Gaps[0].RequirementID, ga.Gaps[1].RequirementID, ga.Gaps[2].RequirementID}
	assert.Equal(t, []string{"CC1.3", "CC1.1", "CC1.4"}, codes)
}

func TestComplianceDashboardCriticalGaps(t *testing.T) {
	var reqs []models.ComplianceRequirement
	for i := 0; i < 7; i++ {
		reqs = append(reqs, models.ComplianceRequirement{
			Code: "R" + string(rune('1'+i)), Title: "Req", Status: models.NonCompliant, Priority: 8,
		})
	}
	reqs = append(reqs, models.ComplianceRequirement{Code: "LOW", Status: models.NonCompliant, Priority: 7})
	frameworks := []models.ComplianceFramework{
		{Name: "SOC 2", IsActive: true, Status: models.NonCompliant, Requirements: reqs},
		{Name: "Off"},
	}

	dash := BuildComplianceDashboard(frameworks)
	require.Len(t, dash, 1)
	assert.Len(t, dash[0].CriticalGaps, 5)
	assert.Equal(t, "R1: Req", dash[0].CriticalGaps[0])
}

func TestControlCoverage(t *testing.T) {
	controls := []models.Control{
		{Status: models.ControlImplemented},
		{Status: models.ControlImplemented},
		{Status: models.ControlNotImplemented},
		{Status: models.ControlPartiallyImplemented},
	}
	frameworks := []models.ControlFramework{{ID: 1, Name: "SOC 2"}, {ID: 2, Name: "NIST CSF"}}
	mappings := []models.ControlMapping{
		{FrameworkID: 1, ComplianceStatus: models.ControlImplemented},
		{FrameworkID: 1, ComplianceStatus: models.ControlNotImplemented},
	}

	cov := BuildControlCoverage(controls, frameworks, mappings)
	assert.Equal(t, 50.0, cov.ByStatus[models.ControlImplemented].Percentage)
	assert.Equal(t, 0, cov.ByStatus[models.ControlNotApplicable].Count)
	assert.Equal(t, 50.0, cov.ByFramework[0].CoveragePercentage)
	assert.Zero(t, cov.ByFramework[1].CoveragePercentage)
}

func TestVendorDistribution(t *testing.T) {
	vendors := []models.Vendor{
		{Status: models.VendorActive, RiskLevel: models.VendorHigh, NextAssessmentDate: days(5)},
		{Status: models.VendorActive, RiskLevel: models.VendorLow},
		{Status: models.VendorActive, RiskLevel: models.VendorLow},
		{Status: models.VendorActive, RiskLevel: models.VendorLow},
		{Status: models.VendorSuspended, RiskLevel: models.VendorCritical, NextAssessmentDate: days(1)},
	}
	assessments := []models.VendorAssessment{
		{CompletionDate: days(-30)},
		{CompletionDate: days(-400)},
	}

	d := BuildVendorDistribution(vendors, assessments, now)
	assert.Equal(t, 4, d.TotalActiveVendors)
	assert.Equal(t, 75.0, d.RiskDistribution[models.VendorLow].Percentage)
	assert.Equal(t, 0, d.RiskDistribution[models.VendorCritical].Count)
	assert.Equal(t, 1, d.UpcomingAssessments30Days)
	assert.Equal(t, 1, d.AssessmentsCompletedThisYear)
}

func TestEvidenceSummary(t *testing.T) {
	evidence := []models.Evidence{
		{Status: models.EvidenceVerified, EvidenceType: models.EvidenceReport, Framework: "SOC 2", ValidUntil: days(3)},
		{Status: models.EvidencePending, EvidenceType: models.EvidenceReport},
	}

	sum := BuildEvidenceSummary(evidence, now)
	assert.Equal(t, 2, sum.ByType[models.EvidenceReport])
	assert.Equal(t, 1, sum.ByFramework["SOC 2"])
	assert.Equal(t, 1, sum.ExpiringWithin30Days)
	assert.Equal(t, 0, sum.ByStatus[models.EvidenceRejected])
}
