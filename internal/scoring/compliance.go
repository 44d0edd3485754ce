package scoring

import "grc-center/internal/models"

// Framework status thresholds on the compliance percentage.
const (
	CompliantThreshold          = 95
	PartiallyCompliantThreshold = 70
)

// ComplianceTally counts requirements by status. Total includes every
// requirement, Not Applicable and In Progress ones too.
type ComplianceTally struct {
	Total              int `json:"total_requirements"`
	Compliant          int `json:"compliant"`
	PartiallyCompliant int `json:"partially_compliant"`
	NonCompliant       int `json:"non_compliant"`
}

func TallyRequirements(reqs []models.ComplianceRequirement) ComplianceTally {
	t := ComplianceTally{Total: len(reqs)}
	for _, r := range reqs {
		switch r.Status {
		case models.Compliant:
			t.Compliant++
		case models.PartiallyCompliant:
			t.PartiallyCompliant++
		case models.NonCompliant:
			t.NonCompliant++
		case models.NotApplicable, models.ComplianceInProgress:
		}
	}
	return t
}

// Percentage is (compliant*100 + partial*50) / total, 0 for an empty framework.
func (t ComplianceTally) Percentage() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Compliant*100+t.PartiallyCompliant*50) / float64(t.Total)
}

// FrameworkStatus classifies a compliance percentage.
func FrameworkStatus(percentage float64) models.ComplianceStatus {
	switch {
	case percentage >= CompliantThreshold:
		return models.Compliant
	case percentage >= PartiallyCompliantThreshold:
		return models.PartiallyCompliant
	default:
		return models.NonCompliant
	}
}

// FrameworkCompliance is the derived state cached on a framework.
type FrameworkCompliance struct {
	ComplianceTally
	Percentage float64                 `json:"compliance_percentage"`
	Status     models.ComplianceStatus `json:"status"`
}

// ComputeFramework is idempotent: the same requirements always give the same result.
func ComputeFramework(reqs []models.ComplianceRequirement) FrameworkCompliance {
	tally := TallyRequirements(reqs)
	pct := tally.Percentage()
	return FrameworkCompliance{
		ComplianceTally: tally,
		Percentage:      pct,
		Status:          FrameworkStatus(pct),
	}
}

// Apply overwrites the framework's cached figures.
func (c FrameworkCompliance) Apply(f *models.ComplianceFramework) {
	f.TotalRequirements = c.Total
	f.CompliantRequirements = c.Compliant
	f.PartiallyCompliantRequirements = c.PartiallyCompliant
	f.NonCompliantRequirements = c.NonCompliant
	f.OverallCompliancePercentage = c.Percentage
	f.Status = c.Status
}
