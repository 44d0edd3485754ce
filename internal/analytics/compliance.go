package analytics

import (
	"fmt"
	"sort"
	"time"

	"grc-center/internal/models"
)

type Gap struct {
	RequirementID        string                  `json:"requirement_id"`
	Title                string                  `json:"title"`
	Category             string                  `json:"category"`
	Status               models.ComplianceStatus `json:"status"`
	CompliancePercentage float64                 `json:"compliance_percentage"`
	Priority             int                     `json:"priority"`
	Owner                string                  `json:"owner"`
	RemediationPlan      string                  `json:"remediation_plan"`
	RemediationDeadline  *time.Time              `json:"remediation_deadline"`
}

type GapAnalysis struct {
	Framework string `json:"framework"`
	TotalGaps int    `json:"total_gaps"`
	Gaps      []Gap  `json:"gaps"`
}

// BuildGapAnalysis lists Non-Compliant and Partially Compliant requirements,
// highest priority first. Ties keep their input order.
func BuildGapAnalysis(frameworkCode string, reqs []models.ComplianceRequirement) GapAnalysis {
	gaps := make([]Gap, 0)
	for _, r := range reqs {
		if r.Status != models.NonCompliant && r.Status != models.PartiallyCompliant {
			continue
		}
		gaps = append(gaps, Gap{
			RequirementID:        r.Code,
			Title:                r.Title,
			Category:             r.Category,
			Status:               r.Status,
			CompliancePercentage: r.CompliancePercentage,
			Priority:             r.Priority,
			Owner:                r.Owner,
			RemediationPlan:      r.RemediationPlan,
			RemediationDeadline:  r.RemediationDeadline,
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Priority > gaps[j].Priority
	})
	return GapAnalysis{Framework: frameworkCode, TotalGaps: len(gaps), Gaps: gaps}
}

const (
	criticalGapPriority = 8
	maxCriticalGaps     = 5
)

type FrameworkDashboard struct {
	FrameworkName        string                  `json:"framework_name"`
	CompliancePercentage float64                 `json:"compliance_percentage"`
	Status               models.ComplianceStatus `json:"status"`
	CompliantCount       int                     `json:"compliant_count"`
	TotalCount           int                     `json:"total_count"`
	CriticalGaps         []string                `json:"critical_gaps"`
}

// BuildComplianceDashboard summarizes each active framework from its cached
// figures. Critical gaps are Non-Compliant requirements with priority >= 8,
// at most five per framework. Requirements must be preloaded.
func BuildComplianceDashboard(frameworks []models.ComplianceFramework) []FrameworkDashboard {
	out := make([]FrameworkDashboard, 0, len(frameworks))
	for _, f := range activeFrameworks(frameworks) {
		gaps := make([]string, 0)
		for _, r := range f.Requirements {
			if len(gaps) == maxCriticalGaps {
				break
			}
			if r.Status == models.NonCompliant && r.Priority >= criticalGapPriority {
				gaps = append(gaps, fmt.Sprintf("%s: %s", r.Code, r.Title))
			}
		}
		out = append(out, FrameworkDashboard{
			FrameworkName:        f.Name,
			CompliancePercentage: f.OverallCompliancePercentage,
			Status:               f.DisplayStatus(),
			CompliantCount:       f.CompliantRequirements,
			TotalCount:           f.TotalRequirements,
			CriticalGaps:         gaps,
		})
	}
	return out
}
