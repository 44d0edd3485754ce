// Package integrations talks to AWS Security Hub, Jira and ServiceNow and
// normalizes what they return.
package integrations

import (
	"strings"

	"grc-center/internal/models"
)

// Finding is the normalized shape of an externally reported security finding.
type Finding struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Severity         string `json:"severity"`
	ResourceType     string `json:"resource_type,omitempty"`
	ComplianceStatus string `json:"compliance_status,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// DefaultSeverity is assumed for findings that carry no severity label.
const DefaultSeverity = "MEDIUM"

type riskFactors struct {
	likelihood models.Likelihood
	impact     models.Impact
}

var severityFactors = map[string]riskFactors{
	"CRITICAL": {models.LikelihoodAlmostCertain, models.ImpactCatastrophic},
	"HIGH":     {models.LikelihoodLikely, models.ImpactMajor},
	"MEDIUM":   {models.LikelihoodPossible, models.ImpactModerate},
	"LOW":      {models.LikelihoodUnlikely, models.ImpactMinor},
}

// SeverityToRiskFactors maps a severity label onto likelihood and impact.
// Unknown labels, INFORMATIONAL included, get the MEDIUM mapping.
func SeverityToRiskFactors(severity string) (models.Likelihood, models.Impact) {
	f, ok := severityFactors[strings.ToUpper(strings.TrimSpace(severity))]
	if !ok {
		f = severityFactors[DefaultSeverity]
	}
	return f.likelihood, f.impact
}
