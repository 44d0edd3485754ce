package analytics

import (
	"grc-center/internal/models"
	"grc-center/internal/scoring"
)

type HeatmapCell struct {
	Likelihood models.Likelihood `json:"likelihood"`
	Impact     models.Impact     `json:"impact"`
	Count      int               `json:"count"`
	RiskLevel  models.RiskLevel  `json:"risk_level"`
	Risks      []string          `json:"risks"`
}

// BuildHeatmap buckets non-closed risks by (likelihood, impact). Cells appear
// in the order their first risk was seen.
func BuildHeatmap(risks []models.Risk) []HeatmapCell {
	type key struct {
		l models.Likelihood
		i models.Impact
	}
	index := make(map[key]int)
	cells := make([]HeatmapCell, 0)

	for _, r := range risks {
		if r.Status == models.RiskClosed {
			continue
		}
		score, ok := scoring.InherentScore(r.Likelihood, r.Impact)
		if !ok {
			continue
		}
		k := key{r.Likelihood, r.Impact}
		pos, seen := index[k]
		if !seen {
			pos = len(cells)
			index[k] = pos
			cells = append(cells, HeatmapCell{
				Likelihood: r.Likelihood,
				Impact:     r.Impact,
				RiskLevel:  scoring.RiskLevel(score),
				Risks:      []string{},
			})
		}
		cells[pos].Count++
		cells[pos].Risks = append(cells[pos].Risks, r.Code)
	}
	return cells
}

type RiskStatistics struct {
	TotalRisks           int                         `json:"total_risks"`
	ByStatus             map[models.RiskStatus]int   `json:"by_status"`
	ByCategory           map[models.RiskCategory]int `json:"by_category"`
	ByRiskLevel          map[models.RiskLevel]int    `json:"by_risk_level"`
	AverageInherentScore float64                     `json:"average_inherent_score"`
	AverageResidualScore float64                     `json:"average_residual_score"`
}

// BuildRiskStatistics reports every status, category and level, zero counts included.
func BuildRiskStatistics(risks []models.Risk) RiskStatistics {
	st := RiskStatistics{
		TotalRisks:  len(risks),
		ByStatus:    make(map[models.RiskStatus]int, len(models.RiskStatuses)),
		ByCategory:  make(map[models.RiskCategory]int, len(models.RiskCategories)),
		ByRiskLevel: make(map[models.RiskLevel]int, len(models.RiskLevels)),
	}
	for _, s := range models.RiskStatuses {
		st.ByStatus[s] = 0
	}
	for _, c := range models.RiskCategories {
		st.ByCategory[c] = 0
	}
	for _, l := range models.RiskLevels {
		st.ByRiskLevel[l] = 0
	}

	for _, r := range risks {
		if r.Status.Valid() {
			st.ByStatus[r.Status]++
		}
		if r.Category.Valid() {
			st.ByCategory[r.Category]++
		}
		if r.InherentRiskScore != nil && *r.InherentRiskScore > 0 {
			st.ByRiskLevel[scoring.RiskLevel(*r.InherentRiskScore)]++
		}
	}
	st.AverageInherentScore, st.AverageResidualScore = AverageScores(risks)
	return st
}
