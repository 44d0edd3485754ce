package scoring

import "grc-center/internal/models"

// Risk level thresholds, inclusive lower bounds evaluated top-down.
const (
	CriticalRiskThreshold = 15
	HighRiskThreshold     = 10
	MediumRiskThreshold   = 5
)

// InherentScore returns likelihood × impact. ok is false when either operand
// is missing or out of range, in which case the score must stay unset.
func InherentScore(likelihood models.Likelihood, impact models.Impact) (score float64, ok bool) {
	if !likelihood.Valid() || !impact.Valid() {
		return 0, false
	}
	return float64(int(likelihood) * int(impact)), true
}

// RiskLevel classifies a 1-25 score.
func RiskLevel(score float64) models.RiskLevel {
	switch {
	case score >= CriticalRiskThreshold:
		return models.LevelCritical
	case score >= HighRiskThreshold:
		return models.LevelHigh
	case score >= MediumRiskThreshold:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

// RiskScores holds the derived score fields of a risk.
type RiskScores struct {
	Inherent *float64
	Residual *float64
}

// InitialRiskScores is used on creation: residual starts equal to inherent
// since no mitigation credit has been given yet.
func InitialRiskScores(likelihood models.Likelihood, impact models.Impact) RiskScores {
	score, ok := InherentScore(likelihood, impact)
	if !ok {
		return RiskScores{}
	}
	inherent, residual := score, score
	return RiskScores{Inherent: &inherent, Residual: &residual}
}

// Apply writes the scores onto r. A nil field leaves the stored value alone.
func (s RiskScores) Apply(r *models.Risk) {
	if s.Inherent != nil {
		v := *s.Inherent
		r.InherentRiskScore = &v
	}
	if s.Residual != nil {
		v := *s.Residual
		r.ResidualRiskScore = &v
	}
}

// RecomputeInherent re-derives only the inherent score, as done after an edit
// to likelihood or impact. Residual is never re-derived.
func RecomputeInherent(likelihood models.Likelihood, impact models.Impact) RiskScores {
	score, ok := InherentScore(likelihood, impact)
	if !ok {
		return RiskScores{}
	}
	return RiskScores{Inherent: &score}
}

// LevelOf returns the level of the risk's inherent score, or "" when unset.
func LevelOf(r models.Risk) models.RiskLevel {
	if r.InherentRiskScore == nil {
		return ""
	}
	return RiskLevel(*r.InherentRiskScore)
}
