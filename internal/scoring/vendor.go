package scoring

import (
	"math"
	"time"

	"grc-center/internal/models"
)

const (
	dataAccessPoints = 30

	largeSpendThreshold = 1_000_000
	midSpendThreshold   = 100_000
	largeSpendPoints    = 30
	midSpendPoints      = 20
	smallSpendPoints    = 10

	// assessmentRiskWeight scales the assessment shortfall (100 - overall).
	assessmentRiskWeight = 0.4

	MaxVendorRiskScore = 100
)

// Vendor risk level thresholds.
const (
	VendorCriticalThreshold = 75
	VendorHighThreshold     = 50
	VendorMediumThreshold   = 25
)

// Assessment weights in tenths; they sum to assessmentWeightScale.
const (
	SecurityWeight        = 4
	PrivacyWeight         = 3
	OperationalWeight     = 2
	FinancialWeight       = 1
	assessmentWeightScale = 10
)

// VendorInput is the subset of vendor fields the risk score depends on.
type VendorInput struct {
	DataAccess  bool
	AnnualSpend *float64
}

func VendorInputOf(v models.Vendor) VendorInput {
	return VendorInput{DataAccess: v.DataAccess, AnnualSpend: v.AnnualSpend}
}

// VendorRiskScore combines data access, spend tier and the latest assessment
// result into a 0-100 score. assessmentOverall may be nil.
func VendorRiskScore(v VendorInput, assessmentOverall *float64) float64 {
	score := 0.0
	if v.DataAccess {
		score += dataAccessPoints
	}
	if v.AnnualSpend != nil {
		switch spend := *v.AnnualSpend; {
		case spend > largeSpendThreshold:
			score += largeSpendPoints
		case spend > midSpendThreshold:
			score += midSpendPoints
		default:
			score += smallSpendPoints
		}
	}
	if assessmentOverall != nil {
		score += (100 - *assessmentOverall) * assessmentRiskWeight
	}
	return math.Max(0, math.Min(score, MaxVendorRiskScore))
}

// VendorRiskLevel classifies a vendor risk score.
func VendorRiskLevel(score float64) models.VendorRiskLevel {
	switch {
	case score >= VendorCriticalThreshold:
		return models.VendorCritical
	case score >= VendorHighThreshold:
		return models.VendorHigh
	case score >= VendorMediumThreshold:
		return models.VendorMedium
	default:
		return models.VendorLow
	}
}

// AssessmentScores are the four component scores, each 0-100.
type AssessmentScores struct {
	Security    float64 `json:"security_score"`
	Privacy     float64 `json:"privacy_score"`
	Operational float64 `json:"operational_score"`
	Financial   float64 `json:"financial_score"`
}

// OverallScore is security*0.4 + privacy*0.3 + operational*0.2 + financial*0.1.
func OverallScore(s AssessmentScores) float64 {
	weighted := s.Security*SecurityWeight +
		s.Privacy*PrivacyWeight +
		s.Operational*OperationalWeight +
		s.Financial*FinancialWeight
	return weighted / assessmentWeightScale
}

// AssessmentOutcome is everything that changes when an assessment completes.
type AssessmentOutcome struct {
	Scores          AssessmentScores
	Overall         float64
	CompletedAt     time.Time
	VendorRiskScore float64
	VendorRiskLevel models.VendorRiskLevel
	LastAssessment  time.Time
	NextAssessment  time.Time
}

// CompleteAssessment derives the assessment result and the vendor's new risk
// score and assessment dates. frequencyDays <= 0 falls back to the default cadence.
func CompleteAssessment(vendor VendorInput, frequencyDays int, scores AssessmentScores, now time.Time) AssessmentOutcome {
	if frequencyDays <= 0 {
		frequencyDays = models.DefaultAssessmentFrequencyDays
	}
	overall := OverallScore(scores)
	riskScore := VendorRiskScore(vendor, &overall)
	return AssessmentOutcome{
		Scores:          scores,
		Overall:         overall,
		CompletedAt:     now,
		VendorRiskScore: riskScore,
		VendorRiskLevel: VendorRiskLevel(riskScore),
		LastAssessment:  now,
		NextAssessment:  now.AddDate(0, 0, frequencyDays),
	}
}

// Apply writes the outcome onto the assessment and its vendor.
func (o AssessmentOutcome) Apply(v *models.Vendor, a *models.VendorAssessment) {
	security, privacy := o.Scores.Security, o.Scores.Privacy
	operational, financial := o.Scores.Operational, o.Scores.Financial
	overall, riskScore := o.Overall, o.VendorRiskScore
	completed, last, next := o.CompletedAt, o.LastAssessment, o.NextAssessment

	a.Status = models.AssessmentCompleted
	a.CompletionDate = &completed
	a.SecurityScore = &security
	a.PrivacyScore = &privacy
	a.OperationalScore = &operational
	a.FinancialScore = &financial
	a.OverallScore = &overall

	v.RiskScore = &riskScore
	v.RiskLevel = o.VendorRiskLevel
	v.LastAssessmentDate = &last
	v.NextAssessmentDate = &next
}
