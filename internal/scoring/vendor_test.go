package scoring

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"grc-center/internal/models"
)

func spend(v float64) *float64 { return &v }

func TestVendorRiskScore(t *testing.T) {
	cases := []struct {
		name    string
		vendor  VendorInput
		overall *float64
		want    float64
	}{
		{"nothing known", VendorInput{}, nil, 0},
		{"data access only", VendorInput{DataAccess: true}, nil, 30},
		{"small spend", VendorInput{AnnualSpend: spend(50_000)}, nil, 10},
		{"zero spend is still a known spend", VendorInput{AnnualSpend: spend(0)}, nil, 10},
		{"mid spend", VendorInput{AnnualSpend: spend(100_001)}, nil, 20},
		{"mid spend boundary is exclusive", VendorInput{AnnualSpend: spend(100_000)}, nil, 10},
		{"large spend", VendorInput{AnnualSpend: spend(2_000_000)}, nil, 30},
		{"assessment shortfall", VendorInput{}, spend(50), 20},
		{"zero overall counts as a full shortfall", VendorInput{}, spend(0), 40},
		{"all factors", VendorInput{DataAccess: true, AnnualSpend: spend(5_000_000)}, spend(0), 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, VendorRiskScore(tc.vendor, tc.overall), 1e-9)
		})
	}
}

func TestVendorRiskScoreClampProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("score stays within 0..100", prop.ForAll(
		func(access bool, annual, overall float64) bool {
			score := VendorRiskScore(VendorInput{DataAccess: access, AnnualSpend: &annual}, &overall)
			return score >= 0 && score <= 100
		},
		gen.Bool(),
		gen.Float64Range(0, 1e10),
		gen.Float64Range(-1000, 100),
	))

	properties.TestingRun(t)
}

func TestVendorRiskLevelBoundaries(t *testing.T) {
	assert.Equal(t, models.VendorCritical, VendorRiskLevel(75))
	assert.Equal(t, models.VendorHigh, VendorRiskLevel(74.999))
	assert.Equal(t, models.VendorHigh, VendorRiskLevel(50))
	assert.Equal(t, models.VendorMedium, VendorRiskLevel(49.999))
	assert.Equal(t, models.VendorMedium, VendorRiskLevel(25))
	assert.Equal(t, models.VendorLow, VendorRiskLevel(24.999))
}

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 100.0, OverallScore(AssessmentScores{100, 100, 100, 100}))
	assert.Equal(t, 0.0, OverallScore(AssessmentScores{}))
	assert.Equal(t, assessmentWeightScale, SecurityWeight+PrivacyWeight+OperationalWeight+FinancialWeight)
	assert.InDelta(t, 84.0, OverallScore(AssessmentScores{Security: 90, Privacy: 80, Operational: 80, Financial: 80}), 1e-9)
}

func TestCompleteAssessment(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	vendor := VendorInput{DataAccess: true, AnnualSpend: spend(250_000)}

	out := CompleteAssessment(vendor, 0, AssessmentScores{Security: 50, Privacy: 50, Operational: 50, Financial: 50}, now)

	assert.InDelta(t, 50.0, out.Overall, 1e-9)
	// 30 (data access) + 20 (spend) + (100-50)*0.4
	assert.InDelta(t, 70.0, out.VendorRiskScore, 1e-9)
	assert.Equal(t, models.VendorHigh, out.VendorRiskLevel)
	assert.Equal(t, now.AddDate(0, 0, 365), out.NextAssessment)

	v := models.Vendor{}
	a := models.VendorAssessment{Status: models.AssessmentInProgress}
	out.Apply(&v, &a)

	assert.Equal(t, models.AssessmentCompleted, a.Status)
	assert.Equal(t, now, *a.CompletionDate)
	assert.InDelta(t, 50.0, *a.OverallScore, 1e-9)
	assert.Equal(t, models.VendorHigh, v.RiskLevel)
	assert.Equal(t, now, *v.LastAssessmentDate)

	custom := CompleteAssessment(vendor, 90, AssessmentScores{}, now)
	assert.Equal(t, now.AddDate(0, 0, 90), custom.NextAssessment)
}
