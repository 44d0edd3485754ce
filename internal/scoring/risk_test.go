package scoring

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grc-center/internal/models"
)

func TestInherentScoreProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("inherent score is likelihood times impact", prop.ForAll(
		func(l, i int) bool {
			score, ok := InherentScore(models.Likelihood(l), models.Impact(i))
			return ok && score == float64(l*i)
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 5),
	))

	properties.Property("risk level follows the score bands", prop.ForAll(
		func(l, i int) bool {
			score := float64(l * i)
			level := RiskLevel(score)
			switch {
			case score >= 15:
				return level == models.LevelCritical
			case score >= 10:
				return level == models.LevelHigh
			case score >= 5:
				return level == models.LevelMedium
			default:
				return level == models.LevelLow
			}
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

func TestInherentScoreMissingOperand(t *testing.T) {
	_, ok := InherentScore(0, models.ImpactMajor)
	assert.False(t, ok)
	_, ok = InherentScore(models.LikelihoodLikely, 0)
	assert.False(t, ok)
	_, ok = InherentScore(models.LikelihoodLikely, 9)
	assert.False(t, ok)

	scores := InitialRiskScores(0, models.ImpactMajor)
	assert.Nil(t, scores.Inherent)
	assert.Nil(t, scores.Residual)
}

func TestRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.RiskLevel
	}{
		{25, models.LevelCritical},
		{15, models.LevelCritical},
		{14.99, models.LevelHigh},
		{10, models.LevelHigh},
		{9, models.LevelMedium},
		{5, models.LevelMedium},
		{4.99, models.LevelLow},
		{1, models.LevelLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RiskLevel(tc.score), "score %v", tc.score)
	}
}

func TestInitialRiskScoresResidualEqualsInherent(t *testing.T) {
	scores := InitialRiskScores(models.LikelihoodLikely, models.ImpactCatastrophic)
	require.NotNil(t, scores.Inherent)
	require.NotNil(t, scores.Residual)
	assert.Equal(t, 20.0, *scores.Inherent)
	assert.Equal(t, 20.0, *scores.Residual)

	var r models.Risk
	scores.Apply(&r)
	*scores.Residual = 1
	assert.Equal(t, 20.0, *r.ResidualRiskScore, "Apply must copy, not alias")
}

func TestRecomputeInherentKeepsResidual(t *testing.T) {
	residual := 6.0
	r := models.Risk{Likelihood: models.LikelihoodAlmostCertain, Impact: models.ImpactMajor, ResidualRiskScore: &residual}

	RecomputeInherent(r.Likelihood, r.Impact).Apply(&r)

	require.NotNil(t, r.InherentRiskScore)
	assert.Equal(t, 20.0, *r.InherentRiskScore)
	assert.Equal(t, 6.0, *r.ResidualRiskScore)
	assert.Equal(t, models.LevelCritical, LevelOf(r))
	assert.Equal(t, models.RiskLevel(""), LevelOf(models.Risk{}))
}
