package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grc-center/internal/models"
)

func requirements(statuses ...models.ComplianceStatus) []models.ComplianceRequirement {
	out := make([]models.ComplianceRequirement, len(statuses))
	for i, s := range statuses {
		out[i] = models.ComplianceRequirement{Status: s}
	}
	return out
}

func repeat(s models.ComplianceStatus, n int) []models.ComplianceStatus {
	out := make([]models.ComplianceStatus, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestComputeFrameworkWeighted(t *testing.T) {
	var statuses []models.ComplianceStatus
	statuses = append(statuses, repeat(models.Compliant, 6)...)
	statuses = append(statuses, repeat(models.PartiallyCompliant, 2)...)
	statuses = append(statuses, repeat(models.NonCompliant, 2)...)

	got := ComputeFramework(requirements(statuses...))

	assert.Equal(t, 70.0, got.Percentage)
	assert.Equal(t, models.PartiallyCompliant, got.Status)
	assert.Equal(t, ComplianceTally{Total: 10, Compliant: 6, PartiallyCompliant: 2, NonCompliant: 2}, got.ComplianceTally)
}

func TestComputeFrameworkCountsEveryRequirementInDenominator(t *testing.T) {
	got := ComputeFramework(requirements(models.Compliant, models.NotApplicable, models.ComplianceInProgress, models.Compliant))
	assert.Equal(t, 50.0, got.Percentage)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, models.NonCompliant, got.Status)
}

func TestComputeFrameworkEmpty(t *testing.T) {
	got := ComputeFramework(nil)
	assert.Equal(t, 0.0, got.Percentage)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, models.NonCompliant, got.Status)
}

func TestComputeFrameworkIdempotent(t *testing.T) {
	reqs := requirements(models.Compliant, models.PartiallyCompliant, models.NonCompliant)
	f := models.ComplianceFramework{}

	first := ComputeFramework(reqs)
	first.Apply(&f)
	snapshot := f
	ComputeFramework(reqs).Apply(&f)

	assert.Equal(t, snapshot, f)
	assert.Equal(t, first, ComputeFramework(reqs))
}

func TestFrameworkStatusBoundaries(t *testing.T) {
	assert.Equal(t, models.Compliant, FrameworkStatus(100))
	assert.Equal(t, models.Compliant, FrameworkStatus(95))
	assert.Equal(t, models.PartiallyCompliant, FrameworkStatus(94.9))
	assert.Equal(t, models.PartiallyCompliant, FrameworkStatus(70))
	assert.Equal(t, models.NonCompliant, FrameworkStatus(69.9))
}
