package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grc-center/internal/logging"
	"grc-center/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Options{DSN: "sqlite::memory:", Logger: logging.Discard(), Quiet: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return NewStore(db)
}

func TestCreateRiskAssignsSequentialCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r := &models.Risk{Title: "r", Category: models.CategoryOperational, Status: models.RiskOpen}
		require.NoError(t, s.CreateRisk(ctx, r))
	}
	risks, err := s.ListRisks(ctx, RiskFilter{})
	require.NoError(t, err)
	require.Len(t, risks, 3)
	assert.Equal(t, "RISK-00001", risks[0].Code)
	assert.Equal(t, "RISK-00003", risks[2].Code)

	// deleting a risk never causes a code to be handed out twice
	require.NoError(t, s.DeleteRisk(ctx, "RISK-00002"))
	r := &models.Risk{Title: "r", Category: models.CategoryOperational, Status: models.RiskOpen}
	require.NoError(t, s.CreateRisk(ctx, r))
	assert.Equal(t, "RISK-00004", r.Code)
}

func TestSequencesAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code, err := s.NextCode(ctx, FindingCodes)
	require.NoError(t, err)
	assert.Equal(t, "AWS-00001", code)

	code, err = s.NextCode(ctx, EvidenceCodes)
	require.NoError(t, err)
	assert.Equal(t, "EVD-000001", code)

	code, err = s.NextCode(ctx, ControlCodes)
	require.NoError(t, err)
	assert.Equal(t, "GEN-0001", code)

	code, err = s.NextCode(ctx, FindingCodes)
	require.NoError(t, err)
	assert.Equal(t, "AWS-00002", code)
}

func TestSequenceConcurrentCallers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 20
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := &models.Vendor{Name: "v", Status: models.VendorActive}
			if err := s.CreateVendor(ctx, v); err == nil {
				codes <- v.Code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, n)
}

func TestNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRisk(ctx, "RISK-99999")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteRisk(ctx, "RISK-99999"), ErrNotFound)
	_, err = s.GetVendor(ctx, "VND-00001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetComplianceFramework(ctx, "SOC2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRisksFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	score := func(v float64) *float64 { return &v }
	fixtures := []models.Risk{
		{Title: "a", Category: models.CategoryTechnology, Status: models.RiskOpen, InherentRiskScore: score(20)},
		{Title: "b", Category: models.CategoryTechnology, Status: models.RiskClosed, InherentRiskScore: score(6)},
		{Title: "c", Category: models.CategoryFinancial, Status: models.RiskOpen, InherentRiskScore: score(12)},
	}
	for i := range fixtures {
		require.NoError(t, s.CreateRisk(ctx, &fixtures[i]))
	}

	got, err := s.ListRisks(ctx, RiskFilter{Category: models.CategoryTechnology})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListRisks(ctx, RiskFilter{Status: models.RiskOpen, MinScore: score(10), MaxScore: score(15)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Title)

	got, err = s.ListRisks(ctx, RiskFilter{Page: Page{Skip: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Title)
}

func TestRiskExternalIDIsUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ext := "arn:aws:securityhub:finding/1"
	first := &models.Risk{Title: "f", Category: models.CategoryTechnology, Status: models.RiskOpen, ExternalID: &ext}
	require.NoError(t, s.CreateRisk(ctx, first))

	dup := &models.Risk{Title: "f", Category: models.CategoryTechnology, Status: models.RiskOpen, ExternalID: &ext}
	assert.Error(t, s.CreateRisk(ctx, dup))

	// manual risks leave the column NULL and never collide
	require.NoError(t, s.CreateRisk(ctx, &models.Risk{Title: "m1", Category: models.CategoryTechnology, Status: models.RiskOpen}))
	require.NoError(t, s.CreateRisk(ctx, &models.Risk{Title: "m2", Category: models.CategoryTechnology, Status: models.RiskOpen}))

	got, err := s.RiskByExternalID(ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, first.Code, got.Code)
}

func TestEnsureFrameworksIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.EnsureComplianceFramework(ctx, &models.ComplianceFramework{Code: "SOC2", Name: "SOC 2 Type II", IsActive: true})
	require.NoError(t, err)
	assert.True(t, created)

	again := &models.ComplianceFramework{Code: "SOC2", Name: "renamed"}
	created, err = s.EnsureComplianceFramework(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "SOC 2 Type II", again.Name)

	created, err = s.EnsureControlFramework(ctx, &models.ControlFramework{Name: "SOC2"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = s.EnsureControlFramework(ctx, &models.ControlFramework{Name: "SOC2"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestFrameworkRequirementsAndCompliance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fw := &models.ComplianceFramework{Code: "GDPR", Name: "GDPR", IsActive: true, Priority: 3}
	_, err := s.EnsureComplianceFramework(ctx, fw)
	require.NoError(t, err)
	require.NoError(t, s.CreateRequirement(ctx, &models.ComplianceRequirement{FrameworkID: fw.ID, Code: "Art.5", Title: "Principles", Status: models.Compliant}))
	require.NoError(t, s.CreateRequirement(ctx, &models.ComplianceRequirement{FrameworkID: fw.ID, Code: "Art.6", Title: "Lawfulness", Status: models.NonCompliant}))
	assert.Error(t, s.CreateRequirement(ctx, &models.ComplianceRequirement{FrameworkID: fw.ID, Code: "Art.5", Title: "dup", Status: models.Compliant}))

	fw.OverallCompliancePercentage = 50
	fw.Status = models.NonCompliant
	fw.TotalRequirements = 2
	fw.Name = "not persisted"
	require.NoError(t, s.UpdateFrameworkCompliance(ctx, fw))

	active := true
	frameworks, err := s.ListComplianceFrameworks(ctx, &active, true)
	require.NoError(t, err)
	require.Len(t, frameworks, 1)
	assert.Equal(t, "GDPR", frameworks[0].Name)
	assert.Equal(t, 50.0, frameworks[0].OverallCompliancePercentage)
	assert.Equal(t, 3, frameworks[0].Priority)
	assert.Len(t, frameworks[0].Requirements, 2)

	inactive := false
	frameworks, err = s.ListComplianceFrameworks(ctx, &inactive, false)
	require.NoError(t, err)
	assert.Empty(t, frameworks)
}

func TestLatestCompletedAssessment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v := &models.Vendor{Name: "Acme", Status: models.VendorActive}
	require.NoError(t, s.CreateVendor(ctx, v))

	_, err := s.LatestCompletedAssessment(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	older, newer := time.Now().Add(-48*time.Hour), time.Now()
	s1, s2 := 60.0, 90.0
	require.NoError(t, s.CreateAssessment(ctx, &models.VendorAssessment{VendorID: v.ID, Status: models.AssessmentCompleted, CompletionDate: &newer, OverallScore: &s2}))
	require.NoError(t, s.CreateAssessment(ctx, &models.VendorAssessment{VendorID: v.ID, Status: models.AssessmentCompleted, CompletionDate: &older, OverallScore: &s1}))
	require.NoError(t, s.CreateAssessment(ctx, &models.VendorAssessment{VendorID: v.ID, Status: models.AssessmentInProgress}))

	latest, err := s.LatestCompletedAssessment(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 90.0, *latest.OverallScore)
	assert.Equal(t, "ASSESS-00001", latest.Code)
}

func TestAuditLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAudit(ctx, &models.AuditLog{Entity: "risk", EntityID: "RISK-00001", Action: "create"}))
	require.NoError(t, s.RecordAudit(ctx, &models.AuditLog{Actor: "alice", Entity: "vendor", EntityID: "VND-00001", Action: "update"}))

	entries, err := s.ListAudit(ctx, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "vendor", entries[0].Entity)
	assert.Equal(t, models.AnonymousActor, entries[1].Actor)

	entries, err = s.ListAudit(ctx, AuditFilter{Actor: "alice"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.CreateRisk(ctx, &models.Risk{Title: "x", Category: models.CategoryStrategic, Status: models.RiskOpen}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	risks, err := s.ListRisks(ctx, RiskFilter{})
	require.NoError(t, err)
	assert.Empty(t, risks)
}
