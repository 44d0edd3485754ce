// Package analytics reduces entity collections into dashboard views.
//
// Every function takes the current time explicitly and re-scans its input on
// each call. Empty inputs produce zero results; no division is unguarded.
package analytics

import (
	"math"
	"time"

	"grc-center/internal/models"
	"grc-center/internal/scoring"
)

// Snapshot is the set of collections an aggregation reads.
type Snapshot struct {
	Risks       []models.Risk
	Controls    []models.Control
	Vendors     []models.Vendor
	Assessments []models.VendorAssessment
	Evidence    []models.Evidence
	Frameworks  []models.ComplianceFramework
}

const (
	// UpcomingWindowDays bounds "expiring soon" and "due soon" lookups.
	UpcomingWindowDays = 30
	// DefaultTrendDays is used when a trend period is not given.
	DefaultTrendDays = 30
	// HighRiskVendorScore marks a vendor as high risk on the dashboard.
	HighRiskVendorScore = 75
	// OrchestratedLevel is the system orchestration percentage a control needs
	// to count as orchestrated.
	OrchestratedLevel = 80
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ratio returns n/d*100, 0 when d is 0.
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// ratioFloor1 returns n/max(d,1)*100.
func ratioFloor1(n, d int) float64 {
	return float64(n) / float64(max(d, 1)) * 100
}

func yearStart(now time.Time) time.Time {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}

// dueBy reports whether t is set and not after deadline.
func dueBy(t *time.Time, deadline time.Time) bool {
	return t != nil && !t.After(deadline)
}

// expiresWithin reports whether t lies in [now, now+days].
func expiresWithin(t *time.Time, now time.Time, days int) bool {
	return t != nil && !t.Before(now) && !t.After(now.AddDate(0, 0, days))
}

// inWindow reports whether t lies in [start, now].
func inWindow(t time.Time, start, now time.Time) bool {
	return !t.Before(start) && !t.After(now)
}

func isCritical(r models.Risk) bool {
	return r.InherentRiskScore != nil && *r.InherentRiskScore >= scoring.CriticalRiskThreshold
}

func activeFrameworks(frameworks []models.ComplianceFramework) []models.ComplianceFramework {
	out := make([]models.ComplianceFramework, 0, len(frameworks))
	for _, f := range frameworks {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out
}

func averageCompliance(frameworks []models.ComplianceFramework) float64 {
	if len(frameworks) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range frameworks {
		total += f.OverallCompliancePercentage
	}
	return total / float64(len(frameworks))
}

func activeVendorCount(vendors []models.Vendor) int {
	n := 0
	for _, v := range vendors {
		if v.Status == models.VendorActive {
			n++
		}
	}
	return n
}
