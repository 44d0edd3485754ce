package analytics

import (
	"time"

	"grc-center/internal/models"
)

type RiskTrend struct {
	New       int `json:"new"`
	Closed    int `json:"closed"`
	NetChange int `json:"net_change"`
}

type Trends struct {
	PeriodDays int       `json:"period_days"`
	StartDate  time.Time `json:"start_date"`
	Risks      RiskTrend `json:"risks"`
	Controls   struct {
		New int `json:"new"`
	} `json:"controls"`
	Vendors struct {
		New                  int `json:"new"`
		AssessmentsCompleted int `json:"assessments_completed"`
	} `json:"vendors"`
	Evidence struct {
		New int `json:"new"`
	} `json:"evidence"`
}

// BuildTrends counts activity within [now-days, now]. A closed risk is one
// with status Closed updated inside the window, so a risk opened and closed
// in the same window counts as both new and closed.
func BuildTrends(s Snapshot, days int, now time.Time) Trends {
	if days <= 0 {
		days = DefaultTrendDays
	}
	start := now.AddDate(0, 0, -days)
	t := Trends{PeriodDays: days, StartDate: start}

	for _, r := range s.Risks {
		if inWindow(r.CreatedAt, start, now) {
			t.Risks.New++
		}
		if r.Status == models.RiskClosed && inWindow(r.UpdatedAt, start, now) {
			t.Risks.Closed++
		}
	}
	t.Risks.NetChange = t.Risks.New - t.Risks.Closed

	for _, c := range s.Controls {
		if inWindow(c.CreatedAt, start, now) {
			t.Controls.New++
		}
	}
	for _, v := range s.Vendors {
		if inWindow(v.CreatedAt, start, now) {
			t.Vendors.New++
		}
	}
	for _, a := range s.Assessments {
		if a.CompletionDate != nil && inWindow(*a.CompletionDate, start, now) {
			t.Vendors.AssessmentsCompleted++
		}
	}
	for _, e := range s.Evidence {
		if inWindow(e.CreatedAt, start, now) {
			t.Evidence.New++
		}
	}
	return t
}
