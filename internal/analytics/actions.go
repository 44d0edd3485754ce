package analytics

import (
	"fmt"
	"sort"
	"time"

	"grc-center/internal/models"
)

type ActionPriority string

const (
	PriorityCritical ActionPriority = "Critical"
	PriorityHigh     ActionPriority = "High"
	PriorityMedium   ActionPriority = "Medium"
)

func (p ActionPriority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

const (
	actionsPerSource = 10
	maxActionItems   = 50
)

// noDueDate sorts items without a due date after every dated item.
var noDueDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

type ActionItem struct {
	Type     string         `json:"type"`
	Priority ActionPriority `json:"priority"`
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Owner    string         `json:"owner"`
	DueDate  *time.Time     `json:"due_date"`
}

func (a ActionItem) sortDate() time.Time {
	if a.DueDate == nil {
		return noDueDate
	}
	return *a.DueDate
}

type ActionItemList struct {
	Total int          `json:"total_action_items"`
	Items []ActionItem `json:"action_items"`
}

// BuildActionItems collects up to ten items per source. Priority comes from
// the source type: risks are Critical, controls High, vendors and evidence
// Medium. Items are ordered by priority, then due date, and cut to fifty.
// Total is the count before the cut.
func BuildActionItems(s Snapshot, now time.Time) ActionItemList {
	items := make([]ActionItem, 0, 4*actionsPerSource)

	n := 0
	for _, r := range s.Risks {
		if n == actionsPerSource {
			break
		}
		if (r.Status == models.RiskOpen || r.Status == models.RiskInProgress) && isCritical(r) {
			items = append(items, ActionItem{
				Type:     "Risk",
				Priority: PriorityCritical,
				ID:       r.Code,
				Title:    fmt.Sprintf("Address critical risk: %s", r.Title),
				Owner:    r.Owner,
				DueDate:  r.MitigationDeadline,
			})
			n++
		}
	}

	n = 0
	for _, c := range s.Controls {
		if n == actionsPerSource {
			break
		}
		if dueBy(c.NextTestDate, now) {
			items = append(items, ActionItem{
				Type:     "Control",
				Priority: PriorityHigh,
				ID:       c.Code,
				Title:    fmt.Sprintf("Test control: %s", c.Title),
				Owner:    c.Owner,
				DueDate:  c.NextTestDate,
			})
			n++
		}
	}

	n = 0
	deadline := now.AddDate(0, 0, UpcomingWindowDays)
	for _, v := range s.Vendors {
		if n == actionsPerSource {
			break
		}
		if v.Status == models.VendorActive && dueBy(v.NextAssessmentDate, deadline) {
			items = append(items, ActionItem{
				Type:     "Vendor",
				Priority: PriorityMedium,
				ID:       v.Code,
				Title:    fmt.Sprintf("Complete vendor assessment: %s", v.Name),
				Owner:    v.PrimaryContactName,
				DueDate:  v.NextAssessmentDate,
			})
			n++
		}
	}

	n = 0
	for _, e := range s.Evidence {
		if n == actionsPerSource {
			break
		}
		if expiresWithin(e.ValidUntil, now, UpcomingWindowDays) {
			items = append(items, ActionItem{
				Type:     "Evidence",
				Priority: PriorityMedium,
				ID:       e.Code,
				Title:    fmt.Sprintf("Renew evidence: %s", e.Title),
				Owner:    e.CollectedBy,
				DueDate:  e.ValidUntil,
			})
			n++
		}
	}

	SortActionItems(items)

	out := ActionItemList{Total: len(items), Items: items}
	if len(out.Items) > maxActionItems {
		out.Items = out.Items[:maxActionItems]
	}
	return out
}

// SortActionItems orders by priority class first; the date only breaks ties.
func SortActionItems(items []ActionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Priority.rank(), items[j].Priority.rank()
		if ri != rj {
			return ri < rj
		}
		return items[i].sortDate().Before(items[j].sortDate())
	})
}
