package analytics

import (
	"fmt"
	"sort"
	"time"

	"portfolioapi/internal/model"
)

// Conflict types.
const (
	ConflictOverallocation   = "overallocation"
	ConflictDeadlineOverload = "deadline_overload"
	ConflictOverdueUrgent    = "overdue_high_priority"
	ConflictUnassignedUrgent = "unassigned_urgent"
	ConflictInactiveAssignee = "inactive_assignee"
)

// Severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// DailyHoursLimit is the remaining work one person can finish on a due day.
const DailyHoursLimit = 8

// Conflict is one detected scheduling or allocation problem.
type Conflict struct {
	Type     string     `json:"type"`
	Severity string     `json:"severity"`
	UserID   string     `json:"user_id,omitempty"`
	TaskIDs  []string   `json:"task_ids"`
	Date     *time.Time `json:"date,omitempty"`
	Message  string     `json:"message"`
}

func severityRank(s string) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// DetectConflicts runs every conflict check and returns findings, most severe first.
func DetectConflicts(users []model.User, tasks []model.Task, now time.Time) []Conflict {
	out := []Conflict{}

	for _, w := range ComputeWorkload(users, tasks, now) {
		if w.Status != StatusOverallocated {
			continue
		}
		sev := SeverityMedium
		if w.Utilization > 150 {
			sev = SeverityHigh
		}
		out = append(out, Conflict{
			Type:     ConflictOverallocation,
			Severity: sev,
			UserID:   w.UserID,
			TaskIDs:  []string{},
			Message:  fmt.Sprintf("%s is at %.0f%% of weekly capacity", w.Name, w.Utilization),
		})
	}

	out = append(out, deadlineOverloads(tasks)...)

	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, t := range tasks {
		if !t.IsOpen() {
			continue
		}
		if t.IsUrgent() && t.IsOverdue(now) {
			sev := SeverityHigh
			if t.Priority == model.PriorityCritical {
				sev = SeverityCritical
			}
			out = append(out, Conflict{
				Type: ConflictOverdueUrgent, Severity: sev, UserID: t.AssigneeID, TaskIDs: []string{t.ID}, Date: t.DueDate,
				Message: fmt.Sprintf("%s priority task %q is overdue", t.Priority, t.Title),
			})
		}
		if t.IsUrgent() && t.AssigneeID == "" {
			out = append(out, Conflict{
				Type: ConflictUnassignedUrgent, Severity: SeverityMedium, TaskIDs: []string{t.ID}, Date: t.DueDate,
				Message: fmt.Sprintf("%s priority task %q has no assignee", t.Priority, t.Title),
			})
		}
		if t.AssigneeID != "" {
			u, ok := byID[t.AssigneeID]
			if !ok || u.Status == model.UserStatusInactive || u.Status == model.UserStatusSuspended {
				out = append(out, Conflict{
					Type: ConflictInactiveAssignee, Severity: SeverityHigh, UserID: t.AssigneeID, TaskIDs: []string{t.ID},
					Message: fmt.Sprintf("task %q is assigned to an unavailable user", t.Title),
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return severityRank(out[i].Severity) > severityRank(out[j].Severity)
	})
	return out
}

func deadlineOverloads(tasks []model.Task) []Conflict {
	type key struct {
		user string
		day  time.Time
	}
	hours := make(map[key]float64)
	ids := make(map[key][]string)
	var order []key
	for user, ts := range openByAssignee(tasks) {
		for _, t := range ts {
			if t.DueDate == nil {
				continue
			}
			k := key{user: user, day: startOfDay(t.DueDate.UTC())}
			if _, seen := hours[k]; !seen {
				order = append(order, k)
			}
			hours[k] += t.RemainingHours()
			ids[k] = append(ids[k], t.ID)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if !order[i].day.Equal(order[j].day) {
			return order[i].day.Before(order[j].day)
		}
		return order[i].user < order[j].user
	})

	var out []Conflict
	for _, k := range order {
		h := hours[k]
		if h <= DailyHoursLimit {
			continue
		}
		sev := SeverityMedium
		if h > 2*DailyHoursLimit {
			sev = SeverityHigh
		}
		day := k.day
		sort.Strings(ids[k])
		out = append(out, Conflict{
			Type: ConflictDeadlineOverload, Severity: sev, UserID: k.user, TaskIDs: ids[k], Date: &day,
			Message: fmt.Sprintf("%.1f hours of work due on %s", h, day.Format(time.DateOnly)),
		})
	}
	return out
}
