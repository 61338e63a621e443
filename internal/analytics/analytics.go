// Package analytics holds the resource-management and prediction heuristics.
// Every function is pure: callers fetch documents and pass the current time.
package analytics

import (
	"math"
	"time"

	"portfolioapi/internal/model"
)

// DefaultCapacityHours is assumed for users without a weekly capacity.
const DefaultCapacityHours = 40

func capacityOf(u model.User) float64 {
	if u.CapacityHours > 0 {
		return u.CapacityHours
	}
	return DefaultCapacityHours
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// openByAssignee groups open tasks by assignee, skipping unassigned ones.
func openByAssignee(tasks []model.Task) map[string][]model.Task {
	out := make(map[string][]model.Task)
	for _, t := range tasks {
		if t.IsOpen() && t.AssigneeID != "" {
			out[t.AssigneeID] = append(out[t.AssigneeID], t)
		}
	}
	return out
}

func priorityRank(p string) float64 {
	switch p {
	case model.PriorityLow:
		return 1
	case model.PriorityHigh:
		return 3
	case model.PriorityCritical:
		return 4
	default:
		return 2
	}
}
