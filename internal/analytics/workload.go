package analytics

import (
	"math"
	"sort"
	"time"

	"portfolioapi/internal/model"
)

// Workload statuses.
const (
	StatusOverallocated = "overallocated"
	StatusOptimal       = "optimal"
	StatusUnderutilized = "underutilized"
)

// Workload is the current load of one user.
type Workload struct {
	UserID            string  `json:"user_id"`
	Name              string  `json:"name"`
	Department        string  `json:"department,omitempty"`
	ActiveTasks       int     `json:"active_tasks"`
	RemainingHours    float64 `json:"remaining_hours"`
	CapacityHours     float64 `json:"capacity_hours"`
	Utilization       float64 `json:"utilization"`
	OverdueTasks      int     `json:"overdue_tasks"`
	HighPriorityTasks int     `json:"high_priority_tasks"`
	Score             float64 `json:"workload_score"`
	Status            string  `json:"status"`
}

// WorkloadSummary aggregates a workload report.
type WorkloadSummary struct {
	TotalUsers         int     `json:"total_users"`
	Overallocated      int     `json:"overallocated"`
	Optimal            int     `json:"optimal"`
	Underutilized      int     `json:"underutilized"`
	AverageUtilization float64 `json:"average_utilization"`
}

// WorkloadStatus classifies a utilization percentage.
func WorkloadStatus(utilization float64) string {
	switch {
	case utilization > 100:
		return StatusOverallocated
	case utilization >= 70:
		return StatusOptimal
	default:
		return StatusUnderutilized
	}
}

// WorkloadScore weighs utilization (capped at 150%), overdue and high priority work.
func WorkloadScore(utilization float64, overdue, highPriority int) float64 {
	return 0.5*math.Min(utilization, 150) + 10*float64(overdue) + 5*float64(highPriority)
}

// ComputeWorkload returns the load of every active user, highest score first.
func ComputeWorkload(users []model.User, tasks []model.Task, now time.Time) []Workload {
	byUser := openByAssignee(tasks)

	out := make([]Workload, 0, len(users))
	for _, u := range users {
		if u.Status != model.UserStatusActive {
			continue
		}
		w := Workload{
			UserID:        u.ID,
			Name:          u.FullName(),
			Department:    u.Department,
			CapacityHours: capacityOf(u),
		}
		for _, t := range byUser[u.ID] {
			w.ActiveTasks++
			w.RemainingHours += t.RemainingHours()
			if t.IsOverdue(now) {
				w.OverdueTasks++
			}
			if t.IsUrgent() {
				w.HighPriorityTasks++
			}
		}
		util := w.RemainingHours / w.CapacityHours * 100
		w.Utilization = round2(util)
		w.RemainingHours = round2(w.RemainingHours)
		w.Score = round2(WorkloadScore(util, w.OverdueTasks, w.HighPriorityTasks))
		w.Status = WorkloadStatus(util)
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Summarize counts users per workload status.
func Summarize(ws []Workload) WorkloadSummary {
	s := WorkloadSummary{TotalUsers: len(ws)}
	var total float64
	for _, w := range ws {
		total += w.Utilization
		switch w.Status {
		case StatusOverallocated:
			s.Overallocated++
		case StatusOptimal:
			s.Optimal++
		default:
			s.Underutilized++
		}
	}
	if len(ws) > 0 {
		s.AverageUtilization = round2(total / float64(len(ws)))
	}
	return s
}
