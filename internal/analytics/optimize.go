package analytics

import (
	"fmt"
	"sort"
	"time"

	"portfolioapi/internal/model"
)

// Reallocation suggests moving one task between users.
type Reallocation struct {
	TaskID     string  `json:"task_id"`
	TaskTitle  string  `json:"task_title"`
	FromUserID string  `json:"from_user_id"`
	ToUserID   string  `json:"to_user_id"`
	Hours      float64 `json:"hours"`
	Reason     string  `json:"reason"`
}

// AllocationPlan is the optimizer output with utilization before and after.
type AllocationPlan struct {
	Suggestions []Reallocation     `json:"suggestions"`
	Before      map[string]float64 `json:"utilization_before"`
	After       map[string]float64 `json:"utilization_after"`
}

// OptimizeAllocation moves remaining work from overallocated users to
// underutilized users who hold every required skill of the task. Tasks that
// are already in progress stay put, and a move never overallocates the receiver.
func OptimizeAllocation(users []model.User, tasks []model.Task, now time.Time) AllocationPlan {
	plan := AllocationPlan{Suggestions: []Reallocation{}, Before: map[string]float64{}, After: map[string]float64{}}

	load := make(map[string]float64)
	capacity := make(map[string]float64)
	byID := make(map[string]model.User)
	for _, w := range ComputeWorkload(users, tasks, now) {
		load[w.UserID] = w.RemainingHours
		capacity[w.UserID] = w.CapacityHours
		plan.Before[w.UserID] = w.Utilization
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	utilOf := func(id string) float64 { return load[id] / capacity[id] * 100 }

	donors := make([]string, 0)
	for id := range load {
		if utilOf(id) > 100 {
			donors = append(donors, id)
		}
	}
	sort.Slice(donors, func(i, j int) bool {
		ui, uj := utilOf(donors[i]), utilOf(donors[j])
		if ui != uj {
			return ui > uj
		}
		return donors[i] < donors[j]
	})

	open := openByAssignee(tasks)
	for _, from := range donors {
		candidates := movable(open[from])
		for _, t := range candidates {
			if utilOf(from) <= 100 {
				break
			}
			h := t.RemainingHours()
			to := bestReceiver(t, h, from, load, capacity, byID)
			if to == "" {
				continue
			}
			load[from] -= h
			load[to] += h
			plan.Suggestions = append(plan.Suggestions, Reallocation{
				TaskID: t.ID, TaskTitle: t.Title, FromUserID: from, ToUserID: to, Hours: round2(h),
				Reason: fmt.Sprintf("%s is overallocated; %s has capacity and the required skills", byID[from].FullName(), byID[to].FullName()),
			})
		}
	}

	for id := range load {
		plan.After[id] = round2(utilOf(id))
	}
	return plan
}

// movable returns not-started tasks with remaining work, lowest priority first.
func movable(ts []model.Task) []model.Task {
	out := make([]model.Task, 0, len(ts))
	for _, t := range ts {
		if t.Status == model.TaskStatusTodo && t.RemainingHours() > 0 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return priorityRank(out[i].Priority) < priorityRank(out[j].Priority)
	})
	return out
}

func bestReceiver(t model.Task, hours float64, from string, load, capacity map[string]float64, users map[string]model.User) string {
	best, bestUtil := "", 0.0
	for id := range load {
		if id == from {
			continue
		}
		util := load[id] / capacity[id] * 100
		if util >= 70 || (load[id]+hours)/capacity[id]*100 > 100 {
			continue
		}
		if !hasSkills(users[id], t.RequiredSkills) {
			continue
		}
		if best == "" || util < bestUtil || (util == bestUtil && id < best) {
			best, bestUtil = id, util
		}
	}
	return best
}

func hasSkills(u model.User, skills []string) bool {
	for _, s := range skills {
		if u.SkillLevel(s) == 0 {
			return false
		}
	}
	return true
}
