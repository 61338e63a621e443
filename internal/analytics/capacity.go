package analytics

import (
	"math"
	"time"

	"portfolioapi/internal/model"
)

// Forecast horizon bounds in weeks.
const (
	DefaultForecastWeeks = 4
	MaxForecastWeeks     = 26
)

// CapacityWeek compares demand and supply for one week.
type CapacityWeek struct {
	Week          int       `json:"week"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DemandHours   float64   `json:"demand_hours"`
	CapacityHours float64   `json:"capacity_hours"`
	Utilization   float64   `json:"utilization"`
	ShortageHours float64   `json:"shortage_hours"`
	Tasks         int       `json:"tasks"`
}

// CapacityForecast covers the requested horizon.
type CapacityForecast struct {
	Weeks         []CapacityWeek `json:"weeks"`
	TotalDemand   float64        `json:"total_demand_hours"`
	TotalCapacity float64        `json:"total_capacity_hours"`
	PeakWeek      int            `json:"peak_week"`
	ShortageWeeks int            `json:"shortage_weeks"`
}

// ForecastCapacity spreads the remaining hours of open tasks over the weeks in
// which they are due. Overdue and undated work lands in week 0; work due after
// the horizon is ignored. weeks outside [1, MaxForecastWeeks] is clamped.
func ForecastCapacity(users []model.User, tasks []model.Task, weeks int, now time.Time) CapacityForecast {
	if weeks <= 0 {
		weeks = DefaultForecastWeeks
	}
	weeks = min(weeks, MaxForecastWeeks)

	var supply float64
	for _, u := range users {
		if u.Status == model.UserStatusActive {
			supply += capacityOf(u)
		}
	}

	start := startOfDay(now)
	out := CapacityForecast{Weeks: make([]CapacityWeek, weeks)}
	for i := range out.Weeks {
		ws := start.AddDate(0, 0, 7*i)
		out.Weeks[i] = CapacityWeek{Week: i, Start: ws, End: ws.AddDate(0, 0, 7), CapacityHours: supply}
	}

	for _, t := range tasks {
		if !t.IsOpen() {
			continue
		}
		idx := 0
		if t.DueDate != nil && !t.DueDate.Before(start) {
			idx = int(t.DueDate.Sub(start).Hours() / (24 * 7))
		}
		if idx >= weeks {
			continue
		}
		out.Weeks[idx].DemandHours += t.RemainingHours()
		out.Weeks[idx].Tasks++
	}

	peak := -1.0
	for i := range out.Weeks {
		w := &out.Weeks[i]
		w.DemandHours = round2(w.DemandHours)
		if w.CapacityHours > 0 {
			w.Utilization = round2(w.DemandHours / w.CapacityHours * 100)
		} else if w.DemandHours > 0 {
			w.Utilization = 100
		}
		w.ShortageHours = round2(math.Max(w.DemandHours-w.CapacityHours, 0))
		if w.ShortageHours > 0 {
			out.ShortageWeeks++
		}
		if w.DemandHours > peak {
			peak = w.DemandHours
			out.PeakWeek = w.Week
		}
		out.TotalDemand += w.DemandHours
		out.TotalCapacity += w.CapacityHours
	}
	out.TotalDemand = round2(out.TotalDemand)
	out.TotalCapacity = round2(out.TotalCapacity)
	return out
}
