package analytics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"portfolioapi/internal/model"
)

// MinTrainingRows is the smallest sample a regression is fitted on.
const MinTrainingRows = 10

// Prediction methods.
const (
	MethodRegression = "regression"
	MethodHeuristic  = "heuristic"
	MethodVelocity   = "velocity"
)

// DefaultTaskHours is predicted for tasks without an estimate.
const DefaultTaskHours = 8

// DurationInput describes the task to predict.
type DurationInput struct {
	EstimatedHours float64 `json:"estimated_hours" validate:"gte=0"`
	Priority       string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	RequiredSkills int     `json:"required_skills" validate:"gte=0"`
}

// DurationPrediction is the predicted actual effort for a task.
type DurationPrediction struct {
	PredictedHours float64 `json:"predicted_hours"`
	Method         string  `json:"method"`
	TrainingRows   int     `json:"training_rows"`
	Confidence     float64 `json:"confidence"`
}

var priorityFactor = map[string]float64{
	model.PriorityLow:      0.9,
	model.PriorityMedium:   1.0,
	model.PriorityHigh:     1.2,
	model.PriorityCritical: 1.35,
}

// HeuristicDuration scales the estimate by a priority factor.
func HeuristicDuration(in DurationInput) float64 {
	est := in.EstimatedHours
	if est <= 0 {
		est = DefaultTaskHours
	}
	f, ok := priorityFactor[in.Priority]
	if !ok {
		f = 1
	}
	return round2(est * f)
}

type durationRow struct {
	features []float64
	actual   float64
}

func durationFeatures(est float64, priority string, skills int) []float64 {
	return []float64{1, est, priorityRank(priority), float64(skills)}
}

func trainingRows(history []model.Task) []durationRow {
	var rows []durationRow
	for _, t := range history {
		if t.Status != model.TaskStatusCompleted || t.ActualHours <= 0 || t.EstimatedHours <= 0 {
			continue
		}
		rows = append(rows, durationRow{
			features: durationFeatures(t.EstimatedHours, t.Priority, len(t.RequiredSkills)),
			actual:   t.ActualHours,
		})
	}
	return rows
}

// PredictTaskDuration fits a least squares model on completed tasks of the
// history and predicts the actual hours of in. With fewer than
// MinTrainingRows usable rows the heuristic is used.
func PredictTaskDuration(history []model.Task, in DurationInput) DurationPrediction {
	rows := trainingRows(history)
	fallback := DurationPrediction{PredictedHours: HeuristicDuration(in), Method: MethodHeuristic, TrainingRows: len(rows), Confidence: 0.5}
	if len(rows) < MinTrainingRows || in.EstimatedHours <= 0 {
		return fallback
	}

	cols := len(rows[0].features)
	x := mat.NewDense(len(rows), cols, nil)
	y := mat.NewDense(len(rows), 1, nil)
	ests := make([]float64, len(rows))
	actuals := make([]float64, len(rows))
	for i, r := range rows {
		x.SetRow(i, r.features)
		y.Set(i, 0, r.actual)
		ests[i] = r.features[1]
		actuals[i] = r.actual
	}

	predict, fitted, ok := solveMulti(x, y, rows)
	if !ok {
		// collinear features: fall back to actual ~ estimate
		alpha, beta := stat.LinearRegression(ests, actuals, nil, false)
		predict = func(f []float64) float64 { return alpha + beta*f[1] }
		fitted = make([]float64, len(rows))
		for i, r := range rows {
			fitted[i] = predict(r.features)
		}
	}

	hours := predict(durationFeatures(in.EstimatedHours, in.Priority, in.RequiredSkills))
	if math.IsNaN(hours) || hours <= 0 {
		return fallback
	}
	r2 := stat.RSquaredFrom(fitted, actuals, nil)
	return DurationPrediction{
		PredictedHours: round2(hours),
		Method:         MethodRegression,
		TrainingRows:   len(rows),
		Confidence:     round2(math.Max(0, math.Min(0.95, r2))),
	}
}

func solveMulti(x, y *mat.Dense, rows []durationRow) (func([]float64) float64, []float64, bool) {
	var beta mat.Dense
	if err := beta.Solve(x, y); err != nil {
		return nil, nil, false
	}
	coef := mat.Col(nil, 0, &beta)
	for _, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, nil, false
		}
	}
	predict := func(f []float64) float64 {
		var s float64
		for i, v := range f {
			s += coef[i] * v
		}
		return s
	}
	fitted := make([]float64, len(rows))
	for i, r := range rows {
		fitted[i] = predict(r.features)
	}
	return predict, fitted, true
}

// ProjectForecast estimates when a project finishes.
type ProjectForecast struct {
	ProjectID           string     `json:"project_id"`
	Progress            float64    `json:"progress"`
	TotalTasks          int        `json:"total_tasks"`
	CompletedTasks      int        `json:"completed_tasks"`
	Method              string     `json:"method"`
	VelocityPerWeek     float64    `json:"velocity_per_week"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
	DaysRemaining       *float64   `json:"days_remaining,omitempty"`
	OnTrack             *bool      `json:"on_track,omitempty"`
}

// ForecastProject regresses cumulative task completion over time when at least
// MinTrainingRows tasks are done and extrapolates the recent velocity otherwise.
func ForecastProject(p model.Project, tasks []model.Task, now time.Time) ProjectForecast {
	out := ProjectForecast{ProjectID: p.ID, Method: MethodVelocity}

	var done []time.Time
	for _, t := range tasks {
		if t.Status == model.TaskStatusCancelled {
			continue
		}
		out.TotalTasks++
		if t.Status == model.TaskStatusCompleted {
			at := t.UpdatedAt
			if t.CompletedAt != nil {
				at = *t.CompletedAt
			}
			done = append(done, at)
		}
	}
	out.CompletedTasks = len(done)
	if out.TotalTasks == 0 {
		out.Progress = p.Progress
		return out
	}
	out.Progress = round2(float64(out.CompletedTasks) / float64(out.TotalTasks) * 100)
	sort.Slice(done, func(i, j int) bool { return done[i].Before(done[j]) })

	origin := p.CreatedAt
	if p.StartDate != nil {
		origin = *p.StartDate
	}
	if len(done) > 0 && done[0].Before(origin) {
		origin = done[0]
	}
	elapsed := math.Max(now.Sub(origin).Hours()/24, 1)
	out.VelocityPerWeek = round2(float64(len(done)) / elapsed * 7)

	var finish time.Time
	switch {
	case out.CompletedTasks == out.TotalTasks:
		finish = done[len(done)-1]
	case len(done) >= MinTrainingRows:
		xs := make([]float64, len(done))
		ys := make([]float64, len(done))
		for i, d := range done {
			xs[i] = d.Sub(origin).Hours() / 24
			ys[i] = float64(i+1) / float64(out.TotalTasks) * 100
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		if math.IsNaN(beta) || beta <= 0 {
			return out
		}
		out.Method = MethodRegression
		finish = origin.Add(time.Duration((100 - alpha) / beta * 24 * float64(time.Hour)))
	case len(done) > 0:
		perDay := float64(len(done)) / elapsed
		remaining := float64(out.TotalTasks - out.CompletedTasks)
		finish = now.Add(time.Duration(remaining / perDay * 24 * float64(time.Hour)))
	default:
		return out
	}

	if finish.Before(now) && out.CompletedTasks < out.TotalTasks {
		finish = now
	}
	finish = finish.UTC()
	days := round2(math.Max(finish.Sub(now).Hours()/24, 0))
	out.EstimatedCompletion = &finish
	out.DaysRemaining = &days
	if p.DueDate != nil {
		onTrack := !finish.After(*p.DueDate)
		out.OnTrack = &onTrack
	}
	return out
}

// Risk levels.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// RiskFactor is one weighted component of a risk score.
type RiskFactor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail"`
}

// RiskAssessment is a 0 to 100 risk score with its factors.
type RiskAssessment struct {
	ProjectID string       `json:"project_id"`
	Score     float64      `json:"score"`
	Level     string       `json:"level"`
	Factors   []RiskFactor `json:"factors"`
}

// RiskLevel classifies a risk score.
func RiskLevel(score float64) string {
	switch {
	case score >= 75:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

// AssessProjectRisk weighs schedule, budget, overdue, blocked and unassigned work.
func AssessProjectRisk(p model.Project, tasks []model.Task, now time.Time) RiskAssessment {
	var open, overdue, blocked, unassigned int
	for _, t := range tasks {
		if !t.IsOpen() {
			continue
		}
		open++
		if t.IsOverdue(now) {
			overdue++
		}
		if t.Status == model.TaskStatusBlocked {
			blocked++
		}
		if t.AssigneeID == "" {
			unassigned++
		}
	}
	ratio := func(n int) float64 {
		if open == 0 {
			return 0
		}
		return float64(n) / float64(open) * 100
	}

	schedule := 0.0
	scheduleDetail := "no schedule"
	if p.StartDate != nil && p.DueDate != nil && p.DueDate.After(*p.StartDate) && !p.IsClosed() {
		elapsed := now.Sub(*p.StartDate).Hours() / p.DueDate.Sub(*p.StartDate).Hours() * 100
		schedule = math.Max(0, math.Min(100, elapsed-p.Progress))
		if now.After(*p.DueDate) {
			schedule = 100
		}
		scheduleDetail = "elapsed time ahead of progress"
	}

	budget := 0.0
	budgetDetail := "no budget"
	if p.Budget.Total > 0 {
		spent := p.Budget.Spent / p.Budget.Total * 100
		budget = math.Max(0, math.Min(100, spent-p.Progress))
		if spent > 100 {
			budget = 100
		}
		budgetDetail = "spend ahead of progress"
	}

	factors := []RiskFactor{
		{Name: "schedule", Score: round2(schedule), Weight: 0.3, Detail: scheduleDetail},
		{Name: "budget", Score: round2(budget), Weight: 0.25, Detail: budgetDetail},
		{Name: "overdue_tasks", Score: round2(ratio(overdue)), Weight: 0.2, Detail: "share of open tasks past due"},
		{Name: "blocked_tasks", Score: round2(ratio(blocked)), Weight: 0.15, Detail: "share of open tasks blocked"},
		{Name: "unassigned_tasks", Score: round2(ratio(unassigned)), Weight: 0.1, Detail: "share of open tasks without assignee"},
	}
	var score float64
	for _, f := range factors {
		score += f.Score * f.Weight
	}
	score = round2(score)
	return RiskAssessment{ProjectID: p.ID, Score: score, Level: RiskLevel(score), Factors: factors}
}
