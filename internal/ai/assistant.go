package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"portfolioapi/internal/analytics"
	"portfolioapi/internal/config"
	"portfolioapi/internal/model"
)

// Output sources.
const (
	SourceLLM      = "llm"
	SourceTemplate = "template"
)

const systemPrompt = "You are a portfolio management assistant. Answer with short bullet points, one per line, no preamble."

// ProjectContext is what the assistant knows about one project.
type ProjectContext struct {
	Project    model.Project
	TotalTasks int
	Completed  int
	Overdue    int
	Blocked    int
	Risk       analytics.RiskAssessment
	Forecast   analytics.ProjectForecast
}

// Insights is the answer for a project.
type Insights struct {
	ProjectID       string   `json:"project_id"`
	Source          string   `json:"source"`
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// SuggestedTask is a task the assistant proposes.
type SuggestedTask struct {
	Title          string  `json:"title"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// TaskSuggestions lists proposed tasks for a project.
type TaskSuggestions struct {
	ProjectID string          `json:"project_id"`
	Source    string          `json:"source"`
	Tasks     []SuggestedTask `json:"tasks"`
}

// Advice is free-form recommendation lines.
type Advice struct {
	Source          string   `json:"source"`
	Recommendations []string `json:"recommendations"`
}

// Assistant answers with the completer when available and templates otherwise.
type Assistant struct {
	llm Completer
	log *zap.Logger
}

// NewAssistant accepts a nil completer.
func NewAssistant(llm Completer, log *zap.Logger) *Assistant {
	return &Assistant{llm: llm, log: log.Named("ai")}
}

// FromConfig builds an assistant backed by a ChatClient when a key is set.
func FromConfig(c config.AIConfig, log *zap.Logger) *Assistant {
	if cc := NewChatClient(c); cc != nil {
		return NewAssistant(cc, log)
	}
	return NewAssistant(nil, log)
}

// Enabled reports whether an LLM backs the assistant.
func (a *Assistant) Enabled() bool { return a.llm != nil }

func (a *Assistant) ask(ctx context.Context, feature, prompt string) ([]string, bool) {
	if a.llm == nil {
		return nil, false
	}
	text, err := a.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		a.log.Warn("llm_fallback", zap.String("feature", feature), zap.Error(err))
		return nil, false
	}
	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil, false
	}
	return lines, true
}

// ProjectInsights summarizes health and next steps of a project.
func (a *Assistant) ProjectInsights(ctx context.Context, pc ProjectContext) Insights {
	p := pc.Project
	out := Insights{
		ProjectID: p.ID,
		Source:    SourceTemplate,
		Summary: fmt.Sprintf("%s is %s with %.0f%% of tasks completed (%d of %d); risk is %s.",
			p.Name, strings.ReplaceAll(p.Status, "_", " "), pc.Forecast.Progress, pc.Completed, pc.TotalTasks, pc.Risk.Level),
		Insights:        templateInsights(pc),
		Recommendations: templateRecommendations(pc),
	}

	prompt := fmt.Sprintf("Project %q (status %s, priority %s). %d tasks, %d completed, %d overdue, %d blocked. "+
		"Budget %.0f of %.0f %s spent. Risk score %.0f (%s). Give 3 to 5 recommendations.",
		p.Name, p.Status, p.Priority, pc.TotalTasks, pc.Completed, pc.Overdue, pc.Blocked,
		p.Budget.Spent, p.Budget.Total, p.Budget.Currency, pc.Risk.Score, pc.Risk.Level)
	if lines, ok := a.ask(ctx, "project_insights", prompt); ok {
		out.Source = SourceLLM
		out.Recommendations = lines
	}
	return out
}

func templateInsights(pc ProjectContext) []string {
	out := []string{}
	for _, f := range pc.Risk.Factors {
		if f.Score >= 50 {
			out = append(out, fmt.Sprintf("High %s risk: %s (%.0f/100).", strings.ReplaceAll(f.Name, "_", " "), f.Detail, f.Score))
		}
	}
	if pc.Forecast.EstimatedCompletion != nil {
		out = append(out, fmt.Sprintf("Projected completion on %s at %.1f tasks per week.",
			pc.Forecast.EstimatedCompletion.Format("2006-01-02"), pc.Forecast.VelocityPerWeek))
	}
	if len(out) == 0 {
		out = append(out, "No significant risk factors detected.")
	}
	return out
}

func templateRecommendations(pc ProjectContext) []string {
	out := []string{}
	if pc.Overdue > 0 {
		out = append(out, fmt.Sprintf("Review the %d overdue tasks and reset their due dates or scope.", pc.Overdue))
	}
	if pc.Blocked > 0 {
		out = append(out, fmt.Sprintf("Unblock %d blocked tasks; schedule a dependency review.", pc.Blocked))
	}
	if pc.Forecast.OnTrack != nil && !*pc.Forecast.OnTrack {
		out = append(out, "The forecast misses the due date; add capacity or reduce scope.")
	}
	if pc.Project.Budget.Total > 0 && pc.Project.Budget.Spent > pc.Project.Budget.Total {
		out = append(out, "Spending exceeds the budget; approve additional funds or cut costs.")
	}
	if len(out) == 0 {
		out = append(out, "Keep the current plan and review progress weekly.")
	}
	return out
}

// SuggestTasks proposes follow-up tasks for a project.
func (a *Assistant) SuggestTasks(ctx context.Context, p model.Project, existing []model.Task) TaskSuggestions {
	out := TaskSuggestions{ProjectID: p.ID, Source: SourceTemplate, Tasks: templateTasks(existing)}

	titles := make([]string, 0, len(existing))
	for _, t := range existing {
		titles = append(titles, t.Title)
	}
	prompt := fmt.Sprintf("Project %q: %s. Existing tasks: %s. Suggest up to 5 new task titles.",
		p.Name, p.Description, strings.Join(titles, "; "))
	if lines, ok := a.ask(ctx, "task_suggestions", prompt); ok {
		out.Source = SourceLLM
		out.Tasks = out.Tasks[:0]
		for _, l := range lines {
			out.Tasks = append(out.Tasks, SuggestedTask{Title: l, Priority: model.PriorityMedium, EstimatedHours: analytics.DefaultTaskHours})
		}
	}
	return out
}

var standardTasks = []SuggestedTask{
	{Title: "Define requirements and acceptance criteria", Priority: model.PriorityHigh, EstimatedHours: 8},
	{Title: "Draft technical design", Priority: model.PriorityHigh, EstimatedHours: 12},
	{Title: "Set up CI pipeline", Priority: model.PriorityMedium, EstimatedHours: 6},
	{Title: "Write integration tests", Priority: model.PriorityMedium, EstimatedHours: 10},
	{Title: "Prepare release notes", Priority: model.PriorityLow, EstimatedHours: 3},
	{Title: "Run stakeholder review", Priority: model.PriorityMedium, EstimatedHours: 2},
}

func templateTasks(existing []model.Task) []SuggestedTask {
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[strings.ToLower(strings.TrimSpace(t.Title))] = true
	}
	out := []SuggestedTask{}
	for _, s := range standardTasks {
		if !have[strings.ToLower(s.Title)] {
			out = append(out, s)
		}
	}
	return out
}

// AllocationAdvice explains an allocation plan.
func (a *Assistant) AllocationAdvice(ctx context.Context, plan analytics.AllocationPlan, summary analytics.WorkloadSummary) Advice {
	out := Advice{Source: SourceTemplate, Recommendations: []string{}}
	for _, s := range plan.Suggestions {
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("Move %q (%.1fh) from %s to %s.", s.TaskTitle, s.Hours, s.FromUserID, s.ToUserID))
	}
	if summary.Overallocated > 0 && len(plan.Suggestions) == 0 {
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("%d people are overallocated and no skilled receiver was found; consider hiring or rescoping.", summary.Overallocated))
	}
	if len(out.Recommendations) == 0 {
		out.Recommendations = append(out.Recommendations, "Workload is balanced; no reallocation needed.")
	}

	prompt := fmt.Sprintf("Team of %d: %d overallocated, %d optimal, %d underutilized, average utilization %.0f%%. "+
		"%d reallocations proposed. Give allocation recommendations.",
		summary.TotalUsers, summary.Overallocated, summary.Optimal, summary.Underutilized, summary.AverageUtilization, len(plan.Suggestions))
	if lines, ok := a.ask(ctx, "allocation_advice", prompt); ok {
		out.Source = SourceLLM
		out.Recommendations = lines
	}
	return out
}

// SkillRecommendations proposes learning steps for skill gaps.
func (a *Assistant) SkillRecommendations(ctx context.Context, gaps []analytics.SkillGap) Advice {
	out := Advice{Source: SourceTemplate, Recommendations: []string{}}
	names := make([]string, 0, len(gaps))
	for _, g := range gaps {
		names = append(names, fmt.Sprintf("%s (level %d, needs %d)", g.Skill, g.Current, g.Required))
		switch g.Severity {
		case "high":
			out.Recommendations = append(out.Recommendations, fmt.Sprintf("Enroll in a structured %s course and pair with an expert.", g.Skill))
		case "medium":
			out.Recommendations = append(out.Recommendations, fmt.Sprintf("Take on a stretch task using %s with code review.", g.Skill))
		default:
			out.Recommendations = append(out.Recommendations, fmt.Sprintf("Practice %s on small tasks.", g.Skill))
		}
	}
	if len(gaps) == 0 {
		out.Recommendations = append(out.Recommendations, "All requirements are met.")
		return out
	}
	if lines, ok := a.ask(ctx, "skill_recommendations", "Skill gaps: "+strings.Join(names, ", ")+". Recommend learning steps."); ok {
		out.Source = SourceLLM
		out.Recommendations = lines
	}
	return out
}
