package service

import (
	"context"

	"go.uber.org/zap"

	"portfolioapi/internal/ai"
	"portfolioapi/internal/analytics"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

// WorkloadReport is the per-user workload with an organization summary.
type WorkloadReport struct {
	Users   []analytics.Workload      `json:"users"`
	Summary analytics.WorkloadSummary `json:"summary"`
}

type SkillMatchInput struct {
	Requirements []analytics.SkillRequirement `json:"requirements" validate:"required,min=1,dive"`
	Limit        int                          `json:"limit" validate:"gte=0,lte=100"`
}

// OptimizationResult pairs the reallocation plan with advice.
type OptimizationResult struct {
	Plan   analytics.AllocationPlan `json:"plan"`
	Advice ai.Advice                `json:"advice"`
}

type DurationInput struct {
	EstimatedHours float64 `json:"estimated_hours" validate:"gte=0,lte=10000"`
	Priority       string  `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	RequiredSkills int     `json:"required_skills" validate:"gte=0,lte=50"`
}

type AssessSkillsInput struct {
	Evidence []analytics.Evidence `json:"evidence" validate:"required,min=1,dive"`
}

// SkillGapReport lists unmet requirements of one user and how to close them.
type SkillGapReport struct {
	UserID string               `json:"user_id"`
	Gaps   []analytics.SkillGap `json:"gaps"`
	Advice ai.Advice            `json:"advice"`
}

// AnalyticsService runs resource analytics and predictions on the current
// documents of the actor's organization.
type AnalyticsService interface {
	Workload(ctx context.Context) (*WorkloadReport, error)
	MatchSkills(ctx context.Context, in SkillMatchInput) ([]analytics.SkillMatch, error)
	Capacity(ctx context.Context, weeks int) (*analytics.CapacityForecast, error)
	Conflicts(ctx context.Context) ([]analytics.Conflict, error)
	Optimize(ctx context.Context) (*OptimizationResult, error)
	PredictDuration(ctx context.Context, in DurationInput) (*analytics.DurationPrediction, error)
	ForecastProject(ctx context.Context, projectID string) (*analytics.ProjectForecast, error)
	ProjectRisk(ctx context.Context, projectID string) (*analytics.RiskAssessment, error)
	AssessSkills(ctx context.Context, in AssessSkillsInput) ([]analytics.SkillAssessment, error)
	SkillGaps(ctx context.Context, userID string, reqs []analytics.SkillRequirement) (*SkillGapReport, error)
	ProjectInsights(ctx context.Context, projectID string) (*ai.Insights, error)
	SuggestTasks(ctx context.Context, projectID string) (*ai.TaskSuggestions, error)
}

type analyticsService struct {
	r         Repositories
	assistant *ai.Assistant
	log       *zap.Logger
}

func NewAnalyticsService(r Repositories, assistant *ai.Assistant, log *zap.Logger) AnalyticsService {
	if assistant == nil {
		assistant = ai.NewAssistant(nil, log)
	}
	return &analyticsService{r: r, assistant: assistant, log: log}
}

// snapshot loads every user and task of the organization.
func (s *analyticsService) snapshot(ctx context.Context, orgID string) ([]model.User, []model.Task, error) {
	byOrg := repository.Filter{"organization_id": orgID}
	users, err := s.r.Users.FindAll(ctx, byOrg)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.r.Tasks.FindAll(ctx, byOrg)
	if err != nil {
		return nil, nil, err
	}
	return users, tasks, nil
}

func (s *analyticsService) Workload(ctx context.Context) (*WorkloadReport, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	users, tasks, err := s.snapshot(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}
	ws := analytics.ComputeWorkload(users, tasks, now())
	return &WorkloadReport{Users: ws, Summary: analytics.Summarize(ws)}, nil
}

func (s *analyticsService) MatchSkills(ctx context.Context, in SkillMatchInput) ([]analytics.SkillMatch, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	users, tasks, err := s.snapshot(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}
	matches := analytics.MatchSkills(users, tasks, in.Requirements, now())
	if in.Limit > 0 && len(matches) > in.Limit {
		matches = matches[:in.Limit]
	}
	return matches, nil
}

func (s *analyticsService) Capacity(ctx context.Context, weeks int) (*analytics.CapacityForecast, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if weeks == 0 {
		weeks = analytics.DefaultForecastWeeks
	}
	if weeks < 1 || weeks > analytics.MaxForecastWeeks {
		return nil, invalid("weeks must be between 1 and %d", analytics.MaxForecastWeeks)
	}
	users, tasks, err := s.snapshot(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}
	f := analytics.ForecastCapacity(users, tasks, weeks, now())
	return &f, nil
}

func (s *analyticsService) Conflicts(ctx context.Context) ([]analytics.Conflict, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	users, tasks, err := s.snapshot(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}
	return analytics.DetectConflicts(users, tasks, now()), nil
}

func (s *analyticsService) Optimize(ctx context.Context) (*OptimizationResult, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	users, tasks, err := s.snapshot(ctx, a.OrgID)
	if err != nil {
		return nil, err
	}
	at := now()
	plan := analytics.OptimizeAllocation(users, tasks, at)
	summary := analytics.Summarize(analytics.ComputeWorkload(users, tasks, at))
	return &OptimizationResult{Plan: plan, Advice: s.assistant.AllocationAdvice(ctx, plan, summary)}, nil
}

// PredictDuration trains on the organization's completed tasks.
func (s *analyticsService) PredictDuration(ctx context.Context, in DurationInput) (*analytics.DurationPrediction, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	history, err := s.r.Tasks.FindAll(ctx, repository.Filter{"organization_id": a.OrgID, "status": model.TaskStatusCompleted})
	if err != nil {
		return nil, err
	}
	p := analytics.PredictTaskDuration(history, analytics.DurationInput{
		EstimatedHours: in.EstimatedHours,
		Priority:       in.Priority,
		RequiredSkills: in.RequiredSkills,
	})
	return &p, nil
}

func (s *analyticsService) project(ctx context.Context, id string) (*model.Project, []model.Task, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, nil, err
	}
	p, err := inOrg(ctx, s.r.Projects, id, a.OrgID, projectOrg)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.r.Tasks.FindAll(ctx, repository.Filter{"project_id": id})
	if err != nil {
		return nil, nil, err
	}
	return p, tasks, nil
}

func (s *analyticsService) ForecastProject(ctx context.Context, projectID string) (*analytics.ProjectForecast, error) {
	p, tasks, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	f := analytics.ForecastProject(*p, tasks, now())
	return &f, nil
}

func (s *analyticsService) ProjectRisk(ctx context.Context, projectID string) (*analytics.RiskAssessment, error) {
	p, tasks, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	r := analytics.AssessProjectRisk(*p, tasks, now())
	return &r, nil
}

func (s *analyticsService) AssessSkills(ctx context.Context, in AssessSkillsInput) ([]analytics.SkillAssessment, error) {
	if _, err := orgActor(ctx); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	return analytics.AssessSkills(in.Evidence, now()), nil
}

func (s *analyticsService) SkillGaps(ctx context.Context, userID string, reqs []analytics.SkillRequirement) (*SkillGapReport, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, invalid("requirements must contain at least one skill")
	}
	if err := check(SkillMatchInput{Requirements: reqs}); err != nil {
		return nil, err
	}
	if userID == "" {
		userID = a.UserID
	}
	u, err := inOrg(ctx, s.r.Users, userID, a.OrgID, userOrg)
	if err != nil {
		return nil, err
	}
	gaps := analytics.SkillGaps(*u, reqs)
	return &SkillGapReport{UserID: u.ID, Gaps: gaps, Advice: s.assistant.SkillRecommendations(ctx, gaps)}, nil
}

func (s *analyticsService) ProjectInsights(ctx context.Context, projectID string) (*ai.Insights, error) {
	p, tasks, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	at := now()
	pc := ai.ProjectContext{
		Project:  *p,
		Risk:     analytics.AssessProjectRisk(*p, tasks, at),
		Forecast: analytics.ForecastProject(*p, tasks, at),
	}
	for _, t := range tasks {
		pc.TotalTasks++
		switch {
		case t.Status == model.TaskStatusCompleted:
			pc.Completed++
		case t.Status == model.TaskStatusBlocked:
			pc.Blocked++
		}
		if t.IsOverdue(at) {
			pc.Overdue++
		}
	}
	in := s.assistant.ProjectInsights(ctx, pc)
	return &in, nil
}

func (s *analyticsService) SuggestTasks(ctx context.Context, projectID string) (*ai.TaskSuggestions, error) {
	p, tasks, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := s.assistant.SuggestTasks(ctx, *p, tasks)
	return &out, nil
}
