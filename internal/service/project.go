package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

type ProjectFilter struct {
	Status   string
	Priority string
	OwnerID  string
}

type CreateProjectInput struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=5000"`
	OwnerID     string       `json:"owner_id"`
	Status      string       `json:"status" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority    string       `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	StartDate   *time.Time   `json:"start_date"`
	DueDate     *time.Time   `json:"due_date"`
	Budget      model.Budget `json:"budget"`
	Progress    float64      `json:"progress" validate:"gte=0,lte=100"`
	TeamMembers []string     `json:"team_members"`
	Tags        []string     `json:"tags"`
}

type UpdateProjectInput struct {
	Name        *string       `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string       `json:"description" validate:"omitempty,max=5000"`
	OwnerID     *string       `json:"owner_id"`
	Status      *string       `json:"status" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority    *string       `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	StartDate   *time.Time    `json:"start_date"`
	DueDate     *time.Time    `json:"due_date"`
	Budget      *model.Budget `json:"budget"`
	Progress    *float64      `json:"progress" validate:"omitempty,gte=0,lte=100"`
	TeamMembers *[]string     `json:"team_members"`
	Tags        *[]string     `json:"tags"`
}

// ProjectStats summarizes the tasks of one project.
type ProjectStats struct {
	ProjectID       string         `json:"project_id"`
	TotalTasks      int            `json:"total_tasks"`
	ByStatus        map[string]int `json:"by_status"`
	Completed       int            `json:"completed"`
	Overdue         int            `json:"overdue"`
	Unassigned      int            `json:"unassigned"`
	EstimatedHours  float64        `json:"estimated_hours"`
	ActualHours     float64        `json:"actual_hours"`
	CompletionRatio float64        `json:"completion_ratio"`
	BudgetUsed      float64        `json:"budget_used_percent"`
}

// ProjectService manages projects of the actor's organization.
type ProjectService interface {
	List(ctx context.Context, f ProjectFilter, p Page) (*ListResult[model.Project], error)
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Update(ctx context.Context, id string, in UpdateProjectInput) (*model.Project, error)
	// Delete removes the project with its tasks, comments and file records.
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*ProjectStats, error)
}

type projectService struct {
	r      Repositories
	notify Notifier
	audit  auditor
	log    *zap.Logger
}

func NewProjectService(r Repositories, nf Notifier, rec audit.Recorder, log *zap.Logger) ProjectService {
	if nf == nil {
		nf = noopNotifier{}
	}
	return &projectService{r: r, notify: nf, audit: newAuditor(rec, log), log: log}
}

func projectOrg(p *model.Project) string { return p.OrganizationID }

func (s *projectService) List(ctx context.Context, f ProjectFilter, p Page) (*ListResult[model.Project], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	filter := repository.Filter{"organization_id": a.OrgID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	pq := p.query()
	res, err := s.r.Projects.List(ctx, filter, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := checkSchedule(in.StartDate, in.DueDate); err != nil {
		return nil, err
	}
	if err := checkBudget(in.Budget); err != nil {
		return nil, err
	}
	if in.OwnerID == "" {
		in.OwnerID = a.UserID
	}
	if in.Status == "" {
		in.Status = model.ProjectStatusPlanning
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if in.Budget.Currency == "" {
		in.Budget.Currency = "USD"
	}
	if in.Status == model.ProjectStatusCompleted && in.Progress == 0 {
		in.Progress = 100
	}
	members := dedupe(append([]string{in.OwnerID}, in.TeamMembers...))
	if err := s.checkMembers(ctx, a.OrgID, members); err != nil {
		return nil, err
	}

	ts := now()
	p, err := s.r.Projects.Create(ctx, &model.Project{
		ID:             newID(),
		Name:           in.Name,
		Description:    in.Description,
		OrganizationID: a.OrgID,
		OwnerID:        in.OwnerID,
		Status:         in.Status,
		Priority:       in.Priority,
		StartDate:      utc(in.StartDate),
		DueDate:        utc(in.DueDate),
		Budget:         in.Budget,
		Progress:       in.Progress,
		TeamMembers:    members,
		Tags:           nonNil(in.Tags),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionCreate, "project", p.ID, map[string]any{"name": p.Name})
	notify(ctx, s.notify, s.log, model.Notification{
		OrganizationID: a.OrgID,
		Type:           model.NotificationProjectUpdate,
		Title:          "Added to project",
		Message:        "You were added to project " + p.Name,
		EntityType:     model.EntityProject,
		EntityID:       p.ID,
	}, p.TeamMembers, a.UserID)
	return p, nil
}

// checkMembers verifies that every id is a user of orgID.
func (s *projectService) checkMembers(ctx context.Context, orgID string, ids []string) error {
	return usersInOrg(ctx, s.r.Users, orgID, ids)
}

func usersInOrg(ctx context.Context, users repository.UserRepository, orgID string, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil
	}
	n, err := users.Count(ctx, repository.Filter{"organization_id": orgID, "_id": repository.In(ids)})
	if err != nil {
		return err
	}
	if n != len(ids) {
		return invalid("one or more users do not belong to the organization")
	}
	return nil
}

func (s *projectService) Get(ctx context.Context, id string) (*model.Project, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return inOrg(ctx, s.r.Projects, id, a.OrgID, projectOrg)
}

func (s *projectService) Update(ctx context.Context, id string, in UpdateProjectInput) (*model.Project, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.r.Projects, id, a.OrgID, projectOrg)
	if err != nil {
		return nil, err
	}

	start, due := cur.StartDate, cur.DueDate
	if in.StartDate != nil {
		start = in.StartDate
	}
	if in.DueDate != nil {
		due = in.DueDate
	}
	if err := checkSchedule(start, due); err != nil {
		return nil, err
	}

	set := repository.Fields{"updated_at": now()}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.OwnerID != nil {
		if err := s.checkMembers(ctx, a.OrgID, []string{*in.OwnerID}); err != nil {
			return nil, err
		}
		set["owner_id"] = *in.OwnerID
	}
	if in.Status != nil {
		set["status"] = *in.Status
		if *in.Status == model.ProjectStatusCompleted && in.Progress == nil {
			set["progress"] = 100.0
		}
	}
	if in.Priority != nil {
		set["priority"] = *in.Priority
	}
	if in.StartDate != nil {
		set["start_date"] = in.StartDate.UTC()
	}
	if in.DueDate != nil {
		set["due_date"] = in.DueDate.UTC()
	}
	if in.Budget != nil {
		if err := checkBudget(*in.Budget); err != nil {
			return nil, err
		}
		b := *in.Budget
		if b.Currency == "" {
			b.Currency = cur.Budget.Currency
		}
		set["budget"] = b
	}
	if in.Progress != nil {
		set["progress"] = *in.Progress
	}
	var added []string
	if in.TeamMembers != nil {
		members := dedupe(*in.TeamMembers)
		if err := s.checkMembers(ctx, a.OrgID, members); err != nil {
			return nil, err
		}
		set["team_members"] = members
		added = missingFrom(members, cur.TeamMembers)
	}
	if in.Tags != nil {
		set["tags"] = nonNil(*in.Tags)
	}

	p, err := s.r.Projects.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "project", id, nil)
	notify(ctx, s.notify, s.log, model.Notification{
		OrganizationID: a.OrgID,
		Type:           model.NotificationProjectUpdate,
		Title:          "Added to project",
		Message:        "You were added to project " + p.Name,
		EntityType:     model.EntityProject,
		EntityID:       p.ID,
	}, added, a.UserID)
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	if _, err := inOrg(ctx, s.r.Projects, id, a.OrgID, projectOrg); err != nil {
		return err
	}

	tasks, err := s.r.Tasks.FindAll(ctx, repository.Filter{"project_id": id})
	if err != nil {
		return err
	}
	entityIDs := []string{id}
	for _, t := range tasks {
		entityIDs = append(entityIDs, t.ID)
	}
	byEntity := repository.Filter{"organization_id": a.OrgID, "entity_id": repository.In(entityIDs)}
	if _, err := s.r.Comments.DeleteMany(ctx, byEntity); err != nil {
		return err
	}
	if _, err := s.r.Files.DeleteMany(ctx, byEntity); err != nil {
		return err
	}
	if _, err := s.r.Tasks.DeleteMany(ctx, repository.Filter{"project_id": id}); err != nil {
		return err
	}
	if err := s.r.Projects.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "project", id, map[string]any{"tasks": len(tasks)})
	return nil
}

func (s *projectService) Stats(ctx context.Context, id string) (*ProjectStats, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	p, err := inOrg(ctx, s.r.Projects, id, a.OrgID, projectOrg)
	if err != nil {
		return nil, err
	}
	tasks, err := s.r.Tasks.FindAll(ctx, repository.Filter{"project_id": id})
	if err != nil {
		return nil, err
	}
	return projectStats(p, tasks, now()), nil
}

func projectStats(p *model.Project, tasks []model.Task, at time.Time) *ProjectStats {
	st := &ProjectStats{ProjectID: p.ID, TotalTasks: len(tasks), ByStatus: map[string]int{}}
	for _, t := range tasks {
		st.ByStatus[t.Status]++
		if t.Status == model.TaskStatusCompleted {
			st.Completed++
		}
		if t.IsOverdue(at) {
			st.Overdue++
		}
		if t.AssigneeID == "" && t.IsOpen() {
			st.Unassigned++
		}
		st.EstimatedHours += t.EstimatedHours
		st.ActualHours += t.ActualHours
	}
	if st.TotalTasks > 0 {
		st.CompletionRatio = round2(float64(st.Completed) / float64(st.TotalTasks))
	}
	if p.Budget.Total > 0 {
		st.BudgetUsed = round2(p.Budget.Spent / p.Budget.Total * 100)
	}
	return st
}

func checkSchedule(start, due *time.Time) error {
	if start != nil && due != nil && due.Before(*start) {
		return invalid("due_date must not be before start_date")
	}
	return nil
}

func checkBudget(b model.Budget) error {
	if b.Total < 0 || b.Spent < 0 {
		return invalid("budget amounts must not be negative")
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// missingFrom returns the elements of next absent from prev.
func missingFrom(next, prev []string) []string {
	have := make(map[string]bool, len(prev))
	for _, v := range prev {
		have[v] = true
	}
	var out []string
	for _, v := range next {
		if !have[v] {
			out = append(out, v)
		}
	}
	return out
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
