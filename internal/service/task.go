package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     string
	Priority   string
}

type CreateTaskInput struct {
	Title          string     `json:"title" validate:"required,max=300"`
	Description    string     `json:"description" validate:"max=10000"`
	ProjectID      string     `json:"project_id" validate:"required"`
	AssigneeID     string     `json:"assignee_id"`
	Status         string     `json:"status" validate:"omitempty,oneof=todo in_progress in_review blocked completed cancelled"`
	Priority       string     `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Type           string     `json:"type" validate:"max=50"`
	EstimatedHours float64    `json:"estimated_hours" validate:"gte=0,lte=10000"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
	RequiredSkills []string   `json:"required_skills"`
	Dependencies   []string   `json:"dependencies"`
	Tags           []string   `json:"tags"`
}

type UpdateTaskInput struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=300"`
	Description    *string    `json:"description" validate:"omitempty,max=10000"`
	Status         *string    `json:"status" validate:"omitempty,oneof=todo in_progress in_review blocked completed cancelled"`
	Priority       *string    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Type           *string    `json:"type" validate:"omitempty,max=50"`
	EstimatedHours *float64   `json:"estimated_hours" validate:"omitempty,gte=0,lte=10000"`
	ActualHours    *float64   `json:"actual_hours" validate:"omitempty,gte=0,lte=10000"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
	RequiredSkills *[]string  `json:"required_skills"`
	Dependencies   *[]string  `json:"dependencies"`
	Tags           *[]string  `json:"tags"`
}

var taskStatuses = []string{
	model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusInReview,
	model.TaskStatusBlocked, model.TaskStatusCompleted, model.TaskStatusCancelled,
}

// TaskService manages tasks of the actor's organization.
type TaskService interface {
	List(ctx context.Context, f TaskFilter, p Page) (*ListResult[model.Task], error)
	Create(ctx context.Context, in CreateTaskInput) (*model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Update(ctx context.Context, id string, in UpdateTaskInput) (*model.Task, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Task, error)
	// Assign sets or, with an empty assigneeID, clears the assignee.
	Assign(ctx context.Context, id, assigneeID string) (*model.Task, error)
	// Delete removes the task with its comments and file records.
	Delete(ctx context.Context, id string) error
}

type taskService struct {
	r      Repositories
	notify Notifier
	audit  auditor
	log    *zap.Logger
}

func NewTaskService(r Repositories, nf Notifier, rec audit.Recorder, log *zap.Logger) TaskService {
	if nf == nil {
		nf = noopNotifier{}
	}
	return &taskService{r: r, notify: nf, audit: newAuditor(rec, log), log: log}
}

func taskOrg(t *model.Task) string { return t.OrganizationID }

func (s *taskService) List(ctx context.Context, f TaskFilter, p Page) (*ListResult[model.Task], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	filter := repository.Filter{"organization_id": a.OrgID}
	if f.ProjectID != "" {
		filter["project_id"] = f.ProjectID
	}
	if f.AssigneeID != "" {
		filter["assignee_id"] = f.AssigneeID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	pq := p.query()
	res, err := s.r.Tasks.List(ctx, filter, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *taskService) Create(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := checkSchedule(in.StartDate, in.DueDate); err != nil {
		return nil, err
	}
	if _, err := inOrg(ctx, s.r.Projects, in.ProjectID, a.OrgID, projectOrg); err != nil {
		if err == ErrNotFound {
			return nil, invalid("project %s does not exist", in.ProjectID)
		}
		return nil, err
	}
	if in.AssigneeID != "" {
		if err := usersInOrg(ctx, s.r.Users, a.OrgID, []string{in.AssigneeID}); err != nil {
			return nil, err
		}
	}
	deps := dedupe(in.Dependencies)
	if err := s.checkDependencies(ctx, a.OrgID, "", deps); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if in.Type == "" {
		in.Type = "feature"
	}

	ts := now()
	t := &model.Task{
		ID:             newID(),
		Title:          in.Title,
		Description:    in.Description,
		ProjectID:      in.ProjectID,
		OrganizationID: a.OrgID,
		AssigneeID:     in.AssigneeID,
		ReporterID:     a.UserID,
		Status:         in.Status,
		Priority:       in.Priority,
		Type:           in.Type,
		EstimatedHours: in.EstimatedHours,
		StartDate:      utc(in.StartDate),
		DueDate:        utc(in.DueDate),
		RequiredSkills: dedupe(in.RequiredSkills),
		Dependencies:   deps,
		Tags:           nonNil(in.Tags),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if t.Status == model.TaskStatusCompleted {
		t.CompletedAt = &ts
	}
	created, err := s.r.Tasks.Create(ctx, t)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionCreate, "task", created.ID, map[string]any{"project_id": created.ProjectID})
	s.notifyAssigned(ctx, created, a.UserID)
	return created, nil
}

// checkDependencies verifies that deps are tasks of orgID other than self.
func (s *taskService) checkDependencies(ctx context.Context, orgID, self string, deps []string) error {
	if len(deps) == 0 {
		return nil
	}
	for _, d := range deps {
		if d == self {
			return invalid("a task cannot depend on itself")
		}
	}
	n, err := s.r.Tasks.Count(ctx, repository.Filter{"organization_id": orgID, "_id": repository.In(deps)})
	if err != nil {
		return err
	}
	if n != len(deps) {
		return invalid("one or more dependencies do not exist")
	}
	return nil
}

func (s *taskService) notifyAssigned(ctx context.Context, t *model.Task, actorID string) {
	if t.AssigneeID == "" {
		return
	}
	notify(ctx, s.notify, s.log, model.Notification{
		OrganizationID: t.OrganizationID,
		Type:           model.NotificationTaskAssigned,
		Title:          "Task assigned",
		Message:        "You were assigned to " + t.Title,
		EntityType:     model.EntityTask,
		EntityID:       t.ID,
		Priority:       t.Priority,
	}, []string{t.AssigneeID}, actorID)
}

func (s *taskService) Get(ctx context.Context, id string) (*model.Task, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return inOrg(ctx, s.r.Tasks, id, a.OrgID, taskOrg)
}

func (s *taskService) Update(ctx context.Context, id string, in UpdateTaskInput) (*model.Task, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.r.Tasks, id, a.OrgID, taskOrg)
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

	ts := now()
	set := repository.Fields{"updated_at": ts}
	if in.Title != nil {
		set["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Status != nil {
		statusFields(set, cur, *in.Status, ts)
	}
	if in.Priority != nil {
		set["priority"] = *in.Priority
	}
	if in.Type != nil {
		set["type"] = *in.Type
	}
	if in.EstimatedHours != nil {
		set["estimated_hours"] = *in.EstimatedHours
	}
	if in.ActualHours != nil {
		set["actual_hours"] = *in.ActualHours
	}
	if in.StartDate != nil {
		set["start_date"] = in.StartDate.UTC()
	}
	if in.DueDate != nil {
		set["due_date"] = in.DueDate.UTC()
	}
	if in.RequiredSkills != nil {
		set["required_skills"] = dedupe(*in.RequiredSkills)
	}
	if in.Dependencies != nil {
		deps := dedupe(*in.Dependencies)
		if err := s.checkDependencies(ctx, a.OrgID, id, deps); err != nil {
			return nil, err
		}
		set["dependencies"] = deps
	}
	if in.Tags != nil {
		set["tags"] = nonNil(*in.Tags)
	}

	t, err := s.r.Tasks.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "task", id, nil)
	if in.Status != nil && *in.Status != cur.Status {
		s.notifyStatus(ctx, t, a.UserID)
	}
	return t, nil
}

// statusFields adds the status change to set, maintaining completed_at.
func statusFields(set repository.Fields, cur *model.Task, status string, ts time.Time) {
	set["status"] = status
	switch {
	case status == model.TaskStatusCompleted && cur.Status != model.TaskStatusCompleted:
		set["completed_at"] = ts
	case status != model.TaskStatusCompleted:
		set["completed_at"] = nil
	}
}

func (s *taskService) notifyStatus(ctx context.Context, t *model.Task, actorID string) {
	notify(ctx, s.notify, s.log, model.Notification{
		OrganizationID: t.OrganizationID,
		Type:           model.NotificationTaskUpdated,
		Title:          "Task updated",
		Message:        t.Title + " is now " + t.Status,
		EntityType:     model.EntityTask,
		EntityID:       t.ID,
		Priority:       t.Priority,
	}, []string{t.AssigneeID, t.ReporterID}, actorID)
}

func (s *taskService) UpdateStatus(ctx context.Context, id, status string) (*model.Task, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(taskStatuses, status) {
		return nil, invalid("status must be one of [%s]", strings.Join(taskStatuses, " "))
	}
	cur, err := inOrg(ctx, s.r.Tasks, id, a.OrgID, taskOrg)
	if err != nil {
		return nil, err
	}
	if cur.Status == status {
		return cur, nil
	}
	ts := now()
	set := repository.Fields{"updated_at": ts}
	statusFields(set, cur, status, ts)
	t, err := s.r.Tasks.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "task", id, map[string]any{"status": status})
	s.notifyStatus(ctx, t, a.UserID)
	return t, nil
}

func (s *taskService) Assign(ctx context.Context, id, assigneeID string) (*model.Task, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.r.Tasks, id, a.OrgID, taskOrg)
	if err != nil {
		return nil, err
	}
	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID != "" {
		if err := usersInOrg(ctx, s.r.Users, a.OrgID, []string{assigneeID}); err != nil {
			return nil, err
		}
	}
	if cur.AssigneeID == assigneeID {
		return cur, nil
	}
	t, err := s.r.Tasks.Update(ctx, id, repository.Fields{"assignee_id": assigneeID, "updated_at": now()})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "task", id, map[string]any{"assignee_id": assigneeID})
	s.notifyAssigned(ctx, t, a.UserID)
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	if _, err := inOrg(ctx, s.r.Tasks, id, a.OrgID, taskOrg); err != nil {
		return err
	}
	byEntity := repository.Filter{"organization_id": a.OrgID, "entity_type": model.EntityTask, "entity_id": id}
	if _, err := s.r.Comments.DeleteMany(ctx, byEntity); err != nil {
		return err
	}
	if _, err := s.r.Files.DeleteMany(ctx, byEntity); err != nil {
		return err
	}
	if err := s.r.Tasks.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "task", id, nil)
	return nil
}
