// Package seed fabricates a coherent demo organization for UI demos.
// Output is deterministic for a given seed and reference time.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
)

// Options sizes the generated dataset.
type Options struct {
	Seed            int64
	Users           int
	Teams           int
	Projects        int
	TasksPerProject int
	PasswordHash    string
	Now             time.Time
}

// DefaultOptions returns a small but realistic dataset size.
func DefaultOptions() Options {
	return Options{Seed: 42, Users: 12, Teams: 3, Projects: 4, TasksPerProject: 15, Now: time.Now().UTC()}
}

// Dataset is everything one demo organization holds.
type Dataset struct {
	Organization model.Organization
	Users        []model.User
	Teams        []model.Team
	Projects     []model.Project
	Tasks        []model.Task
	Comments     []model.Comment
}

var (
	skillPool   = []string{"Go", "Python", "TypeScript", "React", "SQL", "MongoDB", "Kubernetes", "AWS", "Design", "Testing", "Product", "Data Analysis"}
	departments = []string{"Engineering", "Product", "Design", "Operations", "Marketing"}
	teamNames   = []string{"Platform", "Growth", "Mobile", "Data", "Core Services", "Experience"}
	taskTypes   = []string{"feature", "bug", "chore", "research"}
)

type generator struct {
	f   *gofakeit.Faker
	opt Options
}

// Generate builds a dataset. Every user shares opt.PasswordHash.
func Generate(opt Options) Dataset {
	if opt.Now.IsZero() {
		opt.Now = time.Now().UTC()
	}
	g := &generator{f: gofakeit.New(opt.Seed), opt: opt}

	var ds Dataset
	ds.Organization = g.organization()
	ds.Users = g.users(ds.Organization)
	ds.Organization.OwnerID = ds.Users[0].ID
	ds.Teams = g.teams(ds.Organization, ds.Users)
	ds.Projects = g.projects(ds.Organization, ds.Users)
	for _, p := range ds.Projects {
		ds.Tasks = append(ds.Tasks, g.tasks(p, ds.Users)...)
	}
	ds.Comments = g.comments(ds.Tasks, ds.Users)
	return ds
}

func (g *generator) id() string { return g.f.UUID() }

func (g *generator) organization() model.Organization {
	name := g.f.Company()
	return model.Organization{
		ID:          g.id(),
		Name:        name,
		Slug:        "demo-" + model.Slugify(name),
		Description: g.f.Sentence(12),
		Industry:    g.f.RandomString([]string{"software", "finance", "healthcare", "retail", "manufacturing"}),
		Size:        g.f.RandomString([]string{"11-50", "51-200", "201-500"}),
		Status:      "active",
		CreatedAt:   g.opt.Now.AddDate(0, -6, 0),
		UpdatedAt:   g.opt.Now,
	}
}

func (g *generator) users(org model.Organization) []model.User {
	n := max(g.opt.Users, 1)
	out := make([]model.User, 0, n)
	for i := 0; i < n; i++ {
		first, last := g.f.FirstName(), g.f.LastName()
		role := auth.RoleMember
		switch {
		case i == 0:
			role = auth.RoleAdmin
		case i <= 2:
			role = auth.RoleManager
		case i == n-1 && n > 4:
			role = auth.RoleViewer
		}
		status := model.UserStatusActive
		if i > 3 && g.f.Number(1, 10) == 1 {
			status = model.UserStatusInactive
		}
		created := g.opt.Now.AddDate(0, 0, -g.f.Number(30, 180))
		out = append(out, model.User{
			ID:             g.id(),
			Email:          fmt.Sprintf("%s.%s.%d@%s.example.com", model.Slugify(first), model.Slugify(last), i, org.Slug),
			PasswordHash:   g.opt.PasswordHash,
			FirstName:      first,
			LastName:       last,
			Role:           role,
			OrganizationID: org.ID,
			Status:         status,
			Department:     g.f.RandomString(departments),
			Title:          g.f.JobTitle(),
			Skills:         g.skills(),
			CapacityHours:  float64(g.f.RandomInt([]int{32, 40, 40, 40})),
			HourlyRate:     float64(g.f.Number(40, 150)),
			CreatedAt:      created,
			UpdatedAt:      created,
		})
	}
	return out
}

func (g *generator) skills() []model.Skill {
	picked := g.pick(skillPool, g.f.Number(2, 5))
	out := make([]model.Skill, 0, len(picked))
	for _, s := range picked {
		out = append(out, model.Skill{Name: s, Level: g.f.Number(1, 5), YearsExperience: float64(g.f.Number(0, 12))})
	}
	return out
}

// pick returns n distinct elements of pool in pool order.
func (g *generator) pick(pool []string, n int) []string {
	n = min(n, len(pool))
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	g.f.ShuffleInts(idx)
	chosen := make(map[int]bool, n)
	for _, i := range idx[:n] {
		chosen[i] = true
	}
	out := make([]string, 0, n)
	for i, v := range pool {
		if chosen[i] {
			out = append(out, v)
		}
	}
	return out
}

func (g *generator) userIDs(users []model.User, n int) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return g.pick(ids, n)
}

func (g *generator) teams(org model.Organization, users []model.User) []model.Team {
	names := g.pick(teamNames, g.opt.Teams)
	out := make([]model.Team, 0, len(names))
	for _, name := range names {
		members := g.userIDs(users, g.f.Number(2, max(2, len(users)/2)))
		t := model.Team{
			ID:             g.id(),
			Name:           name,
			Description:    g.f.Sentence(8),
			OrganizationID: org.ID,
			LeadID:         members[0],
			CreatedAt:      org.CreatedAt,
			UpdatedAt:      org.CreatedAt,
		}
		for i, id := range members {
			role := "member"
			if i == 0 {
				role = "lead"
			}
			t.Members = append(t.Members, model.TeamMember{UserID: id, Role: role, JoinedAt: org.CreatedAt})
		}
		out = append(out, t)
	}
	return out
}

var projectStatuses = []string{model.ProjectStatusActive, model.ProjectStatusActive, model.ProjectStatusPlanning, model.ProjectStatusOnHold, model.ProjectStatusCompleted}

var priorities = []string{model.PriorityLow, model.PriorityMedium, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical}

func (g *generator) projects(org model.Organization, users []model.User) []model.Project {
	out := make([]model.Project, 0, g.opt.Projects)
	for i := 0; i < g.opt.Projects; i++ {
		start := startOfDay(g.opt.Now.AddDate(0, 0, -g.f.Number(10, 90)))
		due := start.AddDate(0, 0, g.f.Number(60, 180))
		total := float64(g.f.Number(20, 500)) * 1000
		status := projectStatuses[i%len(projectStatuses)]
		progress := float64(g.f.Number(0, 90))
		if status == model.ProjectStatusCompleted {
			progress = 100
		}
		owner := users[min(1+i%2, len(users)-1)].ID
		members := append([]string{owner}, g.userIDs(users, g.f.Number(3, max(3, len(users)-1)))...)
		out = append(out, model.Project{
			ID:             g.id(),
			Name:           g.f.AppName(),
			Description:    g.f.Sentence(15),
			OrganizationID: org.ID,
			OwnerID:        owner,
			Status:         status,
			Priority:       g.f.RandomString(priorities),
			StartDate:      &start,
			DueDate:        &due,
			Budget:         model.Budget{Total: total, Spent: total * progress / 100 * g.f.Float64Range(0.7, 1.3), Currency: "USD"},
			Progress:       progress,
			TeamMembers:    dedupe(members),
			Tags:           g.pick([]string{"q3", "customer", "internal", "compliance", "platform", "revenue"}, 2),
			CreatedAt:      start,
			UpdatedAt:      start,
		})
	}
	return out
}

func (g *generator) tasks(p model.Project, users []model.User) []model.Task {
	out := make([]model.Task, 0, g.opt.TasksPerProject)
	span := int(p.DueDate.Sub(*p.StartDate).Hours() / 24)
	for i := 0; i < g.opt.TasksPerProject; i++ {
		status := g.f.RandomString([]string{
			model.TaskStatusTodo, model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusInReview,
			model.TaskStatusBlocked, model.TaskStatusCompleted, model.TaskStatusCompleted,
		})
		if p.Status == model.ProjectStatusCompleted {
			status = model.TaskStatusCompleted
		}
		est := float64(g.f.Number(2, 40))
		created := p.StartDate.AddDate(0, 0, g.f.Number(0, 10))
		due := p.StartDate.AddDate(0, 0, g.f.Number(7, max(8, span)))
		t := model.Task{
			ID:             g.id(),
			Title:          capitalize(g.f.HackerVerb() + " " + g.f.HackerNoun()),
			Description:    g.f.Sentence(10),
			ProjectID:      p.ID,
			OrganizationID: p.OrganizationID,
			ReporterID:     p.OwnerID,
			Status:         status,
			Priority:       g.f.RandomString(priorities),
			Type:           g.f.RandomString(taskTypes),
			EstimatedHours: est,
			StartDate:      &created,
			DueDate:        &due,
			RequiredSkills: g.pick(skillPool, g.f.Number(0, 2)),
			Dependencies:   []string{},
			Tags:           []string{},
			CreatedAt:      created,
			UpdatedAt:      created,
		}
		if g.f.Number(1, 8) > 1 {
			t.AssigneeID = p.TeamMembers[g.f.Number(0, len(p.TeamMembers)-1)]
		}
		switch status {
		case model.TaskStatusCompleted:
			done := created.AddDate(0, 0, g.f.Number(1, 20))
			if done.After(g.opt.Now) {
				done = g.opt.Now
			}
			t.CompletedAt = &done
			t.ActualHours = round1(est * g.f.Float64Range(0.6, 1.6))
			t.UpdatedAt = done
		case model.TaskStatusInProgress, model.TaskStatusInReview, model.TaskStatusBlocked:
			t.ActualHours = round1(est * g.f.Float64Range(0.1, 0.8))
		}
		if i > 0 && g.f.Number(1, 5) == 1 {
			t.Dependencies = []string{out[g.f.Number(0, i-1)].ID}
		}
		out = append(out, t)
	}
	return out
}

func (g *generator) comments(tasks []model.Task, users []model.User) []model.Comment {
	var out []model.Comment
	for _, t := range tasks {
		for j := g.f.Number(0, 2); j > 0; j-- {
			at := t.CreatedAt.Add(time.Duration(g.f.Number(1, 72)) * time.Hour)
			out = append(out, model.Comment{
				ID:             g.id(),
				EntityType:     model.EntityTask,
				EntityID:       t.ID,
				OrganizationID: t.OrganizationID,
				AuthorID:       users[g.f.Number(0, len(users)-1)].ID,
				Content:        g.f.Sentence(g.f.Number(5, 20)),
				Mentions:       []string{},
				CreatedAt:      at,
				UpdatedAt:      at,
			})
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
