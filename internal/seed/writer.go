package seed

import (
	"context"
	"errors"
	"fmt"

	"portfolioapi/internal/repository"
)

// Sink is the set of stores a dataset is written to.
type Sink struct {
	Organizations repository.OrganizationRepository
	Users         repository.UserRepository
	Teams         repository.TeamRepository
	Projects      repository.ProjectRepository
	Tasks         repository.TaskRepository
	Comments      repository.CommentRepository
	Notifications repository.NotificationRepository
	Files         repository.FileRepository
}

// Counts reports how many documents were written or removed.
type Counts map[string]int

// Write inserts every document of ds.
func Write(ctx context.Context, s Sink, ds Dataset) (Counts, error) {
	c := Counts{}
	if _, err := s.Organizations.Create(ctx, &ds.Organization); err != nil {
		return c, fmt.Errorf("create organization: %w", err)
	}
	c["organizations"] = 1

	steps := []struct {
		name string
		run  func() (int, error)
	}{
		{"users", func() (int, error) { return createAll(ctx, s.Users, ds.Users) }},
		{"teams", func() (int, error) { return createAll(ctx, s.Teams, ds.Teams) }},
		{"projects", func() (int, error) { return createAll(ctx, s.Projects, ds.Projects) }},
		{"tasks", func() (int, error) { return createAll(ctx, s.Tasks, ds.Tasks) }},
		{"comments", func() (int, error) { return createAll(ctx, s.Comments, ds.Comments) }},
	}
	for _, st := range steps {
		n, err := st.run()
		c[st.name] = n
		if err != nil {
			return c, fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return c, nil
}

func createAll[T any](ctx context.Context, store repository.Store[T], items []T) (int, error) {
	for i := range items {
		if _, err := store.Create(ctx, &items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// Reset removes the organization with the given slug and everything it owns.
// A missing organization is not an error.
func Reset(ctx context.Context, s Sink, slug string) (Counts, error) {
	c := Counts{}
	org, err := s.Organizations.FindOne(ctx, repository.Filter{"slug": slug})
	if errors.Is(err, repository.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return c, err
	}

	byOrg := repository.Filter{"organization_id": org.ID}
	steps := []struct {
		name string
		run  func() (int, error)
	}{
		{"comments", func() (int, error) { return s.Comments.DeleteMany(ctx, byOrg) }},
		{"tasks", func() (int, error) { return s.Tasks.DeleteMany(ctx, byOrg) }},
		{"projects", func() (int, error) { return s.Projects.DeleteMany(ctx, byOrg) }},
		{"teams", func() (int, error) { return s.Teams.DeleteMany(ctx, byOrg) }},
		{"notifications", func() (int, error) { return s.Notifications.DeleteMany(ctx, byOrg) }},
		{"files", func() (int, error) { return s.Files.DeleteMany(ctx, byOrg) }},
		{"users", func() (int, error) { return s.Users.DeleteMany(ctx, byOrg) }},
	}
	for _, st := range steps {
		n, err := st.run()
		if err != nil {
			return c, fmt.Errorf("delete %s: %w", st.name, err)
		}
		c[st.name] = n
	}
	if err := s.Organizations.Delete(ctx, org.ID); err != nil {
		return c, fmt.Errorf("delete organization: %w", err)
	}
	c["organizations"] = 1
	return c, nil
}

// OrganizationSlug is the slug Generate assigns for opt.
func OrganizationSlug(opt Options) string {
	return Generate(Options{Seed: opt.Seed, Now: opt.Now, Users: 1}).Organization.Slug
}
