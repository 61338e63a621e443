package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

type CreateOrganizationInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Industry    string `json:"industry" validate:"max=100"`
	Size        string `json:"size" validate:"max=50"`
}

type UpdateOrganizationInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Industry    *string `json:"industry" validate:"omitempty,max=100"`
	Size        *string `json:"size" validate:"omitempty,max=50"`
}

// OrganizationService manages the tenant the actor belongs to.
type OrganizationService interface {
	// Create makes the actor owner and admin of a new organization and drops
	// any pending join request.
	Create(ctx context.Context, in CreateOrganizationInput) (*model.Organization, error)
	Get(ctx context.Context, id string) (*model.Organization, error)
	Current(ctx context.Context) (*model.Organization, error)
	Update(ctx context.Context, in UpdateOrganizationInput) (*model.Organization, error)
	// Delete removes the organization and everything scoped to it. Members are detached, not deleted.
	Delete(ctx context.Context) error
	Members(ctx context.Context, p Page) (*ListResult[model.User], error)
}

type organizationService struct {
	r     Repositories
	audit auditor
	log   *zap.Logger
}

func NewOrganizationService(r Repositories, rec audit.Recorder, log *zap.Logger) OrganizationService {
	return &organizationService{r: r, audit: newAuditor(rec, log), log: log}
}

func (s *organizationService) Create(ctx context.Context, in CreateOrganizationInput) (*model.Organization, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	u, err := s.r.Users.FindByID(ctx, a.UserID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if u.OrganizationID != "" {
		return nil, ErrConflict
	}

	slug := model.Slugify(in.Slug)
	if slug == "" {
		slug = model.Slugify(in.Name)
	}
	if slug == "" {
		return nil, invalid("slug must contain letters or digits")
	}
	if _, err := s.r.Organizations.FindOne(ctx, repository.Filter{"slug": slug}); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	ts := now()
	org, err := s.r.Organizations.Create(ctx, &model.Organization{
		ID:          newID(),
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Industry:    in.Industry,
		Size:        in.Size,
		OwnerID:     u.ID,
		Status:      "active",
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if _, err := s.r.Users.Update(ctx, u.ID, repository.Fields{
		"organization_id": org.ID,
		"role":            auth.RoleAdmin,
		"status":          model.UserStatusActive,
		"updated_at":      ts,

		"requested_organization_id": "",
	}); err != nil {
		if delErr := s.r.Organizations.Delete(ctx, org.ID); delErr != nil {
			s.log.Error("rollback organization failed", zap.String("organization_id", org.ID), zap.Error(delErr))
		}
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, auth.Actor{UserID: u.ID, OrgID: org.ID, Role: auth.RoleAdmin}, audit.ActionCreate, "organization", org.ID, nil)
	return org, nil
}

func (s *organizationService) Get(ctx context.Context, id string) (*model.Organization, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	if id != a.OrgID {
		return nil, ErrNotFound
	}
	org, err := s.r.Organizations.FindByID(ctx, id)
	return org, mapRepoErr(err)
}

func (s *organizationService) Current(ctx context.Context) (*model.Organization, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, a.OrgID)
}

func (s *organizationService) Update(ctx context.Context, in UpdateOrganizationInput) (*model.Organization, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	set := repository.Fields{"updated_at": now()}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Industry != nil {
		set["industry"] = *in.Industry
	}
	if in.Size != nil {
		set["size"] = *in.Size
	}
	org, err := s.r.Organizations.Update(ctx, a.OrgID, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "organization", org.ID, nil)
	return org, nil
}

func (s *organizationService) Delete(ctx context.Context) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	org, err := s.r.Organizations.FindByID(ctx, a.OrgID)
	if err != nil {
		return mapRepoErr(err)
	}
	if org.OwnerID != a.UserID {
		return ErrForbidden
	}

	byOrg := repository.Filter{"organization_id": org.ID}
	steps := []struct {
		name string
		run  func() (int, error)
	}{
		{"comments", func() (int, error) { return s.r.Comments.DeleteMany(ctx, byOrg) }},
		{"files", func() (int, error) { return s.r.Files.DeleteMany(ctx, byOrg) }},
		{"tasks", func() (int, error) { return s.r.Tasks.DeleteMany(ctx, byOrg) }},
		{"projects", func() (int, error) { return s.r.Projects.DeleteMany(ctx, byOrg) }},
		{"teams", func() (int, error) { return s.r.Teams.DeleteMany(ctx, byOrg) }},
		{"notifications", func() (int, error) { return s.r.Notifications.DeleteMany(ctx, byOrg) }},
		{"roles", func() (int, error) { return s.r.Roles.DeleteMany(ctx, byOrg) }},
		{"integrations", func() (int, error) { return s.r.Integrations.DeleteMany(ctx, byOrg) }},
		{"users", func() (int, error) {
			return s.r.Users.UpdateMany(ctx, byOrg, repository.Fields{
				"organization_id": "",
				"role":            auth.RoleMember,
				"updated_at":      now(),
			})
		}},
	}
	removed := map[string]any{}
	for _, st := range steps {
		n, err := st.run()
		if err != nil {
			return err
		}
		removed[st.name] = n
	}
	if err := s.r.Organizations.Delete(ctx, org.ID); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "organization", org.ID, removed)
	return nil
}

func (s *organizationService) Members(ctx context.Context, p Page) (*ListResult[model.User], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	pq := p.query()
	res, err := s.r.Users.List(ctx, repository.Filter{"organization_id": a.OrgID}, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}
