package service

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

type UserFilter struct {
	Status     string
	Role       string
	Department string
}

type UpdateUserInput struct {
	FirstName     *string        `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName      *string        `json:"last_name" validate:"omitempty,min=1,max=100"`
	Department    *string        `json:"department" validate:"omitempty,max=100"`
	Title         *string        `json:"title" validate:"omitempty,max=100"`
	Skills        *[]model.Skill `json:"skills"`
	CapacityHours *float64       `json:"capacity_hours" validate:"omitempty,gte=0,lte=168"`
	HourlyRate    *float64       `json:"hourly_rate" validate:"omitempty,gte=0"`
}

var userStatuses = []string{model.UserStatusPending, model.UserStatusActive, model.UserStatusInactive, model.UserStatusSuspended}

// UserService manages members of the actor's organization.
type UserService interface {
	List(ctx context.Context, f UserFilter, p Page) (*ListResult[model.User], error)
	// JoinRequests lists self-registered accounts waiting to join the organization.
	JoinRequests(ctx context.Context, p Page) (*ListResult[model.User], error)
	Get(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error)
	// UpdateStatus also answers join requests: active admits the applicant,
	// any other status declines the request.
	UpdateStatus(ctx context.Context, id, status string) (*model.User, error)
	AssignRole(ctx context.Context, id, role string) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users repository.UserRepository
	orgs  repository.OrganizationRepository
	roles repository.RoleRepository
	audit auditor
}

func NewUserService(r Repositories, rec audit.Recorder, log *zap.Logger) UserService {
	return &userService{users: r.Users, orgs: r.Organizations, roles: r.Roles, audit: newAuditor(rec, log)}
}

func userOrg(u *model.User) string { return u.OrganizationID }

func (s *userService) List(ctx context.Context, f UserFilter, p Page) (*ListResult[model.User], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	filter := repository.Filter{"organization_id": a.OrgID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	pq := p.query()
	res, err := s.users.List(ctx, filter, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *userService) JoinRequests(ctx context.Context, p Page) (*ListResult[model.User], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	pq := p.query()
	res, err := s.users.List(ctx, repository.Filter{"requested_organization_id": a.OrgID, "organization_id": ""}, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return inOrg(ctx, s.users, id, a.OrgID, userOrg)
}

func (s *userService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if _, err := inOrg(ctx, s.users, id, a.OrgID, userOrg); err != nil {
		return nil, err
	}

	set := repository.Fields{"updated_at": now()}
	if in.FirstName != nil {
		set["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		set["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Department != nil {
		set["department"] = *in.Department
	}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Skills != nil {
		skills, err := normalizeSkills(*in.Skills)
		if err != nil {
			return nil, err
		}
		set["skills"] = skills
	}
	if in.CapacityHours != nil {
		set["capacity_hours"] = *in.CapacityHours
	}
	if in.HourlyRate != nil {
		set["hourly_rate"] = *in.HourlyRate
	}

	u, err := s.users.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "user", id, nil)
	return u, nil
}

func normalizeSkills(in []model.Skill) ([]model.Skill, error) {
	out := make([]model.Skill, 0, len(in))
	seen := map[string]bool{}
	for _, sk := range in {
		name := strings.TrimSpace(sk.Name)
		if name == "" {
			return nil, invalid("skill name is required")
		}
		if sk.Level < 1 || sk.Level > 5 {
			return nil, invalid("skill %s level must be between 1 and 5", name)
		}
		if sk.YearsExperience < 0 {
			return nil, invalid("skill %s years_experience must be at least 0", name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, invalid("skill %s is listed twice", name)
		}
		seen[key] = true
		sk.Name = name
		out = append(out, sk)
	}
	return out, nil
}

func (s *userService) UpdateStatus(ctx context.Context, id, status string) (*model.User, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(userStatuses, status) {
		return nil, invalid("status must be one of [%s]", strings.Join(userStatuses, " "))
	}
	if id == a.UserID && status != model.UserStatusActive {
		return nil, invalid("you cannot deactivate your own account")
	}
	target, err := s.memberOrApplicant(ctx, id, a.OrgID)
	if err != nil {
		return nil, err
	}

	set := repository.Fields{"status": status, "updated_at": now()}
	meta := map[string]any{"status": status}
	if target.OrganizationID == "" {
		if status == model.UserStatusActive {
			set["organization_id"] = a.OrgID
			meta["join_request"] = "approved"
		} else {
			set = repository.Fields{"updated_at": now()}
			meta = map[string]any{"join_request": "declined"}
		}
		set["requested_organization_id"] = ""
	}
	u, err := s.users.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "user", id, meta)
	return u, nil
}

// memberOrApplicant loads a member of orgID or an account whose join request
// targets it.
func (s *userService) memberOrApplicant(ctx context.Context, id, orgID string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	switch {
	case u.OrganizationID == orgID:
		return u, nil
	case u.OrganizationID == "" && u.RequestedOrganizationID == orgID:
		return u, nil
	}
	return nil, ErrNotFound
}

// AssignRole sets a system or custom role. Only admins may grant admin roles.
func (s *userService) AssignRole(ctx context.Context, id, role string) (*model.User, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, invalid("role is required")
	}
	if role == auth.RoleSuperAdmin && a.Role != auth.RoleSuperAdmin {
		return nil, ErrForbidden
	}
	if auth.IsAdmin(role) && !auth.IsAdmin(a.Role) {
		return nil, ErrForbidden
	}
	if !auth.IsSystemRole(role) {
		if _, err := s.roles.FindOne(ctx, repository.Filter{"organization_id": a.OrgID, "name": role}); err != nil {
			if mapRepoErr(err) == ErrNotFound {
				return nil, invalid("role %s does not exist", role)
			}
			return nil, err
		}
	}
	target, err := inOrg(ctx, s.users, id, a.OrgID, userOrg)
	if err != nil {
		return nil, err
	}
	if s.isOwner(ctx, target) && role != auth.RoleAdmin && role != auth.RoleSuperAdmin {
		return nil, invalid("the organization owner must keep an admin role")
	}
	u, err := s.users.Update(ctx, id, repository.Fields{"role": role, "updated_at": now()})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "user", id, map[string]any{"role": role})
	return u, nil
}

func (s *userService) isOwner(ctx context.Context, u *model.User) bool {
	org, err := s.orgs.FindByID(ctx, u.OrganizationID)
	return err == nil && org.OwnerID == u.ID
}

func (s *userService) Delete(ctx context.Context, id string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	if id == a.UserID {
		return invalid("you cannot delete your own account")
	}
	target, err := inOrg(ctx, s.users, id, a.OrgID, userOrg)
	if err != nil {
		return err
	}
	if s.isOwner(ctx, target) {
		return invalid("the organization owner cannot be deleted")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "user", id, nil)
	return nil
}
