package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type UpdateRoleInput struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Permissions *[]string `json:"permissions" validate:"omitempty,min=1"`
}

// PermissionInfo describes one grantable permission.
type PermissionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleService manages custom roles and resolves role permissions.
type RoleService interface {
	auth.PermissionResolver
	// List returns the system roles followed by the organization's custom roles.
	List(ctx context.Context) ([]model.CustomRole, error)
	Create(ctx context.Context, in RoleInput) (*model.CustomRole, error)
	// Get accepts a custom role id or a system role name.
	Get(ctx context.Context, id string) (*model.CustomRole, error)
	Update(ctx context.Context, id string, in UpdateRoleInput) (*model.CustomRole, error)
	Delete(ctx context.Context, id string) error
	AvailablePermissions() []PermissionInfo
}

type roleService struct {
	roles repository.RoleRepository
	users repository.UserRepository
	audit auditor
}

func NewRoleService(r Repositories, rec audit.Recorder, log *zap.Logger) RoleService {
	return &roleService{roles: r.Roles, users: r.Users, audit: newAuditor(rec, log)}
}

func roleOrg(r *model.CustomRole) string { return r.OrganizationID }

func systemRole(name string) model.CustomRole {
	perms, _ := auth.SystemPermissions(name)
	return model.CustomRole{
		ID:          name,
		Name:        name,
		Description: "Built-in " + strings.ReplaceAll(name, "_", " ") + " role",
		Permissions: perms,
		IsSystem:    true,
	}
}

// Permissions implements auth.PermissionResolver.
func (s *roleService) Permissions(ctx context.Context, role, orgID string) ([]string, error) {
	if perms, ok := auth.SystemPermissions(role); ok {
		return perms, nil
	}
	if orgID == "" {
		return nil, nil
	}
	r, err := s.roles.FindOne(ctx, repository.Filter{"organization_id": orgID, "name": role})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.Permissions, nil
}

func (s *roleService) List(ctx context.Context) ([]model.CustomRole, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.CustomRole, 0, 8)
	for _, name := range auth.SystemRoleNames() {
		out = append(out, systemRole(name))
	}
	custom, err := s.roles.FindAll(ctx, repository.Filter{"organization_id": a.OrgID})
	if err != nil {
		return nil, err
	}
	sort.Slice(custom, func(i, j int) bool { return custom[i].Name < custom[j].Name })
	return append(out, custom...), nil
}

func checkPermissions(perms []string) ([]string, error) {
	out := dedupe(perms)
	for _, p := range out {
		if !auth.ValidPermission(p) {
			return nil, invalid("unknown permission %s", p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func normalizeRoleName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", invalid("name is required")
	}
	if auth.IsSystemRole(name) {
		return "", invalid("%s is a reserved role name", name)
	}
	return name, nil
}

func (s *roleService) Create(ctx context.Context, in RoleInput) (*model.CustomRole, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	name, err := normalizeRoleName(in.Name)
	if err != nil {
		return nil, err
	}
	perms, err := checkPermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	if err := s.nameFree(ctx, a.OrgID, name); err != nil {
		return nil, err
	}

	ts := now()
	r, err := s.roles.Create(ctx, &model.CustomRole{
		ID:             newID(),
		OrganizationID: a.OrgID,
		Name:           name,
		Description:    in.Description,
		Permissions:    perms,
		CreatedBy:      a.UserID,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionCreate, "role", r.ID, map[string]any{"name": r.Name})
	return r, nil
}

func (s *roleService) nameFree(ctx context.Context, orgID, name string) error {
	_, err := s.roles.FindOne(ctx, repository.Filter{"organization_id": orgID, "name": name})
	switch {
	case err == nil:
		return ErrConflict
	case errors.Is(err, repository.ErrNotFound):
		return nil
	}
	return err
}

func (s *roleService) Get(ctx context.Context, id string) (*model.CustomRole, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if auth.IsSystemRole(id) {
		r := systemRole(id)
		return &r, nil
	}
	return inOrg(ctx, s.roles, id, a.OrgID, roleOrg)
}

func (s *roleService) Update(ctx context.Context, id string, in UpdateRoleInput) (*model.CustomRole, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if auth.IsSystemRole(id) {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.roles, id, a.OrgID, roleOrg)
	if err != nil {
		return nil, err
	}

	ts := now()
	set := repository.Fields{"updated_at": ts}
	rename := ""
	if in.Name != nil {
		name, err := normalizeRoleName(*in.Name)
		if err != nil {
			return nil, err
		}
		if name != cur.Name {
			if err := s.nameFree(ctx, a.OrgID, name); err != nil {
				return nil, err
			}
			set["name"] = name
			rename = name
		}
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Permissions != nil {
		perms, err := checkPermissions(*in.Permissions)
		if err != nil {
			return nil, err
		}
		set["permissions"] = perms
	}
	r, err := s.roles.Update(ctx, id, set)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if rename != "" {
		if _, err := s.users.UpdateMany(ctx,
			repository.Filter{"organization_id": a.OrgID, "role": cur.Name},
			repository.Fields{"role": rename, "updated_at": ts},
		); err != nil {
			return nil, err
		}
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "role", id, nil)
	return r, nil
}

func (s *roleService) Delete(ctx context.Context, id string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	if auth.IsSystemRole(id) {
		return ErrForbidden
	}
	cur, err := inOrg(ctx, s.roles, id, a.OrgID, roleOrg)
	if err != nil {
		return err
	}
	n, err := s.users.Count(ctx, repository.Filter{"organization_id": a.OrgID, "role": cur.Name})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "role", id, map[string]any{"name": cur.Name})
	return nil
}

func (s *roleService) AvailablePermissions() []PermissionInfo {
	all := auth.All()
	out := make([]PermissionInfo, 0, len(all))
	for _, p := range all {
		out = append(out, PermissionInfo{Name: p, Description: auth.Describe(p)})
	}
	return out
}
