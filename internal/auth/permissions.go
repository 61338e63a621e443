package auth

import (
	"context"
	"slices"
	"sort"
)

// Permissions.
const (
	PermUsersRead          = "users.read"
	PermUsersManage        = "users.manage"
	PermOrgManage          = "org.manage"
	PermProjectsRead       = "projects.read"
	PermProjectsWrite      = "projects.write"
	PermProjectsDelete     = "projects.delete"
	PermTasksRead          = "tasks.read"
	PermTasksWrite         = "tasks.write"
	PermTasksDelete        = "tasks.delete"
	PermTeamsRead          = "teams.read"
	PermTeamsManage        = "teams.manage"
	PermFilesRead          = "files.read"
	PermFilesWrite         = "files.write"
	PermRolesManage        = "roles.manage"
	PermIntegrationsManage = "integrations.manage"
	PermAnalyticsRead      = "analytics.read"
	PermAuditRead          = "audit.read"
)

// System roles.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleMember     = "member"
	RoleViewer     = "viewer"
)

var catalog = map[string]string{
	PermUsersRead:          "View users of the organization",
	PermUsersManage:        "Edit, suspend and delete users",
	PermOrgManage:          "Edit the organization",
	PermProjectsRead:       "View projects",
	PermProjectsWrite:      "Create and edit projects",
	PermProjectsDelete:     "Delete projects",
	PermTasksRead:          "View tasks",
	PermTasksWrite:         "Create, edit and assign tasks",
	PermTasksDelete:        "Delete tasks",
	PermTeamsRead:          "View teams",
	PermTeamsManage:        "Create teams and manage members",
	PermFilesRead:          "View and download files",
	PermFilesWrite:         "Upload and delete files",
	PermRolesManage:        "Manage custom roles",
	PermIntegrationsManage: "Connect and use integrations",
	PermAnalyticsRead:      "View resource analytics and predictions",
	PermAuditRead:          "View the audit log",
}

var readOnly = []string{
	PermUsersRead, PermProjectsRead, PermTasksRead, PermTeamsRead, PermFilesRead,
}

var systemRoles = map[string][]string{
	RoleSuperAdmin: All(),
	RoleAdmin:      All(),
	RoleManager: append(slices.Clone(readOnly),
		PermProjectsWrite, PermProjectsDelete, PermTasksWrite, PermTasksDelete,
		PermTeamsManage, PermFilesWrite, PermIntegrationsManage, PermAnalyticsRead,
	),
	RoleMember: append(slices.Clone(readOnly), PermTasksWrite, PermFilesWrite),
	RoleViewer: slices.Clone(readOnly),
}

// All returns every known permission, sorted.
func All() []string {
	out := make([]string, 0, len(catalog))
	for p := range catalog {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Describe returns the human readable description of p.
func Describe(p string) string { return catalog[p] }

// ValidPermission reports whether p is in the catalog.
func ValidPermission(p string) bool {
	_, ok := catalog[p]
	return ok
}

// IsSystemRole reports whether name is a built-in role.
func IsSystemRole(name string) bool {
	_, ok := systemRoles[name]
	return ok
}

// SystemRoleNames lists built-in roles from most to least privileged.
func SystemRoleNames() []string {
	return []string{RoleSuperAdmin, RoleAdmin, RoleManager, RoleMember, RoleViewer}
}

// SystemPermissions returns the permission set of a built-in role.
func SystemPermissions(role string) ([]string, bool) {
	p, ok := systemRoles[role]
	return slices.Clone(p), ok
}

// IsAdmin reports whether role bypasses ownership checks.
func IsAdmin(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdmin
}

// HasPermission reports whether perm is in granted.
func HasPermission(granted []string, perm string) bool {
	return slices.Contains(granted, perm)
}

// PermissionResolver resolves the permissions of a (possibly custom) role in an organization.
type PermissionResolver interface {
	Permissions(ctx context.Context, role, orgID string) ([]string, error)
}
