package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/service"
	"portfolioapi/internal/storage"
)

// Dependencies are the collaborators RegisterRoutes wires into handlers.
type Dependencies struct {
	DB      Pinger
	Storage storage.Storage
	Tokens  *auth.TokenManager
	Metrics prometheus.Gatherer

	Auth          service.AuthService
	Users         service.UserService
	Organizations service.OrganizationService
	Projects      service.ProjectService
	Tasks         service.TaskService
	Teams         service.TeamService
	Comments      service.CommentService
	Files         service.FileService
	Notifications service.NotificationService
	Roles         service.RoleService
	Analytics     service.AnalyticsService
	Integrations  service.IntegrationService
	Audit         service.AuditService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", HealthCheck(d.DB, d.Storage))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	session := api.Group("/auth")
	session.Post("/register", Register(d.Auth))
	session.Post("/login", Login(d.Auth))
	session.Post("/refresh", Refresh(d.Auth))

	authn := middleware.Authenticate(d.Tokens, d.Auth)
	// Each group authenticates on its own prefix so /api/auth stays public.
	authed := func(prefix string, extra ...fiber.Handler) fiber.Router {
		return api.Group(prefix, append([]fiber.Handler{authn}, extra...)...)
	}
	can := func(perms ...string) fiber.Handler { return middleware.RequirePermission(d.Roles, perms...) }

	session.Get("/me", authn, Me(d.Auth))
	session.Put("/password", authn, ChangePassword(d.Auth))

	orgs := authed("/organizations")
	orgs.Post("/", CreateOrganization(d.Organizations))
	orgs.Get("/current", CurrentOrganization(d.Organizations))
	orgs.Put("/current", can(auth.PermOrgManage), UpdateOrganization(d.Organizations))
	orgs.Delete("/current", DeleteOrganization(d.Organizations))
	orgs.Get("/current/members", can(auth.PermUsersRead), ListMembers(d.Organizations))
	orgs.Get("/:id", GetOrganization(d.Organizations))

	users := authed("/users")
	users.Get("/", can(auth.PermUsersRead), ListUsers(d.Users))
	users.Get("/join-requests", can(auth.PermUsersManage), ListJoinRequests(d.Users))
	users.Get("/:id", can(auth.PermUsersRead), GetUser(d.Users))
	users.Put("/:id", middleware.SelfOrPermission(d.Roles, "id", auth.PermUsersManage), UpdateUser(d.Users))
	users.Patch("/:id/status", can(auth.PermUsersManage), UpdateUserStatus(d.Users))
	users.Put("/:id/role", can(auth.PermUsersManage), AssignUserRole(d.Users))
	users.Delete("/:id", can(auth.PermUsersManage), DeleteUser(d.Users))
	users.Post("/:id/skill-gaps", can(auth.PermAnalyticsRead), SkillGaps(d.Analytics))

	projects := authed("/projects")
	projects.Get("/", can(auth.PermProjectsRead), ListProjects(d.Projects))
	projects.Post("/", can(auth.PermProjectsWrite), CreateProject(d.Projects))
	projects.Get("/:id", can(auth.PermProjectsRead), GetProject(d.Projects))
	projects.Put("/:id", can(auth.PermProjectsWrite), UpdateProject(d.Projects))
	projects.Delete("/:id", can(auth.PermProjectsDelete), DeleteProject(d.Projects))
	projects.Get("/:id/stats", can(auth.PermProjectsRead), ProjectStats(d.Projects))
	projects.Get("/:id/forecast", can(auth.PermAnalyticsRead), ForecastProject(d.Analytics))
	projects.Get("/:id/risk", can(auth.PermAnalyticsRead), ProjectRisk(d.Analytics))
	projects.Get("/:id/insights", can(auth.PermAnalyticsRead), ProjectInsights(d.Analytics))
	projects.Get("/:id/task-suggestions", can(auth.PermAnalyticsRead), SuggestTasks(d.Analytics))

	tasks := authed("/tasks")
	tasks.Get("/", can(auth.PermTasksRead), ListTasks(d.Tasks))
	tasks.Post("/", can(auth.PermTasksWrite), CreateTask(d.Tasks))
	tasks.Get("/:id", can(auth.PermTasksRead), GetTask(d.Tasks))
	tasks.Put("/:id", can(auth.PermTasksWrite), UpdateTask(d.Tasks))
	tasks.Patch("/:id/status", can(auth.PermTasksWrite), UpdateTaskStatus(d.Tasks))
	tasks.Put("/:id/assignee", can(auth.PermTasksWrite), AssignTask(d.Tasks))
	tasks.Delete("/:id", can(auth.PermTasksDelete), DeleteTask(d.Tasks))

	teams := authed("/teams")
	teams.Get("/", can(auth.PermTeamsRead), ListTeams(d.Teams))
	teams.Post("/", can(auth.PermTeamsManage), CreateTeam(d.Teams))
	teams.Get("/:id", can(auth.PermTeamsRead), GetTeam(d.Teams))
	teams.Put("/:id", can(auth.PermTeamsManage), UpdateTeam(d.Teams))
	teams.Delete("/:id", can(auth.PermTeamsManage), DeleteTeam(d.Teams))
	teams.Post("/:id/members", can(auth.PermTeamsManage), AddTeamMember(d.Teams))
	teams.Delete("/:id/members/:userId", can(auth.PermTeamsManage), RemoveTeamMember(d.Teams))

	comments := authed("/comments")
	comments.Get("/", can(auth.PermProjectsRead), ListComments(d.Comments))
	comments.Post("/", can(auth.PermTasksWrite), CreateComment(d.Comments))
	comments.Put("/:id", can(auth.PermTasksWrite), UpdateComment(d.Comments))
	comments.Delete("/:id", can(auth.PermTasksWrite), DeleteComment(d.Comments))

	files := authed("/files")
	files.Get("/", can(auth.PermFilesRead), ListFiles(d.Files))
	files.Post("/", can(auth.PermFilesWrite), UploadFile(d.Files))
	files.Get("/:id", can(auth.PermFilesRead), GetFile(d.Files))
	files.Get("/:id/download", can(auth.PermFilesRead), FileDownloadURL(d.Files))
	files.Get("/:id/content", can(auth.PermFilesRead), FileContent(d.Files))
	files.Delete("/:id", can(auth.PermFilesWrite), DeleteFile(d.Files))

	notes := authed("/notifications")
	notes.Get("/", ListNotifications(d.Notifications))
	notes.Get("/unread-count", UnreadCount(d.Notifications))
	notes.Post("/read-all", MarkAllNotificationsRead(d.Notifications))
	notes.Patch("/:id/read", MarkNotificationRead(d.Notifications))
	notes.Delete("/:id", DeleteNotification(d.Notifications))

	roles := authed("/roles")
	roles.Get("/", can(auth.PermUsersRead), ListRoles(d.Roles))
	roles.Get("/permissions", can(auth.PermUsersRead), ListPermissions(d.Roles))
	roles.Post("/", can(auth.PermRolesManage), CreateRole(d.Roles))
	roles.Get("/:id", can(auth.PermUsersRead), GetRole(d.Roles))
	roles.Put("/:id", can(auth.PermRolesManage), UpdateRole(d.Roles))
	roles.Delete("/:id", can(auth.PermRolesManage), DeleteRole(d.Roles))

	an := authed("/analytics", can(auth.PermAnalyticsRead))
	an.Get("/workload", Workload(d.Analytics))
	an.Post("/skill-match", MatchSkills(d.Analytics))
	an.Get("/capacity", Capacity(d.Analytics))
	an.Get("/conflicts", Conflicts(d.Analytics))
	an.Get("/optimize", Optimize(d.Analytics))
	an.Post("/predict/duration", PredictDuration(d.Analytics))
	an.Post("/skills/assess", AssessSkills(d.Analytics))

	integ := authed("/integrations")
	integ.Get("/catalog", IntegrationCatalog(d.Integrations))
	integ.Get("/", can(auth.PermIntegrationsManage), ListIntegrations(d.Integrations))
	integ.Put("/:provider", can(auth.PermIntegrationsManage), SetupIntegration(d.Integrations))
	integ.Post("/:provider/test", can(auth.PermIntegrationsManage), TestIntegration(d.Integrations))
	integ.Post("/:provider/notify", can(auth.PermIntegrationsManage), NotifyIntegration(d.Integrations))
	integ.Post("/:provider/sync", can(auth.PermIntegrationsManage), SyncIntegration(d.Integrations))
	integ.Delete("/:provider", can(auth.PermIntegrationsManage), DisconnectIntegration(d.Integrations))

	authed("/audit").Get("/", can(auth.PermAuditRead), ListAuditEvents(d.Audit))
}
