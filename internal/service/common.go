package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

func newID() string { return uuid.New().String() }

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is limit/offset pagination. Zero values mean defaults.
type Page struct {
	Limit  int
	Offset int
	Sort   string
}

func (p Page) query() repository.PageQuery {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return repository.PageQuery{Limit: p.Limit, Offset: p.Offset, Sort: p.Sort}
}

// ListResult is the service-level DTO for paginated lists.
type ListResult[T any] struct {
	Items  []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func listResult[T any](res *repository.PageResult[T], pq repository.PageQuery) *ListResult[T] {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{Items: items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}
}

// Repositories bundles the stores services read and write.
type Repositories struct {
	Users         repository.UserRepository
	Organizations repository.OrganizationRepository
	Projects      repository.ProjectRepository
	Tasks         repository.TaskRepository
	Teams         repository.TeamRepository
	Comments      repository.CommentRepository
	Files         repository.FileRepository
	Notifications repository.NotificationRepository
	Roles         repository.RoleRepository
	Integrations  repository.IntegrationRepository
}

// actorFrom returns the authenticated actor or ErrUnauthorized.
func actorFrom(ctx context.Context) (auth.Actor, error) {
	a, ok := auth.ActorFrom(ctx)
	if !ok {
		return auth.Actor{}, ErrUnauthorized
	}
	return a, nil
}

// orgActor is actorFrom for operations that need an organization.
func orgActor(ctx context.Context) (auth.Actor, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return a, err
	}
	if a.OrgID == "" {
		return a, ErrForbidden
	}
	return a, nil
}

// inOrg loads id from store and hides documents of other organizations.
func inOrg[T any](ctx context.Context, store repository.Store[T], id, orgID string, org func(*T) string) (*T, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if org(doc) != orgID {
		return nil, ErrNotFound
	}
	return doc, nil
}

// auditor records mutations. Failures are logged and swallowed.
type auditor struct {
	rec audit.Recorder
	log *zap.Logger
}

func newAuditor(rec audit.Recorder, log *zap.Logger) auditor {
	if rec == nil {
		rec = audit.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return auditor{rec: rec, log: log}
}

func (a auditor) record(ctx context.Context, actor auth.Actor, action, resourceType, resourceID string, meta map[string]any) {
	err := a.rec.Record(ctx, audit.Event{
		ID:             newID(),
		OrganizationID: actor.OrgID,
		ActorID:        actor.UserID,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Metadata:       meta,
		CreatedAt:      now(),
	})
	if err != nil {
		a.log.Warn("audit record failed",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
	}
}

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, model.Notification) error { return nil }

// notify sends n to every recipient except skip. Failures are logged.
func notify(ctx context.Context, nf Notifier, log *zap.Logger, n model.Notification, recipients []string, skip string) {
	seen := map[string]bool{skip: true, "": true}
	for _, uid := range recipients {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		n.UserID = uid
		if err := nf.Notify(ctx, n); err != nil {
			log.Warn("notification failed", zap.String("user_id", uid), zap.String("type", n.Type), zap.Error(err))
		}
	}
}
