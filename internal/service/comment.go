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

type CreateCommentInput struct {
	EntityType string   `json:"entity_type" validate:"required,oneof=project task"`
	EntityID   string   `json:"entity_id" validate:"required"`
	Content    string   `json:"content" validate:"required,max=10000"`
	ParentID   string   `json:"parent_id"`
	Mentions   []string `json:"mentions"`
}

type UpdateCommentInput struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// CommentService manages discussion threads on projects and tasks.
type CommentService interface {
	List(ctx context.Context, entityType, entityID string, p Page) (*ListResult[model.Comment], error)
	Create(ctx context.Context, in CreateCommentInput) (*model.Comment, error)
	Update(ctx context.Context, id string, in UpdateCommentInput) (*model.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentService struct {
	r      Repositories
	notify Notifier
	audit  auditor
	log    *zap.Logger
}

func NewCommentService(r Repositories, nf Notifier, rec audit.Recorder, log *zap.Logger) CommentService {
	if nf == nil {
		nf = noopNotifier{}
	}
	return &commentService{r: r, notify: nf, audit: newAuditor(rec, log), log: log}
}

func commentOrg(c *model.Comment) string { return c.OrganizationID }

// entityRef is the minimum needed to notify about a commented entity.
type entityRef struct {
	title      string
	assigneeID string
}

// resolveEntity checks that the project or task exists in orgID. It is shared with files.
func resolveEntity(ctx context.Context, r Repositories, orgID, entityType, entityID string) (entityRef, error) {
	switch entityType {
	case model.EntityProject:
		p, err := inOrg(ctx, r.Projects, entityID, orgID, projectOrg)
		if err != nil {
			return entityRef{}, err
		}
		return entityRef{title: p.Name}, nil
	case model.EntityTask:
		t, err := inOrg(ctx, r.Tasks, entityID, orgID, taskOrg)
		if err != nil {
			return entityRef{}, err
		}
		return entityRef{title: t.Title, assigneeID: t.AssigneeID}, nil
	}
	return entityRef{}, invalid("entity_type must be one of [project task]")
}

func (s *commentService) List(ctx context.Context, entityType, entityID string, p Page) (*ListResult[model.Comment], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := resolveEntity(ctx, s.r, a.OrgID, entityType, entityID); err != nil {
		return nil, err
	}
	if p.Sort == "" {
		p.Sort = "created_at"
	}
	pq := p.query()
	res, err := s.r.Comments.List(ctx, repository.Filter{
		"organization_id": a.OrgID,
		"entity_type":     entityType,
		"entity_id":       entityID,
	}, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *commentService) Create(ctx context.Context, in CreateCommentInput) (*model.Comment, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in); err != nil {
		return nil, err
	}
	ref, err := resolveEntity(ctx, s.r, a.OrgID, in.EntityType, in.EntityID)
	if err != nil {
		return nil, err
	}
	if in.ParentID != "" {
		parent, err := inOrg(ctx, s.r.Comments, in.ParentID, a.OrgID, commentOrg)
		if err != nil {
			return nil, err
		}
		if parent.EntityID != in.EntityID {
			return nil, invalid("parent comment belongs to another thread")
		}
	}
	mentions := dedupe(in.Mentions)
	if err := usersInOrg(ctx, s.r.Users, a.OrgID, mentions); err != nil {
		return nil, err
	}

	ts := now()
	c, err := s.r.Comments.Create(ctx, &model.Comment{
		ID:             newID(),
		EntityType:     in.EntityType,
		EntityID:       in.EntityID,
		OrganizationID: a.OrgID,
		AuthorID:       a.UserID,
		Content:        in.Content,
		ParentID:       in.ParentID,
		Mentions:       mentions,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionCreate, "comment", c.ID, map[string]any{"entity_type": c.EntityType, "entity_id": c.EntityID})

	base := model.Notification{
		OrganizationID: a.OrgID,
		EntityType:     c.EntityType,
		EntityID:       c.EntityID,
	}
	mention := base
	mention.Type = model.NotificationMention
	mention.Title = "You were mentioned"
	mention.Message = "You were mentioned in a comment on " + ref.title
	notify(ctx, s.notify, s.log, mention, mentions, a.UserID)

	if ref.assigneeID != "" && !slices.Contains(mentions, ref.assigneeID) {
		added := base
		added.Type = model.NotificationCommentAdded
		added.Title = "New comment"
		added.Message = "New comment on " + ref.title
		notify(ctx, s.notify, s.log, added, []string{ref.assigneeID}, a.UserID)
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, id string, in UpdateCommentInput) (*model.Comment, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := check(in); err != nil {
		return nil, err
	}
	cur, err := inOrg(ctx, s.r.Comments, id, a.OrgID, commentOrg)
	if err != nil {
		return nil, err
	}
	if cur.AuthorID != a.UserID {
		return nil, ErrForbidden
	}
	c, err := s.r.Comments.Update(ctx, id, repository.Fields{"content": in.Content, "edited": true, "updated_at": now()})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "comment", id, nil)
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, id string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	cur, err := inOrg(ctx, s.r.Comments, id, a.OrgID, commentOrg)
	if err != nil {
		return err
	}
	if cur.AuthorID != a.UserID && !auth.IsAdmin(a.Role) {
		return ErrForbidden
	}
	if err := s.r.Comments.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.audit.record(ctx, a, audit.ActionDelete, "comment", id, nil)
	return nil
}
