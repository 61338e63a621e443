package service

import (
	"context"

	"go.uber.org/zap"

	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

// NotificationService manages the in-app inbox of the current user.
type NotificationService interface {
	Notifier
	List(ctx context.Context, unreadOnly bool, p Page) (*ListResult[model.Notification], error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	return &notificationService{repo: repo, log: log}
}

// Notify stores n for n.UserID.
func (s *notificationService) Notify(ctx context.Context, n model.Notification) error {
	if n.UserID == "" {
		return ErrIDRequired
	}
	if n.Type == "" {
		n.Type = model.NotificationSystem
	}
	if n.Priority == "" {
		n.Priority = model.PriorityMedium
	}
	n.ID = newID()
	n.Read = false
	n.ReadAt = nil
	n.CreatedAt = now()
	_, err := s.repo.Create(ctx, &n)
	return err
}

func (s *notificationService) List(ctx context.Context, unreadOnly bool, p Page) (*ListResult[model.Notification], error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	f := repository.Filter{"user_id": a.UserID}
	if unreadOnly {
		f["read"] = false
	}
	pq := p.query()
	res, err := s.repo.List(ctx, f, pq)
	if err != nil {
		return nil, err
	}
	return listResult(res, pq), nil
}

func (s *notificationService) UnreadCount(ctx context.Context) (int, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, repository.Filter{"user_id": a.UserID, "read": false})
}

func (s *notificationService) own(ctx context.Context, id string) (*model.Notification, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if n.UserID != a.UserID {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	n, err := s.own(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	updated, err := s.repo.Update(ctx, id, repository.Fields{"read": true, "read_at": now()})
	return updated, mapRepoErr(err)
}

func (s *notificationService) MarkAllRead(ctx context.Context) (int, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.UpdateMany(ctx,
		repository.Filter{"user_id": a.UserID, "read": false},
		repository.Fields{"read": true, "read_at": now()},
	)
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	if _, err := s.own(ctx, id); err != nil {
		return err
	}
	return mapRepoErr(s.repo.Delete(ctx, id))
}
