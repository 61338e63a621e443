package service

import (
	"context"

	"portfolioapi/internal/audit"
)

type AuditFilter struct {
	ActorID      string
	ResourceType string
	ResourceID   string
}

// AuditService reads the audit log of the actor's organization.
type AuditService interface {
	List(ctx context.Context, f AuditFilter, p Page) (*ListResult[audit.Event], error)
}

type auditService struct {
	rec audit.Recorder
}

func NewAuditService(rec audit.Recorder) AuditService {
	if rec == nil {
		rec = audit.Noop{}
	}
	return &auditService{rec: rec}
}

func (s *auditService) List(ctx context.Context, f AuditFilter, p Page) (*ListResult[audit.Event], error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	pq := p.query()
	events, total, err := s.rec.List(ctx, audit.Query{
		OrganizationID: a.OrgID,
		ActorID:        f.ActorID,
		ResourceType:   f.ResourceType,
		ResourceID:     f.ResourceID,
		Limit:          pq.Limit,
		Offset:         pq.Offset,
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []audit.Event{}
	}
	return &ListResult[audit.Event]{Items: events, Total: total, Limit: pq.Limit, Offset: pq.Offset}, nil
}
