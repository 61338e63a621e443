package service

import (
	"context"

	"go.uber.org/zap"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/integration"
)

// IntegrationService scopes integration.Manager calls to the actor's organization.
type IntegrationService interface {
	Catalog() []integration.Provider
	List(ctx context.Context) ([]integration.Status, error)
	Setup(ctx context.Context, provider string, settings map[string]string) (*integration.Status, error)
	Test(ctx context.Context, provider string) (*integration.TestResult, error)
	Notify(ctx context.Context, provider string, msg integration.Message) (*integration.Delivery, error)
	Sync(ctx context.Context, provider string) (*integration.SyncResult, error)
	Disconnect(ctx context.Context, provider string) error
}

type integrationService struct {
	m     *integration.Manager
	audit auditor
}

func NewIntegrationService(m *integration.Manager, rec audit.Recorder, log *zap.Logger) IntegrationService {
	return &integrationService{m: m, audit: newAuditor(rec, log)}
}

func (s *integrationService) Catalog() []integration.Provider { return s.m.Catalog() }

func (s *integrationService) List(ctx context.Context) ([]integration.Status, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.m.List(ctx, a.OrgID)
}

func (s *integrationService) Setup(ctx context.Context, provider string, settings map[string]string) (*integration.Status, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.m.Setup(ctx, a.OrgID, a.UserID, provider, settings)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, a, audit.ActionUpdate, "integration", provider, map[string]any{"status": st.Status})
	return st, nil
}

func (s *integrationService) Test(ctx context.Context, provider string) (*integration.TestResult, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.m.Test(ctx, a.OrgID, provider)
}

func (s *integrationService) Notify(ctx context.Context, provider string, msg integration.Message) (*integration.Delivery, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := check(msg); err != nil {
		return nil, err
	}
	return s.m.Notify(ctx, a.OrgID, provider, msg)
}

func (s *integrationService) Sync(ctx context.Context, provider string) (*integration.SyncResult, error) {
	a, err := orgActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.m.Sync(ctx, a.OrgID, provider)
}

func (s *integrationService) Disconnect(ctx context.Context, provider string) error {
	a, err := orgActor(ctx)
	if err != nil {
		return err
	}
	if err := s.m.Disconnect(ctx, a.OrgID, provider); err != nil {
		return err
	}
	s.audit.record(ctx, a, audit.ActionDelete, "integration", provider, nil)
	return nil
}
