package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/integration"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
	storeMocks "portfolioapi/internal/storage/mocks"
)

func newIntegrationService(t *testing.T, rec *recorder) (IntegrationService, *stores, *storeMocks.MockStorage) {
	t.Helper()
	if rec == nil {
		rec = &recorder{}
	}
	repos, st := newStores()
	objects := new(storeMocks.MockStorage)
	m := integration.NewManager(integration.DefaultCatalog(), repos.Integrations, objects, nop)
	return NewIntegrationService(m, rec, nop), st, objects
}

func orgProvider(p string) repository.Filter {
	return repository.Filter{"organization_id": "org-1", "provider": p}
}

func TestIntegrationService_RequiresOrganization(t *testing.T) {
	svc, _, _ := newIntegrationService(t, nil)
	noOrg := auth.WithActor(context.Background(), auth.Actor{UserID: "u1", Role: auth.RoleAdmin})

	_, err := svc.List(noOrg)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Setup(noOrg, model.ProviderSlack, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Sync(context.Background(), model.ProviderGitHub)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.Disconnect(noOrg, model.ProviderSlack), ErrForbidden)

	assert.Len(t, svc.Catalog(), 5)
}

func TestIntegrationService_Setup(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)

	t.Run("connects in the actor's organization and audits", func(t *testing.T) {
		rec := &recorder{}
		svc, st, _ := newIntegrationService(t, rec)
		st.integrations.On("FindOne", ctx, orgProvider(model.ProviderGitHub)).Return(nil, repository.ErrNotFound)
		st.integrations.On("Create", ctx, mock.MatchedBy(func(i *model.Integration) bool {
			return i.OrganizationID == "org-1" && i.ConnectedBy == "u1" && i.Settings["repository"] == "acme/api"
		})).Return(passthrough[model.Integration](), nil)

		got, err := svc.Setup(ctx, model.ProviderGitHub, map[string]string{"repository": "acme/api"})
		require.NoError(t, err)
		assert.Equal(t, "connected", got.Status)
		assert.Equal(t, []string{"update:integration"}, rec.actions())
		assert.Equal(t, model.ProviderGitHub, rec.events[0].ResourceID)
		st.integrations.AssertExpectations(t)
	})

	t.Run("invalid settings are not audited", func(t *testing.T) {
		rec := &recorder{}
		svc, _, _ := newIntegrationService(t, rec)

		_, err := svc.Setup(ctx, model.ProviderGitHub, nil)
		assert.ErrorIs(t, err, integration.ErrInvalidSettings)
		assert.Empty(t, rec.events)
	})
}

func TestIntegrationService_Notify(t *testing.T) {
	ctx := actorCtx(auth.RoleManager)

	t.Run("simulated without webhook", func(t *testing.T) {
		svc, st, _ := newIntegrationService(t, nil)
		st.integrations.On("FindOne", ctx, orgProvider(model.ProviderSlack)).
			Return(&model.Integration{ID: "i1", OrganizationID: "org-1", Provider: model.ProviderSlack, Status: "connected", Settings: map[string]string{"channel": "ops"}}, nil)

		d, err := svc.Notify(ctx, model.ProviderSlack, integration.Message{Text: "release is out"})
		require.NoError(t, err)
		assert.True(t, d.Simulated)
		assert.Equal(t, "ops", d.Channel)
	})

	t.Run("empty text", func(t *testing.T) {
		svc, st, _ := newIntegrationService(t, nil)

		_, err := svc.Notify(ctx, model.ProviderSlack, integration.Message{})
		assert.ErrorIs(t, err, ErrValidation)
		st.integrations.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
	})
}

func TestIntegrationService_Test(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)
	svc, st, objects := newIntegrationService(t, nil)
	st.integrations.On("FindOne", ctx, orgProvider(model.ProviderS3)).
		Return(&model.Integration{ID: "i5", OrganizationID: "org-1", Provider: model.ProviderS3, Status: "connected"}, nil)
	objects.On("Check", ctx).Return("", errors.New("bucket missing")).Once()

	res, err := svc.Test(ctx, model.ProviderS3)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "bucket missing", res.Message)
}

func TestIntegrationService_Disconnect(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)
	rec := &recorder{}
	svc, st, _ := newIntegrationService(t, rec)
	st.integrations.On("DeleteMany", ctx, orgProvider(model.ProviderTeams)).Return(1, nil).Once()
	st.integrations.On("DeleteMany", ctx, orgProvider(model.ProviderTeams)).Return(0, nil).Once()

	require.NoError(t, svc.Disconnect(ctx, model.ProviderTeams))
	assert.ErrorIs(t, svc.Disconnect(ctx, model.ProviderTeams), integration.ErrNotConnected)
	assert.Equal(t, []string{"delete:integration"}, rec.actions())
}
