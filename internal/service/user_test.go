package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

func TestUserService_AssignRole(t *testing.T) {
	member := &model.User{ID: "u2", OrganizationID: "org-1", Role: auth.RoleMember}
	owner := &model.User{ID: "u3", OrganizationID: "org-1", Role: auth.RoleAdmin}
	org := &model.Organization{ID: "org-1", OwnerID: "u3"}

	tests := []struct {
		name      string
		actorRole string
		target    *model.User
		role      string
		wantErr   error
		wantMsg   string
	}{
		{name: "admin grants manager", actorRole: auth.RoleAdmin, target: member, role: auth.RoleManager},
		{name: "admin grants admin", actorRole: auth.RoleAdmin, target: member, role: auth.RoleAdmin},
		{name: "super admin grants super admin", actorRole: auth.RoleSuperAdmin, target: member, role: auth.RoleSuperAdmin},
		{name: "admin cannot grant super admin", actorRole: auth.RoleAdmin, target: member, role: auth.RoleSuperAdmin, wantErr: ErrForbidden},
		{name: "manager cannot grant admin", actorRole: auth.RoleManager, target: member, role: auth.RoleAdmin, wantErr: ErrForbidden},
		{name: "manager cannot grant super admin", actorRole: auth.RoleManager, target: member, role: auth.RoleSuperAdmin, wantErr: ErrForbidden},
		{
			name:      "owner keeps an admin role",
			actorRole: auth.RoleAdmin,
			target:    owner,
			role:      auth.RoleMember,
			wantErr:   ErrValidation,
			wantMsg:   "the organization owner must keep an admin role",
		},
		{name: "owner may become super admin", actorRole: auth.RoleSuperAdmin, target: owner, role: auth.RoleSuperAdmin},
		{name: "blank role", actorRole: auth.RoleAdmin, target: member, role: "  ", wantErr: ErrValidation, wantMsg: "role is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := actorCtx(tt.actorRole)
			repos, st := newStores()
			rec := &recorder{}
			svc := NewUserService(repos, rec, nop)

			st.users.On("FindByID", ctx, tt.target.ID).Return(tt.target, nil).Maybe()
			st.orgs.On("FindByID", ctx, "org-1").Return(org, nil).Maybe()
			if tt.wantErr == nil {
				st.users.On("Update", ctx, tt.target.ID, repository.Fields{"role": tt.role, "updated_at": fixedNow}).
					Return(&model.User{ID: tt.target.ID, Role: tt.role}, nil)
			}

			u, err := svc.AssignRole(ctx, tt.target.ID, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, ValidationMessage(err))
				}
				assert.Empty(t, rec.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, u.Role)
			assert.Equal(t, []string{"update:user"}, rec.actions())
			st.assertAll(t)
		})
	}

	t.Run("unknown custom role", func(t *testing.T) {
		ctx := actorCtx(auth.RoleAdmin)
		repos, st := newStores()
		svc := NewUserService(repos, nil, nop)
		st.roles.On("FindOne", ctx, repository.Filter{"organization_id": "org-1", "name": "auditor"}).Return(nil, repository.ErrNotFound)

		_, err := svc.AssignRole(ctx, "u2", "auditor")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "role auditor does not exist", ValidationMessage(err))
		st.assertAll(t)
	})

	t.Run("member of another organization", func(t *testing.T) {
		ctx := actorCtx(auth.RoleAdmin)
		repos, st := newStores()
		svc := NewUserService(repos, nil, nop)
		st.users.On("FindByID", ctx, "u9").Return(&model.User{ID: "u9", OrganizationID: "org-2"}, nil)

		_, err := svc.AssignRole(ctx, "u9", auth.RoleManager)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserService_UpdateStatus(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)

	t.Run("suspends a member", func(t *testing.T) {
		repos, st := newStores()
		rec := &recorder{}
		svc := NewUserService(repos, rec, nop)
		st.users.On("FindByID", ctx, "u2").Return(&model.User{ID: "u2", OrganizationID: "org-1", Status: model.UserStatusActive}, nil)
		st.users.On("Update", ctx, "u2", repository.Fields{"status": model.UserStatusSuspended, "updated_at": fixedNow}).
			Return(&model.User{ID: "u2", Status: model.UserStatusSuspended}, nil)

		u, err := svc.UpdateStatus(ctx, "u2", model.UserStatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, model.UserStatusSuspended, u.Status)
		assert.Equal(t, map[string]any{"status": model.UserStatusSuspended}, rec.events[0].Metadata)
		st.assertAll(t)
	})

	t.Run("cannot deactivate own account", func(t *testing.T) {
		repos, st := newStores()
		svc := NewUserService(repos, nil, nop)

		for _, status := range []string{model.UserStatusInactive, model.UserStatusSuspended, model.UserStatusPending} {
			_, err := svc.UpdateStatus(ctx, "u1", status)
			assert.ErrorIs(t, err, ErrValidation, status)
			assert.Equal(t, "you cannot deactivate your own account", ValidationMessage(err))
		}
		st.assertAll(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		repos, _ := newStores()
		svc := NewUserService(repos, nil, nop)
		_, err := svc.UpdateStatus(ctx, "u2", "banned")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("approves a join request", func(t *testing.T) {
		repos, st := newStores()
		rec := &recorder{}
		svc := NewUserService(repos, rec, nop)
		st.users.On("FindByID", ctx, "u5").
			Return(&model.User{ID: "u5", Status: model.UserStatusPending, RequestedOrganizationID: "org-1"}, nil)
		st.users.On("Update", ctx, "u5", repository.Fields{
			"status":                    model.UserStatusActive,
			"organization_id":           "org-1",
			"requested_organization_id": "",
			"updated_at":                fixedNow,
		}).Return(&model.User{ID: "u5", OrganizationID: "org-1", Status: model.UserStatusActive}, nil)

		u, err := svc.UpdateStatus(ctx, "u5", model.UserStatusActive)
		require.NoError(t, err)
		assert.Equal(t, "org-1", u.OrganizationID)
		assert.Equal(t, "approved", rec.events[0].Metadata["join_request"])
		st.assertAll(t)
	})

	t.Run("declines a join request", func(t *testing.T) {
		repos, st := newStores()
		rec := &recorder{}
		svc := NewUserService(repos, rec, nop)
		st.users.On("FindByID", ctx, "u5").
			Return(&model.User{ID: "u5", Status: model.UserStatusPending, RequestedOrganizationID: "org-1"}, nil)
		st.users.On("Update", ctx, "u5", repository.Fields{"requested_organization_id": "", "updated_at": fixedNow}).
			Return(&model.User{ID: "u5", Status: model.UserStatusPending}, nil)

		u, err := svc.UpdateStatus(ctx, "u5", model.UserStatusInactive)
		require.NoError(t, err)
		assert.Empty(t, u.OrganizationID)
		assert.Equal(t, map[string]any{"join_request": "declined"}, rec.events[0].Metadata)
		st.assertAll(t)
	})

	t.Run("join request for another organization", func(t *testing.T) {
		repos, st := newStores()
		svc := NewUserService(repos, nil, nop)
		st.users.On("FindByID", ctx, "u5").
			Return(&model.User{ID: "u5", Status: model.UserStatusPending, RequestedOrganizationID: "org-2"}, nil)

		_, err := svc.UpdateStatus(ctx, "u5", model.UserStatusActive)
		assert.ErrorIs(t, err, ErrNotFound)
		st.assertAll(t)
	})

	t.Run("member elsewhere with a stale request", func(t *testing.T) {
		repos, st := newStores()
		svc := NewUserService(repos, nil, nop)
		st.users.On("FindByID", ctx, "u6").
			Return(&model.User{ID: "u6", OrganizationID: "org-2", RequestedOrganizationID: "org-1"}, nil)

		_, err := svc.UpdateStatus(ctx, "u6", model.UserStatusActive)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("requires an organization", func(t *testing.T) {
		repos, _ := newStores()
		svc := NewUserService(repos, nil, nop)
		pending := auth.WithActor(context.Background(), auth.Actor{UserID: "u5", Role: auth.RoleAdmin})

		_, err := svc.UpdateStatus(pending, "u5", model.UserStatusActive)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestUserService_JoinRequests(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)
	repos, st := newStores()
	svc := NewUserService(repos, nil, nop)
	st.users.On("List", ctx, repository.Filter{"requested_organization_id": "org-1", "organization_id": ""}, repository.PageQuery{Limit: DefaultPageLimit}).
		Return(&repository.PageResult[model.User]{Items: []model.User{{ID: "u5"}}, Total: 1}, nil)

	res, err := svc.JoinRequests(ctx, Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "u5", res.Items[0].ID)
	st.assertAll(t)
}

func TestUserService_Delete(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)
	org := &model.Organization{ID: "org-1", OwnerID: "u3"}

	tests := []struct {
		name    string
		id      string
		found   *model.User
		wantErr error
		wantMsg string
	}{
		{name: "deletes a member", id: "u2", found: &model.User{ID: "u2", OrganizationID: "org-1"}},
		{name: "cannot delete self", id: "u1", wantErr: ErrValidation, wantMsg: "you cannot delete your own account"},
		{
			name:    "owner cannot be deleted",
			id:      "u3",
			found:   &model.User{ID: "u3", OrganizationID: "org-1"},
			wantErr: ErrValidation,
			wantMsg: "the organization owner cannot be deleted",
		},
		{name: "other organization", id: "u9", found: &model.User{ID: "u9", OrganizationID: "org-2"}, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, st := newStores()
			rec := &recorder{}
			svc := NewUserService(repos, rec, nop)
			if tt.found != nil {
				st.users.On("FindByID", ctx, tt.id).Return(tt.found, nil)
			}
			st.orgs.On("FindByID", ctx, "org-1").Return(org, nil).Maybe()
			if tt.wantErr == nil {
				st.users.On("Delete", ctx, tt.id).Return(nil)
			}

			err := svc.Delete(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, ValidationMessage(err))
				}
				st.users.AssertNotCalled(t, "Delete", ctx, tt.id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"delete:user"}, rec.actions())
			st.assertAll(t)
		})
	}
}

func TestUserService_Update(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)

	t.Run("normalizes skills", func(t *testing.T) {
		repos, st := newStores()
		svc := NewUserService(repos, nil, nop)
		st.users.On("FindByID", ctx, "u2").Return(&model.User{ID: "u2", OrganizationID: "org-1"}, nil)
		st.users.On("Update", ctx, "u2", repository.Fields{
			"skills":     []model.Skill{{Name: "Go", Level: 4}},
			"updated_at": fixedNow,
		}).Return(&model.User{ID: "u2"}, nil)

		skills := []model.Skill{{Name: " Go ", Level: 4}}
		_, err := svc.Update(ctx, "u2", UpdateUserInput{Skills: &skills})
		require.NoError(t, err)
		st.assertAll(t)
	})

	t.Run("duplicate skill", func(t *testing.T) {
		repos, st := newStores()
		svc := NewUserService(repos, nil, nop)
		st.users.On("FindByID", ctx, "u2").Return(&model.User{ID: "u2", OrganizationID: "org-1"}, nil)

		skills := []model.Skill{{Name: "Go", Level: 4}, {Name: "go", Level: 2}}
		_, err := svc.Update(ctx, "u2", UpdateUserInput{Skills: &skills})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "skill go is listed twice", ValidationMessage(err))
	})
}
