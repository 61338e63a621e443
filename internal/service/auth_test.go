package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/config"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.AuthConfig{
		JWTSecret:  "test-secret",
		Issuer:     "portfolioapi",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	valid := RegisterInput{Email: " Ada@Example.COM ", Password: "correct-horse", FirstName: "Ada", LastName: "Lovelace"}

	t.Run("creates pending member", func(t *testing.T) {
		repos, st := newStores()
		rec := &recorder{}
		svc := NewAuthService(repos, testTokens(), rec, nop)

		st.users.On("FindOne", ctx, repository.Filter{"email": "ada@example.com"}).Return(nil, repository.ErrNotFound)
		st.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.PasswordHash != "correct-horse" && auth.CheckPassword(u.PasswordHash, "correct-horse") == nil
		})).Return(passthrough[model.User](), nil)

		u, err := svc.Register(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, model.UserStatusPending, u.Status)
		assert.Equal(t, auth.RoleMember, u.Role)
		assert.Equal(t, 40.0, u.CapacityHours)
		assert.Equal(t, fixedNow, u.CreatedAt)
		assert.Equal(t, []string{"create:user"}, rec.actions())
		st.assertAll(t)
	})

	t.Run("requested organization stays pending approval", func(t *testing.T) {
		repos, st := newStores()
		rec := &recorder{}
		svc := NewAuthService(repos, testTokens(), rec, nop)

		st.users.On("FindOne", ctx, mock.Anything).Return(nil, repository.ErrNotFound)
		st.orgs.On("FindByID", ctx, "org-1").Return(&model.Organization{ID: "org-1"}, nil)
		st.users.On("Create", ctx, mock.Anything).Return(passthrough[model.User](), nil)
		in := valid
		in.OrganizationID = "org-1"

		u, err := svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Empty(t, u.OrganizationID)
		assert.Equal(t, "org-1", u.RequestedOrganizationID)
		assert.Equal(t, model.UserStatusPending, u.Status)
		assert.Equal(t, "org-1", rec.events[0].OrganizationID)
		st.assertAll(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repos, st := newStores()
		svc := NewAuthService(repos, testTokens(), nil, nop)
		st.users.On("FindOne", ctx, mock.Anything).Return(&model.User{ID: "u9"}, nil)

		_, err := svc.Register(ctx, valid)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("short password", func(t *testing.T) {
		repos, _ := newStores()
		svc := NewAuthService(repos, testTokens(), nil, nop)
		in := valid
		in.Password = "short"

		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "password must be at least 8", ValidationMessage(err))
	})

	t.Run("unknown organization", func(t *testing.T) {
		repos, st := newStores()
		svc := NewAuthService(repos, testTokens(), nil, nop)
		st.users.On("FindOne", ctx, mock.Anything).Return(nil, repository.ErrNotFound)
		st.orgs.On("FindByID", ctx, "missing").Return(nil, repository.ErrNotFound)
		in := valid
		in.OrganizationID = "missing"

		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)

	user := func(status string) *model.User {
		return &model.User{ID: "u1", Email: "ada@example.com", PasswordHash: hash, Role: auth.RoleManager, OrganizationID: "org-1", Status: status}
	}

	tests := []struct {
		name     string
		password string
		found    *model.User
		wantErr  error
		wantOrg  string
	}{
		{name: "active", password: "correct-horse", found: user(model.UserStatusActive), wantOrg: "org-1"},
		{name: "pending may log in without organization", password: "correct-horse", found: user(model.UserStatusPending)},
		{name: "wrong password", password: "wrong-horse", found: user(model.UserStatusActive), wantErr: ErrInvalidCredentials},
		{name: "unknown email", password: "correct-horse", wantErr: ErrInvalidCredentials},
		{name: "suspended", password: "correct-horse", found: user(model.UserStatusSuspended), wantErr: ErrAccountDisabled},
		{name: "inactive", password: "correct-horse", found: user(model.UserStatusInactive), wantErr: ErrAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, st := newStores()
			tokens := testTokens()
			svc := NewAuthService(repos, tokens, nil, nop)
			if tt.found != nil {
				st.users.On("FindOne", ctx, repository.Filter{"email": "ada@example.com"}).Return(tt.found, nil)
			} else {
				st.users.On("FindOne", ctx, mock.Anything).Return(nil, repository.ErrNotFound)
			}
			if tt.wantErr == nil {
				st.users.On("Update", ctx, "u1", repository.Fields{"last_login_at": fixedNow}).Return(tt.found, nil)
			}

			sess, err := svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: tt.password})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			a, err := tokens.Parse(sess.Tokens.AccessToken, auth.TokenAccess)
			require.NoError(t, err)
			assert.Equal(t, auth.Actor{UserID: "u1", OrgID: tt.wantOrg, Role: auth.RoleManager}, a)
			st.assertAll(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	tokens := testTokens()
	pair, err := tokens.Issue(auth.Actor{UserID: "u1"})
	require.NoError(t, err)

	t.Run("picks up the current organization", func(t *testing.T) {
		repos, st := newStores()
		svc := NewAuthService(repos, tokens, nil, nop)
		st.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", OrganizationID: "org-1", Role: auth.RoleAdmin, Status: model.UserStatusActive}, nil)

		sess, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		a, err := tokens.Parse(sess.Tokens.AccessToken, auth.TokenAccess)
		require.NoError(t, err)
		assert.Equal(t, "org-1", a.OrgID)
		assert.Equal(t, auth.RoleAdmin, a.Role)
	})

	t.Run("access token rejected", func(t *testing.T) {
		repos, _ := newStores()
		svc := NewAuthService(repos, tokens, nil, nop)
		_, err := svc.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("deleted user", func(t *testing.T) {
		repos, st := newStores()
		svc := NewAuthService(repos, tokens, nil, nop)
		st.users.On("FindByID", ctx, "u1").Return(nil, repository.ErrNotFound)
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthService_CurrentActor(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		found   *model.User
		findErr error
		want    auth.Actor
		wantErr error
	}{
		{
			name:  "active member",
			found: &model.User{ID: "u1", OrganizationID: "org-1", Role: auth.RoleManager, Status: model.UserStatusActive},
			want:  auth.Actor{UserID: "u1", OrgID: "org-1", Role: auth.RoleManager},
		},
		{
			name:  "demoted since the token was issued",
			found: &model.User{ID: "u1", OrganizationID: "org-1", Role: auth.RoleViewer, Status: model.UserStatusActive},
			want:  auth.Actor{UserID: "u1", OrgID: "org-1", Role: auth.RoleViewer},
		},
		{
			name:  "pending has no organization",
			found: &model.User{ID: "u1", Role: auth.RoleMember, Status: model.UserStatusPending, RequestedOrganizationID: "org-1"},
			want:  auth.Actor{UserID: "u1", Role: auth.RoleMember},
		},
		{
			name:    "suspended",
			found:   &model.User{ID: "u1", OrganizationID: "org-1", Role: auth.RoleAdmin, Status: model.UserStatusSuspended},
			wantErr: auth.ErrInactiveAccount,
		},
		{
			name:    "inactive",
			found:   &model.User{ID: "u1", OrganizationID: "org-1", Role: auth.RoleAdmin, Status: model.UserStatusInactive},
			wantErr: auth.ErrInactiveAccount,
		},
		{name: "deleted", findErr: repository.ErrNotFound, wantErr: auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, st := newStores()
			svc := NewAuthService(repos, testTokens(), nil, nop)
			st.users.On("FindByID", ctx, "u1").Return(tt.found, tt.findErr)

			a, err := svc.CurrentActor(ctx, "u1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
			st.assertAll(t)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := actorCtx(auth.RoleMember)
	hash, err := auth.HashPassword("old-password")
	require.NoError(t, err)

	repos, st := newStores()
	svc := NewAuthService(repos, testTokens(), nil, nop)
	st.users.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", PasswordHash: hash}, nil)

	err = svc.ChangePassword(ctx, ChangePasswordInput{CurrentPassword: "nope-nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	st.users.On("Update", ctx, "u1", mock.MatchedBy(func(f repository.Fields) bool {
		h, _ := f["password_hash"].(string)
		return auth.CheckPassword(h, "new-password") == nil
	})).Return(&model.User{ID: "u1"}, nil)
	assert.NoError(t, svc.ChangePassword(ctx, ChangePasswordInput{CurrentPassword: "old-password", NewPassword: "new-password"}))

	_, err = svc.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}
