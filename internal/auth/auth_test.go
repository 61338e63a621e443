package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/config"
)

func newManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{
		JWTSecret:  "0123456789abcdef0123",
		Issuer:     "portfolioapi",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
}

func TestTokenManager_IssueParse(t *testing.T) {
	m := newManager()
	actor := Actor{UserID: "u1", OrgID: "org-1", Role: RoleManager}

	pair, err := m.Issue(actor)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	got, err := m.Parse(pair.AccessToken, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, actor, got)

	got, err = m.Parse(pair.RefreshToken, TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestTokenManager_WrongType(t *testing.T) {
	m := newManager()
	pair, err := m.Issue(Actor{UserID: "u1", Role: RoleMember})
	require.NoError(t, err)

	_, err = m.Parse(pair.RefreshToken, TokenAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestTokenManager_Expired(t *testing.T) {
	m := newManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := m.Issue(Actor{UserID: "u1", Role: RoleMember})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(pair.AccessToken, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_BadSignature(t *testing.T) {
	pair, err := newManager().Issue(Actor{UserID: "u1", Role: RoleMember})
	require.NoError(t, err)

	other := NewTokenManager(config.AuthConfig{JWTSecret: "another-secret-value", Issuer: "portfolioapi", AccessTTL: time.Minute, RefreshTTL: time.Minute})
	_, err = other.Parse(pair.AccessToken, TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newManager().Parse("not-a-token", TokenAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), Actor{UserID: "u1", OrgID: "o1", Role: RoleAdmin})
	a, ok := ActorFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "o1", a.OrgID)
}

func TestSystemRoles(t *testing.T) {
	admin, ok := SystemPermissions(RoleAdmin)
	require.True(t, ok)
	assert.ElementsMatch(t, All(), admin)

	viewer, _ := SystemPermissions(RoleViewer)
	assert.True(t, HasPermission(viewer, PermProjectsRead))
	assert.False(t, HasPermission(viewer, PermProjectsWrite))

	member, _ := SystemPermissions(RoleMember)
	assert.True(t, HasPermission(member, PermTasksWrite))
	assert.False(t, HasPermission(member, PermProjectsDelete))

	manager, _ := SystemPermissions(RoleManager)
	assert.True(t, HasPermission(manager, PermAnalyticsRead))
	assert.False(t, HasPermission(manager, PermRolesManage))

	_, ok = SystemPermissions("designer")
	assert.False(t, ok)
	assert.True(t, IsSystemRole(RoleViewer))
	assert.True(t, IsAdmin(RoleSuperAdmin))
	assert.False(t, IsAdmin(RoleManager))
}

func TestCatalog(t *testing.T) {
	assert.True(t, ValidPermission(PermAuditRead))
	assert.False(t, ValidPermission("root"))
	assert.NotEmpty(t, Describe(PermFilesWrite))
	assert.Len(t, All(), 17)
}
