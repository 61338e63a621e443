package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

func TestCommentService_Create(t *testing.T) {
	ctx := actorCtx(auth.RoleMember)

	t.Run("notifies mentions and the assignee but not the author", func(t *testing.T) {
		repos, st := newStores()
		box := &inbox{}
		svc := NewCommentService(repos, box, nil, nop)

		st.tasks.On("FindByID", ctx, "t1").Return(&model.Task{ID: "t1", OrganizationID: "org-1", Title: "Ship", AssigneeID: "u4"}, nil)
		st.users.On("Count", ctx, repository.Filter{"organization_id": "org-1", "_id": repository.In{"u2", "u1"}}).Return(2, nil)
		st.comments.On("Create", ctx, mock.Anything).Return(passthrough[model.Comment](), nil)

		c, err := svc.Create(ctx, CreateCommentInput{
			EntityType: model.EntityTask,
			EntityID:   "t1",
			Content:    " looks good ",
			Mentions:   []string{"u2", "u1", "u2"},
		})
		require.NoError(t, err)
		assert.Equal(t, "looks good", c.Content)
		assert.Equal(t, "u1", c.AuthorID)
		assert.Equal(t, []string{"u2:mention", "u4:comment_added"}, box.recipients())
		st.assertAll(t)
	})

	t.Run("author is the assignee", func(t *testing.T) {
		repos, st := newStores()
		box := &inbox{}
		svc := NewCommentService(repos, box, nil, nop)
		st.tasks.On("FindByID", ctx, "t1").Return(&model.Task{ID: "t1", OrganizationID: "org-1", AssigneeID: "u1"}, nil)
		st.comments.On("Create", ctx, mock.Anything).Return(passthrough[model.Comment](), nil)

		_, err := svc.Create(ctx, CreateCommentInput{EntityType: model.EntityTask, EntityID: "t1", Content: "note to self"})
		require.NoError(t, err)
		assert.Empty(t, box.sent)
	})

	t.Run("missing entity", func(t *testing.T) {
		repos, st := newStores()
		svc := NewCommentService(repos, nil, nil, nop)
		st.projects.On("FindByID", ctx, "p404").Return(nil, repository.ErrNotFound)

		_, err := svc.Create(ctx, CreateCommentInput{EntityType: model.EntityProject, EntityID: "p404", Content: "hi"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bad entity type", func(t *testing.T) {
		repos, _ := newStores()
		svc := NewCommentService(repos, nil, nil, nop)
		_, err := svc.Create(ctx, CreateCommentInput{EntityType: "team", EntityID: "x", Content: "hi"})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCommentService_UpdateAndDelete(t *testing.T) {
	mine := &model.Comment{ID: "c1", OrganizationID: "org-1", AuthorID: "u1"}
	theirs := &model.Comment{ID: "c2", OrganizationID: "org-1", AuthorID: "u2"}

	t.Run("author edits", func(t *testing.T) {
		ctx := actorCtx(auth.RoleMember)
		repos, st := newStores()
		svc := NewCommentService(repos, nil, nil, nop)
		st.comments.On("FindByID", ctx, "c1").Return(mine, nil)
		st.comments.On("Update", ctx, "c1", repository.Fields{"content": "fixed", "edited": true, "updated_at": fixedNow}).
			Return(&model.Comment{ID: "c1", Content: "fixed", Edited: true}, nil)

		c, err := svc.Update(ctx, "c1", UpdateCommentInput{Content: "fixed"})
		require.NoError(t, err)
		assert.True(t, c.Edited)
	})

	t.Run("others may not edit", func(t *testing.T) {
		ctx := actorCtx(auth.RoleAdmin)
		repos, st := newStores()
		svc := NewCommentService(repos, nil, nil, nop)
		st.comments.On("FindByID", ctx, "c2").Return(theirs, nil)

		_, err := svc.Update(ctx, "c2", UpdateCommentInput{Content: "hijack"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin deletes", func(t *testing.T) {
		ctx := actorCtx(auth.RoleAdmin)
		repos, st := newStores()
		svc := NewCommentService(repos, nil, nil, nop)
		st.comments.On("FindByID", ctx, "c2").Return(theirs, nil)
		st.comments.On("Delete", ctx, "c2").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "c2"))
	})

	t.Run("member may not delete others", func(t *testing.T) {
		ctx := actorCtx(auth.RoleMember)
		repos, st := newStores()
		svc := NewCommentService(repos, nil, nil, nop)
		st.comments.On("FindByID", ctx, "c2").Return(theirs, nil)

		assert.ErrorIs(t, svc.Delete(ctx, "c2"), ErrForbidden)
	})
}

func TestTeamService_Members(t *testing.T) {
	ctx := actorCtx(auth.RoleManager)
	team := func() *model.Team {
		return &model.Team{ID: "tm1", OrganizationID: "org-1", LeadID: "u1", Members: []model.TeamMember{
			{UserID: "u1", Role: "lead"},
			{UserID: "u2", Role: "member"},
		}}
	}

	t.Run("add duplicate", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTeamService(repos, nil, nop)
		st.teams.On("FindByID", ctx, "tm1").Return(team(), nil)

		_, err := svc.AddMember(ctx, "tm1", AddMemberInput{UserID: "u2"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("add", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTeamService(repos, nil, nop)
		st.teams.On("FindByID", ctx, "tm1").Return(team(), nil)
		st.users.On("Count", ctx, mock.Anything).Return(1, nil)
		st.teams.On("Update", ctx, "tm1", mock.MatchedBy(func(f repository.Fields) bool {
			members, _ := f["members"].([]model.TeamMember)
			return len(members) == 3 && members[2].UserID == "u3" && members[2].Role == "member" && members[2].JoinedAt.Equal(fixedNow)
		})).Return(&model.Team{ID: "tm1"}, nil)

		_, err := svc.AddMember(ctx, "tm1", AddMemberInput{UserID: "u3"})
		assert.NoError(t, err)
		st.assertAll(t)
	})

	t.Run("remove absent", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTeamService(repos, nil, nop)
		st.teams.On("FindByID", ctx, "tm1").Return(team(), nil)

		_, err := svc.RemoveMember(ctx, "tm1", "u9")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("remove lead clears lead", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTeamService(repos, nil, nop)
		st.teams.On("FindByID", ctx, "tm1").Return(team(), nil)
		st.teams.On("Update", ctx, "tm1", repository.Fields{
			"members":    []model.TeamMember{{UserID: "u2", Role: "member"}},
			"lead_id":    "",
			"updated_at": fixedNow,
		}).Return(&model.Team{ID: "tm1"}, nil)

		_, err := svc.RemoveMember(ctx, "tm1", "u1")
		assert.NoError(t, err)
		st.assertAll(t)
	})
}

func TestTeamService_Create(t *testing.T) {
	ctx := actorCtx(auth.RoleManager)
	repos, st := newStores()
	svc := NewTeamService(repos, nil, nop)
	st.users.On("Count", ctx, repository.Filter{"organization_id": "org-1", "_id": repository.In{"u5", "u2"}}).Return(2, nil)
	st.teams.On("Create", ctx, mock.Anything).Return(passthrough[model.Team](), nil)

	team, err := svc.Create(ctx, CreateTeamInput{Name: "Platform", LeadID: "u5", MemberIDs: []string{"u2"}})
	require.NoError(t, err)
	require.Len(t, team.Members, 2)
	assert.Equal(t, model.TeamMember{UserID: "u5", Role: "lead", JoinedAt: fixedNow}, team.Members[0])
	assert.Equal(t, "member", team.Members[1].Role)
}

func TestNotificationService(t *testing.T) {
	ctx := actorCtx(auth.RoleMember)

	t.Run("notify fills defaults", func(t *testing.T) {
		repos, st := newStores()
		svc := NewNotificationService(repos.Notifications, nop)
		st.notifications.On("Create", ctx, mock.MatchedBy(func(n *model.Notification) bool {
			return n.ID != "" && n.UserID == "u2" && n.Type == model.NotificationSystem &&
				n.Priority == model.PriorityMedium && !n.Read && n.CreatedAt.Equal(fixedNow)
		})).Return(passthrough[model.Notification](), nil)

		assert.NoError(t, svc.Notify(ctx, model.Notification{UserID: "u2", Title: "hello"}))
		assert.ErrorIs(t, svc.Notify(ctx, model.Notification{}), ErrIDRequired)
	})

	t.Run("list unread is scoped to the actor", func(t *testing.T) {
		repos, st := newStores()
		svc := NewNotificationService(repos.Notifications, nop)
		st.notifications.On("List", ctx, repository.Filter{"user_id": "u1", "read": false}, repository.PageQuery{Limit: 20}).
			Return(&repository.PageResult[model.Notification]{Total: 0}, nil)

		res, err := svc.List(ctx, true, Page{})
		require.NoError(t, err)
		assert.Equal(t, []model.Notification{}, res.Items)
		assert.Equal(t, 20, res.Limit)
	})

	t.Run("someone else's notification", func(t *testing.T) {
		repos, st := newStores()
		svc := NewNotificationService(repos.Notifications, nop)
		st.notifications.On("FindByID", ctx, "n1").Return(&model.Notification{ID: "n1", UserID: "u2"}, nil)

		_, err := svc.MarkRead(ctx, "n1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, "n1"), ErrNotFound)
	})

	t.Run("mark all read", func(t *testing.T) {
		repos, st := newStores()
		svc := NewNotificationService(repos.Notifications, nop)
		st.notifications.On("UpdateMany", ctx,
			repository.Filter{"user_id": "u1", "read": false},
			repository.Fields{"read": true, "read_at": fixedNow},
		).Return(4, nil)

		n, err := svc.MarkAllRead(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})
}
