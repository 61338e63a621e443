package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

func TestTaskService_Create(t *testing.T) {
	ctx := actorCtx(auth.RoleMember)
	project := &model.Project{ID: "p1", OrganizationID: "org-1"}

	t.Run("notifies the assignee", func(t *testing.T) {
		repos, st := newStores()
		box := &inbox{}
		rec := &recorder{}
		svc := NewTaskService(repos, box, rec, nop)

		st.projects.On("FindByID", ctx, "p1").Return(project, nil)
		st.users.On("Count", ctx, repository.Filter{"organization_id": "org-1", "_id": repository.In{"u2"}}).Return(1, nil)
		st.tasks.On("Create", ctx, mock.Anything).Return(passthrough[model.Task](), nil)

		task, err := svc.Create(ctx, CreateTaskInput{Title: "Ship it", ProjectID: "p1", AssigneeID: "u2", EstimatedHours: 5})
		require.NoError(t, err)
		assert.Equal(t, model.TaskStatusTodo, task.Status)
		assert.Equal(t, model.PriorityMedium, task.Priority)
		assert.Equal(t, "u1", task.ReporterID)
		assert.Nil(t, task.CompletedAt)
		assert.Equal(t, []string{"u2:task_assigned"}, box.recipients())
		assert.Equal(t, []string{"create:task"}, rec.actions())
		st.assertAll(t)
	})

	t.Run("created completed", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTaskService(repos, nil, nil, nop)
		st.projects.On("FindByID", ctx, "p1").Return(project, nil)
		st.tasks.On("Create", ctx, mock.Anything).Return(passthrough[model.Task](), nil)

		task, err := svc.Create(ctx, CreateTaskInput{Title: "Old", ProjectID: "p1", Status: model.TaskStatusCompleted})
		require.NoError(t, err)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, fixedNow, *task.CompletedAt)
	})

	t.Run("project of another organization", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTaskService(repos, nil, nil, nop)
		st.projects.On("FindByID", ctx, "p2").Return(&model.Project{ID: "p2", OrganizationID: "org-2"}, nil)

		_, err := svc.Create(ctx, CreateTaskInput{Title: "x", ProjectID: "p2"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTaskService(repos, nil, nil, nop)
		st.projects.On("FindByID", ctx, "p1").Return(project, nil)
		st.users.On("Count", ctx, mock.Anything).Return(0, nil)

		_, err := svc.Create(ctx, CreateTaskInput{Title: "x", ProjectID: "p1", AssigneeID: "ghost"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing dependency", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTaskService(repos, nil, nil, nop)
		st.projects.On("FindByID", ctx, "p1").Return(project, nil)
		st.tasks.On("Count", ctx, repository.Filter{"organization_id": "org-1", "_id": repository.In{"t1", "t2"}}).Return(1, nil)

		_, err := svc.Create(ctx, CreateTaskInput{Title: "x", ProjectID: "p1", Dependencies: []string{"t1", "t2", "t1"}})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestTaskService_UpdateStatus(t *testing.T) {
	ctx := actorCtx(auth.RoleMember)
	completedAt := fixedNow.AddDate(0, 0, -1)

	tests := []struct {
		name    string
		current *model.Task
		status  string
		want    repository.Fields
		wantErr error
	}{
		{
			name:    "completing sets completed_at",
			current: &model.Task{ID: "t1", OrganizationID: "org-1", Status: model.TaskStatusInProgress, AssigneeID: "u2"},
			status:  model.TaskStatusCompleted,
			want:    repository.Fields{"status": model.TaskStatusCompleted, "completed_at": fixedNow, "updated_at": fixedNow},
		},
		{
			name:    "reopening clears completed_at",
			current: &model.Task{ID: "t1", OrganizationID: "org-1", Status: model.TaskStatusCompleted, CompletedAt: &completedAt, AssigneeID: "u2"},
			status:  model.TaskStatusInProgress,
			want:    repository.Fields{"status": model.TaskStatusInProgress, "completed_at": nil, "updated_at": fixedNow},
		},
		{
			name:    "unknown status",
			current: &model.Task{ID: "t1", OrganizationID: "org-1"},
			status:  "done",
			wantErr: ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, st := newStores()
			box := &inbox{}
			svc := NewTaskService(repos, box, nil, nop)
			if tt.wantErr == nil {
				st.tasks.On("FindByID", ctx, "t1").Return(tt.current, nil)
				updated := *tt.current
				updated.Status = tt.status
				st.tasks.On("Update", ctx, "t1", tt.want).Return(&updated, nil)
			}

			got, err := svc.UpdateStatus(ctx, "t1", tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, []string{"u2:task_updated"}, box.recipients())
			st.assertAll(t)
		})
	}
}

func TestTaskService_UpdateKeepsCompletedAt(t *testing.T) {
	ctx := actorCtx(auth.RoleMember)
	completedAt := fixedNow.AddDate(0, 0, -1)
	repos, st := newStores()
	svc := NewTaskService(repos, nil, nil, nop)

	st.tasks.On("FindByID", ctx, "t1").Return(&model.Task{ID: "t1", OrganizationID: "org-1", Status: model.TaskStatusCompleted, CompletedAt: &completedAt}, nil)
	st.tasks.On("Update", ctx, "t1", repository.Fields{"status": model.TaskStatusCompleted, "actual_hours": 3.5, "updated_at": fixedNow}).
		Return(&model.Task{ID: "t1", Status: model.TaskStatusCompleted}, nil)

	status, hours := model.TaskStatusCompleted, 3.5
	_, err := svc.Update(ctx, "t1", UpdateTaskInput{Status: &status, ActualHours: &hours})
	require.NoError(t, err)
	st.assertAll(t)
}

func TestTaskService_Assign(t *testing.T) {
	ctx := actorCtx(auth.RoleManager)
	repos, st := newStores()
	box := &inbox{}
	svc := NewTaskService(repos, box, nil, nop)

	st.tasks.On("FindByID", ctx, "t1").Return(&model.Task{ID: "t1", OrganizationID: "org-1", Title: "Ship", AssigneeID: "u2"}, nil)
	st.users.On("Count", ctx, mock.Anything).Return(1, nil)
	st.tasks.On("Update", ctx, "t1", repository.Fields{"assignee_id": "u3", "updated_at": fixedNow}).
		Return(&model.Task{ID: "t1", OrganizationID: "org-1", Title: "Ship", AssigneeID: "u3"}, nil)

	task, err := svc.Assign(ctx, "t1", "u3")
	require.NoError(t, err)
	assert.Equal(t, "u3", task.AssigneeID)
	assert.Equal(t, []string{"u3:task_assigned"}, box.recipients())

	same, err := svc.Assign(ctx, "t1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", same.AssigneeID)
	st.tasks.AssertNumberOfCalls(t, "Update", 1)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := actorCtx(auth.RoleManager)
	byEntity := repository.Filter{"organization_id": "org-1", "entity_type": model.EntityTask, "entity_id": "t1"}

	t.Run("removes comments and file records", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTaskService(repos, nil, nil, nop)
		st.tasks.On("FindByID", ctx, "t1").Return(&model.Task{ID: "t1", OrganizationID: "org-1"}, nil)
		st.comments.On("DeleteMany", ctx, byEntity).Return(2, nil)
		st.files.On("DeleteMany", ctx, byEntity).Return(1, nil)
		st.tasks.On("Delete", ctx, "t1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "t1"))
		st.assertAll(t)
	})

	t.Run("keeps the task when file records fail", func(t *testing.T) {
		repos, st := newStores()
		svc := NewTaskService(repos, nil, nil, nop)
		st.tasks.On("FindByID", ctx, "t1").Return(&model.Task{ID: "t1", OrganizationID: "org-1"}, nil)
		st.comments.On("DeleteMany", ctx, byEntity).Return(0, nil)
		st.files.On("DeleteMany", ctx, byEntity).Return(0, errors.New("db down"))

		assert.EqualError(t, svc.Delete(ctx, "t1"), "db down")
		st.tasks.AssertNotCalled(t, "Delete", ctx, "t1")
	})
}
