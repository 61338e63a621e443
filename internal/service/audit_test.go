package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/audit"
	"portfolioapi/internal/auth"
)

// queryLog remembers the last query and answers with fixed events.
type queryLog struct {
	got    audit.Query
	events []audit.Event
	total  int
	err    error
}

func (q *queryLog) Record(context.Context, audit.Event) error { return nil }

func (q *queryLog) List(_ context.Context, query audit.Query) ([]audit.Event, int, error) {
	q.got = query
	return q.events, q.total, q.err
}

func TestAuditService_List(t *testing.T) {
	ctx := actorCtx(auth.RoleAdmin)

	tests := []struct {
		name    string
		log     *queryLog
		filter  AuditFilter
		page    Page
		want    audit.Query
		wantLen int
		wantErr bool
	}{
		{
			name:    "scoped to the actor's organization",
			log:     &queryLog{events: []audit.Event{{ID: "e1"}, {ID: "e2"}}, total: 7},
			filter:  AuditFilter{ActorID: "u2", ResourceType: "task", ResourceID: "t1"},
			page:    Page{Limit: 2, Offset: 4},
			want:    audit.Query{OrganizationID: "org-1", ActorID: "u2", ResourceType: "task", ResourceID: "t1", Limit: 2, Offset: 4},
			wantLen: 2,
		},
		{
			name: "limit is capped and nil events become empty",
			log:  &queryLog{},
			page: Page{Limit: 5000},
			want: audit.Query{OrganizationID: "org-1", Limit: MaxPageLimit},
		},
		{
			name:    "recorder error",
			log:     &queryLog{err: errors.New("audit db down")},
			want:    audit.Query{OrganizationID: "org-1", Limit: DefaultPageLimit},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuditService(tt.log)

			res, err := svc.List(ctx, tt.filter, tt.page)
			assert.Equal(t, tt.want, tt.log.got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, res.Items)
			assert.Len(t, res.Items, tt.wantLen)
			assert.Equal(t, tt.log.total, res.Total)
			assert.Equal(t, tt.want.Limit, res.Limit)
		})
	}
}

func TestAuditService_Noop(t *testing.T) {
	svc := NewAuditService(nil)

	res, err := svc.List(actorCtx(auth.RoleAdmin), AuditFilter{}, Page{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	_, err = svc.List(context.Background(), AuditFilter{}, Page{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
