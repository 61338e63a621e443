package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := NewPostgres(db)
	rec.now = func() time.Time { return now }

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(sqlmock.AnyArg(), "org-1", "u1", ActionCreate, "project", "p1", []byte(`{"name":"Apollo"}`), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = rec.Record(context.Background(), Event{
		OrganizationID: "org-1",
		ActorID:        "u1",
		Action:         ActionCreate,
		ResourceType:   "project",
		ResourceID:     "p1",
		Metadata:       map[string]any{"name": "Apollo"},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_events").WillReturnError(errors.New("connection reset"))

	err = NewPostgres(db).Record(context.Background(), Event{OrganizationID: "org-1", Action: ActionDelete})
	assert.ErrorContains(t, err, "insert audit event: connection reset")
}

func TestPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_events WHERE organization_id = \$1 AND resource_type = \$2`).
		WithArgs("org-1", "task").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	mock.ExpectQuery(`SELECT (.+) FROM audit_events WHERE organization_id = \$1 AND resource_type = \$2 ORDER BY created_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("org-1", "task", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "actor_id", "action", "resource_type", "resource_id", "metadata", "created_at"}).
			AddRow("e1", "org-1", "u1", ActionUpdate, "task", "t1", []byte(`{"status":"completed"}`), created).
			AddRow("e2", "org-1", "u2", ActionCreate, "task", "t2", []byte(`{}`), created))

	items, total, err := NewPostgres(db).List(context.Background(), Query{OrganizationID: "org-1", ResourceType: "task", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "completed", items[0].Metadata["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListCountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("boom"))

	items, _, err := NewPostgres(db).List(context.Background(), Query{OrganizationID: "org-1", Limit: 10})
	assert.Error(t, err)
	assert.Nil(t, items)
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause(Query{OrganizationID: "o", ActorID: "a", ResourceID: "r"})
	assert.Equal(t, " WHERE organization_id = $1 AND actor_id = $2 AND resource_id = $3", where)
	assert.Equal(t, []any{"o", "a", "r"}, args)
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	assert.NoError(t, r.Record(context.Background(), Event{}))
	items, total, err := r.List(context.Background(), Query{})
	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}
