package audit

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate audit: %w", err)
	}
	return nil
}

// Postgres stores audit events in the audit_events table using parameterized queries.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

var _ Recorder = (*Postgres)(nil)

// Record inserts e, assigning an ID and timestamp when missing.
func (p *Postgres) Record(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = p.now().UTC()
	}
	meta, err := json.Marshal(orEmpty(e.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	const q = `
		INSERT INTO audit_events (id, organization_id, actor_id, action, resource_type, resource_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := p.db.ExecContext(ctx, q,
		e.ID, e.OrganizationID, e.ActorID, e.Action, e.ResourceType, e.ResourceID, meta, e.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns a page of events for an organization, newest first, and the total count.
func (p *Postgres) List(ctx context.Context, q Query) ([]Event, int, error) {
	where, args := whereClause(q)

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_events"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	n := len(args)
	listQ := `SELECT id, organization_id, actor_id, action, resource_type, resource_id, metadata, created_at
		FROM audit_events` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := p.db.QueryContext(ctx, listQ, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	items := make([]Event, 0)
	for rows.Next() {
		var (
			e    Event
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.ActorID, &e.Action, &e.ResourceType, &e.ResourceID, &meta, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, 0, fmt.Errorf("decode metadata: %w", err)
			}
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func whereClause(q Query) (string, []any) {
	conds := []string{"organization_id = $1"}
	args := []any{q.OrganizationID}
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, col+" = $"+strconv.Itoa(len(args)))
	}
	add("actor_id", q.ActorID)
	add("resource_type", q.ResourceType)
	add("resource_id", q.ResourceID)
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
