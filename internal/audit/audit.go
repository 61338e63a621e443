// Package audit records who changed what. Writes are best-effort for callers.
package audit

import (
	"context"
	"time"
)

// Actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
)

// Event is one audited mutation.
type Event struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	ActorID        string         `json:"actor_id"`
	Action         string         `json:"action"`
	ResourceType   string         `json:"resource_type"`
	ResourceID     string         `json:"resource_id"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Query narrows List. OrganizationID is required; empty fields match everything.
type Query struct {
	OrganizationID string
	ActorID        string
	ResourceType   string
	ResourceID     string
	Limit          int
	Offset         int
}

// Recorder persists and lists audit events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
	List(ctx context.Context, q Query) ([]Event, int, error)
}

// Noop drops every event. It is used when no audit database is configured.
type Noop struct{}

func (Noop) Record(context.Context, Event) error { return nil }

func (Noop) List(context.Context, Query) ([]Event, int, error) { return []Event{}, 0, nil }
