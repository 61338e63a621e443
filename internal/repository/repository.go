// Package repository contains data access layer abstractions.
// Implementations live in subpackages (mongodb) inside this directory.
package repository

import (
	"context"
	"errors"

	"portfolioapi/internal/model"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

// Filter is an equality match on stored field names. Values of type In
// match any of the listed values.
type Filter map[string]any

// In matches a field against a set of values.
type In []string

// Fields is a set of stored field names to overwrite.
type Fields map[string]any

// PageQuery holds limit/offset pagination parameters.
// Sort names a stored field; a leading '-' sorts descending. Empty sorts by newest first.
type PageQuery struct {
	Limit  int
	Offset int
	Sort   string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Store defines document persistence for one collection.
// No business logic here, strictly persistence operations.
type Store[T any] interface {
	// Create inserts a new document. The caller sets ID and timestamps.
	Create(ctx context.Context, item *T) (*T, error)

	// FindByID returns a document by its ID or ErrNotFound.
	FindByID(ctx context.Context, id string) (*T, error)

	// FindOne returns the first document matching f or ErrNotFound.
	FindOne(ctx context.Context, f Filter) (*T, error)

	// List returns a page of matching documents and the total match count.
	List(ctx context.Context, f Filter, pq PageQuery) (*PageResult[T], error)

	// FindAll returns every matching document, newest first.
	FindAll(ctx context.Context, f Filter) ([]T, error)

	// Update overwrites the given fields and returns the updated document or ErrNotFound.
	Update(ctx context.Context, id string, set Fields) (*T, error)

	// UpdateMany overwrites the given fields on every match and returns the number modified.
	UpdateMany(ctx context.Context, f Filter, set Fields) (int, error)

	// Delete removes a document by ID or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes every match and returns the number deleted.
	DeleteMany(ctx context.Context, f Filter) (int, error)

	// Count returns the number of matching documents.
	Count(ctx context.Context, f Filter) (int, error)
}

type (
	UserRepository         = Store[model.User]
	OrganizationRepository = Store[model.Organization]
	ProjectRepository      = Store[model.Project]
	TaskRepository         = Store[model.Task]
	TeamRepository         = Store[model.Team]
	CommentRepository      = Store[model.Comment]
	FileRepository         = Store[model.File]
	NotificationRepository = Store[model.Notification]
	RoleRepository         = Store[model.CustomRole]
	IntegrationRepository  = Store[model.Integration]
)
