package migration

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"portfolioapi/internal/repository/mongodb"
)

type indexStep struct {
	Name       string
	Collection string
	Keys       bson.D
	Unique     bool
}

var steps = []indexStep{
	{Name: "users_email_unique", Collection: mongodb.CollUsers, Keys: bson.D{{Key: "email", Value: 1}}, Unique: true},
	{Name: "users_org_status", Collection: mongodb.CollUsers, Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "status", Value: 1}}},
	{Name: "organizations_slug_unique", Collection: mongodb.CollOrganizations, Keys: bson.D{{Key: "slug", Value: 1}}, Unique: true},
	{Name: "projects_org_status", Collection: mongodb.CollProjects, Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "status", Value: 1}}},
	{Name: "projects_org_created", Collection: mongodb.CollProjects, Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}}},
	{Name: "tasks_project_status", Collection: mongodb.CollTasks, Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "status", Value: 1}}},
	{Name: "tasks_org_assignee", Collection: mongodb.CollTasks, Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "assignee_id", Value: 1}}},
	{Name: "tasks_due_date", Collection: mongodb.CollTasks, Keys: bson.D{{Key: "due_date", Value: 1}}},
	{Name: "teams_org", Collection: mongodb.CollTeams, Keys: bson.D{{Key: "organization_id", Value: 1}}},
	{Name: "teams_members_user", Collection: mongodb.CollTeams, Keys: bson.D{{Key: "members.user_id", Value: 1}}},
	{Name: "comments_entity", Collection: mongodb.CollComments, Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}}},
	{Name: "files_entity", Collection: mongodb.CollFiles, Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}}},
	{Name: "files_storage_path_unique", Collection: mongodb.CollFiles, Keys: bson.D{{Key: "storage_path", Value: 1}}, Unique: true},
	{Name: "notifications_user_read", Collection: mongodb.CollNotifications, Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}}},
	{Name: "roles_org_name_unique", Collection: mongodb.CollRoles, Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "name", Value: 1}}, Unique: true},
	{Name: "integrations_org_provider_unique", Collection: mongodb.CollIntegrations, Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "provider", Value: 1}}, Unique: true},
}

// Steps returns the names of the index steps in execution order.
func Steps() []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

// IndexCreator creates one index on a collection. *mongo.Database satisfies it through DatabaseIndexes.
type IndexCreator interface {
	CreateIndex(ctx context.Context, collection string, model mongo.IndexModel) (string, error)
}

// DatabaseIndexes adapts a *mongo.Database to IndexCreator.
type DatabaseIndexes struct {
	DB *mongo.Database
}

func (d DatabaseIndexes) CreateIndex(ctx context.Context, collection string, model mongo.IndexModel) (string, error) {
	return d.DB.Collection(collection).Indexes().CreateOne(ctx, model)
}

// EnsureIndexes creates every index step. Creating an index that already exists
// with the same definition is a no-op in MongoDB, so the whole run is idempotent.
func EnsureIndexes(ctx context.Context, ic IndexCreator, log *zap.Logger) error {
	log = log.Named("database")
	start := time.Now()
	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	for _, step := range steps {
		stepStart := time.Now()
		model := mongo.IndexModel{
			Keys:    step.Keys,
			Options: options.Index().SetName(step.Name).SetUnique(step.Unique),
		}
		if _, err := ic.CreateIndex(ctx, step.Collection, model); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("duration_ms", time.Since(start)),
				zap.Duration("step_duration_ms", time.Since(stepStart)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Duration("step_duration_ms", time.Since(stepStart)),
		)
	}

	log.Info("db_migration_success", zap.String("status", "success"), zap.Duration("duration_ms", time.Since(start)))
	return nil
}
