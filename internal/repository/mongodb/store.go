// Package mongodb implements repository.Store on top of MongoDB collections.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolioapi/internal/model"
	"portfolioapi/internal/repository"
)

// Collection names.
const (
	CollUsers         = "users"
	CollOrganizations = "organizations"
	CollProjects      = "projects"
	CollTasks         = "tasks"
	CollTeams         = "teams"
	CollComments      = "comments"
	CollFiles         = "files"
	CollNotifications = "notifications"
	CollRoles         = "roles"
	CollIntegrations  = "integrations"
)

// Store is a MongoDB implementation of repository.Store for documents of type T.
// Documents are keyed by a string _id. It contains no business logic.
type Store[T any] struct {
	coll *mongo.Collection
}

// NewStore wraps a collection.
func NewStore[T any](coll *mongo.Collection) *Store[T] {
	return &Store[T]{coll: coll}
}

var _ repository.Store[model.Project] = (*Store[model.Project])(nil)

// Create inserts a document and returns it unchanged.
func (s *Store[T]) Create(ctx context.Context, item *T) (*T, error) {
	if _, err := s.coll.InsertOne(ctx, item); err != nil {
		return nil, mapWriteError(err)
	}
	return item, nil
}

// FindByID fetches a single document by its ID.
func (s *Store[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return s.FindOne(ctx, repository.Filter{"_id": id})
}

// FindOne fetches the first document matching f.
func (s *Store[T]) FindOne(ctx context.Context, f repository.Filter) (*T, error) {
	var out T
	if err := s.coll.FindOne(ctx, toBSON(f)).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// List returns documents using skip/limit pagination and a total count.
func (s *Store[T]) List(ctx context.Context, f repository.Filter, pq repository.PageQuery) (*repository.PageResult[T], error) {
	filter := toBSON(f)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", s.coll.Name(), err)
	}

	opts := options.Find().
		SetSort(sortSpec(pq.Sort)).
		SetSkip(int64(pq.Offset))
	if pq.Limit > 0 {
		opts.SetLimit(int64(pq.Limit))
	}

	items, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[T]{Items: items, Total: int(total)}, nil
}

// FindAll returns every matching document, newest first.
func (s *Store[T]) FindAll(ctx context.Context, f repository.Filter) ([]T, error) {
	return s.find(ctx, toBSON(f), options.Find().SetSort(sortSpec("")))
}

func (s *Store[T]) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.coll.Name(), err)
	}
	defer cur.Close(ctx)

	items := make([]T, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.coll.Name(), err)
	}
	return items, nil
}

// Update applies $set and returns the document after the update.
func (s *Store[T]) Update(ctx context.Context, id string, set repository.Fields) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(set)}, opts)

	var out T
	if err := res.Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, mapWriteError(err)
	}
	return &out, nil
}

// UpdateMany applies $set to every match.
func (s *Store[T]) UpdateMany(ctx context.Context, f repository.Filter, set repository.Fields) (int, error) {
	res, err := s.coll.UpdateMany(ctx, toBSON(f), bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, mapWriteError(err)
	}
	return int(res.ModifiedCount), nil
}

// Delete removes a document by ID.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteMany removes every match.
func (s *Store[T]) DeleteMany(ctx context.Context, f repository.Filter) (int, error) {
	res, err := s.coll.DeleteMany(ctx, toBSON(f))
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// Count returns the number of matching documents.
func (s *Store[T]) Count(ctx context.Context, f repository.Filter) (int, error) {
	n, err := s.coll.CountDocuments(ctx, toBSON(f))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func toBSON(f repository.Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		if in, ok := v.(repository.In); ok {
			out[k] = bson.M{"$in": []string(in)}
			continue
		}
		out[k] = v
	}
	return out
}

func sortSpec(sort string) bson.D {
	if sort == "" {
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
	dir := 1
	if strings.HasPrefix(sort, "-") {
		dir = -1
		sort = sort[1:]
	}
	return bson.D{{Key: sort, Value: dir}, {Key: "_id", Value: dir}}
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}
