package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"portfolioapi/internal/config"
)

var (
	mongoConnect = mongo.Connect
	mongoPing    = func(ctx context.Context, c *mongo.Client) error { return c.Ping(ctx, readpref.Primary()) }
)

// BuildMongoURI validates the configured URI and applies an application name.
func BuildMongoURI(c config.MongoConfig) (string, error) {
	if c.URI == "" || c.Database == "" {
		return "", fmt.Errorf("invalid mongo config: uri and database are required")
	}
	u, err := url.Parse(c.URI)
	if err != nil {
		return "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return "", fmt.Errorf("invalid mongo uri scheme %q", u.Scheme)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	q := u.Query()
	if q.Get("appName") == "" {
		q.Set("appName", appName)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Mongo holds the shared client and the application database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Ping checks primary connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	return mongoPing(ctx, m.Client)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// NewMongo connects with pooling settings and an OpenTelemetry command monitor,
// and verifies connectivity with a short timeout.
func NewMongo(ctx context.Context, c config.MongoConfig) (*Mongo, error) {
	uri, err := BuildMongoURI(c)
	if err != nil {
		return nil, err
	}

	opts := options.Client().
		ApplyURI(uri).
		SetMonitor(otelmongo.NewMonitor())
	if c.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(c.MaxPoolSize)
	}
	if c.ConnectTimeoutSec > 0 {
		opts.SetConnectTimeout(time.Duration(c.ConnectTimeoutSec) * time.Second)
	}

	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	ping := func(ctx context.Context) error { return mongoPing(ctx, client) }
	disconnect := func() error { return client.Disconnect(context.Background()) }
	if err := verify(ctx, "mongo", ping, disconnect); err != nil {
		return nil, err
	}
	return &Mongo{Client: client, DB: client.Database(c.Database)}, nil
}
