// Package database opens the MongoDB application store and the PostgreSQL
// audit database.
package database

import (
	"context"
	"fmt"
	"time"
)

// appName identifies this service in server-side connection listings.
const appName = "portfolioapi"

const pingTimeout = 5 * time.Second

// verify pings a freshly opened pool and closes it when the ping fails.
func verify(ctx context.Context, what string, ping func(context.Context) error, closePool func() error) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := ping(pingCtx); err != nil {
		_ = closePool()
		return fmt.Errorf("%s ping: %w", what, err)
	}
	return nil
}
