// Command seed fills MongoDB with a generated demo organization.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/config"
	"portfolioapi/internal/database"
	"portfolioapi/internal/database/migration"
	"portfolioapi/internal/logging"
	"portfolioapi/internal/repository/mongodb"
	"portfolioapi/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(viper.New(), seedDatabase, resetDatabase).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// target is an open connection to the application database.
type target struct {
	log   *zap.Logger
	sink  seed.Sink
	close func()
}

func open(ctx context.Context) (*target, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	log = log.Named("seed")

	db, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}
	if err := migration.EnsureIndexes(ctx, migration.DatabaseIndexes{DB: db.DB}, log); err != nil {
		_ = db.Close(context.Background())
		log.Error("failed to ensure indexes", zap.Error(err))
		return nil, err
	}

	stores := mongodb.NewStores(db.DB)
	return &target{
		log: log,
		sink: seed.Sink{
			Organizations: stores.Organizations,
			Users:         stores.Users,
			Teams:         stores.Teams,
			Projects:      stores.Projects,
			Tasks:         stores.Tasks,
			Comments:      stores.Comments,
			Notifications: stores.Notifications,
			Files:         stores.Files,
		},
		close: func() {
			_ = db.Close(context.Background())
			_ = log.Sync()
		},
	}, nil
}

func (t *target) reset(ctx context.Context, opt seed.Options) error {
	slug := seed.OrganizationSlug(opt)
	removed, err := seed.Reset(ctx, t.sink, slug)
	if err != nil {
		t.log.Error("reset failed", zap.String("slug", slug), zap.Error(err))
		return err
	}
	t.log.Info("seed_reset", zap.String("slug", slug), zap.Any("removed", removed))
	return nil
}

func resetDatabase(ctx context.Context, opt seed.Options) error {
	t, err := open(ctx)
	if err != nil {
		return err
	}
	defer t.close()
	return t.reset(ctx, opt)
}

func seedDatabase(ctx context.Context, opt seed.Options, password string, reset bool) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	opt.PasswordHash = hash

	t, err := open(ctx)
	if err != nil {
		return err
	}
	defer t.close()

	if reset {
		if err := t.reset(ctx, opt); err != nil {
			return err
		}
	}

	ds := seed.Generate(opt)
	written, err := seed.Write(ctx, t.sink, ds)
	if err != nil {
		t.log.Error("seed failed", zap.Any("written", written), zap.Error(err))
		return err
	}
	t.log.Info("seed_complete",
		zap.String("organization", ds.Organization.Name),
		zap.String("slug", ds.Organization.Slug),
		zap.String("login", ds.Users[0].Email),
		zap.Any("written", written),
	)
	return nil
}
