package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portfolioapi/internal/seed"
)

type (
	seedFunc  func(ctx context.Context, opt seed.Options, password string, reset bool) error
	resetFunc func(ctx context.Context, opt seed.Options) error
)

// newRootCmd builds the seed command tree. Flags are bound through v, so
// SEED_USERS and friends override the defaults as well.
func newRootCmd(v *viper.Viper, run seedFunc, reset resetFunc) *cobra.Command {
	def := seed.DefaultOptions()

	root := &cobra.Command{
		Use:   "seed",
		Short: "Fill MongoDB with a generated demo organization",
		Long: `Generate a demo organization with users, teams, projects, tasks and
comments, and write it to the configured MongoDB database.

Examples:
  # Default dataset
  seed

  # Larger dataset, replacing an earlier run with the same seed
  seed --seed=7 --users=40 --projects=10 --reset

  # Remove the organization generated for seed 7
  seed reset --seed=7
`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), options(v, def), v.GetString("password"), v.GetBool("reset"))
		},
	}

	pf := root.PersistentFlags()
	pf.Int64("seed", def.Seed, "random seed; the same seed yields the same dataset")

	f := root.Flags()
	f.Int("users", def.Users, "number of users")
	f.Int("teams", def.Teams, "number of teams")
	f.Int("projects", def.Projects, "number of projects")
	f.Int("tasks", def.TasksPerProject, "tasks per project")
	f.String("password", "demo-password", "password shared by every generated user")
	f.Bool("reset", false, "remove a previously seeded organization with the same seed first")

	_ = v.BindPFlags(pf)
	_ = v.BindPFlags(f)
	v.SetEnvPrefix("seed")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Remove the seeded organization and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reset(cmd.Context(), options(v, def))
		},
	})
	return root
}

func options(v *viper.Viper, def seed.Options) seed.Options {
	opt := def
	opt.Seed = v.GetInt64("seed")
	opt.Users = v.GetInt("users")
	opt.Teams = v.GetInt("teams")
	opt.Projects = v.GetInt("projects")
	opt.TasksPerProject = v.GetInt("tasks")
	return opt
}
