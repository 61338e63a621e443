package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/seed"
)

type calls struct {
	seeded   *seed.Options
	password string
	reset    bool
	removed  *seed.Options
}

func execute(t *testing.T, c *calls, args ...string) error {
	t.Helper()
	run := func(_ context.Context, opt seed.Options, password string, reset bool) error {
		c.seeded, c.password, c.reset = &opt, password, reset
		return nil
	}
	remove := func(_ context.Context, opt seed.Options) error {
		c.removed = &opt
		return nil
	}
	cmd := newRootCmd(viper.New(), run, remove)
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestRootCmd(t *testing.T) {
	def := seed.DefaultOptions()

	tests := []struct {
		name      string
		args      []string
		wantOpt   seed.Options
		wantPass  string
		wantReset bool
	}{
		{
			name:     "defaults",
			wantOpt:  def,
			wantPass: "demo-password",
		},
		{
			name:      "sizes and reset",
			args:      []string{"--seed=7", "--users=40", "--teams=5", "--projects=10", "--tasks=3", "--password=s3cret-pass", "--reset"},
			wantOpt:   seed.Options{Seed: 7, Users: 40, Teams: 5, Projects: 10, TasksPerProject: 3},
			wantPass:  "s3cret-pass",
			wantReset: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &calls{}
			require.NoError(t, execute(t, c, tt.args...))
			require.NotNil(t, c.seeded)
			assert.Equal(t, tt.wantOpt.Seed, c.seeded.Seed)
			assert.Equal(t, tt.wantOpt.Users, c.seeded.Users)
			assert.Equal(t, tt.wantOpt.Teams, c.seeded.Teams)
			assert.Equal(t, tt.wantOpt.Projects, c.seeded.Projects)
			assert.Equal(t, tt.wantOpt.TasksPerProject, c.seeded.TasksPerProject)
			assert.False(t, c.seeded.Now.IsZero())
			assert.Equal(t, tt.wantPass, c.password)
			assert.Equal(t, tt.wantReset, c.reset)
			assert.Nil(t, c.removed)
		})
	}
}

func TestRootCmd_Env(t *testing.T) {
	t.Setenv("SEED_USERS", "25")
	t.Setenv("SEED_SEED", "9")

	c := &calls{}
	require.NoError(t, execute(t, c, "--teams=2"))
	assert.Equal(t, 25, c.seeded.Users)
	assert.Equal(t, int64(9), c.seeded.Seed)
	assert.Equal(t, 2, c.seeded.Teams)
}

func TestResetCmd(t *testing.T) {
	c := &calls{}
	require.NoError(t, execute(t, c, "reset", "--seed=7"))
	require.NotNil(t, c.removed)
	assert.Equal(t, int64(7), c.removed.Seed)
	assert.Nil(t, c.seeded)
}

func TestRootCmd_Errors(t *testing.T) {
	c := &calls{}
	assert.Error(t, execute(t, c, "--users=many"))
	assert.Error(t, execute(t, c, "extra"))
	assert.Nil(t, c.seeded)

	failing := newRootCmd(viper.New(), func(context.Context, seed.Options, string, bool) error {
		return errors.New("mongo down")
	}, nil)
	failing.SetArgs([]string{})
	failing.SetOut(io.Discard)
	failing.SetErr(io.Discard)
	assert.EqualError(t, failing.Execute(), "mongo down")
}
