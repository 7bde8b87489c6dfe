package cmd

import (
	"errors"
	"fmt"
	"testing"

	"mdb/internal/api"
	"mdb/internal/cli"
	"mdb/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	assert.Equal(t, "mdb", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)
	assert.True(t, root.SilenceUsage)

	for _, flag := range []string{"config", "debug", "output", "no-headers", "quiet"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestSubcommands(t *testing.T) {
	root := newRootCmd()

	found := map[string]bool{}
	for _, c := range root.Commands() {
		found[c.Name()] = true
	}
	for _, expected := range []string{"auth", "forum", "version"} {
		assert.True(t, found[expected], "expected subcommand %s", expected)
	}

	auth, _, err := root.Find([]string{"auth"})
	assert.NoError(t, err)
	names := map[string]bool{}
	for _, c := range auth.Commands() {
		names[c.Name()] = true
	}
	for _, expected := range []string{"login", "logout", "status", "whoami"} {
		assert.True(t, names[expected], "expected auth subcommand %s", expected)
	}
}

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), ExitCodeError},
		{"auth required", &cli.AuthRequiredError{Backend: "http://x"}, ExitCodeAuthRequired},
		{"wrapped auth required", fmt.Errorf("listing: %w", &cli.AuthRequiredError{}), ExitCodeAuthRequired},
		{"no token", fmt.Errorf("post: %w", session.ErrNoToken), ExitCodeAuthRequired},
		{"auth failed", &cli.AuthFailedError{Reason: &api.Error{Kind: api.KindUnauthorized}}, ExitCodeAuthFailed},
		{"api error", &api.Error{Kind: api.KindServerError}, ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	env := newTestEnv(t, newFakeForum(t))

	_, _, err := env.run(t, "forum", "threads", "-o", "xml")
	assert.Error(t, err)
	assert.Equal(t, 0, env.forum.count("GET /api/forums/threads"))
}
