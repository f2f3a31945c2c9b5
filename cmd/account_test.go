package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestAccountCreate(t *testing.T) {
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "cli.sqlite"))
	t.Setenv("SECRET_ACCESS_TOKEN", "cli-secret")

	out, err := execute(t, "account", "create", "--name", "Maria", "--phone", "11999990000", "--role", "elder")
	require.NoError(t, err)
	require.Contains(t, out, "id: 1\n")
	require.Contains(t, out, "role: elder\n")
	require.Contains(t, out, "token: ")

	out, err = execute(t, "migrate")
	require.NoError(t, err, out)
}

func TestAccountCreate_RejectsRole(t *testing.T) {
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "cli.sqlite"))

	_, err := execute(t, "account", "create", "--name", "Nobody", "--role", "admin")
	require.ErrorContains(t, err, "--role must be")
}
