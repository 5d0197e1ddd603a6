package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/libcat/internal/config"
)

// workspace is a temp directory holding a books and a users file. Tests run
// with it as the working directory so no stray libcat.yaml or .env is read.
type workspace struct {
	dir   string
	books string
	users string
}

func newWorkspace(t *testing.T, books, users string) workspace {
	t.Helper()
	dir := t.TempDir()
	prevDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevDir) })
	t.Setenv(config.EnvBooks, "")
	t.Setenv(config.EnvUsers, "")
	t.Setenv(config.EnvJournal, "")

	ws := workspace{
		dir:   dir,
		books: filepath.Join(dir, "books.txt"),
		users: filepath.Join(dir, "user.txt"),
	}
	require.NoError(t, os.WriteFile(ws.books, []byte(books), 0o644))
	require.NoError(t, os.WriteFile(ws.users, []byte(users), 0o644))
	return ws
}

// run executes the root command with the workspace's record files.
func (ws workspace) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return execute(t, stdin, append([]string{"--books", ws.books, "--users", ws.users}, args...)...)
}

func (ws workspace) read(t *testing.T) (string, string) {
	t.Helper()
	b, err := os.ReadFile(ws.books)
	require.NoError(t, err)
	u, err := os.ReadFile(ws.users)
	require.NoError(t, err)
	return string(b), string(u)
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
