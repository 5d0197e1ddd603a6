package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "libcat", cmd.Use)
	assert.Contains(t, cmd.Long, "books.txt")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"list", "borrow", "return", "holdings", "check", "history", "menu", "scenario"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	booksFlag := cmd.PersistentFlags().Lookup("books")
	require.NotNil(t, booksFlag)
	assert.Equal(t, "books.txt", booksFlag.DefValue)

	usersFlag := cmd.PersistentFlags().Lookup("users")
	require.NotNil(t, usersFlag)
	assert.Equal(t, "user.txt", usersFlag.DefValue)

	journalFlag := cmd.PersistentFlags().Lookup("journal")
	require.NotNil(t, journalFlag)
	assert.Equal(t, "", journalFlag.DefValue)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	for _, name := range []string{"user", "book", "outcome", "limit"} {
		assert.NotNil(t, historyCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "0", historyCmd.Flags().Lookup("limit").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	ws := newWorkspace(t, "B1,Dune,True\n", "U1,Alice\n")

	_, _, err := ws.run(t, "", "list", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestWrongArgCount_IsCommandError(t *testing.T) {
	ws := newWorkspace(t, "B1,Dune,True\n", "U1,Alice\n")

	_, _, err := ws.run(t, "", "borrow", "U1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, IsReported(err))
}
