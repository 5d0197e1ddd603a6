package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/lending"
)

// NewBorrowCommand creates the borrow command.
func NewBorrowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <user-id> <book-id>",
		Short: "Borrow a book",
		Long: `Lend an available book to a user and rewrite both record files.

IDs are case-insensitive: they are trimmed and upper-cased before lookup.

Exit codes:
  0 - Book borrowed
  1 - Lending refused (InvalidUser, InvalidBook, AlreadyBorrowed, InconsistentState)
  2 - Command error (missing or malformed record files, unwritable files)

Examples:
  libcat borrow U1 B1
  libcat borrow u1 b1 --journal libcat.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLend(rootOpts, lending.ActionBorrow, args[0], args[1], cmd)
		},
	}
}

// NewReturnCommand creates the return command.
func NewReturnCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "return <user-id> <book-id>",
		Short: "Return a borrowed book",
		Long: `Take a book back from the user who borrowed it and rewrite both record files.

Exit codes:
  0 - Book returned
  1 - Lending refused (InvalidUser, NotBorrowedByUser, InconsistentState)
  2 - Command error

Examples:
  libcat return U1 B1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLend(rootOpts, lending.ActionReturn, args[0], args[1], cmd)
		},
	}
}

func runLend(opts *RootOptions, action lending.Action, rawUserID, rawBookID string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	userID := catalog.NormalizeID(rawUserID)
	bookID := catalog.NormalizeID(rawBookID)

	var receipt lending.Receipt
	if action == lending.ActionReturn {
		receipt, err = s.lib.Return(ctx, userID, bookID)
	} else {
		receipt, err = s.lib.Borrow(ctx, userID, bookID)
	}

	f := opts.formatter(cmd)
	if err != nil {
		if code := lending.CodeOf(err); code != "" {
			return f.Fail(ExitFailure, string(code), err)
		}
		return WrapExitError(ExitCommandError, "failed to save catalog", err)
	}
	return f.Success(newLendResult(receipt))
}
