package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/lending"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available books",
		Long: `List every book that can currently be borrowed, ordered by ID.

Examples:
  libcat list
  libcat list --books shelf/books.txt --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	books := bookList(s.lib.Available())
	if books == nil {
		books = bookList{}
	}
	return opts.formatter(cmd).Success(books)
}

// NewHoldingsCommand creates the holdings command.
func NewHoldingsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "holdings <user-id>",
		Short: "Show a user's borrowed books",
		Long: `Show the books a user currently has out, in the order they were borrowed.

Borrowed IDs that are not in the catalog are listed as "Unknown Title".

Exit codes:
  0 - User found
  1 - Unknown user
  2 - Command error

Examples:
  libcat holdings U1
  libcat holdings u1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHoldings(rootOpts, args[0], cmd)
		},
	}
}

func runHoldings(opts *RootOptions, rawUserID string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	f := opts.formatter(cmd)
	userID := catalog.NormalizeID(rawUserID)
	user, ok := s.lib.User(userID)
	if !ok {
		return f.Fail(ExitFailure, string(lending.CodeInvalidUser), &lending.Error{
			Code:    lending.CodeInvalidUser,
			Message: "Invalid user ID",
			UserID:  userID,
		})
	}
	holdings, _ := s.lib.Holdings(userID)
	return f.Success(holdingsView{UserID: user.ID, Name: user.Name, Books: holdings})
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify catalog consistency",
		Long: `Verify that a book is available exactly when no user holds it.

Reports unknown borrowed IDs, duplicate or shared holdings, and books whose
availability flag disagrees with the users file.

Exit codes:
  0 - Catalog is consistent
  1 - Violations found
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	violations := s.lib.Check()
	report := checkReport{Consistent: len(violations) == 0, Violations: violations}
	if report.Violations == nil {
		report.Violations = []catalog.Violation{}
	}

	f := opts.formatter(cmd)
	if report.Consistent {
		return f.Success(report)
	}

	msg := fmt.Sprintf("%d violation(s) found", len(violations))
	if opts.Format == "json" {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   report,
			Error:  &CLIError{Code: "E_INCONSISTENT", Message: msg},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(f.Writer, report)
	}
	return &ExitError{Code: ExitFailure, Message: msg, Reported: true}
}
