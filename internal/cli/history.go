package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	User    string
	Book    string
	Outcome string
	Limit   int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the lending journal",
		Long: `Show journaled borrow and return attempts, oldest first.

Requires a journal (--journal, LIBCAT_JOURNAL or the journal key in
libcat.yaml). Failed attempts are listed with their error code.

Examples:
  libcat history --journal libcat.db
  libcat history --journal libcat.db --user U1 --limit 10
  libcat history --journal libcat.db --outcome AlreadyBorrowed --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "only entries for this user ID")
	cmd.Flags().StringVar(&opts.Book, "book", "", "only entries for this book ID")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only entries with this outcome (ok, an error code, or PersistFailed)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "keep only the most recent N entries (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if cfg.Journal == "" {
		return NewExitError(ExitCommandError, "no journal configured (use --journal or LIBCAT_JOURNAL)")
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must be non-negative")
	}

	st, err := store.Open(cfg.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filter := store.Filter{Outcome: opts.Outcome, Limit: opts.Limit}
	if opts.User != "" {
		filter.UserID = catalog.NormalizeID(opts.User)
	}
	if opts.Book != "" {
		filter.BookID = catalog.NormalizeID(opts.Book)
	}

	entries, err := st.List(ctx, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	return opts.formatter(cmd).Success(historyView(entries))
}
