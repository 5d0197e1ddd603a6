package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/libcat/internal/config"
	"github.com/roach88/libcat/internal/library"
	"github.com/roach88/libcat/internal/records"
	"github.com/roach88/libcat/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is an explicit config file; empty falls back to libcat.yaml.
	Config string

	// Books, Users and Journal override the config when their flag is set.
	Books   string
	Users   string
	Journal string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the libcat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "libcat",
		Short: "libcat - a small library lending catalog",
		Long: `Borrow and return books against a flat-file catalog.

Books live in books.txt (id,title,True|False) and users in user.txt
(id,name,borrowed ids...). Every successful borrow or return rewrites both
files. An optional SQLite journal records every attempt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default libcat.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.Books, "books", records.DefaultBooksPath, "books record file")
	cmd.PersistentFlags().StringVar(&opts.Users, "users", records.DefaultUsersPath, "users record file")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "SQLite journal path (empty disables the journal)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewBorrowCommand(opts))
	cmd.AddCommand(NewReturnCommand(opts))
	cmd.AddCommand(NewHoldingsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewMenuCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  o.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: o.Verbose,
	}
}

// logger writes structured logs to the command's stderr. Warnings and
// errors are always shown; --verbose adds debug and info.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers explicitly set flags over config.Load.
func (o *RootOptions) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return config.Config{}, err
	}
	if flagChanged(cmd, "books") {
		cfg.Books = o.Books
	}
	if flagChanged(cmd, "users") {
		cfg.Users = o.Users
	}
	if flagChanged(cmd, "journal") {
		cfg.Journal = o.Journal
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// session is an opened catalog plus its optional journal.
type session struct {
	lib     *library.Library
	journal *store.Store
	logger  *slog.Logger
}

// openSession resolves configuration, opens the journal when configured and
// loads the catalog. Failures are command errors.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := opts.logger(cmd)

	s := &session{logger: logger}
	libOpts := library.Options{
		BooksPath: cfg.Books,
		UsersPath: cfg.Users,
		Logger:    logger,
	}
	if cfg.Journal != "" {
		st, err := store.Open(cfg.Journal)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		logger.Debug("journal opened", "path", cfg.Journal)
		s.journal = st
		libOpts.Journal = st
	}

	s.lib, err = library.Open(libOpts)
	if err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return s, nil
}

// Close releases the journal, if any.
func (s *session) Close() {
	if err := s.journal.Close(); err != nil {
		s.logger.Error("failed to close journal", "error", err)
	}
}
