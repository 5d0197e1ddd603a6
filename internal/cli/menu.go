package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/lending"
	"github.com/roach88/libcat/internal/library"
)

// NewMenuCommand creates the interactive menu command.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive lending menu",
		Long: `Run the interactive menu: view available books, borrow, return, exit.

Refused operations print "Error: ..." and return to the menu. The menu also
ends cleanly when input is closed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(rootOpts, cmd)
		},
	}
}

func runMenu(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m := &menu{
		lib: s.lib,
		in:  bufio.NewScanner(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}
	return m.run(ctx)
}

// menu is one interactive session over stdin/stdout.
type menu struct {
	lib *library.Library
	in  *bufio.Scanner
	out io.Writer
}

func (m *menu) run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out, "\nWelcome to Simple Library System")
		fmt.Fprintln(m.out, "1. View Available Books")
		fmt.Fprintln(m.out, "2. Borrow a Book")
		fmt.Fprintln(m.out, "3. Return a Book")
		fmt.Fprintln(m.out, "4. Exit")

		choice, ok := m.prompt("\nChoose an option (1-4): ")
		if !ok {
			return m.in.Err()
		}

		var err error
		switch strings.TrimSpace(choice) {
		case "1":
			m.listAvailable(m.lib.Available())
		case "2":
			err = m.borrow(ctx)
		case "3":
			err = m.giveBack(ctx)
		case "4":
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
		}
		if err != nil {
			return err
		}
	}
}

// prompt writes text and reads one line. ok is false once input is exhausted.
func (m *menu) prompt(text string) (string, bool) {
	fmt.Fprint(m.out, text)
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

func (m *menu) listAvailable(books []catalog.Book) {
	fmt.Fprintln(m.out, "\nAvailable Books:")
	for _, b := range books {
		fmt.Fprintf(m.out, " - %s: %s\n", b.ID, b.Title)
	}
}

func (m *menu) borrow(ctx context.Context) error {
	line, ok := m.prompt("\nEnter your user ID: ")
	if !ok {
		return nil
	}
	userID := catalog.NormalizeID(line)

	available := m.lib.Available()
	if len(available) == 0 {
		fmt.Fprintln(m.out, "No books available to borrow.")
		return nil
	}
	m.listAvailable(available)

	line, ok = m.prompt("\nEnter book ID to borrow: ")
	if !ok {
		return nil
	}
	receipt, err := m.lib.Borrow(ctx, userID, catalog.NormalizeID(line))
	return m.report(receipt, err)
}

func (m *menu) giveBack(ctx context.Context) error {
	line, ok := m.prompt("\nEnter your user ID: ")
	if !ok {
		return nil
	}
	userID := catalog.NormalizeID(line)

	holdings, found := m.lib.Holdings(userID)
	if !found {
		fmt.Fprintln(m.out, "Invalid user ID.")
		return nil
	}
	if len(holdings) == 0 {
		fmt.Fprintln(m.out, "You have not borrowed any books.")
		return nil
	}

	fmt.Fprintln(m.out, "\nYour Borrowed Books:")
	for _, h := range holdings {
		fmt.Fprintf(m.out, " - %s: %s\n", h.BookID, h.Title)
	}

	line, ok = m.prompt("\nEnter book ID to return: ")
	if !ok {
		return nil
	}
	receipt, err := m.lib.Return(ctx, userID, catalog.NormalizeID(line))
	return m.report(receipt, err)
}

// report prints the outcome of a lending call. Refusals keep the menu
// running; a failure to save the catalog ends it.
func (m *menu) report(receipt lending.Receipt, err error) error {
	if err == nil {
		fmt.Fprintln(m.out, receipt.Message())
		return nil
	}
	if lending.CodeOf(err) != "" {
		fmt.Fprintln(m.out, "Error:", err)
		return nil
	}
	return WrapExitError(ExitCommandError, "failed to save catalog", err)
}
