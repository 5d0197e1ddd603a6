// Package library runs lending operations against the catalog files.
//
// A Library owns one loaded catalog. Each Borrow or Return runs the pure
// transition from package lending, persists both record files when it
// succeeds, and appends the attempt to the journal when one is attached.
package library

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/lending"
	"github.com/roach88/libcat/internal/records"
	"github.com/roach88/libcat/internal/store"
)

// Journal records lending attempts. *store.Store implements it.
type Journal interface {
	Append(ctx context.Context, e store.Entry) (store.Entry, error)
}

// Options configures Open.
type Options struct {
	BooksPath string
	UsersPath string

	// Journal is optional.
	Journal Journal

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Library is a loaded catalog bound to its record files.
type Library struct {
	cat       *catalog.Catalog
	booksPath string
	usersPath string
	journal   Journal
	logger    *slog.Logger
}

// Open loads both record files. A malformed record is returned as an error
// wrapping records.ErrMalformedRecord; the caller should treat it as fatal.
// Consistency violations are logged as warnings and do not prevent opening.
func Open(opts Options) (*Library, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cat, err := records.LoadCatalog(opts.BooksPath, opts.UsersPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded",
		"books", len(cat.Books),
		"users", len(cat.Users),
		"books_path", opts.BooksPath,
		"users_path", opts.UsersPath)

	for _, v := range cat.Verify() {
		logger.Warn("catalog inconsistency", "kind", v.Kind, "book", v.BookID, "user", v.UserID)
	}

	return &Library{
		cat:       cat,
		booksPath: opts.BooksPath,
		usersPath: opts.UsersPath,
		journal:   opts.Journal,
		logger:    logger,
	}, nil
}

// Available lists books that can be borrowed.
func (l *Library) Available() []catalog.Book {
	return l.cat.AvailableBooks()
}

// User looks up a user by ID.
func (l *Library) User(id string) (catalog.User, bool) {
	u, ok := l.cat.Users[id]
	if !ok {
		return catalog.User{}, false
	}
	return *u, true
}

// Holdings lists what a user currently has out.
func (l *Library) Holdings(userID string) ([]catalog.Holding, bool) {
	return l.cat.Holdings(userID)
}

// Check returns every consistency violation in the loaded catalog.
func (l *Library) Check() []catalog.Violation {
	return l.cat.Verify()
}

// Borrow lends bookID to userID and saves the catalog.
func (l *Library) Borrow(ctx context.Context, userID, bookID string) (lending.Receipt, error) {
	return l.apply(ctx, lending.ActionBorrow, userID, bookID)
}

// Return takes bookID back from userID and saves the catalog.
func (l *Library) Return(ctx context.Context, userID, bookID string) (lending.Receipt, error) {
	return l.apply(ctx, lending.ActionReturn, userID, bookID)
}

func (l *Library) apply(ctx context.Context, action lending.Action, userID, bookID string) (lending.Receipt, error) {
	receipt, err := lending.Apply(l.cat, action, userID, bookID)
	if err != nil {
		l.logger.Debug("lending rejected", "action", action, "user", userID, "book", bookID, "error", err)
		l.record(ctx, action, userID, bookID, string(lending.CodeOf(err)), err.Error())
		return lending.Receipt{}, err
	}

	if err := records.SaveCatalog(l.cat, l.booksPath, l.usersPath); err != nil {
		err = fmt.Errorf("persist %s: %w", action, err)
		l.logger.Error("lending not persisted", "action", action, "user", userID, "book", bookID, "error", err)
		l.record(ctx, action, userID, bookID, store.OutcomePersistFailed, err.Error())
		return receipt, err
	}
	l.logger.Info("lending applied", "action", action, "user", userID, "book", bookID)

	l.record(ctx, action, userID, bookID, store.OutcomeOK, receipt.Message())
	return receipt, nil
}

// record appends to the journal. Journal failures are logged, not returned:
// the catalog files are already the source of truth at this point.
func (l *Library) record(ctx context.Context, action lending.Action, userID, bookID, outcome, message string) {
	if l.journal == nil {
		return
	}
	_, err := l.journal.Append(ctx, store.Entry{
		Action:  string(action),
		UserID:  userID,
		BookID:  bookID,
		Outcome: outcome,
		Message: message,
	})
	if err != nil {
		l.logger.Error("journal append failed", "action", action, "user", userID, "book", bookID, "error", err)
	}
}
