package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// OutcomeOK marks a successful transition. Failed attempts store the
// lending error code instead.
const OutcomeOK = "ok"

// OutcomePersistFailed marks a transition that was applied in memory but
// could not be written to the record files.
const OutcomePersistFailed = "PersistFailed"

// Entry is one journaled borrow or return attempt.
type Entry struct {
	Seq     int64  `json:"seq"`
	ID      string `json:"id"`
	Action  string `json:"action"`
	UserID  string `json:"user_id"`
	BookID  string `json:"book_id"`
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

// Filter narrows List and Count. Zero values match everything.
type Filter struct {
	UserID  string
	BookID  string
	Outcome string

	// Limit keeps only the most recent N entries (still returned in seq order).
	Limit int
}

// Append writes an entry and returns it with Seq (and ID, when empty) filled in.
// Uses ON CONFLICT(id) DO NOTHING: appending an existing ID returns the stored entry.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = s.ids.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("append entry: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO journal (id, action, user_id, book_id, outcome, message)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, e.ID, e.Action, e.UserID, e.BookID, e.Outcome, e.Message)
	if err != nil {
		return Entry{}, fmt.Errorf("append entry: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Entry{}, fmt.Errorf("append entry: rows affected: %w", err)
	}

	if rowsAffected > 0 {
		e.Seq, err = result.LastInsertId()
		if err != nil {
			return Entry{}, fmt.Errorf("append entry: last insert id: %w", err)
		}
	} else {
		row := tx.QueryRowContext(ctx, `
			SELECT seq, id, action, user_id, book_id, outcome, message
			FROM journal WHERE id = ?
		`, e.ID)
		if e, err = scanEntry(row); err != nil {
			return Entry{}, fmt.Errorf("append entry: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("append entry: commit: %w", err)
	}
	return e, nil
}

// List returns entries matching f ordered by seq ascending.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	where, args := f.where()
	query := `SELECT seq, id, action, user_id, book_id, outcome, message FROM journal` + where + ` ORDER BY seq ASC`
	if f.Limit > 0 {
		query = `SELECT * FROM (SELECT seq, id, action, user_id, book_id, outcome, message FROM journal` +
			where + ` ORDER BY seq DESC LIMIT ?) ORDER BY seq ASC`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries matching f. Limit is ignored.
func (s *Store) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.where()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.BookID != "" {
		conds = append(conds, "book_id = ?")
		args = append(args, f.BookID)
	}
	if f.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, f.Outcome)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

var _ rowScanner = (*sql.Row)(nil)

func scanEntry(r rowScanner) (Entry, error) {
	var e Entry
	err := r.Scan(&e.Seq, &e.ID, &e.Action, &e.UserID, &e.BookID, &e.Outcome, &e.Message)
	return e, err
}
