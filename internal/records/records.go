package records

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/libcat/internal/catalog"
)

// Default file names used when no path is configured.
const (
	DefaultBooksPath = "books.txt"
	DefaultUsersPath = "user.txt"
)

// Availability tokens written to the books file.
const (
	TokenTrue  = "True"
	TokenFalse = "False"
)

const (
	bookFields    = 3
	minUserFields = 2

	maxLineBytes = 1 << 20
)

// ReadBooks parses book records from r.
// Later lines replace earlier lines with the same ID.
func ReadBooks(r io.Reader) (catalog.Books, error) {
	books := catalog.Books{}
	err := eachRecord(r, func(line int, fields []string) error {
		if len(fields) != bookFields {
			return &RecordError{Line: line, Reason: fmt.Sprintf("book record has %d fields, want %d", len(fields), bookFields)}
		}
		available, ok := parseAvailable(fields[2])
		if !ok {
			return &RecordError{Line: line, Reason: fmt.Sprintf("unrecognized availability flag %q", fields[2])}
		}
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return &RecordError{Line: line, Reason: "empty book id"}
		}
		books[id] = &catalog.Book{ID: id, Title: fields[1], Available: available}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// ReadUsers parses user records from r.
// Empty borrowed-ID fields are dropped.
func ReadUsers(r io.Reader) (catalog.Users, error) {
	users := catalog.Users{}
	err := eachRecord(r, func(line int, fields []string) error {
		if len(fields) < minUserFields {
			return &RecordError{Line: line, Reason: fmt.Sprintf("user record has %d fields, want at least %d", len(fields), minUserFields)}
		}
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return &RecordError{Line: line, Reason: "empty user id"}
		}
		borrowed := make([]string, 0, len(fields)-minUserFields)
		for _, f := range fields[minUserFields:] {
			if bid := strings.TrimSpace(f); bid != "" {
				borrowed = append(borrowed, bid)
			}
		}
		users[id] = &catalog.User{ID: id, Name: fields[1], Borrowed: borrowed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// WriteBooks writes one record per book, ordered by ID.
func WriteBooks(w io.Writer, books catalog.Books) error {
	bw := bufio.NewWriter(w)
	for _, id := range books.IDs() {
		b := books[id]
		if err := writeRecord(bw, []string{b.ID, b.Title, formatAvailable(b.Available)}); err != nil {
			return fmt.Errorf("write book %s: %w", id, err)
		}
	}
	return bw.Flush()
}

// WriteUsers writes one record per user, ordered by ID.
// Users holding nothing are written as id,name.
func WriteUsers(w io.Writer, users catalog.Users) error {
	bw := bufio.NewWriter(w)
	for _, id := range users.IDs() {
		u := users[id]
		rec := append([]string{u.ID, u.Name}, u.Borrowed...)
		if err := writeRecord(bw, rec); err != nil {
			return fmt.Errorf("write user %s: %w", id, err)
		}
	}
	return bw.Flush()
}

// writeRecord joins fields with commas. Only fields holding a comma or a
// quote are quoted, so every other field is written exactly as it was read.
func writeRecord(w *bufio.Writer, fields []string) error {
	out := make([]string, len(fields))
	for i, f := range fields {
		switch {
		case strings.ContainsAny(f, "\r\n"):
			return fmt.Errorf("field %q contains a line break", f)
		case strings.ContainsAny(f, `,"`):
			out[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		default:
			out[i] = f
		}
	}
	_, err := w.WriteString(strings.Join(out, ",") + "\n")
	return err
}

// LoadBooks reads the books file at path.
func LoadBooks(path string) (catalog.Books, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	defer f.Close()

	books, err := ReadBooks(f)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", withPath(err, path))
	}
	return books, nil
}

// LoadUsers reads the users file at path.
func LoadUsers(path string) (catalog.Users, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer f.Close()

	users, err := ReadUsers(f)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", withPath(err, path))
	}
	return users, nil
}

// SaveBooks overwrites the books file at path.
func SaveBooks(books catalog.Books, path string) error {
	var buf bytes.Buffer
	if err := WriteBooks(&buf, books); err != nil {
		return fmt.Errorf("save books: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save books: %w", err)
	}
	return nil
}

// SaveUsers overwrites the users file at path.
func SaveUsers(users catalog.Users, path string) error {
	var buf bytes.Buffer
	if err := WriteUsers(&buf, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

// LoadCatalog loads both files into a catalog.
func LoadCatalog(booksPath, usersPath string) (*catalog.Catalog, error) {
	books, err := LoadBooks(booksPath)
	if err != nil {
		return nil, err
	}
	users, err := LoadUsers(usersPath)
	if err != nil {
		return nil, err
	}
	return catalog.New(books, users), nil
}

// SaveCatalog writes books then users.
func SaveCatalog(cat *catalog.Catalog, booksPath, usersPath string) error {
	if err := SaveBooks(cat.Books, booksPath); err != nil {
		return err
	}
	return SaveUsers(cat.Users, usersPath)
}

// eachRecord feeds every non-empty line of r to fn with its line number.
func eachRecord(r io.Reader, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if text == "" {
			continue
		}
		if err := fn(line, splitRecord(text)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return &RecordError{Line: line + 1, Reason: err.Error()}
	}
	return nil
}

// splitRecord honours quoting only when the whole line is valid RFC 4180.
// Anything else is a legacy line and is split on every comma, so a stray
// quote stays part of its field.
func splitRecord(text string) []string {
	legacy := strings.Split(text, ",")
	if !strings.Contains(text, `"`) {
		return legacy
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return legacy
	}
	if _, err := cr.Read(); !errors.Is(err, io.EOF) {
		return legacy
	}
	return fields
}

func parseAvailable(tok string) (bool, bool) {
	switch strings.TrimSpace(tok) {
	case TokenTrue, "true":
		return true, true
	case TokenFalse, "false":
		return false, true
	default:
		return false, false
	}
}

func formatAvailable(v bool) string {
	if v {
		return TokenTrue
	}
	return TokenFalse
}
