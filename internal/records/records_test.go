package records

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/libcat/internal/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBooks(t *testing.T) {
	books, err := ReadBooks(strings.NewReader("B1,Dune,True\nB2,Emma,False\n\nB3,Ulysses,true\r\n"))
	require.NoError(t, err)

	assert.Equal(t, catalog.Books{
		"B1": {ID: "B1", Title: "Dune", Available: true},
		"B2": {ID: "B2", Title: "Emma", Available: false},
		"B3": {ID: "B3", Title: "Ulysses", Available: true},
	}, books)
}

func TestReadBooks_LastDuplicateWins(t *testing.T) {
	books, err := ReadBooks(strings.NewReader("B1,Dune,True\nB1,Dune Messiah,False\n"))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune Messiah", books["B1"].Title)
}

func TestReadBooks_LegacyQuotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  catalog.Books
	}{
		{
			name:  "title starting with a quote",
			input: "B1,\"Hello\" World,True\nB2,Emma,True\nB3,Ulysses,False\n",
			want: catalog.Books{
				"B1": {ID: "B1", Title: `"Hello" World`, Available: true},
				"B2": {ID: "B2", Title: "Emma", Available: true},
				"B3": {ID: "B3", Title: "Ulysses", Available: false},
			},
		},
		{
			name:  "stray quote mid-field",
			input: "B1,Dune 2\" edition,True\nB2,Emma,False\n",
			want: catalog.Books{
				"B1": {ID: "B1", Title: `Dune 2" edition`, Available: true},
				"B2": {ID: "B2", Title: "Emma", Available: false},
			},
		},
		{
			name:  "unterminated quote",
			input: "B1,\"Dune,True\nB2,Emma,False\n",
			want: catalog.Books{
				"B1": {ID: "B1", Title: `"Dune`, Available: true},
				"B2": {ID: "B2", Title: "Emma", Available: false},
			},
		},
		{
			name:  "whole field quoted",
			input: "B1,\"Dune\",True\n",
			want: catalog.Books{
				"B1": {ID: "B1", Title: "Dune", Available: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := ReadBooks(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, books)
		})
	}
}

func TestReadBooks_LineTooLong(t *testing.T) {
	input := "B1,Dune,True\nB2," + strings.Repeat("x", maxLineBytes) + ",True\n"

	_, err := ReadBooks(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	var re *RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 2, re.Line)
}

func TestReadBooks_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		reason string
	}{
		{"too few fields", "B1,Dune,True\nB2,Emma\n", 2, "has 2 fields"},
		{"too many fields", "B1,Dune,Messiah,True\n", 1, "has 4 fields"},
		{"bad flag", "B1,Dune,yes\n", 1, `unrecognized availability flag "yes"`},
		{"empty id", ",Dune,True\n", 1, "empty book id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBooks(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)

			var re *RecordError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.line, re.Line)
			assert.Contains(t, re.Reason, tt.reason)
		})
	}
}

func TestReadUsers(t *testing.T) {
	users, err := ReadUsers(strings.NewReader("U1,Alice\nU2,Bob,B1,B3\nU3,Carol,\n"))
	require.NoError(t, err)

	assert.Equal(t, catalog.Users{
		"U1": {ID: "U1", Name: "Alice", Borrowed: []string{}},
		"U2": {ID: "U2", Name: "Bob", Borrowed: []string{"B1", "B3"}},
		"U3": {ID: "U3", Name: "Carol", Borrowed: []string{}},
	}, users)
}

func TestReadUsers_TooFewFields(t *testing.T) {
	_, err := ReadUsers(strings.NewReader("U1,Alice\nU2\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteBooks_LegacyFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBooks(&buf, catalog.Books{
		"B2": {ID: "B2", Title: "Emma", Available: false},
		"B1": {ID: "B1", Title: "Dune", Available: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "B1,Dune,True\nB2,Emma,False\n", buf.String())
}

func TestWriteUsers_LegacyFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteUsers(&buf, catalog.Users{
		"U1": {ID: "U1", Name: "Alice", Borrowed: []string{}},
		"U2": {ID: "U2", Name: "Bob", Borrowed: []string{"B3", "B1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "U1,Alice\nU2,Bob,B3,B1\n", buf.String())
}

func TestRoundTrip_Files(t *testing.T) {
	booksPath := writeFile(t, "books.txt", "B1,Dune,True\nB2,Emma,False\nB3,Ulysses,True\n")
	usersPath := writeFile(t, "user.txt", "U1,Alice,B2\nU2,Bob\n")

	cat, err := LoadCatalog(booksPath, usersPath)
	require.NoError(t, err)

	require.NoError(t, SaveCatalog(cat, booksPath, usersPath))

	reloaded, err := LoadCatalog(booksPath, usersPath)
	require.NoError(t, err)
	assert.Equal(t, cat, reloaded)

	raw, err := os.ReadFile(booksPath)
	require.NoError(t, err)
	assert.Equal(t, "B1,Dune,True\nB2,Emma,False\nB3,Ulysses,True\n", string(raw))
}

func TestRoundTrip_EmbeddedCommaAndQuote(t *testing.T) {
	books := catalog.Books{
		"B1": {ID: "B1", Title: "War, and Peace", Available: true},
		"B2": {ID: "B2", Title: `The "Hobbit"`, Available: false},
	}
	users := catalog.Users{
		"U1": {ID: "U1", Name: "Doe, Jane", Borrowed: []string{"B2"}},
	}
	dir := t.TempDir()
	booksPath := filepath.Join(dir, "books.txt")
	usersPath := filepath.Join(dir, "user.txt")

	require.NoError(t, SaveBooks(books, booksPath))
	require.NoError(t, SaveUsers(users, usersPath))

	gotBooks, err := LoadBooks(booksPath)
	require.NoError(t, err)
	assert.Equal(t, books, gotBooks)

	gotUsers, err := LoadUsers(usersPath)
	require.NoError(t, err)
	assert.Equal(t, users, gotUsers)
}

func TestRoundTrip_LegacyBytesPreserved(t *testing.T) {
	content := "B1, Dune,True\nB2,Emma ,False\n"
	booksPath := writeFile(t, "books.txt", content)

	books, err := LoadBooks(booksPath)
	require.NoError(t, err)
	assert.Equal(t, " Dune", books["B1"].Title)

	require.NoError(t, SaveBooks(books, booksPath))

	raw, err := os.ReadFile(booksPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(raw))
}

func TestRoundTrip_LegacyQuotedTitle(t *testing.T) {
	booksPath := writeFile(t, "books.txt", "B1,\"Hello\" World,True\nB2,Emma,True\n")

	books, err := LoadBooks(booksPath)
	require.NoError(t, err)
	require.NoError(t, SaveBooks(books, booksPath))

	reloaded, err := LoadBooks(booksPath)
	require.NoError(t, err)
	assert.Equal(t, books, reloaded)
	assert.Equal(t, `"Hello" World`, reloaded["B1"].Title)
}

func TestWriteBooks_RejectsLineBreak(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBooks(&buf, catalog.Books{
		"B1": {ID: "B1", Title: "Dune\nMessiah", Available: true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line break")
}

func TestLoadBooks_MalformedIncludesPath(t *testing.T) {
	path := writeFile(t, "books.txt", "B1,Dune,True\nB2,Emma,maybe\n")

	_, err := LoadBooks(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	var re *RecordError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, path, re.Path)
	assert.Equal(t, 2, re.Line)
	assert.Contains(t, err.Error(), path+":2")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadBooks(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrMalformedRecord)

	_, err = LoadUsers(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSave_OverwritesWholesale(t *testing.T) {
	path := writeFile(t, "books.txt", "B1,Dune,True\nB2,Emma,False\nB3,Ulysses,True\n")

	require.NoError(t, SaveBooks(catalog.Books{"B9": {ID: "B9", Title: "Walden", Available: true}}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "B9,Walden,True\n", string(raw))
}

func TestSave_UnwritablePath(t *testing.T) {
	err := SaveBooks(catalog.Books{}, filepath.Join(t.TempDir(), "missing", "books.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save books")
}
