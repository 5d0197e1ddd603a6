package catalog

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Book is a single copy in the catalog.
type Book struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Available bool   `json:"available" yaml:"available"`
}

// User is a registered borrower.
// Borrowed keeps the order in which books were taken out.
type User struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Borrowed []string `json:"borrowed" yaml:"borrowed"`
}

// Holds reports whether the user currently has bookID.
func (u *User) Holds(bookID string) bool {
	return slices.Contains(u.Borrowed, bookID)
}

// Books maps book ID to book.
type Books map[string]*Book

// Users maps user ID to user.
type Users map[string]*User

// Catalog is the complete lending state.
type Catalog struct {
	Books Books
	Users Users
}

// New creates a catalog over the given collections.
// Nil collections are replaced with empty ones.
func New(books Books, users Users) *Catalog {
	if books == nil {
		books = Books{}
	}
	if users == nil {
		users = Users{}
	}
	return &Catalog{Books: books, Users: users}
}

// IDs returns the book IDs in ascending order.
func (b Books) IDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IDs returns the user IDs in ascending order.
func (u Users) IDs() []string {
	ids := make([]string, 0, len(u))
	for id := range u {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AvailableBooks returns the books that can be borrowed, ordered by ID.
func (c *Catalog) AvailableBooks() []Book {
	var out []Book
	for _, id := range c.Books.IDs() {
		if b := c.Books[id]; b.Available {
			out = append(out, *b)
		}
	}
	return out
}

// Holding is one entry of a user's borrowed list, resolved against the catalog.
type Holding struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Known  bool   `json:"known"`
}

// UnknownTitle is shown for borrowed IDs that are missing from the catalog.
const UnknownTitle = "Unknown Title"

// Holdings resolves the user's borrowed list in borrow order.
// The second result is false when the user does not exist.
func (c *Catalog) Holdings(userID string) ([]Holding, bool) {
	u, ok := c.Users[userID]
	if !ok {
		return nil, false
	}
	out := make([]Holding, 0, len(u.Borrowed))
	for _, bid := range u.Borrowed {
		h := Holding{BookID: bid, Title: UnknownTitle}
		if b, ok := c.Books[bid]; ok {
			h.Title = b.Title
			h.Known = true
		}
		out = append(out, h)
	}
	return out, true
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	books := make(Books, len(c.Books))
	for id, b := range c.Books {
		cp := *b
		books[id] = &cp
	}
	users := make(Users, len(c.Users))
	for id, u := range c.Users {
		cp := *u
		cp.Borrowed = slices.Clone(u.Borrowed)
		users[id] = &cp
	}
	return &Catalog{Books: books, Users: users}
}

// NormalizeID canonicalizes an identifier typed by a person:
// surrounding space trimmed, NFC normalized, upper-cased.
func NormalizeID(s string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}
