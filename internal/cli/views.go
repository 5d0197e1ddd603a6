package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/lending"
	"github.com/roach88/libcat/internal/store"
)

// bookList renders available books the way the menu lists them.
type bookList []catalog.Book

func (l bookList) String() string {
	if len(l) == 0 {
		return "No books available."
	}
	var b strings.Builder
	b.WriteString("Available Books:")
	for _, book := range l {
		fmt.Fprintf(&b, "\n - %s: %s", book.ID, book.Title)
	}
	return b.String()
}

// lendResult is the payload of a successful borrow or return.
type lendResult struct {
	lending.Receipt
	Text string `json:"message"`
}

func newLendResult(r lending.Receipt) lendResult {
	return lendResult{Receipt: r, Text: r.Message()}
}

func (r lendResult) String() string {
	return r.Text
}

// holdingsView lists what one user has out.
type holdingsView struct {
	UserID string            `json:"user_id"`
	Name   string            `json:"name"`
	Books  []catalog.Holding `json:"books"`
}

func (v holdingsView) String() string {
	if len(v.Books) == 0 {
		return fmt.Sprintf("%s has not borrowed any books.", v.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Borrowed by %s:", v.Name)
	for _, h := range v.Books {
		fmt.Fprintf(&b, "\n - %s: %s", h.BookID, h.Title)
	}
	return b.String()
}

// checkReport is the result of verifying the catalog.
type checkReport struct {
	Consistent bool                `json:"consistent"`
	Violations []catalog.Violation `json:"violations"`
}

func (r checkReport) String() string {
	if r.Consistent {
		return "Catalog is consistent."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d violation(s):", len(r.Violations))
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "\n - %s", v)
	}
	return b.String()
}

// historyView lists journal entries oldest first.
type historyView []store.Entry

func (h historyView) String() string {
	if len(h) == 0 {
		return "No journal entries."
	}
	lines := make([]string, len(h))
	for i, e := range h {
		lines[i] = fmt.Sprintf("#%d %s %s %s [%s] %s", e.Seq, e.Action, e.UserID, e.BookID, e.Outcome, e.Message)
	}
	return strings.Join(lines, "\n")
}
