// Package lending implements the borrow and return transitions of a book
// between Available and Borrowed.
//
// Both operations check every precondition before touching the catalog, so a
// failed call leaves the state exactly as it was. After mutating they verify
// the expected postcondition and report CodeInconsistentState if it does not
// hold. Persisting the result is the caller's job.
package lending

import (
	"fmt"
	"slices"

	"github.com/roach88/libcat/internal/catalog"
)

// Action names a lending transition.
type Action string

const (
	ActionBorrow Action = "borrow"
	ActionReturn Action = "return"
)

// Receipt describes a completed transition.
type Receipt struct {
	Action   Action `json:"action"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
}

// Message is the confirmation shown to the borrower.
func (r Receipt) Message() string {
	if r.Action == ActionReturn {
		return fmt.Sprintf("Book '%s' returned by %s", r.Title, r.UserName)
	}
	return fmt.Sprintf("Book '%s' successfully borrowed by %s", r.Title, r.UserName)
}

// Borrow lends bookID to userID.
//
// Fails with:
//   - CodeInvalidUser if the user does not exist
//   - CodeInvalidBook if the book does not exist
//   - CodeAlreadyBorrowed if the book is not available or already on the user's list
func Borrow(cat *catalog.Catalog, userID, bookID string) (Receipt, error) {
	user, ok := cat.Users[userID]
	if !ok {
		return Receipt{}, newError(CodeInvalidUser, userID, bookID, "Invalid user ID")
	}
	book, ok := cat.Books[bookID]
	if !ok {
		return Receipt{}, newError(CodeInvalidBook, userID, bookID, "Invalid book ID")
	}
	if !book.Available {
		return Receipt{}, newError(CodeAlreadyBorrowed, userID, bookID, "Book is already borrowed")
	}
	if user.Holds(bookID) {
		return Receipt{}, newError(CodeAlreadyBorrowed, userID, bookID, "Book already borrowed by user")
	}

	user.Borrowed = append(user.Borrowed, bookID)
	book.Available = false

	if book.Available {
		return Receipt{}, newError(CodeInconsistentState, userID, bookID, "Book should now be unavailable")
	}
	if !user.Holds(bookID) {
		return Receipt{}, newError(CodeInconsistentState, userID, bookID, "Book should be in user's borrowed list")
	}

	return Receipt{
		Action:   ActionBorrow,
		UserID:   userID,
		UserName: user.Name,
		BookID:   bookID,
		Title:    book.Title,
	}, nil
}

// Return takes bookID back from userID.
//
// Fails with:
//   - CodeInvalidUser if the user does not exist
//   - CodeNotBorrowedByUser if the book is not on the user's list
//   - CodeInconsistentState if the book is missing from the catalog or already available
func Return(cat *catalog.Catalog, userID, bookID string) (Receipt, error) {
	user, ok := cat.Users[userID]
	if !ok {
		return Receipt{}, newError(CodeInvalidUser, userID, bookID, "Invalid user ID")
	}
	idx := slices.Index(user.Borrowed, bookID)
	if idx < 0 {
		return Receipt{}, newError(CodeNotBorrowedByUser, userID, bookID, "User hasn't borrowed this book")
	}
	book, ok := cat.Books[bookID]
	if !ok {
		return Receipt{}, newError(CodeInconsistentState, userID, bookID, "Borrowed book is not in the catalog")
	}
	if book.Available {
		return Receipt{}, newError(CodeInconsistentState, userID, bookID, "Book is already marked as available")
	}

	user.Borrowed = slices.Delete(user.Borrowed, idx, idx+1)
	book.Available = true

	if !book.Available {
		return Receipt{}, newError(CodeInconsistentState, userID, bookID, "Book should now be available")
	}
	if user.Holds(bookID) {
		return Receipt{}, newError(CodeInconsistentState, userID, bookID, "Book should be removed from user's list")
	}

	return Receipt{
		Action:   ActionReturn,
		UserID:   userID,
		UserName: user.Name,
		BookID:   bookID,
		Title:    book.Title,
	}, nil
}

// Apply dispatches to Borrow or Return.
func Apply(cat *catalog.Catalog, action Action, userID, bookID string) (Receipt, error) {
	switch action {
	case ActionBorrow:
		return Borrow(cat, userID, bookID)
	case ActionReturn:
		return Return(cat, userID, bookID)
	default:
		return Receipt{}, fmt.Errorf("unknown lending action %q", action)
	}
}
