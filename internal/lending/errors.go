package lending

import (
	"errors"
	"fmt"
)

// Code categorizes a lending failure.
type Code string

const (
	// CodeInvalidUser: the user ID is not in the catalog.
	CodeInvalidUser Code = "InvalidUser"

	// CodeInvalidBook: the book ID is not in the catalog.
	CodeInvalidBook Code = "InvalidBook"

	// CodeAlreadyBorrowed: the book is out, or already on the user's list.
	CodeAlreadyBorrowed Code = "AlreadyBorrowed"

	// CodeNotBorrowedByUser: the user does not hold the book.
	CodeNotBorrowedByUser Code = "NotBorrowedByUser"

	// CodeInconsistentState: catalog state contradicts the availability invariant.
	CodeInconsistentState Code = "InconsistentState"
)

// Codes lists every lending error code.
var Codes = []Code{
	CodeInvalidUser,
	CodeInvalidBook,
	CodeAlreadyBorrowed,
	CodeNotBorrowedByUser,
	CodeInconsistentState,
}

// Error is returned by Borrow and Return when a precondition or
// postcondition does not hold. State is unchanged when a precondition fails.
type Error struct {
	Code    Code
	Message string
	UserID  string
	BookID  string
}

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrInvalidUser       = &Error{Code: CodeInvalidUser}
	ErrInvalidBook       = &Error{Code: CodeInvalidBook}
	ErrAlreadyBorrowed   = &Error{Code: CodeAlreadyBorrowed}
	ErrNotBorrowedByUser = &Error{Code: CodeNotBorrowedByUser}
	ErrInconsistentState = &Error{Code: CodeInconsistentState}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the lending code from err.
// Returns "" when err is not a lending error.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func newError(code Code, userID, bookID, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		UserID:  userID,
		BookID:  bookID,
	}
}
