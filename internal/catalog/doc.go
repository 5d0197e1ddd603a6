// Package catalog holds the in-memory state of the library: books, users and
// the books each user currently holds.
//
// A Catalog is plain data passed by handle into every operation. Nothing in
// this package performs I/O; loading and saving live in package records and
// the borrow/return transitions live in package lending.
//
// # Consistency
//
// The catalog is consistent when, for every book b:
//
//   - b.Available is true iff no user's Borrowed list contains b.ID
//   - b.ID appears in at most one user's Borrowed list, at most once
//
// Verify reports every violation it finds instead of stopping at the first.
package catalog
