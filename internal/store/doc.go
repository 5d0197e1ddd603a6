// Package store provides the SQLite-backed lending journal.
//
// The journal is an append-only log of every borrow and return attempt,
// successful or not. It is an audit trail: the catalog itself lives in the
// flat files managed by package records, and nothing here is read back to
// rebuild catalog state.
//
// # Ordering
//
// Every entry gets a strictly increasing seq (SQLite AUTOINCREMENT). All
// queries order by seq, never by wall time, so history output is stable.
//
// # Identity
//
// Entry IDs come from an IDGenerator (UUIDv7 by default). Appending an entry
// whose ID already exists is a no-op that returns the stored entry.
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - schema version tracked in PRAGMA user_version
package store
