// Package harness runs lending scenarios described in YAML.
//
// A scenario seeds a catalog, runs a flow of borrow/return steps with
// optional expected outcomes, and evaluates assertions on the final state.
// Every step is journaled into a throwaway in-memory store with sequential
// IDs, and the journal becomes the scenario's trace. Traces are deterministic,
// so they can be compared byte-for-byte against golden files.
//
// Example scenario:
//
//	name: borrow_twice
//	description: A second borrow of the same copy is rejected
//	books:
//	  - {id: B1, title: Dune, available: true}
//	users:
//	  - {id: U1, name: Alice}
//	flow:
//	  - {action: borrow, user: U1, book: B1, expect: ok}
//	  - {action: borrow, user: U1, book: B1, expect: AlreadyBorrowed}
//	assertions:
//	  - {type: holdings, user: U1, books: [B1]}
//	  - {type: consistent}
//
// When the seeded catalog is consistent, the harness also checks the
// availability invariant after every step and fails the scenario on the
// first violation it sees. Seeds that are deliberately inconsistent skip
// that check so they can exercise InconsistentState.
package harness
