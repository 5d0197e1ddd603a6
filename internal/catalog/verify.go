package catalog

import "fmt"

// ViolationKind categorizes a consistency violation.
type ViolationKind string

const (
	// UnknownBook: a borrowed list references an ID that is not in the catalog.
	UnknownBook ViolationKind = "UNKNOWN_BOOK"

	// DuplicateHolding: the same ID appears twice in one borrowed list.
	DuplicateHolding ViolationKind = "DUPLICATE_HOLDING"

	// SharedHolding: two users hold the same book.
	SharedHolding ViolationKind = "SHARED_HOLDING"

	// AvailableButHeld: a book is marked available while a user holds it.
	AvailableButHeld ViolationKind = "AVAILABLE_BUT_HELD"

	// UnavailableButFree: a book is marked unavailable but nobody holds it.
	UnavailableButFree ViolationKind = "UNAVAILABLE_BUT_FREE"
)

// Violation describes one broken consistency rule.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	BookID string        `json:"book_id"`
	UserID string        `json:"user_id,omitempty"`
}

func (v Violation) String() string {
	if v.UserID != "" {
		return fmt.Sprintf("%s: book %s (user %s)", v.Kind, v.BookID, v.UserID)
	}
	return fmt.Sprintf("%s: book %s", v.Kind, v.BookID)
}

// Verify checks the catalog against the availability invariant and returns
// all violations, ordered by user ID then book ID. An empty result means the
// catalog is consistent.
func (c *Catalog) Verify() []Violation {
	var out []Violation
	holder := make(map[string]string)

	for _, uid := range c.Users.IDs() {
		seen := make(map[string]bool)
		for _, bid := range c.Users[uid].Borrowed {
			if seen[bid] {
				out = append(out, Violation{Kind: DuplicateHolding, BookID: bid, UserID: uid})
				continue
			}
			seen[bid] = true

			b, ok := c.Books[bid]
			if !ok {
				out = append(out, Violation{Kind: UnknownBook, BookID: bid, UserID: uid})
				continue
			}
			if _, taken := holder[bid]; taken {
				out = append(out, Violation{Kind: SharedHolding, BookID: bid, UserID: uid})
				continue
			}
			holder[bid] = uid
			if b.Available {
				out = append(out, Violation{Kind: AvailableButHeld, BookID: bid, UserID: uid})
			}
		}
	}

	for _, bid := range c.Books.IDs() {
		if _, held := holder[bid]; !held && !c.Books[bid].Available {
			out = append(out, Violation{Kind: UnavailableButFree, BookID: bid})
		}
	}

	return out
}

// Consistent reports whether Verify finds no violations.
func (c *Catalog) Consistent() bool {
	return len(c.Verify()) == 0
}
