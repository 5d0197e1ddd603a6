package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s %s -> %s\n", event.Seq, event.Action, event.User, event.Book, event.Outcome)
	}

	return buf.String()
}

// AssertionContext gives assertions access to the final state of a run.
type AssertionContext struct {
	Catalog *catalog.Catalog
	Journal *store.Store
	Ctx     context.Context
}

// assertBookAvailable checks a book's final availability flag.
func assertBookAvailable(cat *catalog.Catalog, trace []TraceEvent, a Assertion) error {
	book, ok := cat.Books[a.Book]
	if !ok {
		return &AssertionError{
			Type:     AssertBookAvailable,
			Expected: fmt.Sprintf("book %s available=%t", a.Book, *a.Available),
			Actual:   "book not in catalog",
			Trace:    trace,
		}
	}
	if book.Available != *a.Available {
		return &AssertionError{
			Type:     AssertBookAvailable,
			Expected: fmt.Sprintf("book %s available=%t", a.Book, *a.Available),
			Actual:   fmt.Sprintf("available=%t", book.Available),
			Trace:    trace,
		}
	}
	return nil
}

// assertHoldings checks a user's borrowed list, order included.
func assertHoldings(cat *catalog.Catalog, trace []TraceEvent, a Assertion) error {
	user, ok := cat.Users[a.User]
	if !ok {
		return &AssertionError{
			Type:     AssertHoldings,
			Expected: fmt.Sprintf("user %s holds %v", a.User, a.Books),
			Actual:   "user not in catalog",
			Trace:    trace,
		}
	}
	if !slices.Equal(user.Borrowed, a.Books) {
		return &AssertionError{
			Type:     AssertHoldings,
			Expected: fmt.Sprintf("user %s holds %v", a.User, a.Books),
			Actual:   fmt.Sprintf("holds %v", user.Borrowed),
			Trace:    trace,
		}
	}
	return nil
}

// assertConsistent checks the availability invariant on the final catalog.
func assertConsistent(cat *catalog.Catalog, trace []TraceEvent) error {
	violations := cat.Verify()
	if len(violations) == 0 {
		return nil
	}
	actual := make([]string, len(violations))
	for i, v := range violations {
		actual[i] = v.String()
	}
	return &AssertionError{
		Type:     AssertConsistent,
		Expected: "no violations",
		Actual:   strings.Join(actual, "; "),
		Trace:    trace,
	}
}

// assertOutcomeCount counts journal entries with the given outcome.
func assertOutcomeCount(ctx context.Context, journal *store.Store, trace []TraceEvent, a Assertion) error {
	n, err := journal.Count(ctx, store.Filter{Outcome: a.Outcome})
	if err != nil {
		return fmt.Errorf("outcome_count: %w", err)
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertOutcomeCount,
			Expected: fmt.Sprintf("%d %s outcome(s)", a.Count, a.Outcome),
			Actual:   fmt.Sprintf("%d", n),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if actx == nil || actx.Catalog == nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: missing catalog context", i))
			continue
		}

		switch assertion.Type {
		case AssertBookAvailable:
			err = assertBookAvailable(actx.Catalog, result.Trace, assertion)
		case AssertHoldings:
			err = assertHoldings(actx.Catalog, result.Trace, assertion)
		case AssertConsistent:
			err = assertConsistent(actx.Catalog, result.Trace)
		case AssertOutcomeCount:
			if actx.Journal == nil {
				err = fmt.Errorf("assertion[%d]: outcome_count requires journal context", i)
			} else {
				err = assertOutcomeCount(actx.Ctx, actx.Journal, result.Trace, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
