package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/libcat/internal/catalog"
)

func boolPtr(b bool) *bool { return &b }

func TestEvaluateAssertions(t *testing.T) {
	cat := catalog.New(
		catalog.Books{
			"B1": {ID: "B1", Title: "Dune", Available: false},
			"B2": {ID: "B2", Title: "Emma", Available: true},
		},
		catalog.Users{
			"U1": {ID: "U1", Name: "Alice", Borrowed: []string{"B1"}},
		},
	)
	actx := &AssertionContext{Catalog: cat}
	result := NewResult()

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"available matches", Assertion{Type: AssertBookAvailable, Book: "B2", Available: boolPtr(true)}, ""},
		{"available differs", Assertion{Type: AssertBookAvailable, Book: "B1", Available: boolPtr(true)}, "available=false"},
		{"available unknown book", Assertion{Type: AssertBookAvailable, Book: "B9", Available: boolPtr(true)}, "book not in catalog"},
		{"holdings match", Assertion{Type: AssertHoldings, User: "U1", Books: []string{"B1"}}, ""},
		{"holdings differ", Assertion{Type: AssertHoldings, User: "U1", Books: []string{}}, "holds [B1]"},
		{"holdings unknown user", Assertion{Type: AssertHoldings, User: "U9"}, "user not in catalog"},
		{"consistent", Assertion{Type: AssertConsistent}, ""},
		{"outcome_count without journal", Assertion{Type: AssertOutcomeCount, Outcome: "ok"}, "requires journal context"},
		{"unknown type", Assertion{Type: "final_state"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion}, actx)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertHoldings,
		Expected: "user U1 holds [B1]",
		Actual:   "holds []",
		Trace: []TraceEvent{
			{Seq: 1, Action: "borrow", User: "U1", Book: "B1", Outcome: "InvalidBook"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: holdings")
	assert.Contains(t, msg, "Expected: user U1 holds [B1]")
	assert.Contains(t, msg, "[1] borrow U1 B1 -> InvalidBook")
}

func TestEvaluateAssertions_NilContext(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertConsistent}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "missing catalog context")
}
