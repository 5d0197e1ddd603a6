package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/lending"
	"github.com/roach88/libcat/internal/store"
	"github.com/roach88/libcat/internal/testutil"
)

// Harness holds the per-run state of one scenario.
type Harness struct {
	cat     *catalog.Catalog
	journal *store.Store
	logger  *slog.Logger

	// checkInvariant is cleared after the first violation is reported.
	checkInvariant bool
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes step logs to logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh catalog and a fresh in-memory journal
// with sequential entry IDs, so the trace is reproducible.
//
// Execution flow:
//  1. Seed the catalog from the scenario
//  2. Apply each flow step, journal it, and compare its outcome with expect
//  3. Build the trace from the journal
//  4. Evaluate assertions against the final catalog and journal
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs("step")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		cat:     scenario.Catalog(),
		journal: st,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.checkInvariant = h.cat.Consistent()

	ctx := context.Background()
	result := NewResult()

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	entries, err := st.List(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	for _, e := range entries {
		result.Trace = append(result.Trace, traceEventFromEntry(e))
	}

	actx := &AssertionContext{
		Catalog: h.cat,
		Journal: st,
		Ctx:     ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeFlow applies every step in order. A step whose outcome differs from
// its expect clause is recorded as an error; the flow keeps going.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		action := lending.Action(step.Action)
		outcome := store.OutcomeOK

		receipt, err := lending.Apply(h.cat, action, step.User, step.Book)
		message := receipt.Message()
		if err != nil {
			code := lending.CodeOf(err)
			if code == "" {
				return fmt.Errorf("flow step %d: %w", i, err)
			}
			outcome = string(code)
			message = err.Error()
		}
		h.logger.Debug("scenario step", "step", i, "action", action, "user", step.User, "book", step.Book, "outcome", outcome)

		if _, err := h.journal.Append(ctx, store.Entry{
			Action:  step.Action,
			UserID:  step.User,
			BookID:  step.Book,
			Outcome: outcome,
			Message: message,
		}); err != nil {
			return fmt.Errorf("flow step %d: failed to journal: %w", i, err)
		}

		if step.Expect != "" && step.Expect != outcome {
			result.AddError(fmt.Sprintf("flow[%d]: %s %s %s: expected %s, got %s (%s)",
				i, step.Action, step.User, step.Book, step.Expect, outcome, message))
		}

		if h.checkInvariant {
			if violations := h.cat.Verify(); len(violations) > 0 {
				result.AddError(fmt.Sprintf("flow[%d]: invariant violated: %s", i, violations[0]))
				h.checkInvariant = false
			}
		}
	}
	return nil
}
