package harness

import "github.com/roach88/libcat/internal/store"

// TraceEvent is one journaled step of a scenario run.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Action  string `json:"action"`
	User    string `json:"user"`
	Book    string `json:"book"`
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

func traceEventFromEntry(e store.Entry) TraceEvent {
	return TraceEvent{
		Seq:     e.Seq,
		Action:  e.Action,
		User:    e.UserID,
		Book:    e.BookID,
		Outcome: e.Outcome,
		Message: e.Message,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expected outcome matched, the invariant held
	// and every assertion passed.
	Pass bool `json:"pass"`

	// Trace lists every step in the order it ran.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
