package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/libcat/internal/catalog"
	"github.com/roach88/libcat/internal/lending"
	"github.com/roach88/libcat/internal/store"
)

// Scenario defines a lending scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Books and Users seed the catalog.
	Books []catalog.Book `yaml:"books"`
	Users []catalog.User `yaml:"users"`

	// Flow is run in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions are evaluated against the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one borrow or return.
type FlowStep struct {
	Action string `yaml:"action"`
	User   string `yaml:"user"`
	Book   string `yaml:"book"`

	// Expect is "ok" or a lending error code. Empty skips the check.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Book is used by book_available.
	Book string `yaml:"book,omitempty"`

	// Available is the expected flag for book_available.
	Available *bool `yaml:"available,omitempty"`

	// User is used by holdings.
	User string `yaml:"user,omitempty"`

	// Books is the exact expected borrowed list for holdings, in order.
	Books []string `yaml:"books,omitempty"`

	// Outcome and Count are used by outcome_count.
	Outcome string `yaml:"outcome,omitempty"`
	Count   int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBookAvailable = "book_available"
	AssertHoldings      = "holdings"
	AssertConsistent    = "consistent"
	AssertOutcomeCount  = "outcome_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	bookIDs := make(map[string]bool)
	for i, b := range s.Books {
		if b.ID == "" {
			return fmt.Errorf("books[%d]: id is required", i)
		}
		if bookIDs[b.ID] {
			return fmt.Errorf("books[%d]: duplicate id %q", i, b.ID)
		}
		bookIDs[b.ID] = true
	}

	userIDs := make(map[string]bool)
	for i, u := range s.Users {
		if u.ID == "" {
			return fmt.Errorf("users[%d]: id is required", i)
		}
		if userIDs[u.ID] {
			return fmt.Errorf("users[%d]: duplicate id %q", i, u.ID)
		}
		userIDs[u.ID] = true
	}

	for i, step := range s.Flow {
		if step.Action != string(lending.ActionBorrow) && step.Action != string(lending.ActionReturn) {
			return fmt.Errorf("flow[%d]: action must be borrow or return, got %q", i, step.Action)
		}
		if step.User == "" {
			return fmt.Errorf("flow[%d]: user is required", i)
		}
		if step.Book == "" {
			return fmt.Errorf("flow[%d]: book is required", i)
		}
		if step.Expect != "" && !validOutcome(step.Expect) {
			return fmt.Errorf("flow[%d]: unknown expected outcome %q", i, step.Expect)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertBookAvailable:
		if a.Book == "" {
			return fmt.Errorf("assertions[%d]: book is required for book_available", index)
		}
		if a.Available == nil {
			return fmt.Errorf("assertions[%d]: available is required for book_available", index)
		}
	case AssertHoldings:
		if a.User == "" {
			return fmt.Errorf("assertions[%d]: user is required for holdings", index)
		}
	case AssertConsistent:
	case AssertOutcomeCount:
		if !validOutcome(a.Outcome) {
			return fmt.Errorf("assertions[%d]: unknown outcome %q for outcome_count", index, a.Outcome)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for outcome_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func validOutcome(s string) bool {
	return s == store.OutcomeOK || slices.Contains(lending.Codes, lending.Code(s))
}

// Catalog builds the scenario's starting catalog.
func (s *Scenario) Catalog() *catalog.Catalog {
	cat := catalog.New(nil, nil)
	for _, b := range s.Books {
		cp := b
		cat.Books[b.ID] = &cp
	}
	for _, u := range s.Users {
		cp := u
		cp.Borrowed = slices.Clone(u.Borrowed)
		if cp.Borrowed == nil {
			cp.Borrowed = []string{}
		}
		cat.Users[u.ID] = &cp
	}
	return cat
}
