package records

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord matches every *RecordError via errors.Is.
var ErrMalformedRecord = errors.New("malformed record")

// RecordError reports a line that could not be parsed.
type RecordError struct {
	// Path is the file being loaded; empty when reading from a stream.
	Path string

	// Line is the 1-based line number of the bad record.
	Line int

	// Reason describes what is wrong with the line.
	Reason string
}

func (e *RecordError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s:%d: %s", ErrMalformedRecord, e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: line %d: %s", ErrMalformedRecord, e.Line, e.Reason)
}

// Is reports whether target is ErrMalformedRecord.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// withPath stamps path onto a *RecordError found in err.
func withPath(err error, path string) error {
	var re *RecordError
	if errors.As(err, &re) {
		re.Path = path
	}
	return err
}
