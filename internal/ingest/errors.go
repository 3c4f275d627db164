package ingest

import (
	"fmt"
	"strings"
)

// SchemaError reports a header that cannot be resolved into the canonical
// field set. It is not retryable: the file itself must change.
type SchemaError struct {
	Missing []string // canonical fields that could not be resolved
	Reason  string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: CSV must contain columns for: %s", strings.Join(e.Missing, ", "))
}

// ParseError describes a single rejected row.
type ParseError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
