package contract

import (
	"fmt"
	"strings"
)

// UnknownSchemaVersionError is returned when a payload declares a schema
// version with no registered schema document or alias map.
type UnknownSchemaVersionError struct {
	Version string
}

func (e *UnknownSchemaVersionError) Error() string {
	return fmt.Sprintf("unknown schema version %q", e.Version)
}

// UnknownFieldError is returned by strict-mode normalisation when the payload
// carries fields with no alias or canonical match. All offending fields are
// collected so the producer can fix its contract in one round trip.
type UnknownFieldError struct {
	Version string
	Fields  []string
}

func (e *UnknownFieldError) Error() string {
	if e.Version == "" {
		return "unknown fields: " + strings.Join(e.Fields, ", ")
	}
	return fmt.Sprintf("schema %s: unknown fields: %s", e.Version, strings.Join(e.Fields, ", "))
}

// FieldViolation is a single validation failure with the offending field path.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violated field of a payload, never just the
// first, so callers can render the complete correction list.
type ValidationError struct {
	Version    string
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return fmt.Sprintf("schema %s: %d violation(s): %s", e.Version, len(e.Violations), strings.Join(parts, "; "))
}
