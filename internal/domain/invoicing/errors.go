package invoicing

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps a field name to its ordered validation messages
type FieldErrors map[string][]string

// Add appends a message for field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// HasErrors reports whether any field has a message
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields returns the failing field names, sorted
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError is raised when invoice input fails the schema outside a
// path that renders field errors back to the form.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid invoice input: " + strings.Join(e.Fields.Fields(), ", ")
}

// Operation names a mutation for error reporting and failure policy lookup
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// PersistenceError wraps a store failure during an invoice mutation
type PersistenceError struct {
	Op  Operation
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("invoice %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
