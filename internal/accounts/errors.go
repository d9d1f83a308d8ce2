package accounts

import (
	"errors"
	"sort"
	"strings"
)

// ErrConflict is matched by validation errors caused by a taken username or email.
var ErrConflict = errors.New("account conflict")

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields   map[string][]string
	Conflict bool
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return e.Conflict && target == ErrConflict
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

func conflictError(field string) *ValidationError {
	msg := "A user with that " + field + " already exists."
	return &ValidationError{Fields: map[string][]string{field: {msg}}, Conflict: true}
}
