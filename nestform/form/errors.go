package form

import (
	"errors"
	"fmt"
	"sort"
)

// NonFieldErrors is the Errors key for messages that don't belong to a single
// field (form validators).
const NonFieldErrors = "__all__"

var (
	// ErrNotValid is returned by Save when the form has validation errors or
	// was never bound to data.
	ErrNotValid = errors.New("form is not valid")
	// ErrConfig is the base error of every nested form configuration problem.
	ErrConfig = errors.New("invalid nested form configuration")
	// ErrPrefixCollision is reported when two nested forms without a field
	// prefix would read the same submitted keys.
	ErrPrefixCollision = fmt.Errorf("%w: field prefix collision", ErrConfig)
)

// ConfigError describes a nested form configuration that can't be used to
// construct a form.
type ConfigError struct {
	// Keys of the offending configurations.
	Keys []string
	// Fields shared by colliding configurations (collisions only).
	Fields []string
	Msg    string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if len(e.Keys) > 0 {
		msg = fmt.Sprintf("%s (configs %q)", msg, e.Keys)
	}
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s: shared fields %q", msg, e.Fields)
	}
	return fmt.Sprintf("%v: %s", e.Err, msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Errors maps bound (prefixed) field names to their validation messages.
type Errors map[string][]string

// Add appends a message for the given field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Merge adds every message of other to e.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// Len returns the number of fields with at least one error.
func (e Errors) Len() int {
	n := 0
	for _, msgs := range e {
		if len(msgs) > 0 {
			n++
		}
	}
	return n
}

// Get returns the messages for a field.
func (e Errors) Get(field string) []string {
	return e[field]
}

// Fields returns the names of the fields with errors in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field, msgs := range e {
		if len(msgs) > 0 {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}
