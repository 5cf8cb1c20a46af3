package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches a field name to err. It returns nil if err is nil.
//
// Field names follow Go naming. Nested fields use dot notation, for example
// Bond.Owner, and elements of a collection use their index, for example
// Reserve.0.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds a field error to errorsOrNil. Nil field errors are
// ignored.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

// Cause implements the causer interface.
func (err *fieldError) Cause() error {
	return err.parent
}

// Field returns the name of the field this error was created for.
func (err *fieldError) Field() string {
	return err.field
}

type fielder interface {
	Field() string
}

// FieldErrors returns all errors created for given field name. The search
// goes through wrapped errors and multi errors but stops at the first match
// in each branch.
func FieldErrors(err error, fieldName string) []error {
	var res []error
	walkFields(err, func(f fielder, e error) bool {
		if f.Field() != fieldName {
			return false
		}
		res = append(res, e)
		return true
	})
	return res
}

// FieldNames returns the names of all top level fields that have an error
// attached, in the order they were appended.
func FieldNames(err error) []string {
	var names []string
	walkFields(err, func(f fielder, _ error) bool {
		names = append(names, f.Field())
		return true
	})
	return names
}

// walkFields calls fn for every field error found in err. Returning true
// from fn stops descending into that field error.
func walkFields(err error, fn func(fielder, error) bool) {
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && fn(f, err) {
			return
		}
		if u, ok := err.(unpacker); ok {
			// Unpack covers all children, Cause would not add anything.
			for _, e := range u.Unpack() {
				walkFields(e, fn)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
