package validation

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/sma-classroom-api/pkg/errors"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	MissingField            ErrorKind = "MissingField"
	TypeMismatch            ErrorKind = "TypeMismatch"
	ConstraintViolation     ErrorKind = "ConstraintViolation"
	NestedValidationFailure ErrorKind = "NestedValidationFailure"
)

// ValidationError describes one failed field. Field is a dot separated path
// with indexed array elements, e.g. "body.records[2].status".
type ValidationError struct {
	Field      string    `json:"field"`
	Kind       ErrorKind `json:"kind"`
	Constraint string    `json:"constraint,omitempty"`
	Message    string    `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is the full list of failures for one payload.
type Errors []ValidationError

// Error implements the error interface.
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the failing paths in report order.
func (e Errors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// Kind summarises the list: NestedValidationFailure when failures come from
// nested paths, otherwise the kind of the first failure.
func (e Errors) Kind() ErrorKind {
	if len(e) == 0 {
		return ""
	}
	for _, err := range e {
		if strings.ContainsAny(err.Field, ".[") {
			return NestedValidationFailure
		}
	}
	return e[0].Kind
}

// AppError converts the list into the API error carrying every field problem.
func (e Errors) AppError() *appErrors.Error {
	return appErrors.WithDetails(appErrors.ErrValidation, e)
}

type collector struct {
	errs     Errors
	failFast bool
}

func (c *collector) add(field string, kind ErrorKind, constraint, message string) {
	c.errs = append(c.errs, ValidationError{Field: field, Kind: kind, Constraint: constraint, Message: message})
}

func (c *collector) stopped() bool {
	return c.failFast && len(c.errs) > 0
}
