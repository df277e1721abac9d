package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrPersistence       = errors.New("persistence failed")
	ErrBusinessRule      = errors.New("business rule violated")
)

// sanitize flattens values so multi-line input cannot break log lines.
func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// ObjectNotFoundError reports a lookup by identifier that matched nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed a domain rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	return withCause(msg, e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// NotAuthorizedError reports an actor acting outside its permissions.
// Subject names the field or operation, Reason is shown to the caller.
type NotAuthorizedError struct {
	Subject string
	Reason  string
	Cause   error
}

func NewNotAuthorizedError(subject, reason string) *NotAuthorizedError {
	return &NotAuthorizedError{Subject: subject, Reason: reason}
}

func NewNotAuthorizedErrorWithCause(subject, reason string, cause error) *NotAuthorizedError {
	return &NotAuthorizedError{Subject: subject, Reason: reason, Cause: cause}
}

func (e *NotAuthorizedError) Error() string {
	return withCause(fmt.Sprintf("%s: %s: %s", ErrNotAuthorized, e.Subject, e.Reason), e.Cause)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// PersistenceError reports a write that did not land. Entity identifies
// the kind of row (for example "line item" or "line item note").
type PersistenceError struct {
	Entity    string
	Operation string
	ID        string
	Cause     error
}

func NewPersistenceError(entity, operation, id string) *PersistenceError {
	return &PersistenceError{Entity: entity, Operation: operation, ID: id}
}

func NewPersistenceErrorWithCause(entity, operation, id string, cause error) *PersistenceError {
	return &PersistenceError{Entity: entity, Operation: operation, ID: id, Cause: cause}
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", ErrPersistence, e.Operation, e.Entity)
	if e.ID != "" {
		msg += " " + e.ID
	}
	return withCause(msg, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return ErrPersistence
}

// BusinessRuleError reports a request vetoed by a business rule rather than
// by a fault. It is not retried.
type BusinessRuleError struct {
	Rule   string
	Detail string
}

func NewBusinessRuleError(rule, detail string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Detail: detail}
}

func (e *BusinessRuleError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", ErrBusinessRule, e.Rule)
	}
	return fmt.Sprintf("%s: %s: %s", ErrBusinessRule, e.Rule, sanitize(e.Detail))
}

func (e *BusinessRuleError) Unwrap() error {
	return ErrBusinessRule
}
