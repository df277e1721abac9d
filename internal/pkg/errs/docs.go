// Package errs provides standardized error types for the procurement application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a value falls outside its allowed bounds
//   - ObjectNotFoundError: For when an object cannot be found
//   - NotAuthorizedError: For when the acting user or integration lacks permission
//   - PersistenceError: For when a write did not affect the expected rows
//   - BusinessRuleError: For when a business rule vetoes an otherwise valid request
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// The sentinels double as the error taxonomy of the order edit workflow:
// validation (ErrValueIsRequired, ErrValueIsInvalid, ErrValueIsOutOfRange),
// authorization (ErrNotAuthorized), persistence (ErrPersistence) and
// consistency vetoes (ErrBusinessRule). Transport adapters map them to
// responses with errors.Is.
package errs
