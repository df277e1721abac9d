// Package kernel provides the shared domain primitives of the procurement service.
//
// The package includes:
//   - UUID: a value object for identifiers of orders, line items, users and organizations
//   - Clock: the time source injected into domain services and handlers
//
// The zero value of UUID is invalid; build identifiers with NewUUID,
// UUIDFromString or UUIDFromBytes so that Validate can catch uninitialized ids.
package kernel
