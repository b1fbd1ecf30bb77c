// Package errs provides standardized error types for the order service.
//
// Two families live here:
//   - value errors (ValueIsRequiredError, ValueIsInvalidError,
//     ValueIsOutOfRangeError, ObjectNotFoundError) used by the domain model
//     to report validation failures;
//   - Error, a classified error carrying a Kind. Kinds drive the HTTP status
//     returned to clients and the retry decision of the event consumer.
//
// Value errors are classified too: ObjectNotFoundError maps to KindNotFound
// and the remaining value errors map to KindBadRequest, so callers can use
// KindOf on any error produced inside the service.
package errs
