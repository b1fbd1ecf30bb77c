// Package order implements the Order aggregate of the vehicle shipping service.
//
// An order is created when an auction bid is won and then walks a fixed
// delivery pipeline (see Status). Each transition method on Order validates the
// current status, applies the change, appends a StatusChange and returns the
// previous status so callers can notify the customer.
//
// Transition guard failures are errs.KindPreconditionFailed errors naming the
// status(es) the order has to be in.
package order
