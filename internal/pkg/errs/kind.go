package errs

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of the transport that produced it.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindForbidden          Kind = "FORBIDDEN"
	KindUnavailable        Kind = "UNAVAILABLE"
	KindInternal           Kind = "INTERNAL"
)

// Metadata describes how a Kind is surfaced to clients and to the consumer retry policy.
type Metadata struct {
	HTTPStatus int
	Retryable  bool
}

var metadataByKind = map[Kind]Metadata{
	KindNotFound:           {HTTPStatus: http.StatusNotFound},
	KindConflict:           {HTTPStatus: http.StatusConflict},
	KindPreconditionFailed: {HTTPStatus: http.StatusPreconditionFailed},
	KindBadRequest:         {HTTPStatus: http.StatusBadRequest},
	KindForbidden:          {HTTPStatus: http.StatusForbidden},
	KindUnavailable:        {HTTPStatus: http.StatusServiceUnavailable, Retryable: true},
	KindInternal:           {HTTPStatus: http.StatusInternalServerError, Retryable: true},
}

func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindInternal]
}

// Error is a classified error. The message is safe to show to API clients;
// the cause is kept for logs and for retry classification.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{kind: kind, message: message, cause: err}
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// NotFound, Conflict, PreconditionFailed and BadRequest are shorthands for New.
func NotFound(message string) *Error { return New(KindNotFound, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func PreconditionFailed(message string) *Error { return New(KindPreconditionFailed, message) }

func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// KindOf returns the outermost classification found in the error chain.
// Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind()
	}

	switch {
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindBadRequest
	}

	return KindInternal
}

// IsKind reports whether KindOf(err) equals kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsTransient reports whether retrying the failed operation may succeed.
//
// Every classified error in the chain is inspected, so a BadRequest that
// wraps an Unavailable cause is still transient. An error without any
// classification is treated as transient (database or bus failures).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	classified := false
	retryable := false
	walk(err, func(e error) {
		switch v := e.(type) {
		case *Error:
			classified = true
			if MetadataFor(v.kind).Retryable {
				retryable = true
			}
		case *ObjectNotFoundError, *ValueIsInvalidError, *ValueIsRequiredError, *ValueIsOutOfRangeError:
			classified = true
		}
	})

	return retryable || !classified
}

func walk(err error, visit func(error)) {
	if err == nil {
		return
	}
	visit(err)
	switch u := err.(type) { //nolint:errorlint // chain traversal
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			walk(inner, visit)
		}
	case interface{ Unwrap() error }:
		walk(u.Unwrap(), visit)
	}
}
