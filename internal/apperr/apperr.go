// Package apperr defines the error taxonomy shared by the ledger core and
// its transports. Every failure a caller can recover from carries a
// machine-distinguishable kind plus a human-readable message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so transports can map it without string matching.
type Kind string

const (
	// NotFound indicates a referenced wallet or transaction does not exist.
	NotFound Kind = "NOT_FOUND"
	// InvalidArgument indicates malformed input: negative initial balance,
	// non-positive limit, negative skip, zero-amount transaction, unknown
	// sort field or status.
	InvalidArgument Kind = "INVALID_ARGUMENT"
	// InvalidState indicates an operation forbidden by the wallet's current
	// status, such as deletion while the wallet is active.
	InvalidState Kind = "INVALID_STATE"
)

// Error pairs a kind with a message. All taxonomy errors are recoverable by
// the caller; none are fatal to the process.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds a taxonomy error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, unwrapping as needed. It returns the
// empty kind when err carries no taxonomy classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
