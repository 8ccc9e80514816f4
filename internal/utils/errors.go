package utils

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedReport signals a raw report missing a required field or not decodable.
	ErrMalformedReport = errors.New("malformed report")
	// ErrUnparsableIdentity signals that seed or repetition could not be resolved.
	ErrUnparsableIdentity = errors.New("unparsable identity")
	// ErrUnclassifiedField signals a Record field missing from an aggregation layout.
	ErrUnclassifiedField = errors.New("unclassified field")
	// ErrUnknownField signals a layout naming a field the Record does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrAmbiguousField signals a field assigned to more than one layout bucket.
	ErrAmbiguousField = errors.New("ambiguous field")
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}
