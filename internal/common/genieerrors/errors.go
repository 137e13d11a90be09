// Package genieerrors contains the generic errors returned by the broker core.
// Callers (the CLI, or any transport layered on top of the service package) look for the
// error types defined here with errors.As and map them onto their own status codes via KindFromError.
//
// If multiple errors occur in some function (e.g., several fields of a resource are invalid), that
// function should return an error of type multierror.Error from package
// github.com/hashicorp/go-multierror that encapsulates those individual errors.
package genieerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArgument is returned whenever input is malformed or missing: blank required fields,
// empty criteria or a tag in the reserved namespace.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "executable"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %q is invalid for field %q; %s", err.Value, err.Name, err.Message)
	}
}

// ErrNotFound is a generic error to be returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrNotFound struct {
	Type    string // Resource type, e.g., "cluster" or "command"
	Value   string // Resource id
	Message string
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q does not exist", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	} else {
		return s
	}
}

// ErrAlreadyExists is returned when creating a resource whose id is already taken.
//
// See ErrNotFound for more info.
type ErrAlreadyExists struct {
	Type    string
	Value   string
	Message string
}

func (err *ErrAlreadyExists) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q already exists", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q already exists", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	} else {
		return s
	}
}

// ErrConflict is returned when a save is attempted with a stale entity version,
// i.e. somebody else saved the resource since it was read. Callers may re-read and retry.
type ErrConflict struct {
	Type            string
	Value           string
	ExpectedVersion int64
	ActualVersion   int64
}

func (err *ErrConflict) Error() string {
	return fmt.Sprintf(
		"resource %q of type %q was modified concurrently; saved from version %d but stored version is %d",
		err.Value, err.Type, err.ExpectedVersion, err.ActualVersion,
	)
}

// ErrPrecondition is returned when an operation would break a relationship invariant,
// e.g. deleting an application that commands still depend on.
type ErrPrecondition struct {
	Type    string
	Value   string
	Message string
}

func (err *ErrPrecondition) Error() string {
	return fmt.Sprintf("precondition failed for resource %q of type %q; %s", err.Value, err.Type, err.Message)
}

// ErrConstraint is returned when a requested state is structurally impossible: an update whose path id
// and body id disagree, or a job status transition that is not allowed.
type ErrConstraint struct {
	Type    string
	Value   string
	Message string
}

func (err *ErrConstraint) Error() string {
	if err.Value == "" {
		return fmt.Sprintf("constraint violated for %s; %s", err.Type, err.Message)
	}
	return fmt.Sprintf("constraint violated for resource %q of type %q; %s", err.Value, err.Type, err.Message)
}

// Kind classifies an error chain.
type Kind int

const (
	KindNone Kind = iota
	KindUnknown
	KindInvalidArgument
	KindNotFound
	KindAlreadyExists
	KindConflict
	KindPrecondition
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	case KindConstraint:
		return "constraint"
	default:
		return "unknown"
	}
}

// KindFromError maps error types to a Kind.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
func KindFromError(err error) Kind {
	if err == nil {
		return KindNone
	}

	// Using {} scopes just to re-use the "e" variable name for each case.
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return KindInvalidArgument
		}
	}
	{
		var e *ErrNotFound
		if errors.As(err, &e) {
			return KindNotFound
		}
	}
	{
		var e *ErrAlreadyExists
		if errors.As(err, &e) {
			return KindAlreadyExists
		}
	}
	{
		var e *ErrConflict
		if errors.As(err, &e) {
			return KindConflict
		}
	}
	{
		var e *ErrPrecondition
		if errors.As(err, &e) {
			return KindPrecondition
		}
	}
	{
		var e *ErrConstraint
		if errors.As(err, &e) {
			return KindConstraint
		}
	}

	return KindUnknown
}

func IsNotFound(err error) bool {
	return KindFromError(err) == KindNotFound
}

func IsInvalidArgument(err error) bool {
	return KindFromError(err) == KindInvalidArgument
}

func IsConflict(err error) bool {
	return KindFromError(err) == KindConflict
}
