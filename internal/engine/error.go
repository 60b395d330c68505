// Copyright (c) 2025-2026 The monerosim developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind
// when determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrMissingConfig indicates one or more required environment
	// configuration keys are absent.  This is non-fatal; the engine stays
	// loaded but inert.
	ErrMissingConfig = ErrorKind("ErrMissingConfig")

	// ErrInvalidConfig indicates an environment configuration value could
	// not be parsed or violates its constraints.
	ErrInvalidConfig = ErrorKind("ErrInvalidConfig")

	// ErrHostIncompatible indicates the host process does not expose every
	// required symbol.  This is fatal: a partially hooked host would fall
	// back to real proof-of-work and stall the surrounding simulation.
	ErrHostIncompatible = ErrorKind("ErrHostIncompatible")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an engine configuration or attach error.  It has full
// support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
