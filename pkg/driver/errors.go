package driver

import (
	"errors"
	"fmt"

	"github.com/emberdb/ember-go/pkg/engine"
)

// Sentinel errors classifying every failure the driver surfaces. Callers
// match on them with errors.Is; the full engine diagnostic stays available
// on *Error.
var (
	// ErrConnection is returned when a database cannot be created or
	// connected to.
	ErrConnection = errors.New("connection failed")

	// ErrSyntax is returned at prepare time for malformed SQL. The
	// engine's multi-line diagnostic is preserved verbatim.
	ErrSyntax = errors.New("SQL syntax error")

	// ErrSemantic is returned at prepare time for SQL that references
	// unknown tables, columns or routines.
	ErrSemantic = errors.New("SQL semantic error")

	// ErrParameter is returned at bind time for a parameter count or
	// type mismatch.
	ErrParameter = errors.New("parameter mismatch")

	// ErrRuntime is returned when server-side logic fails during
	// execution or fetch, e.g. an exception raised inside a procedure.
	ErrRuntime = errors.New("runtime query error")

	// ErrDisposed is returned for any operation on a closed or disposed
	// resource.
	ErrDisposed = errors.New("resource is disposed")

	// ErrConcurrentUse is returned when two operations are issued
	// concurrently against the same transaction. This is a programming
	// error in the caller; operations sharing a transaction must be
	// awaited serially.
	ErrConcurrentUse = errors.New("concurrent operation on transaction")
)

// Error carries one classified driver failure. Kind is one of the sentinel
// errors above and is exposed through Unwrap, so
// errors.Is(err, driver.ErrSyntax) works on any driver error. For failures
// raised by the engine, Code and Message hold the SQL error code and the
// server's diagnostic text unmodified.
type Error struct {
	Kind    error
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

// Unwrap exposes the classifying sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// wrapEngine converts an engine failure into a driver error of the given
// kind, preserving code and diagnostic text.
func wrapEngine(kind error, err error) error {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return &Error{Kind: kind, Code: ee.Code, Message: ee.Message}
	}
	return &Error{Kind: kind, Message: err.Error()}
}

// translatePrepare classifies a prepare-time engine failure. The syntax
// code family maps to ErrSyntax, everything else to ErrSemantic.
func translatePrepare(err error) error {
	var ee *engine.Error
	if errors.As(err, &ee) && ee.Code == engine.CodeSyntax {
		return wrapEngine(ErrSyntax, err)
	}
	return wrapEngine(ErrSemantic, err)
}

func errDisposed(what string) error {
	return &Error{Kind: ErrDisposed, Message: what + " is disposed"}
}

func errConcurrent(what string) error {
	return &Error{Kind: ErrConcurrentUse, Message: what}
}

func errParameterf(format string, args ...interface{}) error {
	return &Error{Kind: ErrParameter, Message: fmt.Sprintf(format, args...)}
}
