package engine

import "fmt"

// SQL error codes shared by the engine family. The driver's error
// translation keys off these; engines report them verbatim from the server.
const (
	// CodeSyntax is reported for malformed SQL (Dynamic SQL Error family).
	CodeSyntax = -104

	// CodeSemantic is reported for SQL that parses but references unknown
	// tables, columns or routines.
	CodeSemantic = -204

	// CodeException is reported when server-side logic raises an explicit
	// exception during execution or fetch.
	CodeException = -836

	// CodeSingletonViolation is reported when a statement expected to
	// produce exactly one row produces more than one.
	CodeSingletonViolation = -811
)

// Error is the failure type raised by every Engine call. Code is the SQL
// error code and Message the server's diagnostic text, which is frequently
// multi-line, e.g.
//
//	Dynamic SQL Error
//	-SQL error code = -104
//	-Token unknown - line 1, column 8
//	-FORM
//
// Both are preserved verbatim so callers can match on them the way they
// would against a real server.
type Error struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Errorf builds an *Error with a formatted single-line diagnostic.
func Errorf(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
