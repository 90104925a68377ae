package enginemock

import "github.com/emberdb/ember-go/pkg/engine"

// Script describes the behavior of one SQL text registered with the mock
// engine. The zero value is a statement with no parameters, no columns and
// no side effects.
type Script struct {
	// Columns is the output metadata reported at prepare time. Leave
	// empty for statements that return no rows.
	Columns []engine.Column

	// ParamCount is the number of positional parameter markers.
	ParamCount int

	// PrepareError, when set, makes Prepare fail with this error instead
	// of returning a statement handle. Used to script syntax and
	// semantic diagnostics.
	PrepareError *engine.Error

	// OnExecute is invoked for Execute and before OpenCursor and
	// ExecuteReturning, with the bound parameters. A returned error is
	// surfaced as the engine failure.
	OnExecute func(params []engine.Value) error

	// Rows produces the result rows for OpenCursor and, when Returning
	// is nil, for ExecuteReturning (which then requires exactly one row).
	Rows func(params []engine.Value) [][]engine.Value

	// Returning overrides the singleton row for ExecuteReturning.
	Returning func(params []engine.Value) ([]engine.Value, error)

	// FailAfterRow, when > 0, injects a server-side evaluation failure
	// after that many rows have been produced by the cursor. The fetch
	// that crosses the boundary returns the rows before it together with
	// FailWith, matching the engine.Fetch contract.
	FailAfterRow int

	// FailWith is the injected failure. Defaults to a generic exception
	// diagnostic when FailAfterRow is set and FailWith is nil.
	FailWith *engine.Error
}

func (s *Script) failure() *engine.Error {
	if s.FailWith != nil {
		return s.FailWith
	}
	return engine.Errorf(engine.CodeException,
		"exception 1\n-E_EVAL\n-evaluation failed\n-At procedure")
}
