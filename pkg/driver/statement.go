package driver

import (
	"context"
	"sync"
	"time"

	"github.com/emberdb/ember-go/pkg/engine"
)

// Statement is a prepared, parameterized command bound to one attachment.
// It is reusable: across many executions, across units of work of a
// retaining transaction, and across different transactions of the same
// attachment. It is not usable on another attachment.
type Statement struct {
	att     *Attachment
	childID uint64
	handle  engine.Handle

	columns    []engine.Column
	labels     []string
	paramCount int

	mu       sync.Mutex
	disposed bool
}

func newStatement(a *Attachment, handle engine.Handle, info engine.StatementInfo) *Statement {
	labels := make([]string, len(info.Columns))
	for i, col := range info.Columns {
		labels[i] = col.Label
	}
	return &Statement{
		att:        a,
		handle:     handle,
		columns:    info.Columns,
		labels:     labels,
		paramCount: info.ParamCount,
	}
}

// ColumnLabels returns the statement's output column labels in declared
// order, computed once at prepare time. It is empty for statements that
// return no rows.
func (s *Statement) ColumnLabels() []string {
	return append([]string(nil), s.labels...)
}

// ParamCount returns the number of positional parameter markers.
func (s *Statement) ParamCount() int {
	return s.paramCount
}

func (s *Statement) ensureLive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return errDisposed("statement")
	}
	return nil
}

// Execute binds params positionally and runs the statement under tx,
// discarding any output.
func (s *Statement) Execute(ctx context.Context, tx *Transaction, params ...interface{}) error {
	release, vals, err := s.bind(tx, params)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	ctx, span := s.att.client.span(ctx, "ember.execute")
	if err := s.att.client.eng.Execute(ctx, s.handle, tx.handle, vals); err != nil {
		err = wrapEngine(ErrRuntime, err)
		s.att.client.endSpan(span, err)
		return err
	}
	s.att.client.endSpan(span, nil)
	s.att.client.metrics.observeExecute("execute", start)
	return nil
}

// ExecuteQuery runs the statement under tx and opens a cursor over its
// results. The cursor borrows the statement: dispose the statement only
// after closing the cursor.
func (s *Statement) ExecuteQuery(ctx context.Context, tx *Transaction, params ...interface{}) (*ResultSet, error) {
	release, vals, err := s.bind(tx, params)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	ctx, span := s.att.client.span(ctx, "ember.execute-query")
	handle, err := s.att.client.eng.OpenCursor(ctx, s.handle, tx.handle, vals)
	if err != nil {
		err = wrapEngine(ErrRuntime, err)
		s.att.client.endSpan(span, err)
		return nil, err
	}
	s.att.client.endSpan(span, nil)
	s.att.client.metrics.observeExecute("query", start)

	rs := newResultSet(s.att, tx, handle, s.labels)
	rs.childID = s.att.addChild(rs)
	return rs, nil
}

// ExecuteReturning runs a statement expected to produce exactly one row
// and returns it. The engine enforces the singleton cardinality; zero rows
// or more than one fail with ErrRuntime.
func (s *Statement) ExecuteReturning(ctx context.Context, tx *Transaction, params ...interface{}) (Row, error) {
	release, vals, err := s.bind(tx, params)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	ctx, span := s.att.client.span(ctx, "ember.execute-returning")
	values, err := s.att.client.eng.ExecuteReturning(ctx, s.handle, tx.handle, vals)
	if err != nil {
		err = wrapEngine(ErrRuntime, err)
		s.att.client.endSpan(span, err)
		return nil, err
	}
	s.att.client.endSpan(span, nil)
	s.att.client.metrics.observeExecute("returning", start)
	return unmarshalRow(values), nil
}

// ExecuteReturningAsMap is ExecuteReturning with the row projected into a
// map keyed by column label. When two columns share a label the later
// column wins.
func (s *Statement) ExecuteReturningAsMap(ctx context.Context, tx *Transaction, params ...interface{}) (map[string]interface{}, error) {
	row, err := s.ExecuteReturning(ctx, tx, params...)
	if err != nil {
		return nil, err
	}
	return projectRow(s.labels, row), nil
}

// bind acquires the transaction's operation slot, checks liveness and
// marshals the parameter list.
func (s *Statement) bind(tx *Transaction, params []interface{}) (func(), []engine.Value, error) {
	release, err := tx.acquire()
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureLive(); err != nil {
		release()
		return nil, nil, err
	}
	vals, err := marshalParams(params, s.paramCount)
	if err != nil {
		release()
		return nil, nil, err
	}
	return release, vals, nil
}

// Dispose releases the prepared handle. Disposing twice is a no-op.
func (s *Statement) Dispose(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	s.mu.Unlock()

	s.att.removeChild(s.childID)
	if err := s.att.client.eng.CloseStatement(ctx, s.handle); err != nil {
		return wrapEngine(ErrRuntime, err)
	}
	return nil
}

func (s *Statement) invalidate() {
	s.mu.Lock()
	s.disposed = true
	s.mu.Unlock()
}
