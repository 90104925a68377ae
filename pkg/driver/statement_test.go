package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember-go/pkg/engine"
	"github.com/emberdb/ember-go/pkg/enginemock"
)

func TestPrepare(t *testing.T) {
	ctx := context.Background()

	t.Run("ReportsColumnsAndParamCount", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script("SELECT name, age FROM people WHERE age > ?", enginemock.Script{
			Columns:    []engine.Column{textCol("NAME"), {Label: "AGE", Kind: engine.KindInt32}},
			ParamCount: 1,
		})
		tx := startTx(t, att)

		s, err := att.Prepare(ctx, tx, "SELECT name, age FROM people WHERE age > ?")
		require.NoError(t, err)
		assert.Equal(t, []string{"NAME", "AGE"}, s.ColumnLabels())
		assert.Equal(t, 1, s.ParamCount())
		assert.NoError(t, s.Dispose(ctx))
	})

	t.Run("SyntaxErrorKeepsDiagnostic", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		diagnostic := "Dynamic SQL Error\n-SQL error code = -104\n-Token unknown - line 1, column 8\n-FORM"
		eng.Script("SELECT FORM people", enginemock.Script{
			PrepareError: engine.Errorf(engine.CodeSyntax, "%s", diagnostic),
		})
		tx := startTx(t, att)

		_, err := att.Prepare(ctx, tx, "SELECT FORM people")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSyntax)

		var de *Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, engine.CodeSyntax, de.Code)
		assert.Equal(t, diagnostic, de.Message)
	})

	t.Run("UnknownTableIsSemantic", func(t *testing.T) {
		_, _, att := newTestSetup(t)
		tx := startTx(t, att)

		_, err := att.Prepare(ctx, tx, "SELECT * FROM nowhere")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSemantic)
		assert.NotErrorIs(t, err, ErrSyntax)
	})
}

func TestStatementExecute(t *testing.T) {
	ctx := context.Background()
	const insert = "INSERT INTO people(name) VALUES (?)"

	t.Run("BindsPositionalParameters", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		var bound []engine.Value
		eng.Script(insert, enginemock.Script{
			ParamCount: 1,
			OnExecute: func(params []engine.Value) error {
				bound = params
				return nil
			},
		})
		tx := startTx(t, att)

		require.NoError(t, att.Execute(ctx, tx, insert, "Ada"))
		require.Len(t, bound, 1)
		assert.Equal(t, textVal("Ada"), bound[0])
	})

	t.Run("ParameterArityMismatch", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{ParamCount: 1})
		tx := startTx(t, att)

		err := att.Execute(ctx, tx, insert, "Ada", "extra")
		assert.ErrorIs(t, err, ErrParameter)

		err = att.Execute(ctx, tx, insert)
		assert.ErrorIs(t, err, ErrParameter)
	})

	t.Run("UnsupportedParameterType", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{ParamCount: 1})
		tx := startTx(t, att)

		err := att.Execute(ctx, tx, insert, struct{ X int }{1})
		assert.ErrorIs(t, err, ErrParameter)
	})

	t.Run("RuntimeFailureSurfacesAsErrRuntime", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{
			ParamCount: 1,
			OnExecute: func([]engine.Value) error {
				return engine.Errorf(engine.CodeException, "exception 1\n-E_DUPLICATE\n-name already taken")
			},
		})
		tx := startTx(t, att)

		err := att.Execute(ctx, tx, insert, "Ada")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRuntime)
		assert.Contains(t, err.Error(), "E_DUPLICATE")
	})

	t.Run("ReusableAcrossTransactions", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		executions := 0
		eng.Script(insert, enginemock.Script{
			ParamCount: 1,
			OnExecute: func([]engine.Value) error {
				executions++
				return nil
			},
		})

		tx1 := startTx(t, att)
		s, err := att.Prepare(ctx, tx1, insert)
		require.NoError(t, err)
		require.NoError(t, s.Execute(ctx, tx1, "Ada"))
		require.NoError(t, tx1.Commit(ctx))

		// The statement belongs to the attachment, not the transaction.
		tx2 := startTx(t, att)
		require.NoError(t, s.Execute(ctx, tx2, "Grace"))
		require.NoError(t, tx2.Commit(ctx))

		assert.Equal(t, 2, executions)
		assert.NoError(t, s.Dispose(ctx))
	})

	t.Run("DisposedStatementFails", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{ParamCount: 1})
		tx := startTx(t, att)

		s, err := att.Prepare(ctx, tx, insert)
		require.NoError(t, err)
		require.NoError(t, s.Dispose(ctx))
		require.NoError(t, s.Dispose(ctx))

		err = s.Execute(ctx, tx, "Ada")
		assert.ErrorIs(t, err, ErrDisposed)
	})
}

func TestExecuteReturning(t *testing.T) {
	ctx := context.Background()
	const insert = "INSERT INTO people(name) VALUES (?) RETURNING id, name"

	t.Run("SingletonRow", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{
			Columns:    []engine.Column{{Label: "ID", Kind: engine.KindInt64}, textCol("NAME")},
			ParamCount: 1,
			Returning: func(params []engine.Value) ([]engine.Value, error) {
				return []engine.Value{intVal(7), params[0]}, nil
			},
		})
		tx := startTx(t, att)

		row, err := att.ExecuteReturning(ctx, tx, insert, "Ada")
		require.NoError(t, err)
		require.Len(t, row, 2)
		assert.Equal(t, int64(7), row[0])
		assert.Equal(t, "Ada", row[1])
	})

	t.Run("AsMapMatchesRow", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{
			Columns:    []engine.Column{{Label: "ID", Kind: engine.KindInt64}, textCol("NAME")},
			ParamCount: 1,
			Returning: func(params []engine.Value) ([]engine.Value, error) {
				return []engine.Value{intVal(7), params[0]}, nil
			},
		})
		tx := startTx(t, att)

		m, err := att.ExecuteReturningAsMap(ctx, tx, insert, "Ada")
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"ID": int64(7), "NAME": "Ada"}, m)
	})

	t.Run("DuplicateLabelLastWins", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		const q = "SELECT a.v, b.v FROM a, b"
		eng.Script(q, enginemock.Script{
			Columns: []engine.Column{textCol("V"), textCol("V")},
			Returning: func([]engine.Value) ([]engine.Value, error) {
				return []engine.Value{textVal("first"), textVal("second")}, nil
			},
		})
		tx := startTx(t, att)

		m, err := att.ExecuteReturningAsMap(ctx, tx, q)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"V": "second"}, m)
	})

	t.Run("MultipleRowsViolateSingleton", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		const q = "SELECT v FROM many"
		eng.Script(q, enginemock.Script{
			Columns: []engine.Column{textCol("V")},
			Rows:    intRows(2),
		})
		tx := startTx(t, att)

		_, err := att.ExecuteReturning(ctx, tx, q)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRuntime)
		assert.Contains(t, err.Error(), "singleton")
	})
}
