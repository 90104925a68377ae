package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember-go/pkg/engine"
	"github.com/emberdb/ember-go/pkg/enginemock"
)

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	const insert = "INSERT INTO log(line) VALUES (?)"

	t.Run("DefaultIsolationIsSnapshot", func(t *testing.T) {
		_, _, att := newTestSetup(t)
		tx := startTx(t, att)
		assert.Equal(t, engine.Snapshot, tx.Isolation())
		require.NoError(t, tx.Rollback(ctx))
	})

	t.Run("ExplicitIsolation", func(t *testing.T) {
		_, _, att := newTestSetup(t)
		tx, err := att.StartTransaction(ctx, &TransactionOptions{Isolation: engine.ReadCommitted})
		require.NoError(t, err)
		assert.Equal(t, engine.ReadCommitted, tx.Isolation())
		require.NoError(t, tx.Commit(ctx))
	})

	t.Run("UseAfterCommitFails", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{ParamCount: 1})
		tx := startTx(t, att)
		require.NoError(t, tx.Commit(ctx))

		err := att.Execute(ctx, tx, insert, "late")
		assert.ErrorIs(t, err, ErrDisposed)

		err = tx.Commit(ctx)
		assert.ErrorIs(t, err, ErrDisposed)
	})

	t.Run("UseAfterRollbackFails", func(t *testing.T) {
		_, _, att := newTestSetup(t)
		tx := startTx(t, att)
		require.NoError(t, tx.Rollback(ctx))

		_, err := att.Prepare(ctx, tx, "SELECT 1 FROM nowhere")
		assert.ErrorIs(t, err, ErrDisposed)
	})
}

func TestRetainingTransactions(t *testing.T) {
	ctx := context.Background()
	const insert = "INSERT INTO batch(row) VALUES (?)"

	t.Run("StatementSurvivesCommitRetaining", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		executions := 0
		eng.Script(insert, enginemock.Script{
			ParamCount: 1,
			OnExecute: func([]engine.Value) error {
				executions++
				return nil
			},
		})
		tx := startTx(t, att)

		s, err := att.Prepare(ctx, tx, insert)
		require.NoError(t, err)

		// The batch insertion pattern: one prepare, many units of work.
		for i := 0; i < 3; i++ {
			require.NoError(t, s.Execute(ctx, tx, int64(i)))
			require.NoError(t, tx.CommitRetaining(ctx))
		}
		assert.Equal(t, 3, executions)
		assert.Equal(t, uint64(3), tx.Generation())

		// A plain commit ends the transaction for good.
		require.NoError(t, tx.Commit(ctx))
		err = s.Execute(ctx, tx, int64(99))
		assert.ErrorIs(t, err, ErrDisposed)
		assert.NoError(t, s.Dispose(ctx))
	})

	t.Run("RollbackRetainingKeepsHandle", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(insert, enginemock.Script{ParamCount: 1})
		tx := startTx(t, att)

		require.NoError(t, att.Execute(ctx, tx, insert, int64(1)))
		require.NoError(t, tx.RollbackRetaining(ctx))
		assert.Equal(t, uint64(1), tx.Generation())

		// Still usable after the retained rollback.
		require.NoError(t, att.Execute(ctx, tx, insert, int64(2)))
		require.NoError(t, tx.Commit(ctx))
	})
}

func TestConcurrentUseGuard(t *testing.T) {
	ctx := context.Background()
	const outer = "INSERT INTO outer_tbl(v) VALUES (?)"

	t.Run("SecondOperationOnBusyTransactionFails", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		tx := startTx(t, att)

		var inner error
		eng.Script(outer, enginemock.Script{
			ParamCount: 1,
			OnExecute: func([]engine.Value) error {
				// Issued while the outer execute still holds the
				// transaction's operation slot.
				inner = att.Execute(ctx, tx, outer, int64(2))
				return nil
			},
		})

		require.NoError(t, att.Execute(ctx, tx, outer, int64(1)))
		require.Error(t, inner)
		assert.ErrorIs(t, inner, ErrConcurrentUse)
	})

	t.Run("SlotIsReleasedAfterOperation", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(outer, enginemock.Script{ParamCount: 1})
		tx := startTx(t, att)

		require.NoError(t, att.Execute(ctx, tx, outer, int64(1)))
		require.NoError(t, att.Execute(ctx, tx, outer, int64(2)))
		require.NoError(t, tx.Commit(ctx))
	})

	t.Run("IndependentTransactionsDoNotShareSlot", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		tx1 := startTx(t, att)
		tx2 := startTx(t, att)

		var other error
		nested := false
		eng.Script(outer, enginemock.Script{
			ParamCount: 1,
			OnExecute: func([]engine.Value) error {
				if !nested {
					nested = true
					other = att.Execute(ctx, tx2, outer, int64(2))
				}
				return nil
			},
		})

		require.NoError(t, att.Execute(ctx, tx1, outer, int64(1)))
		assert.NoError(t, other)
	})
}
