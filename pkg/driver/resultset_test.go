package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember-go/pkg/engine"
	"github.com/emberdb/ember-go/pkg/enginemock"
)

const selectAll = "SELECT n FROM numbers"

func scriptNumbers(eng *enginemock.Engine, n int) {
	eng.Script(selectAll, enginemock.Script{
		Columns: []engine.Column{{Label: "N", Kind: engine.KindInt64}},
		Rows:    intRows(n),
	})
}

func TestFetchBatching(t *testing.T) {
	ctx := context.Background()

	t.Run("BatchesSumToRowCount", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		scriptNumbers(eng, 10)
		tx := startTx(t, att)

		rs, err := att.ExecuteQuery(ctx, tx, selectAll)
		require.NoError(t, err)

		var got []int64
		sizes := []int{}
		for {
			rows, err := rs.Fetch(ctx, &FetchOptions{FetchSize: 3})
			require.NoError(t, err)
			if len(rows) == 0 {
				break
			}
			sizes = append(sizes, len(rows))
			for _, row := range rows {
				got = append(got, row[0].(int64))
			}
		}

		// Each batch holds min(fetchSize, remaining) rows and nothing is
		// skipped or repeated.
		assert.Equal(t, []int{3, 3, 3, 1}, sizes)
		require.Len(t, got, 10)
		for i, v := range got {
			assert.Equal(t, int64(i+1), v)
		}

		// Exhausted cursors keep answering empty, repeatably.
		for i := 0; i < 2; i++ {
			rows, err := rs.Fetch(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, rows)
		}

		assert.NoError(t, rs.Close(ctx))
	})

	t.Run("ExactMultipleOfBatchSize", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		scriptNumbers(eng, 6)
		tx := startTx(t, att)

		rs, err := att.ExecuteQuery(ctx, tx, selectAll)
		require.NoError(t, err)
		defer rs.Close(ctx)

		total := 0
		for {
			rows, err := rs.Fetch(ctx, &FetchOptions{FetchSize: 3})
			require.NoError(t, err)
			if len(rows) == 0 {
				break
			}
			total += len(rows)
		}
		assert.Equal(t, 6, total)
	})

	t.Run("FetchSizeResolutionOrder", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		scriptNumbers(eng, 10)
		att.SetDefaultFetchSize(5)
		tx := startTx(t, att)

		// Attachment default applies when nothing narrower is set.
		rs, err := att.ExecuteQuery(ctx, tx, selectAll)
		require.NoError(t, err)
		rows, err := rs.Fetch(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, rows, 5)

		// Cursor default overrides the attachment default.
		rs.SetDefaultFetchSize(2)
		rows, err = rs.Fetch(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		// Per-call options override both.
		rows, err = rs.Fetch(ctx, &FetchOptions{FetchSize: 1})
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		assert.NoError(t, rs.Close(ctx))
	})

	t.Run("FetchAsMap", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		scriptNumbers(eng, 2)
		tx := startTx(t, att)

		rs, err := att.ExecuteQuery(ctx, tx, selectAll)
		require.NoError(t, err)
		defer rs.Close(ctx)

		maps, err := rs.FetchAsMap(ctx, nil)
		require.NoError(t, err)
		require.Len(t, maps, 2)
		assert.Equal(t, int64(1), maps[0]["N"])
		assert.Equal(t, int64(2), maps[1]["N"])
	})
}

func TestFetchMidBatchFailure(t *testing.T) {
	ctx := context.Background()
	const q = "SELECT n FROM failing_proc"

	t.Run("RowsBeforeFailureAreDelivered", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(q, enginemock.Script{
			Columns:      []engine.Column{{Label: "N", Kind: engine.KindInt64}},
			Rows:         intRows(5),
			FailAfterRow: 2,
		})
		tx := startTx(t, att)

		rs, err := att.ExecuteQuery(ctx, tx, q)
		require.NoError(t, err)

		// The fetch that reaches the failure still returns the rows
		// produced before it.
		rows, err := rs.Fetch(ctx, &FetchOptions{FetchSize: 10})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(1), rows[0][0])
		assert.Equal(t, int64(2), rows[1][0])

		// The failure itself surfaces on the next fetch, and sticks.
		_, err = rs.Fetch(ctx, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRuntime)
		assert.Contains(t, err.Error(), "evaluation failed")

		_, err = rs.Fetch(ctx, nil)
		assert.ErrorIs(t, err, ErrRuntime)

		// A failed cursor still closes cleanly.
		assert.NoError(t, rs.Close(ctx))
	})

	t.Run("BatchBoundaryOnFailurePoint", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(q, enginemock.Script{
			Columns:      []engine.Column{{Label: "N", Kind: engine.KindInt64}},
			Rows:         intRows(3),
			FailAfterRow: 2,
		})
		tx := startTx(t, att)

		rs, err := att.ExecuteQuery(ctx, tx, q)
		require.NoError(t, err)
		defer rs.Close(ctx)

		// Batch boundary lands exactly on the failure point.
		rows, err := rs.Fetch(ctx, &FetchOptions{FetchSize: 2})
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		_, err = rs.Fetch(ctx, nil)
		assert.ErrorIs(t, err, ErrRuntime)
	})
}

func TestResultSetClose(t *testing.T) {
	ctx := context.Background()

	t.Run("CloseIsIdempotent", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		scriptNumbers(eng, 3)
		tx := startTx(t, att)

		rs, err := att.ExecuteQuery(ctx, tx, selectAll)
		require.NoError(t, err)
		require.NoError(t, rs.Close(ctx))
		require.NoError(t, rs.Close(ctx))
	})

	t.Run("FetchAfterCloseFails", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		scriptNumbers(eng, 3)
		tx := startTx(t, att)

		rs, err := att.ExecuteQuery(ctx, tx, selectAll)
		require.NoError(t, err)
		require.NoError(t, rs.Close(ctx))

		_, err = rs.Fetch(ctx, nil)
		assert.ErrorIs(t, err, ErrDisposed)
	})

	t.Run("StatementLevelCursorLeavesStatementUsable", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		scriptNumbers(eng, 3)
		tx := startTx(t, att)

		s, err := att.Prepare(ctx, tx, selectAll)
		require.NoError(t, err)

		rs, err := s.ExecuteQuery(ctx, tx)
		require.NoError(t, err)
		require.NoError(t, rs.Close(ctx))

		// The statement was not owned by the cursor and can run again.
		rs, err = s.ExecuteQuery(ctx, tx)
		require.NoError(t, err)
		require.NoError(t, rs.Close(ctx))
		assert.NoError(t, s.Dispose(ctx))
	})
}
