package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember-go/pkg/engine"
	"github.com/emberdb/ember-go/pkg/enginemock"
)

// TestScalarRoundTrips binds each scalar type as a parameter and reads it
// back through an echoing statement, asserting identity preservation.
func TestScalarRoundTrips(t *testing.T) {
	ctx := context.Background()
	const echo = "SELECT ? FROM rdb$database"

	cases := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"Int16", int16(-42), int16(-42)},
		{"Int32", int32(123456), int32(123456)},
		{"Int64", int64(9007199254740993), int64(9007199254740993)},
		{"IntBindsAsInt64", int(17), int64(17)},
		{"Float32", float32(1.5), float32(1.5)},
		{"Float64", 2.25, 2.25},
		{"NegativeScaledDecimal", Decimal("-12.34"), Decimal("-12.34")},
		{"FifteenDigitDecimal", Decimal("123456789012345.67"), Decimal("123456789012345.67")},
		{"DecFloat", DecFloat("1.234567890123456789012345678901234E+100"), DecFloat("1.234567890123456789012345678901234E+100")},
		{"BooleanTrue", true, true},
		{"BooleanFalse", false, false},
		{"UTF8Text", "наёмник 雇い兵 😀", "наёмник 雇い兵 😀"},
		{"Null", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng, _, att := newTestSetup(t)
			eng.Script(echo, enginemock.Script{
				Columns:    []engine.Column{{Label: "CONSTANT"}},
				ParamCount: 1,
				Returning: func(params []engine.Value) ([]engine.Value, error) {
					return []engine.Value{params[0]}, nil
				},
			})
			tx := startTx(t, att)

			row, err := att.ExecuteReturning(ctx, tx, echo, tc.in)
			require.NoError(t, err)
			require.Len(t, row, 1)
			assert.Equal(t, tc.want, row[0])
		})
	}

	t.Run("TimestampKeepsSubSecondPrecision", func(t *testing.T) {
		eng, _, att := newTestSetup(t)
		eng.Script(echo, enginemock.Script{
			Columns:    []engine.Column{{Label: "CONSTANT", Kind: engine.KindTimestamp}},
			ParamCount: 1,
			Returning: func(params []engine.Value) ([]engine.Value, error) {
				return []engine.Value{params[0]}, nil
			},
		})
		tx := startTx(t, att)

		in := time.Date(2026, time.March, 14, 15, 9, 26, 535897900, time.UTC)
		row, err := att.ExecuteReturning(ctx, tx, echo, in)
		require.NoError(t, err)
		out, ok := row[0].(time.Time)
		require.True(t, ok)
		assert.True(t, in.Equal(out))
	})
}

func TestDecimalScale(t *testing.T) {
	assert.Equal(t, 2, decimalScale("-12.34"))
	assert.Equal(t, 0, decimalScale("1200"))
	assert.Equal(t, 4, decimalScale("0.0001"))
}

func TestProjectRow(t *testing.T) {
	t.Run("ShortRowLeavesTrailingLabelsOut", func(t *testing.T) {
		m := projectRow([]string{"A", "B"}, Row{int64(1)})
		assert.Equal(t, map[string]interface{}{"A": int64(1)}, m)
	})

	t.Run("DuplicateLabelLastWins", func(t *testing.T) {
		m := projectRow([]string{"A", "A"}, Row{int64(1), int64(2)})
		assert.Equal(t, map[string]interface{}{"A": int64(2)}, m)
	})
}
