package driver

import (
	"strings"
	"time"

	"github.com/emberdb/ember-go/pkg/engine"
)

// Row is one result row: an ordered sequence of typed values, one per
// output column. Values are drawn from the driver's closed type set:
// nil, int16, int32, int64, float32, float64, Decimal, DecFloat, bool,
// string, time.Time and BlobRef.
type Row []interface{}

// Decimal is the exact decimal rendering of a fixed-point NUMERIC/DECIMAL
// value, e.g. "-12.34". Carrying these as strings keeps 15+ significant
// digit values identity-preserving across a round trip.
type Decimal string

// DecFloat is the exact rendering of an arbitrary-precision DECFLOAT value.
type DecFloat string

// BlobRef is a blob locator retrieved as a column value. Pass it to
// Attachment.OpenBlob to stream the content, or bind it as a parameter to
// reference the same content from another statement of the transaction.
type BlobRef engine.BlobID

// marshalParam converts one caller-supplied parameter into its engine
// representation. The accepted Go types mirror the closed value set; any
// other type is a bind-time parameter error.
func marshalParam(v interface{}) (engine.Value, error) {
	switch p := v.(type) {
	case nil:
		return engine.Null, nil
	case int16:
		return engine.Value{Kind: engine.KindInt16, Int: int64(p)}, nil
	case int32:
		return engine.Value{Kind: engine.KindInt32, Int: int64(p)}, nil
	case int:
		return engine.Value{Kind: engine.KindInt64, Int: int64(p)}, nil
	case int64:
		return engine.Value{Kind: engine.KindInt64, Int: p}, nil
	case float32:
		return engine.Value{Kind: engine.KindFloat, Float: float64(p)}, nil
	case float64:
		return engine.Value{Kind: engine.KindDouble, Float: p}, nil
	case Decimal:
		return engine.Value{Kind: engine.KindDecimal, Str: string(p), Scale: decimalScale(string(p))}, nil
	case DecFloat:
		return engine.Value{Kind: engine.KindDecFloat, Str: string(p)}, nil
	case bool:
		return engine.Value{Kind: engine.KindBoolean, Bool: p}, nil
	case string:
		return engine.Value{Kind: engine.KindText, Str: p}, nil
	case time.Time:
		return engine.Value{Kind: engine.KindTimestamp, Time: p}, nil
	case BlobRef:
		return engine.Value{Kind: engine.KindBlob, Blob: engine.BlobID(p)}, nil
	case *Blob:
		id, err := p.ref()
		if err != nil {
			return engine.Null, err
		}
		return engine.Value{Kind: engine.KindBlob, Blob: id}, nil
	default:
		return engine.Null, errParameterf("unsupported parameter type %T", v)
	}
}

// marshalParams binds a positional parameter list against a statement's
// declared parameter count.
func marshalParams(params []interface{}, want int) ([]engine.Value, error) {
	if len(params) != want {
		return nil, errParameterf("statement takes %d parameters, got %d", want, len(params))
	}
	out := make([]engine.Value, len(params))
	for i, p := range params {
		v, err := marshalParam(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// unmarshalValue converts one engine value into its driver representation.
// The switch is exhaustive over the closed Kind set.
func unmarshalValue(v engine.Value) interface{} {
	switch v.Kind {
	case engine.KindNull:
		return nil
	case engine.KindInt16:
		return int16(v.Int)
	case engine.KindInt32:
		return int32(v.Int)
	case engine.KindInt64:
		return v.Int
	case engine.KindFloat:
		return float32(v.Float)
	case engine.KindDouble:
		return v.Float
	case engine.KindDecimal:
		return Decimal(v.Str)
	case engine.KindDecFloat:
		return DecFloat(v.Str)
	case engine.KindBoolean:
		return v.Bool
	case engine.KindText:
		return v.Str
	case engine.KindDate, engine.KindTime, engine.KindTimestamp:
		return v.Time
	case engine.KindBlob:
		return BlobRef(v.Blob)
	default:
		return nil
	}
}

func unmarshalRow(values []engine.Value) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = unmarshalValue(v)
	}
	return row
}

// projectRow turns a row into a label-keyed map. When two columns share a
// label the later column wins; this is the documented contract of the
// *AsMap operations.
func projectRow(labels []string, row Row) map[string]interface{} {
	out := make(map[string]interface{}, len(labels))
	for i, label := range labels {
		if i < len(row) {
			out[label] = row[i]
		}
	}
	return out
}

// decimalScale counts the fractional digits of a decimal string rendering.
func decimalScale(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
