package engine

import "time"

// Kind identifies the native representation of a column or parameter value.
// The set is closed: marshalling code in the driver switches exhaustively
// over it, and engines must not invent kinds outside this list.
type Kind int

const (
	// KindNull marks an absent value (SQL NULL).
	KindNull Kind = iota

	// KindInt16, KindInt32 and KindInt64 are exact integers of the
	// corresponding width (SMALLINT, INTEGER, BIGINT).
	KindInt16
	KindInt32
	KindInt64

	// KindFloat and KindDouble are IEEE binary floating point values
	// (FLOAT, DOUBLE PRECISION).
	KindFloat
	KindDouble

	// KindDecimal is a fixed-point NUMERIC/DECIMAL value carried as its
	// exact decimal string rendering, with Scale digits after the point.
	KindDecimal

	// KindDecFloat is an arbitrary-precision decimal (DECFLOAT) carried
	// as its exact decimal string rendering.
	KindDecFloat

	// KindBoolean is a SQL BOOLEAN.
	KindBoolean

	// KindText is CHAR/VARCHAR text, always UTF-8 at this boundary.
	KindText

	// KindDate, KindTime and KindTimestamp are temporal values. Dates
	// ignore the time-of-day portion, times ignore the date portion, and
	// timestamps keep both with sub-second precision.
	KindDate
	KindTime
	KindTimestamp

	// KindBlob is a reference to a binary large object stored under the
	// value's transaction. The bytes themselves are streamed through the
	// blob calls on Engine, never carried inline.
	KindBlob
)

// BlobID is an engine-issued locator for a blob's content. It is returned
// when a blob is created and appears as a column value when one is selected;
// it is only meaningful to the engine that issued it.
type BlobID uint64

// Value is the tagged variant exchanged with an engine for every parameter
// and column. Exactly one payload field is meaningful for a given Kind:
// Int for the integer kinds, Float for the floating kinds, Str for text and
// both decimal kinds, Bool for booleans, Time for the temporal kinds and
// Blob for blob references. KindNull carries no payload.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Time  time.Time
	Blob  BlobID

	// Scale is the count of fractional digits for KindDecimal values.
	Scale int
}

// Null is the canonical absent value.
var Null = Value{Kind: KindNull}

// Column describes one output column of a prepared statement.
type Column struct {
	// Label is the column's alias or name as reported by the engine.
	// Labels are not required to be unique within a statement.
	Label string

	Kind     Kind
	Scale    int
	Nullable bool
}

// StatementInfo is the metadata an engine reports at prepare time.
type StatementInfo struct {
	// Columns is empty for statements that return no rows (plain DDL/DML).
	Columns []Column

	// ParamCount is the number of positional parameter markers.
	ParamCount int
}

// Isolation selects the transaction isolation level at start time. It is
// immutable for the lifetime of the transaction.
type Isolation int

const (
	// Snapshot gives the transaction a stable view of the database taken
	// at start time. This is the driver default.
	Snapshot Isolation = iota

	// ReadCommitted lets the transaction observe commits made by other
	// transactions after it started.
	ReadCommitted

	// Consistency takes table-level locks for fully serialized execution.
	Consistency
)

// String returns the isolation level's SQL name.
func (i Isolation) String() string {
	switch i {
	case Snapshot:
		return "SNAPSHOT"
	case ReadCommitted:
		return "READ COMMITTED"
	case Consistency:
		return "CONSISTENCY"
	default:
		return "UNKNOWN"
	}
}
