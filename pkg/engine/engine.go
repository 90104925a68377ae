package engine

import "context"

// Handle is an opaque token for a server-side resource (connection,
// transaction, statement, cursor, blob or event registration). Handles are
// issued by an Engine and only meaningful to the Engine that issued them;
// the driver treats them as capability tokens and tracks ownership itself.
type Handle int64

// EventDelivery receives one generation of event counts. The slice holds the
// server's cumulative post count for each registered name, in registration
// order. A registration delivers at most once; interest must be re-queued
// with the delivered counts as the new baseline to observe further posts.
type EventDelivery func(counts []uint64)

// Engine is the set of primitives the driver needs from an EmberDB wire or
// native client. Every call may block on the server and honors context
// cancellation for the local wait; a cancelled call leaves the underlying
// resource in an unspecified but non-corrupt state.
//
// pkg/enginemock provides a scriptable in-memory implementation for tests.
type Engine interface {
	// CreateDatabase provisions a new database at the locator and returns
	// an open connection to it. Options are engine-defined key/value
	// pairs (credentials, page size, forced-write flag and the like).
	CreateDatabase(ctx context.Context, locator string, options map[string]string) (Handle, error)

	// Connect opens a connection to an existing database.
	Connect(ctx context.Context, locator string, options map[string]string) (Handle, error)

	// Disconnect closes a connection. Server-side resources still open
	// under it (transactions, cursors, blobs, event registrations) are
	// released by the server.
	Disconnect(ctx context.Context, conn Handle) error

	// DropDatabase deletes the connected database and closes the
	// connection in one step.
	DropDatabase(ctx context.Context, conn Handle) error

	// StartTransaction begins a transaction at the given isolation.
	StartTransaction(ctx context.Context, conn Handle, isolation Isolation) (Handle, error)

	// Commit ends the transaction's current unit of work. With retaining
	// set, the handle stays valid and keeps its snapshot and lock
	// context; otherwise the handle is released.
	Commit(ctx context.Context, tx Handle, retaining bool) error

	// Rollback mirrors Commit for the abort path.
	Rollback(ctx context.Context, tx Handle, retaining bool) error

	// Prepare compiles SQL under the schema view of the given transaction
	// and returns the statement handle plus its metadata. The handle is
	// scoped to the connection, not the transaction: it may later be
	// executed under any transaction of the same connection.
	Prepare(ctx context.Context, conn, tx Handle, sql string) (Handle, StatementInfo, error)

	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context, stmt, tx Handle, params []Value) error

	// ExecuteReturning runs a statement expected to produce exactly one
	// row and returns it. The server enforces the singleton cardinality
	// and fails with CodeSingletonViolation otherwise.
	ExecuteReturning(ctx context.Context, stmt, tx Handle, params []Value) ([]Value, error)

	// OpenCursor executes a row-returning statement and opens a cursor
	// over its results.
	OpenCursor(ctx context.Context, stmt, tx Handle, params []Value) (Handle, error)

	// Fetch retrieves up to max rows from a cursor. more reports whether
	// the cursor may still hold rows. When server-side evaluation fails
	// after producing some of the requested rows, Fetch returns those
	// rows together with the error; the rows are valid and the cursor is
	// positioned at the failure.
	Fetch(ctx context.Context, cursor Handle, max int) (rows [][]Value, more bool, err error)

	// CloseCursor releases a cursor. The statement stays prepared.
	CloseCursor(ctx context.Context, cursor Handle) error

	// CloseStatement releases a prepared statement.
	CloseStatement(ctx context.Context, stmt Handle) error

	// CreateBlob starts a fresh write-mode blob under the transaction and
	// returns its handle together with the BlobID that will refer to the
	// content once the blob is closed.
	CreateBlob(ctx context.Context, tx Handle) (Handle, BlobID, error)

	// OpenBlob opens an existing blob for reading under the transaction.
	OpenBlob(ctx context.Context, tx Handle, id BlobID) (Handle, error)

	// BlobLength reports the blob's total content length in bytes.
	BlobLength(ctx context.Context, blob Handle) (int64, error)

	// BlobRead fills p with up to len(p) bytes and returns the count. A
	// single read may return fewer bytes than requested since content is
	// stored in server-side segments; at end of stream it returns
	// (0, io.EOF).
	BlobRead(ctx context.Context, blob Handle, p []byte) (int, error)

	// BlobWrite appends p to a write-mode blob.
	BlobWrite(ctx context.Context, blob Handle, p []byte) error

	// CloseBlob releases the handle. For a write-mode blob the first
	// close seals the content under its BlobID.
	CloseBlob(ctx context.Context, blob Handle) error

	// QueueEvents registers one generation of interest in the named
	// events. baseline holds the cumulative counts the caller has already
	// seen, aligned with names. As soon as the server's counts differ
	// from baseline, possibly immediately, deliver is invoked exactly
	// once with the current cumulative counts and the registration is
	// spent. A nil baseline requests an immediate delivery of the
	// current counts so the caller can synchronize. deliver may be
	// called from an engine-internal goroutine.
	QueueEvents(ctx context.Context, conn Handle, names []string, baseline []uint64, deliver EventDelivery) (Handle, error)

	// CancelEvents withdraws a registration. Cancelling a registration
	// that has already delivered or been cancelled is a no-op.
	CancelEvents(ctx context.Context, reg Handle) error
}
