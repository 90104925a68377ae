package driver

import (
	"context"
	"sync"

	"github.com/emberdb/ember-go/pkg/engine"
)

// resource is anything an attachment owns. invalidate marks the resource
// disposed without touching the engine; it is used when the attachment
// itself goes away and the server has already released everything under it.
type resource interface {
	invalidate()
}

// Attachment is an open connection to one database. It is the factory for
// transactions, statements, blobs and event subscriptions, and it owns
// their lifetime: disconnecting (or dropping the database) invalidates
// every resource created through it.
//
// Operations on different transactions of one attachment may run
// concurrently; operations sharing a transaction must be awaited serially.
type Attachment struct {
	client  *Client
	id      uint64
	handle  engine.Handle
	locator string

	mu               sync.Mutex
	open             bool
	defaultFetchSize int
	children         map[uint64]resource
	nextChild        uint64
}

func newAttachment(c *Client, id uint64, handle engine.Handle, locator string) *Attachment {
	return &Attachment{
		client:           c,
		id:               id,
		handle:           handle,
		locator:          locator,
		open:             true,
		defaultFetchSize: c.cfg.DefaultFetchSize,
		children:         make(map[uint64]resource),
		nextChild:        1,
	}
}

// DefaultFetchSize returns the fetch batch size cursors of this attachment
// start with.
func (a *Attachment) DefaultFetchSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.defaultFetchSize
}

// SetDefaultFetchSize changes the attachment default. It takes effect for
// cursors opened afterwards.
func (a *Attachment) SetDefaultFetchSize(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > 0 {
		a.defaultFetchSize = n
	}
}

func (a *Attachment) ensureOpen() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.open {
		return errDisposed("attachment")
	}
	return nil
}

func (a *Attachment) addChild(r resource) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextChild
	a.nextChild++
	a.children[id] = r
	return id
}

func (a *Attachment) removeChild(id uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.children, id)
}

// TransactionOptions selects how a transaction is started.
type TransactionOptions struct {
	// Isolation is the isolation level, immutable after start. The zero
	// value is engine.Snapshot.
	Isolation engine.Isolation
}

// StartTransaction begins a transaction on this attachment. A nil options
// argument starts a snapshot transaction.
func (a *Attachment) StartTransaction(ctx context.Context, options *TransactionOptions) (*Transaction, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	isolation := engine.Snapshot
	if options != nil {
		isolation = options.Isolation
	}
	handle, err := a.client.eng.StartTransaction(ctx, a.handle, isolation)
	if err != nil {
		return nil, wrapEngine(ErrRuntime, err)
	}
	t := newTransaction(a, handle, isolation)
	t.childID = a.addChild(t)
	a.client.logger.Debug("transaction started", nil, map[string]interface{}{
		"isolation": isolation.String(),
	})
	return t, nil
}

// Prepare compiles sql against the schema view of the given transaction
// and returns a reusable statement. The statement is bound to this
// attachment, not to the transaction: it may later be executed under any
// transaction of the attachment.
func (a *Attachment) Prepare(ctx context.Context, tx *Transaction, sql string) (*Statement, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	release, err := tx.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := a.client.span(ctx, "ember.prepare")
	handle, info, err := a.client.eng.Prepare(ctx, a.handle, tx.handle, sql)
	if err != nil {
		err = translatePrepare(err)
		a.client.endSpan(span, err)
		return nil, err
	}
	a.client.endSpan(span, nil)

	s := newStatement(a, handle, info)
	s.childID = a.addChild(s)
	return s, nil
}

// Execute prepares and runs a statement that returns no rows, releasing
// the prepared handle afterwards. Use Prepare for statements run more than
// once.
func (a *Attachment) Execute(ctx context.Context, tx *Transaction, sql string, params ...interface{}) error {
	s, err := a.Prepare(ctx, tx, sql)
	if err != nil {
		return err
	}
	defer a.disposeQuietly(ctx, s)
	return s.Execute(ctx, tx, params...)
}

// ExecuteQuery prepares and runs a row-returning statement. The prepared
// handle is released when the returned cursor is closed.
func (a *Attachment) ExecuteQuery(ctx context.Context, tx *Transaction, sql string, params ...interface{}) (*ResultSet, error) {
	s, err := a.Prepare(ctx, tx, sql)
	if err != nil {
		return nil, err
	}
	rs, err := s.ExecuteQuery(ctx, tx, params...)
	if err != nil {
		a.disposeQuietly(ctx, s)
		return nil, err
	}
	rs.ownedStatement = s
	return rs, nil
}

// ExecuteReturning prepares and runs a statement expected to produce
// exactly one row, e.g. INSERT ... RETURNING, and releases the prepared
// handle afterwards.
func (a *Attachment) ExecuteReturning(ctx context.Context, tx *Transaction, sql string, params ...interface{}) (Row, error) {
	s, err := a.Prepare(ctx, tx, sql)
	if err != nil {
		return nil, err
	}
	defer a.disposeQuietly(ctx, s)
	return s.ExecuteReturning(ctx, tx, params...)
}

// ExecuteReturningAsMap is ExecuteReturning with the row projected into a
// map keyed by column label. When two columns share a label the later
// column wins.
func (a *Attachment) ExecuteReturningAsMap(ctx context.Context, tx *Transaction, sql string, params ...interface{}) (map[string]interface{}, error) {
	s, err := a.Prepare(ctx, tx, sql)
	if err != nil {
		return nil, err
	}
	defer a.disposeQuietly(ctx, s)
	return s.ExecuteReturningAsMap(ctx, tx, params...)
}

func (a *Attachment) disposeQuietly(ctx context.Context, s *Statement) {
	if err := s.Dispose(ctx); err != nil {
		a.client.logger.Warn("failed to dispose statement", err, nil)
	}
}

// Disconnect closes the attachment. Every transaction, statement, cursor,
// blob and event subscription created through it is invalidated; the
// server releases their resources as part of the disconnect.
func (a *Attachment) Disconnect(ctx context.Context) error {
	return a.shutdown(ctx, false)
}

// DropDatabase deletes the attached database and closes the attachment,
// with the same invalidation semantics as Disconnect.
func (a *Attachment) DropDatabase(ctx context.Context) error {
	return a.shutdown(ctx, true)
}

func (a *Attachment) shutdown(ctx context.Context, drop bool) error {
	a.mu.Lock()
	if !a.open {
		a.mu.Unlock()
		return errDisposed("attachment")
	}
	a.open = false
	children := make([]resource, 0, len(a.children))
	for _, r := range a.children {
		children = append(children, r)
	}
	a.children = make(map[uint64]resource)
	a.mu.Unlock()

	// A transaction left open here is implicitly invalidated, never an
	// error: the server rolls it back as part of the detach.
	for _, r := range children {
		r.invalidate()
	}

	var err error
	if drop {
		err = a.client.eng.DropDatabase(ctx, a.handle)
	} else {
		err = a.client.eng.Disconnect(ctx, a.handle)
	}
	a.client.forget(a.id)
	if err != nil {
		return wrapEngine(ErrConnection, err)
	}
	a.client.logger.Debug("attachment closed", nil, map[string]interface{}{
		"locator": a.locator,
		"dropped": drop,
	})
	return nil
}
