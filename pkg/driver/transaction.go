package driver

import (
	"context"
	"sync"

	"github.com/emberdb/ember-go/pkg/engine"
	"golang.org/x/sync/semaphore"
)

// Transaction is one unit of atomicity on an attachment. Commit and
// Rollback end it; CommitRetaining and RollbackRetaining close the current
// unit of work but keep the transaction handle, its snapshot and its locks
// valid, so statements prepared against it stay usable. That retention is
// what makes a single prepared statement survive across units of work, the
// pattern behind efficient batch insertion.
//
// At most one operation may be in flight per transaction. The driver
// enforces this with a fail-fast guard: a second concurrent operation
// fails with ErrConcurrentUse instead of racing.
type Transaction struct {
	att       *Attachment
	childID   uint64
	handle    engine.Handle
	isolation engine.Isolation
	guard     *semaphore.Weighted

	mu         sync.Mutex
	closed     bool
	generation uint64
}

func newTransaction(a *Attachment, handle engine.Handle, isolation engine.Isolation) *Transaction {
	return &Transaction{
		att:       a,
		handle:    handle,
		isolation: isolation,
		guard:     semaphore.NewWeighted(1),
	}
}

// Isolation reports the level the transaction was started with.
func (t *Transaction) Isolation() engine.Isolation {
	return t.isolation
}

// Generation counts the units of work this transaction has gone through.
// It starts at 0 and increments on every retaining commit or rollback.
func (t *Transaction) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// acquire takes the single-operation slot and checks liveness. The
// returned release must be called when the operation completes.
func (t *Transaction) acquire() (func(), error) {
	if !t.guard.TryAcquire(1) {
		return nil, errConcurrent("transaction is already executing an operation")
	}
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		t.guard.Release(1)
		return nil, errDisposed("transaction")
	}
	return func() { t.guard.Release(1) }, nil
}

// Commit makes the transaction's work durable and closes it. Any further
// use of the transaction fails with ErrDisposed.
func (t *Transaction) Commit(ctx context.Context) error {
	return t.end(ctx, true, false)
}

// CommitRetaining makes the work so far durable and starts a new unit of
// work under the same handle, snapshot and locks.
func (t *Transaction) CommitRetaining(ctx context.Context) error {
	return t.end(ctx, true, true)
}

// Rollback discards the transaction's work and closes it.
func (t *Transaction) Rollback(ctx context.Context) error {
	return t.end(ctx, false, false)
}

// RollbackRetaining discards the current unit of work and starts a new one
// under the same handle, snapshot and locks.
func (t *Transaction) RollbackRetaining(ctx context.Context) error {
	return t.end(ctx, false, true)
}

func (t *Transaction) end(ctx context.Context, commit, retaining bool) error {
	release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	eng := t.att.client.eng
	if commit {
		err = eng.Commit(ctx, t.handle, retaining)
	} else {
		err = eng.Rollback(ctx, t.handle, retaining)
	}
	if err != nil {
		return wrapEngine(ErrRuntime, err)
	}

	t.mu.Lock()
	if retaining {
		t.generation++
	} else {
		t.closed = true
	}
	t.mu.Unlock()

	if !retaining {
		t.att.removeChild(t.childID)
	}
	return nil
}

// invalidate is called when the owning attachment goes away; the server
// has already rolled the transaction back.
func (t *Transaction) invalidate() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}
