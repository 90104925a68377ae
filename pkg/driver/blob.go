package driver

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/emberdb/ember-go/pkg/engine"
)

// Blob is a handle to a binary large object, scoped to one transaction.
// An instance is either write-mode (from Attachment.CreateBlob: sequential
// writes, sealed by Close, then bindable as a statement parameter) or
// read-mode (from Attachment.OpenBlob: sequential reads until the total
// length is exhausted). Content streams through in segments; nothing is
// buffered whole.
type Blob struct {
	att     *Attachment
	tx      *Transaction
	childID uint64
	handle  engine.Handle
	id      engine.BlobID
	write   bool

	mu          sync.Mutex
	closed      bool
	length      int64
	lengthKnown bool
}

// CreateBlob starts a fresh write-mode blob under tx. Write the content,
// Close it, then bind the *Blob as a parameter of an INSERT or UPDATE in
// the same transaction.
func (a *Attachment) CreateBlob(ctx context.Context, tx *Transaction) (*Blob, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	release, err := tx.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	handle, id, err := a.client.eng.CreateBlob(ctx, tx.handle)
	if err != nil {
		return nil, wrapEngine(ErrRuntime, err)
	}
	b := &Blob{att: a, tx: tx, handle: handle, id: id, write: true}
	b.childID = a.addChild(b)
	return b, nil
}

// OpenBlob opens the blob a query returned as a column value, for reading
// under tx.
func (a *Attachment) OpenBlob(ctx context.Context, tx *Transaction, ref BlobRef) (*Blob, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	release, err := tx.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	handle, err := a.client.eng.OpenBlob(ctx, tx.handle, engine.BlobID(ref))
	if err != nil {
		return nil, wrapEngine(ErrRuntime, err)
	}
	b := &Blob{att: a, tx: tx, handle: handle, id: engine.BlobID(ref)}
	b.childID = a.addChild(b)
	return b, nil
}

// Write appends p to a write-mode blob.
func (b *Blob) Write(ctx context.Context, p []byte) error {
	if !b.write {
		return errParameterf("blob is read-only")
	}
	if err := b.ensureLive(); err != nil {
		return err
	}
	release, err := b.tx.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := b.att.client.eng.BlobWrite(ctx, b.handle, p); err != nil {
		return wrapEngine(ErrRuntime, err)
	}
	b.att.client.metrics.observeBlob("write", len(p))
	return nil
}

// Read fills p with up to len(p) bytes of a read-mode blob and returns the
// count. A single read may return fewer bytes than requested, since
// content arrives in server-side segments; loop until io.EOF, which is
// returned with zero bytes once the stream is exhausted.
func (b *Blob) Read(ctx context.Context, p []byte) (int, error) {
	if b.write {
		return 0, errParameterf("blob is write-only")
	}
	if err := b.ensureLive(); err != nil {
		return 0, err
	}
	release, err := b.tx.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := b.att.client.eng.BlobRead(ctx, b.handle, p)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return n, wrapEngine(ErrRuntime, err)
	}
	b.att.client.metrics.observeBlob("read", n)
	return n, nil
}

// Length reports the blob's total content length in bytes. The engine is
// queried once; the result is cached.
func (b *Blob) Length(ctx context.Context) (int64, error) {
	if err := b.ensureLive(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	if b.lengthKnown {
		n := b.length
		b.mu.Unlock()
		return n, nil
	}
	b.mu.Unlock()

	release, err := b.tx.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := b.att.client.eng.BlobLength(ctx, b.handle)
	if err != nil {
		return 0, wrapEngine(ErrRuntime, err)
	}
	b.mu.Lock()
	b.length = n
	b.lengthKnown = true
	b.mu.Unlock()
	return n, nil
}

// Close releases the handle. For a write-mode blob the first Close seals
// the written bytes as the blob's content; the instance is then bindable
// as a parameter. Closing twice is a no-op.
func (b *Blob) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.att.removeChild(b.childID)
	if err := b.att.client.eng.CloseBlob(ctx, b.handle); err != nil {
		return wrapEngine(ErrRuntime, err)
	}
	return nil
}

func (b *Blob) ensureLive() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errDisposed("blob")
	}
	return nil
}

// ref yields the locator to bind this blob as a parameter. Write-mode
// blobs must be closed first; their content is sealed by Close.
func (b *Blob) ref() (engine.BlobID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.write && !b.closed {
		return 0, errParameterf("blob must be closed before it can be bound")
	}
	return b.id, nil
}

func (b *Blob) invalidate() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
