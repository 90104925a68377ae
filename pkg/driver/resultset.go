package driver

import (
	"context"
	"sync"

	"github.com/emberdb/ember-go/pkg/engine"
)

// FetchOptions tunes one Fetch call.
type FetchOptions struct {
	// FetchSize caps the number of rows retrieved. Zero falls back to
	// the cursor default, then the attachment default, then
	// DefaultFetchSize.
	FetchSize int
}

// ResultSet is an open server-side cursor over a statement's results. It
// yields rows as a lazy, finite, non-restartable sequence: each Fetch
// continues where the previous one left off, and once the cursor is
// exhausted every further Fetch returns no rows without touching the
// server.
//
// Fetch calls share the owning transaction's single-operation slot and
// must be awaited serially.
type ResultSet struct {
	att     *Attachment
	tx      *Transaction
	childID uint64
	handle  engine.Handle
	labels  []string

	// ownedStatement is set when the cursor came from an attachment
	// level ExecuteQuery; Close then disposes the statement too.
	ownedStatement *Statement

	mu        sync.Mutex
	closed    bool
	exhausted bool
	pending   error
	fetchSize int
}

func newResultSet(a *Attachment, tx *Transaction, handle engine.Handle, labels []string) *ResultSet {
	return &ResultSet{
		att:    a,
		tx:     tx,
		handle: handle,
		labels: append([]string(nil), labels...),
	}
}

// SetDefaultFetchSize overrides the cursor's default batch size. It takes
// effect on the next Fetch.
func (rs *ResultSet) SetDefaultFetchSize(n int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if n > 0 {
		rs.fetchSize = n
	}
}

func (rs *ResultSet) resolveFetchSize(options *FetchOptions) int {
	if options != nil && options.FetchSize > 0 {
		return options.FetchSize
	}
	rs.mu.Lock()
	size := rs.fetchSize
	rs.mu.Unlock()
	if size > 0 {
		return size
	}
	return rs.att.DefaultFetchSize()
}

// Fetch retrieves the next batch of up to fetchSize rows and returns
// however many were available; an empty result means the cursor is
// exhausted. When server-side evaluation fails after the cursor has
// already produced rows, the rows preceding the failure are returned by
// the Fetch that reached them and the failure itself surfaces on the next
// Fetch: partial results are never dropped, and a failure never
// invalidates rows already returned.
func (rs *ResultSet) Fetch(ctx context.Context, options *FetchOptions) ([]Row, error) {
	release, err := rs.tx.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return nil, errDisposed("result set")
	}
	if rs.pending != nil {
		err := rs.pending
		rs.mu.Unlock()
		return nil, err
	}
	if rs.exhausted {
		rs.mu.Unlock()
		return []Row{}, nil
	}
	rs.mu.Unlock()

	size := rs.resolveFetchSize(options)
	ctx, span := rs.att.client.span(ctx, "ember.fetch")
	values, more, err := rs.att.client.eng.Fetch(ctx, rs.handle, size)
	rs.att.client.endSpan(span, err)

	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = unmarshalRow(v)
	}
	rs.att.client.metrics.observeFetch(len(rows))

	if err != nil {
		wrapped := wrapEngine(ErrRuntime, err)
		if len(rows) == 0 {
			return nil, wrapped
		}
		// Deliver what the server produced; the failure surfaces on
		// the next call.
		rs.mu.Lock()
		rs.pending = wrapped
		rs.mu.Unlock()
		return rows, nil
	}

	if !more || len(rows) < size {
		rs.mu.Lock()
		rs.exhausted = true
		rs.mu.Unlock()
	}
	return rows, nil
}

// FetchAsMap fetches one batch and projects each row into a map keyed by
// column label. When two columns share a label the later column wins.
func (rs *ResultSet) FetchAsMap(ctx context.Context, options *FetchOptions) ([]map[string]interface{}, error) {
	rows, err := rs.Fetch(ctx, options)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out[i] = projectRow(rs.labels, row)
	}
	return out, nil
}

// Close releases the cursor, and the prepared statement as well when the
// cursor came from an attachment-level ExecuteQuery. Closing twice is a
// no-op; a failed earlier Fetch does not re-raise here.
func (rs *ResultSet) Close(ctx context.Context) error {
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return nil
	}
	rs.closed = true
	rs.mu.Unlock()

	rs.att.removeChild(rs.childID)
	err := rs.att.client.eng.CloseCursor(ctx, rs.handle)
	if err != nil {
		err = wrapEngine(ErrRuntime, err)
	}
	if rs.ownedStatement != nil {
		if derr := rs.ownedStatement.Dispose(ctx); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}

func (rs *ResultSet) invalidate() {
	rs.mu.Lock()
	rs.closed = true
	rs.mu.Unlock()
}
