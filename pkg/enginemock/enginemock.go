package enginemock

import (
	"context"
	"io"
	"sync"

	"github.com/emberdb/ember-go/pkg/engine"
)

// DefaultMaxSegment is the largest chunk the mock stores or returns per
// blob segment, matching the wire limit of the engine family.
const DefaultMaxSegment = 32767

// Engine is an in-memory implementation of engine.Engine. It is safe for
// concurrent use. Create one with New, register statement behavior with
// Script, then hand it to the driver.
type Engine struct {
	mu          sync.Mutex
	next        engine.Handle
	maxSegment  int
	scripts     map[string]*Script
	databases   map[string]*database
	conns       map[engine.Handle]*conn
	txs         map[engine.Handle]*tx
	stmts       map[engine.Handle]*stmt
	cursors     map[engine.Handle]*cursor
	blobs       map[engine.Handle]*blobState
	registrants map[engine.Handle]*eventReg
}

type database struct {
	locator  string
	blobs    map[engine.BlobID][][]byte
	nextBlob engine.BlobID
	counts   map[string]uint64
}

type conn struct {
	db *database
}

type tx struct {
	conn      engine.Handle
	isolation engine.Isolation
}

type stmt struct {
	conn   engine.Handle
	script *Script
}

type cursor struct {
	conn   engine.Handle
	tx     engine.Handle
	script *Script
	rows   [][]engine.Value
	pos    int
}

type blobState struct {
	conn   engine.Handle
	tx     engine.Handle
	db     *database
	write  bool
	id     engine.BlobID
	segs   [][]byte
	seg    int
	off    int
	closed bool
}

type eventReg struct {
	conn     engine.Handle
	db       *database
	names    []string
	baseline []uint64
	deliver  engine.EventDelivery
	spent    bool
}

var _ engine.Engine = (*Engine)(nil)

// New returns an empty mock engine with no databases and no scripts.
func New() *Engine {
	return &Engine{
		next:        1,
		maxSegment:  DefaultMaxSegment,
		scripts:     make(map[string]*Script),
		databases:   make(map[string]*database),
		conns:       make(map[engine.Handle]*conn),
		txs:         make(map[engine.Handle]*tx),
		stmts:       make(map[engine.Handle]*stmt),
		cursors:     make(map[engine.Handle]*cursor),
		blobs:       make(map[engine.Handle]*blobState),
		registrants: make(map[engine.Handle]*eventReg),
	}
}

// SetMaxSegment overrides the blob segment size. Useful for exercising
// partial reads with small payloads.
func (e *Engine) SetMaxSegment(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n > 0 {
		e.maxSegment = n
	}
}

// Script registers (or replaces) the behavior of one SQL text.
func (e *Engine) Script(sql string, s Script) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts[sql] = &s
}

// PostEvent increments the named event counter on the database at locator
// and delivers to any registration whose baseline the new counts exceed.
func (e *Engine) PostEvent(locator, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, ok := e.databases[locator]
	if !ok {
		return engine.Errorf(-902, "I/O error during \"open\" operation for file %q\n-Error while trying to open file", locator)
	}
	db.counts[name]++
	e.notifyLocked(db)
	return nil
}

func (e *Engine) handleLocked() engine.Handle {
	h := e.next
	e.next++
	return h
}

func errInvalid(what string) *engine.Error {
	return engine.Errorf(-901, "invalid %s handle", what)
}

func (e *Engine) CreateDatabase(_ context.Context, locator string, _ map[string]string) (engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.databases[locator]; exists {
		return 0, engine.Errorf(-902, "I/O error during \"open O_CREAT\" operation for file %q\n-Error while trying to create file", locator)
	}
	db := &database{
		locator:  locator,
		blobs:    make(map[engine.BlobID][][]byte),
		nextBlob: 1,
		counts:   make(map[string]uint64),
	}
	e.databases[locator] = db
	h := e.handleLocked()
	e.conns[h] = &conn{db: db}
	return h, nil
}

func (e *Engine) Connect(_ context.Context, locator string, _ map[string]string) (engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	db, ok := e.databases[locator]
	if !ok {
		return 0, engine.Errorf(-902, "I/O error during \"open\" operation for file %q\n-Error while trying to open file", locator)
	}
	h := e.handleLocked()
	e.conns[h] = &conn{db: db}
	return h, nil
}

func (e *Engine) Disconnect(_ context.Context, c engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disconnectLocked(c)
}

func (e *Engine) disconnectLocked(c engine.Handle) error {
	if _, ok := e.conns[c]; !ok {
		return errInvalid("database")
	}
	delete(e.conns, c)
	for h, t := range e.txs {
		if t.conn == c {
			delete(e.txs, h)
		}
	}
	for h, s := range e.stmts {
		if s.conn == c {
			delete(e.stmts, h)
		}
	}
	for h, cu := range e.cursors {
		if cu.conn == c {
			delete(e.cursors, h)
		}
	}
	for h, b := range e.blobs {
		if b.conn == c {
			delete(e.blobs, h)
		}
	}
	for h, r := range e.registrants {
		if r.conn == c {
			delete(e.registrants, h)
		}
	}
	return nil
}

func (e *Engine) DropDatabase(_ context.Context, c engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cn, ok := e.conns[c]
	if !ok {
		return errInvalid("database")
	}
	delete(e.databases, cn.db.locator)
	return e.disconnectLocked(c)
}

func (e *Engine) StartTransaction(_ context.Context, c engine.Handle, isolation engine.Isolation) (engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.conns[c]; !ok {
		return 0, errInvalid("database")
	}
	h := e.handleLocked()
	e.txs[h] = &tx{conn: c, isolation: isolation}
	return h, nil
}

func (e *Engine) Commit(_ context.Context, t engine.Handle, retaining bool) error {
	return e.endTransaction(t, retaining)
}

func (e *Engine) Rollback(_ context.Context, t engine.Handle, retaining bool) error {
	return e.endTransaction(t, retaining)
}

func (e *Engine) endTransaction(t engine.Handle, retaining bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.txs[t]; !ok {
		return engine.Errorf(-901, "invalid transaction handle (expecting explicit transaction start)")
	}
	if retaining {
		return nil
	}
	delete(e.txs, t)
	for h, cu := range e.cursors {
		if cu.tx == t {
			delete(e.cursors, h)
		}
	}
	for h, b := range e.blobs {
		if b.tx == t {
			delete(e.blobs, h)
		}
	}
	return nil
}

func (e *Engine) Prepare(_ context.Context, c, t engine.Handle, sql string) (engine.Handle, engine.StatementInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.conns[c]; !ok {
		return 0, engine.StatementInfo{}, errInvalid("database")
	}
	if _, ok := e.txs[t]; !ok {
		return 0, engine.StatementInfo{}, engine.Errorf(-901, "invalid transaction handle (expecting explicit transaction start)")
	}
	script, ok := e.scripts[sql]
	if !ok {
		return 0, engine.StatementInfo{}, engine.Errorf(engine.CodeSemantic,
			"Dynamic SQL Error\n-SQL error code = -204\n-Statement is not scripted\n-%s", sql)
	}
	if script.PrepareError != nil {
		return 0, engine.StatementInfo{}, script.PrepareError
	}
	h := e.handleLocked()
	e.stmts[h] = &stmt{conn: c, script: script}
	info := engine.StatementInfo{
		Columns:    append([]engine.Column(nil), script.Columns...),
		ParamCount: script.ParamCount,
	}
	return h, info, nil
}

func (e *Engine) statementUnderTx(s, t engine.Handle) (*stmt, error) {
	st, ok := e.stmts[s]
	if !ok {
		return nil, errInvalid("statement")
	}
	if _, ok := e.txs[t]; !ok {
		return nil, engine.Errorf(-901, "invalid transaction handle (expecting explicit transaction start)")
	}
	return st, nil
}

func (e *Engine) Execute(_ context.Context, s, t engine.Handle, params []engine.Value) error {
	e.mu.Lock()
	st, err := e.statementUnderTx(s, t)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if st.script.OnExecute != nil {
		return st.script.OnExecute(params)
	}
	return nil
}

func (e *Engine) ExecuteReturning(_ context.Context, s, t engine.Handle, params []engine.Value) ([]engine.Value, error) {
	e.mu.Lock()
	st, err := e.statementUnderTx(s, t)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	script := st.script
	if script.OnExecute != nil {
		if err := script.OnExecute(params); err != nil {
			return nil, err
		}
	}
	if script.Returning != nil {
		return script.Returning(params)
	}
	if script.Rows != nil {
		rows := script.Rows(params)
		if len(rows) != 1 {
			return nil, engine.Errorf(engine.CodeSingletonViolation,
				"multiple rows in singleton select")
		}
		return rows[0], nil
	}
	return nil, nil
}

func (e *Engine) OpenCursor(_ context.Context, s, t engine.Handle, params []engine.Value) (engine.Handle, error) {
	e.mu.Lock()
	st, err := e.statementUnderTx(s, t)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	script := st.script
	if script.OnExecute != nil {
		if err := script.OnExecute(params); err != nil {
			return 0, err
		}
	}
	var rows [][]engine.Value
	if script.Rows != nil {
		rows = script.Rows(params)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.handleLocked()
	e.cursors[h] = &cursor{conn: st.conn, tx: t, script: script, rows: rows}
	return h, nil
}

func (e *Engine) Fetch(_ context.Context, c engine.Handle, max int) ([][]engine.Value, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cu, ok := e.cursors[c]
	if !ok {
		return nil, false, errInvalid("cursor")
	}

	limit := len(cu.rows)
	failAt := -1
	if cu.script.FailAfterRow > 0 && cu.script.FailAfterRow <= len(cu.rows) {
		failAt = cu.script.FailAfterRow
		limit = failAt
	}

	n := limit - cu.pos
	if n > max {
		n = max
	}
	var rows [][]engine.Value
	if n > 0 {
		rows = append(rows, cu.rows[cu.pos:cu.pos+n]...)
		cu.pos += n
	}
	if failAt >= 0 && cu.pos == failAt {
		return rows, true, cu.script.failure()
	}
	return rows, cu.pos < len(cu.rows), nil
}

func (e *Engine) CloseCursor(_ context.Context, c engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.cursors[c]; !ok {
		return errInvalid("cursor")
	}
	delete(e.cursors, c)
	return nil
}

func (e *Engine) CloseStatement(_ context.Context, s engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.stmts[s]; !ok {
		return errInvalid("statement")
	}
	delete(e.stmts, s)
	return nil
}

func (e *Engine) CreateBlob(_ context.Context, t engine.Handle) (engine.Handle, engine.BlobID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.txs[t]
	if !ok {
		return 0, 0, engine.Errorf(-901, "invalid transaction handle (expecting explicit transaction start)")
	}
	cn := e.conns[tr.conn]
	id := cn.db.nextBlob
	cn.db.nextBlob++
	h := e.handleLocked()
	e.blobs[h] = &blobState{conn: tr.conn, tx: t, db: cn.db, write: true, id: id}
	return h, id, nil
}

func (e *Engine) OpenBlob(_ context.Context, t engine.Handle, id engine.BlobID) (engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.txs[t]
	if !ok {
		return 0, engine.Errorf(-901, "invalid transaction handle (expecting explicit transaction start)")
	}
	cn := e.conns[tr.conn]
	segs, ok := cn.db.blobs[id]
	if !ok {
		return 0, engine.Errorf(-902, "invalid BLOB ID")
	}
	h := e.handleLocked()
	e.blobs[h] = &blobState{conn: tr.conn, tx: t, db: cn.db, segs: segs}
	return h, nil
}

func (e *Engine) BlobLength(_ context.Context, b engine.Handle) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bs, ok := e.blobs[b]
	if !ok {
		return 0, errInvalid("BLOB")
	}
	var total int64
	for _, seg := range bs.segs {
		total += int64(len(seg))
	}
	return total, nil
}

func (e *Engine) BlobRead(_ context.Context, b engine.Handle, p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bs, ok := e.blobs[b]
	if !ok {
		return 0, errInvalid("BLOB")
	}
	if bs.write {
		return 0, engine.Errorf(-901, "invalid BLOB handle")
	}
	for bs.seg < len(bs.segs) && bs.off == len(bs.segs[bs.seg]) {
		bs.seg++
		bs.off = 0
	}
	if bs.seg >= len(bs.segs) {
		return 0, io.EOF
	}
	// At most one segment per call, like get_segment on the wire.
	n := copy(p, bs.segs[bs.seg][bs.off:])
	bs.off += n
	return n, nil
}

func (e *Engine) BlobWrite(_ context.Context, b engine.Handle, p []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	bs, ok := e.blobs[b]
	if !ok {
		return errInvalid("BLOB")
	}
	if !bs.write || bs.closed {
		return engine.Errorf(-901, "invalid BLOB handle")
	}
	for len(p) > 0 {
		n := len(p)
		if n > e.maxSegment {
			n = e.maxSegment
		}
		seg := make([]byte, n)
		copy(seg, p[:n])
		bs.segs = append(bs.segs, seg)
		p = p[n:]
	}
	return nil
}

func (e *Engine) CloseBlob(_ context.Context, b engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	bs, ok := e.blobs[b]
	if !ok {
		return errInvalid("BLOB")
	}
	if bs.write && !bs.closed {
		bs.db.blobs[bs.id] = bs.segs
		bs.closed = true
	}
	delete(e.blobs, b)
	return nil
}

func (e *Engine) QueueEvents(_ context.Context, c engine.Handle, names []string, baseline []uint64, deliver engine.EventDelivery) (engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cn, ok := e.conns[c]
	if !ok {
		return 0, errInvalid("database")
	}
	reg := &eventReg{
		conn:     c,
		db:       cn.db,
		names:    append([]string(nil), names...),
		baseline: append([]uint64(nil), baseline...),
		deliver:  deliver,
	}
	h := e.handleLocked()
	e.registrants[h] = reg
	// Posts between the previous delivery and this registration fire
	// immediately; counters are cumulative so nothing is lost.
	e.maybeDeliverLocked(h, reg)
	return h, nil
}

func (e *Engine) CancelEvents(_ context.Context, reg engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.registrants, reg)
	return nil
}

func (e *Engine) notifyLocked(db *database) {
	for h, reg := range e.registrants {
		if reg.db == db {
			e.maybeDeliverLocked(h, reg)
		}
	}
}

func (e *Engine) maybeDeliverLocked(h engine.Handle, reg *eventReg) {
	current := make([]uint64, len(reg.names))
	changed := reg.baseline == nil
	for i, name := range reg.names {
		current[i] = reg.db.counts[name]
		if i < len(reg.baseline) && current[i] != reg.baseline[i] {
			changed = true
		}
	}
	if !changed {
		return
	}
	delete(e.registrants, h)
	reg.deliver(current)
}
