package driver

import (
	"context"
	"sync"

	"github.com/emberdb/ember-go/pkg/engine"
)

// EventCount is one entry of a notification batch: the event's name and
// how many times it was posted since the previous batch.
type EventCount struct {
	Name  string
	Count uint64
}

// EventHandler receives one notification batch. Ordering of names within a
// batch is unspecified. The handler runs on the subscription's dispatch
// goroutine, never concurrently with itself, and may call Cancel.
type EventHandler func(events []EventCount)

// EventSubscription is a live registration for named server events. The
// server buffers a single notification generation per registration, so the
// subscription re-registers itself after every dispatch; counts are
// cumulative on the server side, which makes the cycle lossless: posts
// landing between a delivery and the re-registration are picked up
// immediately by the new registration.
type EventSubscription struct {
	att     *Attachment
	childID uint64
	names   []string
	handler EventHandler

	ctx  context.Context
	stop context.CancelFunc

	deliveries chan []uint64
	cancelOnce sync.Once

	mu  sync.Mutex
	reg engine.Handle

	// lastSeen and synced are owned by the dispatch goroutine after
	// construction.
	lastSeen []uint64
	synced   bool
}

// QueueEvents registers interest in the named events and dispatches each
// notification batch to handler. Counting starts at subscription time;
// earlier posts are not reported. The subscription stays active for the
// attachment's lifetime, independent of any transaction, until Cancel is
// called.
func (a *Attachment) QueueEvents(ctx context.Context, names []string, handler EventHandler) (*EventSubscription, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	subCtx, stop := context.WithCancel(context.Background())
	s := &EventSubscription{
		att:        a,
		names:      append([]string(nil), names...),
		handler:    handler,
		ctx:        subCtx,
		stop:       stop,
		deliveries: make(chan []uint64, 1),
		lastSeen:   make([]uint64, len(names)),
	}

	// The first registration passes a nil baseline: the engine answers
	// immediately with the current counts, which become the zero point
	// for delta computation.
	reg, err := a.client.eng.QueueEvents(ctx, a.handle, s.names, nil, s.deliver)
	if err != nil {
		stop()
		return nil, wrapEngine(ErrRuntime, err)
	}
	s.reg = reg
	s.childID = a.addChild(s)

	go s.dispatch()
	a.client.logger.Debug("event subscription active", nil, map[string]interface{}{
		"names": s.names,
	})
	return s, nil
}

// deliver is handed to the engine as the registration callback. It only
// forwards the counts onto the internal channel; all real work happens on
// the dispatch goroutine, so the engine is never re-entered from its own
// callback.
func (s *EventSubscription) deliver(counts []uint64) {
	select {
	case s.deliveries <- counts:
	case <-s.ctx.Done():
	}
}

func (s *EventSubscription) dispatch() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case counts := <-s.deliveries:
			s.handleDelivery(counts)
			if s.ctx.Err() != nil {
				// Cancelled, possibly from inside the handler.
				return
			}
			if !s.requeue() {
				return
			}
		}
	}
}

func (s *EventSubscription) handleDelivery(counts []uint64) {
	if !s.synced {
		// First delivery carries the counts at subscription time.
		s.synced = true
		copy(s.lastSeen, counts)
		return
	}
	var batch []EventCount
	for i, name := range s.names {
		if i < len(counts) && counts[i] > s.lastSeen[i] {
			batch = append(batch, EventCount{Name: name, Count: counts[i] - s.lastSeen[i]})
			s.lastSeen[i] = counts[i]
		}
	}
	if len(batch) == 0 {
		return
	}
	s.att.client.metrics.observeEventBatch()
	s.handler(batch)
}

// requeue registers the next notification generation. Without it the next
// post would be lost: the server only holds one generation per
// registration.
func (s *EventSubscription) requeue() bool {
	baseline := append([]uint64(nil), s.lastSeen...)
	reg, err := s.att.client.eng.QueueEvents(s.ctx, s.att.handle, s.names, baseline, s.deliver)
	if err != nil {
		if s.ctx.Err() == nil {
			s.att.client.logger.Error("event re-registration failed, subscription stops", err, map[string]interface{}{
				"names": s.names,
			})
		}
		return false
	}
	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
	return true
}

// Cancel deregisters the subscription; no dispatch starts afterwards.
// Cancel is idempotent and safe to call from inside the handler, the
// expected pattern for self-cancelling on a target count.
func (s *EventSubscription) Cancel(ctx context.Context) error {
	var err error
	s.cancelOnce.Do(func() {
		s.stop()
		s.mu.Lock()
		reg := s.reg
		s.mu.Unlock()
		if cerr := s.att.client.eng.CancelEvents(ctx, reg); cerr != nil {
			err = wrapEngine(ErrRuntime, cerr)
		}
		s.att.removeChild(s.childID)
	})
	return err
}

// invalidate stops dispatch without engine calls; the registration died
// with the attachment.
func (s *EventSubscription) invalidate() {
	s.cancelOnce.Do(func() {
		s.stop()
	})
}
