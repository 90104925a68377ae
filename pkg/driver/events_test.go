package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectEvents drains batches from ch until want posts have been
// accounted for, returning per-name totals.
func collectEvents(t *testing.T, ch <-chan []EventCount, want uint64) map[string]uint64 {
	t.Helper()
	totals := make(map[string]uint64)
	var got uint64
	deadline := time.After(5 * time.Second)
	for got < want {
		select {
		case batch := <-ch:
			for _, ev := range batch {
				totals[ev.Name] += ev.Count
				got += ev.Count
			}
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %d of %d", got, want)
		}
	}
	return totals
}

func TestEventSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("CountsAccumulateAcrossReRegistrations", func(t *testing.T) {
		eng, _, att := newTestSetup(t)

		batches := make(chan []EventCount, 16)
		sub, err := att.QueueEvents(ctx, []string{"order_posted", "stock_low"}, func(evs []EventCount) {
			batches <- evs
		})
		require.NoError(t, err)
		defer sub.Cancel(ctx)

		// First cycle: two posts.
		require.NoError(t, eng.PostEvent(testDatabase, "order_posted"))
		require.NoError(t, eng.PostEvent(testDatabase, "stock_low"))
		first := collectEvents(t, batches, 2)
		assert.Equal(t, uint64(1), first["order_posted"])
		assert.Equal(t, uint64(1), first["stock_low"])

		// Second cycle lands on the re-registered subscription.
		require.NoError(t, eng.PostEvent(testDatabase, "order_posted"))
		require.NoError(t, eng.PostEvent(testDatabase, "order_posted"))
		second := collectEvents(t, batches, 2)
		assert.Equal(t, uint64(2), second["order_posted"])
		assert.Zero(t, second["stock_low"])
	})

	t.Run("NoPostIsLostOrDoubleCounted", func(t *testing.T) {
		eng, _, att := newTestSetup(t)

		batches := make(chan []EventCount, 64)
		sub, err := att.QueueEvents(ctx, []string{"tick"}, func(evs []EventCount) {
			batches <- evs
		})
		require.NoError(t, err)
		defer sub.Cancel(ctx)

		const posts = 20
		for i := 0; i < posts; i++ {
			require.NoError(t, eng.PostEvent(testDatabase, "tick"))
		}

		totals := collectEvents(t, batches, posts)
		assert.Equal(t, uint64(posts), totals["tick"])

		// Nothing further arrives once all posts are accounted for.
		select {
		case extra := <-batches:
			t.Fatalf("unexpected extra batch: %v", extra)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("CountingStartsAtSubscription", func(t *testing.T) {
		eng, _, att := newTestSetup(t)

		// Posts before the subscription exists are not reported.
		require.NoError(t, eng.PostEvent(testDatabase, "tick"))
		require.NoError(t, eng.PostEvent(testDatabase, "tick"))

		batches := make(chan []EventCount, 16)
		sub, err := att.QueueEvents(ctx, []string{"tick"}, func(evs []EventCount) {
			batches <- evs
		})
		require.NoError(t, err)
		defer sub.Cancel(ctx)

		require.NoError(t, eng.PostEvent(testDatabase, "tick"))
		totals := collectEvents(t, batches, 1)
		assert.Equal(t, uint64(1), totals["tick"])
	})

	t.Run("CancelFromInsideHandler", func(t *testing.T) {
		eng, _, att := newTestSetup(t)

		batches := make(chan []EventCount, 16)
		var sub *EventSubscription
		sub, err := att.QueueEvents(ctx, []string{"done"}, func(evs []EventCount) {
			batches <- evs
			require.NoError(t, sub.Cancel(context.Background()))
		})
		require.NoError(t, err)

		require.NoError(t, eng.PostEvent(testDatabase, "done"))
		collectEvents(t, batches, 1)

		// The self-cancelled subscription stays quiet.
		require.NoError(t, eng.PostEvent(testDatabase, "done"))
		select {
		case extra := <-batches:
			t.Fatalf("unexpected batch after cancel: %v", extra)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("CancelIsIdempotent", func(t *testing.T) {
		_, _, att := newTestSetup(t)

		sub, err := att.QueueEvents(ctx, []string{"tick"}, func([]EventCount) {})
		require.NoError(t, err)
		require.NoError(t, sub.Cancel(ctx))
		require.NoError(t, sub.Cancel(ctx))
	})

	t.Run("SubscribeOnClosedAttachmentFails", func(t *testing.T) {
		_, _, att := newTestSetup(t)
		require.NoError(t, att.Disconnect(ctx))

		_, err := att.QueueEvents(ctx, []string{"tick"}, func([]EventCount) {})
		assert.ErrorIs(t, err, ErrDisposed)
	})
}
