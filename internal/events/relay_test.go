package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/safar/marketplace/internal/dbtest"
	"github.com/safar/marketplace/internal/events"
	"github.com/safar/marketplace/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []events.Message
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, msgs ...events.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func TestRelayFlush(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	db := dbtest.New(t)
	ctx := context.Background()

	for _, key := range []string{"ORD-1", "ORD-2", "ORD-3"} {
		require.NoError(t, events.Enqueue(ctx, db, events.DefaultTopic, events.OrderCreated, key, map[string]string{"orderNumber": key}))
	}

	t.Run("publisher failure keeps rows pending", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		relay := events.NewRelay(db, pub, zaptest.NewLogger(t))

		n, err := relay.Flush(ctx)
		require.Error(t, err)
		assert.Zero(t, n)

		pending, err := store.CountPendingOutbox(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, 3, pending)
	})

	t.Run("batches are published in order and marked sent", func(t *testing.T) {
		pub := &recordingPublisher{}
		var hooked []int
		relay := events.NewRelay(db, pub, zaptest.NewLogger(t),
			events.WithBatch(2),
			events.WithPublishedHook(func(n int) { hooked = append(hooked, n) }))

		n, err := relay.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = relay.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = relay.Flush(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		assert.Equal(t, []int{2, 1}, hooked)
		require.Len(t, pub.msgs, 3)
		for i, key := range []string{"ORD-1", "ORD-2", "ORD-3"} {
			msg := pub.msgs[i]
			assert.Equal(t, key, msg.Key)
			assert.Equal(t, events.DefaultTopic, msg.Topic)

			var env events.Envelope
			require.NoError(t, json.Unmarshal(msg.Value, &env))
			assert.Equal(t, msg.EventID, env.EventID)
			assert.Equal(t, events.OrderCreated, env.EventType)
		}

		pending, err := store.CountPendingOutbox(ctx, db)
		require.NoError(t, err)
		assert.Zero(t, pending)
	})
}
