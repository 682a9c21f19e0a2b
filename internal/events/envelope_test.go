package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(OrderCreated, "ORD-1A2B3C4D", map[string]any{"orderId": 7})
	require.NoError(t, err)

	_, err = uuid.Parse(env.EventID)
	assert.NoError(t, err)
	assert.Equal(t, OrderCreated, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "ORD-1A2B3C4D", env.Key)
	assert.JSONEq(t, `{"orderId":7}`, string(env.Payload))
}

func TestNewEnvelopeRejectsUnmarshalable(t *testing.T) {
	_, err := NewEnvelope(OrderCreated, "k", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestEnvelopeWireFormat(t *testing.T) {
	env, err := NewEnvelope(OrderCancelled, "k", struct{}{})
	require.NoError(t, err)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"event_id", "event_type", "event_version", "occurred_at", "producer", "payload"} {
		assert.Contains(t, fields, key)
	}
}

func TestNewRelayFallsBackOnBadSettings(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		batch    int
	}{
		{"zero", 0, 0},
		{"negative", -time.Second, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRelay(nil, nil, zap.NewNop(), WithInterval(tt.interval), WithBatch(tt.batch))
			assert.Equal(t, defaultRelayInterval, r.interval)
			assert.Equal(t, defaultRelayBatch, r.batch)
		})
	}
}

func TestRelayRunStopsWithZeroInterval(t *testing.T) {
	r := NewRelay(nil, nil, zap.NewNop(), WithInterval(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the context ended")
	}
}
