package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/models"
	"github.com/safar/marketplace/internal/store"
)

const (
	DefaultTopic = "marketplace.orders"
	producerName = "marketplace-api"
)

const (
	OrderCreated               = "order.created"
	OrderCancellationRequested = "order.cancellation_requested"
	OrderCancelled             = "order.cancelled"
	OrderCancellationRejected  = "order.cancellation_rejected"
	OrderStatusUpdated         = "order.status_updated"
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Key          string          `json:"key"`
	Payload      json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, key string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producerName,
		Key:          key,
		Payload:      data,
	}, nil
}

// Enqueue records the event in the outbox through q. Call it with the
// transaction that performs the state change so the event commits with it.
func Enqueue(ctx context.Context, q database.Querier, topic, eventType, key string, payload any) error {
	env, err := NewEnvelope(eventType, key, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	return store.InsertOutbox(ctx, q, &models.OutboxEvent{
		EventID: env.EventID,
		Topic:   topic,
		Key:     key,
		Payload: data,
	})
}
