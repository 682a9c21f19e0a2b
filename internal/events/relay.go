package events

import (
	"context"
	"database/sql"
	"time"

	"github.com/safar/marketplace/internal/database"
	"github.com/safar/marketplace/internal/store"
	"go.uber.org/zap"
)

const (
	defaultRelayInterval = time.Second
	defaultRelayBatch    = 100
)

type Message struct {
	EventID string
	Topic   string
	Key     string
	Value   []byte
}

type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
}

// Relay moves committed outbox rows to a Publisher. Non-positive interval or
// batch options fall back to the defaults.
type Relay struct {
	db        *sql.DB
	pub       Publisher
	log       *zap.Logger
	interval  time.Duration
	batch     int
	published func(n int)
}

type RelayOption func(*Relay)

func WithInterval(d time.Duration) RelayOption { return func(r *Relay) { r.interval = d } }

func WithBatch(n int) RelayOption { return func(r *Relay) { r.batch = n } }

// WithPublishedHook is called with the size of every delivered batch.
func WithPublishedHook(fn func(n int)) RelayOption { return func(r *Relay) { r.published = fn } }

func NewRelay(db *sql.DB, pub Publisher, log *zap.Logger, opts ...RelayOption) *Relay {
	r := &Relay{
		db:        db,
		pub:       pub,
		log:       log,
		interval:  defaultRelayInterval,
		batch:     defaultRelayBatch,
		published: func(int) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.interval <= 0 {
		r.interval = defaultRelayInterval
	}
	if r.batch < 1 {
		r.batch = defaultRelayBatch
	}
	return r
}

// Run flushes on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				n, err := r.Flush(ctx)
				if err != nil {
					if ctx.Err() == nil {
						r.log.Error("outbox relay flush failed", zap.Error(err))
					}
					break
				}
				if n < r.batch {
					break
				}
			}
		}
	}
}

// Flush publishes one batch and marks it sent. Rows stay pending if the
// publisher fails, so delivery is at least once.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	var sent int

	err := database.WithTransaction(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		pending, err := store.FetchPendingOutbox(ctx, tx, r.batch)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		msgs := make([]Message, len(pending))
		ids := make([]int64, len(pending))
		for i, ev := range pending {
			msgs[i] = Message{EventID: ev.EventID, Topic: ev.Topic, Key: ev.Key, Value: ev.Payload}
			ids[i] = ev.ID
		}

		if err := r.pub.Publish(ctx, msgs...); err != nil {
			return err
		}
		if err := store.MarkOutboxSent(ctx, tx, ids); err != nil {
			return err
		}

		sent = len(pending)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if sent > 0 {
		r.published(sent)
		r.log.Debug("outbox batch published", zap.Int("count", sent))
	}
	return sent, nil
}
