package sync

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coachly-backend/pkg/localstore"
	"coachly-backend/pkg/metrics"
	"coachly-backend/pkg/sse"
)

const (
	OpHabitUpsert      = "habit_upsert"
	OpHabitDelete      = "habit_delete"
	OpHabitReorder     = "habit_reorder"
	OpCompletionAdd    = "completion_add"
	OpCompletionRemove = "completion_remove"
)

// outboxTable is the mirror table the pending intents themselves live in,
// so unconfirmed writes survive a restart.
const outboxTable = "outbox"

// Intent is one optimistic local mutation awaiting remote confirmation.
type Intent struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Op       string          `json:"op"`
	Table    string          `json:"table"`
	EntityID string          `json:"entity_id"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	Enqueued time.Time       `json:"enqueued"`
}

// RemoteWriter applies an intent to the remote store.
type RemoteWriter interface {
	Apply(intent *Intent) error
}

// Publisher broadcasts confirmed intents to interested consumers.
type Publisher interface {
	Publish(intent *Intent) error
}

// Outbox drains local mutations to the remote store in enqueue order. A
// confirmed intent clears the entity's dirty flag and notifies the user's
// open sessions; an intent that keeps failing is parked and reported.
type Outbox struct {
	store     *localstore.Store
	writer    RemoteWriter
	publisher Publisher
	events    *sse.Manager
	logger    *zap.Logger

	ch          chan *Intent
	quit        chan struct{}
	pending     sync.WaitGroup
	done        sync.WaitGroup
	maxAttempts int
	retryDelay  time.Duration
}

func NewOutbox(store *localstore.Store, writer RemoteWriter, events *sse.Manager, logger *zap.Logger) *Outbox {
	return &Outbox{
		store:       store,
		writer:      writer,
		events:      events,
		logger:      logger,
		ch:          make(chan *Intent, 512),
		quit:        make(chan struct{}),
		maxAttempts: 5,
		retryDelay:  2 * time.Second,
	}
}

// SetPublisher attaches an optional broadcast sink for confirmed intents.
func (o *Outbox) SetPublisher(p Publisher) {
	o.publisher = p
}

// Start launches the drain worker and requeues intents persisted by a
// previous run.
func (o *Outbox) Start() error {
	rows, err := o.store.Query(outboxTable)
	if err != nil {
		return err
	}
	for _, row := range rows {
		var intent Intent
		if err := json.Unmarshal(row.Data, &intent); err != nil {
			o.logger.Warn("dropping unreadable outbox row", zap.String("id", row.ID), zap.Error(err))
			o.store.Delete(outboxTable, row.ID)
			continue
		}
		intent.Attempts = 0
		o.push(&intent)
	}

	o.done.Add(1)
	go o.run()
	return nil
}

// Enqueue persists the intent and queues it for remote delivery.
func (o *Outbox) Enqueue(intent *Intent) error {
	if intent.ID == "" {
		intent.ID = uuid.New().String()
	}
	intent.Enqueued = time.Now()

	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	if err := o.store.Put(outboxTable, intent.ID, data, true); err != nil {
		return err
	}
	o.push(intent)
	return nil
}

func (o *Outbox) push(intent *Intent) {
	o.pending.Add(1)
	metrics.SyncOutboxDepth.Inc()
	o.deliver(intent)
}

func (o *Outbox) deliver(intent *Intent) {
	select {
	case o.ch <- intent:
	default:
		// Queue full; the row is persisted, the next restart picks it up.
		metrics.SyncOutboxDepth.Dec()
		o.pending.Done()
		o.logger.Warn("outbox queue full, deferring intent", zap.String("id", intent.ID))
	}
}

// Flush blocks until every queued intent has been confirmed or parked.
func (o *Outbox) Flush() {
	o.pending.Wait()
}

// Stop drains the queue and stops the worker.
func (o *Outbox) Stop() {
	o.Flush()
	close(o.quit)
	o.done.Wait()
}

func (o *Outbox) run() {
	defer o.done.Done()
	for {
		select {
		case intent := <-o.ch:
			o.process(intent)
		case <-o.quit:
			return
		}
	}
}

func (o *Outbox) process(intent *Intent) {
	defer o.pending.Done()
	defer metrics.SyncOutboxDepth.Dec()

	err := o.writer.Apply(intent)
	if err == nil {
		o.confirm(intent)
		return
	}

	intent.Attempts++
	if intent.Attempts < o.maxAttempts {
		o.logger.Warn("remote write failed, retrying",
			zap.String("op", intent.Op),
			zap.String("entity_id", intent.EntityID),
			zap.Int("attempt", intent.Attempts),
			zap.Error(err))
		// Count the retry before this delivery is marked done so Flush
		// keeps waiting for it.
		o.pending.Add(1)
		metrics.SyncOutboxDepth.Inc()
		time.AfterFunc(o.retryDelay, func() { o.deliver(intent) })
		return
	}

	// Parked: the persisted row stays dirty until the next restart or a
	// manual retry; the user is told their change did not reach the server.
	o.logger.Error("remote write parked after repeated failures",
		zap.String("op", intent.Op),
		zap.String("entity_id", intent.EntityID),
		zap.Error(err))
	o.events.Send(intent.UserID, "sync_failed", map[string]string{
		"intent_id": intent.ID,
		"op":        intent.Op,
		"entity_id": intent.EntityID,
	})
}

func (o *Outbox) confirm(intent *Intent) {
	if intent.Table != "" {
		if err := o.store.ClearDirty(intent.Table, intent.EntityID); err != nil {
			o.logger.Warn("clearing dirty flag", zap.String("entity_id", intent.EntityID), zap.Error(err))
		}
	}
	if err := o.store.Delete(outboxTable, intent.ID); err != nil {
		o.logger.Warn("removing confirmed intent", zap.String("id", intent.ID), zap.Error(err))
	}

	o.events.Send(intent.UserID, "sync_confirmed", map[string]string{
		"intent_id": intent.ID,
		"op":        intent.Op,
		"entity_id": intent.EntityID,
	})

	if o.publisher != nil {
		if err := o.publisher.Publish(intent); err != nil {
			o.logger.Warn("publishing confirmed intent", zap.String("id", intent.ID), zap.Error(err))
		}
	}
}
