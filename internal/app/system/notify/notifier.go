// internal/app/system/notify/notifier.go
package notify

import (
	"context"
	"sync"
	"time"

	notificationstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/notifications"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Message is one notification to deliver. Data carries the free-form
// payload (event id, event title, actor ids/names). CorrelationID is
// assigned on enqueue when empty; SendAll stamps one id across the whole
// fan-out so a broadcast's documents can be grouped later.
type Message struct {
	UserID        primitive.ObjectID
	Type          string
	Title         string
	Message       string
	Data          map[string]string
	CorrelationID string
}

// Notifier queues notifications onto a background dispatcher instead of
// writing inline. Send never blocks the calling operation on store latency
// and never returns an error: delivery is best-effort with retry, and a
// failed delivery must not roll back the membership mutation that caused it.
type Notifier struct {
	store *notificationstore.Store
	log   *zap.Logger

	queue    chan Message
	stopCh   chan struct{}
	wg       sync.WaitGroup
	retries  int
	backoff  time.Duration
	stopOnce sync.Once
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithQueueSize sets the dispatch queue capacity.
func WithQueueSize(n int) Option {
	return func(d *Notifier) { d.queue = make(chan Message, n) }
}

// WithRetry sets the per-message retry count and base backoff.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(d *Notifier) { d.retries, d.backoff = retries, backoff }
}

// New creates a Notifier. Call Start before Send and Stop on shutdown.
func New(store *notificationstore.Store, logger *zap.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		store:   store,
		log:     logger,
		queue:   make(chan Message, 256),
		stopCh:  make(chan struct{}),
		retries: 3,
		backoff: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Start launches the dispatcher goroutine.
func (n *Notifier) Start() {
	n.wg.Add(1)
	go n.run()
	n.log.Info("notification dispatcher started", zap.Int("queue_size", cap(n.queue)))
}

// Stop drains queued messages, then waits for the dispatcher to exit.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() {
		close(n.stopCh)
	})
	n.wg.Wait()
	n.log.Info("notification dispatcher stopped")
}

// Send enqueues a message. If the queue is full the message is dropped with
// a log entry; notifications are best-effort by contract.
func (n *Notifier) Send(ctx context.Context, msg Message) {
	if n == nil {
		return
	}
	if msg.CorrelationID == "" {
		msg.CorrelationID = uuid.NewString()
	}
	select {
	case n.queue <- msg:
	default:
		n.log.Warn("notification queue full, dropping message",
			zap.String("type", msg.Type),
			zap.String("user_id", msg.UserID.Hex()))
	}
}

// SendAll enqueues one message per recipient. Every copy carries the same
// correlation id. Used by the new-event broadcast.
func (n *Notifier) SendAll(ctx context.Context, userIDs []primitive.ObjectID, msg Message) {
	if n == nil {
		return
	}
	if msg.CorrelationID == "" {
		msg.CorrelationID = uuid.NewString()
	}
	for _, uid := range userIDs {
		m := msg
		m.UserID = uid
		n.Send(ctx, m)
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case msg := <-n.queue:
			n.deliver(msg)
		case <-n.stopCh:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case msg := <-n.queue:
					n.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) deliver(msg Message) {
	doc := models.Notification{
		UserID:        msg.UserID,
		Type:          msg.Type,
		Title:         msg.Title,
		Message:       msg.Message,
		Data:          msg.Data,
		CorrelationID: msg.CorrelationID,
	}

	var err error
	for attempt := 0; attempt <= n.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(n.backoff * time.Duration(attempt))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err = n.store.Insert(ctx, doc)
		cancel()
		if err == nil {
			return
		}
	}

	n.log.Error("notification delivery failed",
		zap.Error(err),
		zap.String("type", msg.Type),
		zap.String("user_id", msg.UserID.Hex()))
}
