package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

const defaultDeliveryTimeout = 5 * time.Second

// EventSink receives events off the delivery queue.
type EventSink interface {
	Name() string
	Handle(ctx context.Context, evt events.Event) error
}

// NotificationWorker delivers store events to sinks in the background so a
// slow or unavailable sink never blocks a commit.
type NotificationWorker struct {
	logger  *zap.Logger
	sinks   []EventSink
	queue   chan events.Event
	timeout time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	done    chan struct{}
}

// NewNotificationWorker builds a worker with a queue of the given size.
func NewNotificationWorker(logger *zap.Logger, buffer int, sinks ...EventSink) *NotificationWorker {
	if buffer <= 0 {
		buffer = 1
	}
	return &NotificationWorker{
		logger:  logger,
		sinks:   sinks,
		queue:   make(chan events.Event, buffer),
		timeout: defaultDeliveryTimeout,
		done:    make(chan struct{}),
	}
}

// Start launches the delivery loop. It returns immediately.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.run(ctx)
}

// Enqueue hands an event to the worker without blocking. It reports false
// when the queue is full or the worker has stopped.
func (w *NotificationWorker) Enqueue(evt events.Event) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- evt:
		return true
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", string(evt.Type)))
		return false
	}
}

// Stop closes the queue and waits for queued events to drain.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	started := w.started
	close(w.queue)
	w.mu.Unlock()

	if started {
		<-w.done
	}
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case evt, ok := <-w.queue:
			if !ok {
				return
			}
			w.deliver(ctx, evt)
		case <-ctx.Done():
			w.logger.Info("notification worker stopping", zap.Error(ctx.Err()))
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, evt events.Event) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err := sink.Handle(sinkCtx, evt)
		cancel()
		if err != nil {
			w.logger.Warn("notification sink failed",
				zap.String("sink", sink.Name()),
				zap.String("event_id", evt.ID),
				zap.String("event_type", string(evt.Type)),
				zap.Error(err))
		}
	}
}
