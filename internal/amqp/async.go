package amqp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"liquidity/internal/log"
)

const (
	defaultQueueSize = 256
	drainTimeout     = 5 * time.Second
)

var (
	ErrQueueFull       = errors.New("event queue is full")
	ErrPublisherClosed = errors.New("event publisher is closed")
)

// Publisher sends one event and returns once the broker has it.
type Publisher interface {
	PublishEvent(ctx context.Context, event OccurrenceEvent) error
}

// AsyncPublisher queues events in memory and hands them to a Publisher from a
// single goroutine, so callers never wait on the broker. Events are sent in the
// order they were queued. When the queue is full new events are dropped.
type AsyncPublisher struct {
	sender Publisher
	events chan OccurrenceEvent
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsyncPublisher starts the sending goroutine. A queueSize below 1 uses the default.
func NewAsyncPublisher(sender Publisher, queueSize int, logger *slog.Logger) *AsyncPublisher {
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &AsyncPublisher{
		sender: sender,
		events: make(chan OccurrenceEvent, queueSize),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishEvent queues the event without blocking.
func (p *AsyncPublisher) PublishEvent(_ context.Context, event OccurrenceEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- event:
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dropped reports how many events were rejected because the queue was full.
func (p *AsyncPublisher) Dropped() int64 {
	return p.dropped.Load()
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for event := range p.events {
		if err := p.sender.PublishEvent(p.ctx, event); err != nil {
			p.logger.Warn("Failed to deliver occurrence event",
				"event", event.Event,
				log.FieldTemplateID, event.TemplateID,
				log.FieldError, err)
		}
	}
}

// Close stops accepting events, waits up to drainTimeout for queued ones and then
// closes the underlying sender when it is an io.Closer. Calling Close again is a no-op.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
		p.logger.Warn("Dropping undelivered occurrence events", "pending", len(p.events))
		p.cancel()
		<-p.done
	}
	p.cancel()

	if c, ok := p.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
