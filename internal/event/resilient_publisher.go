package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/logger"
)

type retryEntry struct {
	event     Event
	attempt   int
	lastErr   error
	notBefore time.Time
}

// ResilientPublisher wraps an event Bus with bounded retries and a dead-letter file.
// Callers never see publish failures.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter
	shutdown   chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// NewResilientPublisher starts the retry worker
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dead letter file: %w", err)
	}

	p := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.retryWorker()

	return p, nil
}

// PublishWithRetry publishes once and queues the event for background retries on failure
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, evt Event) {
	err := p.bus.Publish(ctx, evt)
	if err == nil {
		return
	}

	log := logger.FromContext(ctx)

	select {
	case <-p.shutdown:
		log.Warn(LogMsgEventDroppedShutdown, "event_type", evt.Type, "error", err)
		p.writeDeadLetter(evt, 1, err)
		return
	default:
	}

	log.Warn(LogMsgEventPublishFailed, "event_type", evt.Type, "error", err)

	entry := retryEntry{
		event:     evt,
		attempt:   1,
		lastErr:   err,
		notBefore: time.Now().Add(CalculateRetryDelay(p.retryDelay, 1)),
	}
	select {
	case p.retryQueue <- entry:
	default:
		log.Error(LogMsgRetryQueueFull, "event_type", evt.Type)
		p.writeDeadLetter(evt, 1, err)
	}
}

// Publish satisfies Bus; failures are retried in the background
func (p *ResilientPublisher) Publish(ctx context.Context, evt Event) error {
	p.PublishWithRetry(ctx, evt)
	return nil
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.bus.Subscribe(eventType, handler)
}

func (p *ResilientPublisher) retryWorker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.shutdown:
			p.drain()
			return
		case entry := <-p.retryQueue:
			if wait := time.Until(entry.notBefore); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-p.shutdown:
					timer.Stop()
					p.finalAttempt(entry)
					p.drain()
					return
				}
			}
			p.retry(entry)
		}
	}
}

func (p *ResilientPublisher) retry(entry retryEntry) {
	log := logger.FromContext(context.Background())

	err := p.bus.Publish(context.Background(), entry.event)
	if err == nil {
		log.Info(LogMsgEventRetrySucceeded, "event_type", entry.event.Type, "attempt", entry.attempt)
		return
	}

	if entry.attempt >= p.maxRetries {
		log.Error(LogMsgEventRetryExhausted, "event_type", entry.event.Type, "attempts", entry.attempt+1)
		p.writeDeadLetter(entry.event, entry.attempt+1, err)
		return
	}

	entry.attempt++
	entry.lastErr = err
	entry.notBefore = time.Now().Add(CalculateRetryDelay(p.retryDelay, entry.attempt))
	log.Warn(LogMsgEventRetryFailed, "event_type", entry.event.Type, "attempt", entry.attempt, "error", err)

	select {
	case p.retryQueue <- entry:
	default:
		p.writeDeadLetter(entry.event, entry.attempt, err)
	}
}

// finalAttempt tries once more without waiting and dead-letters on failure
func (p *ResilientPublisher) finalAttempt(entry retryEntry) {
	if err := p.bus.Publish(context.Background(), entry.event); err != nil {
		p.writeDeadLetter(entry.event, entry.attempt+1, err)
	}
}

func (p *ResilientPublisher) drain() {
	drained := 0
	for {
		select {
		case entry := <-p.retryQueue:
			p.finalAttempt(entry)
			drained++
		default:
			if drained > 0 {
				logger.FromContext(context.Background()).Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

func (p *ResilientPublisher) writeDeadLetter(evt Event, attempts int, err error) {
	if werr := p.deadLetter.Write(evt, attempts, err); werr != nil {
		logger.FromContext(context.Background()).Error(LogMsgDeadLetterWriteFailed, "event_type", evt.Type, "error", werr)
	}
}

// Shutdown stops the retry worker, attempting every queued event once more
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.deadLetter.Close()
	case <-ctx.Done():
		logger.FromContext(ctx).Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}
