package pipeline

import (
	"context"
	"sync"
	"time"
)

// EventType enumerates the lifecycle events elements publish.
type EventType int

const (
	EventError EventType = iota
	EventWarning
	// EventChunkEmitted fires for every sentence chunk leaving the
	// segmenter. Payload is the chunk text.
	EventChunkEmitted
	// EventStreamFlushed fires when a stream is closed and its remainder
	// emitted.
	EventStreamFlushed
	// EventStreamAborted fires when a stream is cancelled and its buffer
	// discarded.
	EventStreamAborted
)

// Event is one bus notification.
type Event struct {
	Type      EventType
	SessionID string
	Timestamp time.Time
	Payload   interface{}
}

// Bus is a publish/subscribe channel for pipeline events. Delivery is
// non-blocking: a subscriber with a full channel misses the event rather
// than stalling the pipeline.
type Bus interface {
	Subscribe(eventType EventType, ch chan Event)
	Unsubscribe(eventType EventType, ch chan Event)
	// Publish delivers the event to all subscribers. Returns false if any
	// subscriber's channel was full and the event was dropped for it.
	Publish(event Event) bool
	Start(ctx context.Context) error
	Stop()
}

type eventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]chan Event
}

var _ Bus = (*eventBus)(nil)

// NewEventBus creates an empty event bus.
func NewEventBus() Bus {
	return &eventBus{
		subscribers: make(map[EventType][]chan Event),
	}
}

func (b *eventBus) Subscribe(eventType EventType, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
}

func (b *eventBus) Unsubscribe(eventType EventType, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[eventType]
	for i, sub := range subs {
		if sub == ch {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *eventBus) Publish(event Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := true
	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
			delivered = false
		}
	}
	return delivered
}

// Start and Stop exist to satisfy the element lifecycle; the bus itself is
// passive and delivers synchronously from Publish.
func (b *eventBus) Start(ctx context.Context) error {
	return nil
}

func (b *eventBus) Stop() {}
