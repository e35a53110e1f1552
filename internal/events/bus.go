// Package events provides an in-memory bus for resource-change events.
// The gateway publishes after successful mutations; websocket clients and
// tests subscribe.
package events

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var ErrBusClosed = errors.New("event bus is closed")

// EventType identifies what changed.
type EventType string

const (
	EventTasklistCreated EventType = "tasklist.created"
	EventTasklistRevised EventType = "tasklist.revised"
	EventTasklistDeleted EventType = "tasklist.deleted"

	EventTaskCreated EventType = "task.created"
	EventTaskRevised EventType = "task.revised"
	EventTaskDeleted EventType = "task.deleted"
)

// Event is one resource change. Owner scopes the event to the identity
// whose records changed; List and Task name the affected records.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Owner     string    `json:"owner"`
	List      string    `json:"list,omitempty"`
	Task      string    `json:"task,omitempty"`
}

var eventIDCounter uint64

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, owner, list, task string) Event {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return Event{
		ID:        fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq),
		Type:      eventType,
		Timestamp: time.Now(),
		Owner:     owner,
		List:      list,
		Task:      task,
	}
}

// Subscriber is a function that receives events.
type Subscriber func(Event)

type subscription struct {
	eventTypes []EventType
	handler    Subscriber
}

// Bus is an in-memory event bus with a bounded history.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	nextID      int
	eventChan   chan Event
	history     *ring
	closed      bool
	done        chan struct{}
}

// NewBus creates a bus whose channel and history hold bufferSize events.
func NewBus(bufferSize int) *Bus {
	b := &Bus{
		subscribers: make(map[int]*subscription),
		eventChan:   make(chan Event, bufferSize),
		history:     newRing(bufferSize),
		done:        make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	for {
		select {
		case event := <-b.eventChan:
			b.history.add(event)
			b.notify(event)
		case <-b.done:
			return
		}
	}
}

func (b *Bus) notify(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if sub.matches(event) {
			go sub.handler(event)
		}
	}
}

func (s *subscription) matches(event Event) bool {
	if len(s.eventTypes) == 0 {
		return true
	}
	for _, t := range s.eventTypes {
		if t == event.Type {
			return true
		}
	}
	return false
}

// Publish sends an event to the bus. Drops the event rather than blocking
// when the buffer is full or the bus is closed.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// Subscribe registers a handler for the given event types (all types when
// none are listed). Returns an unsubscribe function.
func (b *Bus) Subscribe(handler Subscriber, eventTypes ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = &subscription{eventTypes: eventTypes, handler: handler}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// SubscribeChan returns a channel that receives matching events. Slow
// consumers lose events instead of stalling the bus.
func (b *Bus) SubscribeChan(bufSize int, eventTypes ...EventType) (<-chan Event, func()) {
	ch := make(chan Event, bufSize)

	unsubscribe := b.Subscribe(func(e Event) {
		select {
		case ch <- e:
		default:
		}
	}, eventTypes...)

	return ch, func() {
		unsubscribe()
		close(ch)
	}
}

// History returns up to limit recent events, oldest first.
func (b *Bus) History(limit int) []Event {
	return b.history.get(limit)
}

// Close shuts down the bus; further publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// ring is a fixed-size circular buffer of recent events.
type ring struct {
	mu     sync.RWMutex
	events []Event
	pos    int
	count  int
}

func newRing(size int) *ring {
	if size < 1 {
		size = 1
	}
	return &ring{events: make([]Event, size)}
}

func (r *ring) add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.pos] = event
	r.pos = (r.pos + 1) % len(r.events)
	if r.count < len(r.events) {
		r.count++
	}
}

func (r *ring) get(n int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.count {
		n = r.count
	}

	out := make([]Event, 0, n)
	start := r.pos - n
	if start < 0 {
		start += len(r.events)
	}
	for i := 0; i < n; i++ {
		out = append(out, r.events[(start+i)%len(r.events)])
	}
	return out
}
