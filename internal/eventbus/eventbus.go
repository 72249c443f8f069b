package eventbus

import (
	"houndgrip/internal/domain"
	"log"
	"runtime/debug"
	"sync"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventReposLoaded     = domain.EventReposLoaded
	EventSearchStarted   = domain.EventSearchStarted
	EventSearchCompleted = domain.EventSearchCompleted
	EventLoadMoreStarted = domain.EventLoadMoreStarted
	EventError           = domain.EventError
	EventDeleted         = domain.EventDeleted
	EventFiltered        = domain.EventFiltered
	EventConfigReloaded  = domain.EventConfigReloaded
)

// Re-export domain event types
type ReposLoadedEvent = domain.ReposLoadedEvent
type SearchStartedEvent = domain.SearchStartedEvent
type SearchCompletedEvent = domain.SearchCompletedEvent
type LoadMoreStartedEvent = domain.LoadMoreStartedEvent
type ErrorEvent = domain.ErrorEvent
type DeletedEvent = domain.DeletedEvent
type FilteredEvent = domain.FilteredEvent
type ConfigReloadedEvent = domain.ConfigReloadedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	SubscribeAll(handler EventHandler) func()
}

// subscription pairs a handler with the event type it wants ("" means every type)
type subscription struct {
	id        uint64
	eventType EventType
	handler   EventHandler
}

// bus is the concrete implementation of EventBus.
// The subscriber slice is never modified in place: Subscribe and the returned
// unsubscribe funcs install a new slice, so a Publish iterating an older
// snapshot is unaffected.
type bus struct {
	mu     sync.Mutex
	subs   []subscription
	nextID uint64
}

// New creates a new event bus
func New() EventBus {
	return &bus{}
}

// Publish calls every matching handler synchronously, in registration order.
// A panicking handler is recovered and logged; the remaining handlers still run
// and nothing is reported back to the publisher.
func (b *bus) Publish(event DomainEvent) {
	b.mu.Lock()
	snapshot := b.subs
	b.mu.Unlock()

	log.Printf("EventBus: Publishing event %s to %d subscribers", event.Type(), len(snapshot))

	for _, s := range snapshot {
		if s.eventType != "" && s.eventType != event.Type() {
			continue
		}
		b.invoke(s, event)
	}
}

func (b *bus) invoke(s subscription, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
		}
	}()
	s.handler(event)
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	return b.add(eventType, handler)
}

// SubscribeAll subscribes to every event type
func (b *bus) SubscribeAll(handler EventHandler) func() {
	return b.add("", handler)
}

func (b *bus) add(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	subs := make([]subscription, len(b.subs), len(b.subs)+1)
	copy(subs, b.subs)
	b.subs = append(subs, subscription{id: id, eventType: eventType, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id != id {
			continue
		}
		subs := make([]subscription, 0, len(b.subs)-1)
		subs = append(subs, b.subs[:i]...)
		b.subs = append(subs, b.subs[i+1:]...)
		return
	}
}
