package ui

import (
	"log"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"houndgrip/internal/eventbus"
)

const eventBufferSize = 256

// Forward relays every bus event to send (normally tea.Program.Send) from a
// single goroutine, so the UI sees events in publish order without the
// publisher waiting on the render loop. When the buffer is full, progress
// events are dropped, but events that end an operation wait for room.
// The returned func stops forwarding and waits for the relay goroutine to exit.
func Forward(bus eventbus.EventBus, send func(tea.Msg)) func() {
	return forward(bus, send, eventBufferSize)
}

// mustDeliver reports events the UI waits on to leave a busy state
func mustDeliver(e eventbus.DomainEvent) bool {
	switch e.Type() {
	case eventbus.EventReposLoaded, eventbus.EventSearchCompleted, eventbus.EventError, eventbus.EventDeleted:
		return true
	}
	return false
}

func forward(bus eventbus.EventBus, send func(tea.Msg), size int) func() {
	var (
		mu     sync.Mutex
		closed bool
	)
	eventChan := make(chan eventbus.DomainEvent, size)

	unsubscribe := bus.SubscribeAll(func(e eventbus.DomainEvent) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		if mustDeliver(e) {
			eventChan <- e
			return
		}
		select {
		case eventChan <- e:
		default:
			// Channel full, drop event
			log.Printf("UI: event channel full, dropping %s", e.Type())
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range eventChan {
			send(EventMsg{Event: event})
		}
	}()

	return func() {
		unsubscribe()
		mu.Lock()
		if !closed {
			closed = true
			close(eventChan)
		}
		mu.Unlock()
		<-done
	}
}
