package ui

import (
	"houndgrip/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// opErrMsg reports a failed operation that produced no Error event
type opErrMsg struct {
	err error
}

// statusMsg sets a transient status line
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status line unless a newer message replaced it
type clearStatusMsg struct {
	id int
}

// pagerMsg reports the end of a pager session
type pagerMsg struct {
	what string
	err  error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
