package domain

import "houndgrip/internal/query"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventReposLoaded     EventType = "ReposLoaded"
	EventSearchStarted   EventType = "SearchStarted"
	EventSearchCompleted EventType = "SearchCompleted"
	EventLoadMoreStarted EventType = "LoadMoreStarted"
	EventError           EventType = "Error"
	EventDeleted         EventType = "Deleted"
	EventFiltered        EventType = "Filtered"
	EventConfigReloaded  EventType = "ConfigReloaded"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ReposLoadedEvent is emitted once the repository catalog is available
type ReposLoadedEvent struct {
	Repos map[string]RepoInfo
}

func (e ReposLoadedEvent) Type() EventType { return EventReposLoaded }

// SearchStartedEvent is emitted before a search request is issued
type SearchStartedEvent struct {
	Params query.Params
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchCompletedEvent carries a freshly built result set
type SearchCompletedEvent struct {
	Results []*RepoResult
	Stats   Stats
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// LoadMoreStartedEvent is emitted before a page of additional files is requested
type LoadMoreStartedEvent struct {
	Repo   string
	Loaded int
	Needed int
	ToLoad int
}

func (e LoadMoreStartedEvent) Type() EventType { return EventLoadMoreStarted }

// ErrorEvent is emitted when a request is rejected or fails
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// DeletedEvent carries the full result set after a local file or repo removal
type DeletedEvent struct {
	Results []*RepoResult
}

func (e DeletedEvent) Type() EventType { return EventDeleted }

// FilteredEvent carries a derived result set; the authoritative set is unchanged
type FilteredEvent struct {
	Results []*RepoResult
	Include string
	Exclude string
}

func (e FilteredEvent) Type() EventType { return EventFiltered }

// ConfigReloadedEvent is emitted when preferences change on disk
type ConfigReloadedEvent struct {
	Path string
}

func (e ConfigReloadedEvent) Type() EventType { return EventConfigReloaded }
