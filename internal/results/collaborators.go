package results

import (
	"context"
	"net/url"
	"time"

	"houndgrip/internal/domain"
	"houndgrip/internal/query"
)

// Backend is the search service boundary
type Backend interface {
	Search(ctx context.Context, params url.Values) (*domain.SearchResponse, error)
	Repos(ctx context.Context) (map[string]domain.RepoInfo, error)
}

// Preferences are user flags read, never written, by the model
type Preferences interface {
	AutoHideAdvanced() bool
	IgnoreCase() bool
}

// Clock supplies the time used for round-trip statistics
type Clock interface {
	Now() time.Time
}

// ParamsSource yields the parameters present when repos finish loading,
// for example a query string given on the command line
type ParamsSource func() query.Params

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type noPreferences struct{}

func (noPreferences) AutoHideAdvanced() bool { return false }
func (noPreferences) IgnoreCase() bool       { return false }

// Option configures a Model
type Option func(*Model)

// WithPreferences sets the preference reader
func WithPreferences(p Preferences) Option {
	return func(m *Model) { m.prefs = p }
}

// WithClock sets the clock
func WithClock(c Clock) Option {
	return func(m *Model) { m.clock = c }
}

// WithParamsSource sets where LoadRepos looks for an initial query
func WithParamsSource(src ParamsSource) Option {
	return func(m *Model) { m.paramsSource = src }
}
