// Package results owns search results and every mutation to them: search,
// paging, local deletion and filtering. Consumers observe it through the
// event bus.
package results

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"houndgrip/internal/client"
	"houndgrip/internal/domain"
	"houndgrip/internal/eventbus"
	"houndgrip/internal/query"
)

// MaxPageSize is the most files requested by a single LoadMore
const MaxPageSize = 2000

// ServerBrokeMessage is reported for any failure that is not a server rejection
const ServerBrokeMessage = "The server broke down"

var (
	ErrUnknownRepo       = errors.New("unknown repository")
	ErrNothingToLoad     = errors.New("all files already loaded")
	ErrLoadInProgress    = errors.New("load already in progress")
	ErrStale             = errors.New("response superseded by a newer search")
	ErrReposNotAvailable = errors.New("repository catalog unavailable")
)

// State is the model's position in its lifecycle
type State int

const (
	StateIdle State = iota
	StateSearching
	StateResults
	StateError
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateResults:
		return "results"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Model is the single owner of the result set and the current query.
// Methods may be called from several goroutines; state is guarded by mu,
// while requests and event publishing happen without holding it.
// RepoResult values are replaced on change, never edited, so result slices
// handed to subscribers stay valid.
type Model struct {
	backend      Backend
	bus          eventbus.EventBus
	prefs        Preferences
	clock        Clock
	paramsSource ParamsSource

	mu      sync.Mutex
	repos   map[string]domain.RepoInfo
	params  query.Params
	results []*domain.RepoResult
	byRepo  map[string]*domain.RepoResult
	stats   *domain.Stats
	state   State
	filter  Filter
	seq     uint64          // sequence number of the latest issued search
	loading map[string]bool // repos with a page request in flight

	// the search whose results are installed; differs from seq while a newer search is in flight
	resultSeq    uint64
	resultParams query.Params
}

// New creates a model that talks to backend and publishes on bus
func New(backend Backend, bus eventbus.EventBus, opts ...Option) *Model {
	m := &Model{
		backend: backend,
		bus:     bus,
		prefs:   noPreferences{},
		clock:   systemClock{},
		repos:   make(map[string]domain.RepoInfo),
		byRepo:  make(map[string]*domain.RepoResult),
		loading: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadRepos fetches the repository catalog and publishes ReposLoaded.
// If the params source carries a query, a search is started right away.
func (m *Model) LoadRepos(ctx context.Context) error {
	repos, err := m.backend.Repos(ctx)
	if err != nil {
		log.Printf("Results: loading repos failed: %v", err)
		m.bus.Publish(domain.ErrorEvent{Message: ServerBrokeMessage, Err: err})
		return fmt.Errorf("%w: %v", ErrReposNotAvailable, err)
	}
	if repos == nil {
		repos = make(map[string]domain.RepoInfo)
	}

	m.mu.Lock()
	m.repos = repos
	m.mu.Unlock()

	log.Printf("Results: loaded %d repos", len(repos))
	m.bus.Publish(domain.ReposLoadedEvent{Repos: copyRepos(repos)})

	if m.paramsSource == nil {
		return nil
	}
	params := m.ApplyPreferences(m.paramsSource())
	if params.Query == "" {
		return nil
	}
	params.Repos = m.ValidRepos(params.Repos)
	return m.Search(ctx, params)
}

// ApplyPreferences turns on ignore-case when the user prefers it by default
func (m *Model) ApplyPreferences(p query.Params) query.Params {
	p.IgnoreCase = p.IgnoreCase || m.prefs.IgnoreCase()
	return p
}

// Search runs a new search. SearchStarted is published before anything else.
// An empty query completes immediately with no results and no request.
// Only the most recently issued search may update the model; older
// responses are dropped and ErrStale is returned.
func (m *Model) Search(ctx context.Context, params query.Params) error {
	m.bus.Publish(domain.SearchStartedEvent{Params: params})
	startedAt := m.clock.Now()
	params = query.Normalize(params)

	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.params = params

	if params.Query == "" {
		m.results = nil
		m.byRepo = make(map[string]*domain.RepoResult)
		m.stats = nil
		m.state = StateResults
		m.resultSeq = seq
		m.resultParams = params
		m.mu.Unlock()
		m.bus.Publish(domain.SearchCompletedEvent{})
		return nil
	}
	m.state = StateSearching
	m.mu.Unlock()

	resp, err := m.backend.Search(ctx, params.Values())
	if err != nil {
		return m.fail(seq, err, true)
	}

	results := make([]*domain.RepoResult, 0, len(resp.Results))
	for repo, res := range resp.Results {
		if res == nil {
			continue
		}
		results = append(results, &domain.RepoResult{
			Repo:           repo,
			Rev:            res.Revision,
			Matches:        res.Matches,
			FilesWithMatch: res.FilesWithMatch,
		})
	}
	sortResults(results)

	stats := domain.Stats{Total: m.clock.Now().Sub(startedAt)}
	if resp.Stats != nil {
		stats.Server = time.Duration(resp.Stats.Duration) * time.Millisecond
		stats.FilesOpened = resp.Stats.FilesOpened
	}

	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		log.Printf("Results: dropping stale response for search #%d (latest #%d)", seq, m.seq)
		return ErrStale
	}
	m.results = results
	m.byRepo = indexResults(results)
	m.stats = &stats
	m.state = StateResults
	m.resultSeq = seq
	m.resultParams = params
	snapshot := m.snapshot()
	m.mu.Unlock()

	log.Printf("Results: search #%d %q returned %d repos in %s", seq, params.Query, len(results), stats.Total)
	m.bus.Publish(domain.SearchCompletedEvent{Results: snapshot, Stats: stats})
	return nil
}

// LoadMore requests the next page of files for repo, appends them to that
// repo only, and then re-applies filter so paged-in files obey it too.
// The Filtered event replaces a load-more completion event.
// Pages belong to the search that produced the loaded results: while a newer
// search is in flight LoadMore returns ErrStale, and a page arriving after a
// newer search was issued is dropped.
func (m *Model) LoadMore(ctx context.Context, repo string, filter Filter) error {
	m.mu.Lock()
	if m.resultSeq != m.seq {
		m.mu.Unlock()
		return ErrStale
	}
	res, ok := m.byRepo[repo]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRepo, repo)
	}
	if !res.HasMore() {
		m.mu.Unlock()
		return ErrNothingToLoad
	}
	if m.loading[repo] {
		m.mu.Unlock()
		return ErrLoadInProgress
	}

	numLoaded := len(res.Matches)
	numNeeded := res.FilesWithMatch - numLoaded
	numToLoad := min(MaxPageSize, numNeeded)

	params := m.resultParams
	params.Repos = []string{repo}
	params.Range = query.Range{Start: numLoaded, End: numToLoad, Open: numToLoad == numNeeded}

	seq := m.resultSeq
	m.loading[repo] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.loading, repo)
		m.mu.Unlock()
	}()

	m.bus.Publish(domain.LoadMoreStartedEvent{
		Repo:   repo,
		Loaded: numLoaded,
		Needed: numNeeded,
		ToLoad: numToLoad,
	})

	resp, err := m.backend.Search(ctx, params.Values())
	if err != nil {
		return m.fail(seq, err, false)
	}

	m.mu.Lock()
	if seq != m.seq || seq != m.resultSeq {
		m.mu.Unlock()
		log.Printf("Results: dropping stale page for %s", repo)
		return ErrStale
	}
	cur, ok := m.byRepo[repo]
	if !ok {
		// deleted while the page was in flight
		m.mu.Unlock()
		return nil
	}
	if page := resp.Results[repo]; page != nil {
		updated := cur.Clone()
		updated.Matches = append(updated.Matches, page.Matches...)
		m.replace(updated)
		log.Printf("Results: loaded %d more files for %s", len(page.Matches), repo)
	}
	m.mu.Unlock()

	_, err = m.Filter(filter)
	return err
}

// DeleteFile removes the first file named filename from repo's results and
// lowers its server count by one. Missing files or repos are ignored.
// Deleted is published either way.
func (m *Model) DeleteFile(filename, repo string) {
	m.mu.Lock()
	if res, ok := m.byRepo[repo]; ok {
		for i, fm := range res.Matches {
			if fm.Filename != filename {
				continue
			}
			updated := *res
			updated.Matches = make([]domain.FileMatch, 0, len(res.Matches)-1)
			updated.Matches = append(updated.Matches, res.Matches[:i]...)
			updated.Matches = append(updated.Matches, res.Matches[i+1:]...)
			updated.FilesWithMatch--
			m.replace(&updated)
			break
		}
	}
	snapshot := m.snapshot()
	m.mu.Unlock()

	m.bus.Publish(domain.DeletedEvent{Results: snapshot})
}

// DeleteRepo removes repo from the results. Missing repos are ignored.
// Deleted is published either way.
func (m *Model) DeleteRepo(repo string) {
	m.mu.Lock()
	for i, res := range m.results {
		if res.Repo != repo {
			continue
		}
		results := make([]*domain.RepoResult, 0, len(m.results)-1)
		results = append(results, m.results[:i]...)
		m.results = append(results, m.results[i+1:]...)
		delete(m.byRepo, repo)
		break
	}
	snapshot := m.snapshot()
	m.mu.Unlock()

	m.bus.Publish(domain.DeletedEvent{Results: snapshot})
}

// Filter publishes a derived result set keeping files whose path matches
// Include and dropping those matching Exclude. The authoritative results are
// left untouched, so repeated calls always project from current data.
// An invalid pattern publishes Error instead.
func (m *Model) Filter(f Filter) ([]*domain.RepoResult, error) {
	cf, err := f.compile()
	if err != nil {
		m.bus.Publish(domain.ErrorEvent{Message: err.Error(), Err: err})
		return nil, err
	}

	m.mu.Lock()
	m.filter = f
	src := m.snapshot()
	m.mu.Unlock()

	filtered := cf.apply(src)
	m.bus.Publish(domain.FilteredEvent{Results: filtered, Include: f.Include, Exclude: f.Exclude})
	return filtered, nil
}

// fail reports a failed request unless a newer search made it irrelevant.
// Searches move the model to the error state; failed pages leave results as they are.
func (m *Model) fail(seq uint64, err error, isSearch bool) error {
	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		log.Printf("Results: ignoring error from superseded request: %v", err)
		return ErrStale
	}
	if isSearch {
		m.state = StateError
	}
	m.mu.Unlock()

	msg := ServerBrokeMessage
	var serr *client.ServerError
	if errors.As(err, &serr) {
		msg = serr.Message
	}
	log.Printf("Results: request failed: %v", err)
	m.bus.Publish(domain.ErrorEvent{Message: msg, Err: err})
	return err
}

// replace swaps in an updated RepoResult in both the ordered list and the index. Caller holds mu.
func (m *Model) replace(updated *domain.RepoResult) {
	for i, r := range m.results {
		if r.Repo == updated.Repo {
			results := make([]*domain.RepoResult, len(m.results))
			copy(results, m.results)
			results[i] = updated
			m.results = results
			break
		}
	}
	m.byRepo[updated.Repo] = updated
}

// snapshot copies the ordered result list. Caller holds mu.
func (m *Model) snapshot() []*domain.RepoResult {
	if m.results == nil {
		return nil
	}
	out := make([]*domain.RepoResult, len(m.results))
	copy(out, m.results)
	return out
}

// sortResults orders by loaded file count, descending, then repo id
func sortResults(results []*domain.RepoResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if len(a.Matches) != len(b.Matches) {
			return len(a.Matches) > len(b.Matches)
		}
		return a.Repo < b.Repo
	})
}

func indexResults(results []*domain.RepoResult) map[string]*domain.RepoResult {
	byRepo := make(map[string]*domain.RepoResult, len(results))
	for _, r := range results {
		byRepo[r.Repo] = r
	}
	return byRepo
}

func copyRepos(repos map[string]domain.RepoInfo) map[string]domain.RepoInfo {
	out := make(map[string]domain.RepoInfo, len(repos))
	for k, v := range repos {
		out[k] = v
	}
	return out
}
