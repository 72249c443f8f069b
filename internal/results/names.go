package results

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"houndgrip/internal/domain"
	"houndgrip/internal/query"
	"houndgrip/internal/urls"
)

// suggestThreshold is the minimum similarity for a repo to be offered as a correction
const suggestThreshold = 0.5

// ValidRepos keeps the known repos from repos, first occurrence only, in input order
func (m *Model) ValidRepos(repos []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(repos))
	valid := make([]string, 0, len(repos))
	for _, r := range repos {
		if _, ok := m.repos[r]; ok && !seen[r] {
			valid = append(valid, r)
		}
		seen[r] = true
	}
	return valid
}

// SelectRepos validates a repo selection. Picking every known repo is the
// same as picking none, which the server reads as all repositories.
func (m *Model) SelectRepos(repos []string) []string {
	valid := m.ValidRepos(repos)
	if len(valid) == m.RepoCount() {
		return nil
	}
	return valid
}

// RepoDisplayName renders a repo as "parent / name" from the last two
// segments of its url, falling back to the bare name or the repo id.
func (m *Model) RepoDisplayName(repo string) string {
	m.mu.Lock()
	info, ok := m.repos[repo]
	m.mu.Unlock()
	if !ok {
		return repo
	}

	u := info.URL
	ax := strings.LastIndex(u, "/")
	if ax < 0 {
		return repo
	}
	name := strings.TrimSuffix(u[ax+1:], ".git")

	bx := strings.LastIndex(u[:ax], "/")
	if bx < 0 {
		return name
	}
	return u[bx+1:ax] + " / " + name
}

// ResolveFileURL builds a browse link for path in repo; line <= 0 links to the file
func (m *Model) ResolveFileURL(repo, path string, line int, rev string) (string, error) {
	m.mu.Lock()
	info, ok := m.repos[repo]
	m.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRepo, repo)
	}
	return urls.RepoURL(info, path, line, rev), nil
}

// Suggest lists known repo ids resembling name, most similar first
func (m *Model) Suggest(name string, limit int) []string {
	type scored struct {
		id    string
		score float32
	}

	m.mu.Lock()
	candidates := make([]scored, 0, len(m.repos))
	for id := range m.repos {
		s, err := edlib.StringsSimilarity(strings.ToLower(name), strings.ToLower(id), edlib.Levenshtein)
		if err != nil || s < suggestThreshold {
			continue
		}
		candidates = append(candidates, scored{id: id, score: s})
	}
	m.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	out := make([]string, 0, limit)
	for i := 0; i < len(candidates) && i < limit; i++ {
		out = append(out, candidates[i].id)
	}
	return out
}

// Repos returns a copy of the repository catalog
func (m *Model) Repos() map[string]domain.RepoInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRepos(m.repos)
}

// RepoIDs returns the known repo ids in sorted order
func (m *Model) RepoIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.repos))
	for id := range m.repos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RepoCount is the number of known repositories
func (m *Model) RepoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.repos)
}

// Results returns the ordered results of the current search
func (m *Model) Results() []*domain.RepoResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// ResultFor returns the result for one repo
func (m *Model) ResultFor(repo string) (*domain.RepoResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byRepo[repo]
	return r, ok
}

// Params returns the parameters of the current search
func (m *Model) Params() query.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.params
	p.Repos = append([]string(nil), m.params.Repos...)
	return p
}

// Stats returns the statistics of the last completed search, if any
func (m *Model) Stats() (domain.Stats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return domain.Stats{}, false
	}
	return *m.stats, true
}

func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ActiveFilter is the filter most recently applied
func (m *Model) ActiveFilter() Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}
