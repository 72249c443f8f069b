package main

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houndgrip/internal/domain"
	"houndgrip/internal/eventbus"
	"houndgrip/internal/query"
	"houndgrip/internal/results"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// pagingBackend serves total files per repo, honouring the rng window
type pagingBackend struct {
	mu    sync.Mutex
	total map[string]int
}

func (b *pagingBackend) Repos(context.Context) (map[string]domain.RepoInfo, error) {
	return map[string]domain.RepoInfo{
		"frontend": {ID: "frontend", URL: "https://github.com/acme/frontend"},
		"backend":  {ID: "backend", URL: "https://github.com/acme/backend.git"},
	}, nil
}

func (b *pagingBackend) Search(_ context.Context, v url.Values) (*domain.SearchResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rng, err := query.ParseRange(v.Get("rng"))
	if err != nil {
		return nil, err
	}
	repos := query.ParseRepos(v.Get("repos"))
	if repos == nil {
		repos = []string{"frontend", "backend"}
	}

	resp := &domain.SearchResponse{Results: map[string]*domain.SearchResult{}}
	for _, repo := range repos {
		total := b.total[repo]
		end := total
		if !rng.Open {
			// offset:limit
			end = min(total, rng.Start+rng.End)
		}
		var files []domain.FileMatch
		for i := rng.Start; i < end; i++ {
			files = append(files, domain.FileMatch{
				Filename: repo + "/f" + strconv.Itoa(i) + ".go",
				Matches:  []domain.Match{{Line: "needle", LineNumber: 7}},
			})
		}
		resp.Results[repo] = &domain.SearchResult{Revision: "main", Matches: files, FilesWithMatch: total}
	}
	return resp, nil
}

func newSearchModel(t *testing.T, total map[string]int) *results.Model {
	t.Helper()
	res := results.New(&pagingBackend{total: total}, eventbus.New())
	require.NoError(t, res.LoadRepos(context.Background()))
	return res
}

func TestCheckReposSuggests(t *testing.T) {
	res := newSearchModel(t, nil)

	assert.NoError(t, checkRepos(res, []string{"backend"}))
	assert.NoError(t, checkRepos(res, nil))

	err := checkRepos(res, []string{"backend", "frontnd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"frontnd"`)
	assert.Contains(t, err.Error(), "did you mean frontend?")
}

func TestLoadAllPagesEveryRepo(t *testing.T) {
	res := newSearchModel(t, map[string]int{"frontend": 45, "backend": 3})
	require.NoError(t, res.Search(context.Background(), query.Params{Query: "needle"}))

	r, ok := res.ResultFor("frontend")
	require.True(t, ok)
	require.Len(t, r.Matches, query.DefaultPageSize)

	require.NoError(t, loadAll(context.Background(), res))

	r, _ = res.ResultFor("frontend")
	assert.Len(t, r.Matches, 45)
	assert.False(t, r.HasMore())
	b, _ := res.ResultFor("backend")
	assert.Len(t, b.Matches, 3)
}

func TestPrintResults(t *testing.T) {
	res := newSearchModel(t, map[string]int{"frontend": 1, "backend": 40})
	require.NoError(t, res.Search(context.Background(), query.Params{Query: "needle"}))

	var out bytes.Buffer
	printResults(&out, res, res.Results(), regexp.MustCompile("needle"), true)
	text := out.String()

	assert.Contains(t, text, "acme / backend  (30 of 40 files)")
	assert.Contains(t, text, "  backend/f0.go\n  https://github.com/acme/backend/blob/main/backend/f0.go#L7\n    7 needle\n")
	assert.Contains(t, text, "  … 10 more files (use --all)")
	assert.Contains(t, text, "acme / frontend  (1 of 1 files)")
}
