//go:build e2e && unix

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// fakeHound serves api/v1/repos and api/v1/search from a fixed corpus:
// every file in a repo matches, one line each.
type fakeHound struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string]int // repo -> matching files
	searches []string       // raw query strings, in arrival order
	reject   string         // when set, every search fails with this message
}

func newFakeHound(t *testing.T, files map[string]int) *fakeHound {
	t.Helper()
	h := &fakeHound{files: files}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/repos", func(w http.ResponseWriter, r *http.Request) {
		repos := map[string]map[string]string{}
		for repo := range h.files {
			repos[repo] = map[string]string{"url": "https://github.com/acme/" + repo + ".git"}
		}
		writeJSON(w, http.StatusOK, repos)
	})
	mux.HandleFunc("/api/v1/search", h.search)

	h.Server = httptest.NewServer(mux)
	t.Cleanup(h.Close)
	return h
}

func (h *fakeHound) search(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.searches = append(h.searches, r.URL.RawQuery)
	reject := h.reject
	h.mu.Unlock()

	if reject != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"Error": reject})
		return
	}

	q := r.URL.Query()
	offset, limit := 0, -1
	if before, after, ok := strings.Cut(q.Get("rng"), ":"); ok {
		offset, _ = strconv.Atoi(before)
		if after != "" {
			limit, _ = strconv.Atoi(after)
		}
	}

	results := map[string]any{}
	for repo, total := range h.files {
		if want := q.Get("repos"); want != "*" && !strings.Contains(","+want+",", ","+repo+",") {
			continue
		}
		end := total
		if limit >= 0 {
			end = min(total, offset+limit)
		}
		var matches []map[string]any
		for i := offset; i < end; i++ {
			matches = append(matches, map[string]any{
				"Filename": fmt.Sprintf("src/file%03d.go", i),
				"Matches": []map[string]any{{
					"Line":       "return " + q.Get("q"),
					"LineNumber": 10 + i,
					"Before":     []string{"func f() {"},
					"After":      []string{"}"},
				}},
			})
		}
		results[repo] = map[string]any{"Revision": "main", "Matches": matches, "FilesWithMatch": total}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"Results": results,
		"Stats":   map[string]int{"FilesOpened": 99, "Duration": 7},
	})
}

func (h *fakeHound) setReject(msg string) {
	h.mu.Lock()
	h.reject = msg
	h.mu.Unlock()
}

func (h *fakeHound) lastSearch() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.searches) == 0 {
		return ""
	}
	return h.searches[len(h.searches)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
