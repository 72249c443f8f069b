package domain

import "time"

// URLPattern holds the browse-URL templates a hound server publishes per repository
type URLPattern struct {
	BaseURL string `json:"base-url"`
	Anchor  string `json:"anchor"`
}

// RepoInfo describes a repository known to the server
type RepoInfo struct {
	ID         string      `json:"-"`
	URL        string      `json:"url"`
	VCS        string      `json:"vcs,omitempty"`
	URLPattern *URLPattern `json:"url-pattern,omitempty"`
}

// Match is one matched line plus its context window, as returned by the server
type Match struct {
	Line       string   `json:"Line"`
	LineNumber int      `json:"LineNumber"`
	Before     []string `json:"Before"`
	After      []string `json:"After"`
}

// FileMatch is a file path with its matches in ascending line order
type FileMatch struct {
	Filename string  `json:"Filename"`
	Matches  []Match `json:"Matches"`
}

// RepoResult is one repository's search outcome.
// FilesWithMatch is the server-reported total and may exceed len(Matches)
// until every page has been loaded.
type RepoResult struct {
	Repo           string
	Rev            string
	Matches        []FileMatch
	FilesWithMatch int
}

// HasMore reports whether the server holds files that are not loaded yet
func (r *RepoResult) HasMore() bool {
	return r.FilesWithMatch > len(r.Matches)
}

// Clone returns a shallow copy with its own Matches slice
func (r *RepoResult) Clone() *RepoResult {
	c := *r
	c.Matches = append([]FileMatch(nil), r.Matches...)
	return &c
}

// Stats holds timing information for a completed search
type Stats struct {
	Server      time.Duration // duration reported by the server
	Total       time.Duration // round trip measured by the client
	FilesOpened int
}

// SearchResult is the wire form of a single repository entry in a search response
type SearchResult struct {
	Revision       string      `json:"Revision"`
	Matches        []FileMatch `json:"Matches"`
	FilesWithMatch int         `json:"FilesWithMatch"`
}

// ResponseStats is the wire form of search statistics (Duration in milliseconds)
type ResponseStats struct {
	FilesOpened int `json:"FilesOpened"`
	Duration    int `json:"Duration"`
}

// SearchResponse is the body returned by api/v1/search.
// Results entries may be nil for repositories without matches.
type SearchResponse struct {
	Results map[string]*SearchResult `json:"Results"`
	Stats   *ResponseStats           `json:"Stats"`
	Error   string                   `json:"Error,omitempty"`
}
