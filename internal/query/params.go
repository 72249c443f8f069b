// Package query normalizes, validates and encodes hound search parameters.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Wire values for boolean flags
const (
	True  = "fosho"
	False = "nope"
)

// AllRepos is the wire value selecting every repository
const AllRepos = "*"

// DefaultPageSize is the end of the range requested by a fresh search
const DefaultPageSize = 30

var ErrInvalidPattern = errors.New("invalid pattern")

// Range selects a window of files within a repository's results.
// An Open range has no end and fetches everything from Start.
type Range struct {
	Start int
	End   int
	Open  bool
}

// DefaultRange is the first page of a search (":30")
func DefaultRange() Range {
	return Range{Start: 0, End: DefaultPageSize}
}

// String formats the range as "start:end"; a zero start is omitted, as is an open end
func (r Range) String() string {
	start := ""
	if r.Start != 0 {
		start = strconv.Itoa(r.Start)
	}
	if r.Open {
		return start + ":"
	}
	return start + ":" + strconv.Itoa(r.End)
}

// ParseRange parses "start:end" where either side may be empty
func ParseRange(s string) (Range, error) {
	before, after, ok := strings.Cut(s, ":")
	if !ok {
		return Range{}, fmt.Errorf("range %q: missing ':'", s)
	}

	var r Range
	if before != "" {
		n, err := strconv.Atoi(before)
		if err != nil || n < 0 {
			return Range{}, fmt.Errorf("range %q: bad start", s)
		}
		r.Start = n
	}
	if after == "" {
		r.Open = true
		return r, nil
	}
	n, err := strconv.Atoi(after)
	if err != nil || n < 0 {
		return Range{}, fmt.Errorf("range %q: bad end", s)
	}
	r.End = n
	return r, nil
}

// Params is the full set of search parameters.
// An empty Repos slice means every repository.
type Params struct {
	Query        string
	Files        string
	ExcludeFiles string
	IgnoreCase   bool
	Repos        []string
	Range        Range
	Stats        bool
}

// ParseBool interprets a wire flag: fosho, true and 1 (any case) are true
func ParseBool(v string) bool {
	switch strings.ToLower(v) {
	case "fosho", "true", "1":
		return true
	}
	return false
}

// FormatBool renders a flag the way the web client does
func FormatBool(b bool) string {
	if b {
		return True
	}
	return False
}

// ParseRepos splits a comma-joined repo list; "" and "*" mean all
func ParseRepos(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" || v == AllRepos {
		return nil
	}
	var repos []string
	for _, r := range strings.Split(v, ",") {
		if r = strings.TrimSpace(r); r != "" {
			repos = append(repos, r)
		}
	}
	return Dedupe(repos)
}

// FormatRepos joins repos with commas, or returns "*" for all
func FormatRepos(repos []string) string {
	if len(repos) == 0 {
		return AllRepos
	}
	return strings.Join(repos, ",")
}

// Dedupe drops repeated entries, keeping the first occurrence
func Dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// Normalize fills defaults: stats on, all repos, and the first page when no range was given
func Normalize(p Params) Params {
	p.Stats = true
	p.Repos = Dedupe(p.Repos)
	if len(p.Repos) == 0 {
		p.Repos = nil
	}
	if p.Range == (Range{}) {
		p.Range = DefaultRange()
	}
	return p
}

// Validate compiles the query and path patterns with Go's regexp syntax
func Validate(p Params) error {
	if _, err := CompileQuery(p.Query, p.IgnoreCase); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	for name, pat := range map[string]string{"files": p.Files, "excludeFiles": p.ExcludeFiles} {
		if pat == "" {
			continue
		}
		if _, err := regexp.Compile(pat); err != nil {
			return fmt.Errorf("%s: %w: %v", name, ErrInvalidPattern, err)
		}
	}
	return nil
}

// CompileQuery compiles the query for local highlighting
func CompileQuery(q string, ignoreCase bool) (*regexp.Regexp, error) {
	if ignoreCase {
		q = "(?i)" + q
	}
	re, err := regexp.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

// Values encodes the params for api/v1/search
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("q", p.Query)
	v.Set("i", FormatBool(p.IgnoreCase))
	v.Set("files", p.Files)
	v.Set("excludeFiles", p.ExcludeFiles)
	v.Set("repos", FormatRepos(p.Repos))
	v.Set("rng", p.Range.String())
	if p.Stats {
		v.Set("stats", True)
	}
	return v
}

// QueryString builds the shareable "?q=...&i=..." form of the params
func (p Params) QueryString() string {
	pairs := []struct{ k, v string }{
		{"q", p.Query},
		{"i", FormatBool(p.IgnoreCase)},
		{"files", p.Files},
		{"excludeFiles", p.ExcludeFiles},
		{"repos", FormatRepos(p.Repos)},
	}
	var b strings.Builder
	for i, kv := range pairs {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.v))
	}
	return b.String()
}
