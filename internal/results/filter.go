package results

import (
	"fmt"
	"regexp"
	"strings"

	"houndgrip/internal/domain"
	"houndgrip/internal/query"
)

// Filter narrows loaded files by path. Empty patterns are inactive.
type Filter struct {
	Include string
	Exclude string
}

// NewFilter trims both patterns
func NewFilter(include, exclude string) Filter {
	return Filter{Include: strings.TrimSpace(include), Exclude: strings.TrimSpace(exclude)}
}

// IsZero reports whether neither pattern is set
func (f Filter) IsZero() bool {
	return f.Include == "" && f.Exclude == ""
}

type compiledFilter struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

func (f Filter) compile() (compiledFilter, error) {
	var (
		cf  compiledFilter
		err error
	)
	if f.Include != "" {
		if cf.include, err = regexp.Compile(f.Include); err != nil {
			return cf, fmt.Errorf("include filter: %w: %v", query.ErrInvalidPattern, err)
		}
	}
	if f.Exclude != "" {
		if cf.exclude, err = regexp.Compile(f.Exclude); err != nil {
			return cf, fmt.Errorf("exclude filter: %w: %v", query.ErrInvalidPattern, err)
		}
	}
	return cf, nil
}

// apply derives a filtered copy of results. The input is never modified.
// Each clone keeps the count of files still on the server:
// (FilesWithMatch - loaded) + kept.
func (cf compiledFilter) apply(results []*domain.RepoResult) []*domain.RepoResult {
	out := make([]*domain.RepoResult, 0, len(results))
	for _, r := range results {
		if cf.include == nil && cf.exclude == nil {
			out = append(out, r)
			continue
		}

		kept := make([]domain.FileMatch, 0, len(r.Matches))
		for _, fm := range r.Matches {
			if cf.include != nil && !cf.include.MatchString(fm.Filename) {
				continue
			}
			if cf.exclude != nil && cf.exclude.MatchString(fm.Filename) {
				continue
			}
			kept = append(kept, fm)
		}

		clone := *r
		clone.Matches = kept
		clone.FilesWithMatch = r.FilesWithMatch - len(r.Matches) + len(kept)
		out = append(out, &clone)
	}
	return out
}
