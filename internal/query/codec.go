package query

import (
	"net/url"
	"strings"
)

// Defaults returns the raw key/value defaults used when a query string omits a field
func Defaults() map[string]string {
	return map[string]string{
		"q":            "",
		"i":            False,
		"files":        "",
		"excludeFiles": "",
		"repos":        AllRepos,
	}
}

// ParseQueryString decodes "?k=v&k=v" into a map seeded with Defaults.
// Pairs without exactly one '=' are skipped. A literal '+' in a value is a
// space, as produced by form submissions and browser search-engine shortcuts.
func ParseQueryString(qs string) map[string]string {
	params := Defaults()
	qs = strings.TrimPrefix(qs, "?")
	if qs == "" {
		return params
	}

	for _, pair := range strings.Split(qs, "&") {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			continue
		}
		key, err := url.PathUnescape(kv[0])
		if err != nil {
			continue
		}
		val, err := url.PathUnescape(strings.ReplaceAll(kv[1], "+", " "))
		if err != nil {
			continue
		}
		params[key] = val
	}
	return params
}

// FromQueryString builds Params from a shareable query string
func FromQueryString(qs string) Params {
	return FromMap(ParseQueryString(qs))
}

// FromMap builds Params from decoded key/value pairs
func FromMap(m map[string]string) Params {
	p := Params{
		Query:        m["q"],
		Files:        m["files"],
		ExcludeFiles: m["excludeFiles"],
		IgnoreCase:   ParseBool(m["i"]),
		Repos:        ParseRepos(m["repos"]),
		Stats:        ParseBool(m["stats"]),
	}
	if rng, ok := m["rng"]; ok {
		if r, err := ParseRange(rng); err == nil {
			p.Range = r
		}
	}
	return p
}
